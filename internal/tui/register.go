package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Arnav139/bigads-console/internal/fire"
	"github.com/Arnav139/bigads-console/pkg/client"
)

type registerField int

const (
	fieldName registerField = iota
	fieldType
	fieldDescription
	fieldEvents
	numRegisterFields
)

// registerModel is the creator form for registering a new game with its
// event types.
type registerModel struct {
	client   *client.Client
	sessions fire.Sessions

	fields    [numRegisterFields]string
	focus     registerField
	err       error
	statusMsg string
	submitted bool
}

type gameRegisteredMsg struct {
	resp *client.RegisterGameResponse
	err  error
}

func newRegisterModel(c *client.Client, sessions fire.Sessions) registerModel {
	return registerModel{client: c, sessions: sessions}
}

func (m registerModel) Init() tea.Cmd {
	return nil
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case gameRegisteredMsg:
		m.submitted = false
		if msg.err != nil {
			m.err = msg.err
			m.statusMsg = "failed to register game"
		} else {
			m.statusMsg = fmt.Sprintf("registered game %s (%d events)",
				msg.resp.Data.Game.GameID, len(msg.resp.Data.Events))
			m.fields = [numRegisterFields]string{}
			m.focus = fieldName
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m registerModel) updateKeys(msg tea.KeyMsg) (registerModel, tea.Cmd) {
	m.statusMsg = ""
	m.err = nil

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % numRegisterFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numRegisterFields) % numRegisterFields
	case "backspace":
		f := &m.fields[m.focus]
		*f = editRune(*f, "backspace")
	case "enter":
		m.focus = (m.focus + 1) % numRegisterFields
	default:
		key := msg.String()
		if len(key) == 1 {
			m.fields[m.focus] += key
		}
	}
	return m, nil
}

// splitEventTypes parses the comma-separated event-types field.
func splitEventTypes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	name := strings.TrimSpace(m.fields[fieldName])
	gtype := strings.TrimSpace(m.fields[fieldType])
	events := splitEventTypes(m.fields[fieldEvents])

	if name == "" {
		m.statusMsg = "name is required"
		return m, nil
	}
	if gtype == "" {
		m.statusMsg = "type is required"
		return m, nil
	}
	if len(events) == 0 {
		m.statusMsg = "at least one event type is required (comma-separated)"
		return m, nil
	}

	wallet := ""
	if m.sessions != nil {
		wallet = m.sessions.Current().WalletAddress
	}

	req := client.RegisterGameRequest{
		Name:          name,
		Type:          gtype,
		Description:   strings.TrimSpace(m.fields[fieldDescription]),
		WalletAddress: wallet,
	}
	for _, ev := range events {
		req.Events = append(req.Events, client.RegisterGameEvent{EventType: ev})
	}

	m.submitted = true
	return m, func() tea.Msg {
		resp, err := m.client.RegisterGame(context.Background(), req)
		return gameRegisteredMsg{resp: resp, err: err}
	}
}

func (m registerModel) View() string {
	var b strings.Builder

	labels := [numRegisterFields]string{"name", "type", "description", "events"}

	for i := registerField(0); i < numRegisterFields; i++ {
		label := labels[i]
		value := m.fields[i]
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = ">"
			style = selectedStyle
		}

		displayValue := value
		if i == m.focus {
			displayValue += "█"
		}
		if i == fieldEvents && value == "" && i != m.focus {
			displayValue = inputPlaceholderStyle.Render("level_up, boss_kill, ...")
		}
		fmt.Fprintf(&b, "%s %s: %s\n", cursor, style.Render(padRight(label, 11)), displayValue)
	}

	b.WriteString("\n")
	if m.submitted {
		b.WriteString(dimStyle.Render("registering..."))
	} else if m.statusMsg != "" {
		b.WriteString(statusStyle.Render(m.statusMsg))
	}

	return b.String()
}
