package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Arnav139/bigads-console/internal/fire"
	"github.com/Arnav139/bigads-console/pkg/client"
	"github.com/Arnav139/bigads-console/pkg/domain"
)

type gamesLoadedMsg struct {
	games []domain.Game
	err   error
}

type eventsLoadedMsg struct {
	gameID string
	events []domain.GameEvent
	err    error
}

type fireResultMsg struct {
	eventID string
	result  *fire.Result
	err     error
}

type eventTxsLoadedMsg struct {
	eventID string
	txs     []domain.Transaction
	err     error
}

type credsField int

const (
	credsFieldAppID credsField = iota
	credsFieldDeviceID
	numCredsFields
)

type gamesModel struct {
	client   *client.Client
	flow     *fire.Flow
	sessions fire.Sessions

	filter client.GameFilter
	games  []domain.Game
	cursor int

	// Events overlay for the selected game.
	eventsOpen  bool
	events      []domain.GameEvent
	eventCursor int

	// Transactions recorded for the selected event, shown inside the overlay.
	eventTxsFor string
	eventTxs    []domain.Transaction

	// Credentials form shown when a fire suspends for appId/deviceId.
	credsOpen  bool
	credsForm  [numCredsFields]string
	credsFocus credsField

	loading   bool
	err       error
	statusMsg string
	width     int
	height    int
}

func newGamesModel(c *client.Client, flow *fire.Flow, sessions fire.Sessions) gamesModel {
	return gamesModel{
		client:   c,
		flow:     flow,
		sessions: sessions,
		filter:   client.GameFilterAll,
		loading:  true,
	}
}

func (m gamesModel) loadGames() tea.Cmd {
	c := m.client
	filter := m.filter
	return func() tea.Msg {
		games, err := c.ListGames(context.Background(), filter)
		return gamesLoadedMsg{games: games, err: err}
	}
}

func (m gamesModel) loadEvents(gameID string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		all, err := c.ListEvents(context.Background())
		if err != nil {
			return eventsLoadedMsg{gameID: gameID, err: err}
		}
		var events []domain.GameEvent
		for _, ev := range all {
			if ev.Game.GameID == gameID {
				events = append(events, ev)
			}
		}
		return eventsLoadedMsg{gameID: gameID, events: events}
	}
}

func (m gamesModel) loadEventTxs(eventID string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		txs, err := c.TransactionsByEvent(context.Background(), eventID)
		return eventTxsLoadedMsg{eventID: eventID, txs: txs, err: err}
	}
}

func (m gamesModel) fireEvent(eventID string, gameID int) tea.Cmd {
	flow := m.flow
	return func() tea.Msg {
		result, err := flow.Fire(context.Background(), eventID, gameID)
		return fireResultMsg{eventID: eventID, result: result, err: err}
	}
}

func (m gamesModel) submitCredentials(appID, deviceID string) tea.Cmd {
	flow := m.flow
	return func() tea.Msg {
		result, err := flow.Submit(context.Background(), appID, deviceID)
		return fireResultMsg{result: result, err: err}
	}
}

func (m gamesModel) Init() tea.Cmd {
	return m.loadGames()
}

// visible applies the wallet-chain partition: a 0x wallet only sees games
// whose smart account is 0x-prefixed, and conversely. No wallet, no filter.
func (m gamesModel) visible() []domain.Game {
	wallet := ""
	if m.sessions != nil {
		wallet = m.sessions.Current().WalletAddress
	}
	if wallet == "" {
		return m.games
	}
	var out []domain.Game
	for _, g := range m.games {
		if domain.SameAddressKind(wallet, g.SmartAccountAddress) {
			out = append(out, g)
		}
	}
	return out
}

func (m gamesModel) Update(msg tea.Msg) (gamesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case gamesLoadedMsg:
		m.loading = false
		m.games = msg.games
		m.err = msg.err
		if m.cursor >= len(m.visible()) {
			m.cursor = 0
		}
		return m, nil

	case eventsLoadedMsg:
		games := m.visible()
		if !m.eventsOpen || m.cursor >= len(games) || games[m.cursor].GameID != msg.gameID {
			return m, nil
		}
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("events: %v", msg.err)
			m.eventsOpen = false
			return m, nil
		}
		m.events = msg.events
		if m.eventCursor >= len(m.events) {
			m.eventCursor = 0
		}
		return m, nil

	case eventTxsLoadedMsg:
		if !m.eventsOpen || msg.eventID != m.eventTxsFor {
			return m, nil
		}
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("transactions: %v", msg.err)
			m.eventTxsFor = ""
			return m, nil
		}
		m.eventTxs = msg.txs
		return m, nil

	case fireResultMsg:
		if msg.err != nil {
			if errors.Is(msg.err, fire.ErrFireInFlight) {
				m.statusMsg = "another event fire is in flight"
				return m, nil
			}
			m.credsOpen = false
			m.statusMsg = fire.FailureMessage(msg.err)
			return m, nil
		}
		if msg.result != nil && msg.result.NeedsCredentials {
			m.credsOpen = true
			m.credsForm = [numCredsFields]string{}
			m.credsFocus = credsFieldAppID
			return m, nil
		}
		m.credsOpen = false
		if msg.result != nil {
			m.statusMsg = msg.result.Message
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.credsOpen {
			return m.updateCredentials(msg)
		}
		if m.eventsOpen {
			return m.updateEvents(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m gamesModel) updateList(msg tea.KeyMsg) (gamesModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "m":
		// Toggle all/mine
		if m.filter == client.GameFilterAll {
			m.filter = client.GameFilterMine
		} else {
			m.filter = client.GameFilterAll
		}
		m.cursor = 0
		m.loading = true
		return m, m.loadGames()
	case "enter":
		games := m.visible()
		if m.cursor < len(games) {
			g := games[m.cursor]
			m.eventsOpen = true
			m.eventCursor = 0
			if len(g.Events) > 0 {
				m.events = g.Events
				return m, nil
			}
			m.events = nil
			return m, m.loadEvents(g.GameID)
		}
	case "r":
		m.loading = true
		return m, m.loadGames()
	}
	return m, nil
}

func (m gamesModel) updateEvents(msg tea.KeyMsg) (gamesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.eventsOpen = false
		m.eventTxsFor = ""
		m.eventTxs = nil
	case "j", "down":
		if m.eventCursor < len(m.events)-1 {
			m.eventCursor++
			m.eventTxsFor = ""
			m.eventTxs = nil
		}
	case "k", "up":
		if m.eventCursor > 0 {
			m.eventCursor--
			m.eventTxsFor = ""
			m.eventTxs = nil
		}
	case "t":
		if m.eventCursor < len(m.events) {
			ev := m.events[m.eventCursor]
			m.eventTxsFor = ev.EventID
			m.eventTxs = nil
			return m, m.loadEventTxs(ev.EventID)
		}
	case "f", "enter":
		games := m.visible()
		if m.eventCursor < len(m.events) && m.cursor < len(games) {
			if _, busy := m.flow.Active(); busy {
				m.statusMsg = "another event fire is in flight"
				return m, nil
			}
			ev := m.events[m.eventCursor]
			return m, m.fireEvent(ev.EventID, games[m.cursor].ID)
		}
	}
	return m, nil
}

func (m gamesModel) updateCredentials(msg tea.KeyMsg) (gamesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.credsOpen = false
		m.flow.Cancel() //nolint:errcheck // nothing to undo when no fire is pending
		return m, nil
	case "tab", "down":
		m.credsFocus = (m.credsFocus + 1) % numCredsFields
	case "shift+tab", "up":
		m.credsFocus = (m.credsFocus - 1 + numCredsFields) % numCredsFields
	case "enter":
		if m.credsFocus == credsFieldAppID {
			m.credsFocus = credsFieldDeviceID
			return m, nil
		}
		appID := strings.TrimSpace(m.credsForm[credsFieldAppID])
		deviceID := strings.TrimSpace(m.credsForm[credsFieldDeviceID])
		if appID == "" || deviceID == "" {
			m.statusMsg = "appId and deviceId are required"
			return m, nil
		}
		return m, m.submitCredentials(appID, deviceID)
	default:
		f := &m.credsForm[m.credsFocus]
		*f = editRune(*f, msg.String())
	}
	return m, nil
}

func (m gamesModel) View() string {
	if m.credsOpen {
		return m.viewCredentials()
	}
	if m.eventsOpen {
		return m.viewEvents()
	}

	var b strings.Builder

	// Filter toggle: [all] [mine]
	b.WriteString(" ")
	if m.filter == client.GameFilterAll {
		b.WriteString(accentStyle.Render("[all]") + " " + dimStyle.Render("[mine]"))
	} else {
		b.WriteString(dimStyle.Render("[all]") + " " + accentStyle.Render("[mine]"))
	}
	b.WriteString("  " + helpKeyStyle.Render("m") + "\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.statusMsg != "" {
		b.WriteString(" " + statusStyle.Render(m.statusMsg) + "\n")
	}

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}

	games := m.visible()
	if len(games) == 0 {
		b.WriteString(" " + dimStyle.Render("no games found"))
		return b.String()
	}

	for i, g := range games {
		cursor := "  "
		nameStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = normalStyle.Bold(true)
		}

		nameWidth := 24
		typeWidth := 12
		name := truncStr(g.Name, nameWidth)
		gtype := truncStr(g.Type, typeWidth)

		line := cursor + nameStyle.Render(padRight(name, nameWidth)) + " " +
			metaStyle.Render(padRight(gtype, typeWidth)) + " " +
			hashStyle.Render(truncStr(g.SmartAccountAddress, 20))
		if g.TransactionCount > 0 {
			line += " " + metaStyle.Render(fmt.Sprintf("%d tx", g.TransactionCount))
		}
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	// Detail preview for selected game
	if m.cursor < len(games) {
		g := games[m.cursor]
		b.WriteString("\n")
		header := " " + selectedStyle.Render(g.Name)
		if g.GameID != "" {
			header += "  " + metaStyle.Render(g.GameID)
		}
		b.WriteString(header + "\n")
		if g.Description != "" {
			detailWidth := m.width - 4
			if detailWidth < 40 {
				detailWidth = 40
			}
			b.WriteString(" " + normalStyle.Render(truncStr(g.Description, detailWidth)) + "\n")
		}
		b.WriteString(" " + metaStyle.Render(g.SmartAccountAddress) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m gamesModel) viewEvents() string {
	games := m.visible()
	if m.cursor >= len(games) {
		return ""
	}
	g := games[m.cursor]

	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("<- back (esc)") + "\n")
	b.WriteString(" " + selectedStyle.Render(g.Name) + "  " + metaStyle.Render("events") + "\n\n")

	if m.statusMsg != "" {
		b.WriteString(" " + statusStyle.Render(m.statusMsg) + "\n")
	}

	if _, busy := m.flow.Active(); busy {
		b.WriteString(" " + warnStyle.Render("firing...") + "\n")
	}

	if m.events == nil {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return truncateToHeight(b.String(), m.height)
	}
	if len(m.events) == 0 {
		b.WriteString(" " + dimStyle.Render("no events for this game"))
		return truncateToHeight(b.String(), m.height)
	}

	for i, ev := range m.events {
		cursor := "  "
		style := dimStyle
		if i == m.eventCursor {
			cursor = accentStyle.Render("▸") + " "
			style = normalStyle.Bold(true)
		}
		line := cursor + style.Render(padRight(truncStr(ev.EventType, 24), 24)) + " " +
			metaStyle.Render(truncStr(ev.Description, 40))
		if i == m.eventCursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	if m.eventCursor < len(m.events) {
		ev := m.events[m.eventCursor]
		b.WriteString("\n " + metaStyle.Render("event id: "+ev.EventID) + "\n")
		if m.eventTxsFor == ev.EventID {
			if m.eventTxs == nil {
				b.WriteString(" " + dimStyle.Render("loading transactions...") + "\n")
			} else if len(m.eventTxs) == 0 {
				b.WriteString(" " + dimStyle.Render("no transactions for this event") + "\n")
			} else {
				shown := m.eventTxs
				if len(shown) > 5 {
					shown = shown[:5]
				}
				for _, tx := range shown {
					b.WriteString("   " + hashStyle.Render(padRight(domain.ShortHash(tx.Hash), 31)) + " " +
						ChainStyle(tx.Chain).Render(string(tx.Chain)) + "\n")
				}
			}
		}
	}

	return truncateToHeight(b.String(), m.height)
}

func (m gamesModel) viewCredentials() string {
	labels := [numCredsFields]string{"appId", "deviceId"}

	var sb strings.Builder
	sb.WriteString(sectionHeaderStyle.Render("FIRE EVENT") + "\n")
	sb.WriteString(dimStyle.Render("no session — enter app credentials") + "\n\n")

	for i := credsField(0); i < numCredsFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.credsFocus {
			cursor = ">"
			style = selectedStyle
		}
		value := m.credsForm[i]
		if i == m.credsFocus {
			value += "█"
		}
		fmt.Fprintf(&sb, "%s %s: %s\n", cursor, style.Render(padRight(labels[i], 8)), value)
	}

	sb.WriteString("\n")
	if m.statusMsg != "" {
		sb.WriteString(statusStyle.Render(m.statusMsg))
	} else {
		sb.WriteString(helpEntry("enter", "submit") + "  " + helpEntry("esc", "cancel"))
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(1, 2)
	return "\n" + border.Render(sb.String())
}
