package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Arnav139/bigads-console/pkg/client"
	"github.com/Arnav139/bigads-console/pkg/domain"
)

type requestsLoadedMsg struct {
	requests []domain.CreatorRequest
	err      error
}

type decisionResultMsg struct {
	decision domain.ResponseType
	err      error
}

// requestsModel is the admin view over pending creator requests.
type requestsModel struct {
	client   *client.Client
	requests []domain.CreatorRequest
	cursor   int

	loading   bool
	err       error
	statusMsg string
	width     int
	height    int
}

func newRequestsModel(c *client.Client) requestsModel {
	return requestsModel{client: c, loading: true}
}

func (m requestsModel) loadRequests() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		requests, err := c.PendingRequests(context.Background())
		return requestsLoadedMsg{requests: requests, err: err}
	}
}

func (m requestsModel) decide(maAddress string, decision domain.ResponseType) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		err := c.ApproveCreatorRequest(context.Background(), maAddress, decision)
		return decisionResultMsg{decision: decision, err: err}
	}
}

func (m requestsModel) Init() tea.Cmd {
	return m.loadRequests()
}

func (m requestsModel) Update(msg tea.Msg) (requestsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case requestsLoadedMsg:
		m.loading = false
		m.requests = msg.requests
		m.err = msg.err
		if m.cursor >= len(m.requests) {
			m.cursor = 0
		}
		return m, nil

	case decisionResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("%s failed: %v", strings.ToLower(string(msg.decision)), msg.err)
			return m, nil
		}
		if msg.decision == domain.ResponseApprove {
			m.statusMsg = "approved"
		} else {
			m.statusMsg = "rejected"
		}
		m.loading = true
		return m, m.loadRequests()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.requests)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "a":
			if m.cursor < len(m.requests) {
				return m, m.decide(m.requests[m.cursor].MAAddress, domain.ResponseApprove)
			}
		case "x":
			if m.cursor < len(m.requests) {
				return m, m.decide(m.requests[m.cursor].MAAddress, domain.ResponseReject)
			}
		case "r":
			m.loading = true
			return m, m.loadRequests()
		}
	}
	return m, nil
}

func (m requestsModel) View() string {
	var b strings.Builder

	b.WriteString(" " + sectionHeaderStyle.Render("PENDING CREATOR REQUESTS") + "\n")

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
	if len(m.requests) == 0 {
		b.WriteString(" " + dimStyle.Render("no pending requests"))
		return b.String()
	}

	for i, req := range m.requests {
		cursor := "  "
		rowStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = normalStyle.Bold(true)
		}

		line := cursor + hashStyle.Render(padRight(truncStr(req.MAAddress, 24), 24)) + " " +
			rowStyle.Render(padRight(truncStr(req.UserID, 16), 16)) + " " +
			RequestStatusStyle(req.Status).Render(req.Status)
		if !req.CreatedAt.IsZero() {
			line += " " + metaStyle.Render(formatTime(req.CreatedAt))
		}
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	if m.cursor < len(m.requests) {
		req := m.requests[m.cursor]
		b.WriteString("\n " + metaStyle.Render("wallet: ") + hashStyle.Render(req.MAAddress) + "\n")
		b.WriteString(" " + metaStyle.Render("role: "+req.Role) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
