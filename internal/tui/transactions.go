package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Arnav139/bigads-console/internal/browser"
	"github.com/Arnav139/bigads-console/internal/export"
	"github.com/Arnav139/bigads-console/pkg/client"
	"github.com/Arnav139/bigads-console/pkg/domain"
)

// exportPath is where the TUI export action writes the spreadsheet.
const exportPath = "transactions.xlsx"

type transactionsLoadedMsg struct {
	txs []domain.Transaction
	err error
}

type copyResultMsg struct{ err error }

type exportResultMsg struct {
	path  string
	count int
	err   error
}

type transactionsModel struct {
	client      *client.Client
	explorerURL func(domain.Chain, string) string

	txs         []domain.Transaction
	chainFilter domain.Chain // "" means all chains
	cursor      int

	loading   bool
	err       error
	statusMsg string
	width     int
	height    int
}

func newTransactionsModel(c *client.Client, explorerURL func(domain.Chain, string) string) transactionsModel {
	return transactionsModel{
		client:      c,
		explorerURL: explorerURL,
		loading:     true,
	}
}

func (m transactionsModel) loadTransactions() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		txs, err := c.ListTransactions(context.Background())
		return transactionsLoadedMsg{txs: txs, err: err}
	}
}

func (m transactionsModel) Init() tea.Cmd {
	return m.loadTransactions()
}

// filtered returns the transactions matching the current chain filter.
func (m transactionsModel) filtered() []domain.Transaction {
	if m.chainFilter == "" {
		return m.txs
	}
	var out []domain.Transaction
	for _, tx := range m.txs {
		if tx.Chain == m.chainFilter {
			out = append(out, tx)
		}
	}
	return out
}

func (m transactionsModel) Update(msg tea.Msg) (transactionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case transactionsLoadedMsg:
		m.loading = false
		m.txs = msg.txs
		m.err = msg.err
		if m.cursor >= len(m.filtered()) {
			m.cursor = 0
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "copied!"
		}
		return m, nil

	case exportResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("export failed: %v", msg.err)
		} else {
			m.statusMsg = fmt.Sprintf("exported %d transactions to %s", msg.count, msg.path)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m transactionsModel) updateKeys(msg tea.KeyMsg) (transactionsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.filtered())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "f":
		// Cycle chain filter: all -> Polygon -> Diamante -> all
		switch m.chainFilter {
		case "":
			m.chainFilter = domain.ChainPolygon
		case domain.ChainPolygon:
			m.chainFilter = domain.ChainDiamante
		default:
			m.chainFilter = ""
		}
		m.cursor = 0
	case "c":
		txs := m.filtered()
		if m.cursor < len(txs) {
			hash := txs[m.cursor].Hash
			return m, func() tea.Msg {
				err := clipboard.WriteAll(hash)
				return copyResultMsg{err: err}
			}
		}
	case "o":
		txs := m.filtered()
		if m.cursor < len(txs) && m.explorerURL != nil {
			tx := txs[m.cursor]
			if url := m.explorerURL(tx.Chain, tx.Hash); url != "" {
				browser.Open(url) //nolint:errcheck // best-effort browser open
			}
		}
	case "x":
		txs := m.filtered()
		return m, func() tea.Msg {
			err := export.Transactions(exportPath, txs)
			return exportResultMsg{path: exportPath, count: len(txs), err: err}
		}
	case "r":
		m.loading = true
		return m, m.loadTransactions()
	}
	return m, nil
}

func (m transactionsModel) View() string {
	var b strings.Builder

	// Chain filter bar: [all] [Polygon] [Diamante]
	b.WriteString(" ")
	entries := []struct {
		label string
		chain domain.Chain
	}{
		{"all", ""},
		{string(domain.ChainPolygon), domain.ChainPolygon},
		{string(domain.ChainDiamante), domain.ChainDiamante},
	}
	for i, e := range entries {
		if i > 0 {
			b.WriteString(" ")
		}
		if e.chain == m.chainFilter {
			b.WriteString(accentStyle.Render("[" + e.label + "]"))
		} else {
			b.WriteString(dimStyle.Render("[" + e.label + "]"))
		}
	}
	b.WriteString("  " + helpKeyStyle.Render("f") + "\n")

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

	txs := m.filtered()
	if len(txs) == 0 {
		b.WriteString(" " + dimStyle.Render("no transactions found"))
		return b.String()
	}

	for i, tx := range txs {
		cursor := "  "
		rowStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = normalStyle.Bold(true)
		}

		hash := domain.ShortHash(tx.Hash)
		line := cursor + hashStyle.Render(padRight(hash, 31)) + " " +
			ChainStyle(tx.Chain).Render(padRight(string(tx.Chain), 9)) + " " +
			rowStyle.Render(padRight(truncStr(tx.Event.EventType, 18), 18)) + " " +
			metaStyle.Render(truncStr(tx.Game.Name, 16))
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	// Detail preview for selected transaction
	if m.cursor < len(txs) {
		tx := txs[m.cursor]
		b.WriteString("\n")
		b.WriteString(" " + hashStyle.Render(tx.Hash) + "\n")
		meta := " " + ChainStyle(tx.Chain).Render(string(tx.Chain))
		if tx.Event.EventType != "" {
			meta += metaStyle.Render(" · ") + normalStyle.Render(tx.Event.EventType)
		}
		if tx.Game.Name != "" {
			meta += metaStyle.Render(" · ") + normalStyle.Render(tx.Game.Name)
		}
		if !tx.CreatedAt.IsZero() {
			meta += metaStyle.Render(" · " + formatTime(tx.CreatedAt))
		}
		b.WriteString(meta + "\n")
		if tx.User.UserID != "" {
			b.WriteString(" " + metaStyle.Render("player: "+tx.User.UserID) + "\n")
		}
	}

	return truncateToHeight(b.String(), m.height)
}
