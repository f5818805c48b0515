package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Arnav139/bigads-console/internal/browser"
	"github.com/Arnav139/bigads-console/internal/fire"
	"github.com/Arnav139/bigads-console/pkg/client"
	"github.com/Arnav139/bigads-console/pkg/domain"
)

type view int

const (
	viewGames view = iota
	viewTransactions
	viewRequests
	viewRegister
)

// SessionExpiredMsg is sent into the program from the client's
// session-expiry callback: a request came back 401 and the store was cleared.
type SessionExpiredMsg struct{}

// Options wires the root model's collaborators.
type Options struct {
	Client   *client.Client
	Flow     *fire.Flow
	Sessions fire.Sessions
	// ExplorerURL maps a chain and transaction hash to a block-explorer
	// page; nil disables the open-in-browser action.
	ExplorerURL func(domain.Chain, string) string
	Version     string
}

// App is the root Bubbletea model.
type App struct {
	sessions     fire.Sessions
	version      string
	view         view
	games        gamesModel
	transactions transactionsModel
	requests     requestsModel
	register     registerModel
	helpOpen     bool
	helpCursor   int
	banner       string // session-expired notice shown under the header
	width        int
	height       int
	frame        int // logo shimmer animation frame
}

// NewApp creates a new TUI application.
func NewApp(opts Options) App {
	return App{
		sessions:     opts.Sessions,
		version:      opts.Version,
		games:        newGamesModel(opts.Client, opts.Flow, opts.Sessions),
		transactions: newTransactionsModel(opts.Client, opts.ExplorerURL),
		requests:     newRequestsModel(opts.Client),
		register:     newRegisterModel(opts.Client, opts.Sessions),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.games.Init(), shimmerTickCmd())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + help(1) = 4 lines
		bodyHeight := msg.Height - 4
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: bodyHeight}
		a.games, _ = a.games.Update(bodyMsg)
		a.transactions, _ = a.transactions.Update(bodyMsg)
		a.requests, _ = a.requests.Update(bodyMsg)

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case SessionExpiredMsg:
		a.banner = client.SessionExpiredMessage
		return a, nil

	case tea.KeyMsg:
		a.banner = ""

		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				item := helpItems[a.helpCursor]
				if item.url != "" {
					browser.Open(item.url) //nolint:errcheck // best-effort browser open
				}
			}
			return a, nil
		}

		// Global keys (only when not editing)
		if !a.isEditing() {
			switch msg.String() {
			case "h":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				if a.view != viewGames {
					a.view = viewGames
					return a, a.games.Init()
				}
				return a, nil
			case "2":
				if a.view != viewTransactions {
					a.view = viewTransactions
					return a, a.transactions.Init()
				}
				return a, nil
			case "3":
				if a.view != viewRequests {
					a.view = viewRequests
					return a, a.requests.Init()
				}
				return a, nil
			case "4":
				if a.view != viewRegister {
					a.view = viewRegister
					return a, nil
				}
				return a, nil
			}
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		} else if msg.String() == "esc" && a.view == viewRegister {
			a.view = viewGames
			return a, a.games.Init()
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewGames:
		a.games, cmd = a.games.Update(msg)
	case viewTransactions:
		a.transactions, cmd = a.transactions.Update(msg)
	case viewRequests:
		a.requests, cmd = a.requests.Update(msg)
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	}

	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewGames:
		return a.games.credsOpen
	case viewRegister:
		return true
	}
	return false
}

func (a App) View() string {
	// Header: centered shimmer logo
	logo := renderShimmerLogo(a.frame)

	// Identity line below logo
	identity := ""
	if a.sessions != nil {
		sess := a.sessions.Current()
		if sess.Authenticated() {
			parts := []string{truncStr(sess.WalletAddress, 20)}
			if sess.User.Role != "" {
				parts = append(parts, sess.User.Role)
			}
			identity = metaStyle.Render(strings.Join(parts, " · "))
		} else {
			identity = metaStyle.Render("no session")
		}
	}
	if a.banner != "" {
		identity = warnStyle.Render(a.banner)
	}

	// Center the logo within terminal width
	logoWidth := lipgloss.Width(logo)
	logoPad := (a.width - logoWidth) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo

	if identity != "" {
		idWidth := lipgloss.Width(identity)
		idPad := (a.width - idWidth) / 2
		if idPad < 0 {
			idPad = 0
		}
		header += "\n" + strings.Repeat(" ", idPad) + identity
	} else {
		header += "\n"
	}

	// Tab bar: 4 equal-width columns spread across the terminal
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Games", viewGames},
		{"2", "Transactions", viewTransactions},
		{"3", "Requests", viewRequests},
		{"4", "Register", viewRegister},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}
	centeredTabs := tabBar.String()

	// Body
	var body string
	var help string
	switch a.view {
	case viewGames:
		body = a.games.View()
		switch {
		case a.games.credsOpen:
			help = " " + helpEntry("tab", "next") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("esc", "cancel")
		case a.games.eventsOpen:
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("f", "fire") + "  " + helpEntry("t", "txs") + "  " + helpEntry("esc", "back")
		default:
			help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("m", "all/mine") + "  " + helpEntry("enter", "events") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
		}
	case viewTransactions:
		body = a.transactions.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("f", "chain") + "  " + helpEntry("c", "copy") + "  " + helpEntry("o", "explorer") + "  " + helpEntry("x", "export") + "  " + helpEntry("q", "quit")
	case viewRequests:
		body = a.requests.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("a", "approve") + "  " + helpEntry("x", "reject") + "  " + helpEntry("r", "reload") + "  " + helpEntry("q", "quit")
	case viewRegister:
		body = a.register.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("ctrl+s", "submit") + "  " + helpEntry("esc", "back") + "  " + helpEntry("ctrl+c", "quit")
	}

	// Help overlay
	if a.helpOpen {
		body = helpView(a.helpCursor, a.version)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	// Chrome budget: header(2) + tabs(1) + help(1) = 4 lines + body
	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, centeredTabs, body, help)
}
