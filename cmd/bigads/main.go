package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Arnav139/bigads-console/internal/config"
	"github.com/Arnav139/bigads-console/internal/export"
	"github.com/Arnav139/bigads-console/internal/fire"
	"github.com/Arnav139/bigads-console/internal/session"
	"github.com/Arnav139/bigads-console/internal/tui"
	"github.com/Arnav139/bigads-console/pkg/client"
	"github.com/Arnav139/bigads-console/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store := session.New(cfg.SessionPath())
	if err := store.Load(); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	// An expired token is as good as no token: drop it before anything asks.
	if tok := store.Token(); tok != "" && session.TokenExpired(tok) {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear expired session: %w", err)
		}
	}

	logger := zerolog.Nop()
	if cfg.Debug {
		f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close() //nolint:errcheck
		logger = zerolog.New(f).With().Timestamp().Logger()
	}

	// The program pointer is filled in after the TUI starts; the callback is
	// only invoked from inside running requests, which the TUI issues.
	var program *tea.Program

	c, err := client.New(client.Config{
		BaseURL:  cfg.BackendURL,
		Sessions: store,
		Logger:   logger,
		OnSessionExpired: func() {
			if program != nil {
				program.Send(tui.SessionExpiredMsg{})
			}
		},
	})
	if err != nil {
		return err
	}
	// BIGADS_TOKEN overrides the persisted session for this run only.
	if cfg.Token != "" {
		c = c.WithToken(cfg.Token)
	}

	var fallback fire.API
	if cfg.FallbackFireToken != "" {
		fallback = c.WithToken(cfg.FallbackFireToken)
	}
	flow := fire.New(fire.Config{
		API:         c,
		Sessions:    store,
		FallbackAPI: fallback,
	})

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("bigads " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "register":
			return runRegister(c, os.Args[2:])
		case "creator":
			return runCreator(c, store, os.Args[2:])
		case "logout":
			return runLogout(store)
		case "export":
			return runExport(c, os.Args[2:])
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
			printHelp()
			return nil
		}
	}

	app := tui.NewApp(tui.Options{
		Client:      c,
		Flow:        flow,
		Sessions:    store,
		ExplorerURL: cfg.ExplorerTxURL,
		Version:     version,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	program = p
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// runRegister calls the registration endpoint and persists the session the
// backend hands back. The wallet address is an input here; connecting a
// wallet provider is outside this console.
func runRegister(c *client.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	wallet := fs.String("wallet", "", "wallet address to register (required)")
	appID := fs.String("app-id", "bigads-console", "application id")
	deviceID := fs.String("device-id", "", "device id (random when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *wallet == "" {
		fs.Usage()
		return fmt.Errorf("register: -wallet is required")
	}
	if *deviceID == "" {
		*deviceID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := c.RegisterUser(ctx, *appID, *deviceID, *wallet)
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s\n", *wallet)
	if resp.Data.Role != "" {
		fmt.Printf("  role:          %s\n", resp.Data.Role)
	}
	if resp.Data.SmartAccountAddress != "" {
		fmt.Printf("  smart account: %s\n", resp.Data.SmartAccountAddress)
	}
	if resp.Token == "" {
		fmt.Println("No token returned; session not persisted.")
	}
	return nil
}

// runCreator applies for the creator role and reports where the application
// stands. With no flags it reuses the current session's wallet and user.
func runCreator(c *client.Client, store *session.Store, args []string) error {
	fs := flag.NewFlagSet("creator", flag.ExitOnError)
	wallet := fs.String("wallet", "", "wallet address (default: current session)")
	statusOnly := fs.Bool("status", false, "only check the request status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess := store.Current()
	if *wallet == "" {
		*wallet = sess.WalletAddress
	}
	if *wallet == "" {
		return fmt.Errorf("creator: no session; pass -wallet or register first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !*statusOnly {
		resp, err := c.RequestCreator(ctx, *wallet)
		if err != nil {
			return err
		}
		if resp.Message != "" {
			fmt.Println(resp.Message)
		}
	}

	if sess.User.UserID != "" {
		req, err := c.CreatorRequestStatus(ctx, sess.User.UserID)
		if err != nil {
			return err
		}
		fmt.Printf("Creator request for %s: %s\n", req.MAAddress, req.Status)
	}
	return nil
}

func runLogout(store *session.Store) error {
	if !store.Authenticated() {
		fmt.Println("Already logged out.")
		return nil
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

// runExport is the headless path to the spreadsheet: fetch, filter, write.
func runExport(c *client.Client, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "transactions.xlsx", "output file path")
	chain := fs.String("chain", "", "restrict to one chain (Polygon or Diamante)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *chain != "" && !domain.ValidChain(domain.Chain(*chain)) {
		return fmt.Errorf("export: unknown chain %q", *chain)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	txs, err := c.ListTransactions(ctx)
	if err != nil {
		return err
	}
	txs = filterByChain(txs, domain.Chain(*chain))

	if err := export.Transactions(*out, txs); err != nil {
		return err
	}
	fmt.Printf("Wrote %d transactions to %s\n", len(txs), *out)
	return nil
}

// filterByChain returns the transactions on one chain, or all of them when
// chain is empty.
func filterByChain(txs []domain.Transaction, chain domain.Chain) []domain.Transaction {
	if chain == "" {
		return txs
	}
	var out []domain.Transaction
	for _, tx := range txs {
		if tx.Chain == chain {
			out = append(out, tx)
		}
	}
	return out
}

func printHelp() {
	fmt.Print(`bigads — game events and on-chain transactions console

Usage:
  bigads                 open the dashboard (interactive TUI)
  bigads register        register a wallet and persist the session
      -wallet <addr>       wallet address (required)
      -app-id <id>         application id (default "bigads-console")
      -device-id <id>      device id (random when omitted)
  bigads creator         apply for the creator role / check the request
      -wallet <addr>       wallet address (default: current session)
      -status              only check the request status
  bigads export          write transactions to a spreadsheet
      -out <path>          output file (default "transactions.xlsx")
      -chain <name>        Polygon or Diamante (default all)
  bigads logout          clear your session
  bigads version         show version
  bigads help            show this help

Environment:
  BIGADS_BACKEND_URL     backend base URL (default http://localhost:4000)
  BIGADS_TOKEN           bearer token override for this run
  BIGADS_HOME            state directory (default ~/.bigads)
  BIGADS_DEBUG           log requests to $BIGADS_HOME/debug.log
`)
}
