package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mfl/ghlite/internal/config"
	"github.com/mfl/ghlite/internal/engine"
	"github.com/mfl/ghlite/internal/gh"
	"github.com/mfl/ghlite/internal/tui"
)

var (
	// CLI flags
	configFlag  string
	timeoutFlag time.Duration
	logFileFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ghlite",
		Short: "Lightweight terminal issue tracker for your GitHub account",
		Long: `ghlite is a lightweight issue tracker for a single GitHub account.

It aggregates the issues of every repository you own into one view, and
lets you read, comment on, create, and close or reopen them.

Configuration:
  Your username and a personal access token (repo scope) are stored in a
  JSON config file in your user config directory. Set them from the
  settings screen (press s), or edit the file directly.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the config file (default: per-user config dir)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 10*time.Second, "Timeout for each API request")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "Write logs to this file (default: logging disabled)")

	rootCmd.AddCommand(newReposCmd(), newIssuesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newStore builds the credential store, honoring --config.
func newStore() (*config.Store, error) {
	if configFlag != "" {
		return config.NewStoreAt(configFlag), nil
	}
	return config.NewStore()
}

// newEngine wires the engine to the store and the REST client.
func newEngine(store *config.Store) *engine.Engine {
	return engine.New(store, func(creds config.Credentials) engine.Remote {
		return gh.NewClient(creds, gh.WithTimeout(timeoutFlag))
	})
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal, so logs go to a file or nowhere.
	if logFileFlag != "" {
		f, err := os.OpenFile(logFileFlag, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	store, err := newStore()
	if err != nil {
		return err
	}

	eng := newEngine(store)
	app := tui.NewAppModel(eng, store, context.Background())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
