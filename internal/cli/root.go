package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"fabledesk/internal/logging"
	"fabledesk/internal/store"
	"fabledesk/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	DBPath  string
	LogPath string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "fabledesk",
		Short:        "FableDesk (local-first) worldbuilding, writing, and planning studio",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive studio
  fabledesk

  # Create the project database without opening the UI
  fabledesk init

  # Seed a sample universe, novel, and board
  fabledesk demo

  # Purge trash entries past their retention window
  fabledesk cleanup
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.DBPath, "db", envOr("FABLEDESK_DB", ""), "Path to the project database (default: a per-user data dir)")
	cmd.PersistentFlags().StringVar(&app.LogPath, "log", envOr("FABLEDESK_LOG", ""), "Append diagnostic log lines to this file")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newDemoCmd(app))
	cmd.AddCommand(newCleanupCmd(app))
	cmd.AddCommand(newCapabilitiesCmd(app))

	return cmd
}

func runTUI(app *App) error {
	log, err := openLog(app)
	if err != nil {
		return err
	}
	defer log.Close()
	st, err := openStore(app, log)
	if err != nil {
		return err
	}
	defer st.Close()
	return tui.Run(st, log)
}

func openStore(app *App, log *logging.Logger) (*store.Store, error) {
	path, err := resolveDBPath(app)
	if err != nil {
		return nil, err
	}
	return store.Open(context.Background(), path, log)
}

func openLog(app *App) (*logging.Logger, error) {
	if app.LogPath == "" {
		return logging.Discard(), nil
	}
	return logging.Open(app.LogPath)
}

func resolveDBPath(app *App) (string, error) {
	if app.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(app.DBPath), 0o755); err != nil {
			return "", err
		}
		return app.DBPath, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
	}
	dir := filepath.Join(base, "fabledesk")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "project.db"), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
