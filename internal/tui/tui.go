package tui

import (
	"fabledesk/internal/logging"
	"fabledesk/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(st *store.Store, log *logging.Logger) error {
	m := newAppModel(st, log)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
