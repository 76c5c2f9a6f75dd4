package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DaanHessen/lifeline/internal/session"
	"github.com/DaanHessen/lifeline/internal/store"
	"github.com/DaanHessen/lifeline/internal/util"
)

// Run boots the TUI program and blocks until it exits. backend may be nil, which disables the
// archive; saving goes through whatever store the session was built with.
func Run(ctx context.Context, sess *session.Session, backend store.Backend, cfg util.Config) error {
	m := initialModel(ctx, sess, backend, cfg)
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
