package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/centerband/internal/config"
	"github.com/ensigniasec/centerband/internal/viewport"
)

// Run starts the Bubble Tea TUI program over a fresh viewport channel built from p.
func Run(ctx context.Context, p config.Profile) error {
	ch, err := viewport.New(p.Viewport, viewport.WithName("tui"))
	if err != nil {
		return err
	}
	defer ch.Destroy()

	b, closeAll, err := attach(ch, p.Items)
	if err != nil {
		return err
	}
	defer closeAll()

	model := NewModel(ch, b, p.Items, p.ScrollStep)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Silence external logs (WARN/ERRO) during TUI to avoid corrupting the view.
	prevOut := logrus.StandardLogger().Out
	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(prevOut)

	// Run TUI blocking in this goroutine.
	_, err = prog.Run()
	return err
}
