package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hmx/internal/routes"
	"github.com/desertthunder/hmx/internal/shared"
	"github.com/desertthunder/hmx/internal/ui"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	bridge := ui.NewBridge()
	r.history = routes.NewHistory(routes.Home, bridge.RouteChanged)
	defer func() { r.history = nil }()

	if err := r.connect(ctx); err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Deps{
		API:     r.api,
		Auth:    r.auth,
		Store:   r.store,
		History: r.history,
		Bridge:  bridge,
		Engine:  r.engine,
		Logger:  r.logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
