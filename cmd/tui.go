package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/memoru/internal/shared"
	"github.com/desertthunder/memoru/internal/ui"
	"github.com/urfave/cli/v3"
)

// ReviewSession launches the interactive review TUI.
func (r *Runner) ReviewSession(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/memoru-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	api, err := r.client(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, api, cmd.Int("limit"))
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if err := model.Err(); err != nil {
		return err
	}

	s := model.Summary()
	r.logger.Info("review session finished", "reviewed", s.Reviewed, "skipped", s.Skipped, "failed", s.Failed)
	return nil
}
