package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/transx/internal/shared"
	"github.com/desertthunder/transx/internal/tasks"
	"github.com/desertthunder/transx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(config.Logging.TUILogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	presenter := ui.NewChannelPresenter(ctx)
	r.progress = make(chan tasks.ProgressUpdate, 50)

	ctrl, err := r.controller(cmd, presenter)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.ModelOpts{
		Controller: ctrl,
		Presenter:  presenter,
		Progress:   r.progress,
		Refresh:    config.Watch.Interval(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
