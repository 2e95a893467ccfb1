package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/desertthunder/transx/internal/formatter"
	"github.com/desertthunder/transx/internal/shared"
	"github.com/desertthunder/transx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Identity prints the identity cookie, creating it when needed.
func (r *Runner) Identity(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.controller(cmd, r.presenter(renderNone))
	if err != nil {
		return err
	}

	if cmd.Bool("reset") {
		if err := r.identities.Delete(r.config.Identity.CookieName); err != nil {
			return err
		}
		r.logger.Info("identity discarded", "name", r.config.Identity.CookieName)
	}

	identity, err := ctrl.EnsureIdentity()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(identity, true)
	}

	r.writePlain("%s=%s\n", identity.Name, identity.Token)
	r.writePlain("Expires: %s\n", identity.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

// Upload uploads a file or text and prints the chapter list.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	file := cmd.StringArg("file")
	text := cmd.String("text")

	if text == "-" {
		data, err := io.ReadAll(r.input)
		if err != nil {
			return fmt.Errorf("%w: failed to read stdin: %v", shared.ErrInvalidInput, err)
		}
		text = string(data)
	}
	if file == "" && text == "" {
		return fmt.Errorf("%w: a file argument or --text is required", shared.ErrMissingArgument)
	}

	ctrl, err := r.controller(cmd, r.presenter(renderFull))
	if err != nil {
		return err
	}

	r.logger.Info("uploading", "file", file, "text_bytes", len(text))
	return ctrl.LoadContent(ctx, file, text)
}

// Chapters prints the chapter list with translation snippets and progress.
//
// If progress cannot be loaded the cached chapters are still shown.
func (r *Runner) Chapters(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	var presenter tasks.Presenter = r.presenter(renderFull)
	if useJSON {
		presenter = tasks.LogPresenter{Logger: r.logger}
	}

	ctrl, err := r.controller(cmd, presenter)
	if err != nil {
		return err
	}

	if useJSON {
		ctrl.LoadProgress(ctx)
		return r.writeJSON(ctrl.Render(), true)
	}

	if !ctrl.LoadProgress(ctx) {
		ctrl.Render()
	}
	return nil
}

// Status prints the progress label, once or on an interval until interrupted.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.controller(cmd, r.presenter(renderSummary))
	if err != nil {
		return err
	}

	if !cmd.Bool("watch") {
		ctrl.LoadProgress(ctx)
		return nil
	}

	interval := cmd.Duration("interval")
	if interval <= 0 {
		interval = r.config.Watch.Interval()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	r.logger.Info("watching progress", "interval", interval)
	polls := ctrl.Watch(ctx, interval)
	r.logger.Info("stopped watching", "polls", polls)
	return nil
}

// Translate requests translation of a chapter range.
func (r *Runner) Translate(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.controller(cmd, r.presenter(renderSummary))
	if err != nil {
		return err
	}

	return ctrl.TranslateRange(ctx, tasks.RangeInput{
		Start:   cmd.Int("start"),
		End:     cmd.Int("end"),
		APIKeys: cmd.String("keys"),
		Prompt:  cmd.String("prompt"),
	})
}

// Export loads progress and exports the merged chapters as an EPUB (through the server) or a local file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(strings.TrimSpace(cmd.String("format")))

	ctrl, err := r.controller(cmd, r.presenter(renderNone))
	if err != nil {
		return err
	}

	in := tasks.ExportInput{
		Title:     cmd.String("title"),
		Open:      cmd.Bool("open") || (r.config.Export.OpenInBrowser && !cmd.IsSet("open")),
		OutputDir: cmd.String("output"),
	}

	if format != "epub" {
		if in.Format, err = formatter.ParseFormat(format); err != nil {
			return err
		}
	}

	ctrl.LoadProgress(ctx)

	if in.Format != "" {
		_, err = ctrl.ExportLocal(in)
		return err
	}
	_, err = ctrl.ExportEpub(ctx, in)
	return err
}
