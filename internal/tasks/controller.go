package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/transx/internal/formatter"
	"github.com/desertthunder/transx/internal/models"
	"github.com/desertthunder/transx/internal/services"
	"github.com/desertthunder/transx/internal/session"
	"github.com/desertthunder/transx/internal/shared"
)

// IdentityEnsurer reads or creates the session identity. [session.IdentityManager] implements it.
type IdentityEnsurer interface {
	Ensure() (*models.Identity, error)
}

// ControllerOpts configures a [Controller]. Only Backend is required.
type ControllerOpts struct {
	Backend   services.Backend
	Identity  IdentityEnsurer
	Chapters  models.ChapterRepository // optional chapter cache shared between runs
	State     *session.State
	Presenter Presenter
	Prompter  Prompter
	Progress  chan<- ProgressUpdate
	OpenURL   func(url string) error
	Logger    *log.Logger

	Author       string
	DefaultTitle string
	APIKeys      string // default API-key blob for range translation
	Prompt       string // default prompt template
	OutputDir    string
}

// Controller runs the client operations of one session.
type Controller struct {
	backend   services.Backend
	identity  IdentityEnsurer
	chapters  models.ChapterRepository
	state     *session.State
	presenter Presenter
	prompter  Prompter
	progress  chan<- ProgressUpdate
	openURL   func(string) error
	logger    *log.Logger

	author       string
	defaultTitle string
	apiKeys      string
	prompt       string
	outputDir    string
}

// NewController creates a [Controller], filling in defaults for every optional field.
func NewController(opts ControllerOpts) (*Controller, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}
	if opts.State == nil {
		opts.State = session.NewState()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Presenter == nil {
		opts.Presenter = LogPresenter{Logger: opts.Logger}
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.Author == "" {
		opts.Author = DefaultAuthor
	}
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = DefaultTitle
	}
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	return &Controller{
		backend:      opts.Backend,
		identity:     opts.Identity,
		chapters:     opts.Chapters,
		state:        opts.State,
		presenter:    opts.Presenter,
		prompter:     opts.Prompter,
		progress:     opts.Progress,
		openURL:      opts.OpenURL,
		logger:       opts.Logger,
		author:       opts.Author,
		defaultTitle: opts.DefaultTitle,
		apiKeys:      opts.APIKeys,
		prompt:       opts.Prompt,
		outputDir:    opts.OutputDir,
	}, nil
}

// State returns the session state.
func (c *Controller) State() *session.State { return c.state }

// SetPresenter replaces the presenter. Used by the TUI, which owns its presenter.
func (c *Controller) SetPresenter(p Presenter) {
	if p != nil {
		c.presenter = p
	}
}

// SetPrompter replaces the prompter.
func (c *Controller) SetPrompter(p Prompter) { c.prompter = p }

func (c *Controller) present(r Result) {
	switch {
	case r.Err != nil:
		c.logger.Error(r.Message, "op", r.Op, "error", r.Err)
	case r.Severity == SeverityLog:
		c.logger.Info(r.Message, "op", r.Op)
	}
	c.presenter.Present(r)
}

// Start runs the page-load sequence: ensure the identity, restore cached chapters and load progress.
func (c *Controller) Start(ctx context.Context) error {
	if _, err := c.EnsureIdentity(); err != nil {
		return err
	}
	c.Restore()
	c.LoadProgress(ctx)
	return nil
}

// EnsureIdentity installs the identity cookie, creating the identity when needed.
func (c *Controller) EnsureIdentity() (*models.Identity, error) {
	if c.identity == nil {
		return nil, nil
	}

	sendProgress(c.progress, ProgressUpdate{Phase: Identity, Step: 1, Total: 1, Message: "Checking identity..."})
	identity, err := c.identity.Ensure()
	if err != nil {
		c.present(Result{Op: OpIdentity, Severity: SeverityAlert, Message: fmt.Sprintf(MsgIdentityFailed, err), Err: err})
		return nil, err
	}

	c.logger.Debug("identity ready", "name", identity.Name, "expires", identity.ExpiresAt.Format(time.DateOnly))
	return identity, nil
}

// Restore loads the cached chapter list into the session, if a cache is configured.
func (c *Controller) Restore() {
	if c.chapters == nil {
		return
	}

	chapters, err := c.chapters.List()
	if err != nil {
		c.logger.Warn("failed to restore cached chapters", "error", err)
		return
	}
	c.state.SetChapters(chapters)
	c.logger.Debug("restored chapters", "count", len(chapters))
}

// LoadContent uploads a file or pasted text, replaces the chapter list with the server's split, renders it and loads progress.
//
// The file wins when both are given. HTML files are converted to Markdown and sent as text.
func (c *Controller) LoadContent(ctx context.Context, path, text string) error {
	input, closeFn, err := c.uploadInput(path, text)
	if err != nil {
		return c.uploadFailed(err)
	}
	defer closeFn()

	source := "text"
	if path != "" {
		source = filepath.Base(path)
	}
	sendProgress(c.progress, uploadUpdate(source))

	chapters, err := c.backend.Upload(ctx, input)
	if err != nil {
		return c.uploadFailed(err)
	}
	sendProgress(c.progress, uploadedUpdate(chapters))

	c.state.SetChapters(chapters)
	if c.chapters != nil {
		if err := c.chapters.ReplaceAll(chapters); err != nil {
			c.logger.Warn("failed to cache chapters", "error", err)
		}
	}

	c.present(Result{Op: OpUpload, Severity: SeverityInline, Message: fmt.Sprintf(MsgUploaded, len(chapters))})
	c.Render()
	c.LoadProgress(ctx)
	return nil
}

func (c *Controller) uploadFailed(err error) error {
	c.present(Result{Op: OpUpload, Severity: SeverityAlert, Message: fmt.Sprintf(MsgUploadFailed, err), Err: err})
	return err
}

func (c *Controller) uploadInput(path, text string) (services.UploadInput, func(), error) {
	noop := func() {}

	if path == "" {
		if strings.TrimSpace(text) == "" {
			return services.UploadInput{}, noop, fmt.Errorf("%w: a file or text is required", shared.ErrMissingArgument)
		}
		return services.UploadInput{Text: text}, noop, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		data, err := os.ReadFile(path)
		if err != nil {
			return services.UploadInput{}, noop, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		markdown, err := htmltomarkdown.ConvertString(string(data))
		if err != nil {
			return services.UploadInput{}, noop, fmt.Errorf("%w: failed to convert HTML: %v", shared.ErrInvalidInput, err)
		}
		c.logger.Debug("converted html upload", "file", path, "bytes", len(markdown))
		return services.UploadInput{Text: markdown}, noop, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return services.UploadInput{}, noop, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return services.UploadInput{Filename: filepath.Base(path), File: f}, func() { f.Close() }, nil
}

// Render computes the chapter view from the session and hands it to the presenter.
func (c *Controller) Render() formatter.View {
	chapters, translated := c.state.Snapshot()
	view := formatter.BuildView(chapters, translated)
	c.presenter.Render(view)
	return view
}

// Progress returns the current progress label.
func (c *Controller) Progress() string {
	return formatter.ProgressLabel(c.state.Counts())
}

// LoadProgress replaces the translation map with the server's and re-renders.
//
// Failures are reported inline and never returned. The result reports whether the fetch succeeded.
func (c *Controller) LoadProgress(ctx context.Context) bool {
	sendProgress(c.progress, fetchStatusUpdate())

	status, err := c.backend.Status(ctx)
	if err != nil {
		c.present(Result{Op: OpProgress, Severity: SeverityInline, Message: MsgProgressFailed, Err: err})
		return false
	}

	translated, skipped := status.TranslationMap()
	if len(skipped) > 0 {
		c.logger.Warn("ignored non-numeric chapter keys", "keys", skipped)
	}

	c.state.ReplaceTranslations(translated)
	if _, total := c.state.Counts(); total > 0 {
		if stray := strayIndices(translated, total); len(stray) > 0 {
			c.logger.Debug("translations without a matching chapter", "indices", stray)
		}
	}
	c.Render()
	return true
}

// strayIndices returns the translated indices that are not positions in a list of total chapters.
func strayIndices(m models.TranslationMap, total int) []int {
	var out []int
	for _, i := range m.Indices() {
		if i < 0 || i >= total {
			out = append(out, i)
		}
	}
	return out
}

// RangeInput holds the fields of a range translation. Empty APIKeys and Prompt fall back to the controller defaults.
type RangeInput struct {
	Start   int
	End     int
	APIKeys string
	Prompt  string
}

// TranslateRange asks the server to translate chapters Start..End (1-based, inclusive) and reloads progress on success.
//
// Invalid ranges are rejected before any request is sent. There is no upper bound check.
func (c *Controller) TranslateRange(ctx context.Context, in RangeInput) error {
	req := models.TranslateRangeRequest{
		Start:   in.Start,
		End:     in.End,
		APIKeys: in.APIKeys,
		Prompt:  in.Prompt,
	}
	if req.APIKeys == "" {
		req.APIKeys = c.apiKeys
	}
	if req.Prompt == "" {
		req.Prompt = c.prompt
	}

	if err := req.Validate(); err != nil {
		c.presenter.Present(Result{Op: OpTranslate, Severity: SeverityAlert, Message: MsgInvalidRange, Err: err})
		return err
	}

	c.logger.Debug("translating range", "start", req.Start, "end", req.End, "keys", len(shared.SplitAPIKeys(req.APIKeys)))
	sendProgress(c.progress, translateUpdate(req.Start, req.End))

	resp, err := c.backend.TranslateRange(ctx, req)
	if err == nil && !resp.OK() {
		err = fmt.Errorf("%w: status %q", shared.ErrTranslateFailed, resp.Status)
	}
	if err != nil {
		if !errors.Is(err, shared.ErrTranslateFailed) {
			err = fmt.Errorf("%w: %v", shared.ErrTranslateFailed, err)
		}
		c.present(Result{Op: OpTranslate, Severity: SeverityAlert, Message: MsgTranslateFailed, Err: err})
		return err
	}

	c.present(Result{Op: OpTranslate, Severity: SeverityAlert, Message: fmt.Sprintf(MsgTranslated, resp.TranslatedCount)})
	c.LoadProgress(ctx)
	return nil
}

// ExportInput holds export options. An empty Title is prompted for.
type ExportInput struct {
	Title     string
	Open      bool             // open the download URL in the browser instead of saving it
	OutputDir string           // defaults to the controller's output directory
	Format    formatter.Format // local export format, ignored by ExportEpub
}

// ExportEpub builds an EPUB on the server from the translated chapters, falling back to the original text of untranslated ones.
//
// The file is saved to {dir}/{title}.epub, or opened in the browser when in.Open is set. It returns the saved path or opened URL.
func (c *Controller) ExportEpub(ctx context.Context, in ExportInput) (string, error) {
	if err := c.requireTranslations(); err != nil {
		return "", err
	}

	title := c.resolveTitle(in.Title)
	chapters, translated := c.state.Snapshot()
	req := formatter.BuildExport(title, c.author, chapters, translated)

	sendProgress(c.progress, buildExportUpdate(1, 2, title))
	resp, err := c.backend.ExportEpub(ctx, req)
	if err != nil {
		return "", c.exportFailed(MsgExportFailed, err)
	}

	if in.Open {
		url, err := c.backend.ResolveURL(resp.URL)
		if err != nil {
			return "", c.exportFailed(MsgExportFailed, err)
		}
		if err := c.openURL(url); err != nil {
			return "", c.exportFailed(MsgExportFailed, err)
		}
		c.present(Result{Op: OpExport, Severity: SeverityInline, Message: fmt.Sprintf(MsgOpenedEpub, url)})
		return url, nil
	}

	dir := in.OutputDir
	if dir == "" {
		dir = c.outputDir
	}
	dest := filepath.Join(dir, shared.SafeFilename(title)+".epub")
	sendProgress(c.progress, downloadUpdate(2, 2, dest))

	if err := c.download(ctx, resp.URL, dest); err != nil {
		return "", c.exportFailed(MsgExportFailed, err)
	}

	c.present(Result{Op: OpExport, Severity: SeverityInline, Message: fmt.Sprintf(MsgSavedEpub, dest)})
	return dest, nil
}

func (c *Controller) download(ctx context.Context, ref, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	n, err := c.backend.Download(ctx, ref, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return err
	}

	c.logger.Info("saved epub", "path", dest, "bytes", n)
	return nil
}

// ExportLocal writes the merged chapters to {dir}/{title}{ext} without contacting the server.
func (c *Controller) ExportLocal(in ExportInput) (string, error) {
	if err := c.requireTranslations(); err != nil {
		return "", err
	}

	format := in.Format
	if format == "" {
		format = formatter.FormatMarkdown
	}
	dir := in.OutputDir
	if dir == "" {
		dir = c.outputDir
	}

	title := c.resolveTitle(in.Title)
	chapters, translated := c.state.Snapshot()

	path, err := formatter.WriteExport(formatter.BuildExport(title, c.author, chapters, translated), format, dir)
	if err != nil {
		return "", c.exportFailed(MsgLocalExportFail, err)
	}

	c.present(Result{Op: OpExport, Severity: SeverityInline, Message: fmt.Sprintf(MsgSavedFile, path)})
	return path, nil
}

func (c *Controller) requireTranslations() error {
	if c.state.HasTranslations() {
		return nil
	}
	err := fmt.Errorf("%w: nothing to export", shared.ErrNoTranslations)
	c.presenter.Present(Result{Op: OpExport, Severity: SeverityAlert, Message: MsgNoTranslations, Err: err})
	return err
}

func (c *Controller) exportFailed(format string, err error) error {
	wrapped := fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	c.present(Result{Op: OpExport, Severity: SeverityAlert, Message: fmt.Sprintf(format, err), Err: wrapped})
	return wrapped
}

// resolveTitle returns title, else the prompted title, else the default. Blank answers and cancels use the default.
func (c *Controller) resolveTitle(title string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	if c.prompter == nil {
		return c.defaultTitle
	}

	answer, ok := c.prompter.Prompt(TitlePrompt, c.defaultTitle)
	if answer = strings.TrimSpace(answer); !ok || answer == "" {
		return c.defaultTitle
	}
	return answer
}
