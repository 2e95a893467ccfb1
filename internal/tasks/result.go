package tasks

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/transx/internal/formatter"
)

// Severity decides how a [Result] is shown.
type Severity int

const (
	SeverityLog    Severity = iota // logger only
	SeverityInline                 // status line
	SeverityAlert                  // prominent, acknowledged by the user
)

func (s Severity) String() string {
	switch s {
	case SeverityLog:
		return "log"
	case SeverityInline:
		return "inline"
	case SeverityAlert:
		return "alert"
	default:
		return ""
	}
}

// Op names the operation that produced a [Result].
type Op string

const (
	OpIdentity  Op = "identity"
	OpUpload    Op = "upload"
	OpProgress  Op = "progress"
	OpTranslate Op = "translate"
	OpExport    Op = "export"
)

// Result is the user-visible outcome of an operation.
type Result struct {
	Op       Op
	Severity Severity
	Message  string
	Err      error // underlying error, nil on success
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool { return r.Err != nil }

// Presenter shows results and rendered chapter views.
type Presenter interface {
	Present(Result)
	Render(formatter.View)
}

// LogPresenter writes every result and view to a logger. It is the fallback when no presenter is configured.
type LogPresenter struct {
	Logger *log.Logger
}

func (p LogPresenter) Present(r Result) {
	if p.Logger == nil {
		return
	}
	kv := []any{"op", r.Op, "severity", r.Severity}
	if r.Err != nil {
		kv = append(kv, "error", r.Err)
		p.Logger.Error(r.Message, kv...)
		return
	}
	p.Logger.Info(r.Message, kv...)
}

func (p LogPresenter) Render(v formatter.View) {
	if p.Logger != nil {
		p.Logger.Debug("rendered chapters", "rows", len(v.Rows), "progress", v.Progress)
	}
}

// RecordingPresenter keeps every result and view it receives. Safe for concurrent use.
type RecordingPresenter struct {
	mu      sync.Mutex
	results []Result
	views   []formatter.View
}

func (p *RecordingPresenter) Present(r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, r)
}

func (p *RecordingPresenter) Render(v formatter.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
}

// Results returns a copy of the recorded results.
func (p *RecordingPresenter) Results() []Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Result(nil), p.results...)
}

// Alerts returns the messages of recorded alert results.
func (p *RecordingPresenter) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for _, r := range p.results {
		if r.Severity == SeverityAlert {
			out = append(out, r.Message)
		}
	}
	return out
}

// LastView returns the most recent view and whether any was rendered.
func (p *RecordingPresenter) LastView() (formatter.View, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.views) == 0 {
		return formatter.View{}, false
	}
	return p.views[len(p.views)-1], true
}

// Prompter asks the user for a line of text. ok is false when the user cancels.
type Prompter interface {
	Prompt(question, def string) (answer string, ok bool)
}

// StaticPrompter answers every prompt with a fixed value. An empty value behaves like a cancel.
type StaticPrompter string

func (s StaticPrompter) Prompt(_, _ string) (string, bool) {
	return string(s), s != ""
}

// LinePrompter writes the question to Out and reads one line from In.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p LinePrompter) Prompt(question, def string) (string, bool) {
	if p.Out != nil {
		fmt.Fprintf(p.Out, "%s [%s] ", question, def)
	}
	if p.In == nil {
		return "", false
	}

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
