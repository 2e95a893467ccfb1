package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/transx/internal/formatter"
	"github.com/desertthunder/transx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ChapterListView ViewState = iota
	UploadView
	RangeView
	TitleView
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	ctrl      *tasks.Controller
	presenter *ChannelPresenter
	progressC <-chan tasks.ProgressUpdate
	refresh   time.Duration
	width     int
	height    int

	chapters list.Model
	rendered formatter.View
	inputs   []textinput.Model
	paste    textarea.Model // upload form only, focused after the inputs
	hasPaste bool
	focus    int

	status  string
	alert   string
	busy    bool
	current tasks.ProgressUpdate
	help    help.Model
	keys    keyMap
}

// ModelOpts configures a [Model].
type ModelOpts struct {
	Controller *tasks.Controller
	Presenter  *ChannelPresenter
	Progress   <-chan tasks.ProgressUpdate // the channel given to the controller, may be nil
	Refresh    time.Duration               // automatic progress reload interval, zero disables
}

// NewModel creates a new TUI model. The controller's presenter is replaced with opts.Presenter and its prompter is cleared, since the TUI asks for titles itself.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	presenter := opts.Presenter
	if presenter == nil {
		presenter = NewChannelPresenter(ctx)
	}
	opts.Controller.SetPresenter(presenter)
	opts.Controller.SetPrompter(nil)

	chapters := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	chapters.Title = formatter.ListHeading
	chapters.SetShowHelp(false)

	return &Model{
		ctx:       ctx,
		view:      ChapterListView,
		ctrl:      opts.Controller,
		presenter: presenter,
		progressC: opts.Progress,
		refresh:   opts.Refresh,
		chapters:  chapters,
		rendered:  formatter.BuildView(nil, nil),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the session: identity, cached chapters and progress.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.presenter.listen(),
		m.waitForProgress(),
		m.run(func() error { return m.ctrl.Start(m.ctx) }),
	}
	if m.refresh > 0 {
		cmds = append(cmds, m.scheduleRefresh())
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chapters.SetSize(msg.Width-4, msg.Height-8)
		if m.hasPaste {
			m.paste.SetWidth(msg.Width - 4)
		}
		return m, nil

	case tea.KeyMsg:
		if m.alert != "" {
			return m.handleAlertKeys(msg)
		}
		switch m.view {
		case ChapterListView:
			return m.handleChapterListKeys(msg)
		default:
			return m.handleFormKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgViewRendered:
		v := msg.data.(formatter.View)
		m.rendered = v
		cmd := m.chapters.SetItems(chapterItems(v))
		return m, tea.Batch(cmd, m.presenter.listen())

	case MsgResult:
		r := msg.data.(tasks.Result)
		switch r.Severity {
		case tasks.SeverityAlert:
			m.alert = r.Message
		case tasks.SeverityInline:
			m.status = r.Message
		}
		return m, m.presenter.listen()

	case MsgProgressUpdate:
		m.current = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgOpDone:
		m.busy = false
		m.current = tasks.ProgressUpdate{}
		return m, nil

	case MsgRefresh:
		if m.busy {
			return m, m.scheduleRefresh()
		}
		return m, tea.Batch(
			m.run(func() error { m.ctrl.LoadProgress(m.ctx); return nil }),
			m.scheduleRefresh(),
		)
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case ChapterListView:
		body = m.renderChapterList()
	case UploadView:
		body = m.renderForm("Tải nội dung", []key.Binding{m.keys.next, m.keys.save, m.keys.back})
	case RangeView:
		body = m.renderForm("Dịch theo khoảng", []key.Binding{m.keys.next, m.keys.submit, m.keys.back})
	case TitleView:
		body = m.renderForm(tasks.TitlePrompt, []key.Binding{m.keys.submit, m.keys.back})
	}

	if m.alert != "" {
		return fmt.Sprintf("%s\n\n%s\n%s", body, styles.alert.Render(m.alert), m.help.ShortHelpView([]key.Binding{m.keys.dismiss}))
	}
	return body
}

func (m *Model) handleAlertKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.dismiss):
		m.alert = ""
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleChapterListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.chapters.FilterState() == list.Filtering {
		return m.updateComponents(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case m.busy:
		return m.updateComponents(msg)
	case key.Matches(msg, m.keys.upload):
		m.openForm(UploadView)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.translate):
		m.openForm(RangeView)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.export):
		if !m.ctrl.State().HasTranslations() {
			m.alert = tasks.MsgNoTranslations
			return m, nil
		}
		m.openForm(TitleView)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.local):
		return m, m.run(func() error {
			_, err := m.ctrl.ExportLocal(tasks.ExportInput{Format: formatter.FormatMarkdown})
			return err
		})
	case key.Matches(msg, m.keys.refresh):
		return m, m.run(func() error { m.ctrl.LoadProgress(m.ctx); return nil })
	}

	return m.updateComponents(msg)
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.view == TitleView {
			// A cancelled title prompt still exports, with the default title.
			m.closeForm()
			return m, m.exportEpub("")
		}
		m.closeForm()
		return m, nil
	case "ctrl+s":
		return m, m.submit()
	case "tab":
		m.focusInput(m.focus + 1)
		return m, nil
	case "shift+tab":
		m.focusInput(m.focus - 1)
		return m, nil
	}

	if m.pasteFocused() {
		return m.updateComponents(msg)
	}

	switch msg.String() {
	case "down":
		m.focusInput(m.focus + 1)
		return m, nil
	case "up":
		m.focusInput(m.focus - 1)
		return m, nil
	case "enter":
		return m, m.submit()
	}

	return m.updateComponents(msg)
}

func (m *Model) submit() tea.Cmd {
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		values[i] = in.Value()
	}
	var text string
	if m.hasPaste {
		text = m.paste.Value()
	}
	view := m.view
	m.closeForm()

	switch view {
	case UploadView:
		path := strings.TrimSpace(values[0])
		return m.run(func() error { return m.ctrl.LoadContent(m.ctx, path, text) })
	case RangeView:
		in := tasks.RangeInput{
			Start:   parseChapter(values[0]),
			End:     parseChapter(values[1]),
			APIKeys: strings.TrimSpace(values[2]),
			Prompt:  strings.TrimSpace(values[3]),
		}
		return m.run(func() error { return m.ctrl.TranslateRange(m.ctx, in) })
	case TitleView:
		return m.exportEpub(values[0])
	}
	return nil
}

func (m *Model) exportEpub(title string) tea.Cmd {
	return m.run(func() error {
		_, err := m.ctrl.ExportEpub(m.ctx, tasks.ExportInput{Title: title})
		return err
	})
}

// parseChapter reads a chapter number. Anything unparsable becomes 0, which range validation rejects.
func parseChapter(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func (m *Model) openForm(view ViewState) {
	m.view = view
	m.focus = 0

	switch view {
	case UploadView:
		m.inputs = []textinput.Model{newInput("Đường dẫn tệp (.txt, .html)", "")}
		m.paste = newPasteArea("Hoặc dán nội dung", m.width-4)
		m.hasPaste = true
	case RangeView:
		keys := newInput("API keys (phân tách bằng dấu phẩy)", "")
		keys.EchoMode = textinput.EchoPassword
		m.inputs = []textinput.Model{
			newInput("Từ chương", ""),
			newInput("Đến chương", ""),
			keys,
			newInput(tasks.DefaultPrompt, ""),
		}
	case TitleView:
		m.inputs = []textinput.Model{newInput(tasks.DefaultTitle, tasks.DefaultTitle)}
	}
	m.focusInput(0)
}

func (m *Model) closeForm() {
	m.view = ChapterListView
	m.inputs = nil
	m.paste = textarea.Model{}
	m.hasPaste = false
	m.focus = 0
}

func (m *Model) fieldCount() int {
	if m.hasPaste {
		return len(m.inputs) + 1
	}
	return len(m.inputs)
}

func (m *Model) pasteFocused() bool {
	return m.hasPaste && m.focus == len(m.inputs)
}

func (m *Model) focusInput(i int) {
	n := m.fieldCount()
	if n == 0 {
		return
	}
	m.focus = (i + n) % n
	for j := range m.inputs {
		if j == m.focus {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	if m.hasPaste {
		if m.pasteFocused() {
			m.paste.Focus()
		} else {
			m.paste.Blur()
		}
	}
}

func newInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.SetValue(value)
	in.CharLimit = 0
	return in
}

// newPasteArea returns an unbounded multi-line input. Pasted text keeps its line breaks.
func newPasteArea(placeholder string, width int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	if width > 0 {
		ta.SetWidth(width)
	}
	return ta
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ChapterListView:
		m.chapters, cmd = m.chapters.Update(msg)
	default:
		switch {
		case m.pasteFocused():
			m.paste, cmd = m.paste.Update(msg)
		case len(m.inputs) > 0:
			m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		}
	}
	return m, cmd
}

// run executes fn off the update loop. Its outcome reaches the model through the presenter.
func (m *Model) run(fn func() error) tea.Cmd {
	m.busy = true
	return func() tea.Msg {
		return opDoneMsg(fn())
	}
}

func (m *Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return refreshMsg() })
}

func (m *Model) waitForProgress() tea.Cmd {
	if m.progressC == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update, ok := <-m.progressC:
			if !ok {
				return nil
			}
			return progressUpdateMsg(update)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) renderChapterList() string {
	var body string
	if m.rendered.Empty {
		body = fmt.Sprintf("%s\n%s", styles.title.Render(formatter.ListHeading), styles.help.Render(formatter.EmptyMessage))
	} else {
		body = m.chapters.View()
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", body, styles.ok.Render(m.rendered.Progress), m.statusLine(), m.help.ShortHelpView(m.listHelp()))
}

func (m *Model) listHelp() []key.Binding {
	return []key.Binding{m.keys.upload, m.keys.translate, m.keys.export, m.keys.local, m.keys.refresh, m.keys.quit}
}

func (m *Model) statusLine() string {
	switch {
	case m.busy && m.current.Message != "":
		return styles.help.Render(m.current.Message)
	case m.busy:
		return styles.help.Render("...")
	case m.status != "":
		return styles.warn.Render(m.status)
	default:
		return ""
	}
}

func (m *Model) renderForm(title string, bindings []key.Binding) string {
	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if m.hasPaste {
		b.WriteString(m.paste.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}
