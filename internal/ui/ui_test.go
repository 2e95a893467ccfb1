package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/transx/internal/formatter"
	"github.com/desertthunder/transx/internal/models"
	"github.com/desertthunder/transx/internal/services"
	"github.com/desertthunder/transx/internal/tasks"
	th "github.com/desertthunder/transx/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func newTestModel(t *testing.T) (*Model, *th.FakeServer, *ChannelPresenter) {
	t.Helper()

	srv := th.NewFakeServer(t)
	client, err := services.NewClient(srv.URL, nil)
	require.NoError(t, err)

	ctrl, err := tasks.NewController(tasks.ControllerOpts{
		Backend:   client,
		OutputDir: t.TempDir(),
		OpenURL:   func(string) error { return nil },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	presenter := NewChannelPresenter(ctx)
	return NewModel(ctx, ModelOpts{Controller: ctrl, Presenter: presenter}), srv, presenter
}

// drain feeds every pending presenter event into the model.
func drain(m *Model, p *ChannelPresenter) []Msg {
	var out []Msg
	for {
		select {
		case msg := <-p.events:
			out = append(out, msg.(Msg))
			m.Update(msg)
		default:
			return out
		}
	}
}

// runCmd runs the command returned by an update and feeds its message back.
func runCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func TestRenderChapterList(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		out := RenderChapterList(formatter.BuildView(nil, nil))

		assert.Contains(t, out, formatter.ListHeading)
		assert.Contains(t, out, "Chưa có chương nào.")
		assert.Contains(t, out, "Đã dịch: 0/0 chương")
	})

	t.Run("rows", func(t *testing.T) {
		v := formatter.BuildView(
			[]models.Chapter{{Title: "A"}, {Title: "B"}},
			models.TranslationMap{1: "bản dịch"},
		)
		out := RenderChapterList(v)

		assert.Contains(t, out, "1. A")
		assert.Contains(t, out, "[Chưa dịch]")
		assert.Contains(t, out, "2. B")
		assert.Contains(t, out, "bản dịch")
		assert.Contains(t, out, "Đã dịch: 1/2 chương")
		assert.NotContains(t, out, formatter.EmptyMessage)
	})
}

func TestRenderResult(t *testing.T) {
	assert.Contains(t, RenderResult(tasks.Result{Severity: tasks.SeverityAlert, Message: tasks.MsgInvalidRange}), tasks.MsgInvalidRange)
	assert.Contains(t, RenderResult(tasks.Result{Severity: tasks.SeverityInline, Message: tasks.MsgProgressFailed}), tasks.MsgProgressFailed)
	assert.Empty(t, RenderResult(tasks.Result{Severity: tasks.SeverityLog, Message: "hidden"}))
}

func TestModel(t *testing.T) {
	t.Run("renders views from the presenter", func(t *testing.T) {
		m, _, _ := newTestModel(t)

		v := formatter.BuildView([]models.Chapter{{Title: "A"}, {Title: "B"}}, models.TranslationMap{0: "x"})
		m.Update(viewRenderedMsg(v))

		assert.Len(t, m.chapters.Items(), 2)
		assert.Contains(t, m.View(), "Đã dịch: 1/2 chương")
	})

	t.Run("empty view shows the empty message", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		assert.Contains(t, m.View(), formatter.EmptyMessage)
	})

	t.Run("alerts are modal until dismissed", func(t *testing.T) {
		m, _, _ := newTestModel(t)

		m.Update(resultMsg(tasks.Result{Severity: tasks.SeverityAlert, Message: "chú ý"}))
		assert.Contains(t, m.View(), "chú ý")

		m.Update(keyPress("t"))
		assert.Equal(t, ChapterListView, m.view, "keys other than dismiss are swallowed")

		m.Update(keyPress("enter"))
		assert.NotContains(t, m.View(), "chú ý")
	})

	t.Run("inline results go to the status line", func(t *testing.T) {
		m, _, _ := newTestModel(t)

		m.Update(resultMsg(tasks.Result{Severity: tasks.SeverityInline, Message: tasks.MsgProgressFailed}))

		assert.Empty(t, m.alert)
		assert.Contains(t, m.View(), tasks.MsgProgressFailed)
	})

	t.Run("invalid range is rejected without a request", func(t *testing.T) {
		m, srv, p := newTestModel(t)

		m.Update(keyPress("t"))
		require.Equal(t, RangeView, m.view)
		m.inputs[0].SetValue("3")
		m.inputs[1].SetValue("2")

		_, cmd := m.Update(keyPress("enter"))
		runCmd(t, m, cmd)
		drain(m, p)

		assert.Equal(t, ChapterListView, m.view)
		assert.Equal(t, tasks.MsgInvalidRange, m.alert)
		assert.Equal(t, 0, srv.Calls("/translate-range"))
	})

	t.Run("valid range is sent", func(t *testing.T) {
		m, srv, p := newTestModel(t)
		srv.SetTranslateResponse(models.TranslateRangeResponse{Status: "success", TranslatedCount: 1})

		m.Update(keyPress("t"))
		m.inputs[0].SetValue("1")
		m.inputs[1].SetValue("1")
		m.inputs[2].SetValue("key")

		_, cmd := m.Update(keyPress("enter"))
		runCmd(t, m, cmd)
		drain(m, p)

		require.NotNil(t, srv.LastTranslate())
		assert.Equal(t, "key", srv.LastTranslate().APIKeys)
		assert.Equal(t, "✅ Đã dịch thêm 1 chương!", m.alert)
		assert.False(t, m.busy)
	})

	t.Run("upload pasted text", func(t *testing.T) {
		m, srv, p := newTestModel(t)
		srv.SetChapters([]models.Chapter{{Title: "Chương 1", Content: "một"}})

		m.Update(keyPress("u"))
		require.Equal(t, UploadView, m.view)
		m.Update(keyPress("tab"))
		assert.Equal(t, 1, m.focus)
		m.paste.SetValue("Chương 1\nmột")

		_, cmd := m.Update(keyPress("ctrl+s"))
		runCmd(t, m, cmd)
		drain(m, p)

		assert.Equal(t, "Chương 1\nmột", srv.LastUpload().Text)
		assert.Len(t, m.chapters.Items(), 1)
		assert.Contains(t, m.View(), "Đã dịch: 0/1 chương")
	})

	t.Run("cancelled title prompt exports with the default title", func(t *testing.T) {
		m, srv, p := newTestModel(t)
		m.ctrl.State().SetChapters([]models.Chapter{{Title: "A", Content: "orig"}})
		m.ctrl.State().ReplaceTranslations(models.TranslationMap{0: "trans"})

		m.Update(keyPress("e"))
		require.Equal(t, TitleView, m.view)

		_, cmd := m.Update(keyPress("esc"))
		runCmd(t, m, cmd)
		drain(m, p)

		require.NotNil(t, srv.LastExport())
		assert.Equal(t, tasks.DefaultTitle, srv.LastExport().Title)
		assert.Equal(t, "trans", srv.LastExport().Chapters[0].Content)
		assert.Empty(t, m.alert)
	})

	t.Run("typed lines keep their breaks", func(t *testing.T) {
		m, srv, p := newTestModel(t)

		m.Update(keyPress("u"))
		m.Update(keyPress("tab"))
		m.Update(keyPress("a"))
		m.Update(keyPress("enter"))
		require.Equal(t, UploadView, m.view, "enter in the paste field inserts a line")
		m.Update(keyPress("b"))
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("\nc"), Paste: true})

		_, cmd := m.Update(keyPress("ctrl+s"))
		runCmd(t, m, cmd)
		drain(m, p)

		assert.Equal(t, "a\nb\nc", srv.LastUpload().Text)
	})

	t.Run("enter submits from the path field", func(t *testing.T) {
		m, srv, p := newTestModel(t)
		path := t.TempDir() + "/book.txt"
		th.MustWriteFile(t, path, "nội dung")

		m.Update(keyPress("u"))
		m.inputs[0].SetValue(path)
		_, cmd := m.Update(keyPress("enter"))
		runCmd(t, m, cmd)
		drain(m, p)

		assert.Equal(t, "book.txt", srv.LastUpload().Filename)
	})

	t.Run("export without translations alerts before asking for a title", func(t *testing.T) {
		m, srv, _ := newTestModel(t)

		_, cmd := m.Update(keyPress("e"))

		assert.Nil(t, cmd)
		assert.Equal(t, ChapterListView, m.view)
		assert.Empty(t, m.inputs)
		assert.Equal(t, tasks.MsgNoTranslations, m.alert)
		assert.Equal(t, 0, srv.Calls("/export-epub"))

		m.Update(keyPress("enter"))
		assert.Empty(t, m.alert)
	})

	t.Run("esc closes other forms", func(t *testing.T) {
		m, _, _ := newTestModel(t)

		m.Update(keyPress("u"))
		_, cmd := m.Update(keyPress("esc"))

		assert.Nil(t, cmd)
		assert.Equal(t, ChapterListView, m.view)
	})

	t.Run("refresh reloads progress", func(t *testing.T) {
		m, srv, p := newTestModel(t)
		srv.SetStatuses(map[string]string{"0": "x"})

		_, cmd := m.Update(keyPress("r"))
		runCmd(t, m, cmd)
		msgs := drain(m, p)

		assert.Equal(t, 1, srv.Calls("/status"))
		require.NotEmpty(t, msgs)
		assert.Equal(t, MsgViewRendered, msgs[len(msgs)-1].Kind())
	})

	t.Run("quit", func(t *testing.T) {
		m, _, _ := newTestModel(t)

		_, cmd := m.Update(keyPress("q"))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}

func TestParseChapter(t *testing.T) {
	assert.Equal(t, 3, parseChapter(" 3 "))
	assert.Equal(t, 0, parseChapter("ba"))
	assert.Equal(t, -1, parseChapter("-1"))
	assert.True(t, strings.HasPrefix(chapterHeading(formatter.ChapterRow{Number: 2, Title: "B"}), "2."))
}
