package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/transx/internal/formatter"
	"github.com/desertthunder/transx/internal/models"
	"github.com/desertthunder/transx/internal/services"
	"github.com/desertthunder/transx/internal/session"
	"github.com/desertthunder/transx/internal/shared"
	th "github.com/desertthunder/transx/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memIdentities struct {
	mu    sync.Mutex
	items map[string]models.Identity
}

func (r *memIdentities) Get(name string) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.items[name]
	if !ok {
		return nil, shared.ErrIdentityNotFound
	}
	return &id, nil
}

func (r *memIdentities) Save(identity *models.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[identity.Name] = *identity
	return nil
}

type memChapters struct {
	chapters []models.Chapter
	err      error
}

func (r *memChapters) ReplaceAll(chapters []models.Chapter) error {
	if r.err != nil {
		return r.err
	}
	r.chapters = append([]models.Chapter(nil), chapters...)
	return nil
}

func (r *memChapters) List() ([]models.Chapter, error) {
	return append([]models.Chapter{}, r.chapters...), r.err
}

type harness struct {
	srv        *th.FakeServer
	client     *services.Client
	presenter  *RecordingPresenter
	identities *memIdentities
	chapters   *memChapters
	ctrl       *Controller
	opened     []string
}

func newHarness(t *testing.T, configure ...func(*ControllerOpts)) *harness {
	t.Helper()

	srv := th.NewFakeServer(t)
	client, err := services.NewClient(srv.URL, nil)
	require.NoError(t, err)

	h := &harness{
		srv:        srv,
		client:     client,
		presenter:  &RecordingPresenter{},
		identities: &memIdentities{items: map[string]models.Identity{}},
		chapters:   &memChapters{},
	}

	opts := ControllerOpts{
		Backend:   client,
		Identity:  session.NewIdentityManager(session.IdentityOpts{Repo: h.identities, Jar: client}),
		Chapters:  h.chapters,
		Presenter: h.presenter,
		OpenURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
		OutputDir: t.TempDir(),
	}
	for _, fn := range configure {
		fn(&opts)
	}

	h.ctrl, err = NewController(opts)
	require.NoError(t, err)
	return h
}

func (h *harness) seed(chapters []models.Chapter, translated models.TranslationMap) {
	h.ctrl.State().SetChapters(chapters)
	h.ctrl.State().ReplaceTranslations(translated)
}

func TestNewController(t *testing.T) {
	_, err := NewController(ControllerOpts{})
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
}

func TestStart(t *testing.T) {
	t.Run("creates identity and sends it as a cookie", func(t *testing.T) {
		h := newHarness(t)
		h.srv.SetStatuses(map[string]string{"0": "một"})

		require.NoError(t, h.ctrl.Start(context.Background()))

		stored, err := h.identities.Get("user_id")
		require.NoError(t, err)
		assert.NotEmpty(t, stored.Token)
		assert.Equal(t, stored.Token, h.srv.Cookie("user_id"))
		assert.Equal(t, 1, h.srv.Calls("/status"))
	})

	t.Run("keeps an existing identity", func(t *testing.T) {
		h := newHarness(t)
		h.identities.items["user_id"] = models.Identity{
			Name:      "user_id",
			Token:     "user_42",
			Path:      "/",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}

		require.NoError(t, h.ctrl.Start(context.Background()))

		stored, _ := h.identities.Get("user_id")
		assert.Equal(t, "user_42", stored.Token)
		assert.Equal(t, "user_42", h.srv.Cookie("user_id"))
	})

	t.Run("restores cached chapters", func(t *testing.T) {
		h := newHarness(t)
		h.chapters.chapters = []models.Chapter{{Title: "A", Content: "a"}}
		h.srv.SetStatuses(map[string]string{"0": "dịch"})

		require.NoError(t, h.ctrl.Start(context.Background()))

		view, ok := h.presenter.LastView()
		require.True(t, ok)
		require.Len(t, view.Rows, 1)
		assert.Equal(t, "dịch", view.Rows[0].Snippet)
		assert.Equal(t, "Đã dịch: 1/1 chương", view.Progress)
	})
}

func TestLoadContent(t *testing.T) {
	chapters := []models.Chapter{{Title: "Chương 1", Content: "một"}, {Title: "Chương 2", Content: "hai"}}

	t.Run("uploads text and replaces chapters", func(t *testing.T) {
		h := newHarness(t)
		h.seed([]models.Chapter{{Title: "old"}}, nil)
		h.srv.SetChapters(chapters)

		require.NoError(t, h.ctrl.LoadContent(context.Background(), "", "Chương 1\nmột"))

		assert.Equal(t, "Chương 1\nmột", h.srv.LastUpload().Text)
		assert.Equal(t, chapters, h.ctrl.State().Chapters())
		assert.Equal(t, chapters, h.chapters.chapters)
		assert.Equal(t, 1, h.srv.Calls("/status"))

		view, ok := h.presenter.LastView()
		require.True(t, ok)
		assert.Len(t, view.Rows, 2)
		assert.Equal(t, "Đã dịch: 0/2 chương", view.Progress)
	})

	t.Run("file takes precedence over text", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "truyen.txt")
		th.MustWriteFile(t, path, "nội dung tệp")

		require.NoError(t, h.ctrl.LoadContent(context.Background(), path, "ignored"))

		up := h.srv.LastUpload()
		assert.Equal(t, "truyen.txt", up.Filename)
		assert.Equal(t, "nội dung tệp", up.FileContent)
		assert.Empty(t, up.Text)
	})

	t.Run("html files are converted to markdown text", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "truyen.html")
		th.MustWriteFile(t, path, "<html><body><h1>Chương 1</h1><p>Xin chào</p></body></html>")

		require.NoError(t, h.ctrl.LoadContent(context.Background(), path, ""))

		up := h.srv.LastUpload()
		assert.Empty(t, up.Filename)
		assert.Contains(t, up.Text, "# Chương 1")
		assert.Contains(t, up.Text, "Xin chào")
		assert.NotContains(t, up.Text, "<h1>")
	})

	t.Run("missing input is rejected without a request", func(t *testing.T) {
		h := newHarness(t)

		err := h.ctrl.LoadContent(context.Background(), "", "   ")

		assert.ErrorIs(t, err, shared.ErrMissingArgument)
		assert.Equal(t, 0, h.srv.Calls("/upload"))
		require.Len(t, h.presenter.Alerts(), 1)
	})

	t.Run("server failure is alerted and returned", func(t *testing.T) {
		h := newHarness(t)
		h.seed(chapters, nil)
		h.srv.Fail("/upload", 500)

		err := h.ctrl.LoadContent(context.Background(), "", "text")

		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		alerts := h.presenter.Alerts()
		require.Len(t, alerts, 1)
		assert.True(t, strings.HasPrefix(alerts[0], "Lỗi khi tải nội dung: "))
		assert.Equal(t, chapters, h.ctrl.State().Chapters(), "chapters kept on failure")
	})

	t.Run("missing file", func(t *testing.T) {
		h := newHarness(t)

		err := h.ctrl.LoadContent(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), "")

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Equal(t, 0, h.srv.Calls("/upload"))
	})
}

func TestLoadProgress(t *testing.T) {
	t.Run("replaces the translation map wholesale", func(t *testing.T) {
		h := newHarness(t)
		h.seed([]models.Chapter{{Title: "1"}, {Title: "2"}, {Title: "3"}}, nil)
		h.srv.SetStatuses(
			map[string]string{"0": "a", "1": "b"},
			map[string]string{"2": "c"},
		)

		require.True(t, h.ctrl.LoadProgress(context.Background()))
		require.True(t, h.ctrl.LoadProgress(context.Background()))

		assert.Equal(t, models.TranslationMap{2: "c"}, h.ctrl.State().Translations())

		view, _ := h.presenter.LastView()
		assert.False(t, view.Rows[0].Translated)
		assert.False(t, view.Rows[1].Translated)
		assert.True(t, view.Rows[2].Translated)
		assert.Equal(t, "Đã dịch: 1/3 chương", view.Progress)
	})

	t.Run("failure degrades to an inline message", func(t *testing.T) {
		h := newHarness(t)
		h.seed(nil, models.TranslationMap{0: "kept"})
		h.srv.Fail("/status", 503)

		assert.False(t, h.ctrl.LoadProgress(context.Background()))

		results := h.presenter.Results()
		require.Len(t, results, 1)
		assert.Equal(t, SeverityInline, results[0].Severity)
		assert.Equal(t, MsgProgressFailed, results[0].Message)
		assert.Empty(t, h.presenter.Alerts())
		assert.Equal(t, models.TranslationMap{0: "kept"}, h.ctrl.State().Translations())
	})

	t.Run("malformed response degrades to an inline message", func(t *testing.T) {
		h := newHarness(t)
		h.srv.RawBody("/status", "not json")

		assert.False(t, h.ctrl.LoadProgress(context.Background()))
		assert.Equal(t, MsgProgressFailed, h.presenter.Results()[0].Message)
	})

	t.Run("unknown indices do not break rendering", func(t *testing.T) {
		h := newHarness(t)
		h.seed([]models.Chapter{{Title: "1"}}, nil)
		h.srv.SetStatuses(map[string]string{"0": "a", "9": "z", "x": "bad"})

		require.True(t, h.ctrl.LoadProgress(context.Background()))

		view, _ := h.presenter.LastView()
		require.Len(t, view.Rows, 1)
		assert.Equal(t, "Đã dịch: 2/1 chương", view.Progress)
		assert.Equal(t, "Đã dịch: 2/1 chương", h.ctrl.Progress())
	})

	t.Run("stray indices", func(t *testing.T) {
		m := models.TranslationMap{-1: "", 0: "a", 2: "c", 5: "f"}

		assert.Equal(t, []int{-1, 5}, strayIndices(m, 3))
		assert.Empty(t, strayIndices(models.TranslationMap{0: "a"}, 1))
	})
}

func TestTranslateRange(t *testing.T) {
	t.Run("range validation", func(t *testing.T) {
		tc := []struct {
			name       string
			start, end int
			sent       bool
		}{
			{name: "start below one", start: 0, end: 5},
			{name: "end before start", start: 3, end: 2},
			{name: "single chapter", start: 1, end: 1, sent: true},
			{name: "no upper bound check", start: 1, end: 999, sent: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				h := newHarness(t)

				err := h.ctrl.TranslateRange(context.Background(), RangeInput{Start: tt.start, End: tt.end})

				if tt.sent {
					assert.NoError(t, err)
					assert.Equal(t, 1, h.srv.Calls("/translate-range"))
					return
				}
				assert.ErrorIs(t, err, shared.ErrInvalidRange)
				assert.Equal(t, 0, h.srv.Calls("/translate-range"))
				assert.Equal(t, []string{MsgInvalidRange}, h.presenter.Alerts())
			})
		}
	})

	t.Run("success reports the count and reloads progress", func(t *testing.T) {
		h := newHarness(t, func(o *ControllerOpts) { o.APIKeys = "k1,k2" })
		h.seed([]models.Chapter{{Title: "1"}, {Title: "2"}, {Title: "3"}}, nil)
		h.srv.SetTranslateResponse(models.TranslateRangeResponse{Status: "success", TranslatedCount: 3})
		h.srv.SetStatuses(map[string]string{"0": "a", "1": "b", "2": "c"})

		require.NoError(t, h.ctrl.TranslateRange(context.Background(), RangeInput{Start: 1, End: 3}))

		req := h.srv.LastTranslate()
		require.NotNil(t, req)
		assert.Equal(t, models.TranslateRangeRequest{Start: 1, End: 3, APIKeys: "k1,k2", Prompt: DefaultPrompt}, *req)
		assert.Equal(t, []string{"✅ Đã dịch thêm 3 chương!"}, h.presenter.Alerts())
		assert.Equal(t, 1, h.srv.Calls("/status"))
		assert.Equal(t, "Đã dịch: 3/3 chương", h.ctrl.Progress())
	})

	t.Run("explicit keys and prompt win over defaults", func(t *testing.T) {
		h := newHarness(t, func(o *ControllerOpts) { o.APIKeys = "default" })

		require.NoError(t, h.ctrl.TranslateRange(context.Background(), RangeInput{Start: 2, End: 4, APIKeys: "mine", Prompt: "p"}))

		req := h.srv.LastTranslate()
		assert.Equal(t, "mine", req.APIKeys)
		assert.Equal(t, "p", req.Prompt)
	})

	t.Run("non-success status is a generic alert", func(t *testing.T) {
		h := newHarness(t)
		h.srv.SetTranslateResponse(models.TranslateRangeResponse{Status: "error"})

		err := h.ctrl.TranslateRange(context.Background(), RangeInput{Start: 1, End: 2})

		assert.ErrorIs(t, err, shared.ErrTranslateFailed)
		assert.Equal(t, []string{MsgTranslateFailed}, h.presenter.Alerts())
		assert.Equal(t, 0, h.srv.Calls("/status"))
	})

	t.Run("transport failure is a generic alert", func(t *testing.T) {
		h := newHarness(t)
		h.srv.Fail("/translate-range", 500)

		err := h.ctrl.TranslateRange(context.Background(), RangeInput{Start: 1, End: 2})

		assert.ErrorIs(t, err, shared.ErrTranslateFailed)
		assert.Equal(t, []string{MsgTranslateFailed}, h.presenter.Alerts())
	})
}

func TestExportEpub(t *testing.T) {
	chapters := []models.Chapter{{Title: "A", Content: "orig"}, {Title: "B", Content: "orig2"}}

	t.Run("requires translations", func(t *testing.T) {
		h := newHarness(t)
		h.seed(chapters, nil)

		_, err := h.ctrl.ExportEpub(context.Background(), ExportInput{Title: "T"})

		assert.ErrorIs(t, err, shared.ErrNoTranslations)
		assert.Equal(t, []string{MsgNoTranslations}, h.presenter.Alerts())
		assert.Equal(t, 0, h.srv.Calls("/export-epub"))
	})

	t.Run("merges translations and saves the file", func(t *testing.T) {
		h := newHarness(t)
		h.seed(chapters, models.TranslationMap{1: "trans"})
		dir := t.TempDir()

		path, err := h.ctrl.ExportEpub(context.Background(), ExportInput{Title: "Truyện hay", OutputDir: dir})
		require.NoError(t, err)

		req := h.srv.LastExport()
		require.NotNil(t, req)
		assert.Equal(t, "Truyện hay", req.Title)
		assert.Equal(t, DefaultAuthor, req.Author)
		assert.Equal(t, []models.Chapter{{Title: "A", Content: "orig"}, {Title: "B", Content: "trans"}}, req.Chapters)

		assert.Equal(t, filepath.Join(dir, "Truyện hay.epub"), path)
		assert.Equal(t, "PK\x03\x04epub", th.MustReadFile(t, path))
		assert.Empty(t, h.presenter.Alerts())
	})

	t.Run("prompts for a title", func(t *testing.T) {
		h := newHarness(t, func(o *ControllerOpts) { o.Prompter = StaticPrompter("Tên mới") })
		h.seed(chapters, models.TranslationMap{0: "x"})

		path, err := h.ctrl.ExportEpub(context.Background(), ExportInput{})
		require.NoError(t, err)

		assert.Equal(t, "Tên mới", h.srv.LastExport().Title)
		assert.Equal(t, "Tên mới.epub", filepath.Base(path))
	})

	t.Run("cancelled prompt uses the default title", func(t *testing.T) {
		h := newHarness(t, func(o *ControllerOpts) { o.Prompter = StaticPrompter("") })
		h.seed(chapters, models.TranslationMap{0: "x"})

		_, err := h.ctrl.ExportEpub(context.Background(), ExportInput{})
		require.NoError(t, err)

		assert.Equal(t, DefaultTitle, h.srv.LastExport().Title)
	})

	t.Run("opens the download url", func(t *testing.T) {
		h := newHarness(t)
		h.seed(chapters, models.TranslationMap{0: "x"})

		url, err := h.ctrl.ExportEpub(context.Background(), ExportInput{Title: "T", Open: true})
		require.NoError(t, err)

		assert.Equal(t, h.srv.URL+"/download/book.epub", url)
		assert.Equal(t, []string{url}, h.opened)
		assert.Equal(t, 0, h.srv.Calls("/download/book.epub"))
	})

	t.Run("server failure alerts with the error", func(t *testing.T) {
		h := newHarness(t)
		h.seed(chapters, models.TranslationMap{0: "x"})
		h.srv.Fail("/export-epub", 500)

		_, err := h.ctrl.ExportEpub(context.Background(), ExportInput{Title: "T"})

		assert.ErrorIs(t, err, shared.ErrExportFailed)
		alerts := h.presenter.Alerts()
		require.Len(t, alerts, 1)
		assert.True(t, strings.HasPrefix(alerts[0], "Lỗi khi xuất EPUB: "))
	})

	t.Run("missing url alerts", func(t *testing.T) {
		h := newHarness(t)
		h.seed(chapters, models.TranslationMap{0: "x"})
		h.srv.RawBody("/export-epub", `{}`)

		_, err := h.ctrl.ExportEpub(context.Background(), ExportInput{Title: "T"})

		assert.ErrorIs(t, err, shared.ErrMalformedResponse)
		assert.Len(t, h.presenter.Alerts(), 1)
	})

	t.Run("failed download leaves no file", func(t *testing.T) {
		h := newHarness(t)
		h.seed(chapters, models.TranslationMap{0: "x"})
		h.srv.Fail("/download/book.epub", 404)
		dir := t.TempDir()

		_, err := h.ctrl.ExportEpub(context.Background(), ExportInput{Title: "T", OutputDir: dir})

		assert.ErrorIs(t, err, shared.ErrExportFailed)
		_, statErr := os.Stat(filepath.Join(dir, "T.epub"))
		assert.True(t, errors.Is(statErr, os.ErrNotExist))
	})

	t.Run("browser failure alerts", func(t *testing.T) {
		h := newHarness(t, func(o *ControllerOpts) {
			o.OpenURL = func(string) error { return errors.New("no browser") }
		})
		h.seed(chapters, models.TranslationMap{0: "x"})

		_, err := h.ctrl.ExportEpub(context.Background(), ExportInput{Title: "T", Open: true})

		assert.ErrorIs(t, err, shared.ErrExportFailed)
		assert.Equal(t, []string{"Lỗi khi xuất EPUB: no browser"}, h.presenter.Alerts())
	})
}

func TestExportLocal(t *testing.T) {
	t.Run("writes merged chapters", func(t *testing.T) {
		h := newHarness(t)
		h.seed([]models.Chapter{{Title: "A", Content: "orig"}, {Title: "B", Content: "orig2"}}, models.TranslationMap{0: "trans"})
		dir := t.TempDir()

		path, err := h.ctrl.ExportLocal(ExportInput{Title: "T", OutputDir: dir, Format: formatter.FormatText})
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "T.txt"), path)
		content := th.MustReadFile(t, path)
		assert.Contains(t, content, "trans")
		assert.Contains(t, content, "orig2")
		assert.Equal(t, 0, h.srv.Calls("/export-epub"))
	})

	t.Run("requires translations", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.ctrl.ExportLocal(ExportInput{Title: "T"})
		assert.ErrorIs(t, err, shared.ErrNoTranslations)
	})

	t.Run("defaults to markdown", func(t *testing.T) {
		h := newHarness(t)
		h.seed([]models.Chapter{{Title: "A", Content: "orig"}}, models.TranslationMap{0: "trans"})

		path, err := h.ctrl.ExportLocal(ExportInput{Title: "T"})
		require.NoError(t, err)
		assert.Equal(t, ".md", filepath.Ext(path))
	})
}

func TestWatch(t *testing.T) {
	t.Run("polls until the context ends", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 100)
		h := newHarness(t, func(o *ControllerOpts) { o.Progress = progress })
		h.srv.SetStatuses(map[string]string{"0": "a"})

		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
		defer cancel()

		polls := h.ctrl.Watch(ctx, 20*time.Millisecond)

		assert.GreaterOrEqual(t, polls, 2)
		assert.Equal(t, polls, h.srv.Calls("/status"))

		var ticks int
		for len(progress) > 0 {
			if u := <-progress; u.Phase == Poll {
				ticks++
				assert.Equal(t, "Đã dịch: 1/0 chương", u.Message)
			}
		}
		assert.Equal(t, polls, ticks)
	})

	t.Run("keeps polling through failures", func(t *testing.T) {
		h := newHarness(t)
		h.srv.Fail("/status", 500)

		ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
		defer cancel()

		polls := h.ctrl.Watch(ctx, 20*time.Millisecond)

		assert.GreaterOrEqual(t, polls, 2)
		assert.Len(t, h.presenter.Results(), polls)
	})

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		h := newHarness(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Equal(t, 0, h.ctrl.Watch(ctx, time.Hour))
	})
}
