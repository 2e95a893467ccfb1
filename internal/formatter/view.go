// Package formatter computes display models and local export files for chapters and translations
package formatter

import (
	"fmt"

	"github.com/desertthunder/transx/internal/models"
)

const (
	// SnippetLimit is the number of characters of translated text shown per chapter.
	SnippetLimit = 100
	Ellipsis     = "..."

	UntranslatedPlaceholder = "[Chưa dịch]"
	EmptyMessage            = "Chưa có chương nào."
	ListHeading             = "📚 Các chương"

	ColorTranslated   = "#0056b3"
	ColorUntranslated = "#6c757d"
)

// ChapterRow is the display model of one chapter.
type ChapterRow struct {
	Index      int    // zero-based position, the translation map key
	Number     int    // one-based position, as used by range translation
	Title      string // chapter title
	Snippet    string // truncated translation or the placeholder
	Translated bool   // whether a translation exists for this position
	Color      string // hex colour for the snippet
}

// View is the display model of the chapter list and progress summary.
type View struct {
	Rows     []ChapterRow
	Empty    bool
	Progress string
}

// Snippet returns text unchanged when it has at most [SnippetLimit] characters, otherwise its first [SnippetLimit] characters followed by [Ellipsis].
//
// Characters are runes, so Vietnamese diacritics are never split.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetLimit {
		return text
	}
	return string(runes[:SnippetLimit]) + Ellipsis
}

// ProgressLabel returns the "done/total" summary.
func ProgressLabel(done, total int) string {
	return fmt.Sprintf("Đã dịch: %d/%d chương", done, total)
}

// BuildRow computes the row for chapter i.
//
// An empty translation counts as untranslated, matching how the server's falsy values were displayed.
func BuildRow(i int, chapter models.Chapter, translated models.TranslationMap) ChapterRow {
	row := ChapterRow{
		Index:   i,
		Number:  i + 1,
		Title:   chapter.Title,
		Snippet: UntranslatedPlaceholder,
		Color:   ColorUntranslated,
	}

	if text, ok := translated[i]; ok && text != "" {
		row.Snippet = Snippet(text)
		row.Translated = true
		row.Color = ColorTranslated
	}
	return row
}

// BuildView computes the display model of the chapter list.
//
// Translation map entries without a matching chapter are ignored for rows but still counted by the progress label.
func BuildView(chapters []models.Chapter, translated models.TranslationMap) View {
	v := View{
		Rows:     make([]ChapterRow, 0, len(chapters)),
		Empty:    len(chapters) == 0,
		Progress: ProgressLabel(len(translated), len(chapters)),
	}

	for i, ch := range chapters {
		v.Rows = append(v.Rows, BuildRow(i, ch, translated))
	}
	return v
}

// BuildExport assembles the export payload. Each chapter carries its translation when present, otherwise its original content.
func BuildExport(title, author string, chapters []models.Chapter, translated models.TranslationMap) models.ExportRequest {
	out := make([]models.Chapter, len(chapters))
	for i, ch := range chapters {
		content := ch.Content
		if text, ok := translated[i]; ok && text != "" {
			content = text
		}
		out[i] = models.Chapter{Title: ch.Title, Content: content}
	}

	return models.ExportRequest{Title: title, Author: author, Chapters: out}
}
