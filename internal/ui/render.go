package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/transx/internal/formatter"
	"github.com/desertthunder/transx/internal/tasks"
)

func chapterHeading(row formatter.ChapterRow) string {
	return fmt.Sprintf("%d. %s", row.Number, row.Title)
}

// RenderChapterList renders the chapter list, or the empty message, followed by the progress label.
func RenderChapterList(v formatter.View) string {
	var b strings.Builder

	b.WriteString(styles.title.Render(formatter.ListHeading))
	b.WriteString("\n")

	if v.Empty {
		b.WriteString(styles.help.Render(formatter.EmptyMessage))
		b.WriteString("\n")
	}

	for _, row := range v.Rows {
		snippet := styles.untranslated
		if row.Translated {
			snippet = styles.translated
		}
		fmt.Fprintf(&b, "%s\n  %s\n", styles.chapter.Render(chapterHeading(row)), snippet.Render(row.Snippet))
	}

	b.WriteString("\n")
	b.WriteString(styles.ok.Render(v.Progress))
	return b.String()
}

// RenderResult renders a result according to its severity. Log results render as the empty string.
func RenderResult(r tasks.Result) string {
	switch r.Severity {
	case tasks.SeverityAlert:
		return styles.alert.Render(r.Message)
	case tasks.SeverityInline:
		if r.Failed() {
			return styles.warn.Render(r.Message)
		}
		return styles.ok.Render(r.Message)
	default:
		return ""
	}
}
