package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/transx/internal/formatter"
)

var _ list.Item = chapterItem{}

// chapterItem wraps [formatter.ChapterRow] to implement [list.Item].
type chapterItem struct {
	row formatter.ChapterRow
}

func (i chapterItem) FilterValue() string { return i.row.Title }
func (i chapterItem) Title() string       { return chapterHeading(i.row) }
func (i chapterItem) Description() string { return i.row.Snippet }

func chapterItems(v formatter.View) []list.Item {
	items := make([]list.Item, len(v.Rows))
	for i, row := range v.Rows {
		items[i] = chapterItem{row: row}
	}
	return items
}
