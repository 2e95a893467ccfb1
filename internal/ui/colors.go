package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/transx/internal/formatter"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title        lipgloss.Style
	ok           lipgloss.Style
	err          lipgloss.Style
	warn         lipgloss.Style
	help         lipgloss.Style
	chapter      lipgloss.Style
	translated   lipgloss.Style
	untranslated lipgloss.Style
	alert        lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:        NewBold(t).MarginBottom(1),
		ok:           NewBold(s),
		err:          NewBold(e),
		warn:         NewStyle(w),
		help:         NewEm(h),
		chapter:      lipgloss.NewStyle().Bold(true),
		translated:   NewStyle(formatter.ColorTranslated),
		untranslated: NewEm(formatter.ColorUntranslated),
		alert: NewBold(w).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(w)).
			Padding(0, 2),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
