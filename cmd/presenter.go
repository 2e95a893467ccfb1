package main

import (
	"fmt"
	"io"

	"github.com/desertthunder/transx/internal/formatter"
	"github.com/desertthunder/transx/internal/tasks"
	"github.com/desertthunder/transx/internal/ui"
)

type renderMode int

const (
	renderFull    renderMode = iota // chapter list and progress
	renderSummary                   // progress label only
	renderNone                      // results only
)

// cliPresenter prints results and views to the command output.
type cliPresenter struct {
	out  io.Writer
	mode renderMode
}

func (r *Runner) presenter(mode renderMode) *cliPresenter {
	return &cliPresenter{out: r.output, mode: mode}
}

func (p *cliPresenter) Present(res tasks.Result) {
	if s := ui.RenderResult(res); s != "" {
		fmt.Fprintln(p.out, s)
	}
}

func (p *cliPresenter) Render(v formatter.View) {
	switch p.mode {
	case renderFull:
		fmt.Fprintln(p.out, ui.RenderChapterList(v))
	case renderSummary:
		fmt.Fprintln(p.out, v.Progress)
	}
}
