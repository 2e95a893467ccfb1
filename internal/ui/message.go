package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/transx/internal/formatter"
	"github.com/desertthunder/transx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgViewRendered MsgKind = iota
	MsgResult
	MsgProgressUpdate
	MsgOpDone
	MsgRefresh
)

// Kind returns the message kind.
func (m Msg) Kind() MsgKind { return m.kind }

// viewRenderedMsg is the constructor for [MsgViewRendered]
func viewRenderedMsg(v formatter.View) Msg {
	return Msg{kind: MsgViewRendered, data: v}
}

// resultMsg is the constructor for [MsgResult]
func resultMsg(r tasks.Result) Msg {
	return Msg{kind: MsgResult, data: r}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// opDoneMsg is the constructor for [MsgOpDone]
func opDoneMsg(err error) Msg {
	return Msg{kind: MsgOpDone, data: err}
}

// refreshMsg is the constructor for [MsgRefresh]
func refreshMsg() Msg {
	return Msg{kind: MsgRefresh}
}
