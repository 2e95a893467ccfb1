package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/transx/internal/formatter"
	"github.com/desertthunder/transx/internal/tasks"
)

var _ tasks.Presenter = (*ChannelPresenter)(nil)

// ChannelPresenter forwards results and views to the TUI as messages.
//
// Sends block until the model reads them or ctx is done.
type ChannelPresenter struct {
	ctx    context.Context
	events chan tea.Msg
}

// NewChannelPresenter creates a presenter with a buffered event channel.
func NewChannelPresenter(ctx context.Context) *ChannelPresenter {
	return &ChannelPresenter{ctx: ctx, events: make(chan tea.Msg, 32)}
}

func (p *ChannelPresenter) Present(r tasks.Result) { p.send(resultMsg(r)) }

func (p *ChannelPresenter) Render(v formatter.View) { p.send(viewRenderedMsg(v)) }

func (p *ChannelPresenter) send(msg tea.Msg) {
	select {
	case p.events <- msg:
	case <-p.ctx.Done():
	}
}

// listen waits for the next presenter event.
func (p *ChannelPresenter) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-p.events:
			return msg
		case <-p.ctx.Done():
			return nil
		}
	}
}
