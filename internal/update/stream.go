package update

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sandeepkv93/todoai/internal/chat"
)

const streamBuffer = 16

// StreamEventMsg carries one event of send Gen. ch is the pump that produced
// it and is waited on again while the send stays active.
type StreamEventMsg struct {
	Gen   uint64
	Event chat.Event
	ch    <-chan tea.Msg
}

type StreamEndMsg struct {
	Gen uint64
	Err error
}

// streamCmd opens the agent stream on the first run and pumps its events into
// a channel. The pump exits when ctx is cancelled, even if nobody drains it.
func streamCmd(ctx context.Context, backend Backend, req api.AgentTodoRequest, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ch := make(chan tea.Msg, streamBuffer)
		go pumpStream(ctx, backend, req, gen, ch)
		return waitForStream(ch)()
	}
}

func pumpStream(ctx context.Context, backend Backend, req api.AgentTodoRequest, gen uint64, ch chan<- tea.Msg) {
	defer close(ch)
	emit := func(msg tea.Msg) bool {
		select {
		case ch <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	stream, err := backend.AgentCreateStream(ctx, req)
	if err != nil {
		emit(StreamEndMsg{Gen: gen, Err: streamErr(ctx, err)})
		return
	}
	defer stream.Close()

	for {
		ev, err := stream.Next()
		if errors.Is(err, io.EOF) {
			emit(StreamEndMsg{Gen: gen})
			return
		}
		if err != nil {
			emit(StreamEndMsg{Gen: gen, Err: streamErr(ctx, err)})
			return
		}
		if !emit(StreamEventMsg{Gen: gen, Event: ev}) {
			return
		}
	}
}

// streamErr reports cancellation as context.Canceled regardless of how the
// transport chose to surface it.
func streamErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func waitForStream(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		if ev, isEvent := msg.(StreamEventMsg); isEvent {
			ev.ch = ch
			return ev
		}
		return msg
	}
}
