package widget

import (
	"context"
	"fmt"

	"coherence-console/internal/state"
)

// Backend is the remote side of the live widgets. Each widget calls one
// list operation when it goes live and then follows the event stream.
type Backend interface {
	Devices(ctx context.Context) ([]state.Device, error)
	Logs(ctx context.Context) ([]state.LogEntry, error)
	// Subscribe streams mutations until ctx ends, then closes the channel.
	Subscribe(ctx context.Context) (<-chan state.Event, error)
}

// Local serves widgets from an in-process AppState.
type Local struct {
	State *state.AppState
}

func (l Local) Devices(ctx context.Context) ([]state.Device, error) {
	return l.State.Devices(), nil
}

func (l Local) Logs(ctx context.Context) ([]state.LogEntry, error) {
	return l.State.Logs(), nil
}

func (l Local) Subscribe(ctx context.Context) (<-chan state.Event, error) {
	ch, cancel := l.State.Subscribe()
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, nil
}

// FetchFailed reports that a widget's initial list call failed. The widget
// stays empty; the page renders a notice and tells the host.
type FetchFailed struct {
	Widget string
	Err    error
}

func (f FetchFailed) Error() string {
	return fmt.Sprintf("%s: fetch failed: %v", f.Widget, f.Err)
}

func (f FetchFailed) Unwrap() error { return f.Err }
