package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"coherence-console/internal/dom"
	"coherence-console/internal/state"
	"coherence-console/internal/tabs"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

type fakeBackend struct {
	devices    []state.Device
	logs       []state.LogEntry
	devicesErr error
	logsErr    error
	events     chan state.Event
	// release, when set, holds the list calls until it is closed.
	release chan struct{}
}

func (f *fakeBackend) wait(ctx context.Context) error {
	if f.release == nil {
		return nil
	}
	select {
	case <-f.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeBackend) Devices(ctx context.Context) ([]state.Device, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.devices, f.devicesErr
}

func (f *fakeBackend) Logs(ctx context.Context) ([]state.LogEntry, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.logs, f.logsErr
}

func (f *fakeBackend) Subscribe(ctx context.Context) (<-chan state.Event, error) {
	if f.events == nil {
		f.events = make(chan state.Event, 16)
	}
	return f.events, nil
}

type harness struct {
	doc    *dom.Document
	page   *Page
	clicks chan dom.Target
	cancel context.CancelFunc
	done   chan error
}

func startPage(t *testing.T, backend Backend, opts Options) *harness {
	t.Helper()
	doc := dom.NewDocument(HeaderID, BodyID)
	page := NewPage(doc, backend, opts)
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{doc: doc, page: page, clicks: make(chan dom.Target), cancel: cancel, done: make(chan error, 1)}
	go func() { h.done <- page.Run(ctx, h.clicks) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-h.done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(waitFor):
			t.Fatal("page did not stop")
		}
	})
	return h
}

func (h *harness) tabCount() int {
	return len(h.doc.Children(tabs.MenuBoxID))
}

func (h *harness) visible(tab string) bool {
	return h.doc.Style(tabs.PanelID(tab), dom.PropVisibility) == dom.Visible
}

// onLoop runs fn on the page loop and waits for it.
func (h *harness) onLoop(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	h.page.post(context.Background(), func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("page loop stalled")
	}
}

func (h *harness) click(t *testing.T, tab string) {
	t.Helper()
	target, ok := h.doc.Click(tabs.TabElementID(tab))
	require.True(t, ok)
	h.clicks <- target
}

func TestPageBuildsMenuAndActivatesDevices(t *testing.T) {
	backend := &fakeBackend{
		devices: []state.Device{
			{USN: "uuid:1", FriendlyName: "Living Room", DeviceType: "urn:schemas-upnp-org:device:MediaServer:1"},
			{USN: "uuid:2", FriendlyName: "Kitchen", DeviceType: "urn:schemas-upnp-org:device:MediaRenderer:1"},
		},
	}
	h := startPage(t, backend, Options{})

	require.Eventually(t, func() bool { return h.tabCount() == 2 && h.visible(DevicesTab) }, waitFor, tick)
	require.False(t, h.visible(LoggingTab))

	menu := h.doc.Children(tabs.MenuBoxID)
	require.Equal(t, "Devices-tab", menu[0].ID)
	require.Equal(t, "Logging-tab", menu[1].ID)
	require.Equal(t, tabs.ActiveBackground, menu[0].Style[dom.PropBackground])

	require.Eventually(t, func() bool { return len(h.doc.Children("Devices-container")) == 2 }, waitFor, tick)
	rows := h.doc.Children("Devices-container")
	require.Equal(t, "device-uuid:1", rows[0].ID)
	require.Equal(t, "MediaServer:1 Living Room", rows[0].Text)
}

func TestPageClickSwapsPanels(t *testing.T) {
	h := startPage(t, &fakeBackend{}, Options{})
	require.Eventually(t, func() bool { return h.visible(DevicesTab) }, waitFor, tick)

	h.click(t, LoggingTab)
	require.Eventually(t, func() bool { return h.visible(LoggingTab) && !h.visible(DevicesTab) }, waitFor, tick)

	// Clicking a non-tab element changes nothing.
	h.clicks <- dom.Target{ID: "Devices-container", Class: ContainerClass}
	h.click(t, LoggingTab)
	require.Never(t, func() bool { return h.visible(DevicesTab) }, 50*time.Millisecond, tick)
}

func TestPageFollowsDeviceEvents(t *testing.T) {
	backend := &fakeBackend{
		devices: []state.Device{{USN: "uuid:1", FriendlyName: "one"}},
		events:  make(chan state.Event, 16),
	}
	h := startPage(t, backend, Options{})
	require.Eventually(t, func() bool { return len(h.doc.Children("Devices-container")) == 1 }, waitFor, tick)

	backend.events <- state.Event{Kind: state.DeviceAdded, Device: &state.Device{USN: "uuid:2", FriendlyName: "two"}}
	require.Eventually(t, func() bool { return len(h.doc.Children("Devices-container")) == 2 }, waitFor, tick)

	backend.events <- state.Event{Kind: state.DeviceAdded, Device: &state.Device{USN: "uuid:1", FriendlyName: "renamed"}}
	backend.events <- state.Event{Kind: state.DeviceRemoved, USN: "uuid:2"}
	require.Eventually(t, func() bool {
		rows := h.doc.Children("Devices-container")
		return len(rows) == 1 && rows[0].Text == "renamed"
	}, waitFor, tick)
}

func TestPageLogPanelIsBounded(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	backend := &fakeBackend{
		logs: []state.LogEntry{
			{Timestamp: now, Level: "INFO", Label: "Main", Message: "started"},
		},
		events: make(chan state.Event, 16),
	}
	h := startPage(t, backend, Options{PanelSize: 3, LoggingActive: "yes"})
	require.Eventually(t, func() bool { return len(h.doc.Children("Logging-container")) == 1 }, waitFor, tick)
	require.True(t, h.visible(LoggingTab))
	require.False(t, h.visible(DevicesTab), "Devices announced yes first, Logging yes afterwards wins")

	first := h.doc.Children("Logging-container")[0]
	require.Equal(t, "03:04:05 INFO  [Main] started", first.Text)
	require.Equal(t, "coherence_log_info", first.Class)

	for i := 0; i < 4; i++ {
		e := state.LogEntry{Timestamp: now.Add(time.Duration(i+1) * time.Second), Level: "WARN", Label: "Web", Message: fmt.Sprintf("m%d", i)}
		backend.events <- state.Event{Kind: state.LogAppended, Log: &e}
	}
	require.Eventually(t, func() bool {
		rows := h.doc.Children("Logging-container")
		return len(rows) == 3 && rows[2].Text == "03:04:09 WARN  [Web] m3"
	}, waitFor, tick)
}

func TestPageReportsFetchFailed(t *testing.T) {
	boom := errors.New("connection refused")
	var mu sync.Mutex
	var got []FetchFailed
	h := startPage(t, &fakeBackend{devicesErr: boom}, Options{
		OnFetchFailed: func(f FetchFailed) {
			mu.Lock()
			got = append(got, f)
			mu.Unlock()
		},
	})

	require.Eventually(t, func() bool {
		_, ok := h.doc.Node("Devices-error")
		return ok
	}, waitFor, tick)
	n, _ := h.doc.Node("Devices-error")
	require.Equal(t, ErrorClass, n.Class)
	require.Empty(t, h.doc.Children("Devices-container"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	require.Equal(t, DevicesTab, got[0].Widget)
	require.ErrorIs(t, got[0], boom)
}

func TestPageDropsEventsAfterFetchFailed(t *testing.T) {
	boom := errors.New("connection refused")
	backend := &fakeBackend{devicesErr: boom, logsErr: boom, events: make(chan state.Event)}
	h := startPage(t, backend, Options{})
	require.Eventually(t, func() bool {
		_, devErr := h.doc.Node("Devices-error")
		_, logErr := h.doc.Node("Logging-error")
		return devErr && logErr
	}, waitFor, tick)

	for i := 0; i < 500; i++ {
		usn := fmt.Sprintf("uuid:%d", i)
		backend.events <- state.Event{Kind: state.DeviceAdded, Device: &state.Device{USN: usn}}
		e := state.LogEntry{Level: "INFO", Label: "Test", Message: usn}
		backend.events <- state.Event{Kind: state.LogAppended, Log: &e}
	}

	var held int
	h.onLoop(t, func() { held = len(h.page.devices.backlog) + len(h.page.logging.backlog) })
	require.Zero(t, held)
	require.Empty(t, h.doc.Children("Devices-container"))
	require.Empty(t, h.doc.Children("Logging-container"))
}

func TestPageReplaysEventsHeldBeforeFirstList(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	started := state.LogEntry{Timestamp: now, Level: "INFO", Label: "Main", Message: "started"}
	ready := state.LogEntry{Timestamp: now.Add(time.Second), Level: "INFO", Label: "Main", Message: "ready"}
	backend := &fakeBackend{
		devices: []state.Device{{USN: "uuid:1", FriendlyName: "one"}, {USN: "uuid:2", FriendlyName: "two"}},
		logs:    []state.LogEntry{started},
		events:  make(chan state.Event),
		release: make(chan struct{}),
	}
	h := startPage(t, backend, Options{})
	require.Eventually(t, func() bool { return h.tabCount() == 2 }, waitFor, tick)

	backend.events <- state.Event{Kind: state.DeviceAdded, Device: &state.Device{USN: "uuid:3", FriendlyName: "three"}}
	backend.events <- state.Event{Kind: state.DeviceRemoved, USN: "uuid:2"}
	backend.events <- state.Event{Kind: state.DeviceAdded, Device: &state.Device{USN: "uuid:1", FriendlyName: "renamed"}}
	backend.events <- state.Event{Kind: state.LogAppended, Log: &started}
	backend.events <- state.Event{Kind: state.LogAppended, Log: &ready}
	require.Empty(t, h.doc.Children("Devices-container"))
	require.Empty(t, h.doc.Children("Logging-container"))

	close(backend.release)
	require.Eventually(t, func() bool {
		return len(h.doc.Children("Devices-container")) == 2 && len(h.doc.Children("Logging-container")) == 2
	}, waitFor, tick)

	rows := h.doc.Children("Devices-container")
	require.Equal(t, DeviceElementID("uuid:3"), rows[0].ID)
	require.Equal(t, DeviceElementID("uuid:1"), rows[1].ID)
	require.Equal(t, "renamed", rows[1].Text)
	_, ok := h.doc.Node(DeviceElementID("uuid:2"))
	require.False(t, ok)

	logs := h.doc.Children("Logging-container")
	require.Equal(t, FormatEntry(started), logs[0].Text)
	require.Equal(t, FormatEntry(ready), logs[1].Text)
}

func TestDeviceRowsDoNotCollideWithPageElements(t *testing.T) {
	backend := &fakeBackend{
		devices: []state.Device{{USN: "Logging-container", FriendlyName: "odd"}},
		events:  make(chan state.Event, 16),
	}
	h := startPage(t, backend, Options{})
	require.Eventually(t, func() bool { return len(h.doc.Children("Devices-container")) == 1 }, waitFor, tick)
	require.Equal(t, DeviceElementID("Logging-container"), h.doc.Children("Devices-container")[0].ID)

	backend.events <- state.Event{Kind: state.DeviceRemoved, USN: "Logging-container"}
	require.Eventually(t, func() bool { return len(h.doc.Children("Devices-container")) == 0 }, waitFor, tick)
	_, ok := h.doc.Node("Logging-container")
	require.True(t, ok)
}

func TestPagesKeepSeparateActiveTabs(t *testing.T) {
	a := startPage(t, &fakeBackend{}, Options{})
	b := startPage(t, &fakeBackend{}, Options{})
	require.Eventually(t, func() bool { return a.visible(DevicesTab) && b.visible(DevicesTab) }, waitFor, tick)

	a.click(t, LoggingTab)
	require.Eventually(t, func() bool { return a.visible(LoggingTab) }, waitFor, tick)
	require.True(t, b.visible(DevicesTab))
	require.False(t, b.visible(LoggingTab))
	require.NotEqual(t, a.page.ID, b.page.ID)
}

func TestLocalBackend(t *testing.T) {
	s := state.New(10)
	s.AddDevice(state.Device{USN: "uuid:1"})
	s.AddLog("INFO", "Main", "hello")
	l := Local{State: s}

	devs, err := l.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 1)
	logs, err := l.Logs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := l.Subscribe(ctx)
	require.NoError(t, err)
	s.RemoveDevice("uuid:1")
	ev := <-events
	require.Equal(t, state.DeviceRemoved, ev.Kind)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, waitFor, tick)
}
