// Package widget implements the live console widgets (tab menu, device list
// and log panel) and the Page that hosts them.
//
// A Page is single-threaded: every widget and tab mutation runs on the
// goroutine executing Page.Run. Remote list calls run on their own goroutine
// and post their completion back to that loop.
package widget

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"coherence-console/internal/dom"
	"coherence-console/internal/state"
	"coherence-console/internal/tabs"
)

// Root element ids every surface must provide.
const (
	HeaderID = "coherence_header"
	BodyID   = "coherence_body"

	ContainerClass = "coherence_container"
	ErrorClass     = "coherence_error"
)

// Options tunes a Page.
type Options struct {
	// DevicesActive and LoggingActive are the flags each fragment announces
	// its tab with. Defaults: Devices "yes", Logging "no".
	DevicesActive tabs.Flag
	LoggingActive tabs.Flag
	// PanelSize bounds the entries kept in the log panel.
	PanelSize int
	Logger    *slog.Logger
	// OnFetchFailed is called on the page loop for every failed list call.
	OnFetchFailed func(FetchFailed)
}

// Page hosts one instance of each widget on a surface.
type Page struct {
	ID string

	surface dom.Surface
	backend Backend
	tabs    *tabs.Controller
	menu    *Menu
	devices *Devices
	logging *Logging
	opts    Options
	logger  *slog.Logger
	posted  chan func()
}

// NewPage returns a page drawing on surface. Nothing is rendered until Run.
func NewPage(surface dom.Surface, backend Backend, opts Options) *Page {
	if opts.DevicesActive == "" {
		opts.DevicesActive = "yes"
	}
	if opts.LoggingActive == "" {
		opts.LoggingActive = "no"
	}
	if opts.PanelSize <= 0 {
		opts.PanelSize = 200
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	p := &Page{
		ID:      id,
		surface: surface,
		backend: backend,
		tabs:    tabs.New(surface),
		opts:    opts,
		logger:  logger.With("component", "Page", "page", id),
		posted:  make(chan func(), 16),
	}
	p.menu = newMenu(p)
	p.devices = newDevices(p)
	p.logging = newLogging(p, opts.PanelSize)
	return p
}

// Run mounts the page, brings every widget live and processes clicks and
// backend events until ctx ends.
func (p *Page) Run(ctx context.Context, clicks <-chan dom.Target) error {
	p.mount()

	events, err := p.backend.Subscribe(ctx)
	if err != nil {
		p.logger.Warn("Event subscription failed, page will not update live", "error", err)
		events = nil
	}

	p.menu.goLive(ctx)
	p.devices.goLive(ctx)
	p.logging.goLive(ctx)
	p.logger.Debug("Page live")

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Page closed")
			return ctx.Err()
		case fn := <-p.posted:
			fn()
		case target, ok := <-clicks:
			if !ok {
				clicks = nil
				continue
			}
			if err := p.tabs.OnTabClicked(target); err != nil {
				p.logger.Debug("Ignoring click", "target", target.ID, "error", err)
			}
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			p.dispatch(ev)
		}
	}
}

func (p *Page) mount() {
	p.surface.Append(HeaderID, dom.Element{ID: tabs.MenuBoxID, Class: "coherence_menu_box"})
	for _, id := range []string{DevicesTab, LoggingTab} {
		panel := tabs.PanelID(id)
		p.surface.Append(BodyID, dom.Element{ID: panel, Class: ContainerClass})
		p.surface.SetStyle(panel, dom.PropVisibility, dom.Hidden)
	}
}

func (p *Page) dispatch(ev state.Event) {
	switch ev.Kind {
	case state.DeviceAdded, state.DeviceRemoved:
		p.devices.handle(ev)
	case state.LogAppended:
		p.logging.handle(ev)
	}
}

// post schedules fn on the page loop. It gives up when ctx ends.
func (p *Page) post(ctx context.Context, fn func()) {
	select {
	case p.posted <- fn:
	case <-ctx.Done():
	}
}

func (p *Page) fetchFailed(f FetchFailed) {
	p.logger.Warn("Remote fetch failed", "widget", f.Widget, "error", f.Err)
	switch f.Widget {
	case DevicesTab:
		p.devices.abandon()
	case LoggingTab:
		p.logging.abandon()
	}
	p.surface.Append(HeaderID, dom.Element{
		ID:    f.Widget + "-error",
		Class: ErrorClass,
		Text:  f.Widget + " unavailable: " + f.Err.Error(),
	})
	if p.opts.OnFetchFailed != nil {
		p.opts.OnFetchFailed(f)
	}
}

// callRemote runs fetch off the loop and hands its result to done on the loop.
func callRemote[T any](ctx context.Context, p *Page, widget string, fetch func(context.Context) (T, error), done func(T)) {
	go func() {
		v, err := fetch(ctx)
		p.post(ctx, func() {
			if err != nil {
				p.fetchFailed(FetchFailed{Widget: widget, Err: err})
				return
			}
			done(v)
		})
	}()
}
