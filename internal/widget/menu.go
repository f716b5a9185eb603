package widget

import (
	"context"
	"sync"

	"coherence-console/internal/tabs"
)

// Menu is the server half of the tab menu. Fragments announce their tab
// here; the list is pushed to the controller as it grows and returned in
// full by the menu's own going-live call.
type Menu struct {
	page *Page

	mu      sync.Mutex
	records []tabs.Record
}

func newMenu(p *Page) *Menu {
	return &Menu{page: p}
}

// AddTab records a tab announcement and forwards it to the controller.
// A title already announced is ignored.
func (m *Menu) AddTab(r tabs.Record) {
	m.mu.Lock()
	for _, existing := range m.records {
		if existing.Title == r.Title {
			m.mu.Unlock()
			return
		}
	}
	m.records = append(m.records, r)
	m.mu.Unlock()

	m.page.logger.Debug("Add tab", "title", r.Title, "active", r.Active)
	m.page.tabs.RegisterTab(r)
}

// Records returns the announced tabs in order.
func (m *Menu) Records() []tabs.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tabs.Record(nil), m.records...)
}

func (m *Menu) goLive(ctx context.Context) {
	callRemote(ctx, m.page, "Menu", func(context.Context) ([]tabs.Record, error) {
		return m.Records(), nil
	}, func(records []tabs.Record) {
		m.page.logger.Debug("Build menu", "tabs", len(records))
		m.page.tabs.MarkReady(records...)
	})
}
