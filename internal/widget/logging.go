package widget

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"coherence-console/internal/dom"
	"coherence-console/internal/state"
	"coherence-console/internal/tabs"
)

// LoggingTab is the title of the log panel tab.
const LoggingTab = "Logging"

// Logging shows the most recent log entries and follows new ones.
type Logging struct {
	page     *Page
	athenaID string
	size     int
	built    bool
	failed   bool
	backlog  []state.LogEntry
	rows     []string
	seq      int
}

func newLogging(p *Page, size int) *Logging {
	return &Logging{page: p, athenaID: "athenaid:" + uuid.NewString(), size: size}
}

func (l *Logging) panel() string { return tabs.PanelID(LoggingTab) }

func (l *Logging) goLive(ctx context.Context) {
	l.page.menu.AddTab(tabs.Record{Title: LoggingTab, Active: l.page.opts.LoggingActive, AthenaID: l.athenaID})
	callRemote(ctx, l.page, LoggingTab, l.page.backend.Logs, l.build)
}

func logKey(e state.LogEntry) string {
	return fmt.Sprintf("%d|%s|%s|%s", e.Timestamp.UnixNano(), e.Level, e.Label, e.Message)
}

func (l *Logging) build(entries []state.LogEntry) {
	l.page.logger.Debug("Build log panel", "entries", len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[logKey(e)] = true
		l.append(e)
	}
	l.built = true
	backlog := l.backlog
	l.backlog = nil
	for _, e := range backlog {
		if !seen[logKey(e)] {
			l.append(e)
		}
	}
}

// handle appends a live entry. Entries arriving before the panel is built
// are held back; those also present in the initial list are dropped.
func (l *Logging) handle(ev state.Event) {
	if ev.Log == nil || l.failed {
		return
	}
	if !l.built {
		l.backlog = append(l.backlog, *ev.Log)
		return
	}
	l.append(*ev.Log)
}

// abandon stops the panel after its list call failed. It stays empty.
func (l *Logging) abandon() {
	l.failed = true
	l.backlog = nil
}

// FormatEntry renders one log row.
func FormatEntry(e state.LogEntry) string {
	return fmt.Sprintf("%s %-5s [%s] %s", e.Timestamp.Format("15:04:05"), e.Level, e.Label, e.Message)
}

func (l *Logging) append(e state.LogEntry) {
	l.seq++
	id := fmt.Sprintf("log-%d", l.seq)
	l.page.surface.Append(l.panel(), dom.Element{
		ID:    id,
		Class: "coherence_log_" + strings.ToLower(e.Level),
		Text:  FormatEntry(e),
	})
	l.rows = append(l.rows, id)
	for len(l.rows) > l.size {
		l.page.surface.Remove(l.rows[0])
		l.rows = l.rows[1:]
	}
}
