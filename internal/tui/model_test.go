package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"coherence-console/internal/dom"
	"coherence-console/internal/tabs"
	"coherence-console/internal/widget"
)

func newDoc(t *testing.T) (*dom.Document, *tabs.Controller) {
	t.Helper()
	doc := dom.NewDocument(widget.HeaderID, widget.BodyID)
	doc.Append(widget.HeaderID, dom.Element{ID: tabs.MenuBoxID})
	for _, id := range []string{"Devices", "Logging"} {
		doc.Append(widget.BodyID, dom.Element{ID: tabs.PanelID(id), Class: widget.ContainerClass})
	}
	doc.Append(tabs.PanelID("Devices"), dom.Element{ID: "uuid:1", Text: "MediaServer:1 Den"})
	doc.Append(tabs.PanelID("Logging"), dom.Element{ID: "log-1", Text: "12:00:00 INFO  [Main] started"})

	c := tabs.New(doc)
	c.MarkReady(tabs.Record{Title: "Devices", Active: "yes"}, tabs.Record{Title: "Logging"})
	return doc, c
}

func runCmd(t *testing.T, cmd tea.Cmd, clicks chan dom.Target) dom.Target {
	t.Helper()
	require.NotNil(t, cmd)
	cmd()
	select {
	case target := <-clicks:
		return target
	default:
		t.Fatal("command sent no click")
		return dom.Target{}
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewShowsTabsAndVisiblePanel(t *testing.T) {
	doc, c := newDoc(t)
	m := New(doc, make(chan dom.Target, 1))

	view := m.View()
	require.Contains(t, view, "Devices")
	require.Contains(t, view, "Logging")
	require.Contains(t, view, "MediaServer:1 Den")
	require.NotContains(t, view, "[Main] started")

	require.NoError(t, c.Activate("Logging"))
	view = m.View()
	require.Contains(t, view, "[Main] started")
	require.NotContains(t, view, "MediaServer:1 Den")
}

func TestViewShowsFetchErrors(t *testing.T) {
	doc, _ := newDoc(t)
	doc.Append(widget.HeaderID, dom.Element{ID: "Devices-error", Class: widget.ErrorClass, Text: "Devices unavailable: boom"})
	require.Contains(t, New(doc, nil).View(), "Devices unavailable: boom")
}

func TestKeysBecomeClicks(t *testing.T) {
	doc, c := newDoc(t)
	clicks := make(chan dom.Target, 1)
	var m tea.Model = New(doc, clicks)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	target := runCmd(t, cmd, clicks)
	require.Equal(t, dom.Target{ID: "Logging-tab", Class: tabs.TabClass}, target)
	require.NoError(t, c.OnTabClicked(target))

	// Wraps around.
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, "Devices-tab", runCmd(t, cmd, clicks).ID)

	m, cmd = m.Update(keyRunes("1"))
	require.Equal(t, "Devices-tab", runCmd(t, cmd, clicks).ID)

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, "Devices-tab", runCmd(t, cmd, clicks).ID)

	_, cmd = m.Update(keyRunes("9"))
	require.Nil(t, cmd)
}

func TestQuit(t *testing.T) {
	doc, _ := newDoc(t)
	m := New(doc, nil)
	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	require.Equal(t, 120, updated.(Model).width)
}
