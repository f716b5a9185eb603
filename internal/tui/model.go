// Package tui renders a console page in the terminal. The page draws on a
// dom.Document; this model turns the document into a tab bar and the
// visible panel, and turns key presses into tab clicks.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coherence-console/internal/dom"
	"coherence-console/internal/tabs"
	"coherence-console/internal/widget"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9090"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#909090"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#606060")).Italic(true)
	headerStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("#606060"))
)

// ChangedMsg tells the model the document changed.
type ChangedMsg struct{}

// Model is the bubbletea model of the terminal console.
type Model struct {
	doc    *dom.Document
	clicks chan<- dom.Target
	width  int
	height int
}

// New returns a model rendering doc. Tab selections are sent on clicks.
func New(doc *dom.Document, clicks chan<- dom.Target) Model {
	return Model{doc: doc, clicks: clicks, width: 80, height: 24}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case ChangedMsg:
		return m, nil
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "shift+tab", "h":
			return m, m.cycle(-1)
		case "right", "tab", "l":
			return m, m.cycle(1)
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				return m, m.selectIndex(int(key[0] - '1'))
			}
		}
	}
	return m, nil
}

func (m Model) tabNodes() []dom.Node {
	var out []dom.Node
	for _, n := range m.doc.Children(tabs.MenuBoxID) {
		if n.Class == tabs.TabClass {
			out = append(out, n)
		}
	}
	return out
}

func activeIndex(nodes []dom.Node) int {
	for i, n := range nodes {
		if n.Style[dom.PropBackground] == tabs.ActiveBackground {
			return i
		}
	}
	return -1
}

func (m Model) cycle(delta int) tea.Cmd {
	nodes := m.tabNodes()
	if len(nodes) == 0 {
		return nil
	}
	idx := activeIndex(nodes)
	if idx < 0 && delta < 0 {
		idx = 0
	}
	next := ((idx+delta)%len(nodes) + len(nodes)) % len(nodes)
	return m.click(nodes[next].ID)
}

func (m Model) selectIndex(i int) tea.Cmd {
	nodes := m.tabNodes()
	if i < 0 || i >= len(nodes) {
		return nil
	}
	return m.click(nodes[i].ID)
}

func (m Model) click(id string) tea.Cmd {
	target, ok := m.doc.Click(id)
	if !ok {
		return nil
	}
	clicks := m.clicks
	return func() tea.Msg {
		clicks <- target
		return nil
	}
}

func tabStyle(n dom.Node) lipgloss.Style {
	fg := n.Style[dom.PropColor]
	if fg == "" {
		fg = tabs.InactiveColor
	}
	bg := n.Style[dom.PropBackground]
	if bg == "" {
		bg = tabs.InactiveBackground
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg)).Padding(0, 1)
}

func (m Model) View() string {
	var bar []string
	bar = append(bar, titleStyle.Render("Coherence"))
	for _, n := range m.tabNodes() {
		bar = append(bar, tabStyle(n).Render(n.Text))
	}
	header := headerStyle.Width(m.width).Render(strings.Join(bar, " "))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, n := range m.doc.Children(widget.HeaderID) {
		if n.Class == widget.ErrorClass {
			b.WriteString(errorStyle.Render(n.Text))
			b.WriteString("\n")
		}
	}

	// Header, help line and spacing.
	room := m.height - 4
	if room < 1 {
		room = 1
	}
	for _, panel := range m.doc.Children(widget.BodyID) {
		if panel.Style[dom.PropVisibility] != dom.Visible {
			continue
		}
		rows := m.doc.Children(panel.ID)
		if len(rows) == 0 {
			b.WriteString(emptyStyle.Render("(empty)"))
			b.WriteString("\n")
		}
		if len(rows) > room {
			rows = rows[len(rows)-room:]
		}
		for _, row := range rows {
			b.WriteString(row.Text)
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("←/→ switch tab · 1-9 jump · q quit"))
	return b.String()
}
