// Package tabs keeps a menu of tabs in which at most one tab is active and
// mirrors that state onto a dom.Surface: the active tab is highlighted and
// its content panel shown, every other tab uses the default style and has
// its panel hidden.
package tabs

import (
	"errors"
	"strings"

	"coherence-console/internal/dom"
)

// ErrUnknownTab is returned when activating an identifier that was never registered.
var ErrUnknownTab = errors.New("unknown tab")

// Element naming shared with the browser stylesheet.
const (
	MenuBoxID = "coherence_menu_box"
	TabClass  = "coherence_menu_item"

	tabSuffix   = "-tab"
	panelSuffix = "-container"
)

// Tab colours.
const (
	ActiveColor        = "#000000"
	ActiveBackground   = "#C0C0C0"
	InactiveColor      = "#FFFFFF"
	InactiveBackground = "#404040"
)

// Flag is a boolean-like value as sent by the server ("yes", "no", "on"...).
type Flag string

// Truthy reports whether f is one of yes, on, true or 1.
func (f Flag) Truthy() bool {
	switch strings.ToLower(strings.TrimSpace(string(f))) {
	case "yes", "on", "true", "1":
		return true
	}
	return false
}

// Record announces a tab.
type Record struct {
	Title    string `json:"title"`
	Active   Flag   `json:"active"`
	AthenaID string `json:"athenaid,omitempty"`
}

// Tab is one registered tab.
type Tab struct {
	ID     string
	Title  string
	Active bool
}

// TabElementID returns the element id of the tab button for id.
func TabElementID(id string) string { return id + tabSuffix }

// PanelID returns the element id of the content panel paired with id.
func PanelID(id string) string { return id + panelSuffix }

// Lifecycle of a Controller.
type Lifecycle int

const (
	Uninitialized Lifecycle = iota
	Ready
)

func (l Lifecycle) String() string {
	if l == Ready {
		return "ready"
	}
	return "uninitialized"
}

// Controller owns the tab registry and the active-tab pointer of one page.
// It is not safe for concurrent use; the owning page serialises calls.
type Controller struct {
	surface   dom.Surface
	lifecycle Lifecycle
	pending   []Record
	order     []string
	titles    map[string]string
	byElement map[string]string
	active    string
	hasActive bool
}

// New returns an uninitialized Controller drawing on surface.
func New(surface dom.Surface) *Controller {
	return &Controller{
		surface:   surface,
		titles:    make(map[string]string),
		byElement: make(map[string]string),
	}
}

// Lifecycle returns the current lifecycle state.
func (c *Controller) Lifecycle() Lifecycle { return c.lifecycle }

// Ready reports whether registrations are applied immediately.
func (c *Controller) Ready() bool { return c.lifecycle == Ready }

// MarkReady moves the controller to Ready, applies queued registrations in
// the order they were made and then registers records.
func (c *Controller) MarkReady(records ...Record) {
	c.lifecycle = Ready
	pending := c.pending
	c.pending = nil
	for _, r := range pending {
		c.register(r)
	}
	for _, r := range records {
		c.register(r)
	}
}

// RegisterTab adds a tab for r, activating it when r.Active is truthy.
// Before MarkReady the record is queued. A title that is already registered
// is ignored.
func (c *Controller) RegisterTab(r Record) {
	if c.lifecycle != Ready {
		c.pending = append(c.pending, r)
		return
	}
	c.register(r)
}

func (c *Controller) register(r Record) {
	id := r.Title
	if _, exists := c.titles[id]; exists {
		return
	}
	c.order = append(c.order, id)
	c.titles[id] = r.Title
	elID := TabElementID(id)
	c.byElement[elID] = id

	c.surface.Append(MenuBoxID, dom.Element{ID: elID, Class: TabClass, Text: r.Title})
	c.surface.Listen(elID, dom.EventClick)
	c.paintInactive(id)

	if r.Active.Truthy() {
		// id is registered above, Activate cannot fail here.
		_ = c.Activate(id)
	}
}

// Activate makes id the single active tab. Activating the current active
// tab is a no-op; an unregistered id returns ErrUnknownTab and changes nothing.
func (c *Controller) Activate(id string) error {
	if _, ok := c.titles[id]; !ok {
		return ErrUnknownTab
	}
	if c.hasActive && c.active == id {
		return nil
	}
	c.Deactivate()
	c.surface.SetStyle(TabElementID(id), dom.PropColor, ActiveColor)
	c.surface.SetStyle(TabElementID(id), dom.PropBackground, ActiveBackground)
	c.surface.SetStyle(PanelID(id), dom.PropVisibility, dom.Visible)
	c.active = id
	c.hasActive = true
	return nil
}

// Deactivate clears the active tab, if any.
func (c *Controller) Deactivate() {
	if !c.hasActive {
		return
	}
	prev := c.active
	c.active = ""
	c.hasActive = false
	c.paintInactive(prev)
}

func (c *Controller) paintInactive(id string) {
	c.surface.SetStyle(TabElementID(id), dom.PropColor, InactiveColor)
	c.surface.SetStyle(TabElementID(id), dom.PropBackground, InactiveBackground)
	c.surface.SetStyle(PanelID(id), dom.PropVisibility, dom.Hidden)
}

// OnTabClicked activates the tab behind a clicked element. Clicks on
// elements that are not tabs are ignored.
func (c *Controller) OnTabClicked(t dom.Target) error {
	if t.Class != TabClass {
		return nil
	}
	id, ok := c.byElement[t.ID]
	if !ok {
		return ErrUnknownTab
	}
	return c.Activate(id)
}

// Active returns the identifier of the active tab.
func (c *Controller) Active() (string, bool) {
	return c.active, c.hasActive
}

// Tabs returns the registered tabs in registration order.
func (c *Controller) Tabs() []Tab {
	out := make([]Tab, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Tab{ID: id, Title: c.titles[id], Active: c.hasActive && c.active == id})
	}
	return out
}

// Pending returns the number of queued registrations.
func (c *Controller) Pending() int { return len(c.pending) }
