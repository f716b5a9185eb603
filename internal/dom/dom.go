// Package dom describes the element operations widgets perform on a page
// and provides the two surfaces that carry them out: an in-memory Document
// and a Bridge that forwards operations to a remote renderer.
package dom

// Element is a node created on a surface.
type Element struct {
	ID    string `json:"id"`
	Class string `json:"class,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Surface is the page a widget draws on. All calls are fire-and-forget;
// operations on unknown ids are ignored by the receiving side.
type Surface interface {
	Append(parentID string, el Element)
	Remove(id string)
	SetStyle(id, prop, value string)
	Listen(id, event string)
}

// Target identifies the element a user clicked.
type Target struct {
	ID    string `json:"id"`
	Class string `json:"class"`
}

// Style properties used by the widgets.
const (
	PropColor      = "color"
	PropBackground = "background-color"
	PropVisibility = "visibility"

	Visible = "visible"
	Hidden  = "hidden"

	EventClick = "click"
)

// OpKind names a single surface operation on the wire.
type OpKind string

const (
	OpAppend OpKind = "append"
	OpRemove OpKind = "remove"
	OpStyle  OpKind = "style"
	OpListen OpKind = "listen"
)

// Op is the JSON frame sent to a remote renderer for each surface call.
type Op struct {
	Op     OpKind `json:"op"`
	ID     string `json:"id"`
	Parent string `json:"parent,omitempty"`
	Class  string `json:"class,omitempty"`
	Text   string `json:"text,omitempty"`
	Prop   string `json:"prop,omitempty"`
	Value  string `json:"value,omitempty"`
	Event  string `json:"event,omitempty"`
}

// Apply performs op against s.
func (op Op) Apply(s Surface) {
	switch op.Op {
	case OpAppend:
		s.Append(op.Parent, Element{ID: op.ID, Class: op.Class, Text: op.Text})
	case OpRemove:
		s.Remove(op.ID)
	case OpStyle:
		s.SetStyle(op.ID, op.Prop, op.Value)
	case OpListen:
		s.Listen(op.ID, op.Event)
	}
}
