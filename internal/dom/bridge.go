package dom

// Sink receives encoded operations. Implementations must not block the
// caller for long; the web layer backs it with a bounded channel.
type Sink interface {
	Send(op Op)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(op Op)

// Send calls f(op).
func (f SinkFunc) Send(op Op) { f(op) }

// Bridge is a Surface that encodes every call as an Op for a remote renderer.
type Bridge struct {
	sink Sink
}

// NewBridge returns a Bridge writing to sink.
func NewBridge(sink Sink) *Bridge {
	return &Bridge{sink: sink}
}

func (b *Bridge) Append(parentID string, el Element) {
	b.sink.Send(Op{Op: OpAppend, Parent: parentID, ID: el.ID, Class: el.Class, Text: el.Text})
}

func (b *Bridge) Remove(id string) {
	b.sink.Send(Op{Op: OpRemove, ID: id})
}

func (b *Bridge) SetStyle(id, prop, value string) {
	b.sink.Send(Op{Op: OpStyle, ID: id, Prop: prop, Value: value})
}

func (b *Bridge) Listen(id, event string) {
	b.sink.Send(Op{Op: OpListen, ID: id, Event: event})
}
