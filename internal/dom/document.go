package dom

import "sync"

// Node is a snapshot of one element held by a Document.
type Node struct {
	Element
	Parent    string
	Style     map[string]string
	Listeners []string
}

// Document is an in-memory element tree. It is safe for concurrent use so
// a renderer can read it while the owning page mutates it.
type Document struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	children map[string][]string
	onChange func()
}

// NewDocument returns a Document whose tree holds the given root ids.
func NewDocument(roots ...string) *Document {
	d := &Document{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
	}
	for _, id := range roots {
		d.nodes[id] = &Node{Element: Element{ID: id}, Style: map[string]string{}}
	}
	return d
}

// OnChange registers fn to be called after every mutation. It runs on the
// mutating goroutine without the document lock held.
func (d *Document) OnChange(fn func()) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

func (d *Document) changed() {
	d.mu.RLock()
	fn := d.onChange
	d.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Append adds el under parentID. Unknown parents and duplicate ids are ignored.
func (d *Document) Append(parentID string, el Element) {
	d.mu.Lock()
	if _, ok := d.nodes[parentID]; !ok {
		d.mu.Unlock()
		return
	}
	if _, exists := d.nodes[el.ID]; exists {
		d.mu.Unlock()
		return
	}
	d.nodes[el.ID] = &Node{Element: el, Parent: parentID, Style: map[string]string{}}
	d.children[parentID] = append(d.children[parentID], el.ID)
	d.mu.Unlock()
	d.changed()
}

// Remove deletes id and its subtree.
func (d *Document) Remove(id string) {
	d.mu.Lock()
	n, ok := d.nodes[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	siblings := d.children[n.Parent]
	for i, sib := range siblings {
		if sib == id {
			d.children[n.Parent] = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	d.removeSubtree(id)
	d.mu.Unlock()
	d.changed()
}

func (d *Document) removeSubtree(id string) {
	for _, child := range d.children[id] {
		d.removeSubtree(child)
	}
	delete(d.children, id)
	delete(d.nodes, id)
}

func (d *Document) SetStyle(id, prop, value string) {
	d.mu.Lock()
	n, ok := d.nodes[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	n.Style[prop] = value
	d.mu.Unlock()
	d.changed()
}

func (d *Document) Listen(id, event string) {
	d.mu.Lock()
	n, ok := d.nodes[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	for _, l := range n.Listeners {
		if l == event {
			d.mu.Unlock()
			return
		}
	}
	n.Listeners = append(n.Listeners, event)
	d.mu.Unlock()
	d.changed()
}

// Node returns a copy of the element with the given id.
func (d *Document) Node(id string) (Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[id]
	if !ok {
		return Node{}, false
	}
	return copyNode(n), true
}

// Children returns copies of the direct children of id in insertion order.
func (d *Document) Children(id string) []Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := d.children[id]
	out := make([]Node, 0, len(ids))
	for _, cid := range ids {
		out = append(out, copyNode(d.nodes[cid]))
	}
	return out
}

// Style returns the value of prop on id, or "" when unset.
func (d *Document) Style(id, prop string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n, ok := d.nodes[id]; ok {
		return n.Style[prop]
	}
	return ""
}

// Click resolves a click on id. It reports false when the element does not
// exist or has no click listener.
func (d *Document) Click(id string) (Target, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[id]
	if !ok {
		return Target{}, false
	}
	for _, l := range n.Listeners {
		if l == EventClick {
			return Target{ID: n.ID, Class: n.Class}, true
		}
	}
	return Target{}, false
}

func copyNode(n *Node) Node {
	out := Node{Element: n.Element, Parent: n.Parent, Style: make(map[string]string, len(n.Style))}
	for k, v := range n.Style {
		out.Style[k] = v
	}
	out.Listeners = append([]string(nil), n.Listeners...)
	return out
}
