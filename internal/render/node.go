// Package render keeps a live UI tree synchronized with the store and
// the grouping engine, with minimal mutation.
//
// The tree is made of owned Node handles rather than any concrete
// toolkit's objects. The contract that matters for embedding - stable
// identity for interactive children, detach-before-clear and
// reattach-after-render for passenger nodes, collapse as a visibility
// flip - holds for a retained-mode widget tree, a canvas display list
// keyed by id, or a diffed virtual tree alike.
package render

import (
	"fmt"
	"sort"
	"strings"
)

// NodeKind tags the role of a node in the tree.
type NodeKind string

const (
	NodeTable      NodeKind = "table"
	NodeHeader     NodeKind = "header"
	NodeHeaderCell NodeKind = "headerCell"
	NodeBody       NodeKind = "body"
	NodeRow        NodeKind = "row"
	NodeCell       NodeKind = "cell"
	NodeText       NodeKind = "text"
	NodeInput      NodeKind = "input"
	NodeSelect     NodeKind = "select"
	NodeButton     NodeKind = "button"
	NodeBadge      NodeKind = "badge"
	NodeToggle     NodeKind = "toggle"
)

// Node is one owned handle in the UI tree.
//
// Passenger marks children that are not part of a cell's value - row
// action buttons, status badges attached by the embedding application.
// Incremental cell re-render detaches passengers before clearing the
// cell and reattaches them at their original relative position, so
// their interaction handlers and any focus they hold survive.
type Node struct {
	Kind      NodeKind
	ID        string
	Text      string
	Passenger bool
	Focused   bool
	Hidden    bool

	attrs    map[string]string
	classes  map[string]bool
	parent   *Node
	children []*Node
}

// NewNode creates a detached node.
func NewNode(kind NodeKind, id string) *Node {
	return &Node{Kind: kind, ID: id}
}

// SetAttr sets one attribute.
func (n *Node) SetAttr(key, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[key] = value
}

// Attr returns one attribute value.
func (n *Node) Attr(key string) string { return n.attrs[key] }

// AddClass and RemoveClass flip presentation classes without touching
// structure.
func (n *Node) AddClass(class string) {
	if n.classes == nil {
		n.classes = make(map[string]bool)
	}
	n.classes[class] = true
}

func (n *Node) RemoveClass(class string) { delete(n.classes, class) }

// HasClass reports whether the class is set.
func (n *Node) HasClass(class string) bool { return n.classes[class] }

// Classes returns the set classes in sorted order.
func (n *Node) Classes() []string { return sortedSet(n.classes) }

// AppendChild attaches child at the end, detaching it from any
// previous parent first.
func (n *Node) AppendChild(child *Node) {
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
}

// InsertChildAt attaches child at the given position, clamped.
func (n *Node) InsertChildAt(child *Node, at int) {
	child.Detach()
	if at < 0 {
		at = 0
	}
	if at > len(n.children) {
		at = len(n.children)
	}
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[at+1:], n.children[at:])
	n.children[at] = child
}

// Detach removes the node from its parent and returns its previous
// child index, or -1 when it was already detached.
func (n *Node) Detach() int {
	p := n.parent
	if p == nil {
		return -1
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			n.parent = nil
			return i
		}
	}
	n.parent = nil
	return -1
}

// Parent returns the current parent, nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child slice.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Attached reports whether the node is reachable from root.
func (n *Node) Attached(root *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == root {
			return true
		}
	}
	return false
}

// Find returns the first descendant (depth-first) with the given id.
func (n *Node) Find(id string) *Node {
	if n.ID == id {
		return n
	}
	for _, c := range n.children {
		if hit := c.Find(id); hit != nil {
			return hit
		}
	}
	return nil
}

// Snapshot renders the subtree as deterministic indented text. Used by
// golden tests and the render CLI command.
func (n *Node) Snapshot() string {
	var b strings.Builder
	n.snapshot(&b, 0)
	return b.String()
}

func (n *Node) snapshot(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(string(n.Kind))
	if n.ID != "" {
		fmt.Fprintf(b, "#%s", n.ID)
	}
	for _, class := range sortedSet(n.classes) {
		fmt.Fprintf(b, " .%s", class)
	}
	if len(n.attrs) > 0 {
		keys := make([]string, 0, len(n.attrs))
		for k := range n.attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%s", k, n.attrs[k])
		}
		fmt.Fprintf(b, " {%s}", strings.Join(pairs, " "))
	}
	if n.Text != "" {
		fmt.Fprintf(b, " %q", n.Text)
	}
	if n.Passenger {
		b.WriteString(" +passenger")
	}
	if n.Focused {
		b.WriteString(" *focus")
	}
	if n.Hidden {
		b.WriteString(" !hidden")
	}
	b.WriteString("\n")
	for _, c := range n.children {
		c.snapshot(b, depth+1)
	}
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
