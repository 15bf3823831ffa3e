// Package layout resolves a page's draw order, including nested groups,
// into the sequence the renderer paints.
package layout

import (
	"math"

	"github.com/alnah/go-pagepdf/internal/document"
)

// ChildIndexBase is the multiplier applied to a parent's order index to
// derive the order index of its children.
const ChildIndexBase = 1000

// Item is one node in paint order.
type Item struct {
	Node          document.Node
	Depth         int
	ParentGroupID string
	OrderIndex    int
}

// FlattenPage returns the nodes of pageID in paint order.
//
// Top-level ids come from the page's drawOrder and get order indexes 1..n.
// A group's children follow it immediately with
// OrderIndex = parent × ChildIndexBase + childIndex, childIndex counting from
// zero. Indexes saturate at math.MaxInt, which deep nesting (about six levels)
// reaches; the slice order stays the paint order either way. Each node is emitted
// at most once, so cycles and ids listed both at top level and as a child
// are harmless. Page nodes never reached are appended in document order.
//
// An unknown page yields nil.
func FlattenPage(doc document.Document, pageID string) []Item {
	page, ok := doc.PageByID(pageID)
	if !ok {
		return nil
	}

	f := flattener{
		nodes:   make(map[string]document.Node),
		visited: make(map[string]bool),
	}
	for _, n := range doc.Nodes {
		if n.PageID != pageID {
			continue
		}
		if _, dup := f.nodes[n.ID]; !dup {
			f.nodes[n.ID] = n
		}
	}

	next := 1
	for _, id := range page.DrawOrder {
		if f.visit(id, 0, "", next) {
			next++
		}
	}

	for _, n := range doc.Nodes {
		if n.PageID != pageID || f.visited[n.ID] {
			continue
		}
		if f.visit(n.ID, 0, "", next) {
			next++
		}
	}
	return f.items
}

type flattener struct {
	nodes   map[string]document.Node
	visited map[string]bool
	items   []Item
}

// visit emits id and its descendants depth-first. It reports whether id was
// emitted.
func (f *flattener) visit(id string, depth int, parent string, order int) bool {
	n, ok := f.nodes[id]
	if !ok || f.visited[id] {
		return false
	}
	f.visited[id] = true
	f.items = append(f.items, Item{Node: n, Depth: depth, ParentGroupID: parent, OrderIndex: order})

	if n.Type != document.NodeGroup {
		return true
	}
	for i, child := range n.ChildrenIDs {
		f.visit(child, depth+1, n.ID, childOrder(order, i))
	}
	return true
}

// childOrder returns parent*ChildIndexBase + i, saturating instead of
// overflowing.
func childOrder(parent, i int) int {
	if parent > (math.MaxInt-i)/ChildIndexBase {
		return math.MaxInt
	}
	return parent*ChildIndexBase + i
}
