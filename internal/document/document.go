// Package document defines the tree produced by parsing a DY source file.
//
// Nodes are stored in a flat arena owned by the Document. Children are held
// as ordered index slices and every node carries the arena index of its
// parent, so the tree has no owning back-references.
package document

import (
	"github.com/plx-dev/dycheck/internal/lexer"
)

// Root is the parent index used by top-level nodes.
const Root = -1

// Node is one key/value entry in the document tree.
type Node struct {
	Key       string
	Value     string
	KeySpan   lexer.Span
	ValueSpan lexer.Span
	Line      int

	// Parent is the arena index of the enclosing node, or Root.
	Parent int
	// Children lists arena indices of direct children in source order.
	Children []int

	// Misplaced marks a node the parser attached via best-effort recovery
	// because no scope on the stack accepted it.
	Misplaced bool
	// Unknown marks a node whose key has no rule in the schema.
	Unknown bool
}

// Document is the parsed tree plus the original source it was built from.
// The source text is retained verbatim for excerpt rendering.
type Document struct {
	Path   string
	Source string

	nodes []Node
	roots []int
}

// New returns an empty document for the given path label and source text.
func New(path, source string) *Document {
	return &Document{Path: path, Source: source}
}

// Add appends a node under the given parent (Root for top level) and returns
// its arena index.
func (d *Document) Add(n Node, parent int) int {
	n.Parent = parent
	id := len(d.nodes)
	d.nodes = append(d.nodes, n)
	if parent == Root {
		d.roots = append(d.roots, id)
	} else {
		d.nodes[parent].Children = append(d.nodes[parent].Children, id)
	}
	return id
}

// Node returns the node stored at the given arena index.
func (d *Document) Node(id int) *Node {
	return &d.nodes[id]
}

// Len returns the number of nodes in the arena. Indices 0..Len()-1 follow
// source order.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Roots returns the arena indices of the top-level nodes in source order.
func (d *Document) Roots() []int {
	return d.roots
}

// ItemCount reports how many well-formed top-level items the document holds.
// Nodes that only reached the root through recovery are not counted.
func (d *Document) ItemCount() int {
	count := 0
	for _, id := range d.roots {
		n := d.nodes[id]
		if n.Misplaced || n.Unknown {
			continue
		}
		count++
	}
	return count
}

// Key returns the key of the node at id, or the empty string for Root.
func (d *Document) Key(id int) string {
	if id == Root {
		return ""
	}
	return d.nodes[id].Key
}
