// Package syntax defines the interface to the external justfile grammar.
//
// The grammar itself is a supplied collaborator: something (a tree-sitter
// binding, a WASM build of the parser, an editor-embedded grammar) produces a
// tree and exposes it through Node. Everything in this repository consumes
// trees through these interfaces only, so the grammar can be swapped without
// touching the classifier, outline builder, or LSP server.
package syntax

import "context"

// Node is a single node of a parsed justfile syntax tree. Nodes are immutable
// once produced; the tree that owns them is invalidated and rebuilt on every
// buffer edit.
//
// Spans are byte offsets into the parsed source. A node's span never overlaps
// a sibling's span.
type Node interface {
	// Type returns the grammatical type tag, e.g. "recipe_header",
	// "assignment", "comment".
	Type() string

	// NamedField returns the child occupying the given named field, or nil
	// if the field is absent.
	NamedField(name string) Node

	// ChildCount returns the number of children, named and anonymous.
	ChildCount() int

	// Child returns the i-th child. Out-of-range indices return nil.
	Child(i int) Node

	// FieldNameForChild returns the named field the i-th child occupies
	// within this node, or "" if it occupies none.
	FieldNameForChild(i int) string

	// StartByte and EndByte delimit the node's span in the source.
	StartByte() uint32
	EndByte() uint32

	// Text returns the source text covered by the node's span.
	Text() string

	// IsNamed reports whether the node is a named grammar rule rather than
	// an anonymous token.
	IsNamed() bool

	// IsError reports whether the parser flagged this node as a syntax
	// error.
	IsError() bool
}

// Parser produces a syntax tree from source text.
type Parser interface {
	Parse(ctx context.Context, content []byte) (Node, error)
}

// Visitor is called for every node during a Walk. The fieldName is the named
// field the node occupies in its parent ("" for none, and for the root), and
// ancestors is the chain from root to parent, nearest last. Returning false
// prunes the subtree.
type Visitor func(node Node, fieldName string, ancestors []Node) bool

// Walk traverses the tree rooted at node in depth-first pre-order. The
// traversal is restartable: it holds no state between calls.
func Walk(node Node, visit Visitor) {
	if node == nil {
		return
	}
	walk(node, "", make([]Node, 0, 16), visit)
}

func walk(node Node, fieldName string, ancestors []Node, visit Visitor) {
	if !visit(node, fieldName, ancestors) {
		return
	}
	ancestors = append(ancestors, node)
	for i := 0; i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		walk(child, node.FieldNameForChild(i), ancestors, visit)
	}
}
