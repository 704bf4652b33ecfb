// Package syntaxtest provides a hand-built syntax.Node implementation for
// tests. It lets tests assemble the exact tree shape a grammar would produce
// without linking the external parser.
package syntaxtest

import (
	"context"

	"github.com/walteh/gojust/pkg/syntax"
)

// Node is a fake syntax.Node assembled from literals.
type Node struct {
	Kind     string
	Content  string
	Start    uint32
	End      uint32
	Named    bool
	Error    bool
	Children []*Node

	// Fields maps a child index to the named field it occupies.
	Fields map[int]string
}

var _ syntax.Node = (*Node)(nil)

func (n *Node) Type() string { return n.Kind }

func (n *Node) NamedField(name string) syntax.Node {
	for i, fieldName := range n.Fields {
		if fieldName == name && i < len(n.Children) {
			return n.Children[i]
		}
	}
	return nil
}

func (n *Node) ChildCount() int { return len(n.Children) }

func (n *Node) Child(i int) syntax.Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

func (n *Node) FieldNameForChild(i int) string { return n.Fields[i] }

func (n *Node) StartByte() uint32 { return n.Start }
func (n *Node) EndByte() uint32   { return n.End }
func (n *Node) Text() string      { return n.Content }
func (n *Node) IsNamed() bool     { return n.Named }
func (n *Node) IsError() bool     { return n.Error }

// Token builds an anonymous leaf whose type equals its text, the way
// grammars expose punctuation and keyword tokens.
func Token(text string, start uint32) *Node {
	return &Node{
		Kind:    text,
		Content: text,
		Start:   start,
		End:     start + uint32(len(text)),
	}
}

// Leaf builds a named leaf node.
func Leaf(kind, text string, start uint32) *Node {
	return &Node{
		Kind:    kind,
		Content: text,
		Start:   start,
		End:     start + uint32(len(text)),
		Named:   true,
	}
}

// Branch builds a named interior node spanning its children.
func Branch(kind string, children ...*Node) *Node {
	n := &Node{Kind: kind, Named: true, Children: children}
	if len(children) > 0 {
		n.Start = children[0].Start
		n.End = children[len(children)-1].End
	}
	return n
}

// WithField assigns a named field to the i-th child and returns the node.
func (n *Node) WithField(i int, name string) *Node {
	if n.Fields == nil {
		n.Fields = make(map[int]string)
	}
	n.Fields[i] = name
	return n
}

// Parser is a syntax.Parser returning a fixed tree.
type Parser struct {
	Root *Node
	Err  error
}

var _ syntax.Parser = (*Parser)(nil)

func (p *Parser) Parse(ctx context.Context, content []byte) (syntax.Node, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Root, nil
}
