// Package highlight classifies justfile syntax-tree nodes into presentation
// categories for editor rendering.
//
// Classification is rule driven: each node is matched against rule tiers in
// order, and a later tier overrides an earlier one for the same span. The
// error tier always wins. Node types no tier covers stay unstyled, which is
// not an error condition.
package highlight

import (
	"github.com/walteh/gojust/pkg/grammar"
	"github.com/walteh/gojust/pkg/syntax"
)

// Category is the presentation category assigned to a span.
type Category int

const (
	CategoryNone Category = iota
	CategoryComment
	CategoryKeyword
	CategoryOperator
	CategoryBuiltin
	CategoryConstant
	CategoryString
	CategoryBracket
	CategoryDelimiter
	CategoryInterpolation
	CategoryFunctionCall
	CategoryDefinition
	CategoryVariable
	CategoryParameter
	CategoryError
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case CategoryComment:
		return "comment"
	case CategoryKeyword:
		return "keyword"
	case CategoryOperator:
		return "operator"
	case CategoryBuiltin:
		return "builtin"
	case CategoryConstant:
		return "constant"
	case CategoryString:
		return "string"
	case CategoryBracket:
		return "bracket"
	case CategoryDelimiter:
		return "delimiter"
	case CategoryInterpolation:
		return "interpolation"
	case CategoryFunctionCall:
		return "function"
	case CategoryDefinition:
		return "definition"
	case CategoryVariable:
		return "variable"
	case CategoryParameter:
		return "parameter"
	case CategoryError:
		return "error"
	default:
		return "none"
	}
}

// Span is a categorized byte range of the source.
type Span struct {
	Start    uint32
	End      uint32
	Category Category
}

// Classifier assigns categories to syntax-tree nodes. It holds only the
// immutable tables it was constructed with, so classification is a pure
// function of (tree, tables) and safe to rerun per query.
type Classifier struct {
	tables grammar.Tables
}

// NewClassifier creates a Classifier over the given tables.
func NewClassifier(tables grammar.Tables) *Classifier {
	return &Classifier{tables: tables}
}

// Structural node types matched purely by type tag.
var (
	commentTypes = grammar.NewSet("comment", "shebang")
	stringTypes  = grammar.NewSet("string", "raw_string", "string_indented", "raw_string_indented")
	bracketTypes = grammar.NewSet("(", ")", "[", "]", "{", "}")
	delimTypes   = grammar.NewSet(",", ":")
	interpTypes  = grammar.NewSet("{{", "}}", "interpolation")

	// Node types the grammar uses for malformed numeric literals. Grouped
	// with parser errors for the override tier.
	malformedTypes = grammar.NewSet("numeric_error")
)

// Classify walks the tree and returns the categorized spans in depth-first
// source order. Nodes matching no rule produce no span.
func (c *Classifier) Classify(root syntax.Node) []Span {
	spans := make([]Span, 0, 64)
	syntax.Walk(root, func(node syntax.Node, fieldName string, ancestors []Node) bool {
		if cat := c.categorize(node, fieldName, ancestors); cat != CategoryNone {
			spans = append(spans, Span{
				Start:    node.StartByte(),
				End:      node.EndByte(),
				Category: cat,
			})
		}
		return true
	})
	return spans
}

// Node is re-exported so the Walk callback signature reads naturally here.
type Node = syntax.Node

// categorize runs the rule tiers for one node. Tiers are evaluated in order
// and a later match replaces an earlier one; the error tier is checked last
// and overrides everything.
func (c *Classifier) categorize(node syntax.Node, fieldName string, ancestors []Node) Category {
	cat := CategoryNone
	text := node.Text()
	nodeType := node.Type()

	// Tier 1: structural leaves.
	switch {
	case commentTypes.Contains(nodeType):
		cat = CategoryComment
	case stringTypes.Contains(nodeType):
		cat = CategoryString
	case bracketTypes.Contains(nodeType):
		cat = CategoryBracket
	case delimTypes.Contains(nodeType):
		cat = CategoryDelimiter
	case interpTypes.Contains(nodeType):
		cat = CategoryInterpolation
	}

	// Tier 2: table-gated tokens. Keywords and operators surface as
	// anonymous tokens whose type equals their text; constants and setting
	// names are plain identifiers.
	if !node.IsNamed() && c.tables.Keywords.Contains(text) {
		cat = CategoryKeyword
	}
	if !node.IsNamed() && c.tables.Operators.Contains(text) {
		cat = CategoryOperator
	}
	if nodeType == "identifier" {
		if c.tables.Constants.Contains(text) {
			cat = CategoryConstant
		}
		if c.tables.Settings.Contains(text) && parentType(ancestors) == "setting" {
			cat = CategoryBuiltin
		}
	}

	// Tier 3: context rules that look at the ancestor chain.
	if nodeType == "identifier" {
		if hasAncestor(ancestors, "attribute") && c.tables.Attributes.Contains(text) {
			cat = CategoryBuiltin
		}
		if hasAncestor(ancestors, "function_call") && c.tables.Functions.Contains(text) {
			cat = CategoryFunctionCall
		}
	}

	// Tier 4: named fields, independent of text content.
	switch fieldName {
	case "name":
		switch parentType(ancestors) {
		case "recipe_header", "alias", "module":
			cat = CategoryDefinition
		case "parameter", "variadic_parameter":
			cat = CategoryParameter
		}
	case "left":
		if parentType(ancestors) == "assignment" {
			cat = CategoryVariable
		}
	}

	// Tier 5: parser errors win over every other assignment.
	if node.IsError() || nodeType == "ERROR" || malformedTypes.Contains(nodeType) {
		cat = CategoryError
	}

	return cat
}

func parentType(ancestors []Node) string {
	if len(ancestors) == 0 {
		return ""
	}
	return ancestors[len(ancestors)-1].Type()
}

func hasAncestor(ancestors []Node, nodeType string) bool {
	for _, a := range ancestors {
		if a.Type() == nodeType {
			return true
		}
	}
	return false
}
