// Package outline extracts named definitions from a justfile syntax tree for
// structural navigation: outline views and jump-to-definition.
package outline

import (
	"github.com/walteh/gojust/pkg/syntax"
)

// Kind is the navigation category of a definition.
type Kind int

const (
	KindRecipe Kind = iota + 1
	KindVariable
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindRecipe:
		return "recipe"
	case KindVariable:
		return "variable"
	case KindAlias:
		return "alias"
	default:
		return "unknown"
	}
}

// DefinitionEntry is one named definition found in the tree.
type DefinitionEntry struct {
	Kind Kind
	Name string
	Node syntax.Node
}

// Index groups definitions by kind. Each group preserves source order, and
// no node appears in more than one group.
type Index struct {
	Recipes   []DefinitionEntry
	Variables []DefinitionEntry
	Aliases   []DefinitionEntry
}

// Build walks the tree and returns all definitions in source order. The
// index is rebuilt on every call; there is no cache to invalidate.
func Build(root syntax.Node) []DefinitionEntry {
	entries := make([]DefinitionEntry, 0, 16)
	syntax.Walk(root, func(node syntax.Node, fieldName string, ancestors []syntax.Node) bool {
		switch node.Type() {
		case "recipe_header":
			if name := node.NamedField("name"); name != nil {
				entries = append(entries, DefinitionEntry{Kind: KindRecipe, Name: name.Text(), Node: node})
			}
			return false
		case "assignment":
			if left := node.NamedField("left"); left != nil {
				entries = append(entries, DefinitionEntry{Kind: KindVariable, Name: left.Text(), Node: node})
			}
			return false
		case "alias":
			// Only named alias nodes define something; punctuation-only
			// alias tokens do not.
			if !node.IsNamed() {
				return false
			}
			if name := node.NamedField("name"); name != nil {
				entries = append(entries, DefinitionEntry{Kind: KindAlias, Name: name.Text(), Node: node})
			}
			return false
		}
		return true
	})
	return entries
}

// BuildIndex groups the definitions from Build by kind.
func BuildIndex(root syntax.Node) Index {
	var idx Index
	for _, entry := range Build(root) {
		switch entry.Kind {
		case KindRecipe:
			idx.Recipes = append(idx.Recipes, entry)
		case KindVariable:
			idx.Variables = append(idx.Variables, entry)
		case KindAlias:
			idx.Aliases = append(idx.Aliases, entry)
		}
	}
	return idx
}
