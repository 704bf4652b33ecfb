package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/gojust/pkg/grammar"
	"github.com/walteh/gojust/pkg/syntax/syntaxtest"
)

// buildTree assembles the tree for:
//
//	# build stuff
//	alias b := build
//	foo := env_var("CC")
//	build:
func buildTree() *syntaxtest.Node {
	alias := syntaxtest.Branch("alias",
		syntaxtest.Token("alias", 14),
		syntaxtest.Leaf("identifier", "b", 20),
		syntaxtest.Token(":=", 22),
		syntaxtest.Leaf("identifier", "build", 25),
	).WithField(1, "name")

	call := syntaxtest.Branch("function_call",
		syntaxtest.Leaf("identifier", "env_var", 38),
		syntaxtest.Token("(", 45),
		syntaxtest.Leaf("string", `"CC"`, 46),
		syntaxtest.Token(")", 50),
	)

	assignment := syntaxtest.Branch("assignment",
		syntaxtest.Leaf("identifier", "foo", 31),
		syntaxtest.Token(":=", 35),
		call,
	).WithField(0, "left")

	header := syntaxtest.Branch("recipe_header",
		syntaxtest.Leaf("identifier", "build", 52),
		syntaxtest.Token(":", 57),
	).WithField(0, "name")

	return syntaxtest.Branch("source_file",
		syntaxtest.Leaf("comment", "# build stuff", 0),
		alias,
		assignment,
		header,
	)
}

func categoryAt(spans []Span, start uint32) Category {
	for _, s := range spans {
		if s.Start == start {
			return s.Category
		}
	}
	return CategoryNone
}

func TestClassify(t *testing.T) {
	classifier := NewClassifier(grammar.Default())
	spans := classifier.Classify(buildTree())
	require.NotEmpty(t, spans)

	tests := []struct {
		name  string
		start uint32
		want  Category
	}{
		{name: "comment", start: 0, want: CategoryComment},
		{name: "alias keyword token", start: 14, want: CategoryKeyword},
		{name: "alias name is a definition", start: 20, want: CategoryDefinition},
		{name: "assignment operator", start: 22, want: CategoryOperator},
		{name: "assignment left is a variable", start: 31, want: CategoryVariable},
		{name: "builtin function call", start: 38, want: CategoryFunctionCall},
		{name: "open paren", start: 45, want: CategoryBracket},
		{name: "string literal", start: 46, want: CategoryString},
		{name: "recipe name is a definition", start: 52, want: CategoryDefinition},
		{name: "recipe colon", start: 57, want: CategoryDelimiter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, categoryAt(spans, tt.start), "category for span at %d", tt.start)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	classifier := NewClassifier(grammar.Default())
	tree := buildTree()

	first := classifier.Classify(tree)
	second := classifier.Classify(tree)
	assert.Equal(t, first, second, "classification is a pure function of the tree and tables")
}

func TestErrorTierOverrides(t *testing.T) {
	// A node that would classify as a string, but the parser flagged it.
	bad := syntaxtest.Leaf("string", `"unterminated`, 0)
	bad.Error = true
	tree := syntaxtest.Branch("source_file", bad)

	spans := NewClassifier(grammar.Default()).Classify(tree)
	assert.Equal(t, CategoryError, categoryAt(spans, 0), "the error tier wins regardless of other matches")
}

func TestMalformedNumberIsError(t *testing.T) {
	tree := syntaxtest.Branch("source_file", syntaxtest.Leaf("numeric_error", "1.2.3", 0))

	spans := NewClassifier(grammar.Default()).Classify(tree)
	assert.Equal(t, CategoryError, categoryAt(spans, 0))
}

func TestFunctionLookupIsCaseSensitive(t *testing.T) {
	call := syntaxtest.Branch("function_call",
		syntaxtest.Leaf("identifier", "Env", 0),
	)
	tree := syntaxtest.Branch("source_file", call)

	spans := NewClassifier(grammar.Default()).Classify(tree)
	assert.Equal(t, CategoryNone, categoryAt(spans, 0), "Env must not match the env builtin")
}

func TestDirectoryAliasMatchesAsBuiltin(t *testing.T) {
	call := syntaxtest.Branch("function_call",
		syntaxtest.Leaf("identifier", "cache_dir", 0),
	)
	tree := syntaxtest.Branch("source_file", call)

	spans := NewClassifier(grammar.Default()).Classify(tree)
	assert.Equal(t, CategoryFunctionCall, categoryAt(spans, 0))
}

func TestUncoveredNodeTypesStayUnstyled(t *testing.T) {
	tree := syntaxtest.Branch("source_file",
		syntaxtest.Leaf("recipe_body", "    cargo build", 0),
	)

	spans := NewClassifier(grammar.Default()).Classify(tree)
	assert.Empty(t, spans)
}

func TestSettingNameIsBuiltin(t *testing.T) {
	setting := syntaxtest.Branch("setting",
		syntaxtest.Token("set", 0),
		syntaxtest.Leaf("identifier", "dotenv-load", 4),
	)
	tree := syntaxtest.Branch("source_file", setting)

	spans := NewClassifier(grammar.Default()).Classify(tree)
	assert.Equal(t, CategoryKeyword, categoryAt(spans, 0))
	assert.Equal(t, CategoryBuiltin, categoryAt(spans, 4))
}

func TestAttributeNameIsBuiltin(t *testing.T) {
	attr := syntaxtest.Branch("attribute",
		syntaxtest.Token("[", 0),
		syntaxtest.Leaf("identifier", "private", 1),
		syntaxtest.Token("]", 8),
	)
	tree := syntaxtest.Branch("source_file", attr)

	spans := NewClassifier(grammar.Default()).Classify(tree)
	assert.Equal(t, CategoryBuiltin, categoryAt(spans, 1))
}
