package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/gojust/pkg/highlight"
)

func TestEncodeSemanticTokens(t *testing.T) {
	content := "# hi\nfoo := env\n"
	spans := []highlight.Span{
		{Start: 0, End: 4, Category: highlight.CategoryComment},
		{Start: 5, End: 8, Category: highlight.CategoryVariable},
		{Start: 9, End: 11, Category: highlight.CategoryOperator},
	}

	data := encodeSemanticTokens(spans, content)
	require.Len(t, data, 15)

	// First token: line 0 char 0, length 4, comment.
	assert.Equal(t, []uint32{0, 0, 4, 0, 0}, data[0:5])
	// Second: next line, char 0, length 3, variable.
	assert.Equal(t, []uint32{1, 0, 3, 4, 0}, data[5:10])
	// Third: same line, 4 chars later, length 2, operator.
	assert.Equal(t, []uint32{0, 4, 2, 2, 0}, data[10:15])
}

func TestEncodeSemanticTokensSkipsErrorSpans(t *testing.T) {
	content := "!!!\n"
	spans := []highlight.Span{{Start: 0, End: 3, Category: highlight.CategoryError}}

	assert.Empty(t, encodeSemanticTokens(spans, content))
}

func TestEncodeSemanticTokensDefinitionModifier(t *testing.T) {
	content := "build:\n"
	spans := []highlight.Span{{Start: 0, End: 5, Category: highlight.CategoryDefinition}}

	data := encodeSemanticTokens(spans, content)
	require.Len(t, data, 5)
	assert.Equal(t, uint32(6), data[3], "definitions use the function token type")
	assert.Equal(t, uint32(modifierDeclaration), data[4])
}

func TestEncodeSemanticTokensClampsToLine(t *testing.T) {
	content := "ab\ncd\n"
	spans := []highlight.Span{{Start: 0, End: 5, Category: highlight.CategoryString}}

	data := encodeSemanticTokens(spans, content)
	require.Len(t, data, 5)
	assert.Equal(t, uint32(2), data[2], "token length stops at end of line")
}
