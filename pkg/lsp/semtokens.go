package lsp

import (
	"sort"
	"strings"

	"github.com/walteh/gojust/pkg/highlight"
	"github.com/walteh/gojust/pkg/position"
)

// Semantic token legend advertised in the initialize result. Indices must
// line up with categoryToken below.
var (
	tokenTypeLegend = []string{
		"comment",    // 0
		"keyword",    // 1
		"operator",   // 2
		"string",     // 3
		"variable",   // 4
		"parameter",  // 5
		"function",   // 6
		"macro",      // 7
		"decorator",  // 8
		"enumMember", // 9
	}
	tokenModifierLegend = []string{
		"declaration", // 1 << 0
	}
)

const modifierDeclaration = 1 << 0

// categoryToken maps a highlight category to (legend index, modifier bits).
// Error spans are excluded: syntax errors are the diagnostics pipeline's
// job, not the highlighter's.
func categoryToken(cat highlight.Category) (uint32, uint32, bool) {
	switch cat {
	case highlight.CategoryComment:
		return 0, 0, true
	case highlight.CategoryKeyword:
		return 1, 0, true
	case highlight.CategoryOperator, highlight.CategoryBracket, highlight.CategoryDelimiter:
		return 2, 0, true
	case highlight.CategoryString:
		return 3, 0, true
	case highlight.CategoryVariable:
		return 4, 0, true
	case highlight.CategoryParameter:
		return 5, 0, true
	case highlight.CategoryFunctionCall:
		return 6, 0, true
	case highlight.CategoryDefinition:
		return 6, modifierDeclaration, true
	case highlight.CategoryBuiltin:
		return 7, 0, true
	case highlight.CategoryInterpolation:
		return 8, 0, true
	case highlight.CategoryConstant:
		return 9, 0, true
	default:
		return 0, 0, false
	}
}

// encodeSemanticTokens converts categorized spans to the LSP's delta-encoded
// integer stream: [deltaLine, deltaStart, length, tokenType, modifiers] per
// token. Tokens are clamped to their starting line; the protocol disallows
// multi-line tokens without an extra capability.
func encodeSemanticTokens(spans []highlight.Span, content string) []uint32 {
	ordered := make([]highlight.Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	data := make([]uint32, 0, len(ordered)*5)
	prevLine, prevCol := 0, 0
	for _, span := range ordered {
		tokenType, modifiers, ok := categoryToken(span.Category)
		if !ok {
			continue
		}

		line, col := position.NewBasicPosition("", int(span.Start)).GetLineAndColumn(content)
		length := int(span.End - span.Start)
		if nl := strings.IndexByte(sliceAt(content, int(span.Start)), '\n'); nl >= 0 && nl < length {
			length = nl
		}
		if length == 0 {
			continue
		}

		deltaLine := line - prevLine
		deltaStart := col
		if deltaLine == 0 {
			deltaStart = col - prevCol
		}
		data = append(data,
			uint32(deltaLine), uint32(deltaStart), uint32(length),
			tokenType, modifiers,
		)
		prevLine, prevCol = line, col
	}
	return data
}

func sliceAt(content string, offset int) string {
	if offset < 0 || offset >= len(content) {
		return ""
	}
	return content[offset:]
}
