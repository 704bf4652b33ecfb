package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputSingleLine(t *testing.T) {
	content := "build:\n    cargo build\nlint:\n    cargo clippy\n"
	output := "error: unknown recipe ——▶ stdin:3:5\n"

	records := ParseOutput(output, content)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "unknown recipe", rec.Message)
	assert.Equal(t, 3, rec.StartLine)
	assert.Equal(t, 5, rec.StartCol)
	assert.Equal(t, SeverityError, rec.Severity)
}

func TestParseOutputMultiLine(t *testing.T) {
	content := "set shell\nfoo := bar\n"
	output := "error: Unknown start of token:\n" +
		"    |\n" +
		"  2 | foo := bar\n" +
		"    |\n" +
		"  ——▶ stdin:2:8\n"

	records := ParseOutput(output, content)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Unknown start of token", rec.Message, "trailing colon is stripped")
	assert.Equal(t, 2, rec.StartLine)
	assert.Equal(t, 8, rec.StartCol)
	assert.Equal(t, 2, rec.EndLine)
	assert.Equal(t, 11, rec.EndCol, "span covers the token at the reported location")
}

func TestParseOutputMultipleErrors(t *testing.T) {
	content := "a:\nb:\nc:\n"
	output := "error: first problem ——▶ stdin:1:1\n" +
		"error: second problem ——▶ stdin:2:1\n"

	records := ParseOutput(output, content)
	require.Len(t, records, 2)
	assert.Equal(t, "first problem", records[0].Message)
	assert.Equal(t, 1, records[0].StartLine)
	assert.Equal(t, "second problem", records[1].Message)
	assert.Equal(t, 2, records[1].StartLine)
}

func TestParseOutputNoMatch(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{name: "empty output", output: ""},
		{name: "unrelated text", output: "Available recipes:\n    build\n"},
		{name: "location without message", output: "  ——▶ stdin:1:1\n"},
		{name: "message without location", output: "error: something odd\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ParseOutput(tt.output, "a:\n"), "a parse miss yields zero diagnostics")
		})
	}
}

func TestParseOutputLocationPastBuffer(t *testing.T) {
	// The buffer may have shrunk since the snapshot was checked; mapping
	// clamps rather than failing.
	records := ParseOutput("error: boom ——▶ stdin:40:2\n", "a:\n")
	require.Len(t, records, 1)
	assert.Equal(t, 40, records[0].StartLine)
	assert.Equal(t, 3, records[0].EndCol)
}
