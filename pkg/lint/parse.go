package lint

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/walteh/gojust/pkg/position"
)

// The checker's textual output is an informal wire protocol. Errors arrive
// either on one line:
//
//	error: unknown recipe ——▶ stdin:3:5
//
// or split across lines, with context lines in between:
//
//	error: Unknown start of token:
//	    |
//	  5 |   !!!
//	    |
//	  ——▶ stdin:5:3
//
// The literal arrow token and the "stdin:" prefix are part of the contract
// with the checker's stdin-sourced mode. Keeping the scraping here, behind
// ParseOutput, means the state machine in runner.go never sees the format.
var (
	combinedPattern = regexp.MustCompile(`^error: (.+?):? ——▶ stdin:(\d+):(\d+)\s*$`)
	messagePattern  = regexp.MustCompile(`^error: (.+?):?\s*$`)
	locationPattern = regexp.MustCompile(`——▶ stdin:(\d+):(\d+)\s*$`)
)

// ParseOutput scans checker output for error locations and maps each one to
// a token span in content, which should be the buffer's current text. Output
// that matches nothing yields an empty batch; that is a valid outcome, not a
// parse failure.
func ParseOutput(output string, content string) []Record {
	records := make([]Record, 0, 4)
	pending := ""

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := combinedPattern.FindStringSubmatch(line); m != nil {
			records = append(records, newRecord(m[1], m[2], m[3], content))
			pending = ""
			continue
		}
		if m := messagePattern.FindStringSubmatch(line); m != nil {
			pending = m[1]
			continue
		}
		if m := locationPattern.FindStringSubmatch(line); m != nil && pending != "" {
			records = append(records, newRecord(pending, m[1], m[2], content))
			pending = ""
		}
	}
	return records
}

func newRecord(message, lineText, colText, content string) Record {
	line, _ := strconv.Atoi(lineText)
	col, _ := strconv.Atoi(colText)

	span := position.TokenRange(position.Place{Line: line, Character: col}, content)
	return Record{
		Message:   strings.TrimSpace(message),
		StartLine: span.Start.Line,
		StartCol:  span.Start.Character,
		EndLine:   span.End.Line,
		EndCol:    span.End.Character,
		Severity:  SeverityError,
	}
}
