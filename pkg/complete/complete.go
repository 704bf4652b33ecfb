// Package complete produces completion candidates for a partial just
// invocation: recipe names from the tool's list mode, filenames matching the
// justfile naming pattern, and option flags.
//
// Every query recomputes its candidates from scratch and has no side effects
// on editor or filesystem state. Tool failures are not errors here: a
// checker that is missing or exits nonzero simply yields no candidates.
package complete

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// CandidateKind says what a candidate completes.
type CandidateKind int

const (
	KindRecipe CandidateKind = iota + 1
	KindFile
	KindFlag
)

func (k CandidateKind) String() string {
	switch k {
	case KindRecipe:
		return "recipe"
	case KindFile:
		return "file"
	case KindFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// Candidate is one completion suggestion.
type Candidate struct {
	Label string
	Kind  CandidateKind
}

// filenamePattern matches the configuration filename, case-insensitively and
// optionally dotfile-prefixed. Names are lowercased before matching.
const filenamePattern = "{justfile,.justfile}"

// flags completed for the option portion of a command line. The file-valued
// ones switch the positional argument to filename completion.
var flags = []string{
	"--choose", "--dry-run", "--dump", "--evaluate", "--fmt",
	"--justfile", "--list", "--set", "--shell", "--show", "--summary",
	"--unstable", "--working-directory",
}

var fileValuedFlags = map[string]bool{
	"--justfile":          true,
	"--working-directory": true,
}

// Provider computes completion candidates. The filesystem is injected so
// filename queries are testable against an in-memory fs.
type Provider struct {
	fs          afero.Fs
	listCommand []string
}

// NewProvider creates a Provider that lists recipes with listCommand (argv
// list, run in the queried directory) and matches filenames on fs.
func NewProvider(fs afero.Fs, listCommand []string) *Provider {
	return &Provider{fs: fs, listCommand: listCommand}
}

// RecipeNames invokes the tool's list mode synchronously and parses one
// candidate per indented output line: the first whitespace-delimited token of
// every leading-whitespace-prefixed line. Output order is preserved. A
// missing tool or nonzero exit yields an empty list, never an error.
func (p *Provider) RecipeNames(ctx context.Context, dir string) []string {
	if len(p.listCommand) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, p.listCommand[0], p.listCommand[1:]...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Strs("command", p.listCommand).
			Msg("recipe listing unavailable, completing with nothing")
		return nil
	}
	return parseRecipeList(out)
}

func parseRecipeList(out []byte) []string {
	names := make([]string, 0, 8)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || (line[0] != ' ' && line[0] != '\t') {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	return names
}

// FilenameCandidates returns the entries of dir whose names match the
// justfile filename pattern, sorted for stable presentation.
func (p *Provider) FilenameCandidates(ctx context.Context, dir string) []string {
	entries, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("dir", dir).Msg("directory not readable")
		return nil
	}

	names := make([]string, 0, 2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := doublestar.Match(filenamePattern, strings.ToLower(entry.Name()))
		if err == nil && ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Complete is the single completion entry point: option flags for a partial
// flag word, filename candidates when the previous word was a file-valued
// flag, recipe names otherwise.
func (p *Provider) Complete(ctx context.Context, dir, previous, partial string) []Candidate {
	if fileValuedFlags[previous] {
		return candidates(p.FilenameCandidates(ctx, dir), KindFile, partial)
	}
	if strings.HasPrefix(partial, "-") {
		return candidates(flags, KindFlag, partial)
	}
	return candidates(p.RecipeNames(ctx, dir), KindRecipe, partial)
}

func candidates(labels []string, kind CandidateKind, partial string) []Candidate {
	out := make([]Candidate, 0, len(labels))
	for _, label := range labels {
		if partial != "" && !strings.HasPrefix(label, partial) {
			continue
		}
		out = append(out, Candidate{Label: label, Kind: kind})
	}
	return out
}
