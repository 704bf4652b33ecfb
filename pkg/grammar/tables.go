// Package grammar holds the static name tables for the justfile language.
//
// The tables are pure data: classification and completion consult them via
// exact, case-sensitive, whole-token membership checks. Nothing in this
// package touches process-wide mutable state; callers get their own copy of
// the default tables and may modify it freely.
package grammar

// Set is a membership table over token text.
type Set map[string]struct{}

// NewSet builds a Set from the given names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Contains reports whether name is a member of the set. The match is
// case-sensitive and covers the whole token: "Env" does not match "env",
// and "envy" does not match "env".
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members of the set in unspecified order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// WithSuffixAliases returns a new set containing every member of s plus, for
// each member ending in suffix, an alias with the suffix replaced by
// replacement. For example, with suffix "_directory" and replacement "_dir",
// "cache_directory" also registers "cache_dir". The suffix is a configured
// string, not a fixed length.
func (s Set) WithSuffixAliases(suffix, replacement string) Set {
	out := make(Set, len(s))
	for name := range s {
		out[name] = struct{}{}
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			out[name[:len(name)-len(suffix)]+replacement] = struct{}{}
		}
	}
	return out
}

// Tables groups the name sets the classifier and completion provider consult.
type Tables struct {
	// Keywords are the language's reserved words.
	Keywords Set

	// Operators are the operator tokens.
	Operators Set

	// Settings are the names valid after the "set" keyword.
	Settings Set

	// Functions are the builtin function names, including derived
	// directory-suffix aliases.
	Functions Set

	// Attributes are the names valid inside a recipe attribute list.
	Attributes Set

	// Constants are the predefined constant names.
	Constants Set
}

// DirectorySuffix is the builtin-function suffix that derives an abbreviated
// alias, and DirectoryAlias is what it abbreviates to.
const (
	DirectorySuffix = "_directory"
	DirectoryAlias  = "_dir"
)

// Default returns the tables for the justfile language as currently
// understood by this package. The function table already includes the
// directory-suffix aliases.
func Default() Tables {
	return Tables{
		Keywords: NewSet(
			"alias", "assert", "else", "export", "false", "if", "import",
			"mod", "set", "shell", "true", "unexport",
		),
		Operators: NewSet(
			":=", "?", "==", "!=", "=~", "!~", "@", "&&", "||", "!",
			"+", "/", "*", "$",
		),
		Settings: NewSet(
			"allow-duplicate-recipes", "allow-duplicate-variables",
			"dotenv-filename", "dotenv-load", "dotenv-path",
			"dotenv-required", "export", "fallback", "ignore-comments",
			"positional-arguments", "quiet", "script-interpreter", "shell",
			"tempdir", "unstable", "windows-powershell", "windows-shell",
			"working-directory",
		),
		Functions: NewSet(
			"absolute_path", "append", "arch", "blake3", "blake3_file",
			"cache_directory", "canonicalize", "capitalize", "choose",
			"clean", "config_directory", "config_local_directory",
			"data_directory", "data_local_directory", "datetime",
			"datetime_utc", "encode_uri_component", "env", "env_var",
			"env_var_or_default", "error", "executable_directory",
			"extension", "file_name", "file_stem", "home_directory",
			"invocation_directory", "invocation_directory_native",
			"is_dependency", "join", "justfile", "justfile_directory",
			"kebabcase", "lowercamelcase", "lowercase", "module_directory",
			"module_file", "num_cpus", "os", "os_family",
			"parent_directory", "path_exists", "prepend", "quote", "read",
			"replace", "replace_regex", "require", "semver_matches",
			"sha256", "sha256_file", "shell", "shoutykebabcase",
			"shoutysnakecase", "snakecase", "source_directory",
			"source_file", "style", "titlecase", "trim", "trim_end",
			"trim_end_match", "trim_end_matches", "trim_start",
			"trim_start_match", "trim_start_matches", "uppercamelcase",
			"uppercase", "uuid", "which", "without_extension",
		).WithSuffixAliases(DirectorySuffix, DirectoryAlias),
		Attributes: NewSet(
			"confirm", "doc", "exit-message", "extension", "group", "linux",
			"macos", "metadata", "no-cd", "no-exit-message", "no-quiet",
			"openbsd", "parallel", "positional-arguments", "private",
			"script", "unix", "windows", "working-directory",
		),
		Constants: NewSet(
			"HEX", "HEXLOWER", "HEXUPPER",
			"CLEAR", "NORMAL", "BOLD", "ITALIC", "UNDERLINE", "INVERT",
			"HIDE", "STRIKETHROUGH",
			"BLACK", "BLUE", "CYAN", "GREEN", "MAGENTA", "RED", "WHITE",
			"YELLOW",
			"PATH_SEP", "PATH_VAR_SEP",
		),
	}
}
