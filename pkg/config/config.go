// Package config carries the user-overridable tool configuration: which
// external commands to run for checking and for listing recipes.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultFileName is looked for in the working directory when no explicit
// config path is given.
const DefaultFileName = ".gojust.toml"

// Config is the tool configuration. Both commands are ordered argv lists;
// element zero is the executable.
type Config struct {
	// CheckCommand is the checker invocation. The buffer is written to its
	// stdin, so the default asks for machine-stable, color-free,
	// stdin-sourced output.
	CheckCommand []string `toml:"check_command"`

	// ListCommand is the recipe-listing invocation used for completion.
	ListCommand []string `toml:"list_command"`
}

// Default returns the stock configuration, targeting the just executable.
func Default() *Config {
	return &Config{
		CheckCommand: []string{"just", "--color", "never", "--summary", "--justfile", "-"},
		ListCommand:  []string{"just", "--color", "never", "--list"},
	}
}

// Load reads the config file at path from fs, filling unset fields from the
// defaults. A missing file is not an error: the defaults apply.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Errorf("reading config %q: %w", path, err)
	}

	var fileCfg Config
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return nil, errors.Errorf("parsing config %q: %w", path, err)
	}

	if len(fileCfg.CheckCommand) > 0 {
		cfg.CheckCommand = fileCfg.CheckCommand
	}
	if len(fileCfg.ListCommand) > 0 {
		cfg.ListCommand = fileCfg.ListCommand
	}
	return cfg, nil
}
