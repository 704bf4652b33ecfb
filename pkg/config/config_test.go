package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "/work/.gojust.toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "just", cfg.CheckCommand[0])
}

func TestLoadOverridesCheckCommand(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `check_command = ["just-beta", "--color", "never", "--summary", "--justfile", "-"]`
	require.NoError(t, afero.WriteFile(fs, "/work/.gojust.toml", []byte(content), 0o644))

	cfg, err := Load(fs, "/work/.gojust.toml")
	require.NoError(t, err)
	assert.Equal(t, "just-beta", cfg.CheckCommand[0])
	assert.Equal(t, Default().ListCommand, cfg.ListCommand, "unset fields keep defaults")
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/.gojust.toml", []byte("check_command = ["), 0o644))

	_, err := Load(fs, "/work/.gojust.toml")
	assert.Error(t, err)
}
