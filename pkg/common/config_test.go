package common

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.KeepSystemArea)
}

func TestLoadConfig_File(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/isobin.yaml", []byte("verbose: true\nbase_offset: 4704\nstrict: false\n"), 0o644))

	cfg, err := LoadConfig(fs, "/etc/isobin.yaml")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Verbose:        true,
		Strict:         false,
		BaseOffset:     4704,
		KeepSystemArea: true,
	}, cfg)
}

func TestLoadConfig_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("base_offset: [1, 2\n"), 0o644))

	_, err := LoadConfig(fs, "missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrFailedToReadConfig)

	_, err = LoadConfig(fs, "bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrFailedToParseConfig)
}
