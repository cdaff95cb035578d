package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hansbonini/isobin/pkg/common"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against fs and returns its output.
func execute(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	appFs = fs
	t.Cleanup(func() {
		appFs = afero.NewOsFs()
		*cfg = *common.DefaultConfig()
		for _, name := range []string{"config", "strict", "yaml"} {
			flag := rootCmd.PersistentFlags().Lookup(name)
			if flag == nil {
				flag = isoLsCmd.Flags().Lookup(name)
			}
			require.NoError(t, flag.Value.Set(flag.DefValue))
			flag.Changed = false
		}
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func imageFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/readme.txt", []byte(strings.Repeat("read me\n", 10)), 0644))
	_, err := execute(t, fs, "iso", "build", "/readme.txt", "/readme.bin")
	require.NoError(t, err)
	return fs
}

func TestIsoLs_YAML(t *testing.T) {
	fs := imageFs(t)

	out, err := execute(t, fs, "iso", "ls", "--yaml", "/readme.bin")
	require.NoError(t, err)
	assert.Contains(t, out, "path: /README.TXT")
	assert.Contains(t, out, "size: 80")
}

func TestIsoGet(t *testing.T) {
	fs := imageFs(t)

	_, err := execute(t, fs, "iso", "get", "/readme.bin", "README.TXT", "/out.txt")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("read me\n", 10), string(data))
}

func TestConfigFile(t *testing.T) {
	fs := imageFs(t)
	require.NoError(t, afero.WriteFile(fs, "/isobin.yaml", []byte("strict: false\n"), 0644))

	_, err := execute(t, fs, "iso", "stat", "/readme.bin", "/MISSING")
	assert.Error(t, err)

	_, err = execute(t, fs, "--config", "/isobin.yaml", "iso", "stat", "/readme.bin", "/MISSING")
	require.NoError(t, err)
	assert.False(t, cfg.Strict)

	// An explicit flag wins over the file.
	_, err = execute(t, fs, "--config", "/isobin.yaml", "--strict=true", "iso", "stat", "/readme.bin", "/MISSING")
	assert.Error(t, err)
}

func TestCueFmt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/game.cue", []byte("FILE \"game.bin\" BINARY\nTRACK 1 MODE2/2352\nINDEX 1 0:0:0\n"), 0644))

	out, err := execute(t, fs, "cue", "fmt", "/game.cue")
	require.NoError(t, err)
	assert.Equal(t, "FILE \"game.bin\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n", out)
}
