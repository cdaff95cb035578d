package pkg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hansbonini/isobin/pkg/common"
	"github.com/hansbonini/isobin/pkg/iso9660"
	"github.com/hansbonini/isobin/pkg/psx"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var helloContent = []byte(strings.Repeat("hello from a raw image\n", 200))

// newTestFs returns a filesystem holding /hello.bin, a raw image with a
// single file HELLO.TXT.
func newTestFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/hello.txt", helloContent, 0644))
	require.NoError(t, NewCDProcessor(fs, nil).Build("/hello.txt", "/hello.bin"))
	return fs
}

func TestCDProcessor_Build(t *testing.T) {
	fs := newTestFs(t)

	raw, err := afero.ReadFile(fs, "/hello.bin")
	require.NoError(t, err)
	require.Zero(t, len(raw)%psx.CD_SECTOR_SIZE)
	assert.Equal(t, psx.SyncPattern[:], raw[:psx.CD_SYNC_SIZE])

	pvd := raw[16*psx.CD_SECTOR_SIZE+psx.CD_DATA_OFFSET:]
	assert.Equal(t, []byte("\x01CD001\x01"), pvd[:7])
}

func TestCDProcessor_List(t *testing.T) {
	fs := newTestFs(t)
	p := NewCDProcessor(fs, nil)

	var table bytes.Buffer
	require.NoError(t, p.List("/hello.bin", "/", &table, false))
	lines := strings.Split(strings.TrimSpace(table.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "0000 | 00:02:21 |     21 |"), lines[2])
	assert.True(t, strings.HasSuffix(lines[2], "| /HELLO.TXT"), lines[2])

	var out bytes.Buffer
	require.NoError(t, p.List("/hello.bin", "", &out, true))
	var entries []CDFileEntry
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &entries))
	assert.Equal(t, []CDFileEntry{{
		ID:      0,
		Path:    "/HELLO.TXT",
		LBA:     21,
		MSF:     "00:02:21",
		Size:    uint32(len(helloContent)),
		Sectors: 3,
	}}, entries)
}

func TestCDProcessor_Stat(t *testing.T) {
	fs := newTestFs(t)
	p := NewCDProcessor(fs, nil)

	// The image stores the name without a version suffix.
	var out bytes.Buffer
	err := p.Stat("/hello.bin", "HELLO.TXT;1", &out)
	assert.ErrorIs(t, err, iso9660.ErrFileNotFound)
	assert.Zero(t, out.Len())

	require.NoError(t, p.Stat("/hello.bin", "//HELLO.TXT", &out))
	var entry CDFileEntry
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "/HELLO.TXT", entry.Path)
	assert.Equal(t, uint32(21), entry.LBA)
	assert.Equal(t, uint32(3), entry.Sectors)
	require.NotNil(t, entry.Header)
	assert.Equal(t, SectorHeader{MSF: "00:02:21", Mode: 2, Submode: []string{"data"}}, *entry.Header)
}

func TestCDProcessor_StatThroughCue(t *testing.T) {
	fs := newTestFs(t)
	raw, err := afero.ReadFile(fs, "/hello.bin")
	require.NoError(t, err)
	game := append(make([]byte, 2*psx.CD_SECTOR_SIZE), raw...)
	require.NoError(t, afero.WriteFile(fs, "/disc/game.bin", game, 0644))
	require.NoError(t, afero.WriteFile(fs, "/disc/game.cue", []byte(mixedModeSheet), 0644))

	// The header is read relative to the data track, not the file start.
	var out bytes.Buffer
	require.NoError(t, NewCDProcessor(fs, nil).Stat("/disc/game.cue", "HELLO.TXT", &out))
	var entry CDFileEntry
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &entry))
	require.NotNil(t, entry.Header)
	assert.Equal(t, "00:02:21", entry.Header.MSF)
}

func TestCDProcessor_Extract(t *testing.T) {
	fs := newTestFs(t)
	p := NewCDProcessor(fs, nil)

	require.NoError(t, p.Extract("/hello.bin", "/HELLO.TXT", "/out/nested/hello.txt"))
	got, err := afero.ReadFile(fs, "/out/nested/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, helloContent, got)
}

func TestCDProcessor_Dump(t *testing.T) {
	fs := newTestFs(t)
	p := NewCDProcessor(fs, nil)

	require.NoError(t, p.Dump("/hello.bin", "/dump"))
	got, err := afero.ReadFile(fs, "/dump/HELLO.TXT")
	require.NoError(t, err)
	assert.Equal(t, helloContent, got)
}

func TestCDProcessor_LenientMisses(t *testing.T) {
	fs := newTestFs(t)
	cfg := common.DefaultConfig()
	cfg.Strict = false
	p := NewCDProcessor(fs, cfg)

	var out bytes.Buffer
	require.NoError(t, p.List("/hello.bin", "/NOPE", &out, false))
	require.NoError(t, p.Stat("/hello.bin", "/NOPE/FILE", &out))
	require.NoError(t, p.Extract("/hello.bin", "MISSING.TXT", "/missing.txt"))
	assert.Zero(t, out.Len())

	exists, err := afero.Exists(fs, "/missing.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	strict := NewCDProcessor(fs, nil)
	assert.ErrorIs(t, strict.List("/hello.bin", "/NOPE", &out, false), iso9660.ErrPathSegmentNotFound)
	assert.ErrorIs(t, strict.Extract("/hello.bin", "MISSING.TXT", "/missing.txt"), iso9660.ErrFileNotFound)
}

func TestCDProcessor_Roundtrip(t *testing.T) {
	fs := newTestFs(t)
	p := NewCDProcessor(fs, nil)

	require.NoError(t, p.Roundtrip("/hello.bin", "/copy.bin"))

	src, err := afero.ReadFile(fs, "/hello.bin")
	require.NoError(t, err)
	dst, err := afero.ReadFile(fs, "/copy.bin")
	require.NoError(t, err)
	assert.Equal(t, src, dst)
}

func TestCDProcessor_WrapUnwrap(t *testing.T) {
	fs := newTestFs(t)
	p := NewCDProcessor(fs, nil)

	require.NoError(t, p.Unwrap("/hello.bin", "/hello.iso"))
	cooked, err := afero.ReadFile(fs, "/hello.iso")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x01CD001\x01"), cooked[16*psx.CD_DATA_SIZE:16*psx.CD_DATA_SIZE+7])

	require.NoError(t, p.Wrap("/hello.iso", "/rewrapped.bin"))
	raw, err := afero.ReadFile(fs, "/hello.bin")
	require.NoError(t, err)
	rewrapped, err := afero.ReadFile(fs, "/rewrapped.bin")
	require.NoError(t, err)
	assert.Equal(t, raw, rewrapped)

	assert.Error(t, p.Wrap("/nothing.iso", "/x.bin"))
}

func TestFirstDifference(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []byte
		offset int64
		same   bool
	}{
		{"equal", []byte("abcdef"), []byte("abcdef"), 6, true},
		{"differs", []byte("abcdef"), []byte("abcXef"), 3, false},
		{"shorter", []byte("abc"), []byte("abcdef"), 3, false},
		{"empty", nil, nil, 0, true},
		{"large", bytes.Repeat([]byte{1}, 100000), append(bytes.Repeat([]byte{1}, 99999), 2), 99999, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, same, err := firstDifference(bytes.NewReader(tt.a), bytes.NewReader(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.same, same)
		})
	}
}

const mixedModeSheet = `FILE "game.bin" BINARY
  TRACK 01 AUDIO
    INDEX 01 00:00:00
  TRACK 02 MODE2/2352
    INDEX 01 00:00:02
`

func TestCDProcessor_CueImage(t *testing.T) {
	fs := newTestFs(t)
	raw, err := afero.ReadFile(fs, "/hello.bin")
	require.NoError(t, err)

	// Two sectors of audio ahead of the data track.
	game := append(make([]byte, 2*psx.CD_SECTOR_SIZE), raw...)
	require.NoError(t, afero.WriteFile(fs, "/disc/game.bin", game, 0644))
	require.NoError(t, afero.WriteFile(fs, "/disc/game.cue", []byte(mixedModeSheet), 0644))

	p := NewCDProcessor(fs, nil)
	require.NoError(t, p.Extract("/disc/game.cue", "HELLO.TXT", "/from-cue.txt"))
	got, err := afero.ReadFile(fs, "/from-cue.txt")
	require.NoError(t, err)
	assert.Equal(t, helloContent, got)

	require.NoError(t, p.Roundtrip("/disc/game.cue", "/disc/copy.bin"))
}

func TestCDProcessor_CueErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/audio.cue", []byte("FILE \"a.bin\" BINARY\n  TRACK 01 AUDIO\n    INDEX 01 00:00:00\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/cooked.cue", []byte("FILE \"a.iso\" BINARY\n  TRACK 01 MODE1/2048\n    INDEX 01 00:00:00\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/nofile.cue", []byte("TRACK 01 MODE2/2352\n  INDEX 01 00:00:00\n"), 0644))

	p := NewCDProcessor(fs, nil)
	var out bytes.Buffer

	err := p.List("/audio.cue", "/", &out, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), common.ErrNoDataTrack)

	err = p.List("/cooked.cue", "/", &out, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODE1/2048")

	err = p.List("/nofile.cue", "/", &out, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no FILE")

	err = p.List("/missing.cue", "/", &out, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), common.ErrFailedToParseCueSheet)
}

func TestCueProcessor(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/game.cue", []byte(mixedModeSheet), 0644))
	p := NewCueProcessor(fs)

	var shown bytes.Buffer
	require.NoError(t, p.Show("/game.cue", &shown))
	assert.Contains(t, shown.String(), "type: MODE2/2352")
	assert.Contains(t, shown.String(), "name: game.bin")

	var formatted bytes.Buffer
	require.NoError(t, p.Format("/game.cue", "", &formatted))
	assert.Equal(t, mixedModeSheet, formatted.String())

	require.NoError(t, p.Format("/game.cue", "/formatted.cue", nil))
	written, err := afero.ReadFile(fs, "/formatted.cue")
	require.NoError(t, err)
	assert.Equal(t, mixedModeSheet, string(written))
}
