package cue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndex_Clamps(t *testing.T) {
	assert.Equal(t, Index{Number: 99, Minutes: 99, Seconds: 59, Frames: 74}, NewIndex(100, 120, 75, 99))
	assert.Equal(t, Index{}, NewIndex(-1, -5, -1, -3))
}

func TestParseIndex(t *testing.T) {
	idx, err := ParseIndex(1, " 12:34:56 ")
	require.NoError(t, err)
	assert.Equal(t, Index{Number: 1, Minutes: 12, Seconds: 34, Frames: 56}, idx)
	assert.Equal(t, "12:34:56", idx.Time())

	idx, err = ParseIndex(0, "00:61:80")
	require.NoError(t, err)
	assert.Equal(t, "00:59:74", idx.Time())

	_, err = ParseIndex(1, "00:00")
	assert.Error(t, err)
	_, err = ParseIndex(1, "aa:00:00")
	assert.Error(t, err)
}

func TestIndex_LBA(t *testing.T) {
	tests := []struct {
		time string
		lba  uint32
	}{
		{"00:00:00", 0},
		{"00:00:74", 74},
		{"00:02:00", 150},
		{"01:00:00", 4500},
		{"74:59:74", 74*4500 + 59*75 + 74},
	}

	for _, tt := range tests {
		t.Run(tt.time, func(t *testing.T) {
			idx, err := ParseIndex(1, tt.time)
			require.NoError(t, err)
			assert.Equal(t, tt.lba, idx.LBA())
		})
	}
}
