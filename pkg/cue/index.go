package cue

import (
	"fmt"
	"strconv"
	"strings"
)

// Frames per second and seconds per minute of CD time.
const (
	FramesPerSecond  = 75
	SecondsPerMinute = 60
)

// Index is a position within a track, in minutes, seconds and frames.
type Index struct {
	Number  int `yaml:"number"`
	Minutes int `yaml:"minutes"`
	Seconds int `yaml:"seconds"`
	Frames  int `yaml:"frames"`
}

// NewIndex builds an index, clamping every field to its valid range.
func NewIndex(number, minutes, seconds, frames int) Index {
	return Index{
		Number:  clamp(number, 0, 99),
		Minutes: clamp(minutes, 0, 99),
		Seconds: clamp(seconds, 0, SecondsPerMinute-1),
		Frames:  clamp(frames, 0, FramesPerSecond-1),
	}
}

// ParseIndex parses a "mm:ss:ff" time for the given index number.
func ParseIndex(number int, time string) (Index, error) {
	parts := strings.Split(strings.TrimSpace(time), ":")
	if len(parts) < 3 {
		return Index{}, fmt.Errorf("invalid format for index time %q", time)
	}
	var msf [3]int
	for i := range msf {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return Index{}, fmt.Errorf("invalid format for index time %q: %w", time, err)
		}
		msf[i] = v
	}
	return NewIndex(number, msf[0], msf[1], msf[2]), nil
}

// LBA returns the position as a sector count from the start of the file.
func (i Index) LBA() uint32 {
	return uint32((i.Minutes*SecondsPerMinute+i.Seconds)*FramesPerSecond + i.Frames)
}

// Time formats the position as "mm:ss:ff".
func (i Index) Time() string {
	return fmt.Sprintf("%02d:%02d:%02d", i.Minutes, i.Seconds, i.Frames)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
