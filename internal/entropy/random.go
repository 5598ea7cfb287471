// Package entropy provides deterministic random streams derived from string seeds.
// A layout stream drives placement, a content stream drives per-system content,
// and labelled streams drive faction setup and turn advances.
package entropy

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Source is anything that yields floats in [0, 1).
type Source interface {
	Float() float64
}

// HashString is the xmur3 string hash. It walks UTF-16 code units so a seed
// hashes the same way it does in a browser-hosted copy of the tool.
func HashString(s string) uint32 {
	units := utf16.Encode([]rune(s))
	h := uint32(1779033703) ^ uint32(len(units))
	for _, c := range units {
		h = (h ^ uint32(c)) * 3432918353
		h = h<<13 | h>>19
	}
	h = (h ^ (h >> 16)) * 2246822507
	h = (h ^ (h >> 13)) * 3266489909
	h ^= h >> 16
	return h
}

// Stream is a mulberry32 generator seeded from a string.
type Stream struct {
	seed  string
	state uint32
	draws uint64
}

// NewStream creates a stream for the given seed.
func NewStream(seed string) *Stream {
	s := &Stream{}
	s.Reseed(seed)
	return s
}

// Reseed resets the stream to the start of the sequence for seed.
func (s *Stream) Reseed(seed string) {
	s.seed = seed
	s.state = HashString(seed)
	s.draws = 0
}

// Seed returns the string the stream was seeded with.
func (s *Stream) Seed() string {
	return s.seed
}

// Draws returns how many values have been taken since the last reseed.
func (s *Stream) Draws() uint64 {
	return s.draws
}

// Float returns the next value in [0, 1).
func (s *Stream) Float() float64 {
	s.state += 0x6D2B79F5
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	s.draws++
	return float64(t^(t>>14)) / 4294967296.0
}

// Range returns a float in [min, max).
func (s *Stream) Range(min, max float64) float64 {
	return Range(s, min, max)
}

// IntRange returns an int in [min, max], inclusive.
func (s *Stream) IntRange(min, max int) int {
	return IntRange(s, min, max)
}

// Chance reports whether a draw falls under p.
func (s *Stream) Chance(p float64) bool {
	return s.Float() < p
}

// Shuffle permutes n elements with Fisher-Yates, walking from the tail.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	Shuffle(s, n, swap)
}

// Range returns a float in [min, max) drawn from src.
func Range(src Source, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + src.Float()*(max-min)
}

// IntRange returns an int in [min, max] drawn from src.
func IntRange(src Source, min, max int) int {
	if max <= min {
		return min
	}
	n := min + int(src.Float()*float64(max-min+1))
	if n > max {
		n = max
	}
	return n
}

// Shuffle permutes n elements using draws from src.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(src.Float() * float64(i+1))
		if j > i {
			j = i
		}
		swap(i, j)
	}
}

// ContentSeed derives the per-iteration content seed from a layout seed.
func ContentSeed(layoutSeed string, iteration int) string {
	return fmt.Sprintf("%s::content:%d", layoutSeed, iteration)
}

// DerivedSeed derives a labelled seed from a layout seed.
func DerivedSeed(layoutSeed, label string) string {
	return layoutSeed + "::" + label
}

// StableNoise maps the joined parts to a fixed value in [0, 1).
// It never touches a live stream, so repeated calls agree.
func StableNoise(parts ...string) float64 {
	s := NewStream(strings.Join(parts, "|"))
	return s.Float()
}
