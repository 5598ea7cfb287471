package world

import "fmt"

// SectorKey names a sector on the galaxy map: two base-26 letters for X, two for Y.
// "AAAA" is (0, 0); "ABAA" is (1, 0); "AAAB" is (0, 1).
type SectorKey string

// SectorPos is a sector's galaxy-map position. Y grows southward.
type SectorPos struct {
	X int
	Y int
}

// ParseSectorKey decodes a four-letter key.
func ParseSectorKey(key SectorKey) (SectorPos, error) {
	s := string(key)
	if len(s) != 4 {
		return SectorPos{}, fmt.Errorf("sector key %q: want four letters", s)
	}
	var digits [4]int
	for i := 0; i < 4; i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return SectorPos{}, fmt.Errorf("sector key %q: want letters A-Z", s)
		}
		digits[i] = int(c - 'A')
	}
	return SectorPos{X: digits[0]*26 + digits[1], Y: digits[2]*26 + digits[3]}, nil
}

// Key encodes the position. Positions outside [0, 676) yield an empty key.
func (p SectorPos) Key() SectorKey {
	if p.X < 0 || p.Y < 0 || p.X >= 26*26 || p.Y >= 26*26 {
		return ""
	}
	b := []byte{
		byte('A' + p.X/26), byte('A' + p.X%26),
		byte('A' + p.Y/26), byte('A' + p.Y%26),
	}
	return SectorKey(b)
}

// Neighbor returns the key of the adjacent sector across edge d.
// An unparseable key, or a step off the map, has no neighbour.
func (key SectorKey) Neighbor(d Direction) (SectorKey, bool) {
	p, err := ParseSectorKey(key)
	if err != nil {
		return "", false
	}
	switch d {
	case North:
		p.Y--
	case South:
		p.Y++
	case West:
		p.X--
	case East:
		p.X++
	}
	n := p.Key()
	return n, n != ""
}
