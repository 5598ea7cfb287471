// Nebula field using layered simplex noise.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/sector-forge/internal/entropy"
)

// Octave settings for the nebula field.
const (
	nebulaOctaves     = 3
	nebulaFrequency   = 0.18
	nebulaPersistence = 0.5
)

// NebulaField is a smooth [0, 1] density over a sector's hexes.
// Values are memoised per field; a field belongs to one build and is not safe for concurrent use.
type NebulaField struct {
	noise opensimplex.Noise
	cache map[Offset]float64
}

// NewNebulaField seeds the field from the layout seed. It draws nothing from any stream.
func NewNebulaField(layoutSeed string) *NebulaField {
	return &NebulaField{
		noise: opensimplex.NewNormalized(int64(entropy.HashString(layoutSeed))),
		cache: make(map[Offset]float64),
	}
}

// At returns the nebula density at o.
func (f *NebulaField) At(o Offset) float64 {
	if v, ok := f.cache[o]; ok {
		return v
	}
	// Hex axial -> cartesian: x = q + r*0.5, y = r * sqrt(3)/2
	a := o.Axial()
	x := float64(a.Q) + float64(a.R)*0.5
	y := float64(a.R) * math.Sqrt(3.0) / 2.0

	v := octaveNoise(f.noise, x, y, nebulaOctaves, nebulaFrequency, nebulaPersistence)
	v = math.Max(0, math.Min(1, v))
	f.cache[o] = v
	return v
}

// Len returns the number of memoised hexes.
func (f *NebulaField) Len() int {
	return len(f.cache)
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
