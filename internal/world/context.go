// Cross-sector context: read-only summaries of already-known neighbouring
// sectors, used to bias placement, POIs and core selection near sector seams.
package world

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/tables"
)

// Stage gates how much cross-sector context reaches generation.
type Stage string

const (
	StageBaseline Stage = "baseline" // no cross-sector influence
	StageEdges    Stage = "edges"    // edge pressure only
	StageFull     Stage = "full"     // edge pressure, core bias, intent and gate suppression
)

// ParseStage maps a setting value to a stage. Unknown values enable everything.
func ParseStage(s string) Stage {
	switch Stage(strings.ToLower(strings.TrimSpace(s))) {
	case StageBaseline:
		return StageBaseline
	case StageEdges:
		return StageEdges
	default:
		return StageFull
	}
}

// edgeBand is how many lines in from an edge count toward its occupancy.
const edgeBand = 2

// KnownSector is the structural view of a sector that has already been generated.
type KnownSector struct {
	Key         SectorKey
	Seed        string
	Width       int
	Height      int
	Systems     map[HexID][]string // system hex -> system tags
	Core        HexID
	ActiveGates []HexID
}

// Signature hashes everything a summary depends on.
func (k KnownSector) Signature() string {
	ids := make([]HexID, 0, len(k.Systems))
	for id := range k.Systems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return LessID(ids[i], ids[j]) })

	var b strings.Builder
	fmt.Fprintf(&b, "%s|%dx%d|%s|", k.Key, k.Width, k.Height, k.Core)
	for _, id := range ids {
		tags := append([]string(nil), k.Systems[id]...)
		sort.Strings(tags)
		fmt.Fprintf(&b, "%s:%s;", id, strings.Join(tags, ","))
	}
	gates := append([]HexID(nil), k.ActiveGates...)
	sort.Slice(gates, func(i, j int) bool { return LessID(gates[i], gates[j]) })
	for _, id := range gates {
		fmt.Fprintf(&b, "g%s;", id)
	}
	return fmt.Sprintf("%08x", entropy.HashString(b.String()))
}

// TagSignal is the share of a sector's systems carrying a tag.
type TagSignal struct {
	Tag    string  `json:"tag"`
	Signal float64 `json:"signal"`
}

// GenerationContext summarises one known sector.
type GenerationContext struct {
	Key           SectorKey     `json:"key"`
	Grid          Grid          `json:"grid"`
	DensityRatio  float64       `json:"density_ratio"`
	EdgeOccupancy [4]float64    `json:"edge_occupancy"` // indexed by Direction
	DensityMap    [3][3]float64 `json:"density_map"`    // [col third][row third]
	Core          *Offset       `json:"core,omitempty"`
	DominantTags  []TagSignal   `json:"dominant_tags"`
	ActiveGates   []Offset      `json:"active_gates"`
}

// Summarize derives the generation context of a known sector.
func Summarize(k KnownSector, tuning tables.ContextTuning) *GenerationContext {
	g := Grid{Width: k.Width, Height: k.Height}
	gc := &GenerationContext{Key: k.Key, Grid: g}

	var systems []Offset
	for id := range k.Systems {
		if o, err := ParseHexID(id); err == nil && g.InBounds(o) {
			systems = append(systems, o)
		}
	}
	if n := g.HexCount(); n > 0 {
		gc.DensityRatio = float64(len(systems)) / float64(n)
	}

	for _, d := range Directions {
		span := g.Width
		if d == West || d == East {
			span = g.Height
		}
		depth := edgeBand
		if other := g.Width + g.Height - span; other < depth {
			depth = other
		}
		if span*depth == 0 {
			continue
		}
		hits := 0
		for _, o := range systems {
			if g.EdgeDistanceTo(o, d) < depth {
				hits++
			}
		}
		gc.EdgeOccupancy[d] = float64(hits) / float64(span*depth)
	}

	var cells [3][3]int
	for _, o := range g.Coords() {
		cx, cy := g.NinthOf(o)
		cells[cx][cy]++
	}
	for _, o := range systems {
		cx, cy := g.NinthOf(o)
		gc.DensityMap[cx][cy]++
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			if cells[x][y] > 0 {
				gc.DensityMap[x][y] /= float64(cells[x][y])
			}
		}
	}

	if k.Core != "" {
		if o, err := ParseHexID(k.Core); err == nil && g.InBounds(o) {
			gc.Core = &o
		}
	}

	counts := make(map[string]int)
	for _, tags := range k.Systems {
		seen := make(map[string]bool, len(tags))
		for _, t := range tags {
			if !seen[t] {
				seen[t] = true
				counts[t]++
			}
		}
	}
	gc.DominantTags = topSignals(counts, len(systems), tuning.DominantTagCount)

	for _, id := range k.ActiveGates {
		if o, err := ParseHexID(id); err == nil && g.InBounds(o) {
			gc.ActiveGates = append(gc.ActiveGates, o)
		}
	}
	sort.Slice(gc.ActiveGates, func(i, j int) bool { return gc.ActiveGates[i].Less(gc.ActiveGates[j]) })

	return gc
}

func topSignals(counts map[string]int, total, limit int) []TagSignal {
	if total == 0 || limit <= 0 {
		return nil
	}
	out := make([]TagSignal, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagSignal{Tag: tag, Signal: float64(n) / float64(total)})
	}
	sortSignals(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortSignals(s []TagSignal) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Signal != s[j].Signal {
			return s[i].Signal > s[j].Signal
		}
		return s[i].Tag < s[j].Tag
	})
}

// ContextCache memoises sector summaries, keyed by seed and structural signature.
// It evicts in insertion order once the limit is reached. Safe for concurrent use.
type ContextCache struct {
	mu      sync.Mutex
	limit   int
	entries map[string]*GenerationContext
	order   []string
}

// DefaultCacheLimit bounds a cache created with a non-positive limit.
const DefaultCacheLimit = 24

// NewContextCache creates an empty cache.
func NewContextCache(limit int) *ContextCache {
	if limit <= 0 {
		limit = DefaultCacheLimit
	}
	return &ContextCache{limit: limit, entries: make(map[string]*GenerationContext)}
}

// Summary returns the cached summary for k, computing it on a miss.
func (c *ContextCache) Summary(k KnownSector, tuning tables.ContextTuning) *GenerationContext {
	key := k.Seed + "#" + k.Signature()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gc, ok := c.entries[key]; ok {
		return gc
	}
	gc := Summarize(k, tuning)
	for len(c.order) >= c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = gc
	c.order = append(c.order, key)
	return gc
}

// Len returns the number of cached summaries.
func (c *ContextCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every cached summary.
func (c *ContextCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*GenerationContext)
	c.order = nil
}

// Context answers cross-sector questions for sectors being generated.
type Context struct {
	stage  Stage
	tuning tables.ContextTuning
	known  map[SectorKey]*GenerationContext
}

// NewContext summarises the known sectors through cache. A nil cache summarises directly.
func NewContext(cache *ContextCache, known []KnownSector, stage Stage, tuning tables.ContextTuning) *Context {
	c := &Context{stage: stage, tuning: tuning, known: make(map[SectorKey]*GenerationContext, len(known))}
	for _, k := range known {
		if k.Key == "" {
			continue
		}
		if cache != nil {
			c.known[k.Key] = cache.Summary(k, tuning)
		} else {
			c.known[k.Key] = Summarize(k, tuning)
		}
	}
	slog.Debug("cross-sector context built", "known", len(c.known), "stage", stage)
	return c
}

func (c *Context) neighbor(key SectorKey, d Direction) *GenerationContext {
	nk, ok := key.Neighbor(d)
	if !ok {
		return nil
	}
	return c.known[nk]
}

// EdgePressure is the neighbour's occupancy along the facing edge, scaled by
// boundary continuity. Unknown neighbours and the baseline stage yield 0.
func (c *Context) EdgePressure(key SectorKey, d Direction) float64 {
	if c == nil || c.stage == StageBaseline {
		return 0
	}
	n := c.neighbor(key, d)
	if n == nil {
		return 0
	}
	return n.EdgeOccupancy[d.Opposite()] * c.tuning.BoundaryContinuity
}

// Pressure returns EdgePressure bound to key, for the placer.
func (c *Context) Pressure(key SectorKey) PressureFunc {
	return func(d Direction) float64 { return c.EdgePressure(key, d) }
}

// CoreBias is the per-edge pull toward neighbouring core systems.
type CoreBias [4]float64

// CoreBias reports how strongly each neighbour's core sits against the shared edge.
func (c *Context) CoreBias(key SectorKey) CoreBias {
	var b CoreBias
	if c == nil || c.stage != StageFull {
		return b
	}
	for _, d := range Directions {
		n := c.neighbor(key, d)
		if n == nil || n.Core == nil {
			continue
		}
		span := n.Grid.Height
		if d == West || d == East {
			span = n.Grid.Width
		}
		dist := n.Grid.EdgeDistanceTo(*n.Core, d.Opposite())
		pull := 1.0
		if span > 1 {
			pull = 1 - float64(dist)/float64(span-1)
		}
		b[d] = pull * c.tuning.CoreBiasStrength
	}
	return b
}

// Toward scores how far o leans into the biased edges of g, in [0, sum of b].
func (b CoreBias) Toward(g Grid, o Offset) float64 {
	total := 0.0
	for _, d := range Directions {
		if b[d] == 0 {
			continue
		}
		span := g.Height
		if d == West || d == East {
			span = g.Width
		}
		lean := 1.0
		if span > 1 {
			lean = 1 - float64(g.EdgeDistanceTo(o, d))/float64(span-1)
		}
		total += b[d] * lean
	}
	return total
}

// Intent is what the surrounding sectors suggest this sector should look like.
type Intent struct {
	Neighbors    int         `json:"neighbors"`
	DensityRatio float64     `json:"density_ratio"`
	Tags         []TagSignal `json:"tags"`
}

// TagSignals returns the intent's tag signals as a map.
func (i Intent) TagSignals() map[string]float64 {
	if len(i.Tags) == 0 {
		return nil
	}
	m := make(map[string]float64, len(i.Tags))
	for _, t := range i.Tags {
		m[t.Tag] = t.Signal
	}
	return m
}

// SectorIntent averages neighbour density and merges their dominant tags.
func (c *Context) SectorIntent(key SectorKey) Intent {
	var in Intent
	if c == nil || c.stage != StageFull {
		return in
	}
	merged := make(map[string]float64)
	for _, d := range Directions {
		n := c.neighbor(key, d)
		if n == nil {
			continue
		}
		in.Neighbors++
		in.DensityRatio += n.DensityRatio
		for _, t := range n.DominantTags {
			merged[t.Tag] += t.Signal
		}
	}
	if in.Neighbors == 0 {
		return in
	}
	in.DensityRatio /= float64(in.Neighbors)
	for tag, s := range merged {
		in.Tags = append(in.Tags, TagSignal{Tag: tag, Signal: s / float64(in.Neighbors)})
	}
	sortSignals(in.Tags)
	if limit := c.tuning.DominantTagCount; limit > 0 && len(in.Tags) > limit {
		in.Tags = in.Tags[:limit]
	}
	return in
}

// NeighborGate is an active gate in an adjacent sector, projected into this
// sector's frame so offsets may fall outside the grid.
type NeighborGate struct {
	Sector    SectorKey
	Direction Direction
	At        Offset
}

// NeighborActiveGates lists the neighbours' active gates in self's frame.
func (c *Context) NeighborActiveGates(key SectorKey, self Grid) []NeighborGate {
	if c == nil || c.stage != StageFull {
		return nil
	}
	var out []NeighborGate
	for _, d := range Directions {
		n := c.neighbor(key, d)
		if n == nil {
			continue
		}
		for _, o := range n.ActiveGates {
			p := o
			switch d {
			case East:
				p.Col += self.Width
			case West:
				p.Col -= n.Grid.Width
			case North:
				p.Row -= n.Grid.Height
			case South:
				p.Row += self.Height
			}
			out = append(out, NeighborGate{Sector: n.Key, Direction: d, At: p})
		}
	}
	return out
}
