package stellar

import (
	"strconv"
	"strings"

	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

const maxNameAttempts = 400

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Roman formats n as a Roman numeral. Non-positive values fall back to digits.
func Roman(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}

// pickSystemName draws prefix+suffix names until one is unused. A name carried
// by an adjacent system is occasionally tolerated. After the retry budget the
// last draw gets a numeral disambiguator.
func pickSystemName(opts Options, names tables.NameLists, dupChance float64, src entropy.Source) string {
	adjacent := adjacentNames(opts)

	name := ""
	for i := 0; i < maxNameAttempts; i++ {
		name = entropy.Pick(src, names.Prefixes) + " " + entropy.Pick(src, names.Suffixes)
		if !opts.UsedNames[name] {
			return name
		}
		if adjacent[name] && src.Float() < dupChance {
			return name
		}
	}
	for n := 2; ; n++ {
		candidate := name + " " + Roman(n)
		if !opts.UsedNames[candidate] {
			return candidate
		}
	}
}

func adjacentNames(opts Options) map[string]bool {
	if len(opts.SectorsByCoord) == 0 || opts.CoordID == "" {
		return nil
	}
	o, err := world.ParseHexID(opts.CoordID)
	if err != nil {
		return nil
	}
	out := make(map[string]bool)
	for _, n := range o.Axial().Neighbors() {
		if sys := opts.SectorsByCoord[n.Offset().ID()]; sys != nil {
			out[sys.Name] = true
		}
	}
	return out
}
