package stellar

import (
	"log/slog"

	"github.com/talgya/sector-forge/internal/world"
)

// Context labels attached to invariant reports.
const (
	LabelGenerate  = "generate"
	LabelReconcile = "reconcile"
	LabelAddBody   = "add-body"
	LabelReroll    = "reroll"
)

// Violation describes a broken system invariant.
type Violation string

const (
	NoPlanetaryBody      Violation = "no planetary body"
	MultipleTerrestrial  Violation = "more than one terrestrial planet"
	NoHabitablePlanetary Violation = "no habitable planetary body"
)

// CheckInvariants lists every invariant the system breaks.
func CheckInvariants(s *System) []Violation {
	if s == nil {
		return []Violation{NoPlanetaryBody}
	}
	planetary, terrestrial, habitable := 0, 0, 0
	for _, b := range s.Planets {
		if !b.IsPlanetary() {
			continue
		}
		planetary++
		if b.Type == TypeTerrestrial {
			terrestrial++
		}
		if b.Habitable {
			habitable++
		}
	}

	var out []Violation
	if planetary == 0 {
		out = append(out, NoPlanetaryBody)
	}
	if terrestrial > 1 {
		out = append(out, MultipleTerrestrial)
	}
	if planetary > 0 && habitable == 0 {
		out = append(out, NoHabitablePlanetary)
	}
	return out
}

// ReportInvariants logs each violation and returns them. It never fails:
// editors may leave a system invalid between steps.
func ReportInvariants(logger *slog.Logger, label string, id world.HexID, s *System) []Violation {
	if logger == nil {
		logger = slog.Default()
	}
	vs := CheckInvariants(s)
	for _, v := range vs {
		name := ""
		if s != nil {
			name = s.Name
		}
		logger.Warn("system invariant violated",
			"context", label,
			"hex", id,
			"system", name,
			"violation", string(v),
		)
	}
	return vs
}
