package tables

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	tbl, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}

	if _, name := tbl.Profile("no-such-profile"); name != FallbackProfile {
		t.Errorf("profile fallback = %q, want %q", name, FallbackProfile)
	}
	if d, name := tbl.DensityPreset("bogus"); name != FallbackDensity || d.Ratio != 0.20 {
		t.Errorf("density fallback = %q (%v), want standard (0.20)", name, d.Ratio)
	}
	if s, _ := tbl.SizePreset("standard"); s.Width != 8 || s.Height != 10 {
		t.Errorf("standard size = %dx%d, want 8x10", s.Width, s.Height)
	}
}

func TestIncompatibleIsSymmetric(t *testing.T) {
	tbl, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}
	for _, pair := range tbl.IncompatibleTags {
		if !tbl.Incompatible(pair[0], pair[1]) || !tbl.Incompatible(pair[1], pair[0]) {
			t.Errorf("pair %v not symmetric", pair)
		}
	}
	if tbl.Incompatible("Trade Hub", "Industrial") {
		t.Error("Trade Hub and Industrial should be compatible")
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	body := "density_presets:\n  packed: { ratio: 0.5 }\njump_gates:\n  max_per_sector: 3\n  min_hex_separation: 2\n  min_sector_separation: 2\n  edge_window: 3\n  bypass_chance: 0.02\n  edge_weights: [1.0, 0.5]\n  suppression: [1.0]\n  max_poi_ratio: 0.1\n  nebula_blend: 0.2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d, name := tbl.DensityPreset("packed"); name != "packed" || d.Ratio != 0.5 {
		t.Errorf("packed preset = %q (%v)", name, d.Ratio)
	}
	if _, name := tbl.DensityPreset("standard"); name != "standard" {
		t.Error("override dropped the embedded standard preset")
	}
	if tbl.JumpGates.MaxPerSector != 3 {
		t.Errorf("MaxPerSector = %d, want 3", tbl.JumpGates.MaxPerSector)
	}
}

func TestLoadTOMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.toml")
	body := "[size_presets.tiny]\nwidth = 4\nheight = 4\n\n[context]\nboundary_continuity = 0.5\ncore_bias_strength = 0.4\ndominant_tag_count = 2\ntag_signal_boost = 0.1\ncache_limit = 8\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s, name := tbl.SizePreset("tiny"); name != "tiny" || s.Width != 4 {
		t.Errorf("tiny preset = %q %+v", name, s)
	}
	if tbl.Context.CacheLimit != 8 {
		t.Errorf("CacheLimit = %d, want 8", tbl.Context.CacheLimit)
	}
}

func TestLoadRejectsMalformedTable(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTable string
		wantField string
	}{
		{
			name:      "bad density ratio",
			body:      "density_presets:\n  standard: { ratio: 1.5 }\n",
			wantTable: "density_presets",
			wantField: "standard.ratio",
		},
		{
			name:      "empty prefixes",
			body:      "names:\n  prefixes: []\n  suffixes: [Reach]\n  habitable_suffixes: [Haven]\n  designations: [Alpha]\n",
			wantTable: "names",
			wantField: "prefixes",
		},
		{
			name:      "gate without state",
			body:      "poi_templates:\n  - { kind: Gate, category: jump_gate, weight: 1 }\n  - { kind: Wreck, category: derelict, weight: 1 }\n",
			wantTable: "poi_templates",
			wantField: "Gate.gate_state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("error %v is not a FieldError", err)
			}
			if fe.Table != tt.wantTable || fe.Field != tt.wantField {
				t.Errorf("FieldError = %s.%s, want %s.%s", fe.Table, fe.Field, tt.wantTable, tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not name the field", err)
			}
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.ini")
	if err := os.WriteFile(path, []byte("x=1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for .ini file")
	}
}
