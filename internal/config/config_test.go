package config

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/talgya/sector-forge/internal/entropy"
	"github.com/talgya/sector-forge/internal/tables"
)

func loadTables(t *testing.T) *tables.Tables {
	t.Helper()
	tbl, err := tables.Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}
	return tbl
}

func TestNormalizePresets(t *testing.T) {
	tbl := loadTables(t)

	tests := []struct {
		name         string
		in           Loose
		wantW, wantH int
		wantCount    int
		wantProfile  string
		wantDist     string
	}{
		{
			name:  "standard",
			in:    Loose{SizePreset: "standard", DensityPreset: "standard", GenerationProfile: "high_adventure", StarDistribution: "standard"},
			wantW: 8, wantH: 10, wantCount: 16, wantProfile: "high_adventure", wantDist: "standard",
		},
		{
			name:  "unknown names fall back",
			in:    Loose{SizePreset: "huge", DensityPreset: "teeming", GenerationProfile: "grimdark", StarDistribution: "spiral"},
			wantW: 8, wantH: 10, wantCount: 16, wantProfile: "high_adventure", wantDist: "standard",
		},
		{
			name:  "empty config",
			in:    Loose{},
			wantW: 8, wantH: 10, wantCount: 16, wantProfile: "high_adventure", wantDist: "standard",
		},
		{
			name:  "profile multiplier",
			in:    Loose{SizePreset: "standard", DensityPreset: "standard", GenerationProfile: "frontier", StarDistribution: "clusters"},
			wantW: 8, wantH: 10, wantCount: 11, wantProfile: "frontier", wantDist: "clusters",
		},
		{
			name:  "manual size clamped",
			in:    Loose{SizeMode: "manual", Width: 100, Height: 1, DensityPreset: "dense"},
			wantW: 32, wantH: 4, wantCount: 36, wantProfile: "high_adventure", wantDist: "standard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := entropy.NewStream("cfg")
			got := Normalize(tt.in, tbl, src)
			if got.Width != tt.wantW || got.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", got.Width, got.Height, tt.wantW, tt.wantH)
			}
			if got.SystemCount != tt.wantCount {
				t.Errorf("SystemCount = %d, want %d", got.SystemCount, tt.wantCount)
			}
			if got.GenerationProfile != tt.wantProfile {
				t.Errorf("profile = %q, want %q", got.GenerationProfile, tt.wantProfile)
			}
			if got.StarDistribution != tt.wantDist {
				t.Errorf("distribution = %q, want %q", got.StarDistribution, tt.wantDist)
			}
			if src.Draws() != 0 {
				t.Errorf("preset density consumed %d draws", src.Draws())
			}
		})
	}
}

func TestNormalizeManualDensity(t *testing.T) {
	tbl := loadTables(t)

	in := Loose{SizeMode: "manual", Width: 6, Height: 6, DensityMode: "manual", ManualMin: 30, ManualMax: 10}
	got := Normalize(in, tbl, entropy.NewStream("manual"))
	if got.ManualMin != 10 || got.ManualMax != 30 {
		t.Errorf("inverted bounds not swapped: [%d, %d]", got.ManualMin, got.ManualMax)
	}
	if got.SystemCount < 10 || got.SystemCount > 30 {
		t.Errorf("SystemCount = %d outside [10, 30]", got.SystemCount)
	}
	if again := Normalize(in, tbl, entropy.NewStream("manual")); again != got {
		t.Errorf("manual draw not deterministic: %+v vs %+v", again, got)
	}

	over := Loose{SizeMode: "manual", Width: 4, Height: 4, DensityMode: "manual", ManualMin: 50, ManualMax: 90}
	if got := Normalize(over, tbl, entropy.NewStream("over")); got.SystemCount != 16 {
		t.Errorf("over-full manual count = %d, want 16", got.SystemCount)
	}
}

func TestNormalizeIsStable(t *testing.T) {
	tbl := loadTables(t)
	first := Normalize(Loose{SizePreset: "expansive", DensityPreset: "sparse", StarDistribution: "clusters"}, tbl, entropy.NewStream("x"))
	second := Normalize(first.Loosen(), tbl, entropy.NewStream("x"))
	if first != second {
		t.Errorf("re-normalising changed the config:\n%+v\n%+v", first, second)
	}
}

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoadSettingsDefaults(t *testing.T) {
	resetViper()

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"LogLevel", s.LogLevel, "info"},
		{"LogFormat", s.LogFormat, "auto"},
		{"DatabasePath", s.DatabasePath, "sectors.db"},
		{"Stage", s.Stage, "full"},
		{"Distribution", s.Distribution, "clusters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	resetViper()
	viper.SetEnvPrefix("SECTORGEN")
	viper.AutomaticEnv()

	t.Setenv("SECTORGEN_DB_PATH", "/tmp/archive.db")
	t.Setenv("SECTORGEN_STAGE", "edges")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error: %v", err)
	}
	if s.DatabasePath != "/tmp/archive.db" {
		t.Errorf("DatabasePath = %q", s.DatabasePath)
	}
	if s.Stage != "edges" {
		t.Errorf("Stage = %q", s.Stage)
	}
}

func TestLoadSettingsRejectsLogFormat(t *testing.T) {
	resetViper()
	viper.Set("log_format", "xml")
	if _, err := LoadSettings(); err == nil {
		t.Error("expected error for log_format xml")
	}
}
