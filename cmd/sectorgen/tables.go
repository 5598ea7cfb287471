package main

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/talgya/sector-forge/internal/tables"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Validate and print the effective data tables",
	Long: "Load the embedded tables, apply the override file if one is configured, " +
		"validate the result and print it. Use the output as a starting point for overrides.",
	Args: cobra.NoArgs,
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().String("format", "yaml", "output format: yaml or toml")
	tablesCmd.Flags().Bool("check", false, "validate only")
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, _ []string) error {
	s, err := setup()
	if err != nil {
		return err
	}
	t, err := tables.Load(s.TablesPath)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if check, _ := cmd.Flags().GetBool("check"); check {
		fmt.Fprintf(w, "tables ok: %d profiles, %d star classes, %d planet types, %d tags, %d POI templates, %d archetypes\n",
			len(t.Profiles), len(t.StarClasses), len(t.PlanetTypes), len(t.PlanetTags), len(t.PoiTemplates), len(t.Archetypes))
		return nil
	}

	switch format, _ := cmd.Flags().GetString("format"); format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(t)
	default:
		return fmt.Errorf("--format %q: want yaml or toml", format)
	}
}
