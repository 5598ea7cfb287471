package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talgya/sector-forge/internal/config"
	"github.com/talgya/sector-forge/internal/engine"
	"github.com/talgya/sector-forge/internal/persistence"
	"github.com/talgya/sector-forge/internal/tables"
	"github.com/talgya/sector-forge/internal/world"
)

var rootCmd = &cobra.Command{
	Use:   "sectorgen",
	Short: "Deterministic sector generator",
	Long: "sectorgen builds hex sectors of star systems, deep-space points of interest, " +
		"jump gates and faction territory. The same seed always yields the same sector.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("sectorgen failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .sectorgen.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("db", "", "sector archive path")
	pf.String("tables", "", "tables override file (.yaml or .toml)")
	pf.String("stage", "", "cross-sector context stage: baseline, edges or full")
	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("db_path", pf.Lookup("db"))
	_ = viper.BindPFlag("tables_path", pf.Lookup("tables"))
	_ = viper.BindPFlag("stage", pf.Lookup("stage"))
}

func initConfig() {
	// A missing .env is normal; the environment is used as is.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env")
	}

	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".sectorgen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("SECTORGEN")
	viper.AutomaticEnv()

	// No config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// setup loads settings and installs the process logger.
func setup() (config.Settings, error) {
	s, err := config.LoadSettings()
	if err != nil {
		return config.Settings{}, err
	}
	logger, err := newLogger(s, os.Stderr)
	if err != nil {
		return config.Settings{}, err
	}
	slog.SetDefault(logger)
	if f := viper.ConfigFileUsed(); f != "" {
		slog.Debug("config file", "path", f)
	}
	return s, nil
}

// newLogger picks a text handler on terminals and JSON otherwise, unless log_format says.
func newLogger(s config.Settings, out *os.File) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return nil, fmt.Errorf("log_level %q: %w", s.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	format := s.LogFormat
	if format == "auto" {
		format = "json"
		if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
			format = "text"
		}
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	}
	return slog.New(slog.NewTextHandler(out, opts)), nil
}

// app is what the archive-backed commands share.
type app struct {
	settings config.Settings
	tables   *tables.Tables
	session  *engine.Session
	db       *persistence.DB
}

func openApp() (*app, error) {
	s, err := setup()
	if err != nil {
		return nil, err
	}
	t, err := tables.Load(s.TablesPath)
	if err != nil {
		return nil, err
	}

	db, err := persistence.Open(s.DatabasePath)
	if err != nil {
		return nil, err
	}
	slog.Debug("archive opened", "path", s.DatabasePath)

	a := &app{settings: s, db: db}
	a.useTables(t)
	return a, nil
}

// useTables swaps in new tables with a fresh session; cached context depends on them.
func (a *app) useTables(t *tables.Tables) {
	a.tables = t
	a.session = engine.NewSession(t, world.ParseStage(a.settings.Stage))
}

func (a *app) Close() error {
	return a.db.Close()
}
