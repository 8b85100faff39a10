package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Photometry modes and magnitude systems.
const (
	ModeFlux = "flux"
	ModeMag  = "mag"

	SystemAB   = "ab"
	SystemVega = "vega"
)

// Config holds all application configuration. Validation happens once at
// load time; the fitting core never sees an invalid config.
type Config struct {
	Catalog struct {
		Dir        string   `yaml:"dir"`
		Extensions []string `yaml:"extensions"`
		DistColumn string   `yaml:"dist_column"`
	} `yaml:"catalog"`
	Photometry struct {
		Mode            string  `yaml:"mode"`   // "flux" or "mag"
		System          string  `yaml:"system"` // "ab" or "vega", mag mode only
		Zeropoint       float64 `yaml:"zeropoint"`
		DefaultMagError float64 `yaml:"default_mag_error"`
	} `yaml:"photometry"`
	Models  string `yaml:"models"` // filter-pair / red-sequence model file
	Fitting struct {
		InitialRadius      float64 `yaml:"initial_radius_arcmin"`
		FinalRadius        float64 `yaml:"final_radius_arcmin"`
		BrightOffset       float64 `yaml:"bright_offset"`
		InitialFaintOffset float64 `yaml:"initial_faint_offset"`
		FinalFaintOffset   float64 `yaml:"final_faint_offset"`
		ClipSigma          float64 `yaml:"clip_sigma"`
		ScatterFloor       float64 `yaml:"scatter_floor"`
		MaxIterations      int     `yaml:"max_iterations"`
		NarrowSteps        int     `yaml:"narrow_steps"`
		MinMembers         int     `yaml:"min_members"`
		FreeSlope          bool    `yaml:"free_slope"`
	} `yaml:"fitting"`
	Flags struct {
		MaxScatter float64 `yaml:"max_scatter"`
		WeakRatio  float64 `yaml:"weak_ratio"`
	} `yaml:"flags"`
	Locator struct {
		MagLimit      float64 `yaml:"mag_limit"`
		InitialRadius float64 `yaml:"initial_radius_arcmin"`
		ShrinkFactor  float64 `yaml:"shrink_factor"`
		Tolerance     float64 `yaml:"tolerance_arcsec"`
		MaxIterations int     `yaml:"max_iterations"`
		MinSources    int     `yaml:"min_sources"`
	} `yaml:"locator"`
	Interactive bool `yaml:"interactive"`
	Database    struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	RescanCron string `yaml:"rescan_cron"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("RSZ_CATALOG_DIR"); v != "" {
		cfg.Catalog.Dir = v
	}
	if v := os.Getenv("RSZ_MODELS"); v != "" {
		cfg.Models = v
	}
	if v := os.Getenv("RSZ_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("RSZ_RESCAN_CRON"); v != "" {
		cfg.RescanCron = v
	}
	if v := os.Getenv("RSZ_INTERACTIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Interactive = b
		}
	}

	// Defaults
	if len(cfg.Catalog.Extensions) == 0 {
		cfg.Catalog.Extensions = []string{".cat", ".txt"}
	}
	if cfg.Catalog.DistColumn == "" {
		cfg.Catalog.DistColumn = "dist"
	}
	if cfg.Photometry.Mode == "" {
		cfg.Photometry.Mode = ModeMag
	}
	if cfg.Photometry.System == "" {
		cfg.Photometry.System = SystemAB
	}
	if cfg.Photometry.DefaultMagError == 0 {
		cfg.Photometry.DefaultMagError = 0.1
	}
	if cfg.Fitting.InitialRadius == 0 {
		cfg.Fitting.InitialRadius = 10
	}
	if cfg.Fitting.FinalRadius == 0 {
		cfg.Fitting.FinalRadius = 4
	}
	if cfg.Fitting.BrightOffset == 0 {
		cfg.Fitting.BrightOffset = 3
	}
	if cfg.Fitting.InitialFaintOffset == 0 {
		cfg.Fitting.InitialFaintOffset = 2
	}
	if cfg.Fitting.FinalFaintOffset == 0 {
		cfg.Fitting.FinalFaintOffset = 1.2
	}
	if cfg.Fitting.ClipSigma == 0 {
		cfg.Fitting.ClipSigma = 2.5
	}
	if cfg.Fitting.ScatterFloor == 0 {
		cfg.Fitting.ScatterFloor = 0.05
	}
	if cfg.Fitting.MaxIterations == 0 {
		cfg.Fitting.MaxIterations = 20
	}
	if cfg.Fitting.NarrowSteps == 0 {
		cfg.Fitting.NarrowSteps = 4
	}
	if cfg.Fitting.MinMembers == 0 {
		cfg.Fitting.MinMembers = 3
	}
	if cfg.Flags.MaxScatter == 0 {
		cfg.Flags.MaxScatter = 0.15
	}
	if cfg.Flags.WeakRatio == 0 {
		cfg.Flags.WeakRatio = 0.6
	}
	if cfg.Locator.MagLimit == 0 {
		cfg.Locator.MagLimit = 22
	}
	if cfg.Locator.InitialRadius == 0 {
		cfg.Locator.InitialRadius = 8
	}
	if cfg.Locator.ShrinkFactor == 0 {
		cfg.Locator.ShrinkFactor = 0.7
	}
	if cfg.Locator.Tolerance == 0 {
		cfg.Locator.Tolerance = 1 // arcsec
	}
	if cfg.Locator.MaxIterations == 0 {
		cfg.Locator.MaxIterations = 10
	}
	if cfg.Locator.MinSources == 0 {
		cfg.Locator.MinSources = 2
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Catalog.Dir == "" {
		return fmt.Errorf("catalog.dir is required")
	}
	if c.Models == "" {
		return fmt.Errorf("models is required")
	}
	if c.Photometry.Mode != ModeFlux && c.Photometry.Mode != ModeMag {
		return fmt.Errorf("photometry.mode must be %q or %q", ModeFlux, ModeMag)
	}
	if c.Photometry.System != SystemAB && c.Photometry.System != SystemVega {
		return fmt.Errorf("photometry.system must be %q or %q", SystemAB, SystemVega)
	}
	if c.Photometry.Mode == ModeFlux && c.Photometry.Zeropoint == 0 {
		return fmt.Errorf("photometry.zeropoint is required in flux mode")
	}
	if c.Fitting.ClipSigma < 1 || c.Fitting.ClipSigma > 5 {
		return fmt.Errorf("fitting.clip_sigma must be between 1 and 5")
	}
	if c.Fitting.FinalRadius > c.Fitting.InitialRadius {
		return fmt.Errorf("fitting.final_radius_arcmin must not exceed initial_radius_arcmin")
	}
	if c.Locator.ShrinkFactor <= 0 || c.Locator.ShrinkFactor >= 1 {
		return fmt.Errorf("locator.shrink_factor must be in (0, 1)")
	}
	return nil
}
