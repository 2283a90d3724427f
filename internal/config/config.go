// Package config loads the vending controller settings from the environment,
// optionally seeded from a .env file, and builds the matching zap logger.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/comalice/vendingx/internal/primitives"
)

// Config holds every setting the demo and embedding programs need.
type Config struct {
	MachineID        string `env:"VENDING_MACHINE_ID" envDefault:"vm-1"`
	CatalogFile      string `env:"VENDING_CATALOG_FILE"`
	RestockLevel     int    `env:"VENDING_RESTOCK_LEVEL"` // 0 = catalog value
	DeferredDispense bool   `env:"VENDING_DEFERRED_DISPENSE" envDefault:"false"`
	SnapshotDir      string `env:"VENDING_SNAPSHOT_DIR"`
	SnapshotFormat   string `env:"VENDING_SNAPSHOT_FORMAT" envDefault:"yaml"`
	LogLevel         string `env:"VENDING_LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"VENDING_LOG_FORMAT" envDefault:"console"`
	ScriptFile       string `env:"VENDING_SCRIPT_FILE"`
}

var defaultEnvLoaded sync.Once

// Load fills cfg from environment variables. The default .env file is read
// once per process; a missing file is not an error.
func Load(cfg *Config) error {
	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})
	if cfg == nil {
		return ErrNilPointer
	}
	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return cfg.Validate()
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad(cfg *Config) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.MachineID == "" {
		return fmt.Errorf("%w: VENDING_MACHINE_ID is empty", ErrInvalidConfig)
	}
	if c.RestockLevel < 0 {
		return fmt.Errorf("%w: VENDING_RESTOCK_LEVEL must not be negative, got %d", ErrInvalidConfig, c.RestockLevel)
	}
	switch c.SnapshotFormat {
	case "json", "yaml":
	default:
		return fmt.Errorf("%w: VENDING_SNAPSHOT_FORMAT must be json or yaml, got %q", ErrInvalidConfig, c.SnapshotFormat)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("%w: VENDING_LOG_FORMAT must be json or console, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Catalog returns the catalog from CatalogFile, or the default assortment.
// The machine ID always comes from the config. A set RestockLevel overrides
// the catalog's own; otherwise the catalog value (or its default) applies.
func (c *Config) Catalog() (primitives.CatalogConfig, error) {
	catalog := primitives.DefaultCatalog(c.MachineID)
	if c.CatalogFile != "" {
		var err error
		catalog, err = primitives.LoadCatalogFile(c.CatalogFile)
		if err != nil {
			return primitives.CatalogConfig{}, err
		}
		catalog.ID = c.MachineID
	}
	if c.RestockLevel > 0 {
		catalog.RestockLevel = c.RestockLevel
	}
	return catalog, nil
}
