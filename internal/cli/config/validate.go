package config

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/dbexport/pkg/catalog"
)

// ErrMissingDatabaseURL is returned when no connection string is configured.
var ErrMissingDatabaseURL = errors.New("no database connection string: set DB_URL or database_url in dbexport.yaml")

// Validate checks if the configuration is valid.
// The database URL is checked separately by RequireDatabaseURL so that
// commands which never connect work without one.
func (c *Config) Validate() error {
	if len(c.Schemas) == 0 {
		return fmt.Errorf("schemas must list at least one schema")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.DefaultSchema == "" {
		return fmt.Errorf("default_schema is required")
	}
	switch c.OutputFormat {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", c.OutputFormat, OutputText, OutputJSON)
	}
	return nil
}

// RequireDatabaseURL returns ErrMissingDatabaseURL when no URL is set.
func (c *Config) RequireDatabaseURL() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

// CatalogConfig derives the provider configuration from the database URL.
func (c *Config) CatalogConfig() (catalog.Config, error) {
	if err := c.RequireDatabaseURL(); err != nil {
		return catalog.Config{}, err
	}
	cc, err := catalog.ParseURL(c.DatabaseURL)
	if c.CatalogType == "" {
		return cc, err
	}
	if err != nil {
		// an explicit type accepts a bare DSN such as a file path
		return catalog.Config{Type: c.CatalogType, DSN: c.DatabaseURL}, nil
	}
	cc.Type = c.CatalogType
	return cc, nil
}
