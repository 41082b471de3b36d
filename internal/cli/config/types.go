// Package config provides configuration management for the dbexport CLI.
//
// Values are layered, lowest to highest precedence: built-in defaults,
// dbexport.yaml, DBEXPORT_* environment variables, DB_URL, and command-line
// flags that were explicitly set.
package config

// Config holds all CLI configuration options.
type Config struct {
	DatabaseURL   string   `koanf:"database_url"`
	CatalogType   string   `koanf:"catalog_type"` // overrides the type inferred from the URL scheme
	Schemas       []string `koanf:"schemas"`
	OutputDir     string   `koanf:"output_dir"`
	DefaultSchema string   `koanf:"default_schema"`
	Verbose       bool     `koanf:"verbose"`
	OutputFormat  string   `koanf:"output"`

	// ProjectRoot is the directory holding dbexport.yaml, or the working
	// directory when there is none.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutputDir     = "db/app"
	DefaultSchema        = "public"
	DefaultOutput        = "text"
	DefaultConfigFile    = "dbexport.yaml"
	EnvPrefix            = "DBEXPORT_"
	DatabaseURLEnv       = "DB_URL"
	dotEnvFile           = ".env"
	maxUpwardSearchLevel = 10
)

// DefaultSchemas returns the schema allow-list used when none is configured.
func DefaultSchemas() []string {
	return []string{"static", "security", "public"}
}

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)
