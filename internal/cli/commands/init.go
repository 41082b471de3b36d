package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/dbexport/internal/cli/config"
)

const initHeader = `# dbexport configuration
#
# The connection string is normally taken from DB_URL (also read from .env).
# Uncomment database_url to keep it here instead.
#
# database_url: postgres://user@localhost:5432/app

`

// initFile is the layout of a generated dbexport.yaml.
type initFile struct {
	Schemas       []string `yaml:"schemas"`
	OutputDir     string   `yaml:"output_dir"`
	DefaultSchema string   `yaml:"default_schema"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a dbexport.yaml with default settings",
		Long: `Write a dbexport.yaml holding the default schema allow-list, output
directory and default schema, ready to be edited.`,
		Example: `  # Initialize in current directory
  dbexport init

  # Initialize in another directory
  dbexport init ./warehouse

  # Overwrite an existing config
  dbexport init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			path, err := runInit(dir, force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(dir string, force bool) (string, error) {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	path := filepath.Join(dir, config.DefaultConfigFile)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}

	body, err := yaml.Marshal(initFile{
		Schemas:       config.DefaultSchemas(),
		OutputDir:     config.DefaultOutputDir,
		DefaultSchema: config.DefaultSchema,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(initHeader), body...), 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
