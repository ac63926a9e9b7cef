package tabledesc

import (
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config represents the tabledesc configuration, usually loaded from
// tabledesc.yaml in the project root.
type Config struct {
	Databases map[string]Database `yaml:"databases"`
	Describe  DescribeConfig      `yaml:"describe"`
}

// Database represents a named database connection configuration
type Database struct {
	Driver     string `yaml:"driver"`
	Connection string `yaml:"connection"`
	Schema     string `yaml:"schema"`
	Database   string `yaml:"database"`
}

// DescribeConfig represents default settings for describe operations
type DescribeConfig struct {
	DefaultFormat   string `yaml:"default_format"`
	DefaultDatabase string `yaml:"default_database"`
	SnapshotPath    string `yaml:"snapshot_path"`
	ConstraintsPath string `yaml:"constraints_path"`
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Return default configuration if the file doesn't exist
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

// DatabaseFor returns the named database configuration. An empty name
// resolves through describe.default_database.
func (c *Config) DatabaseFor(name string) (Database, error) {
	if name == "" {
		name = c.Describe.DefaultDatabase
	}

	if name == "" {
		return Database{}, fmt.Errorf("%w: no database name given and describe.default_database is unset", ErrDatabaseNotConfigured)
	}

	db, ok := c.Databases[name]
	if !ok {
		return Database{}, fmt.Errorf("%w: %s", ErrDatabaseNotConfigured, name)
	}

	return db, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	for name, db := range config.Databases {
		if db.Driver == "" {
			continue
		}

		if _, err := ParseDialect(db.Driver); err != nil {
			return fmt.Errorf("%w: databases.%s.driver %q is not a supported dialect", ErrConfigValidation, name, db.Driver)
		}
	}

	if config.Describe.DefaultFormat != "" {
		validFormats := map[string]bool{
			"table": true,
			"json":  true,
			"yaml":  true,
		}
		if !validFormats[config.Describe.DefaultFormat] {
			return fmt.Errorf("%w: describe.default_format '%s' is invalid: must be one of table, json, yaml", ErrConfigValidation, config.Describe.DefaultFormat)
		}
	}

	if config.Describe.DefaultDatabase != "" {
		if _, ok := config.Databases[config.Describe.DefaultDatabase]; !ok {
			return fmt.Errorf("%w: describe.default_database '%s' is not defined under databases", ErrConfigValidation, config.Describe.DefaultDatabase)
		}
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Databases: make(map[string]Database),
		Describe: DescribeConfig{
			DefaultFormat: "table",
		},
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	if config.Databases == nil {
		config.Databases = make(map[string]Database)
	}

	if config.Describe.DefaultFormat == "" {
		config.Describe.DefaultFormat = "table"
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	// Pattern for ${VAR} format
	re1 := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re1.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		return os.Getenv(varName)
	})

	// Pattern for $VAR format (word boundaries)
	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		return os.Getenv(varName)
	})

	return s
}

// expandConfigEnvVars expands environment variables in config values that
// commonly carry secrets or machine specific paths
func expandConfigEnvVars(config *Config) {
	for name, db := range config.Databases {
		db.Connection = expandEnvVars(db.Connection)
		db.Driver = expandEnvVars(db.Driver)
		db.Schema = expandEnvVars(db.Schema)
		db.Database = expandEnvVars(db.Database)
		config.Databases[name] = db
	}

	config.Describe.SnapshotPath = expandEnvVars(config.Describe.SnapshotPath)
	config.Describe.ConstraintsPath = expandEnvVars(config.Describe.ConstraintsPath)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
