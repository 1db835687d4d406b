// Package config loads generator settings from command line flags or from a
// YAML/JSON file, and resolves them against the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/tordrt/tablegen/internal/formatter"
	"github.com/tordrt/tablegen/internal/typemap"
)

// ErrConfigValidation is returned when resolved settings cannot be used
var ErrConfigValidation = errors.New("invalid configuration")

const (
	// DatabaseURLEnv is consulted when no database_url is configured
	DatabaseURLEnv = "DATABASE_URL"

	DefaultTemplateDirectory = "templates"
	DefaultLanguage          = "rust"
	defaultDotenvFile        = ".env"
)

// DefaultExcludeTables holds the tables skipped unless exclude_tables is set
var DefaultExcludeTables = []string{"_sqlx_migrations"}

// Config holds generator settings
type Config struct {
	DatabaseURL       string   `yaml:"database_url"`
	Dotenv            string   `yaml:"dotenv"`
	Output            string   `yaml:"output"`
	TemplateDirectory string   `yaml:"template_directory"`
	Templates         []string `yaml:"templates"`
	RenderFolder      bool     `yaml:"render_folder"`
	Tables            []string `yaml:"tables"`
	ExcludeTables     []string `yaml:"exclude_tables"`
	Language          string   `yaml:"language"`
	Workers           int      `yaml:"workers"`
	FailFast          bool     `yaml:"fail_fast"`
	Schema            string   `yaml:"schema"`
}

// fileConfig distinguishes absent keys from zero values for settings whose
// default is not the zero value
type fileConfig struct {
	DatabaseURL       string    `yaml:"database_url"`
	Dotenv            string    `yaml:"dotenv"`
	Output            string    `yaml:"output"`
	TemplateDirectory string    `yaml:"template_directory"`
	Templates         []string  `yaml:"templates"`
	RenderFolder      *bool     `yaml:"render_folder"`
	Tables            []string  `yaml:"tables"`
	ExcludeTables     *[]string `yaml:"exclude_tables"`
	Language          string    `yaml:"language"`
	Workers           int       `yaml:"workers"`
	FailFast          bool      `yaml:"fail_fast"`
	Schema            string    `yaml:"schema"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		TemplateDirectory: DefaultTemplateDirectory,
		RenderFolder:      true,
		ExcludeTables:     append([]string(nil), DefaultExcludeTables...),
		Language:          DefaultLanguage,
		Workers:           runtime.GOMAXPROCS(0),
	}
}

// Load reads a configuration file. JSON files are accepted as well since
// JSON is a subset of YAML. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes configuration data and applies defaults for absent keys
func Parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.UnmarshalWithOptions(data, &fc, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default()
	cfg.DatabaseURL = fc.DatabaseURL
	cfg.Dotenv = fc.Dotenv
	cfg.Output = fc.Output
	cfg.Templates = fc.Templates
	cfg.Tables = fc.Tables
	cfg.FailFast = fc.FailFast
	cfg.Schema = fc.Schema
	if fc.TemplateDirectory != "" {
		cfg.TemplateDirectory = fc.TemplateDirectory
	}
	if fc.RenderFolder != nil {
		cfg.RenderFolder = *fc.RenderFolder
	}
	if fc.ExcludeTables != nil {
		cfg.ExcludeTables = *fc.ExcludeTables
	}
	if fc.Language != "" {
		cfg.Language = fc.Language
	}
	if fc.Workers != 0 {
		cfg.Workers = fc.Workers
	}

	return cfg, nil
}

// Resolve loads the dotenv file, expands ${VAR} references and fills in the
// database URL and schema name from the environment when they are unset.
func (c *Config) Resolve() error {
	if err := loadDotenv(c.Dotenv); err != nil {
		return err
	}

	c.DatabaseURL = expandEnvVars(c.DatabaseURL)
	c.Output = expandEnvVars(c.Output)
	c.TemplateDirectory = expandEnvVars(c.TemplateDirectory)
	c.Schema = expandEnvVars(c.Schema)

	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv(DatabaseURLEnv)
	}
	if c.Schema == "" && strings.HasPrefix(c.DatabaseURL, "mysql://") {
		c.Schema = SchemaFromURL(c.DatabaseURL)
	}
	if c.TemplateDirectory == "" {
		c.TemplateDirectory = DefaultTemplateDirectory
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}

	return nil
}

// ValidateSource checks the settings needed to read a schema
func (c *Config) ValidateSource() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: database_url is not set and %s is empty", ErrConfigValidation, DatabaseURLEnv)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrConfigValidation)
	}
	return nil
}

// Validate checks the settings needed to read a schema and render templates
func (c *Config) Validate() error {
	if err := c.ValidateSource(); err != nil {
		return err
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output is required", ErrConfigValidation)
	}
	if len(c.Templates) == 0 {
		return fmt.Errorf("%w: at least one template is required", ErrConfigValidation)
	}
	if _, err := c.TemplateSpecs(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	if _, err := typemap.Lookup(c.Language); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return nil
}

// TemplateSpecs parses the configured "name[:suffix]" template entries
func (c *Config) TemplateSpecs() ([]formatter.TemplateSpec, error) {
	specs := make([]formatter.TemplateSpec, 0, len(c.Templates))
	for _, raw := range c.Templates {
		spec, err := formatter.ParseTemplateSpec(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// SchemaFromURL returns the last path segment of a database URL without its
// query string, which names the MySQL schema
func SchemaFromURL(databaseURL string) string {
	if u, err := url.Parse(databaseURL); err == nil && u.Scheme != "" && u.Opaque == "" {
		return u.Path[strings.LastIndexByte(u.Path, '/')+1:]
	}

	s := databaseURL
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	return s[strings.LastIndexByte(s, '/')+1:]
}

// loadDotenv loads an explicit dotenv file, or ./.env when present.
// Variables already set in the environment win.
func loadDotenv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load dotenv file %s: %w", path, err)
		}
		return nil
	}

	if _, err := os.Stat(defaultDotenvFile); err == nil {
		if err := godotenv.Load(defaultDotenvFile); err != nil {
			return fmt.Errorf("failed to load %s file: %w", defaultDotenvFile, err)
		}
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} references
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}
