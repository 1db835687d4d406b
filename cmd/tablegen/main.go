package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tordrt/tablegen"
	"github.com/tordrt/tablegen/internal/config"
	"github.com/tordrt/tablegen/internal/formatter"
	"github.com/tordrt/tablegen/internal/schema"
)

// logLevelEnv selects the log level (debug, info, warn, error)
const logLevelEnv = "TABLEGEN_LOG"

var version = "dev"

var (
	verbose bool

	// inline and inspect
	dotenvPath        string
	databaseURL       string
	schemaName        string
	tables            string
	excludeTables     []string
	outputPath        string
	templateDirectory string
	templateSpecs     []string
	renderFolder      bool
	language          string
	workers           int
	failFast          bool

	// inspect
	format string
)

var (
	successFmt = color.New(color.FgGreen).SprintfFunc()
	warnFmt    = color.New(color.FgYellow).SprintfFunc()
	errorFmt   = color.New(color.FgRed, color.Bold).SprintfFunc()
)

var rootCmd = &cobra.Command{
	Use:   "tablegen",
	Short: "Generate per-table code from database schema metadata",
	Long: `tablegen reads table, column and key metadata from MySQL (or PostgreSQL and SQLite),
normalizes every table into a model with ready to use SQL statements and renders
templates once per table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLogLevel(os.Getenv(logLevelEnv), verbose)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		return nil
	},
}

var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Generate with all settings given as flags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd.Context(), cmd.ErrOrStderr(), inlineConfig())
	},
}

var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Generate with settings read from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		return runGenerate(cmd.Context(), cmd.ErrOrStderr(), cfg)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the normalized table models without rendering templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), inlineConfig())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tablegen %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging (overrides "+logLevelEnv+")")

	for _, cmd := range []*cobra.Command{inlineCmd, inspectCmd} {
		cmd.Flags().StringVar(&dotenvPath, "dotenv", "", "Dotenv file to load before resolving settings (default: ./.env when present)")
		cmd.Flags().StringVar(&databaseURL, "database-url", "", "Database connection URL (default: $"+config.DatabaseURLEnv+")")
		cmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Schema name (default: database name for MySQL, public for PostgreSQL)")
		cmd.Flags().StringVar(&tables, "tables", "", "Specific tables (comma-separated, optional)")
		cmd.Flags().StringSliceVar(&excludeTables, "exclude-tables", config.DefaultExcludeTables, "Tables to skip")
		cmd.Flags().IntVar(&workers, "workers", 0, "Number of tables processed concurrently (default: GOMAXPROCS)")
		cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first table that cannot be processed")
	}

	inlineCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output directory")
	inlineCmd.Flags().StringVar(&templateDirectory, "template-directory", config.DefaultTemplateDirectory, "Directory searched for templates")
	inlineCmd.Flags().StringArrayVarP(&templateSpecs, "templates", "t", nil, "Template to render per table as name[:suffix] (repeatable)")
	inlineCmd.Flags().BoolVarP(&renderFolder, "render-folder", "r", true, "Write each template's output into a folder named after the template")
	inlineCmd.Flags().StringVarP(&language, "language", "l", config.DefaultLanguage, "Target language of targetType and defaultValue (rust or go)")
	_ = inlineCmd.MarkFlagRequired("output")

	inspectCmd.Flags().StringVarP(&format, "format", "f", formatter.FormatText, "Output format: text, markdown or yaml")
	inspectCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")

	rootCmd.AddCommand(inlineCmd, fileCmd, inspectCmd, versionCmd)
}

// inlineConfig collects the flag values into a configuration
func inlineConfig() *config.Config {
	cfg := config.Default()
	cfg.Dotenv = dotenvPath
	cfg.DatabaseURL = databaseURL
	cfg.Schema = schemaName
	cfg.Tables = parseTableList(tables)
	cfg.ExcludeTables = excludeTables
	cfg.Output = outputPath
	cfg.TemplateDirectory = templateDirectory
	cfg.Templates = templateSpecs
	cfg.RenderFolder = renderFolder
	cfg.Language = language
	cfg.Workers = workers
	cfg.FailFast = failFast
	return cfg
}

func runGenerate(ctx context.Context, stderr io.Writer, cfg *config.Config) error {
	if err := cfg.Resolve(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	loaded, err := tablegen.LoadTables(ctx, cfg.DatabaseURL, options(cfg))
	if err != nil {
		reportTableErrors(stderr, err)
		return fmt.Errorf("failed to load tables: %w", err)
	}

	written, err := tablegen.Render(ctx, loaded, &tablegen.RenderOptions{
		OutputDir:         cfg.Output,
		TemplateDirectory: cfg.TemplateDirectory,
		Templates:         cfg.Templates,
		RenderFolder:      cfg.RenderFolder,
		Language:          cfg.Language,
		Workers:           cfg.Workers,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(stderr, successFmt("Generated %d files for %d tables in %s", written, len(loaded), cfg.Output))
	return nil
}

func runInspect(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config) error {
	if err := cfg.Resolve(); err != nil {
		return err
	}
	if err := cfg.ValidateSource(); err != nil {
		return err
	}

	loaded, loadErr := tablegen.LoadTables(ctx, cfg.DatabaseURL, options(cfg))
	if loadErr != nil && len(loaded) == 0 {
		reportTableErrors(stderr, loadErr)
		return fmt.Errorf("failed to load tables: %w", loadErr)
	}

	writer := stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	if err := tablegen.FormatTables(writer, format, loaded); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if loadErr != nil {
		reportTableErrors(stderr, loadErr)
		return fmt.Errorf("some tables were skipped: %w", loadErr)
	}
	return nil
}

func options(cfg *config.Config) *tablegen.Options {
	return &tablegen.Options{
		Tables:        cfg.Tables,
		ExcludeTables: cfg.ExcludeTables,
		SchemaName:    cfg.Schema,
		Workers:       cfg.Workers,
		FailFast:      cfg.FailFast,
	}
}

// reportTableErrors prints one line per table that could not be built
func reportTableErrors(w io.Writer, err error) {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return
	}
	for _, e := range joined.Unwrap() {
		if tableErr, ok := e.(*schema.TableError); ok {
			_, _ = fmt.Fprintln(w, warnFmt("skipped %s: %v", tableErr.Table, tableErr.Err))
		}
	}
}

// parseLogLevel reads a level name such as "debug" or "warn"; verbose forces debug
func parseLogLevel(s string, verbose bool) (slog.Level, error) {
	if verbose {
		return slog.LevelDebug, nil
	}
	if s == "" {
		return slog.LevelError, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", logLevelEnv, s, err)
	}
	return level, nil
}

func parseTableList(s string) []string {
	if s == "" {
		return nil
	}

	var list []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			list = append(list, t)
		}
	}
	return list
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, errorFmt("Error: %v", err))
		os.Exit(1)
	}
}
