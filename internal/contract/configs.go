package contract

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/huangsam/tsfeat/schema"
)

// Default values for configuration.
const (
	DefaultIDColumn   = "id"
	DefaultSortColumn = "time"
	DefaultFill       = "nan"
	DefaultPrecision  = 4
	MaxPrecision      = 6
	DefaultLogFormat  = "console"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// validLogFormats lists the accepted --log-format values.
var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

// Config holds the runtime configuration for an extraction.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath   string
	InputFormat schema.InputFormat
	IDColumn    string
	SortColumn  string
	Workers     int
	Catalog     schema.CatalogName
	FillValue   float64
	FillLabel   string // Normalized form of the --fill flag, used in cache keys and run params
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	ResultLimit int // 0 keeps every row
	Width       int // Terminal width override (0 = auto-detect)
	LogFormat   string
	MetricsFile string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in console status lines
	UseColors bool // Enable colored headers in table output
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile    string `mapstructure:"output-file"`
	Output        string `mapstructure:"output"`
	Precision     int    `mapstructure:"precision"`
	Workers       int    `mapstructure:"workers"`
	Catalog       string `mapstructure:"catalog"`
	Width         int    `mapstructure:"width"`
	LogFormat     string `mapstructure:"log-format"`
	MetricsFile   string `mapstructure:"metrics-file"`
	CacheBackend  string `mapstructure:"cache-backend"`
	CacheConnect  string `mapstructure:"cache-db-connect"`
	RunsBackend   string `mapstructure:"runs-backend"`
	RunsDBConnect string `mapstructure:"runs-db-connect"`
	Emoji         string `mapstructure:"emoji"`
	Color         string `mapstructure:"color"`

	// --- Fields from extractCmd.Flags() ---
	ID     string `mapstructure:"id"`
	Sort   string `mapstructure:"sort"`
	Format string `mapstructure:"format"`
	Fill   string `mapstructure:"fill"`
	Limit  int    `mapstructure:"limit"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processExtraction(cfg, input); err != nil {
		return err
	}
	if err := processOutput(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// validateSimpleInputs transfers and validates fields shared by every command.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.InputPathStr)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsFile = strings.TrimSpace(input.MetricsFile)

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if _, ok := validLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be console, json", input.LogFormat)
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	return nil
}

// processExtraction validates the column, catalog, fill and input format settings.
func processExtraction(cfg *Config, input *ConfigRawInput) error {
	if err := applyColumnsAndCatalog(cfg, input.ID, input.Sort, input.Catalog); err != nil {
		return err
	}

	fill, label, err := ParseFillValue(input.Fill)
	if err != nil {
		return fmt.Errorf("invalid --fill value: %w", err)
	}
	cfg.FillValue = fill
	cfg.FillLabel = label

	cfg.InputFormat = schema.InputFormat(strings.ToLower(input.Format))
	if cfg.InputFormat == "" {
		cfg.InputFormat = schema.AutoInput
	}
	if _, ok := schema.ValidInputFormats[cfg.InputFormat]; !ok {
		return fmt.Errorf("invalid input format '%s'. must be auto, csv, parquet", input.Format)
	}

	if input.Limit < 0 {
		return fmt.Errorf("limit cannot be negative (received %d)", input.Limit)
	}
	cfg.ResultLimit = input.Limit
	return nil
}

// applyColumnsAndCatalog validates and sets the id column, sort column and catalog.
func applyColumnsAndCatalog(cfg *Config, id, sort, catalog string) error {
	cfg.IDColumn = strings.TrimSpace(id)
	cfg.SortColumn = strings.TrimSpace(sort)
	if cfg.IDColumn == "" {
		return fmt.Errorf("id column cannot be empty")
	}
	if cfg.SortColumn == "" {
		return fmt.Errorf("sort column cannot be empty")
	}
	if cfg.IDColumn == cfg.SortColumn {
		return fmt.Errorf("id and sort columns must differ (both are %q)", cfg.IDColumn)
	}

	cfg.Catalog = schema.CatalogName(strings.ToLower(catalog))
	if cfg.Catalog == "" {
		cfg.Catalog = schema.MinimalCatalog
	}
	if _, ok := schema.ValidCatalogs[cfg.Catalog]; !ok {
		return fmt.Errorf("invalid catalog '%s'. must be minimal, extended", catalog)
	}
	return nil
}

// RevalidateExtraction re-applies column and catalog overrides on a cloned config.
// Empty values keep the current setting.
func RevalidateExtraction(cfg *Config, id, sort, catalog string) error {
	if id == "" {
		id = cfg.IDColumn
	}
	if sort == "" {
		sort = cfg.SortColumn
	}
	if catalog == "" {
		catalog = string(cfg.Catalog)
	}
	return applyColumnsAndCatalog(cfg, id, sort, catalog)
}

// processOutput validates the output mode and precision.
func processOutput(cfg *Config, input *ConfigRawInput) error {
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// ParseFillValue parses the --fill flag. It accepts "nan", "zero" or any float literal
// and returns the value along with a normalized label.
func ParseFillValue(s string) (float64, string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "nan":
		return math.NaN(), "nan", nil
	case "zero":
		return 0, "0", nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%q is not nan, zero or a number", s)
	}
	if math.IsNaN(v) {
		return v, "nan", nil
	}
	return v, strconv.FormatFloat(v, 'g', -1, 64), nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates result cache and run tracking backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Runs Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("runs-db-connect: %w", err)
	}

	// SQLite stores must not share a file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runsDBPath := cfg.RunsDBConnect
		if runsDBPath == "" {
			runsDBPath = GetRunsDBFilePath()
		}
		if cacheDBPath == runsDBPath {
			return fmt.Errorf("cache and run tracking must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profilePrefix = strings.TrimSpace(profilePrefix)
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
