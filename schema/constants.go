package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// InputFormat represents the format of the input table.
	InputFormat string

	// CatalogName names a predefined feature catalog.
	CatalogName string

	// GroupStatus represents the outcome of processing one group.
	GroupStatus string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string
)

// QualifiedSeparator joins a source column and a feature name.
const QualifiedSeparator = "__"

// QualifiedName returns the output column name for a feature of a source column.
func QualifiedName(column, feature string) string {
	return column + QualifiedSeparator + feature
}

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All input formats supported.
const (
	AutoInput    InputFormat = "auto" // default, decided by file extension
	CSVInput     InputFormat = "csv"
	ParquetInput InputFormat = "parquet"
)

// All predefined catalogs.
const (
	MinimalCatalog  CatalogName = "minimal" // default
	ExtendedCatalog CatalogName = "extended"
)

// All group outcomes.
const (
	GroupOK     GroupStatus = "ok"
	GroupFailed GroupStatus = "failed"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidInputFormats lists all valid input formats.
var ValidInputFormats = map[InputFormat]struct{}{
	AutoInput:    {},
	CSVInput:     {},
	ParquetInput: {},
}

// ValidCatalogs lists all valid catalog names.
var ValidCatalogs = map[CatalogName]struct{}{
	MinimalCatalog:  {},
	ExtendedCatalog: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
