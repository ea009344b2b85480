// Package parquet writes extraction outputs and tracked runs to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/huangsam/tsfeat/schema"
	"github.com/parquet-go/parquet-go"
)

// ExtractionRun represents a single tracked extraction run.
// This struct maps to the tsfeat_extraction_runs database table.
type ExtractionRun struct {
	RunID         int64      `parquet:"run_id,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalGroups   int32      `parquet:"total_groups,snappy"`
	FailedGroups  int32      `parquet:"failed_groups,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// GroupOutcome represents the outcome of one group within a run.
// This struct maps to the tsfeat_group_outcomes database table.
type GroupOutcome struct {
	RunID        int64   `parquet:"run_id,snappy"`
	GroupID      string  `parquet:"group_id,snappy"`
	Status       string  `parquet:"status,snappy"`
	FeatureCount int32   `parquet:"feature_count,snappy"`
	ErrorMessage *string `parquet:"error_message,optional,snappy"`
}

// WriteExtractionRunsParquet writes a slice of ExtractionRun structs to a Parquet file.
func WriteExtractionRunsParquet(data []ExtractionRun, outputPath string) error {
	return writeStructs(data, outputPath)
}

// WriteGroupOutcomesParquet writes a slice of GroupOutcome structs to a Parquet file.
func WriteGroupOutcomesParquet(data []GroupOutcome, outputPath string) error {
	return writeStructs(data, outputPath)
}

// writeStructs writes rows whose schema is derived from the struct tags of T.
func writeStructs[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ConvertExtractionRunRecords converts store records for Parquet export.
func ConvertExtractionRunRecords(records []schema.ExtractionRunRecord) []ExtractionRun {
	result := make([]ExtractionRun, len(records))
	for i, record := range records {
		result[i] = ExtractionRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalGroups:   record.TotalGroups,
			FailedGroups:  record.FailedGroups,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertGroupOutcomeRecords converts store records for Parquet export.
func ConvertGroupOutcomeRecords(records []schema.GroupOutcomeRecord) []GroupOutcome {
	result := make([]GroupOutcome, len(records))
	for i, record := range records {
		result[i] = GroupOutcome{
			RunID:        record.RunID,
			GroupID:      record.GroupID,
			Status:       record.Status,
			FeatureCount: record.FeatureCount,
			ErrorMessage: record.ErrorMessage,
		}
	}
	return result
}

// OutputTableSchema builds the Parquet schema of an output table: a string id
// column followed by one double column per feature column, in table order.
func OutputTableSchema(out *schema.OutputTable) (*parquet.Schema, error) {
	fields := make([]reflect.StructField, 0, out.Width())
	names := append([]string{out.IDColumn}, out.FeatureColumns...)
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if name == "" || strings.Contains(name, ",") {
			return nil, fmt.Errorf("column name %q cannot be used in a parquet schema", name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate column %q in parquet schema", name)
		}
		seen[name] = struct{}{}
		typ := reflect.TypeFor[float64]()
		if i == 0 {
			typ = reflect.TypeFor[string]()
		}
		fields = append(fields, reflect.StructField{
			Name: fmt.Sprintf("F%d", i),
			Type: typ,
			Tag:  reflect.StructTag(fmt.Sprintf(`parquet:%q`, name+",snappy")),
		})
	}
	return parquet.SchemaOf(reflect.New(reflect.StructOf(fields)).Elem().Interface()), nil
}

// WriteOutputTable encodes an output table as Parquet. Missing values keep the
// fill value chosen at assembly, NaN included.
func WriteOutputTable(w io.Writer, out *schema.OutputTable) error {
	sch, err := OutputTableSchema(out)
	if err != nil {
		return err
	}

	idLeaf, ok := sch.Lookup(out.IDColumn)
	if !ok {
		return fmt.Errorf("id column %q missing from parquet schema", out.IDColumn)
	}
	featureIndex := make([]int, len(out.FeatureColumns))
	for i, name := range out.FeatureColumns {
		leaf, ok := sch.Lookup(name)
		if !ok {
			return fmt.Errorf("feature column %q missing from parquet schema", name)
		}
		featureIndex[i] = leaf.ColumnIndex
	}

	rows := make([]parquet.Row, len(out.Rows))
	for r, row := range out.Rows {
		values := make(parquet.Row, out.Width())
		values[idLeaf.ColumnIndex] = parquet.ByteArrayValue([]byte(row.ID)).Level(0, 0, idLeaf.ColumnIndex)
		for i, v := range row.Values {
			values[featureIndex[i]] = parquet.DoubleValue(v).Level(0, 0, featureIndex[i])
		}
		rows[r] = values
	}

	writer := parquet.NewWriter(w, sch)
	if _, err := writer.WriteRows(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// WriteOutputTableFile writes an output table to a Parquet file at outputPath.
func WriteOutputTableFile(out *schema.OutputTable, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return WriteOutputTable(file, out)
}

// RecordFeature is one value of a flat-path result in long form.
type RecordFeature struct {
	Record  int32   `parquet:"record,snappy"`
	Column  string  `parquet:"column,snappy"`
	Feature string  `parquet:"feature,snappy"`
	Value   float64 `parquet:"value,snappy"`
}

// WriteRecordFeatures encodes long-form flat-path results as Parquet.
func WriteRecordFeatures(w io.Writer, rows []RecordFeature) error {
	writer := parquet.NewGenericWriter[RecordFeature](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
