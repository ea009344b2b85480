package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/internal/tableio"
	"github.com/huangsam/tsfeat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOutputTable() *schema.OutputTable {
	return &schema.OutputTable{
		IDColumn:       "id",
		FeatureColumns: []string{"x__length", "x__mean", "y__mean"},
		Rows: []schema.OutputRow{
			{ID: "A", Values: []float64{2, 1.5, math.NaN()}},
			{ID: "B", Values: []float64{1, 10, 6}},
		},
	}
}

func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Output:       output,
		Precision:    2,
		Width:        200,
		Workers:      2,
		CacheBackend: schema.NoneBackend,
	}
}

func TestWriteOutputTableCSV(t *testing.T) {
	fmtPlain, _ := createFormatters(2, false)
	var buf bytes.Buffer
	require.NoError(t, writeOutputTableCSV(&buf, sampleOutputTable(), fmtPlain))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "x__length", "x__mean", "y__mean"},
		{"A", "2.00", "1.50", "NaN"},
		{"B", "1.00", "10.00", "6.00"},
	}, records)
}

func TestWriteOutputTableText(t *testing.T) {
	_, fmtTable := createFormatters(2, false)
	var buf bytes.Buffer
	require.NoError(t, writeOutputTableText(&buf, sampleOutputTable(), testConfig(schema.TextOut), fmtTable, time.Second))

	out := buf.String()
	assert.Contains(t, out, "x__length")
	assert.Contains(t, out, "y__mean")
	assert.Contains(t, out, "NaN")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "Showing 2 groups x 3 features")
	assert.Contains(t, out, "Extraction completed in 1s with 2 workers. Cache backend: none")
}

func TestWriteOutputTableTextPages(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	cfg.Width = 30
	_, fmtTable := createFormatters(2, false)

	var buf bytes.Buffer
	require.NoError(t, writeOutputTableText(&buf, sampleOutputTable(), cfg, fmtTable, time.Second))

	// The id header is repeated on each page.
	assert.GreaterOrEqual(t, strings.Count(buf.String(), " id "), 2)
}

func TestPrintOutputTableJSONFile(t *testing.T) {
	cfg := testConfig(schema.JSONOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "features.json")
	require.NoError(t, PrintOutputTable(sampleOutputTable(), cfg, time.Second))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var decoded struct {
		IDColumn string   `json:"id_column"`
		Columns  []string `json:"columns"`
		Rows     []struct {
			ID       string              `json:"id"`
			Features map[string]*float64 `json:"features"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "id", decoded.IDColumn)
	require.Len(t, decoded.Rows, 2)
	assert.Nil(t, decoded.Rows[0].Features["y__mean"])
	require.NotNil(t, decoded.Rows[1].Features["x__mean"])
	assert.Equal(t, 10.0, *decoded.Rows[1].Features["x__mean"])
}

func TestPrintOutputTableParquetFile(t *testing.T) {
	cfg := testConfig(schema.ParquetOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "features.parquet")
	require.NoError(t, PrintOutputTable(sampleOutputTable(), cfg, time.Second))

	tbl, err := tableio.ReadTable(cfg.OutputFile, schema.AutoInput)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.True(t, tbl.HasColumn("x__mean"))
}

func TestPrintOutputTableCSVFile(t *testing.T) {
	cfg := testConfig(schema.CSVOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "features.csv")
	require.NoError(t, PrintOutputTable(sampleOutputTable(), cfg, time.Second))

	tbl, err := tableio.ReadTable(cfg.OutputFile, schema.AutoInput)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "x__length", "x__mean", "y__mean"}, tbl.ColumnNames())
}
