package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{
			name:      "precision 2",
			precision: 2,
			value:     3.14159,
			expected:  "3.14",
		},
		{
			name:      "precision 4",
			precision: 4,
			value:     3.14159,
			expected:  "3.1416",
		},
		{
			name:      "negative value",
			precision: 2,
			value:     -42.567,
			expected:  "-42.57",
		},
		{
			name:      "undefined value",
			precision: 2,
			value:     math.NaN(),
			expected:  "NaN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtPlain, fmtTable := createFormatters(tt.precision, false)
			assert.Equal(t, tt.expected, fmtPlain(tt.value))
			assert.Equal(t, tt.expected, fmtTable(tt.value))
		})
	}
}

func TestHeaderTextPlain(t *testing.T) {
	headers := []string{"id", "x__mean"}
	assert.Equal(t, headers, headerText(headers, false))
}

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		expected string
	}{
		{
			name:     "feature map",
			data:     map[string]float64{"mean": 2, "length": 3},
			expected: "{\n  \"length\": 3,\n  \"mean\": 2\n}\n",
		},
		{
			name:     "column list",
			data:     []string{"id", "x__mean"},
			expected: "[\n  \"id\",\n  \"x__mean\"\n]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeJSON(&buf, tt.data))
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	t.Run("unencodable value", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeJSON(&buf, math.Inf(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to encode JSON")
	})
}

func TestWriteCSVWithHeader(t *testing.T) {
	writeRows := func(rows [][]string) func(*csv.Writer) error {
		return func(w *csv.Writer) error {
			for _, row := range rows {
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		}
	}

	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"id", "x__mean"}, writeRows([][]string{
		{"A", "2.000"},
		{"B,C", "NaN"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "id,x__mean\nA,2.000\n\"B,C\",NaN\n", buf.String())

	buf.Reset()
	require.NoError(t, writeCSVWithHeader(&buf, []string{"id"}, writeRows(nil)))
	assert.Equal(t, "id\n", buf.String())

	buf.Reset()
	err = writeCSVWithHeader(&buf, []string{"id"}, func(*csv.Writer) error { return assert.AnError })
	assert.Equal(t, assert.AnError, err)
}

func TestWriteWithFile(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(io.Writer) error {
			called = true
			return nil
		}, "Wrote features")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "features.json")
		err := writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, map[string]any{"id_column": "id", "rows": 2})
		}, "Wrote features")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(content, &decoded))
		assert.Equal(t, "id", decoded["id_column"])
		assert.Equal(t, float64(2), decoded["rows"])
	})

	t.Run("writer error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "features.csv")
		err := writeWithFile(path, func(io.Writer) error { return assert.AnError }, "Wrote features")
		assert.Equal(t, assert.AnError, err)
	})

	t.Run("bad path", func(t *testing.T) {
		err := writeWithFile(filepath.Join(t.TempDir(), "missing", "features.csv"), func(io.Writer) error {
			return nil
		}, "Wrote features")
		require.Error(t, err)
	})
}
