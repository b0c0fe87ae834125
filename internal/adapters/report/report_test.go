package report

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bins() []time.Time {
	return []time.Time{
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSeriesTableCSV(t *testing.T) {
	table := SeriesTable("api", bins(), IntColumn("loc", []int{3, 13}), FloatColumn("ratio", []float64{0.5, math.NaN()}))

	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatCSV, &buf, false).Write(table))
	assert.Equal(t, "date,loc,ratio\n2019-02-01,3,0.5000\n2019-03-01,13,NaN\n", buf.String())
}

func TestSeriesTableJSONMapsNaNToNull(t *testing.T) {
	table := SeriesTable("api", bins(), FloatColumn("ratio", []float64{0.5, math.NaN()}))

	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON, &buf, false).Write(table))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 0.5, got[0]["ratio"])
	assert.Nil(t, got[1]["ratio"])
}

func TestTextOutputContainsRows(t *testing.T) {
	table := DefectDensityTable([]entities.DefectDensity{{Year: 2019, Bugs: 6, LOC: 2000, DefectDensity: 3}})

	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatTable, &buf, false).Write(table))
	out := buf.String()
	assert.Contains(t, out, "Defect density")
	assert.Contains(t, out, "2019")
	assert.Contains(t, out, "3.0000")
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	table := CommitLOCTable("api", []entities.CommitLOC{{SHA: "a", LOC: 5, Date: "2019-01-01T00:00:00"}})

	path, err := WriteFile(dir, "api_loc", FormatCSV, table)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "api_loc.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sha,loc,date\na,5,2019-01-01T00:00:00\n", string(data))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, ParseFormat("CSV"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatTable, ParseFormat("whatever"))
}
