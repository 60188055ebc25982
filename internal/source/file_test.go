package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tdfdash/internal/stages"
)

const sampleCSV = `rider,rank,elapsed,age,year,stage_results_id,team
Pogačar,1.0,15000,25,2024,stage-4,UAE
Vingegaard,2.0,15005,27,2024,stage-4,Visma
Evenepoel,,,24.0,2024,stage-4,Soudal
Cavendish,1,NaN,39,2024,stage-5,Astana
`

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Pogačar", rows[0].Rider)
	require.NotNil(t, rows[0].Rank)
	assert.Equal(t, 1, *rows[0].Rank)
	assert.Equal(t, 15000.0, *rows[0].Elapsed)
	assert.Equal(t, 2024, rows[0].Year)
	assert.Equal(t, "stage-4", rows[0].StageResultsID)

	assert.Nil(t, rows[2].Rank)
	assert.Nil(t, rows[2].Elapsed)
	assert.Equal(t, 24.0, *rows[2].Age)
	assert.Nil(t, rows[3].Elapsed)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("rider,rank,elapsed,year,stage_results_id\nA,1,2,2020,stage-1\n"))
	var inv *stages.InvalidInputError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "age", inv.Column)
}

func TestReadCSV_BadValues(t *testing.T) {
	tests := []struct {
		name, row, column string
	}{
		{"fractional rank", "A,1.5,2,30,2020,stage-1", "rank"},
		{"text elapsed", "A,1,fast,30,2020,stage-1", "elapsed"},
		{"missing year", "A,1,2,30,,stage-1", "year"},
		{"missing stage", "A,1,2,30,2020,", "stage_results_id"},
		{"infinite elapsed", "A,1,inf,30,2020,stage-1", "elapsed"},
		{"negative infinite age", "A,1,2,-Inf,2020,stage-1", "age"},
		{"infinite rank", "A,+Inf,2,30,2020,stage-1", "rank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader("rider,rank,elapsed,age,year,stage_results_id\n" + tt.row + "\n"))
			var inv *stages.InvalidInputError
			require.True(t, errors.As(err, &inv), "got %v", err)
			assert.Equal(t, tt.column, inv.Column)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	var inv *stages.InvalidInputError
	assert.True(t, errors.As(err, &inv))
}

func TestLoadCSV_TSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "stages.tsv")
	content := "rider\trank\telapsed\tage\tyear\tstage_results_id\nA\t1\t100\t30\t2020\tstage-1\n\nB\t2\t101\t31\t2020\tstage-1\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	rows, err := LoadFile(p, "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestLoadCSV_NotFound(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func writeXLSX(t *testing.T, sheet string, records [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rec))
	}
	p := filepath.Join(t.TempDir(), "stages.xlsx")
	require.NoError(t, f.SaveAs(p))
	return p
}

func TestLoadXLSX(t *testing.T) {
	p := writeXLSX(t, "Results", [][]any{
		{"rider", "rank", "elapsed", "age", "year", "stage_results_id"},
		{"A", 1, 100.5, 30, 2020, "stage-1"},
		{"B", "", 101, 31, 2020, "stage-2a"},
	})

	rows, err := LoadFile(p, "results")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 100.5, *rows[0].Elapsed)
	assert.Nil(t, rows[1].Rank)
	assert.Equal(t, "stage-2a", rows[1].StageResultsID)

	_, err = LoadXLSX(p, "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available sheets")
}
