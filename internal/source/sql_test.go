package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tdfdash/internal/stages"
)

func sampleRows() []stages.Row {
	return []stages.Row{
		{Rider: "A", Rank: stages.Int(1), Elapsed: stages.Float(100), Age: stages.Float(30), Year: 2020, StageResultsID: "stage-1"},
		{Rider: "B", Rank: stages.Int(2), Elapsed: stages.Float(101), Year: 2020, StageResultsID: "stage-1"},
		{Rider: "A", Rank: stages.Int(3), Elapsed: stages.Float(200), Age: stages.Float(30), Year: 2020, StageResultsID: "stage-2"},
		{Rider: "C", Year: 2021, StageResultsID: "stage-1"},
	}
}

func TestMemory_LoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, err := NewMemory(ctx, "test", sampleRows())
	require.NoError(t, err)
	defer src.Close()

	got, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRows(), got)
	assert.Equal(t, "test", src.Name())
	assert.Equal(t, DefaultTable, src.Table())
}

func TestMemory_Query(t *testing.T) {
	ctx := context.Background()
	src, err := NewMemory(ctx, "test", sampleRows())
	require.NoError(t, err)
	defer src.Close()

	got, err := src.Query(ctx, "SELECT * FROM stages WHERE rider = 'A' ORDER BY stage_results_id;")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "stage-2", got[1].StageResultsID)

	// Column order does not matter and extra columns are ignored.
	got, err = src.Query(ctx, "SELECT year, stage_results_id, rider, rank, age, elapsed, 1 AS extra FROM stages WHERE year = 2021")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Rank)
}

func TestMemory_QueryRejectsWrites(t *testing.T) {
	ctx := context.Background()
	src, err := NewMemory(ctx, "test", sampleRows())
	require.NoError(t, err)
	defer src.Close()

	for _, q := range []string{"DELETE FROM stages", "SELECT 1; DROP TABLE stages", "", "  "} {
		_, err := src.Query(ctx, q)
		assert.ErrorIs(t, err, ErrNotReadOnly, q)
	}
	rows, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestMemory_QueryMissingColumns(t *testing.T) {
	ctx := context.Background()
	src, err := NewMemory(ctx, "test", sampleRows())
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Query(ctx, "SELECT rider, year FROM stages")
	var inv *stages.InvalidInputError
	assert.True(t, errors.As(err, &inv))
}

func TestMemory_QueryRejectsInfinity(t *testing.T) {
	ctx := context.Background()
	src, err := NewMemory(ctx, "test", sampleRows())
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Query(ctx, "SELECT rider, rank, 1e999 AS elapsed, age, year, stage_results_id FROM stages")
	var inv *stages.InvalidInputError
	require.True(t, errors.As(err, &inv), "got %v", err)
	assert.Equal(t, stages.ColElapsed, inv.Column)
}

func TestReadOnly(t *testing.T) {
	q, err := ReadOnly("  with x as (select * from stages) select * from x ; ")
	require.NoError(t, err)
	assert.Equal(t, "with x as (select * from stages) select * from x", q)

	// Keywords inside literals, quoted identifiers and comments are data.
	for _, ok := range []string{
		"SELECT * FROM stages WHERE rider = 'Drop; Delete O''Grady'",
		`SELECT * FROM stages WHERE "rider" <> 'update'`,
		"SELECT * FROM stages -- no insert here\nWHERE year = 2020",
		"SELECT * FROM stages /* delete */ WHERE year = 2020",
	} {
		_, err := ReadOnly(ok)
		assert.NoError(t, err, ok)
	}

	for _, bad := range []string{
		"UPDATE stages SET rank = 1",
		"WITH x AS (SELECT 1) DELETE FROM stages",
		"WITH x AS (SELECT 1) INSERT INTO stages (rider) SELECT 'a' FROM x",
		"with x as (select 1) update stages set rank = 2",
		"SELECT * INTO backup FROM stages",
		"SELECT * FROM stages WHERE rider = 'unterminated",
		"SELECT 1 /* open comment",
		"SELECT 'a'; DELETE FROM stages",
	} {
		_, err := ReadOnly(bad)
		assert.ErrorIs(t, err, ErrNotReadOnly, bad)
	}
}

func TestMemory_WritingCTELeavesTableIntact(t *testing.T) {
	ctx := context.Background()
	src, err := NewMemory(ctx, "test", sampleRows())
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Query(ctx, "WITH x AS (SELECT 1) DELETE FROM stages")
	assert.ErrorIs(t, err, ErrNotReadOnly)

	// The engine itself refuses writes once loaded.
	_, err = src.query(ctx, "WITH x AS (SELECT 1) DELETE FROM stages")
	assert.Error(t, err)

	rows, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, len(sampleRows()))
}

func TestOpen_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "stages.csv")
	require.NoError(t, os.WriteFile(p, []byte(sampleCSV), 0o644))
	src, err := Open(context.Background(), Options{DataPath: p})
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, "file:stages.csv", src.Name())
	rows, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestOpen_NothingConfigured(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	assert.Error(t, err)
}

func TestOpenWarehouse_Validation(t *testing.T) {
	_, err := OpenWarehouse(context.Background(), "", "stages")
	assert.Error(t, err)
	_, err = OpenWarehouse(context.Background(), "postgres://localhost/x", "stages; drop")
	assert.Error(t, err)
}
