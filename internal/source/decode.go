// Package source loads the stage-results table from files and SQL engines.
package source

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/KaramelBytes/tdfdash/internal/stages"
)

// recordReader yields one record per call and io.EOF when exhausted.
type recordReader func() ([]string, error)

// decodeRecords maps a header plus records onto stage rows. Extra columns
// are ignored; missing required columns fail fast.
func decodeRecords(header []string, next recordReader) ([]stages.Row, error) {
	if err := stages.RequireColumns(header); err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var rows []stages.Row
	for line := 2; ; line++ {
		rec, err := next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrapf(err, "read row %d", line)
		}
		if blank(rec) {
			continue
		}
		get := func(col string) string {
			i := idx[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		row, err := decodeRow(get)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(get func(string) string) (stages.Row, error) {
	row := stages.Row{Rider: get(stages.ColRider), StageResultsID: get(stages.ColStageResultsID)}
	if row.Rider == "" {
		return row, &stages.InvalidInputError{Column: stages.ColRider, Reason: "value is required"}
	}
	if row.StageResultsID == "" {
		return row, &stages.InvalidInputError{Column: stages.ColStageResultsID, Reason: "value is required"}
	}
	year, ok, err := parseInt(get(stages.ColYear))
	if err != nil || !ok {
		return row, &stages.InvalidInputError{Column: stages.ColYear, Reason: "integer value is required"}
	}
	row.Year = year

	if rank, ok, err := parseInt(get(stages.ColRank)); err != nil {
		return row, &stages.InvalidInputError{Column: stages.ColRank, Reason: err.Error()}
	} else if ok {
		row.Rank = stages.Int(rank)
	}
	if v, ok, err := parseFloat(get(stages.ColElapsed)); err != nil {
		return row, &stages.InvalidInputError{Column: stages.ColElapsed, Reason: err.Error()}
	} else if ok {
		row.Elapsed = stages.Float(v)
	}
	if v, ok, err := parseFloat(get(stages.ColAge)); err != nil {
		return row, &stages.InvalidInputError{Column: stages.ColAge, Reason: err.Error()}
	} else if ok {
		row.Age = stages.Float(v)
	}
	return row, nil
}

// missing reports whether a cell denotes an absent value.
func missing(s string) bool {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null", "none", "<na>":
		return true
	}
	return false
}

func parseFloat(s string) (float64, bool, error) {
	if missing(s) {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(f) {
		return 0, false, nil
	}
	if math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("not a finite number: %q", s)
	}
	return f, true, nil
}

// parseInt accepts integral floats such as "3.0", which dataframe exports
// produce for integer columns containing gaps.
func parseInt(s string) (int, bool, error) {
	f, ok, err := parseFloat(s)
	if err != nil || !ok {
		return 0, ok, err
	}
	if f != math.Trunc(f) {
		return 0, false, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), true, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
