package stages

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidInputError reports a structurally unusable input, such as a
// missing required column or an unknown field selector.
type InvalidInputError struct {
	Column string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: column %q: %s", e.Column, e.Reason)
}

// ErrDegenerateSample is returned by DensityCurve when the sample is empty
// or has zero variance. Per-year builders skip such groups instead.
var ErrDegenerateSample = errors.New("density: sample needs at least one value and non-zero variance")

// RequireColumns checks that header names every column in Columns.
// Matching is case-insensitive and ignores surrounding whitespace.
func RequireColumns(header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[strings.ToLower(strings.TrimSpace(h))] = true
	}
	for _, c := range Columns {
		if !have[c] {
			return &InvalidInputError{Column: c, Reason: "required column is missing"}
		}
	}
	return nil
}
