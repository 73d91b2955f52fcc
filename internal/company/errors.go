package company

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDataset is returned when no rows survive cleaning.
var ErrEmptyDataset = errors.New("no data found after cleaning")

// MissingColumnsError reports required columns absent from the header.
type MissingColumnsError struct {
	File    string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: missing required columns: %s", e.File, strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}
