package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileNotFound indicates the input path does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrParse indicates the input is not valid tabular data.
	ErrParse = errors.New("parse error")
	// ErrSchema indicates a required column is absent.
	ErrSchema = errors.New("schema error")
)

// SchemaError lists the required columns a dataset lacks.
type SchemaError struct {
	Dataset string
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("schema error: %s is missing column(s): %s", e.Dataset, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("schema error: missing column(s): %s", strings.Join(e.Missing, ", "))
}

// Is lets errors.Is(err, ErrSchema) match.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
