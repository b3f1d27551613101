// Package cdftest writes NetCDF classic fixtures for tests.
package cdftest

import (
	"errors"
	"fmt"
	"io"

	"github.com/ctessum/cdf"
)

// Write writes all of vals to variable v. The io.EOF that the writer
// reports once a fixed-size variable is full counts as success.
func Write(f *cdf.File, v string, vals interface{}) error {
	if _, err := f.Writer(v, nil, nil).Write(vals); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("write %s: %w", v, err)
	}
	return nil
}
