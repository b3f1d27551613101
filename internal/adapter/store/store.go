// Package store opens datasets from files with the selected reader backend.
package store

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.ngs.io/ncview/internal/adapter/store/cdf"
	"go.ngs.io/ncview/internal/adapter/store/memory"
	"go.ngs.io/ncview/internal/adapter/store/netcdf"
	"go.ngs.io/ncview/internal/domain"
)

// Backend selects the file reader.
type Backend string

const (
	// BackendNetCDF reads through libnetcdf and supports NetCDF-4/HDF5.
	BackendNetCDF Backend = "netcdf"
	// BackendCDF is a pure-Go reader for NetCDF classic files.
	BackendCDF Backend = "cdf"
)

// DefaultConcatDim is the dimension multiple files are joined along.
const DefaultConcatDim = "time"

// ParseBackend parses a backend name. The empty string selects netcdf.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendNetCDF:
		return BackendNetCDF, nil
	case BackendCDF:
		return BackendCDF, nil
	}
	return "", fmt.Errorf("unknown backend %q (want %s or %s)", s, BackendNetCDF, BackendCDF)
}

// Open opens a single file. The returned closer releases the file.
func Open(path string, backend Backend) (domain.Dataset, io.Closer, error) {
	switch backend {
	case BackendNetCDF, "":
		s, err := netcdf.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case BackendCDF:
		s, err := cdf.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", backend)
}

// OpenMulti opens one or more files. Several files are read fully and
// concatenated along dim in the given order; the files are closed before
// returning.
func OpenMulti(paths []string, backend Backend, dim string) (domain.Dataset, io.Closer, error) {
	switch len(paths) {
	case 0:
		return nil, nil, errors.New("no input files")
	case 1:
		return Open(paths[0], backend)
	}
	if dim == "" {
		dim = DefaultConcatDim
	}

	parts := make([]domain.Dataset, 0, len(paths))
	closers := make([]io.Closer, 0, len(paths))
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	for _, p := range paths {
		ds, c, err := Open(p, backend)
		if err != nil {
			return nil, nil, err
		}
		parts = append(parts, ds)
		closers = append(closers, c)
	}

	ds, err := memory.Concat(dim, parts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to concatenate along %s: %w", dim, err)
	}
	return ds, ds, nil
}
