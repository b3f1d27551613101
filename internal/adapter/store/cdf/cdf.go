// Package cdf reads NetCDF classic and 64-bit offset files in pure Go,
// for hosts without libnetcdf.
package cdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"go.ngs.io/ncview/internal/domain"
)

// Store is a domain.Dataset backed by a NetCDF classic file.
type Store struct {
	f       *os.File
	nc      *cdf.File
	numRecs int
	dims    map[string]int
}

// Open opens a NetCDF classic file read-only.
func Open(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	ncf, err := cdf.Open(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read CDF header of %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	s := &Store{
		f:       f,
		nc:      ncf,
		numRecs: int(ncf.Header.NumRecs(fi.Size())),
		dims:    make(map[string]int),
	}
	for _, v := range ncf.Header.Variables() {
		dims, shape := s.shape(v)
		for i, d := range dims {
			s.dims[d] = shape[i]
		}
	}
	return s, nil
}

// Close closes the underlying file.
func (s *Store) Close() error {
	return s.f.Close()
}

// shape returns the dimensions of v with the record dimension resolved to
// the number of records in the file.
func (s *Store) shape(v string) ([]string, []int) {
	dims := s.nc.Header.Dimensions(v)
	// Lengths returns the header's own slice.
	shape := append([]int(nil), s.nc.Header.Lengths(v)...)
	if s.nc.Header.IsRecordVariable(v) && len(shape) > 0 {
		shape[0] = s.numRecs
	}
	return dims, shape
}

func (s *Store) has(name string) bool {
	for _, v := range s.nc.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// Variables implements domain.Dataset.
func (s *Store) Variables() []string {
	return s.nc.Header.Variables()
}

// Dims implements domain.Dataset.
func (s *Store) Dims() map[string]int {
	out := make(map[string]int, len(s.dims))
	for k, v := range s.dims {
		out[k] = v
	}
	return out
}

// Variable implements domain.Dataset.
func (s *Store) Variable(name string) (*domain.Variable, error) {
	if !s.has(name) {
		return nil, fmt.Errorf("%w: %s", domain.ErrVariableNotFound, name)
	}
	dims, shape := s.shape(name)
	v := &domain.Variable{
		Name:  name,
		Dims:  dims,
		Shape: shape,
		Attrs: domain.Attrs{},
	}
	for _, a := range s.nc.Header.Attributes(name) {
		if val, ok := attrValue(s.nc.Header.GetAttribute(name, a)); ok {
			v.Attrs[a] = val
		}
	}
	return v, nil
}

// attrValue converts a CDF attribute to a string or []float64.
func attrValue(val interface{}) (any, bool) {
	switch val := val.(type) {
	case string:
		return strings.TrimRight(val, "\x00"), true
	case []uint8:
		out := make([]float64, len(val))
		for i, x := range val {
			out[i] = float64(int8(x))
		}
		return out, true
	case []int16:
		out := make([]float64, len(val))
		for i, x := range val {
			out[i] = float64(x)
		}
		return out, true
	case []int32:
		out := make([]float64, len(val))
		for i, x := range val {
			out[i] = float64(x)
		}
		return out, true
	case []float32:
		out := make([]float64, len(val))
		for i, x := range val {
			out[i] = float64(x)
		}
		return out, true
	case []float64:
		return append([]float64(nil), val...), true
	}
	return nil, false
}

// Values implements domain.Dataset. Fill values become NaN and packed
// values are unpacked.
func (s *Store) Values(name string) (*sparse.DenseArray, error) {
	v, err := s.Variable(name)
	if err != nil {
		return nil, err
	}
	out := sparse.ZerosDense(append([]int(nil), v.Shape...)...)
	n := len(out.Elements)
	if n == 0 {
		return out, nil
	}

	var end []int
	if s.nc.Header.IsRecordVariable(name) {
		end = make([]int, len(v.Shape))
		for i, l := range v.Shape {
			end[i] = l - 1
		}
	}
	r := s.nc.Reader(name, nil, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	switch buf := buf.(type) {
	case []float64:
		copy(out.Elements, buf)
	case []float32:
		for i, x := range buf {
			out.Elements[i] = float64(x)
		}
	case []int32:
		for i, x := range buf {
			out.Elements[i] = float64(x)
		}
	case []int16:
		for i, x := range buf {
			out.Elements[i] = float64(x)
		}
	case []uint8:
		for i, x := range buf {
			out.Elements[i] = float64(int8(x))
		}
	default:
		return nil, fmt.Errorf("unsupported data type %T for %s", buf, name)
	}
	v.Attrs.Unpack(out.Elements)
	return out, nil
}
