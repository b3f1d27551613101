// Package domain holds the CF-convention interpretation core of the viewer:
// variable role classification, axis identification, usable dimension
// resolution and cell-edge reconstruction from bounds variables.
package domain

import (
	"strings"

	"github.com/ctessum/sparse"
)

// CF attribute names consumed by the core. These must match literally.
const (
	AttrAxis         = "axis"
	AttrStandardName = "standard_name"
	AttrUnits        = "units"
	AttrBounds       = "bounds"
	AttrCoordinates  = "coordinates"
)

// Attrs maps attribute names to values.
// String attributes are stored as string, numeric attributes as []float64.
type Attrs map[string]any

// String returns the named attribute if it is string-valued.
func (a Attrs) String(name string) (string, bool) {
	v, ok := a[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	// NetCDF CHAR attributes are sometimes NUL padded.
	return strings.TrimRight(s, "\x00"), true
}

// Float64s returns the named attribute if it is numeric.
func (a Attrs) Float64s(name string) ([]float64, bool) {
	v, ok := a[name]
	if !ok {
		return nil, false
	}
	f, ok := v.([]float64)
	return f, ok
}

// Clone returns a shallow copy of the attribute map.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Variable describes a named n-dimensional array in a Dataset.
type Variable struct {
	Name  string
	Dims  []string // Dimension names, outermost first.
	Shape []int    // Size along each of Dims.
	Attrs Attrs

	// Coords holds the attached coordinate variables. It is only filled
	// for data variables, see DataVariable.
	Coords []*Variable
}

// Rank returns the number of dimensions of v.
func (v *Variable) Rank() int {
	return len(v.Dims)
}

// Size returns the total number of elements of v.
func (v *Variable) Size() int {
	n := 1
	for _, s := range v.Shape {
		n *= s
	}
	return n
}

// DimSize returns the size of the named dimension of v.
func (v *Variable) DimSize(dim string) (int, bool) {
	for i, d := range v.Dims {
		if d == dim {
			return v.Shape[i], true
		}
	}
	return 0, false
}

// HasDim reports whether dim is one of the dimensions of v.
func (v *Variable) HasDim(dim string) bool {
	_, ok := v.DimSize(dim)
	return ok
}

// Coord returns the attached coordinate with the given name.
func (v *Variable) Coord(name string) (*Variable, bool) {
	for _, c := range v.Coords {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Dataset is the read-only view of a gridded dataset consumed by the core.
// Implementations live in internal/adapter/store.
type Dataset interface {
	// Variables returns all variable names in file order.
	Variables() []string

	// Variable returns the metadata of the named variable. The returned
	// error wraps ErrVariableNotFound if there is no such variable.
	Variable(name string) (*Variable, error)

	// Values materializes the named variable as float64 in its own
	// dimension order.
	Values(name string) (*sparse.DenseArray, error)

	// Dims returns the dataset dimensions and their sizes.
	Dims() map[string]int
}

// CoordinateLister is implemented by datasets that mark coordinate
// variables explicitly instead of (or in addition to) the CF
// "coordinates" attribute.
type CoordinateLister interface {
	Coordinates() []string
}
