// Package memory provides an in-memory dataset, used for preprocessed and
// concatenated datasets and as a test fixture.
package memory

import (
	"fmt"
	"sort"

	"github.com/ctessum/sparse"

	"go.ngs.io/ncview/internal/domain"
)

type variable struct {
	meta   domain.Variable
	values *sparse.DenseArray
}

// Dataset is a mutable in-memory domain.Dataset. It is not safe for
// concurrent modification; once built it is read-only.
type Dataset struct {
	dims   map[string]int
	order  []string
	vars   map[string]*variable
	coords []string
}

// New creates an empty dataset with the given dimensions.
func New(dims map[string]int) *Dataset {
	d := &Dataset{
		dims: make(map[string]int, len(dims)),
		vars: make(map[string]*variable),
	}
	for k, v := range dims {
		d.dims[k] = v
	}
	return d
}

// Array builds a dense array of the given shape from row-major values.
// Missing values are left at zero.
func Array(shape []int, values ...float64) *sparse.DenseArray {
	a := sparse.ZerosDense(append([]int(nil), shape...)...)
	copy(a.Elements, values)
	return a
}

// AddDim declares a new dimension or checks the size of an existing one.
func (d *Dataset) AddDim(name string, size int) error {
	if n, ok := d.dims[name]; ok && n != size {
		return fmt.Errorf("dimension %s already has size %d, not %d", name, n, size)
	}
	d.dims[name] = size
	return nil
}

// Add adds a variable over the named dimensions. The shape of values must
// match the dataset dimension sizes. Adding an existing name replaces it
// in place.
func (d *Dataset) Add(name string, dims []string, values *sparse.DenseArray, attrs domain.Attrs) error {
	shape := make([]int, len(dims))
	for i, dim := range dims {
		n, ok := d.dims[dim]
		if !ok {
			return fmt.Errorf("variable %s: unknown dimension %s", name, dim)
		}
		shape[i] = n
	}

	size := 1
	for _, n := range shape {
		size *= n
	}
	if values == nil {
		values = sparse.ZerosDense(append([]int(nil), shape...)...)
	}
	if len(values.Elements) != size {
		return fmt.Errorf("variable %s: %d values for shape %v", name, len(values.Elements), shape)
	}
	if attrs == nil {
		attrs = domain.Attrs{}
	}

	// Reshape to the dimension sizes; values may arrive flat.
	arr := sparse.ZerosDense(append([]int(nil), shape...)...)
	copy(arr.Elements, values.Elements)

	if _, ok := d.vars[name]; !ok {
		d.order = append(d.order, name)
	}
	d.vars[name] = &variable{
		meta: domain.Variable{
			Name:  name,
			Dims:  append([]string(nil), dims...),
			Shape: shape,
			Attrs: attrs,
		},
		values: arr,
	}
	return nil
}

// SetAttr sets an attribute on an existing variable.
func (d *Dataset) SetAttr(name, attr string, value any) error {
	v, ok := d.vars[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrVariableNotFound, name)
	}
	v.meta.Attrs[attr] = value
	return nil
}

// SetCoords marks the named variables as coordinates.
func (d *Dataset) SetCoords(names ...string) error {
	for _, n := range names {
		if _, ok := d.vars[n]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrVariableNotFound, n)
		}
		found := false
		for _, c := range d.coords {
			if c == n {
				found = true
				break
			}
		}
		if !found {
			d.coords = append(d.coords, n)
		}
	}
	return nil
}

// Coordinates implements domain.CoordinateLister.
func (d *Dataset) Coordinates() []string {
	return append([]string(nil), d.coords...)
}

// Variables implements domain.Dataset.
func (d *Dataset) Variables() []string {
	return append([]string(nil), d.order...)
}

// Variable implements domain.Dataset.
func (d *Dataset) Variable(name string) (*domain.Variable, error) {
	v, ok := d.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrVariableNotFound, name)
	}
	meta := v.meta
	meta.Dims = append([]string(nil), v.meta.Dims...)
	meta.Shape = append([]int(nil), v.meta.Shape...)
	meta.Attrs = v.meta.Attrs.Clone()
	return &meta, nil
}

// Values implements domain.Dataset. The returned array is a copy.
func (d *Dataset) Values(name string) (*sparse.DenseArray, error) {
	v, ok := d.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrVariableNotFound, name)
	}
	return Array(v.meta.Shape, v.values.Elements...), nil
}

// Dims implements domain.Dataset.
func (d *Dataset) Dims() map[string]int {
	out := make(map[string]int, len(d.dims))
	for k, v := range d.dims {
		out[k] = v
	}
	return out
}

// Close does nothing. It lets an in-memory dataset stand in for an open
// file.
func (d *Dataset) Close() error {
	return nil
}

// DimNames returns the dimension names in lexical order.
func (d *Dataset) DimNames() []string {
	names := make([]string, 0, len(d.dims))
	for n := range d.dims {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Copy materializes every variable of ds into a new in-memory dataset.
func Copy(ds domain.Dataset) (*Dataset, error) {
	out := New(ds.Dims())
	for _, name := range ds.Variables() {
		v, err := ds.Variable(name)
		if err != nil {
			return nil, err
		}
		vals, err := ds.Values(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		for i, dim := range v.Dims {
			if err := out.AddDim(dim, v.Shape[i]); err != nil {
				return nil, err
			}
		}
		if err := out.Add(name, v.Dims, vals, v.Attrs); err != nil {
			return nil, err
		}
	}
	if cl, ok := ds.(domain.CoordinateLister); ok {
		if err := out.SetCoords(cl.Coordinates()...); err != nil {
			return nil, err
		}
	}
	return out, nil
}
