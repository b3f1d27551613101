package domain

import (
	"fmt"
	"sort"
	"strings"
)

// NameSet is a set of variable names.
type NameSet map[string]struct{}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Roles partitions the variables of a dataset.
type Roles struct {
	Bounds NameSet // Referenced by a "bounds" attribute.
	Coords NameSet // Referenced by a "coordinates" attribute.
	Data   NameSet // Everything else.
}

// ClassifyVars partitions the variables of ds into bounds, coordinate and
// data roles from the CF "bounds" and "coordinates" attributes.
func ClassifyVars(ds Dataset) (Roles, error) {
	roles := Roles{
		Bounds: make(NameSet),
		Coords: make(NameSet),
		Data:   make(NameSet),
	}

	names := ds.Variables()
	for _, name := range names {
		v, err := ds.Variable(name)
		if err != nil {
			return Roles{}, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if b, ok := v.Attrs.String(AttrBounds); ok {
			roles.Bounds[b] = struct{}{}
		}
		if c, ok := v.Attrs.String(AttrCoordinates); ok {
			for _, tok := range strings.Fields(c) {
				roles.Coords[tok] = struct{}{}
			}
		}
	}

	for _, name := range names {
		if roles.Bounds.Has(name) || roles.Coords.Has(name) {
			continue
		}
		roles.Data[name] = struct{}{}
	}
	return roles, nil
}

// isDimensionCoordinate reports whether v is a 1D variable named after its
// only dimension.
func isDimensionCoordinate(v *Variable) bool {
	return len(v.Dims) == 1 && v.Dims[0] == v.Name
}

// coordinateSet returns every variable of ds acting as a coordinate:
// dimension coordinates, CF "coordinates" references and explicitly
// listed coordinates. Bounds variables are never coordinates.
func coordinateSet(ds Dataset, roles Roles) (NameSet, error) {
	coords := make(NameSet)
	for n := range roles.Coords {
		coords[n] = struct{}{}
	}
	if cl, ok := ds.(CoordinateLister); ok {
		for _, n := range cl.Coordinates() {
			coords[n] = struct{}{}
		}
	}
	for _, name := range ds.Variables() {
		v, err := ds.Variable(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if isDimensionCoordinate(v) {
			coords[name] = struct{}{}
		}
	}
	for n := range roles.Bounds {
		delete(coords, n)
	}
	return coords, nil
}

// DataVariables returns the plottable data variables of ds in file order:
// data-role variables that are not coordinates and have at least minRank
// dimensions.
func DataVariables(ds Dataset, minRank int) ([]string, error) {
	roles, err := ClassifyVars(ds)
	if err != nil {
		return nil, err
	}
	coords, err := coordinateSet(ds, roles)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, name := range ds.Variables() {
		if !roles.Data.Has(name) || coords.Has(name) {
			continue
		}
		v, err := ds.Variable(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if v.Rank() >= minRank {
			out = append(out, name)
		}
	}
	return out, nil
}

// DataVariable looks up name in ds and attaches its coordinate variables:
// every coordinate of the dataset whose dimensions are a subset of the
// variable's dimensions. Coordinate and bounds variables are returned
// without attached coordinates.
func DataVariable(ds Dataset, name string) (*Variable, error) {
	v, err := ds.Variable(name)
	if err != nil {
		return nil, err
	}

	roles, err := ClassifyVars(ds)
	if err != nil {
		return nil, err
	}
	coords, err := coordinateSet(ds, roles)
	if err != nil {
		return nil, err
	}

	out := *v
	out.Coords = nil
	if coords.Has(name) || roles.Bounds.Has(name) {
		return &out, nil
	}

	for _, cname := range ds.Variables() {
		if cname == name || !coords.Has(cname) {
			continue
		}
		c, err := ds.Variable(cname)
		if err != nil {
			return nil, fmt.Errorf("failed to read coordinate %s: %w", cname, err)
		}
		if dimsSubset(c, v) {
			out.Coords = append(out.Coords, c)
		}
	}
	return &out, nil
}

// dimsSubset reports whether every dimension of c is a dimension of v with
// the same size.
func dimsSubset(c, v *Variable) bool {
	for i, d := range c.Dims {
		n, ok := v.DimSize(d)
		if !ok || n != c.Shape[i] {
			return false
		}
	}
	return true
}
