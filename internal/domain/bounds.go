package domain

import (
	"errors"
	"fmt"

	"github.com/ctessum/sparse"
)

// Number of vertices per cell along the bound axis, by coordinate rank.
const (
	vertices1D = 2 // Low and high edge.
	vertices2D = 4 // CF quadrilateral corners.
)

// ResolveBounds returns the cell-edge coordinates of the named coordinate.
//
// Without a "bounds" attribute the coordinate's own values are returned
// unchanged. Otherwise the bounds variable is turned into an array one
// larger than the coordinate along every axis: length N+1 for a 1D
// coordinate, (N+1)x(M+1) for a 2D curvilinear one.
func ResolveBounds(ds Dataset, name string) (*sparse.DenseArray, error) {
	v, err := ds.Variable(name)
	if err != nil {
		return nil, err
	}

	boundsName, ok := v.Attrs.String(AttrBounds)
	if !ok {
		return ds.Values(name)
	}

	b, err := ds.Variable(boundsName)
	if err != nil {
		if errors.Is(err, ErrVariableNotFound) {
			return nil, &MalformedBoundsError{Coordinate: name, Bounds: boundsName, Reason: "bounds variable not found"}
		}
		return nil, err
	}

	axis, err := boundAxis(v, b)
	if err != nil {
		return nil, err
	}

	want := 0
	switch v.Rank() {
	case 1:
		want = vertices1D
	case 2:
		want = vertices2D
	default:
		return nil, &UnsupportedRankError{Coordinate: name, Rank: v.Rank()}
	}
	if n, _ := b.DimSize(axis); n != want {
		return nil, &MalformedBoundsError{
			Coordinate: name,
			Bounds:     boundsName,
			Reason:     fmt.Sprintf("bound dimension %q has size %d, expected %d for a %dD coordinate", axis, n, want, v.Rank()),
		}
	}
	for _, n := range v.Shape {
		if n == 0 {
			return nil, &MalformedBoundsError{Coordinate: name, Bounds: boundsName, Reason: "coordinate has no cells"}
		}
	}

	values, err := ds.Values(boundsName)
	if err != nil {
		return nil, fmt.Errorf("failed to read bounds %s: %w", boundsName, err)
	}
	corners, err := newCornerReader(v, b, axis, values)
	if err != nil {
		return nil, err
	}

	if v.Rank() == 1 {
		return edges1D(corners, v.Shape[0]), nil
	}
	return edges2D(corners, v.Shape[0], v.Shape[1]), nil
}

// boundAxis returns the single dimension of b that is not a dimension of v.
// Every dimension of v must be present in b with the same size.
func boundAxis(v, b *Variable) (string, error) {
	for i, d := range v.Dims {
		n, ok := b.DimSize(d)
		if !ok {
			return "", &MalformedBoundsError{
				Coordinate: v.Name,
				Bounds:     b.Name,
				Reason:     fmt.Sprintf("missing coordinate dimension %q", d),
			}
		}
		if n != v.Shape[i] {
			return "", &MalformedBoundsError{
				Coordinate: v.Name,
				Bounds:     b.Name,
				Reason:     fmt.Sprintf("dimension %q has size %d, coordinate has %d", d, n, v.Shape[i]),
			}
		}
	}

	var extra []string
	for _, d := range b.Dims {
		if !v.HasDim(d) {
			extra = append(extra, d)
		}
	}
	if len(extra) != 1 {
		return "", &MalformedBoundsError{
			Coordinate: v.Name,
			Bounds:     b.Name,
			Reason:     fmt.Sprintf("expected exactly one bound dimension, found %d %v", len(extra), extra),
		}
	}
	return extra[0], nil
}

// cornerReader indexes a bounds array by coordinate index and vertex,
// whatever the position of the bound axis in the bounds variable.
type cornerReader struct {
	values  *sparse.DenseArray
	pos     []int // Position in the bounds array of each coordinate dimension.
	axisPos int
	idx     []int
}

func newCornerReader(v, b *Variable, axis string, values *sparse.DenseArray) (*cornerReader, error) {
	if len(values.Elements) != b.Size() {
		return nil, fmt.Errorf("bounds %s has %d values, expected %d", b.Name, len(values.Elements), b.Size())
	}
	r := &cornerReader{values: values, idx: make([]int, len(b.Dims))}
	for _, d := range v.Dims {
		for j, bd := range b.Dims {
			if bd == d {
				r.pos = append(r.pos, j)
			}
		}
	}
	for j, bd := range b.Dims {
		if bd == axis {
			r.axisPos = j
		}
	}
	return r, nil
}

// at returns the given vertex of the cell at index.
func (r *cornerReader) at(vertex int, index ...int) float64 {
	for k, i := range index {
		r.idx[r.pos[k]] = i
	}
	r.idx[r.axisPos] = vertex
	return r.values.Elements[r.values.Index1d(r.idx...)]
}

// edges1D takes every low edge plus the high edge of the last cell.
func edges1D(r *cornerReader, n int) *sparse.DenseArray {
	edges := sparse.ZerosDense(n + 1)
	for i := 0; i < n; i++ {
		edges.Elements[i] = r.at(0, i)
	}
	edges.Elements[n] = r.at(1, n-1)
	return edges
}

// edges2D assembles the corner layers into an (n+1)x(m+1) edge grid:
// corner 0 for the interior, the last row of corner 3 along the bottom, the
// last column of corner 1 along the right and corner 2 of the last cell.
func edges2D(r *cornerReader, n, m int) *sparse.DenseArray {
	edges := sparse.ZerosDense(n+1, m+1)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			edges.Set(r.at(0, i, j), i, j)
		}
	}
	for j := 0; j < m; j++ {
		edges.Set(r.at(3, n-1, j), n, j)
	}
	for i := 0; i < n; i++ {
		edges.Set(r.at(1, i, m-1), i, m)
	}
	edges.Set(r.at(2, n-1, m-1), n, m)
	return edges
}
