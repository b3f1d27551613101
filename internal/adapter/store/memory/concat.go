package memory

import (
	"fmt"

	"github.com/ctessum/sparse"

	"go.ngs.io/ncview/internal/domain"
)

// Concat joins datasets along dim, in the given order. Variables over dim
// are concatenated; every other variable is taken from the first dataset.
// All datasets must hold the variables of the first with the same
// dimensions.
func Concat(dim string, parts ...domain.Dataset) (*Dataset, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("no datasets to concatenate")
	}
	if len(parts) == 1 {
		return Copy(parts[0])
	}

	first := parts[0]
	dims := first.Dims()
	if _, ok := dims[dim]; !ok {
		return nil, fmt.Errorf("concat dimension %s not found", dim)
	}
	total := 0
	for i, p := range parts {
		n, ok := p.Dims()[dim]
		if !ok {
			return nil, fmt.Errorf("dataset %d has no dimension %s", i, dim)
		}
		total += n
	}
	dims[dim] = total
	out := New(dims)

	for _, name := range first.Variables() {
		v, err := first.Variable(name)
		if err != nil {
			return nil, err
		}
		axis := -1
		for i, d := range v.Dims {
			if d == dim {
				axis = i
			}
		}

		var vals *sparse.DenseArray
		if axis < 0 {
			vals, err = first.Values(name)
		} else {
			vals, err = concatVariable(name, v, axis, parts)
		}
		if err != nil {
			return nil, err
		}
		if err := out.Add(name, v.Dims, vals, v.Attrs); err != nil {
			return nil, err
		}
	}

	if cl, ok := first.(domain.CoordinateLister); ok {
		if err := out.SetCoords(cl.Coordinates()...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func concatVariable(name string, ref *domain.Variable, axis int, parts []domain.Dataset) (*sparse.DenseArray, error) {
	outer, inner := 1, 1
	for i, n := range ref.Shape {
		switch {
		case i < axis:
			outer *= n
		case i > axis:
			inner *= n
		}
	}

	blocks := make([][]float64, len(parts))
	lengths := make([]int, len(parts))
	total := 0
	for p, ds := range parts {
		v, err := ds.Variable(name)
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", p, err)
		}
		if len(v.Dims) != len(ref.Dims) {
			return nil, fmt.Errorf("dataset %d: %s has dimensions %v, expected %v", p, name, v.Dims, ref.Dims)
		}
		for i := range v.Dims {
			if v.Dims[i] != ref.Dims[i] || (i != axis && v.Shape[i] != ref.Shape[i]) {
				return nil, fmt.Errorf("dataset %d: %s has shape %v over %v, expected %v over %v",
					p, name, v.Shape, v.Dims, ref.Shape, ref.Dims)
			}
		}
		vals, err := ds.Values(name)
		if err != nil {
			return nil, fmt.Errorf("dataset %d: failed to read %s: %w", p, name, err)
		}
		blocks[p] = vals.Elements
		lengths[p] = v.Shape[axis]
		total += v.Shape[axis]
	}

	shape := append([]int(nil), ref.Shape...)
	shape[axis] = total
	arr := sparse.ZerosDense(shape...)
	pos := 0
	for o := 0; o < outer; o++ {
		for p, block := range blocks {
			n := lengths[p] * inner
			copy(arr.Elements[pos:pos+n], block[o*n:(o+1)*n])
			pos += n
		}
	}
	return arr, nil
}
