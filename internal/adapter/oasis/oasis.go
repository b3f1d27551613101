// Package oasis turns Oasis coupler field dumps into plottable datasets.
//
// A dump stores every field flattened over the grid points of its Oasis
// grid. The grid geometry lives next to it in grids.nc (<grid>.lat,
// <grid>.lon) and the land-sea mask in masks.nc (<grid>.msk).
package oasis

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/ctessum/sparse"

	"go.ngs.io/ncview/internal/adapter/store"
	"go.ngs.io/ncview/internal/adapter/store/memory"
	"go.ngs.io/ncview/internal/domain"
)

const (
	timeVar = "time"
	latVar  = "lat"
	lonVar  = "lon"

	gridsFile = "grids.nc"
	masksFile = "masks.nc"
)

// Load reads the dump at dumpPath and reshapes it onto grid using the
// grids.nc and masks.nc files found in rundir. An empty rundir means the
// directory of the dump.
func Load(dumpPath, rundir, grid string, backend store.Backend) (*memory.Dataset, error) {
	if rundir == "" {
		rundir = filepath.Dir(dumpPath)
	}

	dump, dc, err := store.Open(dumpPath, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	defer func() { _ = dc.Close() }()

	grids, gc, err := store.Open(filepath.Join(rundir, gridsFile), backend)
	if err != nil {
		return nil, fmt.Errorf("failed to open grids: %w", err)
	}
	defer func() { _ = gc.Close() }()

	masks, mc, err := store.Open(filepath.Join(rundir, masksFile), backend)
	if err != nil {
		return nil, fmt.Errorf("failed to open masks: %w", err)
	}
	defer func() { _ = mc.Close() }()

	return Reshape(dump, grids, masks, grid)
}

// Reshape lays out every data variable of dump as (time, ny, nx) over the
// dimensions of the grid mask. Masked cells (mask != 0) become NaN. The
// grid latitude and longitude are attached as coordinates lat and lon with
// their axis attribute set.
func Reshape(dump, grids, masks domain.Dataset, grid string) (*memory.Dataset, error) {
	mask, maskVals, err := read(masks, grid+".msk")
	if err != nil {
		return nil, err
	}
	if mask.Rank() != 2 {
		return nil, fmt.Errorf("mask %s.msk has %d dimensions, expected 2", grid, mask.Rank())
	}
	lat, latVals, err := read(grids, grid+".lat")
	if err != nil {
		return nil, err
	}
	lon, lonVals, err := read(grids, grid+".lon")
	if err != nil {
		return nil, err
	}
	for _, c := range []*domain.Variable{lat, lon} {
		if !sameShape(c.Shape, mask.Shape) {
			return nil, fmt.Errorf("%s has shape %v, mask has %v", c.Name, c.Shape, mask.Shape)
		}
	}
	tm, timeVals, err := read(dump, timeVar)
	if err != nil {
		return nil, err
	}
	if tm.Rank() != 1 {
		return nil, fmt.Errorf("time has %d dimensions, expected 1", tm.Rank())
	}

	nt := tm.Shape[0]
	ny, nx := mask.Shape[0], mask.Shape[1]
	out := memory.New(map[string]int{
		timeVar:      nt,
		mask.Dims[0]: ny,
		mask.Dims[1]: nx,
	})

	if err := out.Add(timeVar, []string{timeVar}, timeVals, tm.Attrs); err != nil {
		return nil, err
	}
	latAttrs := lat.Attrs.Clone()
	latAttrs[domain.AttrAxis] = "Y"
	if err := out.Add(latVar, mask.Dims, latVals, latAttrs); err != nil {
		return nil, err
	}
	lonAttrs := lon.Attrs.Clone()
	lonAttrs[domain.AttrAxis] = "X"
	if err := out.Add(lonVar, mask.Dims, lonVals, lonAttrs); err != nil {
		return nil, err
	}

	names, err := domain.DataVariables(dump, 0)
	if err != nil {
		return nil, err
	}
	dims := []string{timeVar, mask.Dims[0], mask.Dims[1]}
	for _, name := range names {
		v, vals, err := read(dump, name)
		if err != nil {
			return nil, err
		}
		if v.Size() != nt*ny*nx {
			return nil, fmt.Errorf("cannot reshape %s of size %d to (%d, %d, %d)", name, v.Size(), nt, ny, nx)
		}
		// The mask repeats for every time step.
		for i := range vals.Elements {
			if maskVals.Elements[i%(ny*nx)] != 0 {
				vals.Elements[i] = math.NaN()
			}
		}
		attrs := v.Attrs.Clone()
		delete(attrs, domain.AttrCoordinates)
		if err := out.Add(name, dims, vals, attrs); err != nil {
			return nil, err
		}
	}

	if err := out.SetCoords(latVar, lonVar); err != nil {
		return nil, err
	}
	return out, nil
}

func read(ds domain.Dataset, name string) (*domain.Variable, *sparse.DenseArray, error) {
	v, err := ds.Variable(name)
	if err != nil {
		return nil, nil, err
	}
	vals, err := ds.Values(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return v, vals, nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
