package oasis

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/stretchr/testify/require"

	"go.ngs.io/ncview/internal/adapter/store"
	"go.ngs.io/ncview/internal/adapter/store/cdf/cdftest"
	"go.ngs.io/ncview/internal/adapter/store/memory"
	"go.ngs.io/ncview/internal/domain"
)

// Grid "torc" has 2 rows and 3 columns; the middle column is land.
var torcMask = []float64{0, 1, 0, 0, 1, 0}

func gridFixtures(t *testing.T) (grids, masks *memory.Dataset) {
	t.Helper()
	dims := map[string]int{"y_torc": 2, "x_torc": 3}
	grids = memory.New(dims)
	require.NoError(t, grids.Add("torc.lat", []string{"y_torc", "x_torc"},
		memory.Array([]int{2, 3}, -10, -10, -10, 10, 10, 10), domain.Attrs{"units": "degrees_north"}))
	require.NoError(t, grids.Add("torc.lon", []string{"y_torc", "x_torc"},
		memory.Array([]int{2, 3}, 100, 110, 120, 100, 110, 120), nil))
	masks = memory.New(dims)
	require.NoError(t, masks.Add("torc.msk", []string{"y_torc", "x_torc"}, memory.Array([]int{2, 3}, torcMask...), nil))
	return grids, masks
}

func dumpFixture(t *testing.T, points int) *memory.Dataset {
	t.Helper()
	dump := memory.New(map[string]int{"time": 2, "nx": points, "ny": 1})
	require.NoError(t, dump.Add("time", []string{"time"}, memory.Array([]int{2}, 3600, 7200), domain.Attrs{"units": "seconds"}))
	vals := make([]float64, 2*points)
	for i := range vals {
		vals[i] = float64(i + 1)
	}
	require.NoError(t, dump.Add("SST", []string{"time", "ny", "nx"}, memory.Array([]int{2, 1, points}, vals...), domain.Attrs{"units": "K"}))
	return dump
}

func TestReshape(t *testing.T) {
	grids, masks := gridFixtures(t)
	dump := dumpFixture(t, 6)

	out, err := Reshape(dump, grids, masks, "torc")
	require.NoError(t, err)

	v, err := out.Variable("SST")
	require.NoError(t, err)
	require.Equal(t, []string{"time", "y_torc", "x_torc"}, v.Dims)
	require.Equal(t, []int{2, 2, 3}, v.Shape)

	vals, err := out.Values("SST")
	require.NoError(t, err)
	for i, got := range vals.Elements {
		if torcMask[i%6] != 0 {
			require.True(t, math.IsNaN(got), "cell %d should be masked", i)
			continue
		}
		require.Equal(t, float64(i+1), got)
	}

	lat, err := out.Variable("lat")
	require.NoError(t, err)
	require.Equal(t, "Y", lat.Attrs["axis"])
	require.Equal(t, "degrees_north", lat.Attrs["units"])
	require.Equal(t, []string{"lat", "lon"}, out.Coordinates())

	// The reshaped field is plottable over lon/lat.
	dv, err := domain.DataVariable(out, "SST")
	require.NoError(t, err)
	lonName, err := domain.IdentifyLon(dv)
	require.NoError(t, err)
	require.Equal(t, "lon", lonName)
	latName, err := domain.IdentifyLat(dv)
	require.NoError(t, err)
	require.Equal(t, "lat", latName)
}

func TestReshape_Mismatch(t *testing.T) {
	grids, masks := gridFixtures(t)
	dump := dumpFixture(t, 5)

	_, err := Reshape(dump, grids, masks, "torc")
	require.ErrorContains(t, err, "cannot reshape SST")

	_, err = Reshape(dumpFixture(t, 6), grids, masks, "bggd")
	require.ErrorIs(t, err, domain.ErrVariableNotFound)
}

func writeCDF(t *testing.T, path string, ds *memory.Dataset) {
	t.Helper()
	names := ds.DimNames()
	lengths := make([]int, len(names))
	for i, n := range names {
		lengths[i] = ds.Dims()[n]
	}
	h := cdf.NewHeader(names, lengths)
	for _, name := range ds.Variables() {
		v, err := ds.Variable(name)
		require.NoError(t, err)
		h.AddVariable(name, v.Dims, []float64{0})
	}
	h.Define()

	ff, err := os.Create(path)
	require.NoError(t, err)
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	require.NoError(t, err)
	for _, name := range ds.Variables() {
		vals, err := ds.Values(name)
		require.NoError(t, err)
		require.NoError(t, cdftest.Write(f, name, vals.Elements))
	}
}

func TestLoad_DefaultRundir(t *testing.T) {
	dir := t.TempDir()
	grids, masks := gridFixtures(t)
	writeCDF(t, filepath.Join(dir, "grids.nc"), grids)
	writeCDF(t, filepath.Join(dir, "masks.nc"), masks)
	dumpPath := filepath.Join(dir, "SST_torc_out.nc")
	writeCDF(t, dumpPath, dumpFixture(t, 6))

	out, err := Load(dumpPath, "", "torc", store.BackendCDF)
	require.NoError(t, err)
	require.Equal(t, 2, out.Dims()["time"])

	vals, err := out.Values("SST")
	require.NoError(t, err)
	require.Len(t, vals.Elements, 12)
	require.True(t, math.IsNaN(vals.Elements[1]))
	require.Equal(t, 12.0, vals.Elements[11])

	_, err = Load(dumpPath, filepath.Join(dir, "nope"), "torc", store.BackendCDF)
	require.ErrorContains(t, err, "grids")
}
