package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go.ngs.io/ncview/internal/adapter/store/memory"
	"go.ngs.io/ncview/internal/domain"
)

func TestUsableDims(t *testing.T) {
	ds := memory.New(map[string]int{"x": 2, "y": 2, "z": 1, "t": 2})
	require.NoError(t, ds.Add("a", []string{"x", "y", "z", "t"}, nil, nil))
	require.NoError(t, ds.Add("lat", []string{"x", "y"}, nil, domain.Attrs{"axis": "Y"}))
	require.NoError(t, ds.Add("lon", []string{"x", "y"}, nil, domain.Attrs{"axis": "X"}))
	require.NoError(t, ds.Add("t", []string{"t"}, memory.Array([]int{2}, 1, 2), domain.Attrs{"axis": "T"}))
	require.NoError(t, ds.Add("z", []string{"z"}, memory.Array([]int{1}, 1), nil))
	require.NoError(t, ds.SetCoords("lat", "lon"))

	v, err := domain.DataVariable(ds, "a")
	require.NoError(t, err)

	dims := domain.UsableDims(v)
	require.Equal(t, domain.DimSet{"x", "y", "t", "lat", "lon"}, dims)
	require.False(t, dims.Contains("z"))
}

func TestUsableDims_NoCoordinates(t *testing.T) {
	ds := memory.New(map[string]int{"x": 2, "y": 2, "z": 1, "t": 2})
	require.NoError(t, ds.Add("a", []string{"x", "y", "z", "t"}, nil, nil))

	v, err := domain.DataVariable(ds, "a")
	require.NoError(t, err)
	require.Equal(t, domain.DimSet{"x", "y", "t"}, domain.UsableDims(v))
}

func TestUsableDims_DropsHighRankCoordinates(t *testing.T) {
	ds := memory.New(map[string]int{"x": 3, "y": 2, "t": 2})
	require.NoError(t, ds.Add("a", []string{"t", "y", "x"}, nil, nil))
	require.NoError(t, ds.Add("depth", []string{"t", "y", "x"}, nil, nil))
	require.NoError(t, ds.Add("one", []string{"y"}, nil, nil))
	require.NoError(t, ds.SetCoords("depth"))

	v, err := domain.DataVariable(ds, "a")
	require.NoError(t, err)
	require.Equal(t, domain.DimSet{"t", "y", "x"}, domain.UsableDims(v))
}

func TestDimSet_Equal(t *testing.T) {
	require.True(t, domain.DimSet{"x", "y", "t"}.Equal(domain.DimSet{"t", "x", "y"}))
	require.False(t, domain.DimSet{"x", "y"}.Equal(domain.DimSet{"x", "y", "t"}))
	require.False(t, domain.DimSet{"x", "y"}.Equal(domain.DimSet{"x", "z"}))
	require.True(t, domain.DimSet{}.Equal(nil))
}
