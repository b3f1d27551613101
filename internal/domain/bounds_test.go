package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go.ngs.io/ncview/internal/adapter/store/memory"
	"go.ngs.io/ncview/internal/domain"
)

// boundsDataset holds a 1D coordinate x with [x, b] bounds and a 2D
// coordinate c whose corner bounds sit first, as [cn, x, y].
func boundsDataset(t *testing.T) *memory.Dataset {
	t.Helper()
	ds := memory.New(map[string]int{"x": 2, "y": 2, "b": 2, "cn": 4})
	require.NoError(t, ds.Add("a", []string{"x", "y"}, nil, nil))
	require.NoError(t, ds.Add("x", []string{"x"}, memory.Array([]int{2}, 1, 2), domain.Attrs{"bounds": "x_b"}))
	require.NoError(t, ds.Add("x_b", []string{"x", "b"}, memory.Array([]int{2, 2}, 0.5, 1.5, 1.5, 2.5), nil))
	require.NoError(t, ds.Add("c", []string{"x", "y"}, memory.Array([]int{2, 2}, 1, 2, 1, 2), domain.Attrs{"bounds": "c_b"}))
	// Corners are c-0.5, c+0.5, c+0.5, c-0.5.
	require.NoError(t, ds.Add("c_b", []string{"cn", "x", "y"}, memory.Array([]int{4, 2, 2},
		0.5, 1.5, 0.5, 1.5,
		1.5, 2.5, 1.5, 2.5,
		1.5, 2.5, 1.5, 2.5,
		0.5, 1.5, 0.5, 1.5,
	), nil))
	return ds
}

func TestResolveBounds_1D(t *testing.T) {
	ds := boundsDataset(t)

	edges, err := domain.ResolveBounds(ds, "x")
	require.NoError(t, err)
	require.Equal(t, []int{3}, edges.Shape)
	require.Equal(t, []float64{0.5, 1.5, 2.5}, edges.Elements)
}

func TestResolveBounds_2DCornerFirst(t *testing.T) {
	ds := boundsDataset(t)

	edges, err := domain.ResolveBounds(ds, "c")
	require.NoError(t, err)
	require.Equal(t, []int{3, 3}, edges.Shape)
	require.Equal(t, []float64{
		0.5, 1.5, 2.5,
		0.5, 1.5, 2.5,
		0.5, 1.5, 2.5,
	}, edges.Elements)
}

func TestResolveBounds_2DCornerLast(t *testing.T) {
	// Each vertex value encodes 100*vertex + 10*i + j, so every edge shows
	// which cell and corner it was taken from.
	const n, m = 2, 3
	ds := memory.New(map[string]int{"j": n, "i": m, "nv": 4})
	require.NoError(t, ds.Add("lon", []string{"j", "i"}, nil, domain.Attrs{"bounds": "lon_bnds"}))
	vals := make([]float64, 0, n*m*4)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			for k := 0; k < 4; k++ {
				vals = append(vals, float64(100*k+10*i+j))
			}
		}
	}
	require.NoError(t, ds.Add("lon_bnds", []string{"j", "i", "nv"}, memory.Array([]int{n, m, 4}, vals...), nil))

	edges, err := domain.ResolveBounds(ds, "lon")
	require.NoError(t, err)
	require.Equal(t, []int{n + 1, m + 1}, edges.Shape)
	require.Equal(t, []float64{
		0, 1, 2, 102,
		10, 11, 12, 112,
		310, 311, 312, 212,
	}, edges.Elements)
}

func TestResolveBounds_NoBoundsAttribute(t *testing.T) {
	ds := boundsDataset(t)
	require.NoError(t, ds.Add("t", []string{"y"}, memory.Array([]int{2}, 7, 8), nil))

	edges, err := domain.ResolveBounds(ds, "t")
	require.NoError(t, err)
	require.Equal(t, []float64{7, 8}, edges.Elements)
}

func TestResolveBounds_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*memory.Dataset) error
		coord  string
		reason string
	}{
		{
			name: "three vertices for a 2D coordinate",
			setup: func(ds *memory.Dataset) error {
				if err := ds.AddDim("v3", 3); err != nil {
					return err
				}
				if err := ds.Add("c_b3", []string{"x", "y", "v3"}, nil, nil); err != nil {
					return err
				}
				return ds.SetAttr("c", "bounds", "c_b3")
			},
			coord:  "c",
			reason: "expected 4",
		},
		{
			name: "three vertices for a 1D coordinate",
			setup: func(ds *memory.Dataset) error {
				if err := ds.AddDim("v3", 3); err != nil {
					return err
				}
				if err := ds.Add("x_b3", []string{"x", "v3"}, nil, nil); err != nil {
					return err
				}
				return ds.SetAttr("x", "bounds", "x_b3")
			},
			coord:  "x",
			reason: "expected 2",
		},
		{
			name: "four vertices for a 1D coordinate",
			setup: func(ds *memory.Dataset) error {
				if err := ds.Add("x_b4", []string{"x", "cn"}, nil, nil); err != nil {
					return err
				}
				return ds.SetAttr("x", "bounds", "x_b4")
			},
			coord:  "x",
			reason: "expected 2",
		},
		{
			name: "missing bounds variable",
			setup: func(ds *memory.Dataset) error {
				return ds.SetAttr("x", "bounds", "nope")
			},
			coord:  "x",
			reason: "not found",
		},
		{
			name: "missing coordinate dimension",
			setup: func(ds *memory.Dataset) error {
				if err := ds.Add("c_by", []string{"y", "b"}, nil, nil); err != nil {
					return err
				}
				return ds.SetAttr("x", "bounds", "c_by")
			},
			coord:  "x",
			reason: `missing coordinate dimension "x"`,
		},
		{
			name: "two extra dimensions",
			setup: func(ds *memory.Dataset) error {
				if err := ds.Add("x_bb", []string{"x", "b", "cn"}, nil, nil); err != nil {
					return err
				}
				return ds.SetAttr("x", "bounds", "x_bb")
			},
			coord:  "x",
			reason: "exactly one bound dimension",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := boundsDataset(t)
			require.NoError(t, tt.setup(ds))

			_, err := domain.ResolveBounds(ds, tt.coord)
			var malformed *domain.MalformedBoundsError
			require.ErrorAs(t, err, &malformed)
			require.Equal(t, tt.coord, malformed.Coordinate)
			require.Contains(t, malformed.Reason, tt.reason)
		})
	}
}

func TestResolveBounds_UnsupportedRank(t *testing.T) {
	ds := memory.New(map[string]int{"x": 2, "y": 2, "z": 2, "nv": 8})
	require.NoError(t, ds.Add("h", []string{"x", "y", "z"}, nil, domain.Attrs{"bounds": "h_b"}))
	require.NoError(t, ds.Add("h_b", []string{"x", "y", "z", "nv"}, nil, nil))

	_, err := domain.ResolveBounds(ds, "h")
	var unsupported *domain.UnsupportedRankError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, 3, unsupported.Rank)
}

func TestResolveBounds_NotFound(t *testing.T) {
	ds := boundsDataset(t)
	_, err := domain.ResolveBounds(ds, "missing")
	require.ErrorIs(t, err, domain.ErrVariableNotFound)
}
