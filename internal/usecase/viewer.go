package usecase

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"go.ngs.io/ncview/internal/domain"
)

// Errors returned for invalid viewer requests.
var (
	ErrNoVariable        = errors.New("no variable selected")
	ErrInvalidAxis       = errors.New("invalid axis")
	ErrInvalidIndex      = errors.New("invalid index")
	ErrIncompatibleAxes  = errors.New("incompatible axes")
	ErrNoCoordinateValue = errors.New("dimension has no coordinate values")
)

// minPlotRank is the lowest rank of the variables offered for plotting.
const minPlotRank = 2

// PassiveDim is a dimension of the selected variable that is not plotted
// and is scrubbed with a slider instead.
type PassiveDim struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Index int    `json:"index"`

	// Value is the coordinate value at Index, if the dimension has a
	// coordinate variable.
	Value    float64 `json:"-"`
	HasValue bool    `json:"-"`
}

// Plot is a 2D slice of the selected variable, ready for a pcolormesh
// style renderer.
type Plot struct {
	Variable string
	X, Y     string

	// Values holds the slice with rows along Y and columns along X.
	Values *sparse.DenseArray

	// XEdges and YEdges are the cell edges of the axes, or their cell
	// centers when the coordinate has no bounds. 2D axes have the layout
	// of Values.
	XEdges, YEdges *sparse.DenseArray

	// Min and Max bound the finite values of the slice; NaN if there are
	// none.
	Min, Max float64

	// Projected is set when X and Y are the longitude and latitude of the
	// variable.
	Projected bool

	Index map[string]int
}

// Viewer is a headless viewer session over one dataset. It holds the
// selected variable, the plot axes and the slider positions of the other
// dimensions. A Viewer is not safe for concurrent use.
type Viewer struct {
	ds  domain.Dataset
	log logrus.FieldLogger

	variable *domain.Variable
	usable   domain.DimSet
	lat, lon string
	x, y     string
	index    map[string]int
}

// NewViewer creates a viewer and selects the first plottable variable.
func NewViewer(ds domain.Dataset, log logrus.FieldLogger) (*Viewer, error) {
	v := newViewer(ds, log)
	names, err := v.Variables()
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		if err := v.SelectVariable(names[0]); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// NewViewerFor creates a viewer with name selected and its default axes.
func NewViewerFor(ds domain.Dataset, log logrus.FieldLogger, name string) (*Viewer, error) {
	v := newViewer(ds, log)
	if err := v.SelectVariable(name); err != nil {
		return nil, err
	}
	return v, nil
}

func newViewer(ds domain.Dataset, log logrus.FieldLogger) *Viewer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Viewer{ds: ds, log: log, index: make(map[string]int)}
}

// PlottableVariables lists the data variables of ds of rank two or more.
func PlottableVariables(ds domain.Dataset) ([]string, error) {
	return domain.DataVariables(ds, minPlotRank)
}

// Variables lists the plottable variables of the dataset.
func (v *Viewer) Variables() ([]string, error) {
	return PlottableVariables(v.ds)
}

// Selected returns the selected variable with its attached coordinates, or
// nil.
func (v *Viewer) Selected() *domain.Variable {
	return v.variable
}

// Usable returns the axis candidates of the selected variable.
func (v *Viewer) Usable() domain.DimSet {
	return v.usable
}

// Axes returns the current x and y axes.
func (v *Viewer) Axes() (x, y string) {
	return v.x, v.y
}

// Geo returns the identified latitude and longitude coordinates, empty if
// there are none.
func (v *Viewer) Geo() (lat, lon string) {
	return v.lat, v.lon
}

// SelectVariable makes name the plotted variable. When the new variable
// has the same axis candidates as the previous one the axes and slider
// positions are kept.
func (v *Viewer) SelectVariable(name string) error {
	variable, err := domain.DataVariable(v.ds, name)
	if err != nil {
		return err
	}
	usable := domain.UsableDims(variable)

	lat, err := domain.IdentifyLat(variable)
	if err != nil {
		v.log.WithFields(logrus.Fields{
			"variable": name,
			"error":    err,
		}).Warn("cannot identify latitude")
		lat = ""
	}
	lon, err := domain.IdentifyLon(variable)
	if err != nil {
		v.log.WithFields(logrus.Fields{
			"variable": name,
			"error":    err,
		}).Warn("cannot identify longitude")
		lon = ""
	}

	keep := v.variable != nil && usable.Equal(v.usable)
	v.variable = variable
	v.usable = usable
	v.lat, v.lon = lat, lon

	if keep {
		v.clampIndex()
		v.log.WithFields(logrus.Fields{"variable": name}).Debug("kept axes and slider positions")
		return nil
	}

	v.index = make(map[string]int)
	v.x, v.y = v.defaultAxes()
	v.log.WithFields(logrus.Fields{
		"variable": name,
		"x":        v.x,
		"y":        v.y,
	}).Debug("selected variable")
	return nil
}

// defaultAxes plots longitude against latitude when both are known, and
// otherwise the last two dimensions of the variable.
func (v *Viewer) defaultAxes() (x, y string) {
	if v.lon != "" && v.lat != "" && v.usable.Contains(v.lon) && v.usable.Contains(v.lat) {
		return v.lon, v.lat
	}
	var own []string
	for _, d := range v.variable.Dims {
		if v.usable.Contains(d) {
			own = append(own, d)
		}
	}
	switch len(own) {
	case 0:
		return "", ""
	case 1:
		return own[0], ""
	}
	return own[len(own)-1], own[len(own)-2]
}

func (v *Viewer) clampIndex() {
	for d, i := range v.index {
		n, ok := v.variable.DimSize(d)
		switch {
		case !ok:
			delete(v.index, d)
		case i >= n:
			v.index[d] = n - 1
		}
	}
}

// SetAxes sets the plot axes. Both must be axis candidates of the selected
// variable and differ.
func (v *Viewer) SetAxes(x, y string) error {
	if v.variable == nil {
		return ErrNoVariable
	}
	for _, a := range []string{x, y} {
		if !v.usable.Contains(a) {
			return fmt.Errorf("%w: %q is not a dimension of %s", ErrInvalidAxis, a, v.variable.Name)
		}
	}
	if x == y {
		return fmt.Errorf("%w: x and y are both %q", ErrInvalidAxis, x)
	}
	v.x, v.y = x, y
	return nil
}

// axisDims returns the variable dimensions spanned by an axis.
func (v *Viewer) axisDims(axis string) []string {
	if c, ok := v.variable.Coord(axis); ok {
		return c.Dims
	}
	if v.variable.HasDim(axis) {
		return []string{axis}
	}
	return nil
}

// Passive returns the slider dimensions: dimensions of the selected
// variable of size greater than one that the axes do not span.
func (v *Viewer) Passive() ([]PassiveDim, error) {
	if v.variable == nil {
		return nil, ErrNoVariable
	}
	covered := map[string]bool{}
	for _, a := range []string{v.x, v.y} {
		for _, d := range v.axisDims(a) {
			covered[d] = true
		}
	}

	var out []PassiveDim
	for i, d := range v.variable.Dims {
		n := v.variable.Shape[i]
		if covered[d] || n <= 1 {
			continue
		}
		p := PassiveDim{Name: d, Size: n, Index: v.index[d]}
		val, ok, err := v.coordinateValue(d, p.Index)
		if err != nil {
			return nil, err
		}
		p.Value, p.HasValue = val, ok
		out = append(out, p)
	}
	return out, nil
}

// dimensionCoordinate returns the 1D coordinate variable of dim.
func (v *Viewer) dimensionCoordinate(dim string) (*domain.Variable, bool) {
	c, ok := v.variable.Coord(dim)
	if !ok || c.Rank() != 1 || c.Dims[0] != dim {
		return nil, false
	}
	return c, true
}

func (v *Viewer) coordinateValue(dim string, i int) (float64, bool, error) {
	if _, ok := v.dimensionCoordinate(dim); !ok {
		return 0, false, nil
	}
	vals, err := v.ds.Values(dim)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read %s: %w", dim, err)
	}
	return vals.Elements[i], true, nil
}

// SetIndex moves the slider of dim to position i.
func (v *Viewer) SetIndex(dim string, i int) error {
	if v.variable == nil {
		return ErrNoVariable
	}
	n, ok := v.variable.DimSize(dim)
	if !ok {
		return fmt.Errorf("%w: %s has no dimension %q", ErrInvalidIndex, v.variable.Name, dim)
	}
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %s index %d out of range [0, %d)", ErrInvalidIndex, dim, i, n)
	}
	v.index[dim] = i
	return nil
}

// SetValue moves the slider of dim to the coordinate value closest to
// value.
func (v *Viewer) SetValue(dim string, value float64) error {
	if v.variable == nil {
		return ErrNoVariable
	}
	if _, ok := v.dimensionCoordinate(dim); !ok {
		return fmt.Errorf("%w: %s", ErrNoCoordinateValue, dim)
	}
	vals, err := v.ds.Values(dim)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dim, err)
	}
	best, dist := -1, math.Inf(1)
	for i, c := range vals.Elements {
		if d := math.Abs(c - value); d < dist {
			best, dist = i, d
		}
	}
	if best < 0 {
		return fmt.Errorf("%w: no finite %s value near %g", ErrInvalidIndex, dim, value)
	}
	return v.SetIndex(dim, best)
}

// Plot extracts the current 2D slice of the selected variable.
func (v *Viewer) Plot() (*Plot, error) {
	if v.variable == nil {
		return nil, ErrNoVariable
	}
	if v.x == "" || v.y == "" {
		return nil, fmt.Errorf("%w: %s needs two axes", ErrIncompatibleAxes, v.variable.Name)
	}
	xDims, yDims := v.axisDims(v.x), v.axisDims(v.y)

	// Rows follow y and columns follow x. For 2D axes both span the same
	// dimension pair, laid out as the x coordinate.
	var rowDim, colDim string
	transposeY := false
	switch {
	case len(xDims) == 1 && len(yDims) == 1 && xDims[0] != yDims[0]:
		rowDim, colDim = yDims[0], xDims[0]
	case len(xDims) == 2 && len(yDims) == 2 && xDims[0] != xDims[1] &&
		domain.DimSet(xDims).Equal(domain.DimSet(yDims)):
		rowDim, colDim = xDims[0], xDims[1]
		transposeY = yDims[0] != xDims[0]
	default:
		return nil, fmt.Errorf("%w: x %q spans %v and y %q spans %v", ErrIncompatibleAxes, v.x, xDims, v.y, yDims)
	}

	values, err := v.slice(rowDim, colDim)
	if err != nil {
		return nil, err
	}
	xEdges, err := v.edges(v.x, colDim)
	if err != nil {
		return nil, err
	}
	yEdges, err := v.edges(v.y, rowDim)
	if err != nil {
		return nil, err
	}
	if transposeY {
		yEdges = transpose(yEdges)
	}

	p := &Plot{
		Variable:  v.variable.Name,
		X:         v.x,
		Y:         v.y,
		Values:    values,
		XEdges:    xEdges,
		YEdges:    yEdges,
		Projected: v.lon != "" && v.lat != "" && v.x == v.lon && v.y == v.lat,
		Index:     make(map[string]int),
	}
	p.Min, p.Max = finiteRange(values.Elements)
	for _, d := range v.variable.Dims {
		if d != rowDim && d != colDim {
			p.Index[d] = v.index[d]
		}
	}
	return p, nil
}

// slice reads the selected variable and extracts the rowDim x colDim plane
// at the current slider positions.
func (v *Viewer) slice(rowDim, colDim string) (*sparse.DenseArray, error) {
	all, err := v.ds.Values(v.variable.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", v.variable.Name, err)
	}
	rowPos, colPos := -1, -1
	idx := make([]int, v.variable.Rank())
	for i, d := range v.variable.Dims {
		switch d {
		case rowDim:
			rowPos = i
		case colDim:
			colPos = i
		default:
			if v.variable.Shape[i] == 0 {
				return nil, fmt.Errorf("%w: dimension %s is empty", ErrInvalidIndex, d)
			}
			idx[i] = v.index[d]
		}
	}
	if rowPos < 0 || colPos < 0 {
		return nil, fmt.Errorf("%w: %s does not span %s and %s", ErrIncompatibleAxes, v.variable.Name, rowDim, colDim)
	}

	nr, nc := v.variable.Shape[rowPos], v.variable.Shape[colPos]
	out := sparse.ZerosDense(nr, nc)
	if nr == 0 || nc == 0 {
		return out, nil
	}
	for r := 0; r < nr; r++ {
		idx[rowPos] = r
		for c := 0; c < nc; c++ {
			idx[colPos] = c
			out.Elements[r*nc+c] = all.Elements[all.Index1d(idx...)]
		}
	}
	return out, nil
}

// edges returns the cell edges of an axis. A dimension without a variable
// is numbered by position.
func (v *Viewer) edges(axis, dim string) (*sparse.DenseArray, error) {
	if _, ok := v.variable.Coord(axis); ok {
		return domain.ResolveBounds(v.ds, axis)
	}
	n, _ := v.variable.DimSize(dim)
	out := sparse.ZerosDense(n)
	for i := range out.Elements {
		out.Elements[i] = float64(i)
	}
	return out, nil
}

func transpose(a *sparse.DenseArray) *sparse.DenseArray {
	nr, nc := a.Shape[0], a.Shape[1]
	out := sparse.ZerosDense(nc, nr)
	for r := 0; r < nr; r++ {
		for c := 0; c < nc; c++ {
			out.Elements[c*nr+r] = a.Elements[r*nc+c]
		}
	}
	return out
}

// finiteRange returns the smallest and largest finite values, or NaN twice.
func finiteRange(vals []float64) (lo, hi float64) {
	finite := make([]float64, 0, len(vals))
	for _, x := range vals {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			finite = append(finite, x)
		}
	}
	if len(finite) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(finite), floats.Max(finite)
}
