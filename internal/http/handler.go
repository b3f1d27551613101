package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ctessum/sparse"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go.ngs.io/ncview/internal/domain"
	"go.ngs.io/ncview/internal/usecase"
)

// Handler serves the viewer API over one dataset. Every request builds its
// own viewer session, so the handler holds no per-client state.
type Handler struct {
	ds  domain.Dataset
	log logrus.FieldLogger
}

// NewHandler creates a new HTTP handler.
func NewHandler(ds domain.Dataset, log logrus.FieldLogger) *Handler {
	return &Handler{ds: ds, log: log}
}

// ArrayResponse is an n-dimensional array in row-major order. NaN and
// infinite values are encoded as null.
type ArrayResponse struct {
	Shape  []int      `json:"shape"`
	Values []*float64 `json:"values"`
}

// PassiveResponse describes a slider dimension.
type PassiveResponse struct {
	Name  string   `json:"name"`
	Size  int      `json:"size"`
	Index int      `json:"index"`
	Value *float64 `json:"value"`
}

// VariableResponse describes a variable and its default view.
type VariableResponse struct {
	Name       string            `json:"name"`
	Dims       []string          `json:"dims"`
	Shape      []int             `json:"shape"`
	Attrs      map[string]any    `json:"attrs"`
	UsableDims []string          `json:"usable_dims"`
	Lat        string            `json:"lat,omitempty"`
	Lon        string            `json:"lon,omitempty"`
	X          string            `json:"x"`
	Y          string            `json:"y"`
	Passive    []PassiveResponse `json:"passive"`
}

// PlotResponse is a plot-ready 2D slice.
type PlotResponse struct {
	Variable  string         `json:"variable"`
	X         string         `json:"x"`
	Y         string         `json:"y"`
	Values    ArrayResponse  `json:"values"`
	XEdges    ArrayResponse  `json:"x_edges"`
	YEdges    ArrayResponse  `json:"y_edges"`
	Min       *float64       `json:"min"`
	Max       *float64       `json:"max"`
	Projected bool           `json:"projected"`
	Index     map[string]int `json:"index"`
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListVariables handles GET /v1/variables.
func (h *Handler) ListVariables(c *gin.Context) {
	roles, err := domain.ClassifyVars(h.ds)
	if err != nil {
		h.writeError(c, err)
		return
	}
	plottable, err := usecase.PlottableVariables(h.ds)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variables":   nonNil(plottable),
		"data":        nonNil(roles.Data.Sorted()),
		"coordinates": nonNil(roles.Coords.Sorted()),
		"bounds":      nonNil(roles.Bounds.Sorted()),
		"dims":        h.ds.Dims(),
	})
}

// GetVariable handles GET /v1/variables/:name.
func (h *Handler) GetVariable(c *gin.Context) {
	v, err := h.viewer(c.Param("name"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	passive, err := v.Passive()
	if err != nil {
		h.writeError(c, err)
		return
	}

	sel := v.Selected()
	x, y := v.Axes()
	lat, lon := v.Geo()
	resp := VariableResponse{
		Name:       sel.Name,
		Dims:       sel.Dims,
		Shape:      sel.Shape,
		Attrs:      attrsResponse(sel.Attrs),
		UsableDims: nonNil(v.Usable()),
		Lat:        lat,
		Lon:        lon,
		X:          x,
		Y:          y,
		Passive:    passiveResponse(passive),
	}
	c.JSON(http.StatusOK, resp)
}

// GetBounds handles GET /v1/variables/:name/bounds/:coord. The coordinate
// must be attached to the variable.
func (h *Handler) GetBounds(c *gin.Context) {
	name, coord := c.Param("name"), c.Param("coord")
	v, err := domain.DataVariable(h.ds, name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if _, ok := v.Coord(coord); !ok {
		h.writeError(c, fmt.Errorf("%w: %s is not a coordinate of %s", domain.ErrVariableNotFound, coord, name))
		return
	}
	edges, err := domain.ResolveBounds(h.ds, coord)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"coordinate": coord,
		"edges":      arrayResponse(edges),
	})
}

// GetPlot handles GET /v1/plot?var=NAME&x=X&y=Y&index[DIM]=I&value[DIM]=V.
func (h *Handler) GetPlot(c *gin.Context) {
	name := c.Query("var")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "var parameter is required"})
		return
	}
	v, err := h.viewer(name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	x, y := c.Query("x"), c.Query("y")
	if x != "" || y != "" {
		dx, dy := v.Axes()
		if x == "" {
			x = dx
		}
		if y == "" {
			y = dy
		}
		if err := v.SetAxes(x, y); err != nil {
			h.writeError(c, err)
			return
		}
	}

	for dim, s := range c.QueryMap("index") {
		i, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid index for %s: %v", dim, err)})
			return
		}
		if err := v.SetIndex(dim, i); err != nil {
			h.writeError(c, err)
			return
		}
	}
	for dim, s := range c.QueryMap("value") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid value for %s: %v", dim, err)})
			return
		}
		if err := v.SetValue(dim, f); err != nil {
			h.writeError(c, err)
			return
		}
	}

	p, err := v.Plot()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PlotResponse{
		Variable:  p.Variable,
		X:         p.X,
		Y:         p.Y,
		Values:    arrayResponse(p.Values),
		XEdges:    arrayResponse(p.XEdges),
		YEdges:    arrayResponse(p.YEdges),
		Min:       nullable(p.Min),
		Max:       nullable(p.Max),
		Projected: p.Projected,
		Index:     p.Index,
	})
}

func (h *Handler) viewer(name string) (*usecase.Viewer, error) {
	return usecase.NewViewerFor(h.ds, h.log, name)
}

// writeError maps domain and viewer errors to HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		ambiguous   *domain.AmbiguousAxisError
		malformed   *domain.MalformedBoundsError
		unsupported *domain.UnsupportedRankError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrVariableNotFound):
		status = http.StatusNotFound
	case errors.As(err, &ambiguous), errors.As(err, &malformed), errors.As(err, &unsupported):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrInvalidAxis),
		errors.Is(err, usecase.ErrInvalidIndex),
		errors.Is(err, usecase.ErrIncompatibleAxes),
		errors.Is(err, usecase.ErrNoVariable),
		errors.Is(err, usecase.ErrNoCoordinateValue):
		status = http.StatusBadRequest
	default:
		h.log.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err,
		}).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func arrayResponse(a *sparse.DenseArray) ArrayResponse {
	out := ArrayResponse{
		Shape:  a.Shape,
		Values: make([]*float64, len(a.Elements)),
	}
	for i, f := range a.Elements {
		out.Values[i] = nullable(f)
	}
	return out
}

// attrsResponse makes numeric attributes JSON safe.
func attrsResponse(attrs domain.Attrs) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if f, ok := v.([]float64); ok {
			vals := make([]*float64, len(f))
			for i, x := range f {
				vals[i] = nullable(x)
			}
			out[k] = vals
			continue
		}
		out[k] = v
	}
	return out
}

func passiveResponse(dims []usecase.PassiveDim) []PassiveResponse {
	out := make([]PassiveResponse, len(dims))
	for i, d := range dims {
		out[i] = PassiveResponse{Name: d.Name, Size: d.Size, Index: d.Index}
		if d.HasValue {
			out[i].Value = nullable(d.Value)
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
