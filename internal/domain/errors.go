package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrVariableNotFound is returned when a dataset has no variable of the requested name.
var ErrVariableNotFound = errors.New("variable not found")

// AmbiguousAxisError reports that more than one coordinate of a variable
// matches the latitude (or longitude) criteria.
type AmbiguousAxisError struct {
	Variable   string
	Axis       AxisRole
	Candidates []string
}

func (e *AmbiguousAxisError) Error() string {
	return fmt.Sprintf("multiple potential %s dimensions for %s: %s",
		e.Axis, e.Variable, strings.Join(e.Candidates, ", "))
}

// MalformedBoundsError reports a bounds variable whose extra dimension is
// missing, duplicated or has the wrong size for the coordinate's rank.
type MalformedBoundsError struct {
	Coordinate string
	Bounds     string
	Reason     string
}

func (e *MalformedBoundsError) Error() string {
	return fmt.Sprintf("malformed bounds %q for coordinate %q: %s", e.Bounds, e.Coordinate, e.Reason)
}

// UnsupportedRankError reports a coordinate whose rank cannot be turned
// into cell edges.
type UnsupportedRankError struct {
	Coordinate string
	Rank       int
}

func (e *UnsupportedRankError) Error() string {
	return fmt.Sprintf("bounds for %dD coordinate %q are not supported", e.Rank, e.Coordinate)
}
