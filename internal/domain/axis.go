package domain

// AxisRole is the geographic role of a coordinate variable.
type AxisRole int

const (
	// AxisNone is a coordinate that is neither latitude nor longitude.
	AxisNone AxisRole = iota
	// AxisLatitude is a latitude coordinate.
	AxisLatitude
	// AxisLongitude is a longitude coordinate.
	AxisLongitude
)

func (r AxisRole) String() string {
	switch r {
	case AxisLatitude:
		return "latitude"
	case AxisLongitude:
		return "longitude"
	default:
		return "none"
	}
}

// Recognized CF units for latitude and longitude coordinates.
var (
	latUnits = map[string]struct{}{
		"degrees_north": {},
		"degrees_N":     {},
		"degreesN":      {},
		"degree_north":  {},
		"degree_N":      {},
		"degreeN":       {},
	}
	lonUnits = map[string]struct{}{
		"degrees_east": {},
		"degrees_E":    {},
		"degreesE":     {},
		"degree_east":  {},
		"degree_E":     {},
		"degreeE":      {},
	}
)

type axisRule struct {
	role         AxisRole
	axis         string
	standardName string
	units        map[string]struct{}
}

var (
	latRule = axisRule{role: AxisLatitude, axis: "Y", standardName: "latitude", units: latUnits}
	lonRule = axisRule{role: AxisLongitude, axis: "X", standardName: "longitude", units: lonUnits}
)

func (r axisRule) matches(attrs Attrs) bool {
	if s, ok := attrs.String(AttrAxis); ok && s == r.axis {
		return true
	}
	if s, ok := attrs.String(AttrStandardName); ok && s == r.standardName {
		return true
	}
	if s, ok := attrs.String(AttrUnits); ok {
		if _, found := r.units[s]; found {
			return true
		}
	}
	return false
}

// ClassifyAxis returns the geographic role of a single coordinate variable.
// A coordinate matching both rules is reported as latitude.
func ClassifyAxis(coord *Variable) AxisRole {
	switch {
	case latRule.matches(coord.Attrs):
		return AxisLatitude
	case lonRule.matches(coord.Attrs):
		return AxisLongitude
	default:
		return AxisNone
	}
}

// IdentifyLat returns the name of the coordinate of v that represents
// latitude, or "" if there is none.
func IdentifyLat(v *Variable) (string, error) {
	return identify(v, latRule)
}

// IdentifyLon returns the name of the coordinate of v that represents
// longitude, or "" if there is none.
func IdentifyLon(v *Variable) (string, error) {
	return identify(v, lonRule)
}

func identify(v *Variable, rule axisRule) (string, error) {
	var found []string
	for _, c := range v.Coords {
		if rule.matches(c.Attrs) {
			found = append(found, c.Name)
		}
	}
	switch len(found) {
	case 0:
		return "", nil
	case 1:
		return found[0], nil
	default:
		return "", &AmbiguousAxisError{Variable: v.Name, Axis: rule.role, Candidates: found}
	}
}
