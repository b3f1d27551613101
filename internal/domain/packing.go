package domain

import "math"

// CF packing and missing data attributes.
const (
	AttrFillValue    = "_FillValue"
	AttrMissingValue = "missing_value"
	AttrScaleFactor  = "scale_factor"
	AttrAddOffset    = "add_offset"
)

// Unpack replaces fill and missing values with NaN and applies
// scale_factor and add_offset, in place. Fill values are compared against
// the packed data.
func (a Attrs) Unpack(values []float64) {
	var missing []float64
	for _, name := range []string{AttrFillValue, AttrMissingValue} {
		if f, ok := a.Float64s(name); ok && len(f) > 0 {
			missing = append(missing, f[0])
		}
	}

	scale, offset := 1.0, 0.0
	if f, ok := a.Float64s(AttrScaleFactor); ok && len(f) > 0 && f[0] != 0 {
		scale = f[0]
	}
	if f, ok := a.Float64s(AttrAddOffset); ok && len(f) > 0 {
		offset = f[0]
	}

	for i, v := range values {
		for _, m := range missing {
			if v == m {
				v = math.NaN()
				break
			}
		}
		values[i] = v*scale + offset
	}
}
