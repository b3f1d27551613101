package domain

// maxAxisRank is the highest coordinate rank that can be plotted
// (flat or 2D curvilinear axes).
const maxAxisRank = 2

// DimSet is an ordered set of axis candidate names. Order only matters for
// presentation; equality is by membership.
type DimSet []string

// Contains reports whether name is in the set.
func (s DimSet) Contains(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// Equal reports whether s and o hold the same names, ignoring order.
func (s DimSet) Equal(o DimSet) bool {
	a := make(map[string]struct{}, len(s))
	for _, n := range s {
		a[n] = struct{}{}
	}
	b := make(map[string]struct{}, len(o))
	for _, n := range o {
		b[n] = struct{}{}
	}
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if _, ok := b[n]; !ok {
			return false
		}
	}
	return true
}

// UsableDims returns the axis candidates of v: its own dimensions followed
// by its attached coordinates, dropping degenerate candidates (size 1 along
// every axis) and candidates of rank greater than two.
func UsableDims(v *Variable) DimSet {
	out := DimSet{}
	add := func(name string, shape []int) {
		if out.Contains(name) || len(shape) > maxAxisRank || degenerate(shape) {
			return
		}
		out = append(out, name)
	}

	for i, d := range v.Dims {
		if c, ok := v.Coord(d); ok {
			add(d, c.Shape)
			continue
		}
		add(d, []int{v.Shape[i]})
	}
	for _, c := range v.Coords {
		add(c.Name, c.Shape)
	}
	return out
}

func degenerate(shape []int) bool {
	for _, n := range shape {
		if n != 1 {
			return false
		}
	}
	return true
}
