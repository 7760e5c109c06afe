// Package geom provides the value types used to describe positions and
// areas in the compositor's logical coordinate space.
//
// Logical coordinates are ints. Cursor coordinates are float64 and are
// converted to logical coordinates by truncation toward zero.
package geom

import "golang.org/x/exp/constraints"

// Scalar is a constraint for the types that geom types and functions
// can handle.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// Edges is a bitmask of rectangle edges. The values match wlroots'
// wlr_edges so that they can be converted directly.
type Edges uint32

const (
	EdgeNone   Edges = 0
	EdgeTop    Edges = 1 << 0
	EdgeBottom Edges = 1 << 1
	EdgeLeft   Edges = 1 << 2
	EdgeRight  Edges = 1 << 3

	EdgeAll = EdgeTop | EdgeBottom | EdgeLeft | EdgeRight
)

// Has returns true if all of the edges in e2 are set in e.
func (e Edges) Has(e2 Edges) bool {
	return e&e2 == e2
}

func (e Edges) String() string {
	if e == EdgeNone {
		return "none"
	}

	var s string
	add := func(edge Edges, name string) {
		if e&edge == 0 {
			return
		}
		if s != "" {
			s += "|"
		}
		s += name
	}
	add(EdgeTop, "top")
	add(EdgeBottom, "bottom")
	add(EdgeLeft, "left")
	add(EdgeRight, "right")
	return s
}
