// Package layout provides utilities to help with laying out
// rectangles inside of other rectangles.
package layout

import "deedles.dev/wlral/geom"

// hsplit splits a rectangle into two rectangles arranged
// horizontally.
func hsplit(r geom.Rectangle, w int) (left, right geom.Rectangle) {
	left = r.WithSize(r.Size.WithWidth(w))
	right = geom.RectAt(r.TopLeft.Add(geom.Disp(w, 0)), r.Size.WithWidth(r.Width()-w))
	return left, right
}

func hsplitHalf(r geom.Rectangle) (left, right geom.Rectangle) {
	return hsplit(r, r.Width()/2)
}

// vsplit splits a rectangle into two rectangles arranged vertically.
func vsplit(r geom.Rectangle, h int) (top, bottom geom.Rectangle) {
	top = r.WithSize(r.Size.WithHeight(h))
	bottom = geom.RectAt(r.TopLeft.Add(geom.Disp(0, h)), r.Size.WithHeight(r.Height()-h))
	return top, bottom
}

func vsplitHalf(r geom.Rectangle) (top, bottom geom.Rectangle) {
	return vsplit(r, r.Height()/2)
}

// RightThenDown produces a series of n rectangles the union of which
// recomposes r. The rectangles are produced by splitting the
// right-most and then the bottom-most rectangles in half recursively.
// In other words,
//
//	RightThenDown(r, 4)
//
// will produce
//
//	------------
//	|    |     |
//	|    -------
//	|    |  |  |
//	------------
func RightThenDown(r geom.Rectangle, n int) []geom.Rectangle {
	if n <= 0 {
		return nil
	}

	tiles := make([]geom.Rectangle, n)
	tiles[0] = r

	split, next := hsplitHalf, vsplitHalf
	for i := 1; i < len(tiles); i++ {
		tiles[i-1], tiles[i] = split(tiles[i-1])
		split, next = next, split
	}
	return tiles
}

// TwoThirdsSidebar produces a series of n rectangles where the first
// is two-thirds the width of r and the rest are arranged vertically in
// an even split in the remaining space.
func TwoThirdsSidebar(r geom.Rectangle, n int) []geom.Rectangle {
	switch n {
	case 0:
		return nil
	case 1:
		return []geom.Rectangle{r}
	}

	main, rem := hsplit(r, 2*r.Width()/3)
	return append([]geom.Rectangle{main}, EvenVertically(rem, n-1)...)
}

// EvenVertically produces a series of n rectangles that comprise an
// even, vertical splitting of r. In other words,
//
//	EvenVertically(r, 3)
//
// will produce
//
//	----------
//	|        |
//	----------
//	|        |
//	----------
//	|        |
//	----------
//
// Any height left over by the division is given to the last
// rectangle.
func EvenVertically(r geom.Rectangle, n int) []geom.Rectangle {
	if n <= 0 {
		return nil
	}

	tiles := make([]geom.Rectangle, n)
	h := r.Height() / n
	c, _ := vsplit(r, h)
	for i := range tiles {
		tiles[i] = c
		c = c.Add(geom.Disp(0, h))
	}
	last := &tiles[n-1]
	last.Size.Height = r.Bottom() - last.Top()
	return tiles
}

// Align shifts the specified edges of inner to align with the
// corresponding edges of outer, stretching the rectangle as
// necessary if opposite edges are specified. Unanchored axes are
// centered.
func Align(outer, inner geom.Rectangle, edges geom.Edges) geom.Rectangle {
	inner = inner.CenterAt(outer.Center())
	switch {
	case edges&geom.EdgeTop != 0:
		inner.TopLeft.Y = outer.Top()
		if edges&geom.EdgeBottom != 0 {
			inner.Size.Height = outer.Height()
		}
	case edges&geom.EdgeBottom != 0:
		inner.TopLeft.Y = outer.Bottom() - inner.Height()
	}
	switch {
	case edges&geom.EdgeLeft != 0:
		inner.TopLeft.X = outer.Left()
		if edges&geom.EdgeRight != 0 {
			inner.Size.Width = outer.Width()
		}
	case edges&geom.EdgeRight != 0:
		inner.TopLeft.X = outer.Right() - inner.Width()
	}

	return inner
}

// Center returns a rectangle of the given size centered in outer.
func Center(outer geom.Rectangle, size geom.Size) geom.Rectangle {
	return geom.RectAt(outer.TopLeft.Add(outer.Size.Sub(size).Div(2).AsDisplacement()), size)
}
