package geom

import "image"

// A Rectangle is an area of the logical layout described by its
// top-left corner and its size. It contains the points with
// Left() <= X < Right() and Top() <= Y < Bottom().
type Rectangle struct {
	TopLeft Point[int]
	Size    Size
}

// Rect is shorthand for Rectangle{Pt(x, y), Sz(width, height)}.
func Rect(x, y, width, height int) Rectangle {
	return Rectangle{Pt(x, y), Sz(width, height)}
}

// RectAt returns a rectangle of the given size with its top-left
// corner at p.
func RectAt(p Point[int], size Size) Rectangle {
	return Rectangle{p, size}
}

func FromImageRect(r image.Rectangle) Rectangle {
	return Rect(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

func (r Rectangle) Left() int {
	return r.TopLeft.X
}

func (r Rectangle) Top() int {
	return r.TopLeft.Y
}

func (r Rectangle) Right() int {
	return r.TopLeft.X + r.Size.Width
}

func (r Rectangle) Bottom() int {
	return r.TopLeft.Y + r.Size.Height
}

func (r Rectangle) Width() int {
	return r.Size.Width
}

func (r Rectangle) Height() int {
	return r.Size.Height
}

func (r Rectangle) BottomRight() Point[int] {
	return r.TopLeft.Add(r.Size.AsDisplacement())
}

// Center returns the point at the middle of r.
func (r Rectangle) Center() Point[int] {
	return r.TopLeft.Add(r.Size.Div(2).AsDisplacement())
}

// Add returns r moved by d.
func (r Rectangle) Add(d Displacement[int]) Rectangle {
	r.TopLeft = r.TopLeft.Add(d)
	return r
}

// Sub returns r moved by the inverse of d.
func (r Rectangle) Sub(d Displacement[int]) Rectangle {
	r.TopLeft = r.TopLeft.Sub(d)
	return r
}

func (r Rectangle) WithTopLeft(p Point[int]) Rectangle {
	r.TopLeft = p
	return r
}

func (r Rectangle) WithSize(size Size) Rectangle {
	r.Size = size
	return r
}

// CenterAt returns a rectangle with the same size as r with its center
// at p.
func (r Rectangle) CenterAt(p Point[int]) Rectangle {
	r.TopLeft = p.Sub(r.Size.Div(2).AsDisplacement())
	return r
}

func (r Rectangle) Empty() bool {
	return r.Size.Empty()
}

// Contains reports whether p is inside r.
func (r Rectangle) Contains(p Point[int]) bool {
	return r.Left() <= p.X && p.X < r.Right() &&
		r.Top() <= p.Y && p.Y < r.Bottom()
}

// Overlaps reports whether r and s share any area. Rectangles that
// only touch along an edge or at a corner do not overlap.
func (r Rectangle) Overlaps(s Rectangle) bool {
	return !r.Empty() && !s.Empty() &&
		r.Left() < s.Right() && s.Left() < r.Right() &&
		r.Top() < s.Bottom() && s.Top() < r.Bottom()
}

// In reports whether every point of r is inside of s.
func (r Rectangle) In(s Rectangle) bool {
	if r.Empty() {
		return true
	}
	return s.Left() <= r.Left() && r.Right() <= s.Right() &&
		s.Top() <= r.Top() && r.Bottom() <= s.Bottom()
}

func (r Rectangle) Intersect(s Rectangle) Rectangle {
	left, top := max(r.Left(), s.Left()), max(r.Top(), s.Top())
	right, bottom := min(r.Right(), s.Right()), min(r.Bottom(), s.Bottom())
	if left >= right || top >= bottom {
		return Rectangle{}
	}
	return Rect(left, top, right-left, bottom-top)
}

func (r Rectangle) Union(s Rectangle) Rectangle {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	left, top := min(r.Left(), s.Left()), min(r.Top(), s.Top())
	right, bottom := max(r.Right(), s.Right()), max(r.Bottom(), s.Bottom())
	return Rect(left, top, right-left, bottom-top)
}

// ClosestIn returns r shifted to be inside of s at the closest
// possible point to its starting position. If r is already entirely
// inside of s, r is returned unchanged. If r can not fit entirely
// inside of s, the zero Rectangle is returned.
func (r Rectangle) ClosestIn(s Rectangle) Rectangle {
	if (r.Width() > s.Width()) || (r.Height() > s.Height()) {
		return Rectangle{}
	}

	switch {
	case r.Left() < s.Left():
		r.TopLeft.X = s.Left()
	case r.Right() > s.Right():
		r.TopLeft.X = s.Right() - r.Width()
	}
	switch {
	case r.Top() < s.Top():
		r.TopLeft.Y = s.Top()
	case r.Bottom() > s.Bottom():
		r.TopLeft.Y = s.Bottom() - r.Height()
	}

	return r
}

// Scale multiplies both the position and size of r by f, truncating
// toward zero.
func (r Rectangle) Scale(f float32) Rectangle {
	return Rectangle{r.TopLeft.Scale(f), r.Size.Scale(f)}
}

func (r Rectangle) ImageRect() image.Rectangle {
	return image.Rectangle{
		Min: r.TopLeft.ImagePoint(),
		Max: r.BottomRight().ImagePoint(),
	}
}
