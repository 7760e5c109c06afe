package geom

import (
	"image"
	"math"
)

// Point is a position. Point[int] is used for logical layout
// coordinates and Point[float64] for cursor coordinates.
type Point[T Scalar] struct {
	X, Y T
}

func Pt[T Scalar](X, Y T) Point[T] {
	return Point[T]{X, Y}
}

func FromImagePoint(p image.Point) Point[int] {
	return Pt(p.X, p.Y)
}

// PConv converts a Point[In] to a Point[Out]. Conversions from
// floating point truncate toward zero.
func PConv[Out Scalar, In Scalar](p Point[In]) Point[Out] {
	return Pt(Out(p.X), Out(p.Y))
}

// Add returns p moved by d.
func (p Point[T]) Add(d Displacement[T]) Point[T] {
	return Point[T]{p.X + d.DX, p.Y + d.DY}
}

// Sub returns p moved by the inverse of d.
func (p Point[T]) Sub(d Displacement[T]) Point[T] {
	return Point[T]{p.X - d.DX, p.Y - d.DY}
}

// Diff returns the displacement that moves q to p.
func (p Point[T]) Diff(q Point[T]) Displacement[T] {
	return Displacement[T]{p.X - q.X, p.Y - q.Y}
}

// AsDisplacement returns the displacement from the origin to p.
func (p Point[T]) AsDisplacement() Displacement[T] {
	return Displacement[T]{p.X, p.Y}
}

// Scale multiplies both coordinates by f, truncating toward zero.
func (p Point[T]) Scale(f float32) Point[T] {
	return Point[T]{T(float32(p.X) * f), T(float32(p.Y) * f)}
}

// In reports whether p is inside r.
func (p Point[T]) In(r Rectangle) bool {
	return r.Contains(PConv[int](p))
}

func (p Point[T]) IsZero() bool {
	return (p.X == 0) && (p.Y == 0)
}

func (p Point[T]) ImagePoint() image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

// Displacement is the vector difference between two points or two
// sizes.
type Displacement[T Scalar] struct {
	DX, DY T
}

func Disp[T Scalar](dx, dy T) Displacement[T] {
	return Displacement[T]{dx, dy}
}

// DConv converts a Displacement[In] to a Displacement[Out].
// Conversions from floating point truncate toward zero.
func DConv[Out Scalar, In Scalar](d Displacement[In]) Displacement[Out] {
	return Disp(Out(d.DX), Out(d.DY))
}

func (d Displacement[T]) Add(d2 Displacement[T]) Displacement[T] {
	return Displacement[T]{d.DX + d2.DX, d.DY + d2.DY}
}

func (d Displacement[T]) Sub(d2 Displacement[T]) Displacement[T] {
	return Displacement[T]{d.DX - d2.DX, d.DY - d2.DY}
}

func (d Displacement[T]) Neg() Displacement[T] {
	return Displacement[T]{-d.DX, -d.DY}
}

// Length returns the euclidean length of d.
func (d Displacement[T]) Length() float64 {
	return math.Hypot(float64(d.DX), float64(d.DY))
}

func (d Displacement[T]) IsZero() bool {
	return (d.DX == 0) && (d.DY == 0)
}
