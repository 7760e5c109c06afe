package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectangleOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		r, s     Rectangle
		expected bool
	}{
		{
			name:     "identical",
			r:        Rect(0, 0, 10, 10),
			s:        Rect(0, 0, 10, 10),
			expected: true,
		},
		{
			name:     "partial",
			r:        Rect(0, 0, 10, 10),
			s:        Rect(5, 5, 10, 10),
			expected: true,
		},
		{
			name:     "contained",
			r:        Rect(0, 0, 100, 100),
			s:        Rect(40, 40, 10, 10),
			expected: true,
		},
		{
			name:     "touching right edge",
			r:        Rect(0, 0, 10, 10),
			s:        Rect(10, 0, 10, 10),
			expected: false,
		},
		{
			name:     "touching bottom edge",
			r:        Rect(0, 0, 10, 10),
			s:        Rect(0, 10, 10, 10),
			expected: false,
		},
		{
			name:     "touching corner",
			r:        Rect(0, 0, 10, 10),
			s:        Rect(10, 10, 10, 10),
			expected: false,
		},
		{
			name:     "disjoint",
			r:        Rect(0, 0, 10, 10),
			s:        Rect(-50, -50, 10, 10),
			expected: false,
		},
		{
			name:     "empty",
			r:        Rect(0, 0, 10, 10),
			s:        Rect(5, 5, 0, 0),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.r.Overlaps(tt.s))
			assert.Equal(t, tt.expected, tt.s.Overlaps(tt.r), "overlap should be symmetric")
		})
	}
}

func TestRectangleOverlapsItself(t *testing.T) {
	for _, r := range []Rectangle{
		Rect(0, 0, 1, 1),
		Rect(-100, -100, 50, 20),
		Rect(1920, 0, 2560, 1440),
	} {
		assert.True(t, r.Overlaps(r), "%v", r)
	}
}

func TestRectangleEdges(t *testing.T) {
	r := Rect(10, 20, 30, 40)
	assert.Equal(t, 10, r.Left())
	assert.Equal(t, 20, r.Top())
	assert.Equal(t, 40, r.Right())
	assert.Equal(t, 60, r.Bottom())
	assert.Equal(t, Pt(40, 60), r.BottomRight())
	assert.Equal(t, Pt(25, 40), r.Center())
}

func TestRectangleContains(t *testing.T) {
	r := Rect(0, 0, 10, 10)
	assert.True(t, r.Contains(Pt(0, 0)))
	assert.True(t, r.Contains(Pt(9, 9)))
	assert.False(t, r.Contains(Pt(10, 5)))
	assert.False(t, r.Contains(Pt(5, 10)))
	assert.False(t, r.Contains(Pt(-1, 0)))
}

func TestRectangleIntersectUnion(t *testing.T) {
	r := Rect(0, 0, 10, 10)
	s := Rect(5, 5, 10, 10)
	assert.Equal(t, Rect(5, 5, 5, 5), r.Intersect(s))
	assert.Equal(t, Rect(0, 0, 15, 15), r.Union(s))
	assert.True(t, r.Intersect(Rect(20, 20, 1, 1)).Empty())
	assert.Equal(t, r, r.Union(Rectangle{}))
}

func TestRectangleClosestIn(t *testing.T) {
	outer := Rect(0, 0, 100, 100)
	assert.Equal(t, Rect(0, 10, 20, 20), Rect(-5, 10, 20, 20).ClosestIn(outer))
	assert.Equal(t, Rect(80, 80, 20, 20), Rect(90, 95, 20, 20).ClosestIn(outer))
	assert.Equal(t, Rect(10, 10, 20, 20), Rect(10, 10, 20, 20).ClosestIn(outer))
	assert.Equal(t, Rectangle{}, Rect(0, 0, 200, 20).ClosestIn(outer))
}

func TestRectangleAddSub(t *testing.T) {
	r := Rect(1, 2, 3, 4)
	d := Disp(10, -10)
	assert.Equal(t, Rect(11, -8, 3, 4), r.Add(d))
	assert.Equal(t, r, r.Add(d).Sub(d))
}
