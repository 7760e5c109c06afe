package geom

// Size is the width and height of a logical area.
type Size struct {
	Width, Height int
}

func Sz(width, height int) Size {
	return Size{width, height}
}

func (s Size) Add(s2 Size) Size {
	return Size{s.Width + s2.Width, s.Height + s2.Height}
}

func (s Size) Sub(s2 Size) Size {
	return Size{s.Width - s2.Width, s.Height - s2.Height}
}

// Scale multiplies s by f. The result is truncated toward zero, so
// fractional scale factors can drift by up to a pixel.
func (s Size) Scale(f float32) Size {
	return Size{int(float32(s.Width) * f), int(float32(s.Height) * f)}
}

// Div divides s by f, truncating toward zero.
func (s Size) Div(f float32) Size {
	return Size{int(float32(s.Width) / f), int(float32(s.Height) / f)}
}

func (s Size) WithWidth(width int) Size {
	s.Width = width
	return s
}

func (s Size) WithHeight(height int) Size {
	s.Height = height
	return s
}

// AsDisplacement returns the displacement from a rectangle's top-left
// corner to its bottom-right corner.
func (s Size) AsDisplacement() Displacement[int] {
	return Displacement[int]{s.Width, s.Height}
}

// Empty reports whether s has no area.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Clamp returns s limited to the range [min, max]. Zero components of
// max are treated as unlimited.
func (s Size) Clamp(min, max Size) Size {
	if max.Width > 0 && s.Width > max.Width {
		s.Width = max.Width
	}
	if max.Height > 0 && s.Height > max.Height {
		s.Height = max.Height
	}
	if s.Width < min.Width {
		s.Width = min.Width
	}
	if s.Height < min.Height {
		s.Height = min.Height
	}
	return s
}
