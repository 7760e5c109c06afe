package util

import "deedles.dev/wlral/geom"

// Configures mints configure serials for a surface whose native
// object neither returns them nor reports which one a commit
// acknowledged. A commit is instead detected by watching the
// surface's committed geometry.
//
// A configure that asks for a size is acknowledged by the first
// observed geometry that has that size or that differs from the one
// before it. Configures that ask for no size are acknowledged
// immediately.
type Configures struct {
	serial uint32
	acked  uint32

	want  geom.Size
	sized bool

	last geom.Rectangle
}

// Next returns the serial of a configure that doesn't change the
// surface's size.
func (c *Configures) Next() uint32 {
	c.serial++
	if !c.sized {
		c.acked = c.serial
	}
	return c.serial
}

// NextSize returns the serial of a configure that asks the surface
// to take on size.
func (c *Configures) NextSize(size geom.Size) uint32 {
	c.want = size
	c.sized = true
	return c.Next()
}

// Pending reports whether a sized configure is waiting for a commit.
func (c *Configures) Pending() bool {
	return c.sized
}

// Observe records the surface's current committed geometry. It
// reports whether that geometry counts as a new commit and, if so,
// the last serial that the commit acknowledges.
func (c *Configures) Observe(g geom.Rectangle) (serial uint32, committed bool) {
	changed := g != c.last
	c.last = g

	if c.sized && (changed || (g.Size == c.want)) {
		c.sized = false
		c.acked = c.serial
		return c.acked, true
	}
	return c.acked, changed
}
