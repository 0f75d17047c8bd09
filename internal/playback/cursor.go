package playback

// Cursor is the externally controlled tick index for one Result. Every
// mutation keeps the index inside [0, len(States)-1].
type Cursor struct {
	result *Result
	index  int
}

// NewCursor returns a cursor at the first tick of r.
func NewCursor(r *Result) *Cursor {
	return &Cursor{result: r}
}

// Index returns the current tick index.
func (c *Cursor) Index() int { return c.index }

// Len returns the number of ticks.
func (c *Cursor) Len() int { return len(c.result.States) }

// Set moves to i, clamped. Returns the new index.
func (c *Cursor) Set(i int) int {
	c.index = c.result.ClampTick(i)
	return c.index
}

// Step moves by delta ticks, clamped.
func (c *Cursor) Step(delta int) int { return c.Set(c.index + delta) }

// First rewinds to tick 0.
func (c *Cursor) First() int { return c.Set(0) }

// Last jumps to the final tick.
func (c *Cursor) Last() int { return c.Set(len(c.result.States) - 1) }

// AtEnd reports whether the cursor is on the final tick.
func (c *Cursor) AtEnd() bool { return c.index >= len(c.result.States)-1 }

// View reconstructs the grid at the cursor.
func (c *Cursor) View() SpatialGrid { return ReconstructTick(c.result, c.index) }
