package playback

import "math"

// CellView is one reconstructed cell at a given tick.
type CellView struct {
	Wall      bool
	Attackers []Entity
	Defenders []Entity
}

// Empty reports whether nothing is drawn in the cell.
func (c CellView) Empty() bool {
	return !c.Wall && len(c.Attackers) == 0 && len(c.Defenders) == 0
}

// Glyph returns a single-rune rendering of the cell. Walls win over any
// entity placed on them. Live entities show an 8-way heading arrow, dead
// ones an 'x'. Live entities are drawn before dead ones, attackers first.
func (c CellView) Glyph() rune {
	if c.Wall {
		return '#'
	}
	for _, group := range [][]Entity{c.Attackers, c.Defenders} {
		for _, e := range group {
			if e.Alive {
				return HeadingArrow(e.Orientation)
			}
		}
	}
	if len(c.Attackers)+len(c.Defenders) > 0 {
		return 'x'
	}
	return '.'
}

var arrows = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

// HeadingArrow maps an orientation (0 = +x, π/2 = +y/down) to the nearest
// of eight arrows.
func HeadingArrow(orientation float64) rune {
	if math.IsNaN(orientation) || math.IsInf(orientation, 0) {
		return arrows[0]
	}
	a := math.Mod(orientation, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	idx := int(math.Round(a/(math.Pi/4))) % len(arrows)
	return arrows[idx]
}

// SpatialGrid is the per-tick view indexed [row][col].
type SpatialGrid struct {
	Index int // clamped index into Result.States
	Cells [][]CellView
}

// Rows returns the grid height.
func (g SpatialGrid) Rows() int { return len(g.Cells) }

// Cols returns the grid width.
func (g SpatialGrid) Cols() int {
	if len(g.Cells) == 0 {
		return 0
	}
	return len(g.Cells[0])
}

// At returns the cell at (row, col), or an empty view out of range.
func (g SpatialGrid) At(row, col int) CellView {
	if row < 0 || row >= len(g.Cells) || col < 0 || col >= len(g.Cells[row]) {
		return CellView{}
	}
	return g.Cells[row][col]
}

// ReconstructTick builds the spatial grid for tickIndex, which is clamped
// into range. Entities outside the map are dropped. The result shares no
// memory with r.
func ReconstructTick(r *Result, tickIndex int) SpatialGrid {
	rows, cols := r.Rows(), r.Cols()
	g := SpatialGrid{Index: r.ClampTick(tickIndex), Cells: make([][]CellView, rows)}
	for row := 0; row < rows; row++ {
		g.Cells[row] = make([]CellView, cols)
		for col := 0; col < cols; col++ {
			g.Cells[row][col].Wall = r.IsWall(row, col)
		}
	}
	snap, ok := r.Snapshot(tickIndex)
	if !ok {
		return g
	}
	for _, e := range snap.Attackers {
		if e.Y >= 0 && e.Y < rows && e.X >= 0 && e.X < cols {
			g.Cells[e.Y][e.X].Attackers = append(g.Cells[e.Y][e.X].Attackers, e)
		}
	}
	for _, e := range snap.Defenders {
		if e.Y >= 0 && e.Y < rows && e.X >= 0 && e.X < cols {
			g.Cells[e.Y][e.X].Defenders = append(g.Cells[e.Y][e.X].Defenders, e)
		}
	}
	return g
}
