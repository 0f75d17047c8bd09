package scenario

// Grid dimension bounds, matching the editor sliders.
const (
	MinDim     = 5
	MaxDim     = 40
	DefaultDim = 20
)

// ClampDim forces a row or column count into [MinDim, MaxDim].
func ClampDim(n int) int {
	if n < MinDim {
		return MinDim
	}
	if n > MaxDim {
		return MaxDim
	}
	return n
}

// Grid is the authoritative rows×cols cell store being edited.
type Grid struct {
	rows  int
	cols  int
	cells []Cell // row-major: index = row*cols + col
}

// NewGrid creates an all-Empty grid. Dimensions are clamped to the editor bounds.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{}
	g.Resize(rows, cols)
	return g
}

// Resize replaces the grid wholesale with a fresh all-Empty grid. Prior
// content is discarded; routes that reference old cells are left to the caller.
func (g *Grid) Resize(rows, cols int) {
	g.rows = ClampDim(rows)
	g.cols = ClampDim(cols)
	g.cells = make([]Cell, g.rows*g.cols)
}

// Rows returns the row count.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the column count.
func (g *Grid) Cols() int { return g.cols }

// InBounds returns true if (row, col) addresses a cell.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// At returns the cell at (row, col); out of bounds reads as Empty.
func (g *Grid) At(row, col int) Cell {
	if !g.InBounds(row, col) {
		return Cell{}
	}
	return g.cells[row*g.cols+col]
}

// Set writes a cell, normalizing its orientation. Out of bounds is a no-op.
func (g *Grid) Set(row, col int, c Cell) {
	if !g.InBounds(row, col) {
		return
	}
	c.Orientation = NormalizeOrientation(c.Orientation)
	if c.Kind == CellEmpty {
		c.Orientation = 0
	}
	g.cells[row*g.cols+col] = c
}

// Paint applies a tool to one cell and returns the cell's previous value.
//   - eraser clears the cell;
//   - a painting tool on a cell of its own kind rotates it by RotationStep;
//   - otherwise the cell is overwritten with a fresh cell at orientation 0.
//
// Router never modifies cells. Removing a route for an erased player is the
// caller's job since the grid does not own routes.
func (g *Grid) Paint(row, col int, tool Tool) Cell {
	prev := g.At(row, col)
	if !g.InBounds(row, col) {
		return prev
	}
	if tool == ToolEraser {
		g.Set(row, col, Cell{})
		return prev
	}
	kind, ok := tool.paintKind()
	if !ok {
		return prev
	}
	if prev.Kind == kind {
		g.Set(row, col, prev.Rotated())
	} else {
		g.Set(row, col, Cell{Kind: kind})
	}
	return prev
}

// Count returns how many cells hold the given kind.
func (g *Grid) Count(kind CellKind) int {
	n := 0
	for _, c := range g.cells {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Layout returns a row-major copy of the cells as nested slices.
func (g *Grid) Layout() [][]Cell {
	out := make([][]Cell, g.rows)
	for r := 0; r < g.rows; r++ {
		row := make([]Cell, g.cols)
		copy(row, g.cells[r*g.cols:(r+1)*g.cols])
		out[r] = row
	}
	return out
}

// ReplaceLayout resizes the grid to rows×cols and copies cells in. Missing
// cells stay Empty and extra cells are ignored.
func (g *Grid) ReplaceLayout(rows, cols int, cells [][]Cell) {
	g.Resize(rows, cols)
	for r := 0; r < g.rows && r < len(cells); r++ {
		for c := 0; c < g.cols && c < len(cells[r]); c++ {
			g.Set(r, c, cells[r][c])
		}
	}
}
