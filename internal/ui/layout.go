package ui

import "github.com/Garsondee/breach-planner/internal/scenario"

// borderWidth is the pixel gap between the window edge and the grid.
const borderWidth = 24

// panelWidth is the activity panel on the right of the grid.
const panelWidth = 380

// hudHeight is reserved under the grid for the status bar.
const hudHeight = 64

const (
	minCellSize = 8
	maxCellSize = 40
)

// gridLayout maps between screen pixels and grid cells. It is recomputed
// whenever the grid is resized.
type gridLayout struct {
	offX, offY int
	cell       int
	rows, cols int
}

// fitLayout fits a rows×cols grid into the space left of the panel and
// above the status bar, centred vertically.
func fitLayout(rows, cols, width, height int) gridLayout {
	availW := width - panelWidth - 2*borderWidth
	availH := height - hudHeight - 2*borderWidth
	cell := maxCellSize
	if cols > 0 && availW/cols < cell {
		cell = availW / cols
	}
	if rows > 0 && availH/rows < cell {
		cell = availH / rows
	}
	if cell < minCellSize {
		cell = minCellSize
	}
	l := gridLayout{offX: borderWidth, offY: borderWidth, cell: cell, rows: rows, cols: cols}
	if spare := availH - rows*cell; spare > 0 {
		l.offY += spare / 2
	}
	return l
}

// width and height are the grid's pixel extent.
func (l gridLayout) width() int  { return l.cols * l.cell }
func (l gridLayout) height() int { return l.rows * l.cell }

// cellAt returns the cell under pixel (x, y).
func (l gridLayout) cellAt(x, y int) (scenario.Coord, bool) {
	if x < l.offX || y < l.offY {
		return scenario.Coord{}, false
	}
	col := (x - l.offX) / l.cell
	row := (y - l.offY) / l.cell
	if row >= l.rows || col >= l.cols {
		return scenario.Coord{}, false
	}
	return scenario.Coord{Row: row, Col: col}, true
}

// origin returns the top-left pixel of a cell.
func (l gridLayout) origin(c scenario.Coord) (float32, float32) {
	return float32(l.offX + c.Col*l.cell), float32(l.offY + c.Row*l.cell)
}

// center returns the centre pixel of a cell.
func (l gridLayout) center(c scenario.Coord) (float32, float32) {
	x, y := l.origin(c)
	half := float32(l.cell) / 2
	return x + half, y + half
}
