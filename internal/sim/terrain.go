// Package sim is a reference simulation collaborator: it consumes a
// scenario request and produces a tick-by-tick playback result.
package sim

// Map is the frozen occupancy grid, indexed [y][x]. 1 = wall.
type Map struct {
	grid   [][]int
	width  int
	height int
}

// NewMap copies occupancy. Ragged rows are padded as walls.
func NewMap(occupancy [][]int) *Map {
	m := &Map{height: len(occupancy)}
	if m.height > 0 {
		m.width = len(occupancy[0])
	}
	m.grid = make([][]int, m.height)
	for y, row := range occupancy {
		m.grid[y] = make([]int, m.width)
		for x := 0; x < m.width; x++ {
			if x >= len(row) || row[x] != 0 {
				m.grid[y][x] = 1
			}
		}
	}
	return m
}

// Width returns the column count.
func (m *Map) Width() int { return m.width }

// Height returns the row count.
func (m *Map) Height() int { return m.height }

// IsFree reports whether (x,y) is inside the map and not a wall.
func (m *Map) IsFree(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.grid[y][x] == 0
}

// Occupancy returns a copy of the grid.
func (m *Map) Occupancy() [][]int {
	out := make([][]int, m.height)
	for y := range m.grid {
		out[y] = append([]int(nil), m.grid[y]...)
	}
	return out
}

// Line returns the Bresenham cells from (x0,y0) to (x1,y1), both ends
// included.
func Line(x0, y0, x1, y1 int) [][2]int {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	pts := make([][2]int, 0, max(dx, dy)+1)
	x, y := x0, y0
	if dx > dy {
		err := float64(dx) / 2
		for x != x1 {
			pts = append(pts, [2]int{x, y})
			err -= float64(dy)
			if err < 0 {
				y += sy
				err += float64(dx)
			}
			x += sx
		}
	} else {
		err := float64(dy) / 2
		for y != y1 {
			pts = append(pts, [2]int{x, y})
			err -= float64(dx)
			if err < 0 {
				x += sx
				err += float64(dy)
			}
			y += sy
		}
	}
	return append(pts, [2]int{x1, y1})
}

// LineOfSight reports whether every cell after the origin on the line to
// (bx,by) is free.
func (m *Map) LineOfSight(ax, ay, bx, by int) bool {
	for _, p := range Line(ax, ay, bx, by)[1:] {
		if !m.IsFree(p[0], p[1]) {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
