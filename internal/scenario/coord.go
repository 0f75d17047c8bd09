package scenario

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord addresses a grid cell.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Key returns the "<row>-<col>" string used as a route origin key on the wire.
func (c Coord) Key() string {
	return strconv.Itoa(c.Row) + "-" + strconv.Itoa(c.Col)
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// ParseKey parses a "<row>-<col>" key. Negative components are rejected.
func ParseKey(key string) (Coord, error) {
	rowStr, colStr, ok := strings.Cut(key, "-")
	if !ok {
		return Coord{}, fmt.Errorf("route key %q: missing separator", key)
	}
	row, err := strconv.Atoi(rowStr)
	if err != nil || row < 0 {
		return Coord{}, fmt.Errorf("route key %q: bad row", key)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 0 {
		return Coord{}, fmt.Errorf("route key %q: bad col", key)
	}
	return Coord{Row: row, Col: col}, nil
}
