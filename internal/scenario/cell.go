package scenario

import (
	"encoding/json"
	"fmt"
	"math"
)

// CellKind identifies what occupies a grid cell.
type CellKind uint8

const (
	CellEmpty    CellKind = iota // Nothing painted
	CellWall                     // Blocks movement and sight
	CellPlayer                   // Attacker actor
	CellDefender                 // Defender actor
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellWall:
		return "wall"
	case CellPlayer:
		return "player"
	case CellDefender:
		return "defender"
	default:
		return "unknown"
	}
}

// ParseCellKind maps the wire type name back to a kind.
func ParseCellKind(s string) (CellKind, error) {
	switch s {
	case "wall":
		return CellWall, nil
	case "player":
		return CellPlayer, nil
	case "defender":
		return CellDefender, nil
	default:
		return CellEmpty, fmt.Errorf("unknown cell type %q", s)
	}
}

// RotationStep is the orientation advance applied when a tool repaints its own kind.
const RotationStep = math.Pi / 4

// Cell is one grid square. Orientation is in radians, [0, 2π), and is
// meaningful for actors; walls carry one too so repainting rotates them.
type Cell struct {
	Kind        CellKind
	Orientation float64
}

// IsActor reports whether the cell holds a player or defender.
func (c Cell) IsActor() bool {
	return c.Kind == CellPlayer || c.Kind == CellDefender
}

// Rotated returns the cell advanced by one RotationStep.
func (c Cell) Rotated() Cell {
	c.Orientation = NormalizeOrientation(c.Orientation + RotationStep)
	return c
}

// NormalizeOrientation wraps an angle into [0, 2π).
func NormalizeOrientation(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	// Mod can round up to exactly 2π for tiny negative inputs.
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// cellDoc is the wire form of a non-empty cell: {"type": ..., "orientation": ...}.
type cellDoc struct {
	Type        string   `json:"type"`
	Orientation *float64 `json:"orientation,omitempty"`
}

// MarshalJSON encodes Empty as null and everything else as a typed object.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Kind == CellEmpty {
		return []byte("null"), nil
	}
	o := c.Orientation
	return json.Marshal(cellDoc{Type: c.Kind.String(), Orientation: &o})
}

// UnmarshalJSON accepts null, a typed object, or the legacy bare "wall" marker.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cell{}
		return nil
	}
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		if bare != "wall" {
			return fmt.Errorf("unknown cell marker %q", bare)
		}
		*c = Cell{Kind: CellWall}
		return nil
	}
	var doc cellDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode cell: %w", err)
	}
	kind, err := ParseCellKind(doc.Type)
	if err != nil {
		return err
	}
	orient := 0.0
	if doc.Orientation != nil {
		orient = *doc.Orientation
	}
	*c = Cell{Kind: kind, Orientation: NormalizeOrientation(orient)}
	return nil
}
