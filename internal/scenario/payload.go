package scenario

import (
	"fmt"
)

// DefaultWaypointInterval is the simulation-tick spacing stamped on every waypoint.
const DefaultWaypointInterval = 10

// Position is an actor start as [x=col, y=row, orientation].
type Position [3]float64

// X returns the column.
func (p Position) X() int { return int(p[0]) }

// Y returns the row.
func (p Position) Y() int { return int(p[1]) }

// Orientation returns the heading in radians.
func (p Position) Orientation() float64 { return p[2] }

// Waypoint is one timed route point.
type Waypoint struct {
	Coord    Coord `json:"coord"`
	TickTime int   `json:"tickTime"`
}

// ScenarioRequest is the payload submitted to the simulation collaborator.
type ScenarioRequest struct {
	Grid              [][]int               `json:"grid"`
	AttackerPositions []Position            `json:"attacker_positions"`
	DefenderPositions []Position            `json:"defender_positions"`
	AttackerParams    FactionParams         `json:"attacker_params"`
	DefenderParams    FactionParams         `json:"defender_params"`
	RouteData         map[string][]Waypoint `json:"route_data"`
}

// Serialize snapshots the editor state into a request. It reads only its
// arguments; a non-positive interval falls back to DefaultWaypointInterval.
func Serialize(g *Grid, routes *RouteMap, attacker, defender FactionParams, interval int) ScenarioRequest {
	if interval <= 0 {
		interval = DefaultWaypointInterval
	}
	req := ScenarioRequest{
		Grid:              make([][]int, g.Rows()),
		AttackerPositions: []Position{},
		DefenderPositions: []Position{},
		AttackerParams:    attacker,
		DefenderParams:    defender,
		RouteData:         map[string][]Waypoint{},
	}
	for r := 0; r < g.Rows(); r++ {
		row := make([]int, g.Cols())
		for c := 0; c < g.Cols(); c++ {
			cell := g.At(r, c)
			switch cell.Kind {
			case CellWall:
				row[c] = 1
			case CellPlayer:
				req.AttackerPositions = append(req.AttackerPositions, Position{float64(c), float64(r), cell.Orientation})
			case CellDefender:
				req.DefenderPositions = append(req.DefenderPositions, Position{float64(c), float64(r), cell.Orientation})
			}
		}
		req.Grid[r] = row
	}
	if routes != nil {
		for _, origin := range routes.Origins() {
			wps, _ := routes.Get(origin)
			out := make([]Waypoint, len(wps))
			for i, wp := range wps {
				out[i] = Waypoint{Coord: wp, TickTime: interval}
			}
			req.RouteData[origin.Key()] = out
		}
	}
	return req
}

// Rows returns the occupancy row count.
func (r ScenarioRequest) Rows() int { return len(r.Grid) }

// Cols returns the occupancy column count (0 for an empty grid).
func (r ScenarioRequest) Cols() int {
	if len(r.Grid) == 0 {
		return 0
	}
	return len(r.Grid[0])
}

// Validate checks the request is self-consistent: rectangular binary
// occupancy, actors inside the grid and off walls, params in range.
func (r ScenarioRequest) Validate() error {
	if len(r.Grid) == 0 || len(r.Grid[0]) == 0 {
		return fmt.Errorf("scenario: empty occupancy grid")
	}
	cols := len(r.Grid[0])
	for i, row := range r.Grid {
		if len(row) != cols {
			return fmt.Errorf("scenario: row %d has %d cols, want %d", i, len(row), cols)
		}
		for j, v := range row {
			if v != 0 && v != 1 {
				return fmt.Errorf("scenario: occupancy (%d,%d)=%d is not binary", i, j, v)
			}
		}
	}
	check := func(side string, ps []Position) error {
		for i, p := range ps {
			x, y := p.X(), p.Y()
			if y < 0 || y >= len(r.Grid) || x < 0 || x >= cols {
				return fmt.Errorf("scenario: %s %d at (%d,%d) outside grid", side, i, x, y)
			}
			if r.Grid[y][x] == 1 {
				return fmt.Errorf("scenario: %s %d at (%d,%d) on a wall", side, i, x, y)
			}
		}
		return nil
	}
	if err := check("attacker", r.AttackerPositions); err != nil {
		return err
	}
	if err := check("defender", r.DefenderPositions); err != nil {
		return err
	}
	if err := r.AttackerParams.Validate(); err != nil {
		return fmt.Errorf("scenario: attacker_params: %w", err)
	}
	if err := r.DefenderParams.Validate(); err != nil {
		return fmt.Errorf("scenario: defender_params: %w", err)
	}
	for key := range r.RouteData {
		if _, err := ParseKey(key); err != nil {
			return fmt.Errorf("scenario: %w", err)
		}
	}
	return nil
}
