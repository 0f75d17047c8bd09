package config

import (
	"fmt"

	"github.com/Garsondee/breach-planner/internal/scenario"
)

// ActorSpec places one actor at [row, col].
type ActorSpec struct {
	Pos         [2]int  `yaml:"pos"`
	Orientation float64 `yaml:"orientation"`
}

// RouteSpec is one attacker route; From must hold an attacker.
type RouteSpec struct {
	From      [2]int   `yaml:"from"`
	Waypoints [][2]int `yaml:"waypoints"`
}

// ScenarioConfig is a scripted layout for runs without the editor.
type ScenarioConfig struct {
	Rows             int         `yaml:"rows"`
	Cols             int         `yaml:"cols"`
	Walls            [][2]int    `yaml:"walls"`
	ScatterSeed      int64       `yaml:"scatter_seed"` // 0 = no procedural walls
	ScatterThreshold float64     `yaml:"scatter_threshold"`
	Attackers        []ActorSpec `yaml:"attackers"`
	Defenders        []ActorSpec `yaml:"defenders"`
	Routes           []RouteSpec `yaml:"routes"`
}

// DefaultScenario is a corridor breach: three attackers enter from the
// south-west through a gap in an east-west wall held by two defenders.
func DefaultScenario() ScenarioConfig {
	sc := ScenarioConfig{Rows: 20, Cols: 20, ScatterThreshold: scenario.DefaultScatterThreshold}
	for c := 0; c < 20; c++ {
		if c == 9 || c == 10 {
			continue
		}
		sc.Walls = append(sc.Walls, [2]int{8, c})
	}
	sc.Attackers = []ActorSpec{
		{Pos: [2]int{17, 2}, Orientation: 0},
		{Pos: [2]int{18, 3}, Orientation: 0},
		{Pos: [2]int{17, 4}, Orientation: 0},
	}
	sc.Defenders = []ActorSpec{
		{Pos: [2]int{3, 8}, Orientation: 1.5707963267948966},
		{Pos: [2]int{4, 13}, Orientation: 1.5707963267948966},
	}
	sc.Routes = []RouteSpec{
		{From: [2]int{17, 2}, Waypoints: [][2]int{{12, 9}, {7, 9}, {3, 6}}},
		{From: [2]int{17, 4}, Waypoints: [][2]int{{12, 10}, {7, 10}, {4, 12}}},
	}
	return sc
}

// Validate checks every placement fits the declared grid.
func (s ScenarioConfig) Validate() error {
	if s.Rows < scenario.MinDim || s.Rows > scenario.MaxDim || s.Cols < scenario.MinDim || s.Cols > scenario.MaxDim {
		return invalid("scenario dims %dx%d outside [%d,%d]", s.Rows, s.Cols, scenario.MinDim, scenario.MaxDim)
	}
	in := func(p [2]int) bool { return p[0] >= 0 && p[0] < s.Rows && p[1] >= 0 && p[1] < s.Cols }
	for _, w := range s.Walls {
		if !in(w) {
			return invalid("scenario wall %v outside grid", w)
		}
	}
	attackers := make(map[[2]int]bool, len(s.Attackers))
	for _, a := range s.Attackers {
		if !in(a.Pos) {
			return invalid("scenario attacker %v outside grid", a.Pos)
		}
		attackers[a.Pos] = true
	}
	for _, d := range s.Defenders {
		if !in(d.Pos) {
			return invalid("scenario defender %v outside grid", d.Pos)
		}
		if attackers[d.Pos] {
			return invalid("scenario defender %v collides with an attacker", d.Pos)
		}
	}
	for _, r := range s.Routes {
		if !attackers[r.From] {
			return invalid("scenario route from %v has no attacker", r.From)
		}
		for _, wp := range r.Waypoints {
			if !in(wp) {
				return invalid("scenario waypoint %v outside grid", wp)
			}
		}
	}
	return nil
}

// Build materialises the layout. Walls are painted first, then procedural
// walls, then actors, so actors always win their cell.
func (s ScenarioConfig) Build() (*scenario.Grid, *scenario.RouteMap, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	g := scenario.NewGrid(s.Rows, s.Cols)
	for _, w := range s.Walls {
		g.Set(w[0], w[1], scenario.Cell{Kind: scenario.CellWall})
	}
	if s.ScatterSeed != 0 {
		g.ScatterWalls(s.ScatterSeed, s.ScatterThreshold)
	}
	for _, a := range s.Attackers {
		g.Set(a.Pos[0], a.Pos[1], scenario.Cell{Kind: scenario.CellPlayer, Orientation: a.Orientation})
	}
	for _, d := range s.Defenders {
		g.Set(d.Pos[0], d.Pos[1], scenario.Cell{Kind: scenario.CellDefender, Orientation: d.Orientation})
	}
	routes := scenario.NewRouteMap()
	for _, r := range s.Routes {
		origin := scenario.Coord{Row: r.From[0], Col: r.From[1]}
		routes.Reset(origin)
		for _, wp := range r.Waypoints {
			routes.Append(origin, scenario.Coord{Row: wp[0], Col: wp[1]})
		}
	}
	return g, routes, nil
}

// Request builds the grid and serializes it with the editor parameters.
func (c *Config) Request() (scenario.ScenarioRequest, error) {
	g, routes, err := c.Scenario.Build()
	if err != nil {
		return scenario.ScenarioRequest{}, err
	}
	req := scenario.Serialize(g, routes, c.Editor.Attacker, c.Editor.Defender, c.Editor.WaypointInterval)
	if err := req.Validate(); err != nil {
		return scenario.ScenarioRequest{}, fmt.Errorf("config: scenario: %w", err)
	}
	return req, nil
}
