package sim

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

func request(t *testing.T, g *scenario.Grid, routes *scenario.RouteMap, att, def scenario.FactionParams) scenario.ScenarioRequest {
	t.Helper()
	req := scenario.Serialize(g, routes, att, def, scenario.DefaultWaypointInterval)
	if err := req.Validate(); err != nil {
		t.Fatalf("bad request: %v", err)
	}
	return req
}

func TestLine_Endpoints(t *testing.T) {
	pts := Line(0, 0, 4, 2)
	if pts[0] != [2]int{0, 0} || pts[len(pts)-1] != [2]int{4, 2} {
		t.Fatalf("line=%v", pts)
	}
	if len(pts) != 5 {
		t.Fatalf("len=%d, want 5", len(pts))
	}
	if got := Line(3, 3, 3, 3); len(got) != 1 {
		t.Fatalf("degenerate line=%v", got)
	}
}

func TestMap_LineOfSightBlockedByWall(t *testing.T) {
	m := NewMap([][]int{
		{0, 0, 0, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 0, 0},
	})
	if m.LineOfSight(0, 1, 4, 1) {
		t.Fatal("wall at (2,1) should block")
	}
	if !m.LineOfSight(0, 0, 4, 0) {
		t.Fatal("open row should be clear")
	}
	if m.IsFree(-1, 0) || m.IsFree(5, 0) {
		t.Fatal("outside the map is never free")
	}
}

func TestAgent_InCone(t *testing.T) {
	a := &Agent{X: 0, Y: 0, Orientation: 0, VisionRange: 5, ViewAngle: DefaultViewAngle}
	ahead := &Agent{X: 3, Y: 1, Alive: true}
	behind := &Agent{X: -3, Y: 0, Alive: true}
	far := &Agent{X: 6, Y: 0, Alive: true}
	edge := &Agent{X: 2, Y: 2, Alive: true} // exactly π/4 off-axis
	if !a.InCone(ahead) || !a.InCone(edge) {
		t.Fatal("targets within the cone not seen")
	}
	if a.InCone(behind) || a.InCone(far) {
		t.Fatal("target behind or beyond range seen")
	}
}

func TestNew_DefenderOnAttackerFails(t *testing.T) {
	req := scenario.ScenarioRequest{
		Grid:              [][]int{{0, 0, 0}, {0, 0, 0}},
		AttackerPositions: []scenario.Position{{1, 1, 0}},
		DefenderPositions: []scenario.Position{{1, 1, 0}},
		AttackerParams:    scenario.DefaultAttackerParams(),
		DefenderParams:    scenario.DefaultDefenderParams(),
	}
	if _, err := New(req); !errors.Is(err, ErrCollision) {
		t.Fatalf("want ErrCollision, got %v", err)
	}
}

func TestRun_AmbushKillsUnawareDefender(t *testing.T) {
	g := scenario.NewGrid(5, 8)
	g.Set(0, 0, scenario.Cell{Kind: scenario.CellPlayer})   // facing east
	g.Set(0, 3, scenario.Cell{Kind: scenario.CellDefender}) // facing away
	att := scenario.FactionParams{VisionRange: 5, SoundRadius: 0, Reaction: 1}
	def := scenario.FactionParams{VisionRange: 5, SoundRadius: 0, Reaction: 1}

	s, err := New(request(t, g, nil, att, def), WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	res := s.Run()
	if !res.Outcome.AttackersWin {
		t.Fatal("attacker should win an ambush")
	}
	if len(res.States) != 2 {
		t.Fatalf("states=%d, want 2 (initial + one tick)", len(res.States))
	}
	final := res.States[1]
	// +5 for the kill, +1 for the first step onto a new cell.
	if final.Defenders[0].Alive || final.Attackers[0].Score != 6 {
		t.Fatalf("final=%+v", final)
	}
	if s.Log.Count(CatCombat, "kill") != 1 {
		t.Fatalf("log:\n%s", s.Log.Format())
	}
	if o := s.Outcome(); o.Description != "defenders_eliminated" {
		t.Fatalf("outcome=%+v", o)
	}
}

func TestRun_NoDefendersEndsImmediately(t *testing.T) {
	g := scenario.NewGrid(5, 5)
	g.Paint(2, 2, scenario.ToolPlayer)
	s, err := New(request(t, g, nil, scenario.DefaultAttackerParams(), scenario.DefaultDefenderParams()))
	if err != nil {
		t.Fatal(err)
	}
	res := s.Run()
	if len(res.States) != 1 || !res.Outcome.AttackersWin {
		t.Fatalf("states=%d win=%v", len(res.States), res.Outcome.AttackersWin)
	}
}

// isolated builds a 10x10 map with a boxed-in, deaf and blind defender in
// the far corner so the attacker is never disturbed.
func isolated(t *testing.T) (*scenario.Grid, scenario.FactionParams) {
	t.Helper()
	g := scenario.NewGrid(10, 10)
	g.Set(8, 9, scenario.Cell{Kind: scenario.CellWall})
	g.Set(9, 8, scenario.Cell{Kind: scenario.CellWall})
	g.Set(9, 9, scenario.Cell{Kind: scenario.CellDefender})
	g.Set(0, 0, scenario.Cell{Kind: scenario.CellPlayer})
	return g, scenario.FactionParams{VisionRange: 0, SoundRadius: 0, Reaction: 1}
}

func TestRun_AttackerFollowsRoute(t *testing.T) {
	g, blind := isolated(t)
	routes := scenario.NewRouteMap()
	routes.Reset(scenario.Coord{Row: 0, Col: 0})
	routes.Append(scenario.Coord{Row: 0, Col: 0}, scenario.Coord{Row: 0, Col: 4})
	routes.Append(scenario.Coord{Row: 0, Col: 0}, scenario.Coord{Row: 3, Col: 4})

	s, err := New(request(t, g, routes, blind, blind), WithMaxTicks(7))
	if err != nil {
		t.Fatal(err)
	}
	res := s.Run()
	if len(res.States) != 8 {
		t.Fatalf("states=%d, want 8", len(res.States))
	}
	last := res.States[7].Attackers[0]
	if last.X != 4 || last.Y != 3 {
		t.Fatalf("attacker ended at (%d,%d), want (4,3)\n%s", last.X, last.Y, s.Log.Format())
	}
	if s.Log.Count(CatRoute, "waypoint_reached") != 2 {
		t.Fatalf("log:\n%s", s.Log.Format())
	}
	if res.Outcome.AttackersWin {
		t.Fatal("tick limit with defenders alive is a defender win")
	}
	if s.Outcome().Description != "tick_limit" {
		t.Fatalf("outcome=%+v", s.Outcome())
	}
	if math.Abs(last.Orientation-math.Pi/2) > 1e-9 {
		t.Fatalf("orientation=%v, want facing south", last.Orientation)
	}
}

func TestRun_ScoresNewCells(t *testing.T) {
	g, blind := isolated(t)
	routes := scenario.NewRouteMap()
	routes.Reset(scenario.Coord{Row: 0, Col: 0})
	routes.Append(scenario.Coord{Row: 0, Col: 0}, scenario.Coord{Row: 0, Col: 3})
	s, err := New(request(t, g, routes, blind, blind), WithMaxTicks(3))
	if err != nil {
		t.Fatal(err)
	}
	res := s.Run()
	if got := res.States[3].Attackers[0].Score; got != 3 {
		t.Fatalf("score=%d, want 3", got)
	}
}

func TestRun_DeterministicWithSeed(t *testing.T) {
	g := scenario.NewGrid(15, 15)
	g.ScatterWalls(5, 0.3)
	g.Set(14, 0, scenario.Cell{Kind: scenario.CellPlayer})
	g.Set(14, 1, scenario.Cell{Kind: scenario.CellPlayer})
	g.Set(0, 14, scenario.Cell{Kind: scenario.CellDefender, Orientation: math.Pi})
	g.Set(1, 13, scenario.Cell{Kind: scenario.CellDefender, Orientation: math.Pi})
	req := request(t, g, nil, scenario.DefaultAttackerParams(), scenario.DefaultDefenderParams())

	run := func() string {
		s, err := New(req, WithSeed(99), WithMaxTicks(120))
		if err != nil {
			t.Fatal(err)
		}
		res := s.Run()
		return s.Log.Format() + fmtStates(res.States)
	}
	if a, b := run(), run(); a != b {
		t.Fatal("same seed produced different runs")
	}
}

func TestRun_OrientationsNormalized(t *testing.T) {
	g := scenario.NewGrid(30, 30)
	g.Set(5, 5, scenario.Cell{Kind: scenario.CellPlayer})
	g.Set(29, 29, scenario.Cell{Kind: scenario.CellDefender})
	routes := scenario.NewRouteMap()
	routes.Reset(scenario.Coord{Row: 5, Col: 5})
	// North then west so the walk produces negative atan2 headings.
	routes.Append(scenario.Coord{Row: 5, Col: 5}, scenario.Coord{Row: 1, Col: 5})
	routes.Append(scenario.Coord{Row: 5, Col: 5}, scenario.Coord{Row: 1, Col: 1})
	req := request(t, g, routes, scenario.DefaultAttackerParams(), scenario.DefaultDefenderParams())

	s, err := New(req, WithSeed(3), WithMaxTicks(200))
	if err != nil {
		t.Fatal(err)
	}
	res := s.Run()
	for _, st := range res.States {
		for _, e := range append(st.Attackers, st.Defenders...) {
			if e.Orientation < 0 || e.Orientation >= 2*math.Pi {
				t.Fatalf("tick %d: orientation %.6f outside [0, 2π)", st.Tick, e.Orientation)
			}
		}
	}
}

func fmtStates(states []playback.TickSnapshot) string {
	var out string
	for _, st := range states {
		for _, e := range append(st.Attackers, st.Defenders...) {
			out += fmt.Sprintf("%d:%d,%d,%v,%d;", st.Tick, e.X, e.Y, e.Alive, e.Score)
		}
	}
	return out
}
