package editor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Garsondee/breach-planner/internal/collab"
	"github.com/Garsondee/breach-planner/internal/config"
	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
	"github.com/Garsondee/breach-planner/internal/sim"
)

func newController(t *testing.T) *Controller {
	t.Helper()
	cfg := config.Default().Editor
	cfg.Rows, cfg.Cols = 10, 10
	return New(cfg)
}

func wait(t *testing.T, c *Controller) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Wait(ctx)
}

type simFunc func(context.Context, scenario.ScenarioRequest) (*playback.Result, error)

func (f simFunc) Simulate(ctx context.Context, req scenario.ScenarioRequest) (*playback.Result, error) {
	return f(ctx, req)
}

type instructFunc func(context.Context, collab.LayoutDocument, string) (*collab.LayoutDocument, error)

func (f instructFunc) Instruct(ctx context.Context, doc collab.LayoutDocument, s string) (*collab.LayoutDocument, error) {
	return f(ctx, doc, s)
}

type adviseFunc func(context.Context, collab.AdviceRequest) (collab.Advice, error)

func (f adviseFunc) Advise(ctx context.Context, req collab.AdviceRequest) (collab.Advice, error) {
	return f(ctx, req)
}

func TestController_DragPaintsEachCellOnce(t *testing.T) {
	c := newController(t)
	c.SelectTool(scenario.ToolDefender)
	c.PointerDown(0, 0)
	c.PointerEnter(0, 0) // re-entering the pressed cell must not rotate it
	c.PointerEnter(0, 1)
	c.PointerEnter(0, 1)
	c.PointerEnter(0, 2)
	c.PointerUp()
	c.PointerEnter(0, 3) // button released

	for col := 0; col < 3; col++ {
		cell := c.Grid().At(0, col)
		if cell.Kind != scenario.CellDefender || cell.Orientation != 0 {
			t.Fatalf("col %d: %s %.3f, want fresh defender", col, cell.Kind, cell.Orientation)
		}
	}
	if c.Grid().At(0, 3).Kind != scenario.CellEmpty {
		t.Fatal("painted after release")
	}
}

func TestController_PressOnSameKindRotates(t *testing.T) {
	c := newController(t)
	c.PointerDown(4, 4)
	c.PointerUp()
	c.PointerDown(4, 4)
	c.PointerUp()
	if o := c.Grid().At(4, 4).Orientation; math.Abs(o-math.Pi/4) > 1e-9 {
		t.Fatalf("orientation=%v, want π/4", o)
	}
}

func TestController_EraseRemovesOnlyThatRoute(t *testing.T) {
	c := newController(t)
	c.PointerDown(2, 2)
	c.PointerUp()
	c.PointerDown(7, 7)
	c.PointerUp()

	c.SelectTool(scenario.ToolRouter)
	for _, at := range [][2]int{{2, 2}, {3, 2}, {3, 2}, {7, 7}, {7, 8}, {7, 8}} {
		c.PointerDown(at[0], at[1])
		c.PointerUp()
	}
	if c.Routes().Len() != 2 {
		t.Fatalf("routes=%d, want 2", c.Routes().Len())
	}

	c.SelectTool(scenario.ToolEraser)
	c.PointerDown(2, 2)
	c.PointerUp()
	if _, ok := c.Routes().Get(scenario.Coord{Row: 2, Col: 2}); ok {
		t.Fatal("erased player's route survived")
	}
	if _, ok := c.Routes().Get(scenario.Coord{Row: 7, Col: 7}); !ok {
		t.Fatal("unrelated route removed")
	}
}

func TestController_EraseNonPlayerKeepsRoutes(t *testing.T) {
	c := newController(t)
	c.PointerDown(2, 2)
	c.PointerUp()
	c.SelectTool(scenario.ToolRouter)
	c.PointerDown(2, 2)
	c.PointerDown(2, 3)
	c.PointerDown(2, 3)
	c.PointerUp()

	// A defender now stands on the old origin.
	c.SelectTool(scenario.ToolDefender)
	c.PointerDown(2, 2)
	c.SelectTool(scenario.ToolEraser)
	c.PointerDown(2, 2)
	if _, ok := c.Routes().Get(scenario.Coord{Row: 2, Col: 2}); !ok {
		t.Fatal("erasing a defender must not touch routes")
	}
}

func TestController_ToolSwitchEndsRecording(t *testing.T) {
	c := newController(t)
	c.PointerDown(1, 1)
	c.PointerUp()
	c.SelectTool(scenario.ToolRouter)
	c.PointerDown(1, 1)
	c.PointerDown(1, 2)
	c.PointerUp()
	if !c.RoutingState().Recording() {
		t.Fatal("should be recording")
	}
	c.SelectTool(scenario.ToolPlayer)
	if c.RoutingState().Recording() {
		t.Fatal("reselecting the player tool should stop recording")
	}
	if wps, _ := c.Routes().Get(scenario.Coord{Row: 1, Col: 1}); len(wps) != 1 {
		t.Fatalf("waypoints lost: %v", wps)
	}
}

func TestController_RouterDoesNotDrag(t *testing.T) {
	c := newController(t)
	c.PointerDown(1, 1)
	c.PointerUp()
	c.SelectTool(scenario.ToolRouter)
	c.PointerDown(1, 1)
	c.PointerEnter(1, 2)
	c.PointerEnter(1, 3)
	if wps, _ := c.Routes().Get(scenario.Coord{Row: 1, Col: 1}); len(wps) != 0 {
		t.Fatalf("drag added waypoints: %v", wps)
	}
}

func TestController_SetDimensionsKeepsRoutes(t *testing.T) {
	c := newController(t)
	c.PointerDown(1, 1)
	c.SelectTool(scenario.ToolRouter)
	c.PointerDown(1, 1)
	c.PointerDown(1, 2)
	c.PointerDown(1, 2)
	c.SetDimensions(3, 50)
	if c.Grid().Rows() != scenario.MinDim || c.Grid().Cols() != scenario.MaxDim {
		t.Fatalf("dims=%dx%d", c.Grid().Rows(), c.Grid().Cols())
	}
	if c.Grid().Count(scenario.CellEmpty) != scenario.MinDim*scenario.MaxDim {
		t.Fatal("resize should clear the grid")
	}
	if c.Routes().Len() != 1 {
		t.Fatal("resize must not clear routes")
	}
}

func TestController_SetParamClamps(t *testing.T) {
	c := newController(t)
	c.SetParam(FactionDefender, scenario.FieldReaction, 0.1)
	if got := c.Params(FactionDefender).Reaction; got != scenario.MinReaction {
		t.Fatalf("reaction=%v", got)
	}
	c.NudgeParam(FactionAttacker, scenario.FieldVisionRange, 2)
	if got := c.Params(FactionAttacker).VisionRange; got != 6 {
		t.Fatalf("vision=%v, want 6", got)
	}
}

func TestController_SubmitSimulationWithLocal(t *testing.T) {
	c := newController(t)
	c.PointerDown(9, 0)
	c.SelectTool(scenario.ToolDefender)
	c.PointerDown(0, 9)
	c.PointerUp()

	if err := c.SubmitSimulation(context.Background(), sim.Local{Seed: 4, MaxTicks: 50}); err != nil {
		t.Fatal(err)
	}
	if !c.Busy() || c.Pending() != TaskSimulate {
		t.Fatal("controller should be busy")
	}
	if err := wait(t, c); err != nil {
		t.Fatal(err)
	}
	if c.Busy() || c.Playback() == nil {
		t.Fatal("result not applied")
	}
	s, _ := c.Summary()
	if s.InitialAttackers != 1 || s.InitialDefenders != 1 {
		t.Fatalf("summary=%+v", s)
	}
	if c.StepTick(1000) != len(c.Playback().States)-1 || c.SeekTick(-3) != 0 {
		t.Fatal("cursor not clamped")
	}
	if v, ok := c.View(); !ok || v.Rows() != 10 {
		t.Fatal("view unavailable")
	}
	c.ClosePlayback()
	if c.Playback() != nil || c.StepTick(1) != 0 {
		t.Fatal("playback not closed")
	}
}

func TestController_ErrBusyOnDoubleSubmit(t *testing.T) {
	c := newController(t)
	release := make(chan struct{})
	slow := simFunc(func(ctx context.Context, req scenario.ScenarioRequest) (*playback.Result, error) {
		<-release
		return &playback.Result{Map: req.Grid, States: []playback.TickSnapshot{{}}}, nil
	})
	if err := c.SubmitSimulation(context.Background(), slow); err != nil {
		t.Fatal(err)
	}
	if err := c.SubmitSimulation(context.Background(), slow); !errors.Is(err, ErrBusy) {
		t.Fatalf("want ErrBusy, got %v", err)
	}
	if err := c.SubmitInstruction(context.Background(), nil, "x"); !errors.Is(err, ErrBusy) {
		t.Fatalf("want ErrBusy for instruction, got %v", err)
	}
	if c.Poll() {
		t.Fatal("nothing should be ready yet")
	}
	// Editing stays live while the call is pending.
	c.PointerDown(5, 5)
	c.PointerUp()
	close(release)
	if err := wait(t, c); err != nil {
		t.Fatal(err)
	}
	if c.Busy() {
		t.Fatal("busy not cleared")
	}
	if c.Grid().At(5, 5).Kind != scenario.CellPlayer {
		t.Fatal("edit during pending call lost")
	}
}

func TestController_FailedSimulationLeavesState(t *testing.T) {
	c := newController(t)
	failing := simFunc(func(context.Context, scenario.ScenarioRequest) (*playback.Result, error) {
		return nil, errors.New("boom")
	})
	c.SubmitSimulation(context.Background(), failing)
	if err := wait(t, c); err == nil {
		t.Fatal("error not surfaced")
	}
	if c.Busy() || c.Playback() != nil {
		t.Fatal("failure should clear busy and leave no playback")
	}
	if e, _ := c.Activity().Last(); e.Severity != SevError {
		t.Fatalf("last activity=%+v", e)
	}
}

func TestController_MalformedResultRejected(t *testing.T) {
	c := newController(t)
	empty := simFunc(func(context.Context, scenario.ScenarioRequest) (*playback.Result, error) {
		return &playback.Result{}, nil
	})
	c.SubmitSimulation(context.Background(), empty)
	if err := wait(t, c); !errors.Is(err, collab.ErrMalformedResponse) {
		t.Fatalf("want ErrMalformedResponse, got %v", err)
	}
	if c.Playback() != nil {
		t.Fatal("malformed result applied")
	}
}

func TestController_InstructionReplacesLayout(t *testing.T) {
	c := newController(t)
	c.PointerDown(1, 1)
	c.SelectTool(scenario.ToolRouter)
	c.PointerDown(1, 1)
	c.PointerDown(2, 1)
	c.PointerDown(2, 1)

	in := instructFunc(func(_ context.Context, doc collab.LayoutDocument, s string) (*collab.LayoutDocument, error) {
		if *doc.Rows != 10 || doc.Grid[1][1].Kind != scenario.CellPlayer {
			t.Errorf("document does not reflect the grid")
		}
		g := scenario.NewGrid(6, 8)
		g.Paint(0, 0, scenario.ToolWall)
		out := collab.NewLayoutDocument(g, scenario.FactionParams{VisionRange: 9, SoundRadius: 1, Reaction: 2}, *doc.DefenderParams)
		return &out, nil
	})
	if err := c.SubmitInstruction(context.Background(), in, "make it small"); err != nil {
		t.Fatal(err)
	}
	if err := wait(t, c); err != nil {
		t.Fatal(err)
	}
	if c.Grid().Rows() != 6 || c.Grid().Cols() != 8 || c.Grid().At(0, 0).Kind != scenario.CellWall {
		t.Fatal("layout not applied")
	}
	if c.Params(FactionAttacker).VisionRange != 9 {
		t.Fatal("params not applied")
	}
	if c.Routes().Len() != 1 {
		t.Fatal("routes should survive a layout replacement")
	}
}

func TestController_FailedInstructionLeavesGrid(t *testing.T) {
	c := newController(t)
	c.PointerDown(3, 3)
	in := instructFunc(func(context.Context, collab.LayoutDocument, string) (*collab.LayoutDocument, error) {
		return nil, collab.ErrMalformedResponse
	})
	c.SubmitInstruction(context.Background(), in, "anything")
	wait(t, c)
	if c.Grid().Rows() != 10 || c.Grid().At(3, 3).Kind != scenario.CellPlayer {
		t.Fatal("grid modified by a failed instruction")
	}
}

func TestController_AdviceIsDisplayOnly(t *testing.T) {
	c := newController(t)
	if err := c.RequestAdvice(context.Background(), nil); !errors.Is(err, ErrNoPlayback) {
		t.Fatalf("want ErrNoPlayback, got %v", err)
	}

	c.PointerDown(9, 0)
	c.SelectTool(scenario.ToolRouter)
	c.PointerDown(9, 0)
	c.PointerDown(8, 0)
	c.PointerDown(8, 0)
	c.SubmitSimulation(context.Background(), sim.Local{Seed: 1, MaxTicks: 5})
	if err := wait(t, c); err != nil {
		t.Fatal(err)
	}

	var got collab.AdviceRequest
	adv := adviseFunc(func(_ context.Context, req collab.AdviceRequest) (collab.Advice, error) {
		got = req
		return collab.Advice{"9-0": {{Row: 0, Col: 0}}}, nil
	})
	if err := c.RequestAdvice(context.Background(), adv); err != nil {
		t.Fatal(err)
	}
	if err := wait(t, c); err != nil {
		t.Fatal(err)
	}
	if got.Rows != 10 || len(got.Routes["9-0"]) != 1 {
		t.Fatalf("advice request=%+v", got)
	}
	if len(c.Advice()["9-0"]) != 1 {
		t.Fatal("advice not stored")
	}
	wps, _ := c.Routes().Get(scenario.Coord{Row: 9, Col: 0})
	if len(wps) != 1 || wps[0] != (scenario.Coord{Row: 8, Col: 0}) {
		t.Fatalf("advice leaked into routes: %v", wps)
	}
}

func TestActivityLog_Ring(t *testing.T) {
	l := NewActivityLog()
	for i := 0; i < activityMaxEntries+5; i++ {
		l.Add("test", SevInfo, string(rune('a'+i%26)))
	}
	if l.Len() != activityMaxEntries {
		t.Fatalf("len=%d", l.Len())
	}
	recent := l.Recent()
	last, _ := l.Last()
	if recent[len(recent)-1] != last {
		t.Fatal("Recent and Last disagree")
	}
}
