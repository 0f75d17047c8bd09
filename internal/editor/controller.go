// Package editor holds the interaction state of one planning session and
// threads pointer and keyboard actions into the grid and route stores.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/breach-planner/internal/collab"
	"github.com/Garsondee/breach-planner/internal/config"
	"github.com/Garsondee/breach-planner/internal/logger"
	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

var (
	// ErrBusy is returned by every Submit/Request method while another
	// collaborator call is outstanding.
	ErrBusy = errors.New("editor: a collaborator call is already pending")
	// ErrNoPlayback is returned when advice is requested with no result open.
	ErrNoPlayback = errors.New("editor: no playback is open")
)

// Faction selects which side's parameters to edit.
type Faction uint8

const (
	FactionAttacker Faction = iota
	FactionDefender
)

func (f Faction) String() string {
	if f == FactionDefender {
		return "defender"
	}
	return "attacker"
}

// Instructor applies a natural-language instruction to a layout.
type Instructor interface {
	Instruct(ctx context.Context, doc collab.LayoutDocument, instruction string) (*collab.LayoutDocument, error)
}

// RouteAdvisor suggests revised routes after a run.
type RouteAdvisor interface {
	Advise(ctx context.Context, req collab.AdviceRequest) (collab.Advice, error)
}

// TaskKind names an asynchronous collaborator call.
type TaskKind uint8

const (
	TaskNone TaskKind = iota
	TaskSimulate
	TaskInstruct
	TaskAdvise
)

func (k TaskKind) String() string {
	switch k {
	case TaskSimulate:
		return "simulate"
	case TaskInstruct:
		return "instruct"
	case TaskAdvise:
		return "advise"
	default:
		return "none"
	}
}

// taskResult is the result-or-error value a finished call delivers.
type taskResult struct {
	kind    TaskKind
	result  *playback.Result
	routes  map[string][]scenario.Coord
	layout  *collab.LayoutDocument
	advice  collab.Advice
	err     error
	elapsed time.Duration
}

// Controller owns one editing session. Every method must be called from
// the same goroutine (the UI loop); collaborator calls run elsewhere and
// are applied by Poll or Wait.
type Controller struct {
	tool        scenario.Tool
	pointerDown bool
	lastPainted scenario.Coord
	painted     bool

	grid     *scenario.Grid
	routes   *scenario.RouteMap
	recorder *scenario.Recorder
	attacker scenario.FactionParams
	defender scenario.FactionParams
	interval int
	scatter  float64

	busy    bool
	pending TaskKind
	tasks   chan taskResult

	play       *playback.Result
	cursor     *playback.Cursor
	playRoutes map[string][]scenario.Coord
	advice     collab.Advice

	activity *ActivityLog
	log      *logrus.Entry
}

// New starts a session from the editor config.
func New(cfg config.EditorConfig) *Controller {
	routes := scenario.NewRouteMap()
	interval := cfg.WaypointInterval
	if interval <= 0 {
		interval = scenario.DefaultWaypointInterval
	}
	return &Controller{
		tool:     scenario.ToolPlayer,
		grid:     scenario.NewGrid(cfg.Rows, cfg.Cols),
		routes:   routes,
		recorder: scenario.NewRecorder(routes),
		attacker: cfg.Attacker.Clamped(),
		defender: cfg.Defender.Clamped(),
		interval: interval,
		scatter:  cfg.ScatterThreshold,
		tasks:    make(chan taskResult, 1),
		activity: NewActivityLog(),
		log:      logger.Component("editor"),
	}
}

// Grid returns the live grid. Callers must not mutate it.
func (c *Controller) Grid() *scenario.Grid { return c.grid }

// Routes returns the live route map. Callers must not mutate it.
func (c *Controller) Routes() *scenario.RouteMap { return c.routes }

// RoutingState returns the recorder state.
func (c *Controller) RoutingState() scenario.RoutingState { return c.recorder.State() }

// Tool returns the selected tool.
func (c *Controller) Tool() scenario.Tool { return c.tool }

// Params returns one faction's parameters.
func (c *Controller) Params(f Faction) scenario.FactionParams {
	if f == FactionDefender {
		return c.defender
	}
	return c.attacker
}

// Busy reports whether a collaborator call is outstanding.
func (c *Controller) Busy() bool { return c.busy }

// Pending names the outstanding call, or TaskNone.
func (c *Controller) Pending() TaskKind { return c.pending }

// Activity returns the operator-visible event log.
func (c *Controller) Activity() *ActivityLog { return c.activity }

// Status returns the newest activity message.
func (c *Controller) Status() string {
	if e, ok := c.activity.Last(); ok {
		return e.Message
	}
	return ""
}

func (c *Controller) note(source string, sev Severity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.activity.Add(source, sev, msg)
	entry := c.log.WithField("source", source)
	switch sev {
	case SevError:
		entry.Error(msg)
	case SevWarn:
		entry.Warn(msg)
	default:
		entry.Info(msg)
	}
}

// SelectTool switches tools. Any selection while a route is recording ends
// the recording, keeping its waypoints.
func (c *Controller) SelectTool(t scenario.Tool) {
	if c.recorder.State().Recording() {
		origin, _ := c.recorder.State().Origin()
		c.recorder.Cancel()
		c.note("route", SevInfo, "route from %s closed", origin)
	}
	c.tool = t
	c.log.WithField("tool", t).Debug("tool selected")
}

// PointerDown handles a primary-button press on (row, col).
func (c *Controller) PointerDown(row, col int) {
	c.pointerDown = true
	c.painted = false
	if !c.grid.InBounds(row, col) {
		return
	}
	at := scenario.Coord{Row: row, Col: col}
	if c.tool == scenario.ToolRouter {
		c.routeClick(at)
		return
	}
	c.paint(at)
}

// PointerEnter handles the pointer moving onto (row, col). While the button
// is held each distinct cell is painted once; the router never drags.
func (c *Controller) PointerEnter(row, col int) {
	if !c.pointerDown || c.tool == scenario.ToolRouter || !c.grid.InBounds(row, col) {
		return
	}
	at := scenario.Coord{Row: row, Col: col}
	if c.painted && at == c.lastPainted {
		return
	}
	c.paint(at)
}

// PointerUp ends a drag.
func (c *Controller) PointerUp() {
	c.pointerDown = false
	c.painted = false
}

func (c *Controller) paint(at scenario.Coord) {
	prev := c.grid.Paint(at.Row, at.Col, c.tool)
	c.lastPainted, c.painted = at, true
	if c.tool == scenario.ToolEraser && prev.Kind == scenario.CellPlayer {
		if c.routes.Delete(at) {
			c.note("route", SevInfo, "route from %s removed with its player", at)
		}
	}
}

func (c *Controller) routeClick(at scenario.Coord) {
	origin, _ := c.recorder.State().Origin()
	switch ev := c.recorder.Click(at, c.grid.At(at.Row, at.Col)); ev {
	case scenario.RouteStarted:
		c.note("route", SevInfo, "recording route from %s", at)
	case scenario.RouteFinished:
		wps, _ := c.routes.Get(origin)
		c.note("route", SevInfo, "route from %s saved with %d waypoints", origin, len(wps))
	case scenario.RouteExtended:
		c.log.WithField("waypoint", at.Key()).Debug("waypoint added")
	}
}

// SetDimensions resizes to a fresh empty grid, clamped to the allowed
// range. Routes are kept even though their origins are gone.
func (c *Controller) SetDimensions(rows, cols int) {
	rows, cols = scenario.ClampDim(rows), scenario.ClampDim(cols)
	if rows == c.grid.Rows() && cols == c.grid.Cols() {
		return
	}
	c.grid.Resize(rows, cols)
	c.pointerDown, c.painted = false, false
	c.note("grid", SevInfo, "grid resized to %dx%d", rows, cols)
}

// SetParam sets one parameter, clamped into its range.
func (c *Controller) SetParam(f Faction, field scenario.ParamField, v float64) {
	if f == FactionDefender {
		c.defender = c.defender.With(field, v)
	} else {
		c.attacker = c.attacker.With(field, v)
	}
	c.log.WithFields(logrus.Fields{"faction": f, "field": field, "value": c.Params(f).Get(field)}).Debug("param set")
}

// NudgeParam moves a parameter by steps slider increments.
func (c *Controller) NudgeParam(f Faction, field scenario.ParamField, steps int) {
	c.SetParam(f, field, c.Params(f).Get(field)+float64(steps)*field.Step())
}

// ScatterWalls fills empty cells with procedural walls.
func (c *Controller) ScatterWalls(seed int64) {
	n := c.grid.ScatterWalls(seed, c.scatter)
	c.note("grid", SevInfo, "scattered %d walls (seed %d)", n, seed)
}

// Request serializes the current session.
func (c *Controller) Request() scenario.ScenarioRequest {
	return scenario.Serialize(c.grid, c.routes, c.attacker, c.defender, c.interval)
}

// PayloadJSON returns the indented request document.
func (c *Controller) PayloadJSON() ([]byte, error) {
	return json.MarshalIndent(c.Request(), "", "  ")
}

func (c *Controller) launch(kind TaskKind, run func() taskResult) {
	c.busy, c.pending = true, kind
	go func() {
		start := time.Now()
		r := run()
		r.kind = kind
		r.elapsed = time.Since(start)
		c.tasks <- r
	}()
}

// SubmitSimulation snapshots the session and runs it on sim.
func (c *Controller) SubmitSimulation(ctx context.Context, sim collab.Simulator) error {
	if c.busy {
		return ErrBusy
	}
	req := c.Request()
	routes := c.routes.ToKeyed()
	c.note("sim", SevInfo, "simulating %d attackers vs %d defenders", len(req.AttackerPositions), len(req.DefenderPositions))
	c.launch(TaskSimulate, func() taskResult {
		res, err := sim.Simulate(ctx, req)
		if err == nil {
			err = collab.ValidateResult(res)
		}
		return taskResult{result: res, routes: routes, err: err}
	})
	return nil
}

// SubmitInstruction asks the assistant to rewrite the layout.
func (c *Controller) SubmitInstruction(ctx context.Context, in Instructor, instruction string) error {
	if c.busy {
		return ErrBusy
	}
	doc := collab.NewLayoutDocument(c.grid, c.attacker, c.defender)
	c.note("assistant", SevInfo, "asking: %s", instruction)
	c.launch(TaskInstruct, func() taskResult {
		out, err := in.Instruct(ctx, doc, instruction)
		return taskResult{layout: out, err: err}
	})
	return nil
}

// RequestAdvice asks for revised routes for the open playback.
func (c *Controller) RequestAdvice(ctx context.Context, adv RouteAdvisor) error {
	if c.busy {
		return ErrBusy
	}
	if c.play == nil {
		return ErrNoPlayback
	}
	final, _ := c.play.Final()
	req := collab.AdviceRequest{
		Columns: c.play.Cols(),
		Rows:    c.play.Rows(),
		Routes:  c.playRoutes,
		Data:    final,
	}
	c.note("advisor", SevInfo, "requesting route advice")
	c.launch(TaskAdvise, func() taskResult {
		a, err := adv.Advise(ctx, req)
		return taskResult{advice: a, err: err}
	})
	return nil
}

// Poll applies a finished call if there is one. It never blocks.
func (c *Controller) Poll() bool {
	select {
	case r := <-c.tasks:
		c.apply(r)
		return true
	default:
		return false
	}
}

// Wait blocks until the outstanding call finishes and applies it. It
// returns the call's error, or ctx's if ctx ends first. With nothing
// pending it returns nil immediately.
func (c *Controller) Wait(ctx context.Context) error {
	if !c.busy {
		return nil
	}
	select {
	case r := <-c.tasks:
		c.apply(r)
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) apply(r taskResult) {
	c.busy, c.pending = false, TaskNone
	source := map[TaskKind]string{TaskSimulate: "sim", TaskInstruct: "assistant", TaskAdvise: "advisor"}[r.kind]
	if r.err != nil {
		c.note(source, SevError, "%s failed: %v", r.kind, r.err)
		return
	}
	switch r.kind {
	case TaskSimulate:
		c.play = r.result
		c.cursor = playback.NewCursor(r.result)
		c.playRoutes = r.routes
		c.advice = nil
		s := playback.ComputeSummary(r.result)
		c.note(source, SevInfo, "%s after %d ticks (%s)", s.Outcome(), s.TotalTicks, r.elapsed.Round(time.Millisecond))
	case TaskInstruct:
		r.layout.Apply(c.grid)
		c.attacker = *r.layout.AttackerParams
		c.defender = *r.layout.DefenderParams
		c.pointerDown, c.painted = false, false
		c.note(source, SevInfo, "layout replaced (%dx%d)", c.grid.Rows(), c.grid.Cols())
	case TaskAdvise:
		c.advice = r.advice
		c.note(source, SevInfo, "advice received for %d routes", len(r.advice))
	}
}

// Playback returns the open result, or nil.
func (c *Controller) Playback() *playback.Result { return c.play }

// Cursor returns the open result's cursor, or nil.
func (c *Controller) Cursor() *playback.Cursor { return c.cursor }

// Advice returns the latest route suggestions for the open playback.
func (c *Controller) Advice() collab.Advice { return c.advice }

// StepTick moves the cursor by delta. No-op without a playback.
func (c *Controller) StepTick(delta int) int {
	if c.cursor == nil {
		return 0
	}
	return c.cursor.Step(delta)
}

// SeekTick moves the cursor to i, clamped.
func (c *Controller) SeekTick(i int) int {
	if c.cursor == nil {
		return 0
	}
	return c.cursor.Set(i)
}

// View reconstructs the grid at the cursor.
func (c *Controller) View() (playback.SpatialGrid, bool) {
	if c.cursor == nil {
		return playback.SpatialGrid{}, false
	}
	return c.cursor.View(), true
}

// Summary returns the open playback's statistics.
func (c *Controller) Summary() (playback.Summary, bool) {
	if c.play == nil {
		return playback.Summary{}, false
	}
	return playback.ComputeSummary(c.play), true
}

// ClosePlayback returns to editing. The grid and routes are untouched.
func (c *Controller) ClosePlayback() {
	c.play, c.cursor, c.playRoutes, c.advice = nil, nil, nil, nil
}
