package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

// DefaultMaxTicks bounds a run that neither side can finish.
const DefaultMaxTicks = 500

// ErrCollision is returned when a defender starts on an attacker's cell.
var ErrCollision = errors.New("defender collides with an attacker")

// Sim is one simulation run. It is not safe for concurrent use.
type Sim struct {
	Map       *Map
	Attackers []*Agent
	Defenders []*Agent
	Log       *Log
	Tick      int
	MaxTicks  int

	rng    *rand.Rand
	states []playback.TickSnapshot
}

// Option configures a Sim.
type Option func(*Sim)

// WithSeed makes the run deterministic.
func WithSeed(seed int64) Option {
	return func(s *Sim) {
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation, not crypto
	}
}

// WithMaxTicks caps the run length. Non-positive values keep the default.
func WithMaxTicks(n int) Option {
	return func(s *Sim) {
		if n > 0 {
			s.MaxTicks = n
		}
	}
}

// WithLog records events into l.
func WithLog(l *Log) Option {
	return func(s *Sim) { s.Log = l }
}

// New builds a run from req. Attackers whose start cell keys an entry in
// req.RouteData follow that route when nothing else demands their attention.
func New(req scenario.ScenarioRequest, opts ...Option) (*Sim, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s := &Sim{
		Map:      NewMap(req.Grid),
		Log:      NewLog(false),
		MaxTicks: DefaultMaxTicks,
		rng:      rand.New(rand.NewSource(1)), // #nosec G404 -- simulation default
	}
	for _, o := range opts {
		o(s)
	}

	occupied := make(map[[2]int]bool, len(req.AttackerPositions))
	for i, pos := range req.AttackerPositions {
		a := newAgent(i, SideAttacker, pos, req.AttackerParams)
		key := scenario.Coord{Row: a.Y, Col: a.X}.Key()
		if wps, ok := req.RouteData[key]; ok {
			a.route = append([]scenario.Waypoint(nil), wps...)
		}
		s.Attackers = append(s.Attackers, a)
		occupied[[2]int{a.X, a.Y}] = true
	}
	for i, pos := range req.DefenderPositions {
		if occupied[[2]int{pos.X(), pos.Y()}] {
			return nil, fmt.Errorf("sim: defender %d at (%d,%d): %w", i, pos.X(), pos.Y(), ErrCollision)
		}
		s.Defenders = append(s.Defenders, newAgent(i, SideDefender, pos, req.DefenderParams))
	}
	return s, nil
}

// Done reports whether the run has ended.
func (s *Sim) Done() bool {
	return !anyAlive(s.Attackers) || !anyAlive(s.Defenders) || s.Tick >= s.MaxTicks
}

// Snapshot captures the current tick.
func (s *Sim) Snapshot() playback.TickSnapshot {
	snap := playback.TickSnapshot{
		Tick:      s.Tick,
		Attackers: make([]playback.Entity, len(s.Attackers)),
		Defenders: make([]playback.Entity, len(s.Defenders)),
	}
	for i, a := range s.Attackers {
		snap.Attackers[i] = a.snapshot()
	}
	for i, d := range s.Defenders {
		snap.Defenders[i] = d.snapshot()
	}
	return snap
}

// Outcome classifies the current state.
func (s *Sim) Outcome() OutcomeReason {
	return DetermineOutcome(s.Attackers, s.Defenders, s.Tick, s.MaxTicks)
}

// Run plays to completion and returns the full result.
func (s *Sim) Run() *playback.Result {
	res, _ := s.RunContext(context.Background(), nil)
	return res
}

// RunContext plays to completion, calling onTick with every snapshot
// (including tick 0) as it is produced. It stops early when ctx is done or
// onTick fails, returning the partial result with the error.
func (s *Sim) RunContext(ctx context.Context, onTick func(playback.TickSnapshot) error) (*playback.Result, error) {
	emit := func() error {
		snap := s.Snapshot()
		s.states = append(s.states, snap)
		if onTick != nil {
			return onTick(snap)
		}
		return nil
	}
	if err := emit(); err != nil {
		return s.result(), err
	}
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return s.result(), err
		}
		s.Step()
		if err := emit(); err != nil {
			return s.result(), err
		}
	}
	o := s.Outcome()
	s.Log.Add(s.Tick, "--", CatOutcome, o.Description,
		fmt.Sprintf("attackers %d/%d defenders %d/%d", o.AttackerSurvivors, o.AttackerTotal, o.DefenderSurvivors, o.DefenderTotal), 0)
	return s.result(), nil
}

func (s *Sim) result() *playback.Result {
	return &playback.Result{
		Map:     s.Map.Occupancy(),
		States:  s.states,
		Outcome: playback.Outcome{AttackersWin: !anyAlive(s.Defenders)},
	}
}

// Step advances one tick: attacker engagements, defender engagements,
// attacker movement, defender movement.
func (s *Sim) Step() {
	s.Tick++
	engagedA := map[int]bool{}
	engagedD := map[int]bool{}

	for _, a := range s.Attackers {
		if !a.Alive || engagedA[a.ID] {
			continue
		}
		var target *Agent
		for _, d := range s.Defenders {
			if !d.Alive || engagedD[d.ID] || !a.CanSee(d, s.Map) {
				continue
			}
			if target == nil || a.DistanceTo(d) < a.DistanceTo(target) {
				target = d
			}
		}
		if target == nil {
			continue
		}
		s.Log.Add(s.Tick, a.Label(), CatContact, "spotted", target.Label(), a.DistanceTo(target))
		if target.CanSee(a, s.Map) {
			s.duel(a, target)
		} else {
			s.kill(a, target)
		}
		engagedA[a.ID] = true
		engagedD[target.ID] = true
	}

	for _, d := range s.Defenders {
		if !d.Alive || engagedD[d.ID] {
			continue
		}
		var target *Agent
		for _, a := range s.Attackers {
			if !a.Alive || engagedA[a.ID] || !d.CanSee(a, s.Map) {
				continue
			}
			if target == nil || d.DistanceTo(a) < d.DistanceTo(target) {
				target = a
			}
		}
		if target == nil {
			continue
		}
		s.Log.Add(s.Tick, d.Label(), CatContact, "spotted", target.Label(), d.DistanceTo(target))
		// Mutual sight was already resolved as a duel in the attacker phase.
		if !target.CanSee(d, s.Map) {
			s.kill(d, target)
			engagedD[d.ID] = true
			engagedA[target.ID] = true
		}
	}

	for _, a := range s.Attackers {
		if a.Alive {
			s.moveAttacker(a)
		}
	}
	for _, d := range s.Defenders {
		if d.Alive {
			s.moveDefender(d)
		}
	}
}

// duel resolves mutual sight: each side rolls uniform(0, reaction) and
// the lower roll fires first.
func (s *Sim) duel(a, d *Agent) {
	ar := s.rng.Float64() * a.Reaction
	dr := s.rng.Float64() * d.Reaction
	s.Log.AddVerbose(s.Tick, a.Label(), CatCombat, "duel", fmt.Sprintf("%.2f vs %s %.2f", ar, d.Label(), dr), ar-dr)
	if ar < dr {
		s.kill(a, d)
	} else {
		s.kill(d, a)
	}
}

// kill applies scores: +5 to an attacker for a kill, -10 for dying.
func (s *Sim) kill(shooter, victim *Agent) {
	victim.Alive = false
	if shooter.Side == SideAttacker {
		shooter.Score += 5
	} else {
		victim.Score -= 10
	}
	s.Log.Add(s.Tick, shooter.Label(), CatCombat, "kill",
		fmt.Sprintf("%s at (%d,%d)", victim.Label(), victim.X, victim.Y), 0)
}

func (s *Sim) moveAttacker(a *Agent) {
	for _, d := range s.Defenders {
		if d.Alive && a.CanSee(d, s.Map) {
			return // hold while a target is in view
		}
	}
	var nearest *Agent
	for _, d := range s.Defenders {
		if !a.CanHear(d) {
			continue
		}
		if nearest == nil || a.DistanceTo(d) < a.DistanceTo(nearest) {
			nearest = d
		}
	}
	if nearest != nil {
		nx, ny := a.X+sign(a.X-nearest.X), a.Y+sign(a.Y-nearest.Y)
		if s.Map.IsFree(nx, ny) {
			a.moveTo(nx, ny)
			s.Log.AddVerbose(s.Tick, a.Label(), CatMove, "evade", nearest.Label(), 0)
			return
		}
		a.moveRandomly(s.Map, s.rng)
		return
	}
	if wp, ok := a.nextWaypoint(); ok {
		a.legTick++
		if a.moveTowards(wp.Coord.Col, wp.Coord.Row, s.Map, s.rng) {
			if wp.Coord.Col == a.X && wp.Coord.Row == a.Y {
				s.Log.Add(s.Tick, a.Label(), CatRoute, "waypoint_reached", wp.Coord.String(), float64(a.leg))
			}
			return
		}
	}
	a.moveRandomly(s.Map, s.rng)
}

func (s *Sim) moveDefender(d *Agent) {
	var nearest *Agent
	for _, a := range s.Attackers {
		if !d.CanHear(a) {
			continue
		}
		if nearest == nil || d.DistanceTo(a) < d.DistanceTo(nearest) {
			nearest = a
		}
	}
	if nearest != nil {
		d.moveTowards(nearest.X, nearest.Y, s.Map, s.rng)
		s.Log.AddVerbose(s.Tick, d.Label(), CatMove, "close_in", nearest.Label(), 0)
		return
	}
	d.moveRandomly(s.Map, s.rng)
}

func anyAlive(agents []*Agent) bool {
	for _, a := range agents {
		if a.Alive {
			return true
		}
	}
	return false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
