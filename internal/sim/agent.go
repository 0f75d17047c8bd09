package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

// DefaultViewAngle is the half-width of every agent's vision cone.
const DefaultViewAngle = math.Pi / 4

// Side identifies a faction.
type Side uint8

const (
	SideAttacker Side = iota
	SideDefender
)

func (s Side) String() string {
	if s == SideDefender {
		return "defender"
	}
	return "attacker"
}

// Agent is one simulated actor.
type Agent struct {
	ID          int
	Side        Side
	X, Y        int
	Orientation float64 // radians, 0 = +x, π/2 = +y
	Alive       bool
	Score       int

	VisionRange float64
	ViewAngle   float64
	SoundRadius float64
	Reaction    float64

	visited map[[2]int]bool
	route   []scenario.Waypoint
	leg     int // index into route
	legTick int // ticks spent on the current leg
}

func newAgent(id int, side Side, pos scenario.Position, p scenario.FactionParams) *Agent {
	a := &Agent{
		ID:          id,
		Side:        side,
		X:           pos.X(),
		Y:           pos.Y(),
		Orientation: scenario.NormalizeOrientation(pos.Orientation()),
		Alive:       true,
		VisionRange: p.VisionRange,
		ViewAngle:   DefaultViewAngle,
		SoundRadius: p.SoundRadius,
		Reaction:    p.Reaction,
	}
	if side == SideAttacker {
		a.visited = map[[2]int]bool{{a.X, a.Y}: true}
	}
	return a
}

// Label is the short log name, e.g. "A0" or "D3".
func (a *Agent) Label() string {
	if a.Side == SideDefender {
		return fmt.Sprintf("D%d", a.ID)
	}
	return fmt.Sprintf("A%d", a.ID)
}

// DistanceTo returns the Euclidean cell distance to o.
func (a *Agent) DistanceTo(o *Agent) float64 {
	return math.Hypot(float64(o.X-a.X), float64(o.Y-a.Y))
}

// InCone reports whether o lies within range and the vision cone.
func (a *Agent) InCone(o *Agent) bool {
	d := a.DistanceTo(o)
	if d > a.VisionRange {
		return false
	}
	if d == 0 {
		return true
	}
	diff := normalizeAngle(math.Atan2(float64(o.Y-a.Y), float64(o.X-a.X)) - a.Orientation)
	return math.Abs(diff) <= a.ViewAngle+1e-6
}

// CanSee reports whether o is alive, in the cone, and not occluded.
func (a *Agent) CanSee(o *Agent, m *Map) bool {
	if !o.Alive || !a.InCone(o) {
		return false
	}
	return m.LineOfSight(a.X, a.Y, o.X, o.Y)
}

// CanHear reports whether o is alive and within the sound radius. Walls do
// not block sound.
func (a *Agent) CanHear(o *Agent) bool {
	return o.Alive && a.DistanceTo(o) <= a.SoundRadius
}

// moveTo steps to (x,y), facing the direction of travel. Attackers score
// one point for every cell they enter for the first time.
func (a *Agent) moveTo(x, y int) {
	dx, dy := x-a.X, y-a.Y
	if dx != 0 || dy != 0 {
		a.Orientation = scenario.NormalizeOrientation(math.Atan2(float64(dy), float64(dx)))
	}
	a.X, a.Y = x, y
	if a.visited != nil && !a.visited[[2]int{x, y}] {
		a.visited[[2]int{x, y}] = true
		a.Score++
	}
}

var directions = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

func shuffled(rng *rand.Rand) [4][2]int {
	d := directions
	rng.Shuffle(len(d), func(i, j int) { d[i], d[j] = d[j], d[i] })
	return d
}

// moveRandomly takes the first free orthogonal step in random order.
func (a *Agent) moveRandomly(m *Map, rng *rand.Rand) {
	for _, d := range shuffled(rng) {
		if nx, ny := a.X+d[0], a.Y+d[1]; m.IsFree(nx, ny) {
			a.moveTo(nx, ny)
			return
		}
	}
}

// moveTowards takes the free orthogonal step closest to (tx,ty). Ties are
// broken by the random direction order. Returns false when boxed in.
func (a *Agent) moveTowards(tx, ty int, m *Map, rng *rand.Rand) bool {
	best, bestDist := [2]int{}, math.Inf(1)
	for _, d := range shuffled(rng) {
		nx, ny := a.X+d[0], a.Y+d[1]
		if !m.IsFree(nx, ny) {
			continue
		}
		if dist := math.Hypot(float64(tx-nx), float64(ty-ny)); dist < bestDist {
			best, bestDist = [2]int{nx, ny}, dist
		}
	}
	if math.IsInf(bestDist, 1) {
		return false
	}
	a.moveTo(best[0], best[1])
	return true
}

// nextWaypoint returns the active route target, skipping any leg already
// reached or whose tick budget is spent.
func (a *Agent) nextWaypoint() (scenario.Waypoint, bool) {
	for a.leg < len(a.route) {
		wp := a.route[a.leg]
		reached := wp.Coord.Col == a.X && wp.Coord.Row == a.Y
		expired := wp.TickTime > 0 && a.legTick >= wp.TickTime
		if !reached && !expired {
			return wp, true
		}
		a.leg++
		a.legTick = 0
	}
	return scenario.Waypoint{}, false
}

func (a *Agent) snapshot() playback.Entity {
	return playback.Entity{
		ID:          a.ID,
		X:           a.X,
		Y:           a.Y,
		Orientation: a.Orientation,
		Alive:       a.Alive,
		Score:       a.Score,
	}
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
