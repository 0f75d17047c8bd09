// Package playback turns a simulation result into per-tick spatial grids
// and summary statistics.
package playback

// Entity is one actor as reported at a single tick.
type Entity struct {
	ID          int     `json:"id"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Orientation float64 `json:"orientation"`
	Alive       bool    `json:"alive"`
	Score       int     `json:"score,omitempty"`
}

// TickSnapshot is the state of both sides after one tick.
type TickSnapshot struct {
	Tick      int      `json:"tick"`
	Attackers []Entity `json:"attackers"`
	Defenders []Entity `json:"defenders"`
}

// Outcome reports which side won.
type Outcome struct {
	AttackersWin bool `json:"attackers_win"`
}

func (o Outcome) String() string {
	if o.AttackersWin {
		return "Attackers Win"
	}
	return "Defenders Win"
}

// Result is the full response of a simulation run. Map is the binary
// occupancy grid frozen at scenario start (1 = wall).
type Result struct {
	Map     [][]int        `json:"map"`
	States  []TickSnapshot `json:"states"`
	Outcome Outcome        `json:"outcome"`
}

// Rows returns the map height.
func (r *Result) Rows() int { return len(r.Map) }

// Cols returns the map width, taken from the first row.
func (r *Result) Cols() int {
	if len(r.Map) == 0 {
		return 0
	}
	return len(r.Map[0])
}

// IsWall reports whether (row, col) is a wall. Out of range reads as open.
func (r *Result) IsWall(row, col int) bool {
	if row < 0 || row >= len(r.Map) || col < 0 || col >= len(r.Map[row]) {
		return false
	}
	return r.Map[row][col] == 1
}

// ClampTick forces i into [0, len(States)-1], or 0 when there are no states.
func (r *Result) ClampTick(i int) int {
	last := len(r.States) - 1
	if i > last {
		i = last
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Snapshot returns the clamped tick's snapshot; ok is false when there are
// no states.
func (r *Result) Snapshot(i int) (TickSnapshot, bool) {
	if len(r.States) == 0 {
		return TickSnapshot{}, false
	}
	return r.States[r.ClampTick(i)], true
}

// Final returns the last snapshot.
func (r *Result) Final() (TickSnapshot, bool) {
	return r.Snapshot(len(r.States) - 1)
}
