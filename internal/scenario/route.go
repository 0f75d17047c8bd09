package scenario

// RouteMap maps a route origin (the cell a player stood on when routing
// began) to its ordered waypoints. Keys iterate in insertion order so
// serialized payloads are deterministic. Keys are never pruned except by
// Delete, so an origin may outlive the player that created it.
type RouteMap struct {
	order  []Coord
	routes map[Coord][]Coord
}

// NewRouteMap creates an empty route map.
func NewRouteMap() *RouteMap {
	return &RouteMap{routes: make(map[Coord][]Coord)}
}

// Reset starts (or restarts) an empty route for origin.
func (m *RouteMap) Reset(origin Coord) {
	if _, ok := m.routes[origin]; !ok {
		m.order = append(m.order, origin)
	}
	m.routes[origin] = []Coord{}
}

// Append adds a waypoint to origin's route, creating the entry if it was
// deleted while recording.
func (m *RouteMap) Append(origin, wp Coord) {
	if _, ok := m.routes[origin]; !ok {
		m.order = append(m.order, origin)
	}
	m.routes[origin] = append(m.routes[origin], wp)
}

// Delete removes origin's route. Returns true if an entry existed.
func (m *RouteMap) Delete(origin Coord) bool {
	if _, ok := m.routes[origin]; !ok {
		return false
	}
	delete(m.routes, origin)
	for i, o := range m.order {
		if o == origin {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns origin's waypoints. The slice must not be modified.
func (m *RouteMap) Get(origin Coord) ([]Coord, bool) {
	wps, ok := m.routes[origin]
	return wps, ok
}

// Len returns the number of routes.
func (m *RouteMap) Len() int { return len(m.order) }

// Origins returns route origins in insertion order.
func (m *RouteMap) Origins() []Coord {
	out := make([]Coord, len(m.order))
	copy(out, m.order)
	return out
}

// IsWaypoint reports whether any route passes through c.
func (m *RouteMap) IsWaypoint(c Coord) bool {
	for _, wps := range m.routes {
		for _, wp := range wps {
			if wp == c {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy.
func (m *RouteMap) Clone() *RouteMap {
	out := NewRouteMap()
	for _, o := range m.order {
		wps := m.routes[o]
		cp := make([]Coord, len(wps))
		copy(cp, wps)
		out.order = append(out.order, o)
		out.routes[o] = cp
	}
	return out
}

// ToKeyed returns the wire form {"<row>-<col>": [{row,col}...]}.
func (m *RouteMap) ToKeyed() map[string][]Coord {
	out := make(map[string][]Coord, len(m.order))
	for _, o := range m.order {
		wps := m.routes[o]
		cp := make([]Coord, len(wps))
		copy(cp, wps)
		out[o.Key()] = cp
	}
	return out
}

// RoutingState is either idle or recording a route from an origin.
type RoutingState struct {
	recording bool
	origin    Coord
	last      Coord
	hasLast   bool
}

// Recording reports whether a route is being recorded.
func (s RoutingState) Recording() bool { return s.recording }

// Origin returns the active origin; ok is false while idle.
func (s RoutingState) Origin() (Coord, bool) { return s.origin, s.recording }

// LastWaypoint returns the most recent waypoint of the active recording.
func (s RoutingState) LastWaypoint() (Coord, bool) {
	return s.last, s.recording && s.hasLast
}

// Recorder is the click-driven route state machine. At most one recording
// is active; completed routes accumulate in the RouteMap.
type Recorder struct {
	state  RoutingState
	routes *RouteMap
}

// NewRecorder creates an idle recorder writing into routes.
func NewRecorder(routes *RouteMap) *Recorder {
	return &Recorder{routes: routes}
}

// State returns the current routing state.
func (r *Recorder) State() RoutingState { return r.state }

// Routes returns the route map the recorder writes into.
func (r *Recorder) Routes() *RouteMap { return r.routes }

// RecorderEvent describes what a click did.
type RecorderEvent uint8

const (
	RouteIgnored  RecorderEvent = iota // idle click on a non-player cell
	RouteStarted                       // idle → recording
	RouteExtended                      // waypoint appended
	RouteFinished                      // repeated click, recording → idle
)

func (e RecorderEvent) String() string {
	switch e {
	case RouteStarted:
		return "started"
	case RouteExtended:
		return "extended"
	case RouteFinished:
		return "finished"
	default:
		return "ignored"
	}
}

// Click feeds a router-tool click on cell at, which currently holds cell.
// While recording every click is a waypoint, even on another player.
func (r *Recorder) Click(at Coord, cell Cell) RecorderEvent {
	if !r.state.recording {
		if cell.Kind != CellPlayer {
			return RouteIgnored
		}
		r.state = RoutingState{recording: true, origin: at}
		r.routes.Reset(at)
		return RouteStarted
	}
	if r.state.hasLast && r.state.last == at {
		r.state = RoutingState{}
		return RouteFinished
	}
	r.routes.Append(r.state.origin, at)
	r.state.last = at
	r.state.hasLast = true
	return RouteExtended
}

// Cancel forces the recorder idle, keeping recorded waypoints.
func (r *Recorder) Cancel() {
	r.state = RoutingState{}
}
