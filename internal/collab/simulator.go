package collab

import (
	"context"
	"fmt"
	"time"

	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

// Simulator runs a scenario and returns its playback.
type Simulator interface {
	Simulate(ctx context.Context, req scenario.ScenarioRequest) (*playback.Result, error)
}

// NewSimulator picks the client for transport: "ws" streams over a
// WebSocket, anything else uses plain HTTP.
func NewSimulator(transport, base string, timeout time.Duration) Simulator {
	if transport == "ws" {
		return NewWSSimulator(base, timeout)
	}
	return NewHTTPSimulator(base, timeout)
}

// HTTPSimulator POSTs the request to <base>/simulate.
type HTTPSimulator struct {
	c client
}

// NewHTTPSimulator returns a simulator client for base.
func NewHTTPSimulator(base string, timeout time.Duration) *HTTPSimulator {
	return &HTTPSimulator{c: newClient(base, timeout)}
}

// Simulate implements Simulator.
func (s *HTTPSimulator) Simulate(ctx context.Context, req scenario.ScenarioRequest) (*playback.Result, error) {
	var res playback.Result
	if err := s.c.postJSON(ctx, "/simulate", req, &res); err != nil {
		return nil, err
	}
	if err := ValidateResult(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ValidateResult rejects results the playback view cannot render: an empty
// or ragged map, or no states at all. Out-of-bounds entities are tolerated
// and filtered at render time.
func ValidateResult(r *playback.Result) error {
	if r == nil {
		return fmt.Errorf("collab: nil result: %w", ErrMalformedResponse)
	}
	if len(r.Map) == 0 || len(r.Map[0]) == 0 {
		return fmt.Errorf("collab: result has an empty map: %w", ErrMalformedResponse)
	}
	cols := len(r.Map[0])
	for i, row := range r.Map {
		if len(row) != cols {
			return fmt.Errorf("collab: result map row %d has %d cols, want %d: %w", i, len(row), cols, ErrMalformedResponse)
		}
	}
	if len(r.States) == 0 {
		return fmt.Errorf("collab: result has no states: %w", ErrMalformedResponse)
	}
	return nil
}
