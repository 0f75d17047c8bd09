package sim

import (
	"context"

	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

// Local runs the reference simulation in-process. It satisfies the
// editor's simulator interface, so the planner works without a server.
type Local struct {
	Seed     int64
	MaxTicks int
	Verbose  bool
}

// Simulate runs req to completion.
func (l Local) Simulate(ctx context.Context, req scenario.ScenarioRequest) (*playback.Result, error) {
	s, err := New(req, WithSeed(l.Seed), WithMaxTicks(l.MaxTicks), WithLog(NewLog(l.Verbose)))
	if err != nil {
		return nil, err
	}
	return s.RunContext(ctx, nil)
}
