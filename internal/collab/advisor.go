package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

// MaxAdvisedWaypoints caps each suggested route.
const MaxAdvisedWaypoints = 5

// AdviceRequest is what the advisor sees: the grid size, the routes that
// were flown and the final tick.
type AdviceRequest struct {
	Columns int                         `json:"columns"`
	Rows    int                         `json:"rows"`
	Routes  map[string][]scenario.Coord `json:"routes"`
	Data    playback.TickSnapshot       `json:"data"`
}

// Advice maps a route origin key to suggested waypoints. It is for display
// only and never written back into the editor's routes.
type Advice map[string][]scenario.Coord

// Keys returns the origin keys in sorted order.
func (a Advice) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const advicePrompt = `The current JSON representation of our simulation looks like this:
%s

Take the outcome in "data" into account and change the routes the players followed to something
more likely to succeed. Routes have this shape:
{"routes": {"{ROW}-{COL}": [{"row": number, "col": number}, ...]}}

Each key must be the starting cell of a player. Use at most %d waypoints per route.
Reply with the JSON object only.`

// AdvicePrompt renders the advisory prompt for req.
func AdvicePrompt(req AdviceRequest) (string, error) {
	b, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("collab: encode advice request: %w", err)
	}
	return fmt.Sprintf(advicePrompt, b, MaxAdvisedWaypoints), nil
}

// Advisor asks the assistant endpoint for revised routes.
type Advisor struct {
	a *Assistant
}

// NewAdvisor returns an advisor sharing the assistant endpoint at base.
func NewAdvisor(base string, timeout time.Duration) *Advisor {
	return &Advisor{a: NewAssistant(base, timeout)}
}

// Advise returns sanitized route suggestions.
func (v *Advisor) Advise(ctx context.Context, req AdviceRequest) (Advice, error) {
	prompt, err := AdvicePrompt(req)
	if err != nil {
		return nil, err
	}
	text, err := v.a.Ask(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Routes map[string][]scenario.Coord `json:"routes"`
	}
	if err := decodeEmbedded(text, &doc); err != nil {
		return nil, err
	}
	if doc.Routes == nil {
		return nil, malformed("missing routes")
	}
	return SanitizeAdvice(doc.Routes, req.Rows, req.Columns)
}

// SanitizeAdvice rejects unparsable keys, drops waypoints outside a
// rows×cols grid and truncates each route to MaxAdvisedWaypoints.
func SanitizeAdvice(routes map[string][]scenario.Coord, rows, cols int) (Advice, error) {
	out := make(Advice, len(routes))
	for key, wps := range routes {
		if _, err := scenario.ParseKey(key); err != nil {
			return nil, malformed("%v", err)
		}
		kept := make([]scenario.Coord, 0, min(len(wps), MaxAdvisedWaypoints))
		for _, wp := range wps {
			if len(kept) == MaxAdvisedWaypoints {
				break
			}
			if wp.Row < 0 || wp.Row >= rows || wp.Col < 0 || wp.Col >= cols {
				continue
			}
			kept = append(kept, wp)
		}
		out[key] = kept
	}
	return out, nil
}
