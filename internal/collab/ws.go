package collab

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/breach-planner/internal/logger"
	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

// Frame types on the streaming simulation socket.
const (
	FrameTick  = "tick"
	FrameDone  = "done"
	FrameError = "error"
)

// Frame is one server→client message on /ws/simulate. The client sends a
// single ScenarioRequest; the server answers with zero or more tick frames
// followed by exactly one done or error frame.
type Frame struct {
	Type    string                 `json:"type"`
	State   *playback.TickSnapshot `json:"state,omitempty"`
	Map     [][]int                `json:"map,omitempty"`
	Outcome *playback.Outcome      `json:"outcome,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// WSSimulator streams a run over <base>/ws/simulate.
type WSSimulator struct {
	url    string
	dialer *websocket.Dialer

	// OnTick, when set, is called from the Simulate goroutine with every
	// tick as it arrives.
	OnTick func(playback.TickSnapshot)
}

// NewWSSimulator accepts an http(s) or ws(s) base URL.
func NewWSSimulator(base string, timeout time.Duration) *WSSimulator {
	u := strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	}
	d := *websocket.DefaultDialer
	d.HandshakeTimeout = timeout
	if timeout == 0 {
		d.HandshakeTimeout = 45 * time.Second
	}
	return &WSSimulator{url: u + "/ws/simulate", dialer: &d}
}

// Simulate implements Simulator. Cancelling ctx closes the socket.
func (s *WSSimulator) Simulate(ctx context.Context, req scenario.ScenarioRequest) (*playback.Result, error) {
	id := uuid.NewString()
	log := logger.Component("collab").WithFields(logrus.Fields{"url": s.url, "request_id": id})

	hdr := http.Header{}
	hdr.Set(RequestIDHeader, id)
	conn, _, err := s.dialer.DialContext(ctx, s.url, hdr)
	if err != nil {
		log.WithError(err).Warn("dial failed")
		return nil, fmt.Errorf("collab: dial %s: %w", s.url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("collab: send request: %w", err)
	}

	res := &playback.Result{}
	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).Warn("stream ended early")
			return nil, fmt.Errorf("collab: read frame: %v: %w", err, ErrMalformedResponse)
		}
		switch f.Type {
		case FrameTick:
			if f.State == nil {
				return nil, fmt.Errorf("collab: tick frame without state: %w", ErrMalformedResponse)
			}
			res.States = append(res.States, *f.State)
			if s.OnTick != nil {
				s.OnTick(*f.State)
			}
		case FrameDone:
			if f.Outcome == nil {
				return nil, fmt.Errorf("collab: done frame without outcome: %w", ErrMalformedResponse)
			}
			res.Map = f.Map
			res.Outcome = *f.Outcome
			if err := ValidateResult(res); err != nil {
				return nil, err
			}
			log.WithField("ticks", len(res.States)).Debug("stream complete")
			return res, nil
		case FrameError:
			return nil, &StatusError{Code: http.StatusUnprocessableEntity, Message: f.Error}
		default:
			return nil, fmt.Errorf("collab: unknown frame type %q: %w", f.Type, ErrMalformedResponse)
		}
	}
}
