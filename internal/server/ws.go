package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Garsondee/breach-planner/internal/collab"
	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

const (
	writeWait      = 10 * time.Second
	readWait       = 30 * time.Second
	maxMessageSize = maxRequestBytes
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWS runs one scenario per connection: read a request, stream a
// tick frame per state, finish with done or error, close.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	log := s.requestLog(w, r)
	conn, err := upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		log.WithError(err).Warn("upgrade failed")
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.WithError(err).Debug("close websocket")
		}
	}()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(readWait))

	send := func(f collab.Frame) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(f)
	}

	var req scenario.ScenarioRequest
	if err := conn.ReadJSON(&req); err != nil {
		log.WithError(err).Warn("bad request frame")
		send(collab.Frame{Type: collab.FrameError, Error: "invalid request: " + err.Error()})
		return
	}
	run, err := s.newSim(req)
	if err != nil {
		log.WithError(err).Warn("scenario rejected")
		send(collab.Frame{Type: collab.FrameError, Error: err.Error()})
		return
	}
	res, err := run.RunContext(r.Context(), func(t playback.TickSnapshot) error {
		return send(collab.Frame{Type: collab.FrameTick, State: &t})
	})
	if err != nil {
		log.WithError(err).Warn("stream aborted")
		return
	}
	if err := send(collab.Frame{Type: collab.FrameDone, Map: res.Map, Outcome: outcomeOf(res)}); err != nil {
		log.WithError(err).Warn("send done frame")
		return
	}
	log.WithField("ticks", len(res.States)).Info("stream complete")
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
