// Package server hosts the reference simulation as a collaborator: a JSON
// endpoint, a WebSocket stream and a health probe.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/breach-planner/internal/collab"
	"github.com/Garsondee/breach-planner/internal/config"
	"github.com/Garsondee/breach-planner/internal/logger"
	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
	"github.com/Garsondee/breach-planner/internal/sim"
)

const maxRequestBytes = 4 << 20

// Server hosts the reference simulation over HTTP and WebSocket.
type Server struct {
	Addr     string
	Seed     int64
	MaxTicks int
	Verbose  bool

	log *logrus.Entry
}

// New builds a Server from the server and simulation sections of cfg.
func New(cfg *config.Config) *Server {
	return &Server{
		Addr:     cfg.Server.Addr,
		Seed:     cfg.Simulation.Seed,
		MaxTicks: cfg.Simulation.MaxTicks,
		Verbose:  cfg.Simulation.Verbose,
		log:      logger.Component("server"),
	}
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/simulate", enableCORS(s.handleSimulate))
	mux.HandleFunc("/ws/simulate", enableCORS(s.handleWS))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Infof("simulation collaborator listening on %s", s.Addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+collab.RequestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// requestLog tags the request with the caller's id, minting one if absent,
// and echoes it on the response.
func (s *Server) requestLog(w http.ResponseWriter, r *http.Request) *logrus.Entry {
	id := r.Header.Get(collab.RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(collab.RequestIDHeader, id)
	return s.log.WithFields(logrus.Fields{"request_id": id, "path": r.URL.Path})
}

func (s *Server) newSim(req scenario.ScenarioRequest) (*sim.Sim, error) {
	return sim.New(req, sim.WithSeed(s.Seed), sim.WithMaxTicks(s.MaxTicks), sim.WithLog(sim.NewLog(s.Verbose)))
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	log := s.requestLog(w, r)
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req scenario.ScenarioRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		log.WithError(err).Warn("bad request body")
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	run, err := s.newSim(req)
	if err != nil {
		log.WithError(err).Warn("scenario rejected")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start := time.Now()
	res, err := run.RunContext(r.Context(), nil)
	if err != nil {
		log.WithError(err).Warn("run aborted")
		return
	}
	log.WithFields(logrus.Fields{
		"ticks":   len(res.States),
		"outcome": res.Outcome.String(),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("simulation complete")
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// outcomeOf is the done-frame payload for a finished run.
func outcomeOf(res *playback.Result) *playback.Outcome {
	o := res.Outcome
	return &o
}
