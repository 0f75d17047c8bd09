package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Garsondee/breach-planner/internal/collab"
	"github.com/Garsondee/breach-planner/internal/config"
	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
	"github.com/Garsondee/breach-planner/internal/sim"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.MaxTicks = 60
	cfg.Simulation.Seed = 11
	s := New(cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func testRequest() scenario.ScenarioRequest {
	g := scenario.NewGrid(10, 10)
	g.Paint(8, 1, scenario.ToolPlayer)
	g.Paint(1, 8, scenario.ToolDefender)
	g.Paint(5, 5, scenario.ToolWall)
	return scenario.Serialize(g, nil, scenario.DefaultAttackerParams(), scenario.DefaultDefenderParams(), 10)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health=%d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("CORS header missing")
	}
}

func TestSimulate_MatchesLocalRun(t *testing.T) {
	s, ts := newTestServer(t)
	req := testRequest()

	got, err := collab.NewHTTPSimulator(ts.URL, 0).Simulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	want, err := sim.Local{Seed: s.Seed, MaxTicks: s.MaxTicks}.Simulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.States) != len(want.States) || got.Outcome != want.Outcome {
		t.Fatalf("remote %d ticks %s, local %d ticks %s", len(got.States), got.Outcome, len(want.States), want.Outcome)
	}
	if got.Map[5][5] != 1 {
		t.Fatal("wall missing from result map")
	}
	gf, _ := got.Final()
	wf, _ := want.Final()
	for i := range wf.Attackers {
		if gf.Attackers[i].X != wf.Attackers[i].X || gf.Attackers[i].Y != wf.Attackers[i].Y {
			t.Fatalf("attacker %d diverged: %+v vs %+v", i, gf.Attackers[i], wf.Attackers[i])
		}
	}
}

func TestSimulate_EchoesRequestID(t *testing.T) {
	_, ts := newTestServer(t)
	body, _ := json.Marshal(testRequest())
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/simulate", bytes.NewReader(body))
	req.Header.Set(collab.RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get(collab.RequestIDHeader) != "abc-123" {
		t.Fatalf("request id=%q", resp.Header.Get(collab.RequestIDHeader))
	}
}

func TestSimulate_RejectsCollision(t *testing.T) {
	_, ts := newTestServer(t)
	req := testRequest()
	req.DefenderPositions = append(req.DefenderPositions, req.AttackerPositions[0])

	_, err := collab.NewHTTPSimulator(ts.URL, 0).Simulate(context.Background(), req)
	var se *collab.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Fatalf("want 400 StatusError, got %v", err)
	}
	if !strings.Contains(se.Message, "collides") {
		t.Fatalf("message=%q", se.Message)
	}
}

func TestSimulate_BadBodyAndMethod(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/simulate", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	var e struct{ Error string }
	json.NewDecoder(resp.Body).Decode(&e)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest || e.Error == "" {
		t.Fatalf("bad body: %d %q", resp.StatusCode, e.Error)
	}

	resp, err = http.Get(ts.URL + "/simulate")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /simulate=%d", resp.StatusCode)
	}
}

func TestWSSimulate_StreamsTicks(t *testing.T) {
	_, ts := newTestServer(t)
	ws := collab.NewWSSimulator(ts.URL, 0)
	var ticks []playback.TickSnapshot
	ws.OnTick = func(s playback.TickSnapshot) { ticks = append(ticks, s) }

	res, err := ws.Simulate(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if len(ticks) != len(res.States) || len(ticks) == 0 {
		t.Fatalf("streamed %d ticks, result has %d", len(ticks), len(res.States))
	}
	for i, s := range res.States {
		if s.Tick != i {
			t.Fatalf("state %d has tick %d", i, s.Tick)
		}
	}
	if res.Rows() != 10 || res.Cols() != 10 {
		t.Fatalf("map %dx%d", res.Rows(), res.Cols())
	}
}

func TestWSSimulate_ErrorFrame(t *testing.T) {
	_, ts := newTestServer(t)
	req := testRequest()
	req.Grid = [][]int{{0, 0}, {0}}
	_, err := collab.NewWSSimulator(ts.URL, 0).Simulate(context.Background(), req)
	var se *collab.StatusError
	if !errors.As(err, &se) || se.Message == "" {
		t.Fatalf("want StatusError from error frame, got %v", err)
	}
}
