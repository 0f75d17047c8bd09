package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/breach-planner/internal/collab"
	"github.com/Garsondee/breach-planner/internal/config"
	"github.com/Garsondee/breach-planner/internal/logger"
	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
	"github.com/Garsondee/breach-planner/internal/sim"
)

type runStats struct {
	runIndex int
	seed     int64
	summary  playback.Summary
	reason   string

	firstContactTick int
	firstKillTick    int
	firstRouteTick   int

	contacts  int
	kills     int
	waypoints int

	attackerScore int
	bestAttacker  string
	bestScore     int
}

func main() {
	var cfgPath string
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var remote bool
	var asJSON bool
	var dumpLog bool

	flag.StringVar(&cfgPath, "config", "", "YAML config file (scenario, simulation, collaborators)")
	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 0, "tick limit per run (0 = simulation.max_ticks)")
	flag.Int64Var(&seedBase, "seed-base", 0, "base RNG seed for run 1 (0 = simulation.seed)")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.BoolVar(&remote, "remote", false, "run against the configured simulation collaborator")
	flag.BoolVar(&asJSON, "json", false, "print one JSON summary per run instead of the report")
	flag.BoolVar(&dumpLog, "log", false, "print each local run's event log")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Log.Fatal(err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.Component("headless-report")

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		ticks = cfg.Simulation.MaxTicks
	}
	if seedBase == 0 {
		seedBase = cfg.Simulation.Seed
	}
	req, err := cfg.Request()
	if err != nil {
		log.WithError(err).Fatal("scenario rejected")
	}

	var remoteSim collab.Simulator
	if remote {
		c := cfg.Collaborators
		remoteSim = collab.NewSimulator(c.SimulationTransport, c.SimulationURL, c.Timeout)
		log.WithFields(logrus.Fields{"url": c.SimulationURL, "transport": c.SimulationTransport}).Info("using remote simulator")
	}

	if !asJSON {
		fmt.Printf("=== Headless Breach Report ===\n")
		fmt.Printf("grid=%dx%d attackers=%d defenders=%d routes=%d runs=%d ticks=%d seed_base=%d seed_step=%d remote=%t\n\n",
			req.Rows(), req.Cols(), len(req.AttackerPositions), len(req.DefenderPositions), len(req.RouteData),
			runs, ticks, seedBase, seedStep, remote)
	}

	ctx := context.Background()
	all := make([]runStats, 0, runs)
	enc := json.NewEncoder(os.Stdout)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		var stats runStats
		var simLog *sim.Log
		if remoteSim != nil {
			res, err := remoteSim.Simulate(ctx, req)
			if err != nil {
				log.WithError(err).WithField("run", i+1).Fatal("remote run failed")
			}
			stats = statsFromResult(i+1, seed, res, nil)
		} else {
			stats, simLog, err = runLocal(ctx, i+1, seed, ticks, req)
			if err != nil {
				log.WithError(err).WithField("run", i+1).Fatal("run failed")
			}
		}
		all = append(all, stats)
		if asJSON {
			enc.Encode(struct {
				Run  int   `json:"run"`
				Seed int64 `json:"seed"`
				playback.Summary
				Reason string `json:"reason,omitempty"`
			}{stats.runIndex, stats.seed, stats.summary, stats.reason})
			continue
		}
		printRun(stats)
		if dumpLog && simLog != nil {
			fmt.Print(simLog.Format())
			fmt.Println()
		}
	}

	if !asJSON {
		printAggregate(all)
	}
}

func runLocal(ctx context.Context, runIndex int, seed int64, ticks int, req scenario.ScenarioRequest) (runStats, *sim.Log, error) {
	simLog := sim.NewLog(false)
	s, err := sim.New(req, sim.WithSeed(seed), sim.WithMaxTicks(ticks), sim.WithLog(simLog))
	if err != nil {
		return runStats{}, nil, err
	}
	res, err := s.RunContext(ctx, nil)
	if err != nil {
		return runStats{}, nil, err
	}
	rs := statsFromResult(runIndex, seed, res, simLog)
	rs.reason = s.Outcome().Description
	return rs, simLog, nil
}

// statsFromResult folds a finished run into runStats. simLog is nil for
// remote runs, leaving the phase markers at -1.
func statsFromResult(runIndex int, seed int64, res *playback.Result, simLog *sim.Log) runStats {
	rs := runStats{
		runIndex:         runIndex,
		seed:             seed,
		summary:          playback.ComputeSummary(res),
		firstContactTick: -1,
		firstKillTick:    -1,
		firstRouteTick:   -1,
	}
	if final, ok := res.Final(); ok {
		for _, a := range final.Attackers {
			rs.attackerScore += a.Score
			if rs.bestAttacker == "" || a.Score > rs.bestScore {
				rs.bestAttacker = fmt.Sprintf("A%d", a.ID)
				rs.bestScore = a.Score
			}
		}
	}
	if simLog == nil {
		return rs
	}
	entries := simLog.Entries()
	rs.firstContactTick = firstTick(entries, sim.CatContact, "spotted")
	rs.firstKillTick = firstTick(entries, sim.CatCombat, "kill")
	rs.firstRouteTick = firstTick(entries, sim.CatRoute, "waypoint_reached")
	rs.contacts = simLog.Count(sim.CatContact, "spotted")
	rs.kills = simLog.Count(sim.CatCombat, "kill")
	rs.waypoints = simLog.Count(sim.CatRoute, "waypoint_reached")
	return rs
}

func firstTick(entries []sim.LogEntry, category, key string) int {
	for _, e := range entries {
		if e.Category == category && e.Key == key {
			return e.Tick
		}
	}
	return -1
}

// detectStalemate flags runs that ended on the tick limit with both sides
// still standing.
func detectStalemate(rs runStats) (bool, string) {
	s := rs.summary
	if s.SurvivingAttackers == 0 || s.SurvivingDefenders == 0 {
		return false, "decisive"
	}
	var reasons []string
	if rs.kills == 0 {
		reasons = append(reasons, "no_kills")
	}
	if rs.firstContactTick < 0 {
		reasons = append(reasons, "no_contact")
	}
	if s.InitialAttackers > 0 && s.InitialDefenders > 0 &&
		s.SurvivingAttackers*2 > s.InitialAttackers && s.SurvivingDefenders*2 > s.InitialDefenders {
		reasons = append(reasons, "high_mutual_survival")
	}
	if len(reasons) == 0 {
		return false, "attrition"
	}
	return true, strings.Join(reasons, ",")
}

func printRun(rs runStats) {
	s := rs.summary
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome: %s ticks=%d reason=%s\n", s.Outcome(), s.TotalTicks, orNA(rs.reason))
	fmt.Printf("forces: attackers %d/%d defenders %d/%d\n",
		s.SurvivingAttackers, s.InitialAttackers, s.SurvivingDefenders, s.InitialDefenders)
	fmt.Printf("phase_markers: first_contact=%d first_kill=%d first_waypoint=%d\n",
		rs.firstContactTick, rs.firstKillTick, rs.firstRouteTick)
	fmt.Printf("event_totals: contacts=%d kills=%d waypoints_reached=%d\n", rs.contacts, rs.kills, rs.waypoints)
	fmt.Printf("attacker_score: total=%d best=%s (%d)\n", rs.attackerScore, orNA(rs.bestAttacker), rs.bestScore)
	if stale, why := detectStalemate(rs); stale {
		fmt.Printf("stalemate: %s\n", why)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	wins := 0
	totalTicks := 0
	totalAtkSurv := 0
	totalDefSurv := 0
	totalKills := 0
	totalScore := 0
	stalemates := 0
	contactTicks := make([]int, 0, len(all))
	killTicks := make([]int, 0, len(all))
	reasons := map[string]int{}

	for _, rs := range all {
		if rs.summary.AttackersWin {
			wins++
		}
		totalTicks += rs.summary.TotalTicks
		totalAtkSurv += rs.summary.SurvivingAttackers
		totalDefSurv += rs.summary.SurvivingDefenders
		totalKills += rs.kills
		totalScore += rs.attackerScore
		if rs.firstContactTick >= 0 {
			contactTicks = append(contactTicks, rs.firstContactTick)
		}
		if rs.firstKillTick >= 0 {
			killTicks = append(killTicks, rs.firstKillTick)
		}
		if stale, _ := detectStalemate(rs); stale {
			stalemates++
		}
		if rs.reason != "" {
			reasons[rs.reason]++
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d attacker_win_rate=%.0f%% stalemates=%d\n", len(all), avg(wins*100, len(all)), stalemates)
	fmt.Printf("avg_per_run: ticks=%.1f surviving_attackers=%.1f surviving_defenders=%.1f kills=%.1f attacker_score=%.1f\n",
		avg(totalTicks, len(all)), avg(totalAtkSurv, len(all)), avg(totalDefSurv, len(all)), avg(totalKills, len(all)), avg(totalScore, len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_contact=%s first_kill=%s\n", avgTickString(contactTicks), avgTickString(killTicks))
	if len(reasons) > 0 {
		fmt.Printf("outcome_reasons: %s\n", formatCounts(reasons))
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
