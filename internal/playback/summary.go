package playback

import (
	"fmt"
	"strings"
)

// Summary is the end-of-run statistics table.
type Summary struct {
	TotalTicks         int  `json:"total_ticks"`
	InitialAttackers   int  `json:"initial_attackers"`
	InitialDefenders   int  `json:"initial_defenders"`
	SurvivingAttackers int  `json:"surviving_attackers"`
	SurvivingDefenders int  `json:"surviving_defenders"`
	AttackersWin       bool `json:"attackers_win"`
}

// ComputeSummary derives the summary from r. Empty states yield zero counts.
func ComputeSummary(r *Result) Summary {
	s := Summary{TotalTicks: len(r.States), AttackersWin: r.Outcome.AttackersWin}
	if len(r.States) == 0 {
		return s
	}
	first, last := r.States[0], r.States[len(r.States)-1]
	s.InitialAttackers = len(first.Attackers)
	s.InitialDefenders = len(first.Defenders)
	s.SurvivingAttackers = countAlive(last.Attackers)
	s.SurvivingDefenders = countAlive(last.Defenders)
	return s
}

func countAlive(es []Entity) int {
	n := 0
	for _, e := range es {
		if e.Alive {
			n++
		}
	}
	return n
}

// Outcome returns the human-readable outcome label.
func (s Summary) Outcome() string {
	return Outcome{AttackersWin: s.AttackersWin}.String()
}

// Rows returns the summary as metric/value pairs in display order.
func (s Summary) Rows() [][2]string {
	return [][2]string{
		{"Total Ticks", fmt.Sprint(s.TotalTicks)},
		{"Outcome", s.Outcome()},
		{"Initial Attackers", fmt.Sprint(s.InitialAttackers)},
		{"Initial Defenders", fmt.Sprint(s.InitialDefenders)},
		{"Surviving Attackers", fmt.Sprint(s.SurvivingAttackers)},
		{"Surviving Defenders", fmt.Sprint(s.SurvivingDefenders)},
	}
}

// Format renders the summary as an aligned two-column table.
//
//	Total Ticks          42
//	Outcome              Attackers Win
func (s Summary) Format() string {
	var sb strings.Builder
	for _, row := range s.Rows() {
		fmt.Fprintf(&sb, "%-20s %s\n", row[0], row[1])
	}
	return sb.String()
}
