package sim

// OutcomeReason explains how a run ended.
type OutcomeReason struct {
	AttackersWin      bool
	AttackerSurvivors int
	AttackerTotal     int
	DefenderSurvivors int
	DefenderTotal     int
	Tick              int
	Description       string
}

// DetermineOutcome classifies the end state. Attackers win only by
// eliminating every defender; running out of ticks favours the defence.
func DetermineOutcome(attackers, defenders []*Agent, tick, maxTicks int) OutcomeReason {
	r := OutcomeReason{
		AttackerTotal: len(attackers),
		DefenderTotal: len(defenders),
		Tick:          tick,
	}
	for _, a := range attackers {
		if a.Alive {
			r.AttackerSurvivors++
		}
	}
	for _, d := range defenders {
		if d.Alive {
			r.DefenderSurvivors++
		}
	}
	r.AttackersWin = r.DefenderSurvivors == 0

	switch {
	case r.DefenderSurvivors == 0 && r.AttackerSurvivors == 0:
		r.Description = "mutual_elimination"
	case r.DefenderSurvivors == 0:
		r.Description = "defenders_eliminated"
	case r.AttackerSurvivors == 0:
		r.Description = "attackers_eliminated"
	case tick >= maxTicks:
		r.Description = "tick_limit"
	default:
		r.Description = "in_progress"
	}
	return r
}
