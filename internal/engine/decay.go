package engine

// decayTenths is passive yearly drift in tenths of a point. Wealth never decays.
// Magnitudes only grow from one phase to the next.
var decayTenths = map[LifePhase]Delta{
	PhaseChildhood:   {},
	PhaseAdolescence: {},
	PhaseYoungAdult:  {StatHealth: -5},
	PhaseAdult:       {StatHealth: -10, StatHappiness: -2},
	PhaseMiddleAge:   {StatHealth: -15, StatHappiness: -3, StatSocial: -2},
	PhaseSenior:      {StatHealth: -20, StatHappiness: -5, StatSocial: -5, StatIntelligence: -3},
}

// DecayRate returns a copy of the yearly drift for phase, in tenths of a point.
func DecayRate(phase LifePhase) Delta {
	src := decayTenths[phase]
	out := make(Delta, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Decay advances the fractional carry by one year of phase drift and returns the whole points
// due this year plus the new carry. Whole points are truncated toward zero so a young adult loses
// one health every second year.
func Decay(phase LifePhase, residue Stats) (Delta, Stats) {
	due := Delta{}
	next := residue
	for key, tenths := range decayTenths[phase] {
		p := next.field(key)
		if p == nil {
			continue
		}
		*p += tenths
		whole := *p / 10
		if whole != 0 {
			due[key] = whole
			*p -= whole * 10
		}
	}
	return due, next
}

// YearTick ages stats by one year for phase. choice is summed with the decay before the single
// clamp so a simultaneous gain and loss are never cut short by an intermediate bound.
func YearTick(stats Stats, residue Stats, phase LifePhase, choice Delta) (Stats, Stats, Delta) {
	decay, nextResidue := Decay(phase, residue)
	total := decay.Add(choice)
	return stats.Apply(total), nextResidue, decay
}
