package engine

// PhaseForAge maps an age onto its life phase. Bracket upper bounds are exclusive; negative ages
// fall into childhood so the mapping is total.
func PhaseForAge(age int) LifePhase {
	switch {
	case age < 13:
		return PhaseChildhood
	case age < 18:
		return PhaseAdolescence
	case age < 30:
		return PhaseYoungAdult
	case age < 50:
		return PhaseAdult
	case age < 65:
		return PhaseMiddleAge
	default:
		return PhaseSenior
	}
}
