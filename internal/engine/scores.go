package engine

import (
	"math"

	"github.com/pkg/errors"
)

// WellBeingScore is the weighted mean of the stats rounded to the nearest integer.
func WellBeingScore(s Stats) int {
	v := float64(s.Health)*0.25 +
		float64(s.Happiness)*0.25 +
		float64(s.Intelligence)*0.15 +
		float64(s.Wealth)*0.15 +
		float64(s.Social)*0.20
	return int(math.Round(v))
}

// SuccessProbability averages actual/required per required stat (each ratio capped at 1.5) and
// clamps the mean into [0.1, 1.0]. An empty requirement set always succeeds. A threshold <= 0
// or an unknown stat is corrupt data.
func SuccessProbability(required Delta, actual Stats) (float64, error) {
	if len(required) == 0 {
		return 1.0, nil
	}
	total := 0.0
	for key, need := range required {
		have, ok := actual.Get(key)
		if !ok {
			return 0, errors.Wrapf(ErrDataContract, "unknown stat %q", key)
		}
		if need <= 0 {
			return 0, errors.Wrapf(ErrDataContract, "required %s threshold %d", key, need)
		}
		total += math.Min(1.5, float64(have)/float64(need))
	}
	avg := total / float64(len(required))
	return math.Max(0.1, math.Min(1.0, avg)), nil
}

// SynergyBonus returns the bonuses earned by stat pairs. Rules are checked in order and a later
// rule replaces an earlier bonus on the same stat, so leadership caps the wealth bonus at 1.
func SynergyBonus(s Stats) Delta {
	out := Delta{}
	if s.Intelligence > 70 && s.Wealth > 60 {
		out[StatWealth] = 2
	}
	if s.Social > 70 && s.Happiness > 60 {
		out[StatHappiness] = 1
		out[StatSocial] = 1
	}
	if s.Health > 80 && s.Happiness > 70 {
		out[StatHealth] = 1
	}
	if s.Intelligence > 75 && s.Social > 75 {
		out[StatWealth] = 1
	}
	return out
}

// LifeExpectancy estimates the age of death, never earlier than next year.
func LifeExpectancy(s Stats, age int) int {
	expected := 75 +
		float64(s.Health-50)*0.3 +
		float64(s.Happiness-50)*0.1 +
		float64(s.Wealth-50)*0.15 +
		float64(s.Social-50)*0.05
	rounded := int(math.Floor(expected + 0.5))
	if rounded < age+1 {
		return age + 1
	}
	return rounded
}

// CharacterScore is the leaderboard score: stat total, ten per year past 18, fifty per achievement.
func CharacterScore(s Stats, age int, achievements []string) int {
	bonus := age - 18
	if bonus < 0 {
		bonus = 0
	}
	return s.Sum() + bonus*10 + len(achievements)*50
}

type EndReason string

const (
	EndNone   EndReason = ""
	EndHealth EndReason = "health"
	EndOldAge EndReason = "old_age"
)

// EndCheck is the outcome of ShouldGameEnd.
type EndCheck struct {
	Ended  bool      `json:"ended"`
	Reason EndReason `json:"reason,omitempty"`
	// Chance is the death probability that was rolled against; zero when no roll happened.
	Chance float64 `json:"chance,omitempty"`
}

// ShouldGameEnd decides whether the life is over. Zero health ends it outright; from 80 on a
// single draw from src is compared against (age-80)*0.1 + (100-health)*0.02.
func ShouldGameEnd(c Character, src Source) EndCheck {
	if c.Stats.Health <= 0 {
		return EndCheck{Ended: true, Reason: EndHealth}
	}
	if c.Age < 80 {
		return EndCheck{}
	}
	if src == nil {
		src = SystemSource()
	}
	chance := float64(c.Age-80)*0.1 + float64(100-c.Stats.Health)*0.02
	if src.Float64() < chance {
		return EndCheck{Ended: true, Reason: EndOldAge, Chance: chance}
	}
	return EndCheck{Chance: chance}
}

// EventProbability scales a base yearly event chance by life phase and stat pressure.
func EventProbability(base float64, s Stats, phase LifePhase) float64 {
	modifier := 1.0
	switch phase {
	case PhaseAdolescence:
		modifier *= 1.2
	case PhaseYoungAdult:
		modifier *= 1.1
	case PhaseSenior:
		modifier *= 0.8
	}
	if s.Health < 30 {
		modifier *= 1.3
	}
	if s.Happiness < 30 {
		modifier *= 1.2
	}
	if s.Wealth > 80 {
		modifier *= 0.9
	}
	return base * modifier
}

// BaseEventChance is the yearly event chance before EventProbability modifiers.
func BaseEventChance(d Difficulty) float64 {
	switch d {
	case DifficultyEasy:
		return 0.6
	case DifficultyHard:
		return 0.9
	default:
		return 0.75
	}
}
