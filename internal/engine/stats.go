package engine

const (
	MinStat = 0
	MaxStat = 100
)

// Clamp stat into 0-100.
func Clamp(v int) int {
	if v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

// ApplyDelta adds delta to current with saturating arithmetic. The sum is taken in int64 so
// extreme deltas pin to the bounds instead of wrapping.
func ApplyDelta(current, delta int) int {
	sum := int64(current) + int64(delta)
	if sum < MinStat {
		return MinStat
	}
	if sum > MaxStat {
		return MaxStat
	}
	return int(sum)
}

type Stats struct {
	Health       int `json:"health" yaml:"health"`
	Happiness    int `json:"happiness" yaml:"happiness"`
	Intelligence int `json:"intelligence" yaml:"intelligence"`
	Wealth       int `json:"wealth" yaml:"wealth"`
	Social       int `json:"social" yaml:"social"`
}

// UniformStats returns stats with every attribute set to v (clamped).
func UniformStats(v int) Stats {
	v = Clamp(v)
	return Stats{Health: v, Happiness: v, Intelligence: v, Wealth: v, Social: v}
}

// Get returns the value for key; ok is false for unknown keys.
func (s Stats) Get(key StatKey) (int, bool) {
	switch key {
	case StatHealth:
		return s.Health, true
	case StatHappiness:
		return s.Happiness, true
	case StatIntelligence:
		return s.Intelligence, true
	case StatWealth:
		return s.Wealth, true
	case StatSocial:
		return s.Social, true
	}
	return 0, false
}

func (s *Stats) field(key StatKey) *int {
	switch key {
	case StatHealth:
		return &s.Health
	case StatHappiness:
		return &s.Happiness
	case StatIntelligence:
		return &s.Intelligence
	case StatWealth:
		return &s.Wealth
	case StatSocial:
		return &s.Social
	}
	return nil
}

// Apply returns a copy with delta applied. Per stat the deltas are already summed in the map, so
// each stat is clamped exactly once. Unknown keys are ignored.
func (s Stats) Apply(delta Delta) Stats {
	out := s
	for key, d := range delta {
		if p := out.field(key); p != nil {
			*p = ApplyDelta(*p, d)
		}
	}
	return out
}

// Clamped returns a copy with every stat forced into range.
func (s Stats) Clamped() Stats {
	return Stats{
		Health:       Clamp(s.Health),
		Happiness:    Clamp(s.Happiness),
		Intelligence: Clamp(s.Intelligence),
		Wealth:       Clamp(s.Wealth),
		Social:       Clamp(s.Social),
	}
}

// InRange reports whether every stat is within 0-100.
func (s Stats) InRange() bool {
	return s == s.Clamped()
}

// Sum of all five stats.
func (s Stats) Sum() int {
	return s.Health + s.Happiness + s.Intelligence + s.Wealth + s.Social
}

// Delta is a signed change per stat.
type Delta map[StatKey]int

// Add returns a new Delta holding the per-stat sum of d and other.
func (d Delta) Add(other Delta) Delta {
	out := make(Delta, len(d)+len(other))
	for k, v := range d {
		out[k] += v
	}
	for k, v := range other {
		out[k] += v
	}
	return out
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	for _, v := range d {
		if v != 0 {
			return false
		}
	}
	return true
}

// Changes lists the delta as StatChanges in canonical stat order, skipping zeros and unknown keys.
func (d Delta) Changes(reason string, age int) []StatChange {
	var out []StatChange
	for _, key := range AllStats {
		if v := d[key]; v != 0 {
			out = append(out, StatChange{Stat: key, Delta: v, Reason: reason, Age: age})
		}
	}
	return out
}

// StatChange records a single applied or proposed stat movement.
type StatChange struct {
	Stat   StatKey `json:"stat"`
	Delta  int     `json:"delta"`
	Reason string  `json:"reason,omitempty"`
	Age    int     `json:"age"`
}

// DeltaFromChanges folds a list of changes into a Delta.
func DeltaFromChanges(changes []StatChange) Delta {
	out := make(Delta, len(changes))
	for _, c := range changes {
		out[c.Stat] += c.Delta
	}
	return out
}
