package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// StartingAge is the age every new life begins at.
	StartingAge = 18
	// AllocationBase is the value each stat starts from during creation.
	AllocationBase = 50
	// AllocationPoints is the free pool spread over the base.
	AllocationPoints = 50
	// AllocationMin and AllocationMax bound a single stat during creation.
	AllocationMin = 10
	AllocationMax = 90
)

// Character represents the simulated person.
type Character struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Age             int       `json:"age"`
	Stats           Stats     `json:"stats"`
	CreatedAt       time.Time `json:"created_at"`
	LastPlayedAt    time.Time `json:"last_played_at"`
	CompletedEvents []string  `json:"completed_events,omitempty"`
	// DecayResidue carries fractional yearly decay in tenths of a point.
	DecayResidue Stats `json:"decay_residue"`
}

// NewCharacter creates a fresh character at StartingAge.
func NewCharacter(name string, stats Stats, now time.Time) Character {
	return Character{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Age:          StartingAge,
		Stats:        stats.Clamped(),
		CreatedAt:    now,
		LastPlayedAt: now,
	}
}

// Clone deep-copies slices so the copy can be handed out safely.
func (c Character) Clone() Character {
	out := c
	out.CompletedEvents = append([]string(nil), c.CompletedEvents...)
	return out
}

// Phase returns the character's current life phase.
func (c Character) Phase() LifePhase { return PhaseForAge(c.Age) }

// IsDead reports whether health ran out.
func (c Character) IsDead() bool { return c.Stats.Health <= 0 }

// Valid reports whether the character satisfies the stat and age invariants.
func (c Character) Valid() bool {
	return c.Age >= 0 && c.Stats.InRange()
}

// Allocation is the point-buy used while creating a character.
type Allocation struct {
	Stats     Stats
	Remaining int
}

// NewAllocation starts every stat at AllocationBase with the full free pool.
func NewAllocation() Allocation {
	return Allocation{Stats: UniformStats(AllocationBase), Remaining: AllocationPoints}
}

// Adjust moves stat by n within creation bounds. A raise that costs more than the remaining pool
// is refused; lowering a stat returns its points.
func (a *Allocation) Adjust(stat StatKey, n int) bool {
	p := a.Stats.field(stat)
	if p == nil {
		return false
	}
	next := *p + n
	if next < AllocationMin {
		next = AllocationMin
	}
	if next > AllocationMax {
		next = AllocationMax
	}
	cost := next - *p
	if cost == 0 || cost > a.Remaining {
		return false
	}
	*p = next
	a.Remaining -= cost
	return true
}

// Spent is the number of points used above the base.
func (a Allocation) Spent() int {
	return a.Stats.Sum() - AllocationBase*len(AllStats)
}

// Validate checks bounds and that no more than the free pool was spent.
func (a Allocation) Validate() error {
	for _, key := range AllStats {
		v, _ := a.Stats.Get(key)
		if v < AllocationMin || v > AllocationMax {
			return errors.Wrapf(ErrInvalidAllocation, "%s=%d outside %d-%d", key, v, AllocationMin, AllocationMax)
		}
	}
	if a.Spent() > AllocationPoints {
		return errors.Wrapf(ErrInvalidAllocation, "spent %d of %d points", a.Spent(), AllocationPoints)
	}
	return nil
}

// RandomAllocation rolls every stat in 30-69 and reports what is left of the pool.
func RandomAllocation(src Source) Allocation {
	if src == nil {
		src = SystemSource()
	}
	st := Stats{
		Health:       30 + src.Intn(40),
		Happiness:    30 + src.Intn(40),
		Intelligence: 30 + src.Intn(40),
		Wealth:       30 + src.Intn(40),
		Social:       30 + src.Intn(40),
	}
	a := Allocation{Stats: st}
	// shave the highest stat until the roll fits the pool
	for a.Spent() > AllocationPoints {
		top := AllStats[0]
		for _, key := range AllStats[1:] {
			if v, _ := a.Stats.Get(key); v > mustGet(a.Stats, top) {
				top = key
			}
		}
		*a.Stats.field(top)--
	}
	a.Remaining = AllocationPoints - a.Spent()
	return a
}

func mustGet(s Stats, key StatKey) int {
	v, _ := s.Get(key)
	return v
}
