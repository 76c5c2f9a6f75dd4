package engine

import (
	"github.com/pkg/errors"
)

// AgeRange is an inclusive age window.
type AgeRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether age lies inside the window.
func (r AgeRange) Contains(age int) bool { return age >= r.Min && age <= r.Max }

// Prerequisites gate an event on stats and history.
type Prerequisites struct {
	MinStats        Delta    `json:"min_stats,omitempty" yaml:"min_stats"`
	RequiredEvents  []string `json:"required_events,omitempty" yaml:"required_events"`
	ForbiddenEvents []string `json:"forbidden_events,omitempty" yaml:"forbidden_events"`
}

// Requirements gate a single choice. Zero MinAge/MaxAge mean unbounded.
type Requirements struct {
	MinAge          int      `json:"min_age,omitempty" yaml:"min_age"`
	MaxAge          int      `json:"max_age,omitempty" yaml:"max_age"`
	MinStats        Delta    `json:"min_stats,omitempty" yaml:"min_stats"`
	RequiredEvents  []string `json:"required_events,omitempty" yaml:"required_events"`
	ForbiddenEvents []string `json:"forbidden_events,omitempty" yaml:"forbidden_events"`
}

// Consequences change future eligibility once a choice is taken.
type Consequences struct {
	UnlockEvents []string `json:"unlock_events,omitempty" yaml:"unlock_events"`
	LockEvents   []string `json:"lock_events,omitempty" yaml:"lock_events"`
}

// GameChoice is one selectable option inside an event.
type GameChoice struct {
	ID           string        `json:"id" yaml:"id"`
	Text         string        `json:"text" yaml:"text"`
	Effect       Delta         `json:"effect" yaml:"effect"`
	Requirements *Requirements `json:"requirements,omitempty" yaml:"requirements"`
	Consequences *Consequences `json:"consequences,omitempty" yaml:"consequences"`
}

// GameEvent is a narrative decision point.
type GameEvent struct {
	ID            string         `json:"id" yaml:"id"`
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description" yaml:"description"`
	Category      Category       `json:"category" yaml:"category"`
	AgeRange      AgeRange       `json:"age_range" yaml:"age_range"`
	Choices       []GameChoice   `json:"choices" yaml:"choices"`
	Prerequisites *Prerequisites `json:"prerequisites,omitempty" yaml:"prerequisites"`
	Rarity        Rarity         `json:"rarity" yaml:"rarity"`
	Repeatable    bool           `json:"is_repeatable" yaml:"is_repeatable"`
	// Hidden events stay out of the candidate pool until a consequence unlocks them.
	Hidden bool `json:"hidden,omitempty" yaml:"hidden"`
}

// Choice returns the choice with id.
func (e GameEvent) Choice(id string) (GameChoice, bool) {
	for _, c := range e.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return GameChoice{}, false
}

// Validate checks the event against the catalog contract.
func (e GameEvent) Validate() error {
	if e.ID == "" {
		return errors.Wrap(ErrDataContract, "event id empty")
	}
	if e.Title == "" {
		return errors.Wrapf(ErrDataContract, "event %q: title empty", e.ID)
	}
	if !e.Category.Validate() {
		return errors.Wrapf(ErrDataContract, "event %q: unknown category %q", e.ID, e.Category)
	}
	if !e.Rarity.Validate() {
		return errors.Wrapf(ErrDataContract, "event %q: unknown rarity %q", e.ID, e.Rarity)
	}
	if e.AgeRange.Min < 0 || e.AgeRange.Max < e.AgeRange.Min {
		return errors.Wrapf(ErrDataContract, "event %q: bad age range %d-%d", e.ID, e.AgeRange.Min, e.AgeRange.Max)
	}
	if len(e.Choices) == 0 {
		return errors.Wrapf(ErrDataContract, "event %q: no choices", e.ID)
	}
	if e.Prerequisites != nil {
		if err := validateThresholds(e.Prerequisites.MinStats); err != nil {
			return errors.Wrapf(err, "event %q prerequisites", e.ID)
		}
	}
	seen := make(map[string]struct{}, len(e.Choices))
	for i, c := range e.Choices {
		if c.ID == "" {
			return errors.Wrapf(ErrDataContract, "event %q: choice %d has no id", e.ID, i)
		}
		if _, dup := seen[c.ID]; dup {
			return errors.Wrapf(ErrDataContract, "event %q: duplicate choice %q", e.ID, c.ID)
		}
		seen[c.ID] = struct{}{}
		for key := range c.Effect {
			if !key.Validate() {
				return errors.Wrapf(ErrDataContract, "event %q choice %q: unknown stat %q", e.ID, c.ID, key)
			}
		}
		if r := c.Requirements; r != nil {
			if r.MinAge < 0 || r.MaxAge < 0 || (r.MaxAge > 0 && r.MaxAge < r.MinAge) {
				return errors.Wrapf(ErrDataContract, "event %q choice %q: bad age bounds", e.ID, c.ID)
			}
			if err := validateThresholds(r.MinStats); err != nil {
				return errors.Wrapf(err, "event %q choice %q requirements", e.ID, c.ID)
			}
		}
	}
	return nil
}

func validateThresholds(min Delta) error {
	for key, v := range min {
		if !key.Validate() {
			return errors.Wrapf(ErrDataContract, "unknown stat %q", key)
		}
		if v < MinStat || v > MaxStat {
			return errors.Wrapf(ErrDataContract, "threshold %s=%d out of range", key, v)
		}
	}
	return nil
}

// rarityWeight maps rarity to its relative draw weight.
func rarityWeight(r Rarity) int {
	switch r {
	case RarityCommon:
		return 10
	case RarityUncommon:
		return 5
	case RarityRare:
		return 2
	case RarityLegendary:
		return 1
	default:
		return 1
	}
}
