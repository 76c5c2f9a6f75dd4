package engine

// History is what a character has done so far. Completed is append-only and ordered; Unlocked and
// Locked hold the ids touched by choice consequences.
type History struct {
	Completed []string `json:"completed_events"`
	Unlocked  []string `json:"unlocked_events,omitempty"`
	Locked    []string `json:"locked_events,omitempty"`
}

// NewHistory builds a history from completed event ids.
func NewHistory(completed ...string) History {
	return History{Completed: append([]string{}, completed...)}
}

// Has reports whether id was completed at least once.
func (h History) Has(id string) bool { return contains(h.Completed, id) }

// IsUnlocked reports whether a consequence unlocked id.
func (h History) IsUnlocked(id string) bool { return contains(h.Unlocked, id) }

// IsLocked reports whether a consequence locked id.
func (h History) IsLocked(id string) bool { return contains(h.Locked, id) }

// Clone deep-copies the history.
func (h History) Clone() History {
	return History{
		Completed: append([]string{}, h.Completed...),
		Unlocked:  append([]string{}, h.Unlocked...),
		Locked:    append([]string{}, h.Locked...),
	}
}

// Apply folds choice consequences into a copy. Unlocking an id also lifts an earlier lock.
func (h History) Apply(unlock, lock []string) History {
	out := h.Clone()
	for _, id := range unlock {
		if !contains(out.Unlocked, id) {
			out.Unlocked = append(out.Unlocked, id)
		}
		out.Locked = removeString(out.Locked, id)
	}
	for _, id := range lock {
		if !contains(out.Locked, id) {
			out.Locked = append(out.Locked, id)
		}
	}
	return out
}

func removeString(list []string, v string) []string {
	rest := list[:0]
	for _, x := range list {
		if x != v {
			rest = append(rest, x)
		}
	}
	return rest
}

func meetsStats(stats Stats, min Delta) bool {
	for key, threshold := range min {
		v, ok := stats.Get(key)
		if !ok || v < threshold {
			return false
		}
	}
	return true
}

func meetsHistory(h History, required, forbidden []string) bool {
	for _, id := range required {
		if !h.Has(id) {
			return false
		}
	}
	for _, id := range forbidden {
		if h.Has(id) {
			return false
		}
	}
	return true
}

// CanAccessEvent reports whether the character may face ev: age inside the window, stat
// minimums met, required events done and forbidden ones not. Locked events and hidden events
// that were never unlocked are refused as well.
func CanAccessEvent(c Character, ev GameEvent, h History) bool {
	if !ev.AgeRange.Contains(c.Age) {
		return false
	}
	if h.IsLocked(ev.ID) {
		return false
	}
	if ev.Hidden && !h.IsUnlocked(ev.ID) {
		return false
	}
	if p := ev.Prerequisites; p != nil {
		if !meetsStats(c.Stats, p.MinStats) {
			return false
		}
		if !meetsHistory(h, p.RequiredEvents, p.ForbiddenEvents) {
			return false
		}
	}
	return true
}

// CanMakeChoice applies the same checks scoped to a single choice's requirements.
func CanMakeChoice(c Character, ch GameChoice, h History) bool {
	r := ch.Requirements
	if r == nil {
		return true
	}
	if r.MinAge > 0 && c.Age < r.MinAge {
		return false
	}
	if r.MaxAge > 0 && c.Age > r.MaxAge {
		return false
	}
	if !meetsStats(c.Stats, r.MinStats) {
		return false
	}
	return meetsHistory(h, r.RequiredEvents, r.ForbiddenEvents)
}

// AvailableEvents filters events down to the candidates for c, in input order. A non-repeatable
// event already in the history is dropped before any other check.
func AvailableEvents(c Character, events []GameEvent, h History) []GameEvent {
	var out []GameEvent
	for _, ev := range events {
		if !ev.Repeatable && h.Has(ev.ID) {
			continue
		}
		if !CanAccessEvent(c, ev, h) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// AvailableChoices returns the choices of ev that c can take.
func AvailableChoices(c Character, ev GameEvent, h History) []GameChoice {
	var out []GameChoice
	for _, ch := range ev.Choices {
		if CanMakeChoice(c, ch, h) {
			out = append(out, ch)
		}
	}
	return out
}

// SelectRandomEvent draws one event with probability proportional to its rarity weight
// (common 10, uncommon 5, rare 2, legendary 1). It returns false for an empty candidate list.
func SelectRandomEvent(events []GameEvent, src Source) (GameEvent, bool) {
	if len(events) == 0 {
		return GameEvent{}, false
	}
	if src == nil {
		src = SystemSource()
	}
	total := 0
	for _, ev := range events {
		total += rarityWeight(ev.Rarity)
	}
	pick := src.Intn(total)
	for _, ev := range events {
		pick -= rarityWeight(ev.Rarity)
		if pick < 0 {
			return ev, true
		}
	}
	return events[len(events)-1], true
}
