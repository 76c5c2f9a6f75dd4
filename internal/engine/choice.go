package engine

// EventResult is the structured outcome of taking a choice.
type EventResult struct {
	Success        bool         `json:"success"`
	StatChanges    []StatChange `json:"stat_changes"`
	UnlockedEvents []string     `json:"unlocked_events,omitempty"`
	LockedEvents   []string     `json:"locked_events,omitempty"`
}

// Delta folds the result's stat changes into a single Delta.
func (r EventResult) Delta() Delta { return DeltaFromChanges(r.StatChanges) }

// ProcessChoice converts a choice into stat changes without touching any state. A choice whose
// requirements are not met yields Success=false and nothing else. Effect keys that are not stats
// are skipped; the catalog loader rejects them, so only hand-built choices can carry them.
func ProcessChoice(c Character, ch GameChoice, h History) EventResult {
	if !CanMakeChoice(c, ch, h) {
		return EventResult{Success: false}
	}
	res := EventResult{Success: true, StatChanges: []StatChange{}}
	for _, key := range AllStats {
		v, ok := ch.Effect[key]
		if !ok {
			continue
		}
		res.StatChanges = append(res.StatChanges, StatChange{Stat: key, Delta: v, Reason: ch.Text, Age: c.Age})
	}
	if q := ch.Consequences; q != nil {
		res.UnlockedEvents = q.UnlockEvents
		res.LockedEvents = q.LockEvents
	}
	return res
}
