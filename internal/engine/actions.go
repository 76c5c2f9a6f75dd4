package engine

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Action is a yearly activity the player can pick outside of events.
type Action struct {
	ID       string
	Title    string
	Category Category
	Effect   Delta
	Aliases  []string
	// Rest actions stay available when health is critical.
	Rest bool
}

var actionCatalog = []Action{
	{ID: "study_hard", Title: "Study hard", Category: CategoryEducation, Effect: Delta{StatIntelligence: 5, StatSocial: -2}, Aliases: []string{"study", "read", "learn"}},
	{ID: "online_course", Title: "Online course", Category: CategoryEducation, Effect: Delta{StatIntelligence: 3, StatHappiness: 1, StatWealth: -1}, Aliases: []string{"course", "class"}},
	{ID: "work_overtime", Title: "Work overtime", Category: CategoryCareer, Effect: Delta{StatWealth: 4, StatHealth: -3, StatHappiness: -2}, Aliases: []string{"overtime", "work", "grind"}},
	{ID: "networking", Title: "Networking", Category: CategoryCareer, Effect: Delta{StatSocial: 4, StatWealth: 1}, Aliases: []string{"network", "mingle"}},
	{ID: "party", Title: "Party", Category: CategoryRelationship, Effect: Delta{StatHappiness: 5, StatSocial: 3, StatHealth: -1, StatWealth: -1}, Aliases: []string{"celebrate", "club"}},
	{ID: "volunteer", Title: "Volunteer", Category: CategoryRelationship, Effect: Delta{StatHappiness: 4, StatSocial: 3}, Aliases: []string{"charity", "help"}},
	{ID: "sports", Title: "Sports", Category: CategoryHealth, Effect: Delta{StatHealth: 4, StatHappiness: 2, StatSocial: -1}, Aliases: []string{"exercise", "gym", "run"}},
	{ID: "art", Title: "Art", Category: CategoryRandom, Effect: Delta{StatHappiness: 3, StatIntelligence: 2}, Aliases: []string{"paint", "draw", "music"}},
	{ID: "travel", Title: "Travel", Category: CategoryRandom, Effect: Delta{StatHappiness: 6, StatSocial: 3, StatIntelligence: 2, StatWealth: -3}, Aliases: []string{"trip", "vacation"}},
	{ID: "meditation", Title: "Meditation", Category: CategoryHealth, Effect: Delta{StatHappiness: 3, StatHealth: 2}, Aliases: []string{"meditate", "rest", "relax", "sleep"}, Rest: true},
}

// Actions returns the yearly action list in display order.
func Actions() []Action { return append([]Action{}, actionCatalog...) }

// ActionByID looks up an action.
func ActionByID(id string) (Action, bool) {
	for _, a := range actionCatalog {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// CanPerform gates actions on the character's condition. It returns a short reason when refused.
func CanPerform(c Character, a Action) (bool, string) {
	if !a.Rest && c.Stats.Health < 10 {
		return false, "Too unwell"
	}
	return true, ""
}

type actionCandidate struct {
	action Action
	dist   int
}

// MatchAction maps free text to an action. Exact ids and aliases win, then substring hits, then
// the closest alias within a length-scaled edit distance. Returns (action, allowed, rejectionReason).
func MatchAction(input string, c Character) (Action, bool, string) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return Action{}, false, "empty"
	}
	in = strings.ReplaceAll(in, " ", "_")
	var cands []actionCandidate
	for _, a := range actionCatalog {
		best := -1
		for _, alias := range append([]string{a.ID}, a.Aliases...) {
			var d int
			switch {
			case alias == in:
				d = 0
			case len(in) >= 3 && strings.Contains(in, alias):
				d = 1
			default:
				d = levenshtein.ComputeDistance(in, alias)
				if d > levenshteinLimit(len(alias)) {
					continue
				}
				d++
			}
			if best < 0 || d < best {
				best = d
			}
		}
		if best >= 0 {
			cands = append(cands, actionCandidate{action: a, dist: best})
		}
	}
	if len(cands) == 0 {
		return Action{}, false, "No matching action"
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	a := cands[0].action
	if ok, reason := CanPerform(c, a); !ok {
		return a, false, reason
	}
	return a, true, ""
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
