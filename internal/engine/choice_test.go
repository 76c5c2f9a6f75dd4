package engine

import "testing"

func TestProcessChoiceScenario(t *testing.T) {
	c := testCharacter(30, 50)
	ch := GameChoice{ID: "learn", Text: "Take the course", Effect: Delta{StatIntelligence: 10, StatWealth: -5}}
	res := ProcessChoice(c, ch, History{})
	if !res.Success {
		t.Fatalf("expected success")
	}
	if len(res.StatChanges) != 2 {
		t.Fatalf("expected 2 changes, got %+v", res.StatChanges)
	}
	for _, sc := range res.StatChanges {
		if sc.Reason != ch.Text || sc.Age != 30 {
			t.Fatalf("unexpected change metadata: %+v", sc)
		}
	}
	after := c.Stats.Apply(res.Delta())
	if after.Intelligence != 60 || after.Wealth != 45 {
		t.Fatalf("unexpected stats: %+v", after)
	}
	if after.Health != 50 || after.Happiness != 50 || after.Social != 50 {
		t.Fatalf("untouched stats changed: %+v", after)
	}
	if c.Stats.Intelligence != 50 {
		t.Fatalf("ProcessChoice mutated its input")
	}
}

func TestProcessChoiceIgnoresUnknownKeys(t *testing.T) {
	ch := GameChoice{ID: "x", Text: "x", Effect: Delta{"luck": 5, StatSocial: 2}}
	res := ProcessChoice(testCharacter(20, 50), ch, History{})
	if len(res.StatChanges) != 1 || res.StatChanges[0].Stat != StatSocial {
		t.Fatalf("expected only social change, got %+v", res.StatChanges)
	}
}

func TestProcessChoicePassesConsequences(t *testing.T) {
	ch := GameChoice{ID: "x", Text: "x", Consequences: &Consequences{UnlockEvents: []string{"a"}, LockEvents: []string{"b"}}}
	res := ProcessChoice(testCharacter(20, 50), ch, History{})
	if len(res.UnlockedEvents) != 1 || res.UnlockedEvents[0] != "a" {
		t.Fatalf("unlock not passed through: %+v", res)
	}
	if len(res.LockedEvents) != 1 || res.LockedEvents[0] != "b" {
		t.Fatalf("lock not passed through: %+v", res)
	}
}

func TestProcessChoiceUnmetRequirement(t *testing.T) {
	ch := GameChoice{ID: "x", Text: "x", Effect: Delta{StatWealth: 10}, Requirements: &Requirements{MinStats: Delta{StatWealth: 90}}}
	res := ProcessChoice(testCharacter(20, 50), ch, History{})
	if res.Success || len(res.StatChanges) != 0 {
		t.Fatalf("expected failed result without changes, got %+v", res)
	}
}
