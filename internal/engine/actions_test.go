package engine

import "testing"

func TestMatchAction(t *testing.T) {
	c := testCharacter(30, 50)
	cases := []struct {
		in   string
		want string
	}{
		{"study_hard", "study_hard"},
		{"Study Hard", "study_hard"},
		{"studdy", "study_hard"},
		{"go to the gym", "sports"},
		{"relax", "meditation"},
		{"travle", "travel"},
	}
	for _, tc := range cases {
		a, ok, reason := MatchAction(tc.in, c)
		if !ok || a.ID != tc.want {
			t.Fatalf("%q: expected %s, got %s ok=%v reason=%q", tc.in, tc.want, a.ID, ok, reason)
		}
	}
}

func TestMatchActionNoMatch(t *testing.T) {
	c := testCharacter(30, 50)
	for _, in := range []string{"", "   ", "xyzzy"} {
		if _, ok, _ := MatchAction(in, c); ok {
			t.Fatalf("%q should not match", in)
		}
	}
}

func TestActionsRefusedWhenUnwell(t *testing.T) {
	c := testCharacter(30, 50)
	c.Stats.Health = 5
	a, ok, reason := MatchAction("work", c)
	if ok || a.ID != "work_overtime" || reason == "" {
		t.Fatalf("expected refusal, got %s ok=%v reason=%q", a.ID, ok, reason)
	}
	a, ok, _ = MatchAction("rest", c)
	if !ok || a.ID != "meditation" {
		t.Fatalf("rest should stay available, got %s ok=%v", a.ID, ok)
	}
}

func TestActionByID(t *testing.T) {
	if _, ok := ActionByID("travel"); !ok {
		t.Fatalf("travel missing")
	}
	if _, ok := ActionByID("nope"); ok {
		t.Fatalf("unknown action found")
	}
	list := Actions()
	list[0].ID = "mutated"
	if Actions()[0].ID == "mutated" {
		t.Fatalf("Actions leaks the catalog")
	}
}
