package engine

import "testing"

func TestRunSeedDeterminism(t *testing.T) {
	r1, _ := NewRunSeed("alpha-seed")
	r2, _ := NewRunSeed("alpha-seed")
	s1 := r1.Stream("x").Intn(1000000)
	s2 := r2.Stream("x").Intn(1000000)
	if s1 != s2 {
		t.Fatalf("streams differ: %d vs %d", s1, s2)
	}
	// child streams
	c1 := r1.Stream("x").Child("y").Intn(1000000)
	c2 := r2.Stream("x").Child("y").Intn(1000000)
	if c1 != c2 {
		t.Fatalf("child streams differ: %d vs %d", c1, c2)
	}
}

func TestRunSeedRejectsEmpty(t *testing.T) {
	if _, err := NewRunSeed(""); err == nil {
		t.Fatal("expected error for empty seed")
	}
}

func TestStreamFloatRange(t *testing.T) {
	s := NewStream(42)
	for i := 0; i < 10000; i++ {
		f := s.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("float out of range: %v", f)
		}
	}
}

func TestFixedSource(t *testing.T) {
	if got := FixedSource(0.99).Intn(10); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
	if got := FixedSource(0).Intn(10); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
