package subject

import (
	"reflect"
	"testing"
)

func TestNewCopiesAttributes(t *testing.T) {
	source := map[string]float64{"health": 10}
	s := New("hero", source)
	source["health"] = 1

	if got := s.Value("health"); got != 10 {
		t.Fatalf("health = %v, want 10", got)
	}
	if s.TargetID() != "hero" {
		t.Fatalf("id = %q, want hero", s.TargetID())
	}
}

func TestMutators(t *testing.T) {
	s := New("hero", map[string]float64{"health": 10, "speed": 2})
	s.Add("health", 5)
	s.Multiply("speed", 1.5)
	s.Set("glow", 1)
	s.Add("luck", 2)

	want := map[string]float64{"health": 15, "speed": 3, "glow": 1, "luck": 2}
	if got := s.Attributes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("attributes = %v, want %v", got, want)
	}
	if _, ok := s.Get("missing"); ok {
		t.Fatal("expected missing attribute to be unset")
	}
	if !reflect.DeepEqual(s.Names(), []string{"glow", "health", "luck", "speed"}) {
		t.Fatalf("names = %v", s.Names())
	}
}

func TestSnapshotRestoreOverwritesFullState(t *testing.T) {
	s := New("hero", map[string]float64{"health": 10})
	snapshot := s.Snapshot()

	s.Add("health", 7)
	s.Set("glow", 3)
	s.Restore(snapshot)

	want := map[string]float64{"health": 10}
	if got := s.Attributes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("attributes = %v, want %v", got, want)
	}

	s.Add("health", 1)
	s.Restore(snapshot)
	if got := s.Value("health"); got != 10 {
		t.Fatalf("health after second restore = %v, want 10", got)
	}
}

func TestRestoreIgnoresForeignSnapshots(t *testing.T) {
	s := New("hero", map[string]float64{"health": 10})
	s.Restore("not a state")
	if got := s.Value("health"); got != 10 {
		t.Fatalf("health = %v, want 10", got)
	}
}
