package dedupe

import "testing"

func TestGate_SkipsExisting(t *testing.T) {
	g := NewGate([]string{"Best Dentist in Austin", "Best Dentist in Austin", "Top Clinic in Dallas"})

	if g.Existing() != 2 {
		t.Errorf("Existing = %d, want 2 distinct", g.Existing())
	}
	if g.Admit("Best Dentist in Austin") {
		t.Error("existing text admitted")
	}
	if !g.Admit("Top Dentist in Austin") {
		t.Error("new text rejected")
	}
	if g.Skipped() != 1 {
		t.Errorf("Skipped = %d, want 1", g.Skipped())
	}
}

func TestGate_ResubmitInSameRunIsSkipped(t *testing.T) {
	g := NewGate(nil)
	if !g.Admit("x") {
		t.Fatal("first submit rejected")
	}
	if g.Admit("x") {
		t.Error("second submit admitted")
	}
	if g.Skipped() != 1 {
		t.Errorf("Skipped = %d, want 1", g.Skipped())
	}
}

func TestGate_Forget(t *testing.T) {
	g := NewGate(nil)
	g.Admit("x")
	g.Forget("x")
	if !g.Admit("x") {
		t.Error("forgotten text should be admitted again")
	}
}

func TestHash_Stable(t *testing.T) {
	a := Hash("site", "avatar", "Dentist", "Austin", "p1")
	b := Hash("site", "avatar", "Dentist", "Austin", "p1")
	c := Hash("site", "avatar", "Dentist", "Dallas", "p1")
	if a != b {
		t.Error("hash not stable")
	}
	if a == c {
		t.Error("different inputs collided")
	}
	if len(a) != 32 {
		t.Errorf("len = %d, want 32 hex chars", len(a))
	}
}
