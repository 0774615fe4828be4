package core

import "testing"

func TestNewIDUnique(t *testing.T) {
	a, b := NewID(), NewID()
	if a.IsEmpty() || b.IsEmpty() {
		t.Fatal("generated IDs must not be empty")
	}
	if a == b {
		t.Error("consecutive IDs collided")
	}
}

func TestNewSubjectID(t *testing.T) {
	id := NewSubjectID("treatment", 7)
	if id != "treatment_7" {
		t.Errorf("subject ID = %s, want treatment_7", id)
	}
	if id.Group() != "treatment" {
		t.Errorf("group = %s, want treatment", id.Group())
	}
}

func TestParseSubjectID(t *testing.T) {
	if _, err := ParseSubjectID("  "); err == nil {
		t.Error("blank subject ID accepted")
	}
	id, err := ParseSubjectID("ctrl_3")
	if err != nil {
		t.Fatalf("ParseSubjectID: %v", err)
	}
	if id.Group() != "ctrl" {
		t.Errorf("group = %s, want ctrl", id.Group())
	}
}

func TestGroupWithoutSeparator(t *testing.T) {
	if got := SubjectID("pooled").Group(); got != "pooled" {
		t.Errorf("group = %s, want the whole ID back", got)
	}
}
