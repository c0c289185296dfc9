package behavior

import (
	"errors"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("gather_wood", "Gather Wood"); err != nil {
		t.Fatalf("register: %v", err)
	}

	b, err := r.Lookup("gather_wood")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if b.Name != "Gather Wood" {
		t.Fatalf("unexpected name: %s", b.Name)
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("idle", "Idle"); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := r.Register("idle", "Idle Again")
	if !errors.Is(err, ErrDuplicateBehavior) {
		t.Fatalf("expected ErrDuplicateBehavior, got %v", err)
	}
}

func TestLookupUnknownFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("missing")
	if !errors.Is(err, ErrUnknownBehavior) {
		t.Fatalf("expected ErrUnknownBehavior, got %v", err)
	}
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", "name"); err == nil {
		t.Fatal("expected error for empty id")
	}
	if err := r.Register("id", ""); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestIDsSorted(t *testing.T) {
	r := NewRegistry()
	for _, id := range []ID{"c", "a", "b"} {
		if err := r.Register(id, string(id)); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	ids := r.IDs()
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
