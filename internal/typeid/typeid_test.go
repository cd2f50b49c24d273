package typeid

import (
	"strings"
	"testing"
)

func TestNewIDsCarryPrefix(t *testing.T) {
	tests := []struct {
		gen    func() string
		prefix string
	}{
		{NewUserID, PrefixUser},
		{NewDrawingID, PrefixDrawing},
		{NewElementID, PrefixElement},
		{NewSnapshotID, PrefixSnapshot},
	}
	for _, tt := range tests {
		id := tt.gen()
		if !strings.HasPrefix(id, tt.prefix+"_") {
			t.Errorf("id %q should start with %q", id, tt.prefix+"_")
		}
		if err := Validate(id, tt.prefix); err != nil {
			t.Errorf("Validate(%q, %q): %v", id, tt.prefix, err)
		}
	}
}

func TestValidateRejectsWrongPrefix(t *testing.T) {
	id := NewDrawingID()
	if err := Validate(id, PrefixUser); err == nil {
		t.Error("drawing id should not validate as a user id")
	}
	if err := Validate("not-a-typeid!", PrefixUser); err == nil {
		t.Error("malformed id should not validate")
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewElementID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
