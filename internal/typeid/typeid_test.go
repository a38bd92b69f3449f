package typeid

import (
	"strings"
	"testing"
)

func TestNewAndValidate(t *testing.T) {
	tests := []struct {
		gen    func() string
		prefix string
	}{
		{NewUserID, PrefixUser},
		{NewSearchID, PrefixSearch},
		{NewViewerID, PrefixViewer},
		{NewFloorID, PrefixFloor},
		{NewRoomID, PrefixRoom},
		{NewCornerID, PrefixCorner},
	}
	for _, tt := range tests {
		id := tt.gen()
		if !strings.HasPrefix(id, tt.prefix+"_") {
			t.Errorf("id %q lacks prefix %q", id, tt.prefix)
		}
		if err := Validate(id, tt.prefix); err != nil {
			t.Errorf("Validate(%q, %q): %v", id, tt.prefix, err)
		}
	}

	if err := Validate(NewViewerID(), PrefixUser); err == nil {
		t.Error("viewer id accepted as user id")
	}
	for _, bad := range []string{"", "anon-1234abcd", "user_1"} {
		if err := Validate(bad, PrefixUser); err == nil {
			t.Errorf("Validate(%q) accepted", bad)
		}
	}
}
