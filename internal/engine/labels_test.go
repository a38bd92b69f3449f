package engine

import (
	"testing"

	"github.com/planfind/planfind/backend-go/internal/floorplan"
)

func TestRoomLabel(t *testing.T) {
	tests := []struct {
		typ    floorplan.RoomType
		want   string
		wantOK bool
	}{
		{"4", "침실", true},
		{"0", "NONE", true},
		{"25", "거실&다이닝", true},
		{"1002", "회의공간", true},
		{"1113", "복도", true},
		{"4.0", "침실", true},
		{"9999", "", false},
		{"30", "", false},
		{"", "", false},
		{"bedroom", "", false},
	}

	for _, tt := range tests {
		got, ok := RoomLabel(floorplan.Room{Type: tt.typ})
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("RoomLabel(type %q) = %q, %v; want %q, %v", tt.typ, got, ok, tt.want, tt.wantOK)
		}
	}
}
