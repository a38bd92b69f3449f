package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser   = "user"
	PrefixSearch = "search"
	PrefixViewer = "viewer"
	PrefixFloor  = "floor"
	PrefixRoom   = "room"
	PrefixCorner = "corner"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string   { return New(PrefixUser) }
func NewSearchID() string { return New(PrefixSearch) }
func NewViewerID() string { return New(PrefixViewer) }
func NewFloorID() string  { return New(PrefixFloor) }
func NewRoomID() string   { return New(PrefixRoom) }
func NewCornerID() string { return New(PrefixCorner) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
