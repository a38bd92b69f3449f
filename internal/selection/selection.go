package selection

import (
	"errors"
	"fmt"

	"github.com/planfind/planfind/backend-go/internal/floorplan"
)

var ErrNoFloors = errors.New("no floors to select from")

// Kind is what a confirmed selection refers to.
type Kind string

const (
	KindFloor Kind = "floor"
	KindRoom  Kind = "room"
)

// Selection is the confirmed choice reported to the search layer.
type Selection struct {
	Type  Kind   `json:"type"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (s Selection) Validate() error {
	if s.Type != KindFloor && s.Type != KindRoom {
		return fmt.Errorf("unknown selection type %q", s.Type)
	}
	if s.ID == "" {
		return errors.New("selection id is required")
	}
	return nil
}

type pickedRoom struct {
	floorID string
	room    floorplan.Room
}

// Session tracks which floor is shown and which room, if any, the user has
// picked on it. It is not safe for concurrent use.
type Session struct {
	floors  floorplan.Floorplan
	floorID string
	picked  *pickedRoom
}

func NewSession(floors floorplan.Floorplan) *Session {
	return &Session{floors: floors}
}

// SetFloors replaces the floor list. A picked room whose floor is gone is
// dropped.
func (s *Session) SetFloors(floors floorplan.Floorplan) {
	s.floors = floors
	if s.picked != nil {
		if _, ok := floors.Floor(s.picked.floorID); !ok {
			s.picked = nil
		}
	}
}

// Floors returns the current floor list.
func (s *Session) Floors() floorplan.Floorplan {
	return s.floors
}

// CurrentFloor is the explicitly selected floor, falling back to the first
// one. It is nil only when there are no floors.
func (s *Session) CurrentFloor() *floorplan.Floor {
	if len(s.floors) == 0 {
		return nil
	}
	if f, ok := s.floors.Floor(s.floorID); ok {
		return f
	}
	return &s.floors[0]
}

// SelectFloor switches the shown floor and forgets the picked room.
func (s *Session) SelectFloor(id string) {
	s.floorID = id
	s.picked = nil
}

// PickRoom binds room to the current floor. nil clears the pick.
func (s *Session) PickRoom(room *floorplan.Room) {
	cur := s.CurrentFloor()
	if room == nil || cur == nil {
		s.picked = nil
		return
	}
	s.picked = &pickedRoom{floorID: cur.ID, room: *room}
}

// SelectedRoomID is the picked room's id while its floor is the one shown.
func (s *Session) SelectedRoomID() string {
	cur := s.CurrentFloor()
	if s.picked == nil || cur == nil || s.picked.floorID != cur.ID {
		return ""
	}
	return s.picked.room.ID
}

// Reset forgets the selected floor and room.
func (s *Session) Reset() {
	s.floorID = ""
	s.picked = nil
}

// Confirm builds the selection to search with: the picked room if there is
// one, otherwise the current floor.
func (s *Session) Confirm() (Selection, error) {
	cur := s.CurrentFloor()
	if cur == nil {
		return Selection{}, ErrNoFloors
	}

	if s.picked != nil {
		owner, ok := s.floors.Floor(s.picked.floorID)
		if !ok {
			owner = cur
		}
		return Selection{
			Type:  KindRoom,
			ID:    s.picked.room.ID,
			Title: fmt.Sprintf("%s - %s", owner.Title, s.picked.room.Title),
		}, nil
	}

	return Selection{Type: KindFloor, ID: cur.ID, Title: cur.Title}, nil
}
