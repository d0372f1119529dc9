// Package session holds the client's mutable chat state. It does no I/O and
// no locking: the engine controller owns the single Session and serialises
// access to it.
package session

import (
	"github.com/mqy/malicek/chat"
)

type Session struct {
	// Nick is set at login and restored from the `nick` cookie on startup.
	Nick string
	// Room is the current room, "" when not in a room.
	Room chat.RoomID
	// Last identifies the newest message already delivered; nil right after
	// a room was (re)entered.
	Last *chat.Fingerprint
	// Users maps the other occupants of Room to their ids.
	Users map[string]int
	// Color is the server assigned posting color for Room.
	Color string
}

func New(nick string) *Session {
	return &Session{Nick: nick, Users: make(map[string]int)}
}

func (s *Session) InRoom() bool {
	return s.Room != ""
}

// EnterRoom switches to room and forgets everything scoped to the previous one.
func (s *Session) EnterRoom(room chat.RoomID) {
	s.ClearRoom()
	s.Room = room
}

// ClearRoom leaves the current room, if any.
func (s *Session) ClearRoom() {
	s.Room = ""
	s.Color = ""
	s.ResetLast()
	s.ClearUsers()
}

func (s *Session) ResetLast() {
	s.Last = nil
}

func (s *Session) SetLast(f chat.Fingerprint) {
	s.Last = &f
}

func (s *Session) ClearUsers() {
	s.Users = make(map[string]int)
}

// SetUsers rebuilds the name -> id map from a full roster, skipping ourselves.
func (s *Session) SetUsers(users []*chat.User) {
	m := make(map[string]int, len(users))
	for _, u := range users {
		if u.Name == s.Nick {
			continue
		}
		m[u.Name] = u.ID
	}
	s.Users = m
}

// CopyUsers returns a snapshot of the user map, safe to use without the owner's lock.
func (s *Session) CopyUsers() map[string]int {
	out := make(map[string]int, len(s.Users))
	for k, v := range s.Users {
		out[k] = v
	}
	return out
}

// Reset drops all room scoped state; the nick survives.
func (s *Session) Reset() {
	s.ClearRoom()
}

// UserID looks up an occupant by name.
func (s *Session) UserID(name string) (int, bool) {
	id, ok := s.Users[name]
	return id, ok
}
