package chat

// State is the client lifecycle state as seen by front-ends.
type State int

const (
	StateLoggedOut State = iota
	StateLoggingIn
	StateRoomList
	StateInRoom
	StateLeaving
	StateReconnecting
)

var stateNames = [...]string{"logged-out", "logging-in", "room-list", "in-room", "leaving", "reconnecting"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type NoticeKind string

const (
	NoticeLoginFailed  NoticeKind = "login-failed"
	NoticeAccessDenied NoticeKind = "access-denied"
	NoticeMail         NoticeKind = "mail"
	NoticeFridge       NoticeKind = "fridge"
)

// Notice is a soft notification. Active is false when a flag is cleared.
type Notice struct {
	Kind   NoticeKind `json:"kind"`
	Active bool       `json:"active"`
	Room   RoomID     `json:"room,omitempty"`
}

// EmitOptions accompanies a batch of new messages.
type EmitOptions struct {
	Scroll bool   `json:"scroll"` // caller asked the view to follow the tail
	Notify bool   `json:"notify"` // alarms allowed (false while a room is just opening)
	Nick   string `json:"nick"`   // local user, for mine/mention decoration
}

// ISink receives structured updates from the engine. Implementations are
// called with the engine lock held and must not block.
type ISink interface {
	State(s State)
	Rooms(rooms []*RoomSummary)
	// Messages delivers newly arrived messages oldest first.
	Messages(room RoomID, msgs []*Message, opts EmitOptions)
	// Roster replaces the occupant list of room.
	Roster(room RoomID, users []*User)
	Notice(n Notice)
}

// NopSink ignores everything; embed it to implement part of ISink.
type NopSink struct{}

func (NopSink) State(State)                              {}
func (NopSink) Rooms([]*RoomSummary)                     {}
func (NopSink) Messages(RoomID, []*Message, EmitOptions) {}
func (NopSink) Roster(RoomID, []*User)                   {}
func (NopSink) Notice(Notice)                            {}

// Sinks fans every update out to all members in order.
type Sinks []ISink

func (ss Sinks) State(s State) {
	for _, sink := range ss {
		sink.State(s)
	}
}

func (ss Sinks) Rooms(rooms []*RoomSummary) {
	for _, sink := range ss {
		sink.Rooms(rooms)
	}
}

func (ss Sinks) Messages(room RoomID, msgs []*Message, opts EmitOptions) {
	for _, sink := range ss {
		sink.Messages(room, msgs, opts)
	}
}

func (ss Sinks) Roster(room RoomID, users []*User) {
	for _, sink := range ss {
		sink.Roster(room, users)
	}
}

func (ss Sinks) Notice(n Notice) {
	for _, sink := range ss {
		sink.Notice(n)
	}
}
