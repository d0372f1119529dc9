package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Variant tells system notices from user messages.
type Variant string

const (
	VariantUser   Variant = "user"
	VariantSystem Variant = "system"
)

// Message is one entry of a room log as returned by the server.
// Messages are immutable once received.
type Message struct {
	Nick    string   `json:"nick"`
	Body    string   `json:"message"`
	Color   string   `json:"color,omitempty"`
	Private []string `json:"private"` // zero or one recipient nick
	Time    string   `json:"time,omitempty"`
	Avatar  string   `json:"avatar,omitempty"`
	Type    Variant  `json:"type,omitempty"`
}

func (m *Message) IsSystem() bool {
	return m.Type == VariantSystem
}

// Recipient returns the private target, or "" for public messages.
func (m *Message) Recipient() string {
	if len(m.Private) == 0 {
		return ""
	}
	return m.Private[0]
}

type Sex string

const (
	SexBoy         Sex = "boy"
	SexGirl        Sex = "girl"
	SexUnspecified Sex = ""
)

// User is a room occupant.
type User struct {
	Name  string   `json:"name"`
	ID    int      `json:"id"`
	Sex   Sex      `json:"sex,omitempty"`
	Admin []string `json:"admin"`
	Age   int      `json:"age,omitempty"`
	Link  string   `json:"link"` // stable per-user token, roster sort key
}

// Access is the room admission policy.
type Access string

const (
	AccessAll     Access = "all"
	AccessBoys    Access = "boys"
	AccessGirls   Access = "girls"
	AccessFriends Access = "friends"
	AccessNone    Access = "none"
)

// RoomID identifies a room. The server sends it either as a number or a string.
type RoomID string

func (id *RoomID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RoomID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("room id: %w", err)
	}
	if v, err := n.Int64(); err == nil && v == 0 {
		*id = ""
		return nil
	}
	*id = RoomID(n.String())
	return nil
}

func (id RoomID) MarshalJSON() ([]byte, error) {
	// only canonical integers go out bare, "007" or "+5" stay strings
	if v, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(v, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// RoomSummary is one row of the room directory.
type RoomSummary struct {
	ID      RoomID `json:"id"`
	Name    string `json:"name"`
	Users   []User `json:"users"`
	Allowed Access `json:"allowed"`
}

// Available reports whether the room can be entered at all.
func (r *RoomSummary) Available() bool {
	return r.ID != ""
}

// RoomState is the body of a room poll.
type RoomState struct {
	Messages []*Message `json:"messages"` // newest first
	Users    []*User    `json:"users"`
}

// RoomSettings is the body of the settings query.
type RoomSettings struct {
	Color   string `json:"color"`
	Refresh int    `json:"refresh"` // seconds
}

// Post is the body of a room POST.
type Post struct {
	Action  string `json:"action"`
	To      *int   `json:"to,omitempty"`
	Color   string `json:"color,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	ToPublic    = 0
	ToKeepAlive = -1
)

func NewPost(to int, color, message string) *Post {
	return &Post{Action: "post", To: &to, Color: color, Message: message}
}

func NewLeave() *Post {
	return &Post{Action: "leave"}
}
