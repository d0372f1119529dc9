package ws

import (
	"context"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/render"
	"github.com/mqy/malicek/store"
)

// ICommander executes front-end commands.
type ICommander interface {
	Login(ctx context.Context, user, pass string) error
	ListRooms(ctx context.Context) error
	Enter(ctx context.Context, room chat.RoomID) error
	Leave(ctx context.Context) error
	Logout(ctx context.Context) error
	Post(ctx context.Context, entry string) error
	PollNow(ctx context.Context, scroll bool) error
	PlayFridge(ctx context.Context) error
	ReadMail()
}

type Cmd string

const (
	CmdLogin     Cmd = "login"
	CmdRooms     Cmd = "rooms"
	CmdEnter     Cmd = "enter"
	CmdLeave     Cmd = "leave"
	CmdLogout    Cmd = "logout"
	CmdPost      Cmd = "post"
	CmdPoll      Cmd = "poll"
	CmdFridge    Cmd = "fridge"
	CmdMail      Cmd = "mail"
	CmdHistory   Cmd = "history"
	// CmdRecipient toggles the addressee prefix of a draft entry.
	CmdRecipient Cmd = "recipient"
)

// ClientMsg is a command frame sent by a front-end.
type ClientMsg struct {
	Cmd    Cmd         `json:"cmd"`
	User   string      `json:"user,omitempty"`
	Pass   string      `json:"pass,omitempty"`
	Room   chat.RoomID `json:"room,omitempty"`
	Text   string      `json:"text,omitempty"`
	Nick   string      `json:"nick,omitempty"`
	Scroll bool        `json:"scroll,omitempty"`
	Limit  int         `json:"limit,omitempty"`
}

type FrameType string

const (
	FrameState    FrameType = "state"
	FrameRooms    FrameType = "rooms"
	FrameMessages FrameType = "messages"
	FrameRoster   FrameType = "roster"
	FrameNotice   FrameType = "notice"
	FrameHistory  FrameType = "history"
	FrameError    FrameType = "error"
	FrameEntry    FrameType = "entry"
)

// ServerMsg is a frame pushed to front-ends.
type ServerMsg struct {
	Type     FrameType       `json:"type"`
	State    *chat.State     `json:"state,omitempty"`
	Room     chat.RoomID     `json:"room,omitempty"`
	Rooms    []*RoomView     `json:"rooms,omitempty"`
	Messages []*render.View  `json:"messages,omitempty"`
	Scroll   bool            `json:"scroll,omitempty"`
	Notify   bool            `json:"notify,omitempty"`
	Users    []*UserView     `json:"users,omitempty"`
	Notice   *chat.Notice    `json:"notice,omitempty"`
	Records  []*store.Record `json:"records,omitempty"`
	Error    *Error          `json:"error,omitempty"`
	Entry    string          `json:"entry,omitempty"`
}

type RoomView struct {
	*chat.RoomSummary
	CanEnter bool   `json:"available"`
	Lock     string `json:"lock,omitempty"`
}

type UserView struct {
	*chat.User
	Label string `json:"label"`
}

type Error struct {
	Code   int        `json:"code"`
	Params []string   `json:"params,omitempty"`
	Req    *ClientMsg `json:"req,omitempty"`
}
