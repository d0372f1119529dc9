package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/engine"
	"github.com/mqy/malicek/store"
	storemock "github.com/mqy/malicek/store/mock"
	"github.com/mqy/malicek/ws/mock"
)

// frame mirrors ServerMsg with the lifecycle state left as text.
type frame struct {
	Type     FrameType       `json:"type"`
	State    string          `json:"state"`
	Room     chat.RoomID     `json:"room"`
	Rooms    []*RoomView     `json:"rooms"`
	Messages []*viewFrame    `json:"messages"`
	Scroll   bool            `json:"scroll"`
	Notify   bool            `json:"notify"`
	Users    []*UserView     `json:"users"`
	Notice   *chat.Notice    `json:"notice"`
	Records  []*store.Record `json:"records"`
	Error    *Error          `json:"error"`
	Entry    string          `json:"entry"`
}

type viewFrame struct {
	Nick  string `json:"nick"`
	HTML  string `json:"html"`
	Mine  bool   `json:"mine"`
	Alarm bool   `json:"alarm"`
}

type fixture struct {
	t      *testing.T
	hub    *Hub
	cmd    *mock.MockICommander
	srv    *httptest.Server
	cancel context.CancelFunc
	done   chan struct{}
}

func newFixture(t *testing.T, archive store.IArchive) *fixture {
	ctrl := gomock.NewController(t)
	cmd := mock.NewMockICommander(ctrl)
	hub := NewHub(cmd, archive)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{}, 1)
	go hub.Run(ctx, done)
	require.Eventually(t, func() bool {
		hub.Lock()
		defer hub.Unlock()
		return hub.online
	}, time.Second, 5*time.Millisecond)

	f := &fixture{t: t, hub: hub, cmd: cmd, srv: httptest.NewServer(hub), cancel: cancel, done: done}
	t.Cleanup(f.stop)
	return f
}

func (f *fixture) stop() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
	f.cancel = nil
	f.srv.Close()
}

func (f *fixture) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(f.t, err)
	f.t.Cleanup(func() { conn.Close() })
	return conn
}

// connect dials and waits until the hub has registered the session.
func (f *fixture) connect() *websocket.Conn {
	n := f.hub.Sessions()
	conn := f.dial()
	require.Eventually(f.t, func() bool { return f.hub.Sessions() == n+1 }, time.Second, 5*time.Millisecond)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, req *ClientMsg) {
	require.NoError(t, conn.WriteJSON(req))
}

func recv(t *testing.T, conn *websocket.Conn) *frame {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var out frame
	require.NoError(t, json.Unmarshal(data, &out))
	return &out
}

func TestHub_ReplayOnConnect(t *testing.T) {
	f := newFixture(t, nil)
	f.hub.State(chat.StateRoomList)
	f.hub.Rooms([]*chat.RoomSummary{
		{ID: "5", Name: "Hospoda", Allowed: chat.AccessAll},
		{ID: "", Name: "Zavřeno", Allowed: chat.AccessNone},
	})
	f.hub.Notice(chat.Notice{Kind: chat.NoticeFridge, Active: true})

	conn := f.connect()
	st := recv(t, conn)
	assert.Equal(t, FrameState, st.Type)
	assert.Equal(t, "room-list", st.State)

	rooms := recv(t, conn)
	require.Equal(t, FrameRooms, rooms.Type)
	require.Len(t, rooms.Rooms, 2)
	assert.True(t, rooms.Rooms[0].CanEnter)
	assert.Equal(t, "", rooms.Rooms[0].Lock)
	assert.False(t, rooms.Rooms[1].CanEnter)
	assert.Contains(t, rooms.Rooms[1].Lock, "nikdo")

	n := recv(t, conn)
	require.Equal(t, FrameNotice, n.Type)
	assert.Equal(t, chat.NoticeFridge, n.Notice.Kind)
	assert.True(t, n.Notice.Active)
}

func TestHub_ClearedNoticeIsNotReplayed(t *testing.T) {
	f := newFixture(t, nil)
	f.hub.Notice(chat.Notice{Kind: chat.NoticeMail, Active: true})
	f.hub.Notice(chat.Notice{Kind: chat.NoticeMail, Active: false})
	f.hub.Notice(chat.Notice{Kind: chat.NoticeAccessDenied, Room: "5"})
	f.hub.State(chat.StateLoggedOut)

	conn := f.connect()
	st := recv(t, conn)
	assert.Equal(t, FrameState, st.Type)
	assert.Equal(t, "logged-out", st.State)

	f.hub.Lock()
	assert.Empty(t, f.hub.notices)
	assert.Nil(t, f.hub.rooms)
	f.hub.Unlock()
}

func TestHub_Broadcast(t *testing.T) {
	f := newFixture(t, nil)
	a := f.connect()
	b := f.connect()

	f.hub.Messages("5", []*chat.Message{
		{Nick: "pepa", Body: "ahoj karel [:-)]"},
		{Nick: "karel", Body: "nazdar"},
	}, chat.EmitOptions{Scroll: true, Notify: true, Nick: "karel"})

	for _, conn := range []*websocket.Conn{a, b} {
		m := recv(t, conn)
		require.Equal(t, FrameMessages, m.Type)
		assert.Equal(t, chat.RoomID("5"), m.Room)
		assert.True(t, m.Scroll)
		assert.True(t, m.Notify)
		require.Len(t, m.Messages, 2)
		assert.True(t, m.Messages[0].Alarm)
		assert.Contains(t, m.Messages[0].HTML, `class="smiley"`)
		assert.True(t, m.Messages[1].Mine)
	}

	f.hub.Roster("5", []*chat.User{{Name: "pepa", Link: "pepa", Age: 30}})
	r := recv(t, a)
	require.Equal(t, FrameRoster, r.Type)
	require.Len(t, r.Users, 1)
	assert.Equal(t, "pepa 30 let", r.Users[0].Label)
}

func TestHub_Dispatch(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.connect()

	f.cmd.EXPECT().Enter(gomock.Any(), chat.RoomID("5")).DoAndReturn(func(ctx context.Context, room chat.RoomID) error {
		f.hub.State(chat.StateInRoom)
		return nil
	})
	send(t, conn, &ClientMsg{Cmd: CmdEnter, Room: "5"})
	st := recv(t, conn)
	assert.Equal(t, "in-room", st.State)

	f.cmd.EXPECT().PollNow(gomock.Any(), true).Return(nil)
	f.cmd.EXPECT().ReadMail().Do(func() {
		f.hub.Notice(chat.Notice{Kind: chat.NoticeMail, Active: false})
	})
	send(t, conn, &ClientMsg{Cmd: CmdPoll, Scroll: true})
	send(t, conn, &ClientMsg{Cmd: CmdMail})
	n := recv(t, conn)
	require.Equal(t, FrameNotice, n.Type)
	assert.False(t, n.Notice.Active)
}

func TestHub_CommandErrors(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.connect()

	f.cmd.EXPECT().Post(gomock.Any(), "/msg nikdo ahoj").Return(chat.ErrUnknownRecipient)
	send(t, conn, &ClientMsg{Cmd: CmdPost, Text: "/msg nikdo ahoj"})
	e := recv(t, conn)
	require.Equal(t, FrameError, e.Type)
	assert.Equal(t, ErrorCodeInvalidArguments, e.Error.Code)
	assert.Equal(t, CmdPost, e.Error.Req.Cmd)

	f.cmd.EXPECT().Login(gomock.Any(), "pepa", "tajne").Return(engine.ErrInvalidState)
	send(t, conn, &ClientMsg{Cmd: CmdLogin, User: "pepa", Pass: "tajne"})
	e = recv(t, conn)
	assert.Equal(t, ErrorCodeFailedPrecondition, e.Error.Code)
	assert.Equal(t, "pepa", e.Error.Req.User)
	assert.Empty(t, e.Error.Req.Pass)

	f.cmd.EXPECT().Leave(gomock.Any()).Return(errors.New("boom"))
	send(t, conn, &ClientMsg{Cmd: CmdLeave})
	e = recv(t, conn)
	assert.Equal(t, ErrorCodeInternal, e.Error.Code)

	send(t, conn, &ClientMsg{Cmd: CmdEnter})
	e = recv(t, conn)
	assert.Equal(t, ErrorCodeInvalidArguments, e.Error.Code)
}

func TestHub_ToggleRecipient(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.connect()

	send(t, conn, &ClientMsg{Cmd: CmdRecipient, Text: "ahoj", Nick: "pepa"})
	e := recv(t, conn)
	require.Equal(t, FrameEntry, e.Type)
	assert.Equal(t, "pepa: ahoj", e.Entry)

	send(t, conn, &ClientMsg{Cmd: CmdRecipient, Text: e.Entry, Nick: "pepa"})
	e = recv(t, conn)
	assert.Equal(t, "@pepa: ahoj", e.Entry)

	send(t, conn, &ClientMsg{Cmd: CmdRecipient, Text: "ahoj"})
	e = recv(t, conn)
	require.Equal(t, FrameError, e.Type)
	assert.Equal(t, ErrorCodeInvalidArguments, e.Error.Code)
}

func TestHub_BadRequestClosesSession(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.connect()

	send(t, conn, &ClientMsg{Cmd: "dance"})
	e := recv(t, conn)
	require.Equal(t, FrameError, e.Type)
	assert.Equal(t, ErrorCodeInvalidArguments, e.Error.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	require.Eventually(t, func() bool { return f.hub.Sessions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	archive := storemock.NewMockIArchive(ctrl)
	f := newFixture(t, archive)
	conn := f.connect()

	recs := []*store.Record{
		{Seq: 2, Room: "5", Message: &chat.Message{Nick: "pepa", Body: "druhá"}},
		{Seq: 1, Room: "5", Message: &chat.Message{Nick: "pepa", Body: "první"}},
	}
	archive.EXPECT().Recent(gomock.Any(), chat.RoomID("5"), MinHistoryLimit).Return(recs, nil)
	send(t, conn, &ClientMsg{Cmd: CmdHistory, Room: "5", Limit: 1})
	h := recv(t, conn)
	require.Equal(t, FrameHistory, h.Type)
	require.Len(t, h.Records, 2)
	assert.Equal(t, uint64(2), h.Records[0].Seq)

	archive.EXPECT().Recent(gomock.Any(), chat.RoomID("5"), MaxHistoryLimit).Return(nil, errors.New("disk on fire"))
	send(t, conn, &ClientMsg{Cmd: CmdHistory, Room: "5", Limit: 1000})
	e := recv(t, conn)
	assert.Equal(t, ErrorCodeInternal, e.Error.Code)
	assert.Equal(t, []string{"temp storage error"}, e.Error.Params)
}

func TestHub_HistoryDisabled(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.connect()

	send(t, conn, &ClientMsg{Cmd: CmdHistory, Room: "5"})
	e := recv(t, conn)
	assert.Equal(t, ErrorCodeUnimplemented, e.Error.Code)
}

func TestHub_StopClosesSessions(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.connect()

	f.stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestGetRemoteIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getRemoteIP(r))

	r.Header.Set("X-Forwarded-For", "1.1.1.1,2.2.2.2")
	assert.Equal(t, "2.2.2.2", getRemoteIP(r))

	r.Header.Set("X-Real-IP", "3.3.3.3")
	assert.Equal(t, "3.3.3.3", getRemoteIP(r))
}
