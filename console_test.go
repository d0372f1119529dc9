package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/store"
	storemock "github.com/mqy/malicek/store/mock"
	"github.com/mqy/malicek/ws/mock"
)

func TestConsoleSink_Output(t *testing.T) {
	var buf bytes.Buffer
	c := newConsoleSink(&buf)

	c.State(chat.StateRoomList)
	c.Rooms([]*chat.RoomSummary{
		{ID: "5", Name: "Hospoda", Allowed: chat.AccessAll, Users: []chat.User{{Name: "pepa"}}},
		{Name: "Sklep", Allowed: chat.AccessNone},
	})
	c.Messages("5", []*chat.Message{
		{Nick: "pepa", Body: "ahoj karel", Time: "12:00"},
		{Nick: "karel", Body: "nazdar", Private: []string{"pepa"}},
		{Body: "pepa přisedl", Type: chat.VariantSystem},
	}, chat.EmitOptions{Notify: true, Nick: "karel"})
	c.Notice(chat.Notice{Kind: chat.NoticeMail, Active: true})
	c.Notice(chat.Notice{Kind: chat.NoticeMail, Active: false})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "-- room-list", lines[0])
	assert.Contains(t, lines[1], "Hospoda (1)")
	assert.Contains(t, lines[2], "nikdo")
	assert.Equal(t, "! [12:00] pepa: ahoj karel", lines[3])
	assert.Equal(t, "  karel -> pepa: nazdar", lines[4])
	assert.Equal(t, "  * pepa přisedl", lines[5])
	assert.Equal(t, "-- new mail", lines[6])
	assert.Equal(t, chat.RoomID("5"), c.currentRoom())
}

func TestConsoleSink_Commands(t *testing.T) {
	ctrl := gomock.NewController(t)
	cmd := mock.NewMockICommander(ctrl)
	var buf bytes.Buffer
	c := newConsoleSink(&buf)

	gomock.InOrder(
		cmd.EXPECT().Login(gomock.Any(), "karel", "tajne").Return(nil),
		cmd.EXPECT().ListRooms(gomock.Any()).Return(nil),
		cmd.EXPECT().Enter(gomock.Any(), chat.RoomID("5")).Return(nil),
		cmd.EXPECT().Post(gomock.Any(), "ahoj všichni").Return(nil),
		cmd.EXPECT().Post(gomock.Any(), "@pepa: jak se máš").Return(nil),
		cmd.EXPECT().PollNow(gomock.Any(), true).Return(nil),
		cmd.EXPECT().ReadMail(),
		cmd.EXPECT().PlayFridge(gomock.Any()).Return(nil),
		cmd.EXPECT().Leave(gomock.Any()).Return(errors.New("not in a room")),
		cmd.EXPECT().Logout(gomock.Any()).Return(nil),
	)

	in := strings.Join([]string{
		"/login karel tajne",
		"/rooms",
		"/join 5",
		"",
		"ahoj všichni",
		"/pm pepa jak se máš",
		"/poll",
		"/mail",
		"/fridge",
		"/leave",
		"/logout",
		"/dance",
		"/history",
	}, "\n")
	c.readCommands(context.Background(), strings.NewReader(in), cmd, nil)

	out := buf.String()
	assert.Contains(t, out, "-- error: not in a room")
	assert.Contains(t, out, "unknown command `/dance`")
	assert.Contains(t, out, "-- error: archive is disabled")
}

func TestConsoleSink_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	cmd := mock.NewMockICommander(ctrl)
	archive := storemock.NewMockIArchive(ctrl)
	var buf bytes.Buffer
	c := newConsoleSink(&buf)

	require.Error(t, c.execute(context.Background(), "/history", cmd, archive))

	c.Messages("5", nil, chat.EmitOptions{})
	archive.EXPECT().Recent(gomock.Any(), chat.RoomID("5"), 2).Return([]*store.Record{
		{Seq: 2, Room: "5", Message: &chat.Message{Nick: "pepa", Body: "druhá"}},
		{Seq: 1, Room: "5", Message: &chat.Message{Nick: "pepa", Body: "první"}},
	}, nil)
	require.NoError(t, c.execute(context.Background(), "/history 2", cmd, archive))
	assert.Equal(t, "  pepa: první\n  pepa: druhá\n", buf.String())

	assert.Error(t, c.execute(context.Background(), "/history x", cmd, archive))
}

func TestValidateAddr(t *testing.T) {
	assert.NoError(t, validateAddr("127.0.0.1:8700"))
	assert.NoError(t, validateAddr("192.168.1.10:8700"))
	assert.Error(t, validateAddr("8.8.8.8:8700"))
	assert.Error(t, validateAddr("localhost"))
}
