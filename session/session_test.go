package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mqy/malicek/chat"
)

func TestSetUsersExcludesSelf(t *testing.T) {
	s := New("me")
	s.SetUsers([]*chat.User{
		{Name: "me", ID: 1},
		{Name: "Bob", ID: 2},
		{Name: "Ann", ID: 3},
	})
	assert.Equal(t, map[string]int{"Bob": 2, "Ann": 3}, s.Users)
	_, ok := s.UserID("me")
	assert.False(t, ok)

	id, ok := s.UserID("Ann")
	assert.True(t, ok)
	assert.Equal(t, 3, id)
}

func TestEnterRoomResetsState(t *testing.T) {
	s := New("me")
	s.EnterRoom("1")
	s.SetLast(chat.Fingerprint{Nick: "A", Body: "hi"})
	s.SetUsers([]*chat.User{{Name: "Bob", ID: 2}})
	s.Color = "#123456"

	s.EnterRoom("2")
	assert.Equal(t, chat.RoomID("2"), s.Room)
	assert.Nil(t, s.Last)
	assert.Empty(t, s.Users)
	assert.Empty(t, s.Color)
	assert.True(t, s.InRoom())
}

func TestResetIsIdempotent(t *testing.T) {
	s := New("me")
	s.Reset()
	s.Reset()
	assert.False(t, s.InRoom())
	assert.Nil(t, s.Last)
	assert.NotNil(t, s.Users)
	assert.Equal(t, "me", s.Nick)
}

func TestCopyUsersIsDetached(t *testing.T) {
	s := New("me")
	s.SetUsers([]*chat.User{{Name: "Bob", ID: 2}})
	m := s.CopyUsers()
	m["Eve"] = 9
	assert.NotContains(t, s.Users, "Eve")
}
