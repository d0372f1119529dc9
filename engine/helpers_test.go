package engine

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/transport"
	"github.com/mqy/malicek/transport/mock"
)

type recorder struct {
	sync.Mutex
	states  []chat.State
	rooms   [][]*chat.RoomSummary
	batches [][]*chat.Message
	opts    []chat.EmitOptions
	rosters [][]*chat.User
	notices []chat.Notice
}

func (r *recorder) State(s chat.State) {
	r.Lock()
	defer r.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) Rooms(rooms []*chat.RoomSummary) {
	r.Lock()
	defer r.Unlock()
	r.rooms = append(r.rooms, rooms)
}

func (r *recorder) Messages(room chat.RoomID, msgs []*chat.Message, opts chat.EmitOptions) {
	r.Lock()
	defer r.Unlock()
	r.batches = append(r.batches, msgs)
	r.opts = append(r.opts, opts)
}

func (r *recorder) Roster(room chat.RoomID, users []*chat.User) {
	r.Lock()
	defer r.Unlock()
	r.rosters = append(r.rosters, users)
}

func (r *recorder) Notice(n chat.Notice) {
	r.Lock()
	defer r.Unlock()
	r.notices = append(r.notices, n)
}

// bodies flattens every delivered batch.
func (r *recorder) bodies() []string {
	r.Lock()
	defer r.Unlock()
	var out []string
	for _, b := range r.batches {
		for _, m := range b {
			out = append(out, m.Body)
		}
	}
	return out
}

func (r *recorder) noticeKinds() []chat.NoticeKind {
	r.Lock()
	defer r.Unlock()
	var out []chat.NoticeKind
	for _, n := range r.notices {
		out = append(out, n.Kind)
	}
	return out
}

func (r *recorder) lastState() chat.State {
	r.Lock()
	defer r.Unlock()
	if len(r.states) == 0 {
		return -1
	}
	return r.states[len(r.states)-1]
}

func (r *recorder) stateList() []chat.State {
	r.Lock()
	defer r.Unlock()
	return append([]chat.State(nil), r.states...)
}

func (r *recorder) roomLists() [][]*chat.RoomSummary {
	r.Lock()
	defer r.Unlock()
	return append([][]*chat.RoomSummary(nil), r.rooms...)
}

func (r *recorder) noticeList() []chat.Notice {
	r.Lock()
	defer r.Unlock()
	return append([]chat.Notice(nil), r.notices...)
}

func (r *recorder) rosterList() [][]*chat.User {
	r.Lock()
	defer r.Unlock()
	return append([][]*chat.User(nil), r.rosters...)
}

func ok(body string) transport.Outcome {
	return transport.Outcome{Kind: transport.Success, Status: 200, Body: []byte(body)}
}

func status(code int) transport.Outcome {
	return transport.Outcome{Kind: transport.Success, Status: code}
}

func okJSON(t *testing.T, v interface{}) transport.Outcome {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return ok(string(b))
}

func msg(nick, body string) *chat.Message {
	return &chat.Message{Nick: nick, Body: body, Private: []string{}}
}

// roomState builds a poll body from messages given oldest first.
func roomState(t *testing.T, users []*chat.User, msgs ...*chat.Message) transport.Outcome {
	st := chat.RoomState{Messages: chat.Chronological(msgs), Users: users}
	if st.Users == nil {
		st.Users = []*chat.User{}
	}
	return okJSON(t, st)
}

func expect(tr *mock.MockIClient, method, path string, out transport.Outcome) *gomock.Call {
	return tr.EXPECT().Do(gomock.Any(), method, path, gomock.Any()).Return(out)
}
