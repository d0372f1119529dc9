package engine

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/session"
	"github.com/mqy/malicek/transport"
)

// PollClass classifies the outcome of a room fetch.
type PollClass int

const (
	PollOK PollClass = iota
	// PollTransient skips the cycle: timeout, network error, unexpected
	// status, empty or malformed body.
	PollTransient
	// PollSessionInvalid forces a logout.
	PollSessionInvalid
	// PollAccessDenied leaves the room.
	PollAccessDenied
)

var pollClassNames = [...]string{"ok", "transient", "session_invalid", "access_denied"}

func (c PollClass) String() string {
	return pollClassNames[c]
}

func roomPath(room chat.RoomID) string {
	return "/api/rooms/" + url.PathEscape(string(room))
}

// Poller fetches one room and reconciles it with the session: it finds the
// messages newer than the last delivered one and rebuilds the roster.
type Poller struct {
	tr   transport.IClient
	sess *session.Session
	sink chat.ISink
}

func NewPoller(tr transport.IClient, sess *session.Session, sink chat.ISink) *Poller {
	return &Poller{tr: tr, sess: sess, sink: sink}
}

// Fetch loads the room state. It touches no shared state and is called
// without the controller lock.
func (p *Poller) Fetch(ctx context.Context, room chat.RoomID) (*chat.RoomState, PollClass) {
	start := time.Now()
	out := p.tr.Do(ctx, http.MethodGet, roomPath(room), nil)
	pollSeconds.Observe(time.Since(start).Seconds())

	switch {
	case out.Kind != transport.Success:
		glog.V(5).Infof("poller: room %s: %s", room, out)
		return nil, PollTransient
	case out.Status == http.StatusBadGateway:
		return nil, PollSessionInvalid
	case out.Status == http.StatusForbidden:
		return nil, PollAccessDenied
	case out.Status != http.StatusOK:
		glog.V(5).Infof("poller: room %s: unexpected %s", room, out)
		return nil, PollTransient
	}

	// both lists must be present: a null or partial body is skipped
	var body struct {
		Messages *[]*chat.Message `json:"messages"`
		Users    *[]*chat.User    `json:"users"`
	}
	if err := out.Decode(&body); err != nil {
		glog.V(5).Infof("poller: room %s: %v", room, err)
		return nil, PollTransient
	}
	if body.Messages == nil || body.Users == nil {
		glog.V(5).Infof("poller: room %s: incomplete body", room)
		return nil, PollTransient
	}
	return &chat.RoomState{
		Messages: compactMessages(*body.Messages),
		Users:    compactUsers(*body.Users),
	}, PollOK
}

// Apply delivers the new messages of st oldest first, moves the last seen
// fingerprint to the newest message, then republishes the full roster.
// It returns the number of messages delivered.
func (p *Poller) Apply(room chat.RoomID, st *chat.RoomState, opts chat.EmitOptions) int {
	fresh := chat.NewSince(st.Messages, p.sess.Last)
	if len(fresh) > 0 {
		p.sink.Messages(room, chat.Chronological(fresh), opts)
		messagesTotal.Add(float64(len(fresh)))
	}
	if len(st.Messages) > 0 {
		p.sess.SetLast(st.Messages[0].Fingerprint())
	}

	users := sortRoster(st.Users)
	p.sess.SetUsers(users)
	p.sink.Roster(room, users)

	if glog.V(5) {
		var last string
		if p.sess.Last != nil {
			last = p.sess.Last.Key()
		}
		glog.Infof("poller: room %s: %d messages, %d new, %d users, last %q", room, len(st.Messages), len(fresh), len(users), last)
	}
	return len(fresh)
}

// sortRoster orders users by their link token the way a Czech speaking
// browser's localeCompare would.
func sortRoster(users []*chat.User) []*chat.User {
	out := make([]*chat.User, len(users))
	copy(out, users)
	col := collate.New(language.Czech)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].Link, out[j].Link) < 0
	})
	return out
}

func compactMessages(in []*chat.Message) []*chat.Message {
	out := in[:0]
	for _, m := range in {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func compactUsers(in []*chat.User) []*chat.User {
	out := in[:0]
	for _, u := range in {
		if u != nil {
			out = append(out, u)
		}
	}
	return out
}
