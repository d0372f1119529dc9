package chat

import (
	"sort"
	"strings"
)

// Fingerprint is the equality key used to find the last seen message in a
// newest-first feed. Two messages with the same author, body and recipients
// are considered the same event; the server provides no message id, so
// identical messages sent in quick succession cannot be told apart.
type Fingerprint struct {
	Nick    string
	Body    string
	Private []string // sorted
}

func (m *Message) Fingerprint() Fingerprint {
	private := make([]string, len(m.Private))
	copy(private, m.Private)
	sort.Strings(private)
	return Fingerprint{Nick: m.Nick, Body: m.Body, Private: private}
}

func (f Fingerprint) Equal(o Fingerprint) bool {
	if f.Nick != o.Nick || f.Body != o.Body || len(f.Private) != len(o.Private) {
		return false
	}
	for i := range f.Private {
		if f.Private[i] != o.Private[i] {
			return false
		}
	}
	return true
}

// Key is a printable form of the fingerprint, used in poll logs.
func (f Fingerprint) Key() string {
	return f.Nick + "\x1f" + strings.Join(f.Private, "\x1e") + "\x1f" + f.Body
}

// NewSince returns the prefix of msgs (newest first) that arrived after the
// message identified by last.
//
// With no last fingerprint only the newest message is returned, so a freshly
// opened room does not replay its history. When last is not present in msgs,
// the boundary has scrolled out of the server window and every message is
// returned: over-delivery is preferred to silent loss.
func NewSince(msgs []*Message, last *Fingerprint) []*Message {
	if len(msgs) == 0 {
		return nil
	}
	if last == nil {
		return msgs[:1]
	}
	for i, m := range msgs {
		if last.Equal(m.Fingerprint()) {
			return msgs[:i]
		}
	}
	return msgs
}

// Chronological returns a reversed copy of a newest-first slice.
func Chronological(msgs []*Message) []*Message {
	out := make([]*Message, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}
