package chat

import (
	"errors"
	"strings"
)

var ErrUnknownRecipient = errors.New("unknown recipient")

// ParseEntry turns a line typed by the user into a post target and body.
//
// "@nick: text" addresses nick privately and requires nick to be in users
// (name -> user id); anything else is public. An unknown "@nick" returns
// ErrUnknownRecipient and the entry must not be posted.
func ParseEntry(entry string, users map[string]int) (to int, body string, err error) {
	if !strings.HasPrefix(entry, "@") {
		return ToPublic, entry, nil
	}

	name := strings.SplitN(entry[1:], ":", 2)[0]
	id, ok := users[name]
	if !ok {
		return 0, "", ErrUnknownRecipient
	}

	// skip "@", name and the separator; the rest is sent as typed
	if n := len(name) + 2; n <= len(entry) {
		body = entry[n:]
	}
	return id, body, nil
}

// ToggleRecipient addresses entry to name: bare text gets a "name: " prefix,
// and further calls flip between "name: " (public) and "@name: " (private).
func ToggleRecipient(entry, name string) string {
	public := name + ": "
	private := "@" + public
	switch {
	case strings.HasPrefix(entry, public):
		return "@" + entry
	case strings.HasPrefix(entry, private):
		return entry[1:]
	default:
		return public + entry
	}
}
