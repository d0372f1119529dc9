// Package render turns chat data into display form: sanitised HTML for
// browser front-ends and plain lines for the console.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mqy/malicek/chat"
)

var (
	entities = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	linkRe   = regexp.MustCompile(`(https?://[^ \[$]*)`)

	// smileyReplacer works on entity encoded text and in one pass, so an
	// inserted <img> is never matched again.
	smileyReplacer *strings.Replacer

	policy = bluemonday.NewPolicy()
)

func init() {
	var pairs []string
	for _, s := range smileys {
		code := entities.Replace(s.code)
		pairs = append(pairs, code, fmt.Sprintf(`<img src="%s" class="smiley" alt="%s">`, s.src, code))
	}
	smileyReplacer = strings.NewReplacer(pairs...)

	policy.AllowURLSchemes("http", "https").
		AllowRelativeURLs(false).
		AllowAttrs("href").OnElements("a").
		AddTargetBlankToFullyQualifiedLinks(true).
		RequireNoReferrerOnFullyQualifiedLinks(true).
		AllowAttrs("src", "alt").OnElements("img").
		AllowAttrs("class").Matching(regexp.MustCompile(`^smiley$`)).OnElements("img")
}

// FormatHTML renders a message body: HTML is escaped, http(s) URLs become
// links and smiley codes become images.
func FormatHTML(body string) string {
	s := entities.Replace(body)
	s = linkRe.ReplaceAllString(s, `<a href="$1">$1</a>`)
	s = smileyReplacer.Replace(s)
	return policy.Sanitize(s)
}

// View is a message decorated for one local user.
type View struct {
	*chat.Message
	HTML      string `json:"html"`
	Mine      bool   `json:"mine"`
	Private   bool   `json:"is_private"`
	Recipient string `json:"recipient,omitempty"`
	// Alarm is set for messages addressed to nick or mentioning it.
	Alarm bool `json:"alarm"`
	// ReplyTo is whom clicking the message addresses.
	ReplyTo string `json:"reply_to,omitempty"`
}

func Decorate(m *chat.Message, nick string) *View {
	v := &View{Message: m}
	if m.IsSystem() {
		v.HTML = entities.Replace(m.Body)
		return v
	}

	v.HTML = FormatHTML(m.Body)
	v.Mine = nick != "" && m.Nick == nick
	v.Recipient = m.Recipient()
	v.Private = v.Recipient != ""
	v.ReplyTo = m.Nick
	if v.Private && v.Mine {
		v.ReplyTo = v.Recipient
	}
	if nick != "" {
		v.Alarm = v.Recipient == nick || strings.Contains(strings.ToLower(m.Body), strings.ToLower(nick))
	}
	return v
}

func DecorateAll(msgs []*chat.Message, nick string) []*View {
	out := make([]*View, len(msgs))
	for i, m := range msgs {
		out[i] = Decorate(m, nick)
	}
	return out
}

var adminHearts = map[string]string{
	"chat":   "💛",
	"rooms":  "🖤",
	"boards": "🧡",
	"blog":   "💜",
	"master": "💚",
	"guru":   "💙",
}

// UserInfo is the roster annotation: age and admin roles.
func UserInfo(u *chat.User) string {
	var sb strings.Builder
	if u.Age > 0 {
		fmt.Fprintf(&sb, " %d let", u.Age)
	}
	if len(u.Admin) > 0 {
		sb.WriteByte(' ')
		for _, role := range u.Admin {
			heart, ok := adminHearts[role]
			if !ok {
				heart = "💔"
			}
			sb.WriteString(heart)
		}
		sb.WriteByte(' ')
	}
	return sb.String()
}

func UserLabel(u *chat.User) string {
	return u.Name + UserInfo(u)
}

// LockMessage explains a room's admission policy, "" for open rooms.
func LockMessage(a chat.Access) string {
	switch a {
	case chat.AccessAll:
		return ""
	case chat.AccessBoys:
		return "K tomuto stolu smí přisednout jen kluci."
	case chat.AccessGirls:
		return "K tomuto stolu smí přisednout jen holky."
	case chat.AccessFriends:
		return "K tomuto stolu smí přisednout jen kamarádi."
	default:
		return "K tomuto stolu nesmí přisednout nikdo."
	}
}

// Text renders a message as one console line.
func Text(m *chat.Message) string {
	var sb strings.Builder
	if m.Time != "" {
		fmt.Fprintf(&sb, "[%s] ", m.Time)
	}
	if m.IsSystem() {
		sb.WriteString("* ")
		sb.WriteString(m.Body)
		return sb.String()
	}
	sb.WriteString(m.Nick)
	if r := m.Recipient(); r != "" {
		fmt.Fprintf(&sb, " -> %s", r)
	}
	sb.WriteString(": ")
	sb.WriteString(m.Body)
	return sb.String()
}
