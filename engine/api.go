package engine

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
)

var (
	ErrInvalidState = errors.New("invalid state for this operation")
	ErrNoRoom       = errors.New("no room given")
)

// INickStore persists the local nick between runs.
type INickStore interface {
	LoadNick() string
	SaveNick(nick string) error
}

type Config struct {
	// PollInterval is used when the room settings can not be fetched.
	PollInterval time.Duration
	// MinPollInterval is the lower bound for the server advertised refresh.
	MinPollInterval time.Duration
	KeepAlive       time.Duration
	StatusInterval  time.Duration
	// QuietPeriod mutes alarms right after a room is entered.
	QuietPeriod time.Duration

	Clock clock.Clock
}

func DefaultConfig() Config {
	return Config{
		PollInterval:    3 * time.Second,
		MinPollInterval: 3 * time.Second,
		KeepAlive:       900 * time.Second,
		StatusInterval:  15 * time.Second,
		QuietPeriod:     5 * time.Second,
		Clock:           clock.New(),
	}
}

// refreshInterval converts the server advertised refresh (seconds) to the
// poll period, never going below min.
func refreshInterval(refresh int, min time.Duration) time.Duration {
	d := time.Duration(refresh) * time.Second
	if d < min {
		return min
	}
	return d
}
