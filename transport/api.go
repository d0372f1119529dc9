package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const DefaultTimeout = 5000 * time.Millisecond

var ErrEmptyBody = errors.New("empty response body")

type Kind int

const (
	Success Kind = iota
	Timeout
	NetworkError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	default:
		return "network-error"
	}
}

// Outcome is the result of one request. Only Success carries a status and body.
type Outcome struct {
	Kind   Kind
	Status int
	Body   []byte
	Err    error
}

func (o Outcome) OK() bool {
	return o.Kind == Success && o.Status == http.StatusOK
}

// Decode parses the JSON body into v.
func (o Outcome) Decode(v interface{}) error {
	if o.Kind != Success {
		return fmt.Errorf("decode %s outcome", o.Kind)
	}
	if len(o.Body) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(o.Body, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func (o Outcome) String() string {
	if o.Kind == Success {
		return fmt.Sprintf("status %d", o.Status)
	}
	if o.Err != nil {
		return fmt.Sprintf("%s: %v", o.Kind, o.Err)
	}
	return o.Kind.String()
}

// IClient issues timed JSON requests against the chat server.
// It never retries: retry policy belongs to the caller.
type IClient interface {
	// Do sends body (nil for none) as JSON and returns the classified outcome.
	Do(ctx context.Context, method, path string, body interface{}) Outcome
}
