package auth

import (
	"context"
	"errors"
)

var ErrUnauthorized = errors.New("unauthorized")

type Credentials struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

type Client interface {
	// Probe checks whether the server still considers us logged in.
	Probe(ctx context.Context) error

	// Login authenticates; on success the server session cookie is kept by
	// the transport's jar.
	Login(ctx context.Context, cred Credentials) error

	// Logout invalidates the server session.
	Logout(ctx context.Context) error
}
