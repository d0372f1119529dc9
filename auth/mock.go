package auth

import (
	"context"
	"sync"
)

// MockClient accepts a single user/password pair. Tests use it in place of
// the server.
type MockClient struct {
	Client

	sync.Mutex
	User, Pass string
	loggedIn   bool
	Logouts    int
}

func (c *MockClient) Probe(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()
	if !c.loggedIn {
		return ErrUnauthorized
	}
	return nil
}

func (c *MockClient) Login(ctx context.Context, cred Credentials) error {
	c.Lock()
	defer c.Unlock()
	if cred.User != c.User || cred.Pass != c.Pass {
		return ErrUnauthorized
	}
	c.loggedIn = true
	return nil
}

func (c *MockClient) Logout(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()
	c.loggedIn = false
	c.Logouts++
	return nil
}

// Expire simulates the server dropping the session.
func (c *MockClient) Expire() {
	c.Lock()
	c.loggedIn = false
	c.Unlock()
}
