package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang/glog"

	"github.com/mqy/malicek/transport"
)

const (
	probePath  = "/api/"
	loginPath  = "/api/login"
	logoutPath = "/api/logout"
)

// HTTPClient implements Client against the chat server API.
type HTTPClient struct {
	tr transport.IClient
}

func NewHTTPClient(tr transport.IClient) *HTTPClient {
	return &HTTPClient{tr: tr}
}

func (c *HTTPClient) Probe(ctx context.Context) error {
	return expectOK(c.tr.Do(ctx, http.MethodGet, probePath, nil), "probe")
}

func (c *HTTPClient) Login(ctx context.Context, cred Credentials) error {
	if cred.User == "" {
		return fmt.Errorf("login: empty user name")
	}
	err := expectOK(c.tr.Do(ctx, http.MethodPost, loginPath, &cred), "login")
	if err != nil {
		glog.Errorf("auth: login as `%s` failed: %v", cred.User, err)
	}
	return err
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return expectOK(c.tr.Do(ctx, http.MethodGet, logoutPath, nil), "logout")
}

func expectOK(out transport.Outcome, op string) error {
	switch {
	case out.OK():
		return nil
	case out.Kind == transport.Success:
		return fmt.Errorf("%s: %w (status %d)", op, ErrUnauthorized, out.Status)
	default:
		return fmt.Errorf("%s: %s", op, out)
	}
}
