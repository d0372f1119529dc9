package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mqy/malicek/transport"
)

func newServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var cred Credentials
		if err := json.NewDecoder(r.Body).Decode(&cred); err != nil || cred.Pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "s1", Path: "/"})
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sid"); err != nil || c.Value != "s1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "", Path: "/", MaxAge: -1})
	})
	return httptest.NewServer(mux)
}

func TestHTTPClientFlow(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	tr, err := transport.New(srv.URL, time.Second, jar)
	require.NoError(t, err)
	c := NewHTTPClient(tr)
	ctx := context.Background()

	assert.ErrorIs(t, c.Probe(ctx), ErrUnauthorized)
	assert.ErrorIs(t, c.Login(ctx, Credentials{User: "me", Pass: "bad"}), ErrUnauthorized)
	require.NoError(t, c.Login(ctx, Credentials{User: "me", Pass: "secret"}))
	assert.NoError(t, c.Probe(ctx))
	require.NoError(t, c.Logout(ctx))
	assert.ErrorIs(t, c.Probe(ctx), ErrUnauthorized)
}

func TestMockClient(t *testing.T) {
	c := &MockClient{User: "me", Pass: "pw"}
	ctx := context.Background()
	assert.Error(t, c.Probe(ctx))
	assert.Error(t, c.Login(ctx, Credentials{User: "me"}))
	assert.NoError(t, c.Login(ctx, Credentials{User: "me", Pass: "pw"}))
	assert.NoError(t, c.Probe(ctx))
	c.Expire()
	assert.Error(t, c.Probe(ctx))
}
