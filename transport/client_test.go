package transport

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/rooms/7", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := ioutil.ReadAll(r.Body)
		assert.JSONEq(t, `{"action":"leave"}`, string(body))
		w.Write([]byte(` {"ok":true} `))
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second, nil)
	require.NoError(t, err)

	out := c.Do(context.Background(), http.MethodPost, "/api/rooms/7", map[string]string{"action": "leave"})
	require.True(t, out.OK(), out.String())

	var v struct{ OK bool }
	require.NoError(t, out.Decode(&v))
	assert.True(t, v.OK)
}

func TestDoStatusAndEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second, nil)
	require.NoError(t, err)

	out := c.Do(context.Background(), http.MethodGet, "/api/rooms", nil)
	assert.Equal(t, Success, out.Kind)
	assert.Equal(t, http.StatusBadGateway, out.Status)
	assert.False(t, out.OK())
	assert.ErrorIs(t, out.Decode(&json.RawMessage{}), ErrEmptyBody)
}

func TestDoTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, 50*time.Millisecond, nil)
	require.NoError(t, err)

	out := c.Do(context.Background(), http.MethodGet, "/api/", nil)
	assert.Equal(t, Timeout, out.Kind, out.String())
}

func TestDoCancelledIsNotTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	out := c.Do(ctx, http.MethodGet, "/api/", nil)
	assert.Equal(t, NetworkError, out.Kind, out.String())
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, time.Second, nil)
	require.NoError(t, err)
	out := c.Do(context.Background(), http.MethodGet, "/api/", nil)
	assert.Equal(t, NetworkError, out.Kind)
}

func TestNewRejectsBadScheme(t *testing.T) {
	_, err := New("ftp://example.com", 0, nil)
	assert.Error(t, err)

	c, err := New("http://example.com", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.Timeout())
}
