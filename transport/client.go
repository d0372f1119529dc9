package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang/glog"
)

// maxBodyBytes bounds a response body; room logs are well below this.
const maxBodyBytes = 4 << 20

// Client implements IClient over net/http.
type Client struct {
	base    *url.URL
	timeout time.Duration
	http    *http.Client
}

// New creates a client for the server at baseURL. jar keeps the server
// session cookie and may be nil.
func New(baseURL string, timeout time.Duration, jar http.CookieJar) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url `%s`: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url `%s`: unsupported scheme", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:    u,
		timeout: timeout,
		http:    &http.Client{Jar: jar},
	}, nil
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	return c.base.ResolveReference(ref), nil
}

// Do implements IClient.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) Outcome {
	u, err := c.resolve(path)
	if err != nil {
		return Outcome{Kind: NetworkError, Err: err}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Outcome{Kind: NetworkError, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, method, u.String(), reader)
	if err != nil {
		return Outcome{Kind: NetworkError, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return c.failure(ctx, err, method, u.Path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.failure(ctx, err, method, u.Path)
	}

	glog.V(5).Infof("transport: %s %s -> %d, %d bytes, took %s", method, u.Path, resp.StatusCode, len(data), time.Since(start))
	return Outcome{Kind: Success, Status: resp.StatusCode, Body: bytes.TrimSpace(data)}
}

func (c *Client) failure(parent context.Context, err error, method, path string) Outcome {
	// The caller's own cancellation is not a timeout.
	if parent.Err() == nil && isTimeout(err) {
		glog.V(5).Infof("transport: %s %s timed out after %s", method, path, c.timeout)
		return Outcome{Kind: Timeout, Err: err}
	}
	glog.V(5).Infof("transport: %s %s error: %v", method, path, err)
	return Outcome{Kind: NetworkError, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}
