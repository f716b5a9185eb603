// Package client talks to a running console over its JSON API and event
// stream. It serves as the widget backend of the terminal console.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"coherence-console/internal/state"
)

// Client is a console API client.
type Client struct {
	base   *url.URL
	token  string
	http   *http.Client
	dialer *websocket.Dialer
}

// New returns a client for the console at baseURL. token is sent as a
// bearer token when non-empty.
func New(baseURL, token string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse console url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("console url %q: scheme must be http or https", baseURL)
	}
	return &Client{
		base:   u,
		token:  token,
		http:   &http.Client{Timeout: 10 * time.Second},
		dialer: websocket.DefaultDialer,
	}, nil
}

func (c *Client) header() http.Header {
	h := http.Header{}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+path, nil)
	if err != nil {
		return err
	}
	req.Header = c.header()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Devices lists the console's devices.
func (c *Client) Devices(ctx context.Context) ([]state.Device, error) {
	var out []state.Device
	if err := c.getJSON(ctx, "/api/devices", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Logs returns the console's buffered log entries.
func (c *Client) Logs(ctx context.Context) ([]state.LogEntry, error) {
	var out []state.LogEntry
	if err := c.getJSON(ctx, "/api/logs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Subscribe opens the event stream. The returned channel is closed when ctx
// ends or the connection drops.
func (c *Client) Subscribe(ctx context.Context) (<-chan state.Event, error) {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/api/events"

	conn, _, err := c.dialer.DialContext(ctx, u.String(), c.header())
	if err != nil {
		return nil, fmt.Errorf("dial event stream: %w", err)
	}

	out := make(chan state.Event, 64)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(out)
		for {
			var ev state.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
