// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package peer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gogama/relay/prefs"
	"github.com/gogama/relay/request"
)

// ErrClosed is returned by calls made on, or interrupted by, a closed
// Client.
var ErrClosed = errors.New("relay/peer: connection closed")

// A RemoteError reports a failure that occurred on the privileged side
// of the channel.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "relay/peer: remote: " + e.Message
}

// A Client is the delegating execution strategy: it implements the
// relay Service contract by forwarding every call over the channel to
// the privileged server. It holds no transport configuration of its
// own.
//
// A Client is safe for concurrent use; calls multiplex over the single
// connection and are correlated by frame id.
type Client struct {
	conn        *websocket.Conn
	logger      zerolog.Logger
	ready       <-chan struct{}
	unsubscribe func()

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *envelope
	readErr error

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the privileged request service reachable at
// baseURL (a ws:// or wss:// URL; Path is appended).
//
// If source is non-nil the client binds to it: the first Request
// blocks until the source is ready, and every change to a
// request-related preference key is forwarded to the server as a
// partial configuration containing only the changed fields. A nil
// source leaves the client always ready and unconfigured.
func Dial(ctx context.Context, baseURL string, source prefs.Source, logger zerolog.Logger) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, strings.TrimRight(baseURL, "/")+Path, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("relay/peer: dialing request service: %w", err)
	}

	c := &Client{
		conn:    conn,
		logger:  logger,
		pending: make(map[string]chan *envelope),
		done:    make(chan struct{}),
	}
	if source != nil {
		c.ready = source.Ready()
		c.unsubscribe = source.OnChange(c.applyPreferenceChange)
	} else {
		ready := make(chan struct{})
		close(ready)
		c.ready = ready
	}
	go c.readLoop()
	return c, nil
}

// Configure forwards cfg verbatim to the server.
func (c *Client) Configure(ctx context.Context, cfg request.Configuration) error {
	_, err := c.call(ctx, &envelope{Op: opConfigure, Config: encodeConfig(cfg)})
	return err
}

// Request forwards opts verbatim to the server and re-materializes the
// transferred response buffer into a local byte slice. The first
// Request does not go out before the bound preference source signals
// readiness.
func (c *Client) Request(ctx context.Context, opts *request.Options) (*request.Result, error) {
	select {
	case <-c.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, c.closedErr()
	}

	reply, err := c.call(ctx, &envelope{Op: opRequest, Request: encodeOptions(opts)})
	if err != nil {
		return nil, err
	}
	if reply.Result == nil {
		return nil, errors.New("relay/peer: malformed reply: missing result")
	}
	return &request.Result{
		StatusCode: reply.Result.StatusCode,
		Headers:    reply.Result.Headers,
		Body:       reply.Result.Buffer.bytes(),
	}, nil
}

// ResolveProxy forwards to the server and returns its answer.
func (c *Client) ResolveProxy(ctx context.Context, rawURL string) (string, error) {
	reply, err := c.call(ctx, &envelope{Op: opResolveProxy, URL: rawURL})
	if err != nil {
		return "", err
	}
	if reply.Proxy == nil {
		return "", nil
	}
	return *reply.Proxy, nil
}

// Close tears down the connection and cancels the preference
// subscription. In-flight calls fail with ErrClosed.
func (c *Client) Close() error {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return c.conn.Close()
}

// call sends one frame and waits for its correlated reply.
func (c *Client) call(ctx context.Context, env *envelope) (*envelope, error) {
	select {
	case <-c.done:
		return nil, c.closedErr()
	default:
	}

	env.ID = uuid.NewString()
	ch := make(chan *envelope, 1)

	c.mu.Lock()
	c.pending[env.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(env)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(env.ID)
		return nil, fmt.Errorf("relay/peer: writing frame: %w", err)
	}

	select {
	case reply := <-ch:
		if reply.Op == opError {
			return nil, &RemoteError{Message: reply.Error}
		}
		return reply, nil
	case <-ctx.Done():
		c.forget(env.ID)
		return nil, ctx.Err()
	case <-c.done:
		c.forget(env.ID)
		return nil, c.closedErr()
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) closedErr() error {
	c.mu.Lock()
	err := c.readErr
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return ErrClosed
}

func (c *Client) readLoop() {
	for {
		var env envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			c.closeOnce.Do(func() {
				close(c.done)
			})
			return
		}
		c.mu.Lock()
		ch := c.pending[env.ID]
		delete(c.pending, env.ID)
		c.mu.Unlock()
		if ch == nil {
			c.logger.Warn().Str("id", env.ID).Msg("reply with no pending call")
			continue
		}
		ch <- &env
	}
}

// applyPreferenceChange derives a partial configuration from the
// changed keys only and forwards it to the server.
func (c *Client) applyPreferenceChange(e prefs.Event) {
	cfg, touched := prefs.ConfigurationFrom(e)
	if !touched {
		return
	}
	if err := c.Configure(context.Background(), cfg); err != nil {
		c.logger.Error().Err(err).Msg("failed to forward preference change")
	}
}
