// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpproxy"

	"github.com/gogama/relay/request"
)

// An Executor executes requests over a real net/http transport and
// implements the relay Service contract. It is safe for concurrent
// use.
type Executor struct {
	logger zerolog.Logger

	mu        sync.RWMutex
	proxyURL  string
	proxyAuth string
	strictSSL bool
	client    *http.Client
}

// New returns an Executor with no proxy configured and strict
// certificate validation enabled.
func New(logger zerolog.Logger) *Executor {
	e := &Executor{
		logger:    logger,
		strictSSL: true,
	}
	e.client = e.buildClient()
	return e
}

// Configure applies a partial configuration update. Only non-nil
// fields overwrite prior state. The transport is rebuilt, so requests
// issued after Configure returns see the new state; in-flight
// requests finish on the transport they started with.
func (e *Executor) Configure(_ context.Context, cfg request.Configuration) error {
	if cfg.IsZero() {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg.ProxyURL != nil {
		if *cfg.ProxyURL != "" {
			if _, err := url.Parse(*cfg.ProxyURL); err != nil {
				return fmt.Errorf("relay/executor: invalid proxy URL: %w", err)
			}
		}
		e.proxyURL = *cfg.ProxyURL
	}
	if cfg.ProxyAuthorization != nil {
		e.proxyAuth = *cfg.ProxyAuthorization
	}
	if cfg.StrictSSL != nil {
		e.strictSSL = *cfg.StrictSSL
	}
	e.client = e.buildClient()
	e.logger.Debug().
		Str("proxy", e.proxyURL).
		Bool("strict_ssl", e.strictSSL).
		Msg("executor reconfigured")
	return nil
}

// buildClient assembles an http.Client from the current configuration.
// Callers must hold at least a read lock.
func (e *Executor) buildClient() *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !e.strictSSL,
		},
	}
	if e.proxyURL != "" {
		proxy, err := url.Parse(e.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxy)
			if e.proxyAuth != "" {
				transport.ProxyConnectHeader = http.Header{
					"Proxy-Authorization": []string{e.proxyAuth},
				}
			}
		}
	}
	return &http.Client{Transport: transport}
}

// Request executes opts and returns the buffered result. A response
// with any status code is a Result, not an error; only transport
// failures, timeouts, and cancellation surface as errors.
func (e *Executor) Request(ctx context.Context, opts *request.Options) (*request.Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	method := opts.Method
	if method == "" {
		method = "GET"
	}
	req, err := http.NewRequestWithContext(ctx, method, opts.URL, body)
	if err != nil {
		return nil, fmt.Errorf("relay/executor: %w", err)
	}
	for name, value := range opts.Headers {
		req.Header.Set(name, value)
	}
	if opts.User != "" {
		req.SetBasicAuth(opts.User, opts.Password)
	}
	if opts.ProxyAuthorization != "" && req.Header.Get("Proxy-Authorization") == "" {
		req.Header.Set("Proxy-Authorization", opts.ProxyAuthorization)
	}

	e.mu.RLock()
	base := e.client
	e.mu.RUnlock()

	// Redirect policy is per-request, so work on a shallow copy of
	// the shared client.
	client := *base
	max := opts.FollowRedirects
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if max <= 0 {
			return http.ErrUseLastResponse
		}
		if len(via) > max {
			return fmt.Errorf("relay/executor: stopped after %d redirects", max)
		}
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("relay/executor: reading response body: %w", err)
	}

	// Lower-case names so results look the same no matter which
	// execution strategy produced them.
	headers := make(request.Headers, len(resp.Header))
	for name, values := range resp.Header {
		if len(values) > 0 {
			headers[strings.ToLower(name)] = values[0]
		}
	}
	e.logger.Debug().
		Str("url", opts.URL).
		Str("method", method).
		Int("status", resp.StatusCode).
		Int("body_bytes", len(b)).
		Msg("request executed")

	return &request.Result{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       b,
	}, nil
}

// ResolveProxy returns the proxy URL that applies to rawURL: the
// configured proxy if one is set, otherwise whatever the process
// environment's proxy rules (HTTP_PROXY, HTTPS_PROXY, NO_PROXY)
// dictate. The empty string means the request would go direct.
func (e *Executor) ResolveProxy(_ context.Context, rawURL string) (string, error) {
	e.mu.RLock()
	configured := e.proxyURL
	e.mu.RUnlock()
	if configured != "" {
		return configured, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("relay/executor: invalid URL: %w", err)
	}
	proxy, err := httpproxy.FromEnvironment().ProxyFunc()(u)
	if err != nil {
		return "", err
	}
	if proxy == nil {
		return "", nil
	}
	return proxy.String(), nil
}
