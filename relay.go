// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/gogama/relay/request"
)

// Service is the outbound request capability implemented by every
// execution strategy.
//
// Configure applies a partial transport configuration; only non-nil
// fields of the configuration overwrite previously configured state.
// Request issues a single buffered request described by opts and
// returns a Result whenever a response was obtained, regardless of
// status code. ResolveProxy returns the proxy URL that applies to
// rawURL, or the empty string if the request would go direct.
//
// All methods honor cancellation through ctx.
type Service interface {
	Configure(ctx context.Context, cfg request.Configuration) error
	Request(ctx context.Context, opts *request.Options) (*request.Result, error)
	ResolveProxy(ctx context.Context, rawURL string) (string, error)
}

// A Fallback is a Service that attempts a fast but restricted
// execution strategy first and falls back to a fully capable delegate
// whenever the restricted strategy cannot service the request.
//
// The fallback conditions are exactly two: the native attempt returned
// status 405 Method Not Allowed (the restricted facility's signal that
// the requested method or feature is not serviceable), or the native
// attempt failed with an error. In both cases the delegate receives
// the original Options value unmodified. Cancellation is not a
// fallback condition: once the caller's context is done, the request
// is over.
//
// Configure is forwarded to both strategies, so the native strategy
// can intercept the proxy-authorization value it needs for header
// injection while the delegate receives the full configuration.
// ResolveProxy always goes to the delegate, since the restricted
// strategy has no proxy visibility.
type Fallback struct {
	// Native is the restricted strategy attempted first. Required.
	Native Service

	// Delegate is the fully capable strategy used when Native cannot
	// service a request. Required.
	Delegate Service

	// Logger receives a debug event for each fallback decision. The
	// zero value disables logging.
	Logger zerolog.Logger
}

// Configure forwards cfg to the native strategy and then to the
// delegate.
func (f *Fallback) Configure(ctx context.Context, cfg request.Configuration) error {
	if err := f.Native.Configure(ctx, cfg); err != nil {
		return err
	}
	return f.Delegate.Configure(ctx, cfg)
}

// Request attempts the native strategy and falls back to the delegate
// on a 405 status or a native error. A request whose context is done
// returns immediately without consulting the delegate.
func (f *Fallback) Request(ctx context.Context, opts *request.Options) (*request.Result, error) {
	res, err := f.Native.Request(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		f.Logger.Debug().Err(err).Str("url", opts.URL).Msg("native attempt failed, delegating")
		return f.Delegate.Request(ctx, opts)
	}
	if res.StatusCode == http.StatusMethodNotAllowed {
		f.Logger.Debug().Str("url", opts.URL).Msg("native attempt returned 405, delegating")
		return f.Delegate.Request(ctx, opts)
	}
	return res, nil
}

// ResolveProxy forwards to the delegate.
func (f *Fallback) ResolveProxy(ctx context.Context, rawURL string) (string, error) {
	return f.Delegate.ResolveProxy(ctx, rawURL)
}

// Get issues a GET for the specified URL through s.
func Get(ctx context.Context, s Service, url string) (*request.Result, error) {
	opts, err := request.New("GET", url, nil)
	if err != nil {
		return nil, err
	}
	return s.Request(ctx, opts)
}

// Post issues a POST to the specified URL through s.
//
// The body parameter may be nil for an empty body, or may be any of
// the types supported by request.BodyBytes, namely: string; []byte;
// io.Reader; and io.ReadCloser.
func Post(ctx context.Context, s Service, url, contentType string, body interface{}) (*request.Result, error) {
	opts, err := request.New("POST", url, body)
	if err != nil {
		return nil, err
	}
	opts.Headers["Content-Type"] = contentType
	return s.Request(ctx, opts)
}

// PostForm issues a POST to the specified URL through s, with data's
// keys and values URL-encoded as the request body.
//
// The Content-Type header is set to application/x-www-form-urlencoded.
func PostForm(ctx context.Context, s Service, url string, data url.Values) (*request.Result, error) {
	return Post(ctx, s, url, "application/x-www-form-urlencoded", data.Encode())
}
