// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package native

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gogama/relay/request"
)

// deniedHeaders are controlled by the restricted facility itself and
// may not be set by callers. Attempts to set them are skipped, never
// an error.
var deniedHeaders = map[string]struct{}{
	"user-agent":      {},
	"accept-encoding": {},
	"content-length":  {},
}

// A TimeoutError reports that a native attempt exceeded the timeout
// carried in its Options.
type TimeoutError struct {
	// Limit is the timeout value that was exceeded.
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("relay/native: request timed out after %s", e.Limit)
}

// Timeout reports true. It exists so the error satisfies the timeout
// interface conventionally tested for with net.Error.
func (e *TimeoutError) Timeout() bool { return true }

// Service executes requests through a restricted HTTP facility. It
// implements the relay Service contract.
//
// Service holds exactly one piece of cross-request state: the
// Proxy-Authorization value most recently installed via Configure.
// There is no ordering guarantee between Configure and an in-flight
// Request; an attempt uses whatever value was cached when it began.
type Service struct {
	prim   Primitive
	logger zerolog.Logger

	mu        sync.Mutex
	proxyAuth string
}

// New returns a Service executing through p. A nil p selects a
// proxyless net/http-backed default primitive.
func New(p Primitive, logger zerolog.Logger) *Service {
	if p == nil {
		p = defaultPrimitive
	}
	return &Service{prim: p, logger: logger}
}

// Configure caches the configuration's ProxyAuthorization value, if
// present, as the default Proxy-Authorization header for subsequent
// attempts. The restricted facility cannot negotiate proxy
// authentication on the wire, so header injection is the only way to
// get the credential through. All other configuration fields are
// ignored here; the owning Fallback forwards the full configuration to
// the delegate.
func (s *Service) Configure(_ context.Context, cfg request.Configuration) error {
	if cfg.ProxyAuthorization != nil {
		s.mu.Lock()
		s.proxyAuth = *cfg.ProxyAuthorization
		s.mu.Unlock()
		s.logger.Debug().Msg("cached proxy authorization for native attempts")
	}
	return nil
}

// Request executes opts through the restricted facility.
//
// A response with any status code, including 405, is returned as a
// Result without error; deciding whether 405 warrants fallback is the
// caller's concern. Errors are returned for transport failures,
// timeouts (a *TimeoutError naming the limit), and cancellation.
func (s *Service) Request(ctx context.Context, opts *request.Options) (*request.Result, error) {
	call := &Call{
		Method: opts.Method,
		URL:    opts.URL,
		Header: make(request.Headers, len(opts.Headers)+2),
		Body:   opts.Body,
	}
	if call.Method == "" {
		call.Method = "GET"
	}

	if auth := s.effectiveProxyAuth(opts); auth != "" {
		call.Header["Proxy-Authorization"] = auth
	}
	if opts.User != "" {
		call.Header["Authorization"] = request.BasicAuth(opts.User, opts.Password)
	}
	for name, value := range opts.Headers {
		if _, denied := deniedHeaders[strings.ToLower(name)]; denied {
			s.logger.Debug().Str("header", name).Msg("skipping denylisted header")
			continue
		}
		call.Header[name] = value
	}

	callCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	answer, err := s.prim.Round(callCtx, call)
	if err != nil {
		if ctx.Err() != nil {
			// The caller cancelled (or its own deadline expired):
			// report that rather than a transport failure.
			return nil, fmt.Errorf("relay/native: request aborted: %w", ctx.Err())
		}
		if opts.Timeout > 0 && (errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded) {
			return nil, &TimeoutError{Limit: opts.Timeout}
		}
		return nil, err
	}

	return &request.Result{
		StatusCode: answer.Status,
		Headers:    ParseRawHeader(answer.RawHeader),
		Body:       answer.Body,
	}, nil
}

// ResolveProxy always resolves to no proxy: the restricted facility
// has no proxy visibility. Pair the Service with a delegate to obtain
// real proxy resolution.
func (s *Service) ResolveProxy(context.Context, string) (string, error) {
	return "", nil
}

// effectiveProxyAuth resolves the Proxy-Authorization value for one
// attempt: the value cached by Configure wins over the per-request
// override in opts.
func (s *Service) effectiveProxyAuth(opts *request.Options) string {
	s.mu.Lock()
	auth := s.proxyAuth
	s.mu.Unlock()
	if auth == "" {
		auth = opts.ProxyAuthorization
	}
	return auth
}

// ParseRawHeader parses a raw response header block as reported by the
// restricted facility into a Headers mapping.
//
// The block is split on any CR or LF line ending. Each line is split
// at its first colon; the name is trimmed and lower-cased, the value
// is trimmed with its case preserved. Lines without a colon, or with
// an empty name, are dropped.
func ParseRawHeader(raw string) request.Headers {
	headers := make(request.Headers)
	lines := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\r' || r == '\n'
	})
	for _, line := range lines {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers
}
