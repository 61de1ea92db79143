// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const badBodyTypeMsg = "relay/request: invalid type (for body use nil, " +
	"string, []byte, io.Reader or io.ReadCloser)"

// Headers maps a header name to a single value. Names are treated as
// case-sensitive by the mapping itself; individual strategies may
// case-fold names where their transport requires it. Keys are unique
// and no ordering is guaranteed.
type Headers map[string]string

// Clone returns a copy of h. Cloning a nil Headers returns nil.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	h2 := make(Headers, len(h))
	for k, v := range h {
		h2[k] = v
	}
	return h2
}

// An Options describes a single outbound HTTP request. It is consumed
// by exactly one request call and is not retained or mutated by any
// strategy: a strategy that cannot service an Options hands the same
// value, unmodified, to its fallback.
type Options struct {
	// URL specifies the URL to access. It is the only required field.
	URL string

	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// User and Password, when User is non-empty, request HTTP Basic
	// Authentication on the outbound call.
	User     string
	Password string

	// Headers contains the request header fields to be sent. A
	// strategy whose transport forbids setting a particular header
	// skips that header silently rather than failing the request.
	Headers Headers

	// Timeout bounds the duration of a single request. Zero means no
	// timeout beyond whatever deadline the caller's context imposes.
	Timeout time.Duration

	// Body is the pre-buffered request body to be sent. A nil or
	// empty body indicates no request body should be sent.
	Body []byte

	// FollowRedirects is the maximum number of redirects to follow.
	// Zero means redirects are not followed and the first response is
	// returned as-is. Strategies whose transport follows redirects
	// unconditionally ignore this field.
	FollowRedirects int

	// ProxyAuthorization optionally carries a Proxy-Authorization
	// header value for this request only. A value installed via
	// Configuration takes precedence over this field.
	ProxyAuthorization string
}

// New returns a new Options given a method, URL, and optional body.
//
// An empty method means GET. Parameter body may be nil (empty body),
// or it may be a string, []byte, io.Reader, or io.ReadCloser. If body
// is an io.Reader, it is read to the end and buffered into a []byte.
// If body is an io.ReadCloser, it is closed after buffering.
func New(method, url string, body interface{}) (*Options, error) {
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("relay/request: invalid method %q", method)
	}
	if url == "" {
		return nil, errors.New("relay/request: empty URL")
	}
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Options{
		URL:     url,
		Method:  method,
		Headers: make(Headers),
		Body:    b,
	}, nil
}

// Clone returns a copy of o with its own copy of the Headers mapping.
// The body slice is shared, since strategies never mutate it.
func (o *Options) Clone() *Options {
	o2 := new(Options)
	*o2 = *o
	o2.Headers = o.Headers.Clone()
	return o2
}

// BodyBytes converts a generic body parameter to a byte slice for use
// as a request body.
//
// The body parameter may be nil, or it may be a string, []byte,
// io.Reader, or io.ReadCloser. Readers are read to the end and closers
// closed after reading. Any other type results in an error.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		err = x.Close()
		if err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return io.ReadAll(x)
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}

// BasicAuth encodes a username and password into an Authorization (or
// Proxy-Authorization) header value as described in RFC 7617.
func BasicAuth(username, password string) string {
	auth := username + ":" + password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(auth))
}

// A Configuration describes transport state shared by all requests:
// the proxy to route through, the credential presented to that proxy,
// and whether server certificates are validated.
//
// All fields are optional. Applying a Configuration overwrites only
// the state corresponding to its non-nil fields; the rest is left as
// previously configured. The zero Configuration is a no-op update.
type Configuration struct {
	// ProxyURL is the URL of the proxy through which outbound
	// requests are routed. An empty string removes any configured
	// proxy.
	ProxyURL *string

	// ProxyAuthorization is the Proxy-Authorization header value
	// presented when connecting through the configured proxy.
	ProxyAuthorization *string

	// StrictSSL controls server certificate validation. When false,
	// invalid or self-signed certificates are accepted.
	StrictSSL *bool
}

// IsZero reports whether the configuration carries no update at all.
func (c Configuration) IsZero() bool {
	return c.ProxyURL == nil && c.ProxyAuthorization == nil && c.StrictSSL == nil
}

// Ptr returns a pointer to v. It exists to ease construction of
// partial Configuration literals.
func Ptr[T any](v T) *T {
	return &v
}

// validMethod reports whether method is a valid token as defined in
// RFC 7230 section 3.2.6.
func validMethod(method string) bool {
	return strings.IndexFunc(method, func(r rune) bool {
		return !isTokenRune(r)
	}) == -1
}

func isTokenRune(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	switch r {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
