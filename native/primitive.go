// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package native

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gogama/relay/request"
)

// A Call is the restricted facility's view of one request: method,
// URL, a flat header mapping, and a pre-buffered body. Redirect
// handling, connection management and proxying are all owned by the
// facility, not the caller.
type Call struct {
	Method string
	URL    string
	Header request.Headers
	Body   []byte
}

// An Answer is the restricted facility's raw view of a response. The
// header block is unparsed text, one field per line, as the facility
// reports it.
type Answer struct {
	// Status is the numeric response status.
	Status int

	// RawHeader is the raw response header block. Lines may end in
	// CR, LF, or CRLF.
	RawHeader string

	// Body is the raw response payload. It is bytes, not text, so the
	// caller can decode it either way.
	Body []byte
}

// A Primitive is the restricted HTTP facility itself. Round executes
// one call and blocks until the response is complete, the context is
// done, or the transport fails.
type Primitive interface {
	Round(ctx context.Context, c *Call) (*Answer, error)
}

// defaultPrimitive executes through net/http with proxying disabled,
// mirroring the capability surface of a front-end facility: it
// resolves no proxies and follows redirects on its own.
var defaultPrimitive Primitive = &HTTPPrimitive{}

// HTTPPrimitive is a Primitive built on a net/http client.
//
// The zero value uses a transport with no proxy support. Supplying a
// Client with a proxying transport defeats the purpose of the
// native/delegate split, but nothing prevents it.
type HTTPPrimitive struct {
	// Client issues the underlying requests. If nil, a default
	// proxyless client is used.
	Client *http.Client
}

var proxylessClient = &http.Client{
	Transport: &http.Transport{Proxy: nil},
}

// Round executes one call and buffers the complete response.
func (p *HTTPPrimitive) Round(ctx context.Context, c *Call) (*Answer, error) {
	var body io.Reader
	if len(c.Body) > 0 {
		body = bytes.NewReader(c.Body)
	}
	req, err := http.NewRequestWithContext(ctx, c.Method, c.URL, body)
	if err != nil {
		return nil, fmt.Errorf("relay/native: %w", err)
	}
	for name, value := range c.Header {
		req.Header.Set(name, value)
	}

	client := p.Client
	if client == nil {
		client = proxylessClient
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
		return nil, err
	}

	return &Answer{
		Status:    resp.StatusCode,
		RawHeader: rawHeaderBlock(resp.Header),
		Body:      b,
	}, nil
}

// rawHeaderBlock renders response headers into the facility's raw
// line-per-field form.
func rawHeaderBlock(h http.Header) string {
	var sb strings.Builder
	for name, values := range h {
		for _, value := range values {
			sb.WriteString(name)
			sb.WriteString(": ")
			sb.WriteString(value)
			sb.WriteString("\r\n")
		}
	}
	return sb.String()
}
