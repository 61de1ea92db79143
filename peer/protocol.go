// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package peer

import (
	"time"

	"github.com/gogama/relay/request"
)

// Path is the well-known path the privileged request service is
// mounted at.
const Path = "/services/request-service"

// Frame operations. A reply frame carries the correlation id of the
// frame it answers.
const (
	opConfigure    = "configure"
	opRequest      = "request"
	opResolveProxy = "resolveProxy"
	opReply        = "reply"
	opError        = "error"
)

// An envelope is one frame on the channel. Exactly one payload field
// is populated, according to Op.
type envelope struct {
	ID      string       `json:"id"`
	Op      string       `json:"op"`
	Config  *wireConfig  `json:"config,omitempty"`
	Request *wireOptions `json:"request,omitempty"`
	URL     string       `json:"url,omitempty"`
	Result  *wireResult  `json:"result,omitempty"`
	Proxy   *string      `json:"proxy,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type wireOptions struct {
	URL                string          `json:"url"`
	Method             string          `json:"method,omitempty"`
	User               string          `json:"user,omitempty"`
	Password           string          `json:"password,omitempty"`
	Headers            request.Headers `json:"headers,omitempty"`
	TimeoutMillis      int64           `json:"timeout,omitempty"`
	Data               []byte          `json:"data,omitempty"`
	FollowRedirects    int             `json:"followRedirects,omitempty"`
	ProxyAuthorization string          `json:"proxyAuthorization,omitempty"`
}

type wireConfig struct {
	ProxyURL           *string `json:"proxyUrl,omitempty"`
	ProxyAuthorization *string `json:"proxyAuthorization,omitempty"`
	StrictSSL          *bool   `json:"strictSSL,omitempty"`
}

type wireResult struct {
	StatusCode int             `json:"statusCode,omitempty"`
	Headers    request.Headers `json:"headers,omitempty"`
	Buffer     *buffer         `json:"buffer,omitempty"`
}

// A buffer is the structurally transferred form of a byte sequence:
// one JSON number per byte under a "data" key. It exists only on the
// wire; both ends deal in []byte.
type buffer struct {
	Data []int `json:"data"`
}

func newBuffer(b []byte) *buffer {
	data := make([]int, len(b))
	for i, v := range b {
		data[i] = int(v)
	}
	return &buffer{Data: data}
}

// bytes re-materializes the transferred sequence into a byte slice.
// Out-of-range values are truncated to a byte.
func (b *buffer) bytes() []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b.Data))
	for i, v := range b.Data {
		out[i] = byte(v)
	}
	return out
}

func encodeOptions(opts *request.Options) *wireOptions {
	return &wireOptions{
		URL:                opts.URL,
		Method:             opts.Method,
		User:               opts.User,
		Password:           opts.Password,
		Headers:            opts.Headers,
		TimeoutMillis:      opts.Timeout.Milliseconds(),
		Data:               opts.Body,
		FollowRedirects:    opts.FollowRedirects,
		ProxyAuthorization: opts.ProxyAuthorization,
	}
}

func decodeOptions(w *wireOptions) *request.Options {
	return &request.Options{
		URL:                w.URL,
		Method:             w.Method,
		User:               w.User,
		Password:           w.Password,
		Headers:            w.Headers,
		Timeout:            time.Duration(w.TimeoutMillis) * time.Millisecond,
		Body:               w.Data,
		FollowRedirects:    w.FollowRedirects,
		ProxyAuthorization: w.ProxyAuthorization,
	}
}

func encodeConfig(cfg request.Configuration) *wireConfig {
	return &wireConfig{
		ProxyURL:           cfg.ProxyURL,
		ProxyAuthorization: cfg.ProxyAuthorization,
		StrictSSL:          cfg.StrictSSL,
	}
}

func decodeConfig(w *wireConfig) request.Configuration {
	return request.Configuration{
		ProxyURL:           w.ProxyURL,
		ProxyAuthorization: w.ProxyAuthorization,
		StrictSSL:          w.StrictSSL,
	}
}

func encodeResult(res *request.Result) *wireResult {
	return &wireResult{
		StatusCode: res.StatusCode,
		Headers:    res.Headers,
		Buffer:     newBuffer(res.Body),
	}
}
