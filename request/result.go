// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// legacyNoContent is the status code one legacy native HTTP facility
// reports in place of 204 when a request succeeds with no content. It
// counts as success for classification purposes.
const legacyNoContent = 1223

// A Result is the buffered outcome of a single request.
//
// A Result is returned whenever a response was obtained, regardless of
// status code: a 404 or 500 is a Result, not an error. Only failures
// that prevented any response from being obtained (connection refused,
// timeout, cancellation) surface as errors from a request call.
type Result struct {
	// StatusCode is the HTTP status code of the response. Zero means
	// the transport failed before any status was obtained; a zero
	// status is never a success.
	StatusCode int

	// Headers contains the response header fields, flattened to one
	// value per name.
	Headers Headers

	// Body is the complete buffered response body. It may be non-empty
	// even for statuses whose decoded text is defined to be empty
	// (see Text).
	Body []byte
}

// IsSuccess reports whether the result represents a successful
// response: a status code in [200, 300), or the legacy no-content
// marker 1223. A result with no status code is never a success.
func (r *Result) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300 || r.StatusCode == legacyNoContent
}

// A StatusError is returned by Text and JSON when the result they are
// asked to decode is not a success.
type StatusError struct {
	// StatusCode is the raw status code carried by the result, zero
	// if the transport failed before any status was obtained.
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay/request: server returned %d", e.StatusCode)
}

// Text decodes the result body as UTF-8 text.
//
// Text returns a *StatusError naming the raw status code if the result
// is not a success. A 204 No Content success decodes to the empty
// string unconditionally, regardless of body contents.
func (r *Result) Text() (string, error) {
	if !r.IsSuccess() {
		return "", &StatusError{StatusCode: r.StatusCode}
	}
	if r.StatusCode == http.StatusNoContent {
		return "", nil
	}
	return string(r.Body), nil
}

// JSON decodes the result body as a JSON value of type T.
//
// JSON applies the same success gate as Text but does not special-case
// 204: a no-content success still goes through the parser, so its
// (empty) body surfaces a parse failure rather than a zero value. On
// any parse failure the returned error carries the parser's message
// with the offending raw text appended after a newline.
func JSON[T any](r *Result) (T, error) {
	var v T
	if !r.IsSuccess() {
		return v, &StatusError{StatusCode: r.StatusCode}
	}
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return v, fmt.Errorf("%w\n%s", err, string(r.Body))
	}
	return v, nil
}
