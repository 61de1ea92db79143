// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSuccess(t *testing.T) {
	testCases := []struct {
		status  int
		success bool
	}{
		{status: 0, success: false},
		{status: 100, success: false},
		{status: 199, success: false},
		{status: 200, success: true},
		{status: 201, success: true},
		{status: 204, success: true},
		{status: 299, success: true},
		{status: 300, success: false},
		{status: 304, success: false},
		{status: 404, success: false},
		{status: 500, success: false},
		{status: 1223, success: true},
		{status: 1224, success: false},
	}
	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("status %d", testCase.status), func(t *testing.T) {
			r := &Result{StatusCode: testCase.status}
			assert.Equal(t, testCase.success, r.IsSuccess())
		})
	}
}

func TestText(t *testing.T) {
	t.Run("success decodes body as text", func(t *testing.T) {
		r := &Result{StatusCode: 200, Body: []byte("hello")}
		text, err := r.Text()
		assert.NoError(t, err)
		assert.Equal(t, "hello", text)
	})
	t.Run("204 is empty regardless of body", func(t *testing.T) {
		r := &Result{StatusCode: 204, Body: []byte("should be ignored")}
		text, err := r.Text()
		assert.NoError(t, err)
		assert.Equal(t, "", text)
	})
	t.Run("1223 decodes like any success", func(t *testing.T) {
		r := &Result{StatusCode: 1223, Body: []byte("quirky")}
		text, err := r.Text()
		assert.NoError(t, err)
		assert.Equal(t, "quirky", text)
	})
	t.Run("non-success fails naming the status", func(t *testing.T) {
		r := &Result{StatusCode: 404, Body: []byte("ignored")}
		text, err := r.Text()
		assert.Equal(t, "", text)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, 404, statusErr.StatusCode)
	})
	t.Run("missing status fails", func(t *testing.T) {
		r := &Result{Body: []byte("ignored")}
		_, err := r.Text()
		assert.Error(t, err)
	})
}

func TestJSON(t *testing.T) {
	t.Run("success parses body", func(t *testing.T) {
		r := &Result{StatusCode: 200, Body: []byte(`{"a":1}`)}
		v, err := JSON[map[string]int](r)
		assert.NoError(t, err)
		assert.Equal(t, map[string]int{"a": 1}, v)
	})
	t.Run("non-success fails naming the status", func(t *testing.T) {
		r := &Result{StatusCode: 404, Body: []byte(`{"a":1}`)}
		_, err := JSON[map[string]int](r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
	t.Run("parse failure carries parser message and raw text", func(t *testing.T) {
		r := &Result{StatusCode: 200, Body: []byte("not json")}
		_, err := JSON[map[string]int](r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid character")
		assert.Contains(t, err.Error(), "not json")
	})
	t.Run("204 still goes through the parser", func(t *testing.T) {
		// Unlike Text, JSON does not special-case no-content: the
		// empty body surfaces a parse failure.
		r := &Result{StatusCode: 204}
		_, err := JSON[map[string]int](r)
		assert.Error(t, err)
	})
}
