// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package executor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/relay/request"
)

func TestRequest(t *testing.T) {
	t.Run("buffers status, headers and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Foo", "bar")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("created"))
		}))
		defer server.Close()

		e := New(zerolog.Nop())
		res, err := e.Request(context.Background(), &request.Options{URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, "bar", res.Headers["x-foo"])
		assert.Equal(t, []byte("created"), res.Body)
	})
	t.Run("non-success status is a result, not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		e := New(zerolog.Nop())
		res, err := e.Request(context.Background(), &request.Options{URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.False(t, res.IsSuccess())
	})
	t.Run("headers, method, body and basic auth reach the server", func(t *testing.T) {
		var got struct {
			method, custom, auth, body string
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := request.BodyBytes(r.Body)
			got.method = r.Method
			got.custom = r.Header.Get("X-Custom")
			got.auth = r.Header.Get("Authorization")
			got.body = string(b)
		}))
		defer server.Close()

		e := New(zerolog.Nop())
		_, err := e.Request(context.Background(), &request.Options{
			URL:      server.URL,
			Method:   "PUT",
			User:     "u",
			Password: "p",
			Headers:  request.Headers{"X-Custom": "Y"},
			Body:     []byte("payload"),
		})
		require.NoError(t, err)
		assert.Equal(t, "PUT", got.method)
		assert.Equal(t, "Y", got.custom)
		assert.Equal(t, request.BasicAuth("u", "p"), got.auth)
		assert.Equal(t, "payload", got.body)
	})
	t.Run("per-request proxy authorization is sent as a header", func(t *testing.T) {
		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Proxy-Authorization")
		}))
		defer server.Close()

		e := New(zerolog.Nop())
		_, err := e.Request(context.Background(), &request.Options{
			URL:                server.URL,
			ProxyAuthorization: "Basic abc",
		})
		require.NoError(t, err)
		assert.Equal(t, "Basic abc", got)
	})
	t.Run("transport failure is an error", func(t *testing.T) {
		e := New(zerolog.Nop())
		res, err := e.Request(context.Background(), &request.Options{
			URL: "http://127.0.0.1:1", // nothing listens here
		})
		assert.Nil(t, res)
		assert.Error(t, err)
	})
	t.Run("timeout is enforced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer server.Close()

		e := New(zerolog.Nop())
		start := time.Now()
		res, err := e.Request(context.Background(), &request.Options{
			URL:     server.URL,
			Timeout: 50 * time.Millisecond,
		})
		assert.Nil(t, res)
		assert.Error(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestRequestRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("landed"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	t.Run("zero means first response as-is", func(t *testing.T) {
		e := New(zerolog.Nop())
		res, err := e.Request(context.Background(), &request.Options{URL: server.URL + "/hop"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, res.StatusCode)
	})
	t.Run("positive count follows", func(t *testing.T) {
		e := New(zerolog.Nop())
		res, err := e.Request(context.Background(), &request.Options{
			URL:             server.URL + "/hop",
			FollowRedirects: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, []byte("landed"), res.Body)
	})
}

func TestConfigureStrictSSL(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer server.Close()

	t.Run("strict validation rejects the self-signed certificate", func(t *testing.T) {
		e := New(zerolog.Nop())
		res, err := e.Request(context.Background(), &request.Options{URL: server.URL})
		assert.Nil(t, res)
		assert.Error(t, err)
	})
	t.Run("relaxed validation accepts it", func(t *testing.T) {
		e := New(zerolog.Nop())
		require.NoError(t, e.Configure(context.Background(), request.Configuration{
			StrictSSL: request.Ptr(false),
		}))
		res, err := e.Request(context.Background(), &request.Options{URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, []byte("secure"), res.Body)
	})
}

func TestConfigure(t *testing.T) {
	t.Run("partial updates preserve unrelated state", func(t *testing.T) {
		e := New(zerolog.Nop())
		require.NoError(t, e.Configure(context.Background(), request.Configuration{
			ProxyURL: request.Ptr("http://proxy:8080"),
		}))
		require.NoError(t, e.Configure(context.Background(), request.Configuration{
			StrictSSL: request.Ptr(false),
		}))
		e.mu.RLock()
		defer e.mu.RUnlock()
		assert.Equal(t, "http://proxy:8080", e.proxyURL)
		assert.False(t, e.strictSSL)
	})
	t.Run("zero configuration is a no-op", func(t *testing.T) {
		e := New(zerolog.Nop())
		before := e.client
		require.NoError(t, e.Configure(context.Background(), request.Configuration{}))
		assert.Same(t, before, e.client)
	})
	t.Run("invalid proxy URL is rejected", func(t *testing.T) {
		e := New(zerolog.Nop())
		err := e.Configure(context.Background(), request.Configuration{
			ProxyURL: request.Ptr("http://bad url with spaces"),
		})
		assert.Error(t, err)
	})
	t.Run("empty proxy URL removes the proxy", func(t *testing.T) {
		e := New(zerolog.Nop())
		require.NoError(t, e.Configure(context.Background(), request.Configuration{
			ProxyURL: request.Ptr("http://proxy:8080"),
		}))
		require.NoError(t, e.Configure(context.Background(), request.Configuration{
			ProxyURL: request.Ptr(""),
		}))
		proxy, err := e.ResolveProxy(context.Background(), "https://foo.com")
		require.NoError(t, err)
		assert.Equal(t, "", proxy)
	})
}

func TestResolveProxy(t *testing.T) {
	t.Run("configured proxy wins", func(t *testing.T) {
		e := New(zerolog.Nop())
		require.NoError(t, e.Configure(context.Background(), request.Configuration{
			ProxyURL: request.Ptr("http://proxy:8080"),
		}))
		proxy, err := e.ResolveProxy(context.Background(), "https://foo.com")
		require.NoError(t, err)
		assert.Equal(t, "http://proxy:8080", proxy)
	})
	t.Run("environment rules apply otherwise", func(t *testing.T) {
		t.Setenv("HTTP_PROXY", "http://env-proxy:3128")
		t.Setenv("NO_PROXY", "")
		e := New(zerolog.Nop())
		proxy, err := e.ResolveProxy(context.Background(), "http://foo.com")
		require.NoError(t, err)
		assert.Equal(t, "http://env-proxy:3128", proxy)
	})
	t.Run("no proxy resolves to empty", func(t *testing.T) {
		t.Setenv("HTTP_PROXY", "")
		t.Setenv("HTTPS_PROXY", "")
		e := New(zerolog.Nop())
		proxy, err := e.ResolveProxy(context.Background(), "https://foo.com")
		require.NoError(t, err)
		assert.Equal(t, "", proxy)
	})
}
