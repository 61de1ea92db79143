// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	t.Run("ready immediately", func(t *testing.T) {
		s := NewStatic(nil)
		select {
		case <-s.Ready():
		default:
			t.Fatal("static source must be ready at construction")
		}
	})
	t.Run("set emits a change with old and new values", func(t *testing.T) {
		s := NewStatic(map[string]interface{}{KeyProxy: "http://old:8080"})
		var got Event
		s.OnChange(func(e Event) {
			got = e
		})

		s.Set(KeyProxy, "http://new:8080")
		require.Contains(t, got, KeyProxy)
		assert.Equal(t, "http://new:8080", got[KeyProxy].New)
		assert.Equal(t, "http://old:8080", got[KeyProxy].Old)
	})
	t.Run("seeding does not emit", func(t *testing.T) {
		calls := 0
		s := NewStatic(map[string]interface{}{KeyProxy: "http://proxy:8080"})
		s.OnChange(func(Event) {
			calls++
		})
		assert.Zero(t, calls)
		assert.Equal(t, "http://proxy:8080", s.Get(KeyProxy))
	})
	t.Run("setting the same value emits nothing", func(t *testing.T) {
		s := NewStatic(map[string]interface{}{KeyProxyStrictSSL: true})
		calls := 0
		s.OnChange(func(Event) {
			calls++
		})
		s.Set(KeyProxyStrictSSL, true)
		assert.Zero(t, calls)
	})
	t.Run("cancel stops delivery", func(t *testing.T) {
		s := NewStatic(nil)
		calls := 0
		cancel := s.OnChange(func(Event) {
			calls++
		})
		s.Set(KeyProxy, "a")
		cancel()
		s.Set(KeyProxy, "b")
		assert.Equal(t, 1, calls)
	})
}

func TestConfigurationFrom(t *testing.T) {
	testCases := []struct {
		name    string
		event   Event
		asserts func(*testing.T, Event)
	}{
		{
			name:  "proxy only",
			event: Event{KeyProxy: {New: "http://proxy:8080", Old: nil}},
			asserts: func(t *testing.T, e Event) {
				cfg, touched := ConfigurationFrom(e)
				assert.True(t, touched)
				require.NotNil(t, cfg.ProxyURL)
				assert.Equal(t, "http://proxy:8080", *cfg.ProxyURL)
				assert.Nil(t, cfg.ProxyAuthorization)
				assert.Nil(t, cfg.StrictSSL)
			},
		},
		{
			name: "all three keys",
			event: Event{
				KeyProxy:              {New: "http://proxy:8080"},
				KeyProxyAuthorization: {New: "Basic abc"},
				KeyProxyStrictSSL:     {New: false},
			},
			asserts: func(t *testing.T, e Event) {
				cfg, touched := ConfigurationFrom(e)
				assert.True(t, touched)
				require.NotNil(t, cfg.ProxyURL)
				require.NotNil(t, cfg.ProxyAuthorization)
				require.NotNil(t, cfg.StrictSSL)
				assert.Equal(t, "Basic abc", *cfg.ProxyAuthorization)
				assert.False(t, *cfg.StrictSSL)
			},
		},
		{
			name:  "proxy removed yields empty string",
			event: Event{KeyProxy: {New: nil, Old: "http://proxy:8080"}},
			asserts: func(t *testing.T, e Event) {
				cfg, touched := ConfigurationFrom(e)
				assert.True(t, touched)
				require.NotNil(t, cfg.ProxyURL)
				assert.Equal(t, "", *cfg.ProxyURL)
			},
		},
		{
			name:  "unrelated keys are not a configuration",
			event: Event{"editor.fontSize": {New: 14, Old: 12}},
			asserts: func(t *testing.T, e Event) {
				cfg, touched := ConfigurationFrom(e)
				assert.False(t, touched)
				assert.True(t, cfg.IsZero())
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.asserts(t, testCase.event)
		})
	}
}
