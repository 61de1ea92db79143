// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package prefs

import (
	"sync"

	"github.com/gogama/relay/request"
)

// Preference keys consumed by the request capability.
const (
	// KeyProxy is the URL of the proxy to route outbound requests
	// through.
	KeyProxy = "http.proxy"
	// KeyProxyAuthorization is the Proxy-Authorization header value
	// presented to the configured proxy. The same key is used for
	// reading and writing.
	KeyProxyAuthorization = "http.proxyAuthorization"
	// KeyProxyStrictSSL controls server certificate validation.
	KeyProxyStrictSSL = "http.proxyStrictSSL"
)

// A Change carries the new and old value of one preference key.
type Change struct {
	New interface{}
	Old interface{}
}

// An Event maps each changed preference key to its Change. An event
// contains only keys that actually changed.
type Event map[string]Change

// A Source supplies preferences to the delegating strategy.
//
// Ready returns a channel that is closed once the preference subsystem
// has loaded its initial state; the delegating strategy does not issue
// its first request before then. OnChange registers fn to be called
// with each subsequent change event and returns a function that
// cancels the registration.
type Source interface {
	Ready() <-chan struct{}
	OnChange(fn func(Event)) (cancel func())
}

// ConfigurationFrom derives a partial transport configuration from the
// request-related keys of a change event. The second return value
// reports whether the event touched any of them.
func ConfigurationFrom(e Event) (request.Configuration, bool) {
	var cfg request.Configuration
	touched := false
	if ch, present := e[KeyProxy]; present {
		s, _ := ch.New.(string)
		cfg.ProxyURL = &s
		touched = true
	}
	if ch, present := e[KeyProxyAuthorization]; present {
		s, _ := ch.New.(string)
		cfg.ProxyAuthorization = &s
		touched = true
	}
	if ch, present := e[KeyProxyStrictSSL]; present {
		b, _ := ch.New.(bool)
		cfg.StrictSSL = &b
		touched = true
	}
	return cfg, touched
}

// subscribers is a registration list shared by the Source
// implementations in this package.
type subscribers struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func (s *subscribers) add(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(Event))
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *subscribers) notify(e Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}

// Static is an in-memory Source. It is ready from the moment it is
// created, and changes are driven programmatically through Set.
type Static struct {
	ready chan struct{}
	subs  subscribers

	mu     sync.Mutex
	values map[string]interface{}
}

// NewStatic returns a Static source, optionally seeded with initial
// values. Seeding does not emit a change event.
func NewStatic(initial map[string]interface{}) *Static {
	ready := make(chan struct{})
	close(ready)
	values := make(map[string]interface{}, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Static{ready: ready, values: values}
}

// Ready returns an already-closed channel.
func (s *Static) Ready() <-chan struct{} {
	return s.ready
}

// OnChange registers fn for change events emitted by Set.
func (s *Static) OnChange(fn func(Event)) (cancel func()) {
	return s.subs.add(fn)
}

// Get returns the current value of key, or nil.
func (s *Static) Get(key string) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set updates key to value and emits a change event to all
// subscribers. Setting a key to its current value emits nothing.
func (s *Static) Set(key string, value interface{}) {
	s.mu.Lock()
	old, had := s.values[key]
	if had && old == value {
		s.mu.Unlock()
		return
	}
	s.values[key] = value
	s.mu.Unlock()
	s.subs.notify(Event{key: {New: value, Old: old}})
}
