// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package prefs

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// watchedKeys are the preference keys File diffs when the settings
// file changes on disk. Edits to other keys do not produce events.
var watchedKeys = []string{
	KeyProxy,
	KeyProxyAuthorization,
	KeyProxyStrictSSL,
}

// File is a Source backed by a settings file on disk. The file format
// is anything viper understands from the file extension (JSON, YAML,
// TOML, ...). File watches the settings file and emits a change event
// whenever one of the request-related keys changes value.
type File struct {
	v      *viper.Viper
	logger zerolog.Logger
	ready  chan struct{}
	subs   subscribers

	mu   sync.Mutex
	last map[string]interface{}
}

// WatchFile loads the settings file at path and starts watching it
// for changes. The returned source is ready as soon as WatchFile
// returns without error.
func WatchFile(path string, logger zerolog.Logger) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("relay/prefs: reading %s: %w", path, err)
	}

	f := &File{
		v:      v,
		logger: logger,
		ready:  make(chan struct{}),
		last:   make(map[string]interface{}, len(watchedKeys)),
	}
	for _, key := range watchedKeys {
		f.last[key] = v.Get(key)
	}

	v.OnConfigChange(func(fsnotify.Event) {
		f.emitDiff()
	})
	v.WatchConfig()
	close(f.ready)
	logger.Debug().Str("path", path).Msg("watching preference file")
	return f, nil
}

// Ready returns a channel closed once the initial file load has
// completed.
func (f *File) Ready() <-chan struct{} {
	return f.ready
}

// OnChange registers fn for change events derived from file edits.
func (f *File) OnChange(fn func(Event)) (cancel func()) {
	return f.subs.add(fn)
}

// emitDiff compares the watched keys against their last seen values
// and notifies subscribers of any that changed.
func (f *File) emitDiff() {
	f.mu.Lock()
	event := make(Event)
	for _, key := range watchedKeys {
		cur := f.v.Get(key)
		old := f.last[key]
		if !reflect.DeepEqual(cur, old) {
			event[key] = Change{New: cur, Old: old}
			f.last[key] = cur
		}
	}
	f.mu.Unlock()
	if len(event) == 0 {
		return
	}
	f.logger.Debug().Int("changed_keys", len(event)).Msg("preference file changed")
	f.subs.notify(event)
}
