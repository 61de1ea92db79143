// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package prefs defines the preference source consumed by the delegating
strategy, and two implementations of it.

A Source exposes a readiness gate, awaited once before the first
request goes out, and a change subscription delivering the preference
keys that changed together with their old and new values. The three
keys of interest to the request capability are KeyProxy,
KeyProxyAuthorization and KeyProxyStrictSSL; ConfigurationFrom derives
a partial transport configuration from a change event containing any
of them.

Static is an in-memory source, always ready, with programmatic Set
calls; it backs tests and embedders that manage preferences
themselves. File is backed by a settings file through viper and emits
change events as the file is edited on disk.
*/
package prefs
