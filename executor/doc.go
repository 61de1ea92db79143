// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package executor implements the privileged execution strategy: a full
net/http transport with proxy routing, proxy authorization, and
certificate-validation policy.

The Executor owns the process-wide transport configuration. Configure
applies partial updates (only non-nil fields overwrite prior state)
and rebuilds the transport accordingly; requests started before a
Configure call finish on the transport they began with. ResolveProxy
answers from the configured proxy first and falls back to the
process environment's proxy rules.

An Executor is typically not called directly by front-end code.
Instead it is mounted behind a peer.Server, and restricted contexts
reach it through a peer.Client.
*/
package executor
