// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package peer carries the relay Service contract across an execution
context boundary as an explicit client/server pair over a websocket
message channel.

The privileged side mounts a Server, wrapping any Service (normally an
executor.Executor), at the well-known path Path. The restricted side
dials a Client, which implements Service itself: Configure, Request
and ResolveProxy are forwarded verbatim as JSON frames correlated by
id, and concurrent calls multiplex over the single connection.

Response bodies cross the boundary in the structurally transferred
form {"data":[...]}; the Client re-materializes them into ordinary
byte slices as an explicit deserialization step, so callers never see
the wire shape.

A Client may be bound to a preference source (package prefs). It then
blocks its first request until the source signals readiness, and on
every change to a request-related preference key it derives a partial
configuration from the changed fields only and forwards it to the
server.
*/
package peer
