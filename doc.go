// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package relay provides a uniform outbound HTTP(S) request capability
that works the same way in a restricted front-end context and in a
privileged host process, with transparent fallback between the two
execution strategies.

The capability itself is the Service interface: configure transport
state, issue a single buffered request, resolve the proxy for a URL.
Three implementations ship with the module:

• package native executes requests in-process through a restricted
HTTP facility with no proxy support and limited header control;

• package executor owns a full net/http transport with proxy,
proxy-authorization and certificate-validation configuration; and

• package peer carries the Service contract across a process boundary
as an explicit websocket client/server pair, so a restricted context
can delegate to a privileged one.

The Fallback client composes a restricted strategy with a fully
capable delegate. It attempts the restricted strategy first and hands
the original, unmodified request to the delegate whenever the attempt
returns 405 Method Not Allowed or fails outright:

	svc := &relay.Fallback{
		Native:   native.New(nil, logger),
		Delegate: peerClient,
		Logger:   logger,
	}
	res, err := svc.Request(ctx, opts)
	...
	body, err := res.Text()

Package relay also provides convenience helpers (Get, Post, PostForm)
that build an Options and execute it through any Service.
*/
package relay
