// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package native implements the in-process execution strategy on top of
a restricted HTTP facility.

The facility is modelled by the Primitive interface: it takes a method,
URL, headers and body, and reports back a numeric status, a raw CR/LF
header block, and the raw body bytes. It has no proxy support and
forbids setting certain browser-controlled headers, which is why the
strategy exists side by side with the fully capable executor: a
Fallback client (package relay) pairs the two and delegates whenever
this one cannot service a request.

Behavior specific to this strategy:

• a Proxy-Authorization value installed via Configure is injected as a
header on every attempt, taking precedence over any per-request value
in Options (the restricted facility cannot negotiate proxy
authentication itself);

• the denylisted headers User-Agent, Accept-Encoding, and
Content-Length are silently skipped rather than failing the request;

• Options.Timeout is enforced here, and a timed-out attempt fails with
an error naming the timeout value; and

• the facility's raw header block is parsed into a Headers mapping by
splitting on CR/LF line endings and at the first colon of each line,
with names trimmed and lower-cased and values trimmed.
*/
package native
