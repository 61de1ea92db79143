// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the value types exchanged through the relay
request capability: the per-call request descriptor (Options), the
process-wide transport configuration (Configuration), and the buffered
response (Result) with its classification and decoding helpers.

An Options describes exactly one logical request and is never retained
by a strategy after the call returns. A Configuration describes state
that outlives individual requests (proxy URL, proxy authorization,
certificate validation policy) and is applied via partial updates: only
non-nil fields overwrite previously configured values.

A Result carries the response status, a flattened header mapping, and
the fully buffered body. Use Result.Text or the generic JSON function
to decode it; both refuse to decode a non-success response.
*/
package request
