// Package kit holds the transport-neutral plumbing shared by recolte tools:
// the Endpoint abstraction, MCP registration, context keys, and the loose
// argument decoding used at the tool boundary.
package kit

import "context"

// Endpoint is a transport-agnostic operation: typed request in,
// serialisable response out.
type Endpoint func(ctx context.Context, req any) (any, error)
