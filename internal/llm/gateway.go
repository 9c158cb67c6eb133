package llm

import (
	"context"
	"sync"
)

// Gateway serializes generation against a single logical agent run: at most
// one request is outstanding per Gateway instance, and issuing a new request
// aborts any prior in-flight one. The aborted call returns ErrSuperseded and
// its result is discarded by the caller, never treated as a failure.
type Gateway struct {
	client Client

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewGateway wraps a Client with single-flight cancellation semantics.
func NewGateway(client Client) *Gateway {
	return &Gateway{client: client}
}

// Generate cancels any in-flight request, then delegates to the underlying
// client. The caller's ctx still applies; cancellation of either aborts the
// request.
func (g *Gateway) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	g.gen++
	myGen := g.gen
	g.cancel = cancel
	g.mu.Unlock()

	resp, err := g.client.Generate(ctx, req)

	g.mu.Lock()
	// Only clear the handle if no newer call replaced it while in flight.
	if g.gen == myGen {
		g.cancel = nil
	}
	g.mu.Unlock()
	cancel()

	return resp, err
}

// Available reports vendor reachability via the underlying client.
func (g *Gateway) Available(ctx context.Context) bool {
	return g.client.Available(ctx)
}
