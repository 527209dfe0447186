package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// Gate applies admission control to outbound provider calls: a
// semaphore bounds concurrency and a token-bucket limiter bounds call
// rate. Excess requests queue on the semaphore instead of spawning
// unbounded concurrent calls.
type Gate struct {
	sem     chan struct{}
	limiter *rate.Limiter
}

// NewGate creates a gate allowing maxConcurrent in-flight calls and
// requestsPerMinute calls per minute. Zero values disable the
// corresponding control.
func NewGate(maxConcurrent, requestsPerMinute int) *Gate {
	g := &Gate{}
	if maxConcurrent > 0 {
		g.sem = make(chan struct{}, maxConcurrent)
	}
	if requestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
	}
	return g
}

// Acquire blocks until a slot is available or the context is cancelled.
// Callers must Release after the call completes.
func (g *Gate) Acquire(ctx context.Context) error {
	if g.sem != nil {
		select {
		case g.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			if g.sem != nil {
				<-g.sem
			}
			return err
		}
	}
	return nil
}

// Release frees the slot taken by Acquire
func (g *Gate) Release() {
	if g.sem != nil {
		<-g.sem
	}
}
