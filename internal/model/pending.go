package model

import "context"

// Pending tracks one refresh. Done is closed once the result is cached and every
// listener of the snapshot has been called (or fan-out was aborted).
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Done is closed when the refresh has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err reports listener failures of a finished refresh. It is nil while the refresh
// is still running. Getter failures are never reported here; read them via Data.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the refresh finished or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
