package live

import (
	"context"

	"github.com/eringen/folio/docstore"
)

// Op is the completion handle of an asynchronous write. Callers that do not
// care about the outcome may drop it.
type Op struct {
	ref  docstore.Ref
	done chan struct{}
	err  error
}

func newOp(ref docstore.Ref) *Op {
	return &Op{ref: ref, done: make(chan struct{})}
}

func (o *Op) finish(err error) {
	o.err = err
	close(o.done)
}

// Ref is the document the operation writes. Add mutators report the id they
// generated here.
func (o *Op) Ref() docstore.Ref {
	return o.ref
}

// Done is closed when the write has committed or failed.
func (o *Op) Done() <-chan struct{} {
	return o.done
}

// Err returns the outcome once Done is closed, nil before.
func (o *Op) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Wait blocks until the write finishes or ctx ends.
func (o *Op) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
