package model

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ListenerError describes a listener that panicked during fan-out.
type ListenerError struct {
	ID    ListenerID
	Value any
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %d panicked: %v", e.ID, e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *ListenerError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func callListener[T any](e listenerEntry[T], value T, err error) (lerr error) {
	defer func() {
		if r := recover(); r != nil {
			lerr = &ListenerError{ID: e.id, Value: r}
		}
	}()
	e.fn(value, err)
	return nil
}

func joinListenerErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return multierror.Append(nil, errs...).ErrorOrNil()
}
