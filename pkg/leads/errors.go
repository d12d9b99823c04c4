package leads

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned while the remote store has no anonymous identity yet.
// The caller should ask the user to try again.
var ErrNotReady = errors.New("remote lead store not ready: identity not established")

// RemoteWriteError wraps a transport or service failure of the remote store.
// The local copy has already been written when this is returned.
type RemoteWriteError struct {
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote lead write failed: %v", e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }
