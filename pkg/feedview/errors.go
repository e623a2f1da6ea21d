package feedview

import "errors"

var (
	// ErrUnauthenticated means the action needs a signed-in viewer. No local
	// state was changed.
	ErrUnauthenticated = errors.New("sign in required")

	// ErrRemoteRequestFailed wraps any failed call to the data store. The
	// optimistic change that issued it has been rolled back.
	ErrRemoteRequestFailed = errors.New("remote request failed")

	// ErrValidationFailed means the input was rejected locally and nothing
	// was sent.
	ErrValidationFailed = errors.New("validation failed")
)
