package gateway

import "errors"

var (
	// ErrRejected marks a business rejection: the backend answered but said
	// no (success=false). The server message is wrapped alongside.
	ErrRejected = errors.New("rejected by gateway")

	// ErrBadResponse marks a reply that was not the expected envelope.
	ErrBadResponse = errors.New("malformed gateway response")

	// ErrUnknownAction marks a reaction response whose action discriminator
	// is none of added/removed/changed.
	ErrUnknownAction = errors.New("unknown reaction action")
)
