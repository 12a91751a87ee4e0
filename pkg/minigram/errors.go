package minigram

import "errors"

var (
	// ErrPeerNotFound indicates a remote entity lookup returned nothing for the requested ids.
	ErrPeerNotFound = errors.New("minigram: peer not found")
	// ErrMessageNotFound indicates a remote message fetch came back empty.
	ErrMessageNotFound = errors.New("minigram: message not found")
	// ErrInvalidMessage indicates a Message violates its field-cluster invariants.
	ErrInvalidMessage = errors.New("minigram: invalid message")
)
