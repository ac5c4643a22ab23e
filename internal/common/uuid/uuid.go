// Package uuid wraps github.com/google/uuid with time-ordered (version 7)
// identifiers, used to tag outgoing API requests so they sort by send time in
// server logs.
package uuid

import (
	"github.com/google/uuid"
)

// UUID is an alias of github.com/google/uuid.UUID.
type UUID = uuid.UUID

// UUID7 generates a new UUIDv7, falling back to a random v4 identifier if the
// clock-based generator fails.
func UUID7() UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// NewRequestID returns a fresh request identifier in canonical string form.
func NewRequestID() string {
	return UUID7().String()
}
