package utils

import "github.com/google/uuid"

// NewID returns a random UUID string, the shape the identity store hands out.
func NewID() string { return uuid.NewString() }
