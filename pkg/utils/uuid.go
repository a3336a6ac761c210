package utils

import "github.com/google/uuid"

// GenerateUUID returns a random version 4 UUID string.
func GenerateUUID() string {
	return uuid.NewString()
}
