package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// PrefixedID returns a unique identifier tagged with its kind, e.g. "req_9f1c...".
func PrefixedID(prefix string) string {
	return prefix + "_" + uuid.New().String()
}
