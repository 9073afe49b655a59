package uid

import (
	"strings"

	"github.com/google/uuid"
)

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// NewCompact generates an identifier without separators, used for ids
// assigned to scraped records that arrived without one.
func NewCompact() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
