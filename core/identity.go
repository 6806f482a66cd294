package core

import (
	"strings"

	"github.com/google/uuid"
)

// longID is 32 hex characters, used for download names.
func longID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// shortID is 8 hex characters, used for directory suffixes.
func shortID() string {
	return longID()[:8]
}
