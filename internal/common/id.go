package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a unique run ID with the "run_" prefix
// Format: run_<uuid>
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// NewResultID generates a unique case-result ID with the "res_" prefix
func NewResultID() string {
	return "res_" + uuid.New().String()
}
