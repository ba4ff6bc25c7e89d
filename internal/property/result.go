package property

import (
	"time"

	"github.com/google/uuid"
)

// ValidationResult captures the outcome of checking one canonical entity.
// Errors block persistence; warnings are informational only.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Confidence float64  `json:"confidence"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Source     string   `json:"source"`
}

// RunSummary reports one pipeline run back to the caller. It is never
// persisted by this subsystem.
type RunSummary struct {
	RunID     uuid.UUID     `json:"run_id"`
	Source    string        `json:"source"`
	Success   bool          `json:"success"`
	Processed int           `json:"properties_processed"`
	Added     int           `json:"properties_added"`
	Updated   int           `json:"properties_updated"`
	Skipped   int           `json:"properties_skipped"`
	Errors    []string      `json:"errors,omitempty"`
	Duration  time.Duration `json:"processing_time"`
	StartedAt time.Time     `json:"started_at"`
}
