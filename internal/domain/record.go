package domain

import (
	"time"

	"github.com/google/uuid"
)

// ValidationRecord is the audit-trail row persisted after a full
// validation. It stores outcomes, not images.
type ValidationRecord struct {
	ID         uuid.UUID
	Mode       Mode
	Status     string
	ErrorCodes []string
	Width      int
	Height     int
	LatencyMs  int64
	CreatedAt  time.Time
}

// NewValidationRecord derives an audit row from an assembled result.
func NewValidationRecord(mode Mode, result *Result, latency time.Duration) *ValidationRecord {
	rec := &ValidationRecord{
		ID:         uuid.New(),
		Mode:       mode,
		Status:     result.Status,
		ErrorCodes: make([]string, 0, len(result.Errors)),
		LatencyMs:  latency.Milliseconds(),
	}
	for _, e := range result.Errors {
		rec.ErrorCodes = append(rec.ErrorCodes, string(e.Code))
	}
	if format, ok := result.Metadata["format"]; ok {
		if w, ok := format["width"].(int); ok {
			rec.Width = w
		}
		if h, ok := format["height"].(int); ok {
			rec.Height = h
		}
	}
	return rec
}
