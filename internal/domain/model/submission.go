package model

import (
	"encoding/json"
	"time"
)

type SubmissionStatus string

const (
	StatusAccepted SubmissionStatus = "Accepted"
	StatusRejected SubmissionStatus = "Rejected"
)

// Submission is written once per submit-mode execution. It is mutated later
// only to toggle the solution annotation, and rides the problem's delete
// cascade at the schema level.
type Submission struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	ProblemID          string           `json:"problem_id"`
	Code               string           `json:"code"`
	Language           string           `json:"language"`
	Status             SubmissionStatus `json:"status"`
	Output             json.RawMessage  `json:"output,omitempty"` // serialized ExecutionOutcome list
	AvgExecutionTimeMs *float64         `json:"avg_execution_time_ms,omitempty"`
	AvgMemoryUsedBytes *float64         `json:"avg_memory_used_bytes,omitempty"`
	IsSolution         bool             `json:"is_solution"`
	SolutionName       *string          `json:"solution_name,omitempty"`
	SubmittedAt        time.Time        `json:"submitted_at"`

	// Percentile rank of this submission's time/memory among the same user's
	// submissions for the problem, inclusive "<=" convention: lower is better.
	// Populated by the submission service for listings, not persisted.
	TimePercentile   *int `json:"time_percentile,omitempty"`
	MemoryPercentile *int `json:"memory_percentile,omitempty"`
}
