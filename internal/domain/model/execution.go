package model

type ExecutionMode string

const (
	ModeRun    ExecutionMode = "run"
	ModeSubmit ExecutionMode = "submit"
)

// LanguageJavaScript is the only execution language the sandbox supports.
const LanguageJavaScript = "javascript"

// ExecutionRequest is the value object handed to the orchestrator. It has no
// lifecycle of its own; one is built per HTTP call.
type ExecutionRequest struct {
	Code        string        `json:"code"`
	ProblemSlug string        `json:"problemSlug"`
	Mode        ExecutionMode `json:"mode"`
}

// ExecutionOutcome is the per-test-case verdict with diagnostics. Timing and
// memory are absent when the sandbox failed before producing a sample.
type ExecutionOutcome struct {
	TestCaseID      string   `json:"testCaseId"`
	Passed          bool     `json:"passed"`
	Input           string   `json:"input"`
	ExpectedOutput  string   `json:"expectedOutput"`
	ActualOutput    any      `json:"actualOutput,omitempty"`
	Error           *string  `json:"error,omitempty"`
	Logs            []string `json:"logs"`
	ExecutionTimeMs *int     `json:"executionTimeMs,omitempty"`
	MemoryUsedBytes *int64   `json:"memoryUsedBytes,omitempty"`
}

// ExecutionResult aggregates one request. Passed is the AND of every outcome.
type ExecutionResult struct {
	Passed  bool               `json:"passed"`
	Results []ExecutionOutcome `json:"results"`
}
