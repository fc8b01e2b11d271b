package service

import (
	"context"
	"encoding/json"
	"runtime"

	"github.com/devdesignersid/codetrack/internal/app/judge"
	"github.com/devdesignersid/codetrack/internal/common"
	"github.com/devdesignersid/codetrack/internal/domain/model"
	"github.com/devdesignersid/codetrack/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// problemSource is what the orchestrator needs from the problem side: a
// read-only lookup of the problem and its full test-case collection.
type problemSource interface {
	GetProblemWithTestCases(ctx context.Context, slug string) (*model.Problem, error)
}

// ExecutionService orchestrates one ExecutionRequest: resolve the entry point
// once, then per test case decode, invoke the sandbox, compare, and aggregate.
// Test cases run strictly sequentially in stored order so per-case timing is
// not contaminated by sibling cases of the same request.
type ExecutionService struct {
	problems       problemSource
	submissionRepo repository.SubmissionRepository
	sandbox        *judge.Sandbox
	logger         *zap.Logger
}

func NewExecutionService(
	problems problemSource,
	subRepo repository.SubmissionRepository,
	sandbox *judge.Sandbox,
	logger *zap.Logger,
) *ExecutionService {
	return &ExecutionService{
		problems:       problems,
		submissionRepo: subRepo,
		sandbox:        sandbox,
		logger:         logger,
	}
}

func (s *ExecutionService) Execute(ctx context.Context, userID string, req model.ExecutionRequest) (*model.ExecutionResult, error) {
	if req.Mode != model.ModeRun && req.Mode != model.ModeSubmit {
		return nil, common.Errorf("unknown execution mode %q: %w", req.Mode, common.ErrBadRequest)
	}
	if req.Code == "" {
		return nil, common.Errorf("code must not be empty: %w", common.ErrBadRequest)
	}

	// The only request-level fatal condition: an unknown problem rejects the
	// request before any test case is attempted.
	problem, err := s.problems.GetProblemWithTestCases(ctx, req.ProblemSlug)
	if err != nil {
		return nil, common.Errorf("problem %q: %w", req.ProblemSlug, err)
	}
	if len(problem.TestCases) == 0 {
		// Deliberate decision for the zero-test-case problem: reject rather
		// than vacuously accept.
		return nil, common.Errorf("problem %q has no test cases: %w", req.ProblemSlug, common.ErrValidation)
	}

	starter := ""
	if problem.StarterCode != nil {
		starter = *problem.StarterCode
	}
	// The entry point is a property of the submitted code, constant across
	// the request's test cases.
	entryPoint := judge.ResolveEntryPoint(req.Code, starter)

	result := &model.ExecutionResult{Passed: true}
	for _, tc := range problem.TestCases {
		outcome := s.runTestCase(ctx, req.Code, entryPoint, tc)
		result.Passed = result.Passed && outcome.Passed
		result.Results = append(result.Results, outcome)
	}

	if req.Mode == model.ModeSubmit {
		if err := s.persistSubmission(ctx, userID, problem.ID, req.Code, result); err != nil {
			return nil, err
		}
	}

	s.logger.Info("execution finished",
		zap.String("problem", req.ProblemSlug),
		zap.String("mode", string(req.Mode)),
		zap.Bool("passed", result.Passed),
		zap.Int("test_cases", len(result.Results)),
	)
	return result, nil
}

// runTestCase produces one outcome. Every failure mode here is local: a
// malformed fixture, a sandbox error, or a mismatch degrades this outcome to
// failed and the orchestrator moves on to the next test case.
func (s *ExecutionService) runTestCase(ctx context.Context, code, entryPoint string, tc model.TestCase) model.ExecutionOutcome {
	outcome := model.ExecutionOutcome{
		TestCaseID:     tc.ID,
		Input:          tc.Input,
		ExpectedOutput: tc.ExpectedOutput,
		Logs:           []string{},
	}

	args, err := judge.DecodeArgs(tc.Input)
	if err != nil {
		msg := err.Error()
		outcome.Error = &msg
		return outcome
	}

	// Host heap delta around the sandbox call. This approximates the
	// isolate's allocation; it is not exact accounting.
	heapBefore := heapAlloc()
	run := s.sandbox.Run(ctx, code, entryPoint, args)
	heapDelta := heapAlloc() - heapBefore

	outcome.Logs = run.Logs
	if !run.Success {
		outcome.Error = &run.Error
		return outcome
	}

	ms := int(run.Duration.Milliseconds())
	outcome.ExecutionTimeMs = &ms
	if heapDelta < 0 {
		heapDelta = 0
	}
	outcome.MemoryUsedBytes = &heapDelta

	expected, err := judge.DecodeValue(tc.ExpectedOutput)
	if err != nil {
		msg := err.Error()
		outcome.Error = &msg
		return outcome
	}

	outcome.ActualOutput = run.Value
	// On mismatch both actual and expected stay on the outcome for display;
	// there is no error message because nothing errored.
	outcome.Passed = judge.Equal(run.Value, expected)
	return outcome
}

func (s *ExecutionService) persistSubmission(ctx context.Context, userID, problemID, code string, result *model.ExecutionResult) error {
	serialized, err := json.Marshal(result.Results)
	if err != nil {
		return common.Errorf("failed to serialize outcomes: %w", err)
	}

	status := model.StatusRejected
	if result.Passed {
		status = model.StatusAccepted
	}

	sub := &model.Submission{
		ID:                 uuid.NewString(),
		UserID:             userID,
		ProblemID:          problemID,
		Code:               code,
		Language:           model.LanguageJavaScript,
		Status:             status,
		Output:             serialized,
		AvgExecutionTimeMs: averageTime(result.Results),
		AvgMemoryUsedBytes: averageMemory(result.Results),
	}

	if err := s.submissionRepo.CreateSubmission(ctx, nil, sub); err != nil {
		return common.Errorf("failed to persist submission: %w", err)
	}
	s.logger.Info("submission persisted",
		zap.String("submission_id", sub.ID),
		zap.String("status", string(status)),
	)
	return nil
}

// Averages exclude outcomes without a sample from both numerator and
// denominator: a test case that never ran contributes no data rather than
// dragging the mean toward zero.
func averageTime(outcomes []model.ExecutionOutcome) *float64 {
	var sum float64
	var n int
	for _, o := range outcomes {
		if o.ExecutionTimeMs != nil {
			sum += float64(*o.ExecutionTimeMs)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func averageMemory(outcomes []model.ExecutionOutcome) *float64 {
	var sum float64
	var n int
	for _, o := range outcomes {
		if o.MemoryUsedBytes != nil {
			sum += float64(*o.MemoryUsedBytes)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func heapAlloc() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.HeapAlloc)
}
