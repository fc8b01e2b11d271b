package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/devdesignersid/codetrack/internal/app/judge"
	"github.com/devdesignersid/codetrack/internal/common"
	"github.com/devdesignersid/codetrack/internal/domain/model"

	"go.uber.org/zap"
)

type fakeProblemSource struct {
	problems map[string]*model.Problem
}

func (f *fakeProblemSource) GetProblemWithTestCases(_ context.Context, slug string) (*model.Problem, error) {
	p, ok := f.problems[slug]
	if !ok {
		return nil, common.ErrNotFound
	}
	return p, nil
}

type fakeSubmissionRepo struct {
	created []*model.Submission
	failOn  error
}

func (f *fakeSubmissionRepo) CreateSubmission(_ context.Context, _ *sql.Tx, sub *model.Submission) error {
	if f.failOn != nil {
		return f.failOn
	}
	f.created = append(f.created, sub)
	return nil
}

func (f *fakeSubmissionRepo) GetSubmissionByID(_ context.Context, _ string) (*model.Submission, error) {
	return nil, common.ErrNotFound
}

func (f *fakeSubmissionRepo) ListByUserAndProblem(_ context.Context, _, _ string) ([]model.Submission, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) SetSolution(_ context.Context, _, _ string, _ bool, _ *string) error {
	return nil
}

func twoSumProblem() *model.Problem {
	return &model.Problem{
		ID:    "prob-1",
		Slug:  "two-sum",
		Title: "Two Sum",
		TestCases: []model.TestCase{
			{ID: "tc-1", ProblemID: "prob-1", Input: `{nums: [2,7,11,15], target: 9}`, ExpectedOutput: `[0,1]`, SortOrder: 1},
		},
	}
}

func newTestExecutionService(problems map[string]*model.Problem, subRepo *fakeSubmissionRepo) *ExecutionService {
	return NewExecutionService(
		&fakeProblemSource{problems: problems},
		subRepo,
		judge.NewSandbox(1000*time.Millisecond, 128*1024*1024),
		zap.NewNop(),
	)
}

const workingTwoSum = `var twoSum = function(nums, target) {
	for (var i = 0; i < nums.length; i++) {
		for (var j = i + 1; j < nums.length; j++) {
			if (nums[i] + nums[j] === target) return [i, j];
		}
	}
	return [];
};`

func TestExecuteRunModeScenario(t *testing.T) {
	subRepo := &fakeSubmissionRepo{}
	svc := newTestExecutionService(map[string]*model.Problem{"two-sum": twoSumProblem()}, subRepo)

	result, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        workingTwoSum,
		ProblemSlug: "two-sum",
		Mode:        model.ModeRun,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if !result.Passed {
		t.Errorf("expected overall pass, results: %+v", result.Results)
	}
	if len(result.Results) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(result.Results))
	}
	outcome := result.Results[0]
	if outcome.TestCaseID != "tc-1" || !outcome.Passed {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
	if outcome.ExecutionTimeMs == nil || outcome.MemoryUsedBytes == nil {
		t.Error("successful outcome should carry timing and memory samples")
	}
	if outcome.ActualOutput == nil {
		t.Error("actual output missing")
	}
	// Run mode never persists.
	if len(subRepo.created) != 0 {
		t.Errorf("run mode persisted %d submissions", len(subRepo.created))
	}
}

func TestExecuteSubmitModePersists(t *testing.T) {
	subRepo := &fakeSubmissionRepo{}
	svc := newTestExecutionService(map[string]*model.Problem{"two-sum": twoSumProblem()}, subRepo)

	result, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        workingTwoSum,
		ProblemSlug: "two-sum",
		Mode:        model.ModeSubmit,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !result.Passed {
		t.Fatalf("expected pass, results: %+v", result.Results)
	}

	if len(subRepo.created) != 1 {
		t.Fatalf("expected 1 persisted submission, got %d", len(subRepo.created))
	}
	sub := subRepo.created[0]
	if sub.Status != model.StatusAccepted {
		t.Errorf("status = %s, want Accepted", sub.Status)
	}
	if sub.UserID != "user-1" || sub.ProblemID != "prob-1" {
		t.Errorf("ownership wrong: %+v", sub)
	}
	if sub.Language != model.LanguageJavaScript {
		t.Errorf("language = %s", sub.Language)
	}
	if sub.AvgExecutionTimeMs == nil || sub.AvgMemoryUsedBytes == nil {
		t.Error("averages missing on fully sampled submission")
	}
	if len(sub.Output) == 0 {
		t.Error("serialized outcomes missing")
	}
}

func TestExecuteFailingSubmissionRejected(t *testing.T) {
	subRepo := &fakeSubmissionRepo{}
	svc := newTestExecutionService(map[string]*model.Problem{"two-sum": twoSumProblem()}, subRepo)

	result, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        `var twoSum = function(nums, target) { return [9, 9]; };`,
		ProblemSlug: "two-sum",
		Mode:        model.ModeSubmit,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.Passed {
		t.Error("wrong answer should not pass")
	}
	if len(subRepo.created) != 1 || subRepo.created[0].Status != model.StatusRejected {
		t.Errorf("expected one Rejected submission, got %+v", subRepo.created)
	}
	// Mismatch preserves the actual output and carries no error message.
	outcome := result.Results[0]
	if outcome.Error != nil {
		t.Errorf("mismatch should not set an error, got %q", *outcome.Error)
	}
	if outcome.ActualOutput == nil {
		t.Error("mismatch should preserve actual output")
	}
}

func TestExecuteAggregateIsANDOfOutcomes(t *testing.T) {
	problem := twoSumProblem()
	problem.TestCases = append(problem.TestCases, model.TestCase{
		ID: "tc-2", ProblemID: "prob-1", Input: `{nums: [3,3], target: 7}`, ExpectedOutput: `[0,1]`, SortOrder: 2,
	})
	svc := newTestExecutionService(map[string]*model.Problem{"two-sum": problem}, &fakeSubmissionRepo{})

	result, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        workingTwoSum,
		ProblemSlug: "two-sum",
		Mode:        model.ModeRun,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(result.Results))
	}
	if !result.Results[0].Passed || result.Results[1].Passed {
		t.Errorf("expected pass/fail split, got %+v", result.Results)
	}
	if result.Passed {
		t.Error("one failed outcome must fail the aggregate")
	}
}

func TestExecuteMalformedFixtureDoesNotAbortRequest(t *testing.T) {
	problem := twoSumProblem()
	problem.TestCases = []model.TestCase{
		{ID: "tc-bad", ProblemID: "prob-1", Input: `{nums: [2,7`, ExpectedOutput: `[0,1]`, SortOrder: 1},
		{ID: "tc-good", ProblemID: "prob-1", Input: `{nums: [2,7,11,15], target: 9}`, ExpectedOutput: `[0,1]`, SortOrder: 2},
	}
	svc := newTestExecutionService(map[string]*model.Problem{"two-sum": problem}, &fakeSubmissionRepo{})

	result, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        workingTwoSum,
		ProblemSlug: "two-sum",
		Mode:        model.ModeRun,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	bad := result.Results[0]
	if bad.Passed || bad.Error == nil || !strings.Contains(*bad.Error, "fixture decode failed") {
		t.Errorf("bad fixture outcome wrong: %+v", bad)
	}
	if bad.ExecutionTimeMs != nil {
		t.Error("failed decode should contribute no timing sample")
	}
	if !result.Results[1].Passed {
		t.Errorf("good fixture should still be graded: %+v", result.Results[1])
	}
}

func TestExecuteCandidateErrorIsPerTestCase(t *testing.T) {
	svc := newTestExecutionService(map[string]*model.Problem{"two-sum": twoSumProblem()}, &fakeSubmissionRepo{})

	result, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        `var twoSum = function() { throw new Error("kaput"); };`,
		ProblemSlug: "two-sum",
		Mode:        model.ModeRun,
	})
	if err != nil {
		t.Fatalf("crashing candidate must not fail the request: %v", err)
	}
	outcome := result.Results[0]
	if outcome.Passed || outcome.Error == nil || !strings.Contains(*outcome.Error, "kaput") {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
	if outcome.ExecutionTimeMs != nil || outcome.MemoryUsedBytes != nil {
		t.Error("sandbox failure should contribute no timing or memory sample")
	}
}

func TestExecuteMalformedExpectedOutput(t *testing.T) {
	problem := twoSumProblem()
	problem.TestCases[0].ExpectedOutput = `[0,1`
	svc := newTestExecutionService(map[string]*model.Problem{"two-sum": problem}, &fakeSubmissionRepo{})

	result, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        workingTwoSum,
		ProblemSlug: "two-sum",
		Mode:        model.ModeRun,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	outcome := result.Results[0]
	if outcome.Passed || outcome.Error == nil {
		t.Errorf("malformed expected output should fail the case: %+v", outcome)
	}
}

func TestExecuteProblemNotFoundIsFatal(t *testing.T) {
	subRepo := &fakeSubmissionRepo{}
	svc := newTestExecutionService(map[string]*model.Problem{}, subRepo)

	_, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        workingTwoSum,
		ProblemSlug: "missing",
		Mode:        model.ModeSubmit,
	})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if len(subRepo.created) != 0 {
		t.Error("nothing may be persisted for an unknown problem")
	}
}

func TestExecuteZeroTestCasesRejected(t *testing.T) {
	problem := twoSumProblem()
	problem.TestCases = nil
	svc := newTestExecutionService(map[string]*model.Problem{"two-sum": problem}, &fakeSubmissionRepo{})

	_, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        workingTwoSum,
		ProblemSlug: "two-sum",
		Mode:        model.ModeRun,
	})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestExecuteRejectsUnknownMode(t *testing.T) {
	svc := newTestExecutionService(map[string]*model.Problem{"two-sum": twoSumProblem()}, &fakeSubmissionRepo{})

	_, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        workingTwoSum,
		ProblemSlug: "two-sum",
		Mode:        "compile",
	})
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("error = %v, want ErrBadRequest", err)
	}
}

func TestExecuteEntryPointFromStarterCode(t *testing.T) {
	problem := twoSumProblem()
	starter := `function twoSum(nums, target) {
	// write your solution
}`
	problem.StarterCode = &starter
	svc := newTestExecutionService(map[string]*model.Problem{"two-sum": problem}, &fakeSubmissionRepo{})

	// Candidate declares nothing recognizable; the starter's name is used and
	// the candidate's global function picks it up.
	result, err := svc.Execute(context.Background(), "user-1", model.ExecutionRequest{
		Code:        `twoSum = function(nums, target) { return [0, 1]; };`,
		ProblemSlug: "two-sum",
		Mode:        model.ModeRun,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !result.Passed {
		t.Errorf("starter-resolved entry point should run: %+v", result.Results)
	}
}
