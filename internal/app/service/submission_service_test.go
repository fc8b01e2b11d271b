package service

import (
	"context"
	"errors"
	"testing"

	"github.com/devdesignersid/codetrack/internal/common"
	"github.com/devdesignersid/codetrack/internal/domain/model"

	"go.uber.org/zap"
)

type listingSubmissionRepo struct {
	fakeSubmissionRepo

	listing    []model.Submission
	byID       map[string]*model.Submission
	setCalls   []setSolutionCall
	setListErr error
}

type setSolutionCall struct {
	submissionID string
	userID       string
	isSolution   bool
	solutionName *string
}

func (f *listingSubmissionRepo) ListByUserAndProblem(_ context.Context, _, _ string) ([]model.Submission, error) {
	if f.setListErr != nil {
		return nil, f.setListErr
	}
	return f.listing, nil
}

func (f *listingSubmissionRepo) GetSubmissionByID(_ context.Context, id string) (*model.Submission, error) {
	sub, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *listingSubmissionRepo) SetSolution(_ context.Context, submissionID, userID string, isSolution bool, solutionName *string) error {
	f.setCalls = append(f.setCalls, setSolutionCall{submissionID, userID, isSolution, solutionName})
	return nil
}

func fptr(v float64) *float64 { return &v }

func TestListForProblemDecoratesPercentiles(t *testing.T) {
	repo := &listingSubmissionRepo{
		listing: []model.Submission{
			{ID: "s1", AvgExecutionTimeMs: fptr(100), AvgMemoryUsedBytes: fptr(2048)},
			{ID: "s2", AvgExecutionTimeMs: fptr(200), AvgMemoryUsedBytes: fptr(1024)},
			{ID: "s3", AvgExecutionTimeMs: fptr(300)},
			{ID: "s4"}, // failed before producing samples
		},
	}
	svc := NewSubmissionService(repo, &fakeProblemRepo{
		problems: map[string]*model.Problem{"two-sum": {ID: "prob-1", Slug: "two-sum"}},
	}, zap.NewNop())

	subs, err := svc.ListForProblem(context.Background(), "user-1", "two-sum")
	if err != nil {
		t.Fatalf("ListForProblem() error: %v", err)
	}
	if len(subs) != 4 {
		t.Fatalf("expected 4 submissions, got %d", len(subs))
	}

	// Three time samples: 100 ranks 1/3, 300 ranks 3/3.
	if got := *subs[0].TimePercentile; got != 33 {
		t.Errorf("fastest time percentile = %d, want 33", got)
	}
	if got := *subs[2].TimePercentile; got != 100 {
		t.Errorf("slowest time percentile = %d, want 100", got)
	}
	// Two memory samples: s2 is leaner.
	if got := *subs[1].MemoryPercentile; got != 50 {
		t.Errorf("leaner memory percentile = %d, want 50", got)
	}
	if got := *subs[0].MemoryPercentile; got != 100 {
		t.Errorf("heavier memory percentile = %d, want 100", got)
	}
	// No sample, no rank.
	if subs[2].MemoryPercentile != nil || subs[3].TimePercentile != nil {
		t.Error("submissions without samples must stay unranked")
	}
}

func TestListForProblemUnknownSlug(t *testing.T) {
	svc := NewSubmissionService(&listingSubmissionRepo{}, &fakeProblemRepo{problems: map[string]*model.Problem{}}, zap.NewNop())

	_, err := svc.ListForProblem(context.Background(), "user-1", "nope")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestGetSubmissionIncludesProblemContext(t *testing.T) {
	repo := &listingSubmissionRepo{
		byID: map[string]*model.Submission{
			"sub-1": {ID: "sub-1", UserID: "user-1", ProblemID: "prob-1", Status: model.StatusAccepted},
		},
	}
	svc := NewSubmissionService(repo, &fakeProblemRepo{
		problems: map[string]*model.Problem{
			"two-sum": {ID: "prob-1", Slug: "two-sum", Title: "Two Sum", Difficulty: model.DifficultyEasy},
		},
	}, zap.NewNop())

	detail, err := svc.GetSubmission(context.Background(), "user-1", "sub-1")
	if err != nil {
		t.Fatalf("GetSubmission() error: %v", err)
	}
	if detail.ID != "sub-1" || detail.Status != model.StatusAccepted {
		t.Errorf("submission not carried through: %+v", detail.Submission)
	}
	if detail.ProblemSlug != "two-sum" || detail.ProblemTitle != "Two Sum" || detail.Difficulty != model.DifficultyEasy {
		t.Errorf("problem context missing: %+v", detail)
	}
}

func TestGetSubmissionHidesOtherUsers(t *testing.T) {
	repo := &listingSubmissionRepo{
		byID: map[string]*model.Submission{
			"sub-1": {ID: "sub-1", UserID: "user-1", ProblemID: "prob-1"},
		},
	}
	svc := NewSubmissionService(repo, &fakeProblemRepo{
		problems: map[string]*model.Problem{
			"two-sum": {ID: "prob-1", Slug: "two-sum"},
		},
	}, zap.NewNop())

	if _, err := svc.GetSubmission(context.Background(), "someone-else", "sub-1"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetSubmission(context.Background(), "user-1", "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestMarkSolutionClearsNameWhenUnset(t *testing.T) {
	repo := &listingSubmissionRepo{}
	svc := NewSubmissionService(repo, &fakeProblemRepo{}, zap.NewNop())

	name := "sliding window"
	if err := svc.MarkSolution(context.Background(), "user-1", "sub-1", true, &name); err != nil {
		t.Fatalf("MarkSolution() error: %v", err)
	}
	if err := svc.MarkSolution(context.Background(), "user-1", "sub-1", false, &name); err != nil {
		t.Fatalf("MarkSolution() error: %v", err)
	}

	if len(repo.setCalls) != 2 {
		t.Fatalf("expected 2 repo calls, got %d", len(repo.setCalls))
	}
	if repo.setCalls[0].solutionName == nil || *repo.setCalls[0].solutionName != name {
		t.Errorf("marking should carry the name: %+v", repo.setCalls[0])
	}
	if repo.setCalls[1].solutionName != nil {
		t.Error("unmarking must clear the solution name")
	}
	if repo.setCalls[1].userID != "user-1" {
		t.Errorf("ownership not forwarded: %+v", repo.setCalls[1])
	}
}
