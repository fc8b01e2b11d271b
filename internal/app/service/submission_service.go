package service

import (
	"context"

	"github.com/devdesignersid/codetrack/internal/app/judge"
	"github.com/devdesignersid/codetrack/internal/common"
	"github.com/devdesignersid/codetrack/internal/domain/model"
	"github.com/devdesignersid/codetrack/internal/domain/repository"

	"go.uber.org/zap"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	logger         *zap.Logger
}

func NewSubmissionService(subRepo repository.SubmissionRepository, probRepo repository.ProblemRepository, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		logger:         logger,
	}
}

// ListForProblem returns the user's submission history for a problem, each
// entry decorated with time and memory percentiles computed against the
// user's sibling submissions carrying a sample. Inclusive "<=" ranking:
// lower percentile means faster/leaner.
func (s *SubmissionService) ListForProblem(ctx context.Context, userID, slug string) ([]model.Submission, error) {
	problem, err := s.problemRepo.FindProblemBySlug(ctx, slug)
	if err != nil {
		return nil, common.Errorf("problem %q: %w", slug, err)
	}

	subs, err := s.submissionRepo.ListByUserAndProblem(ctx, userID, problem.ID)
	if err != nil {
		return nil, err
	}

	var timeSamples, memSamples []float64
	for _, sub := range subs {
		if sub.AvgExecutionTimeMs != nil {
			timeSamples = append(timeSamples, *sub.AvgExecutionTimeMs)
		}
		if sub.AvgMemoryUsedBytes != nil {
			memSamples = append(memSamples, *sub.AvgMemoryUsedBytes)
		}
	}

	for i := range subs {
		if subs[i].AvgExecutionTimeMs != nil {
			p := judge.Percentile(timeSamples, *subs[i].AvgExecutionTimeMs)
			subs[i].TimePercentile = &p
		}
		if subs[i].AvgMemoryUsedBytes != nil {
			p := judge.Percentile(memSamples, *subs[i].AvgMemoryUsedBytes)
			subs[i].MemoryPercentile = &p
		}
	}
	return subs, nil
}

// SubmissionDetail is the single-submission view: the stored row plus the
// problem it belongs to, so a saved solution renders without a second lookup.
type SubmissionDetail struct {
	model.Submission
	ProblemTitle string                  `json:"problem_title"`
	ProblemSlug  string                  `json:"problem_slug"`
	Difficulty   model.ProblemDifficulty `json:"difficulty"`
}

// GetSubmission returns one submission with its problem context. Another
// user's submission reads as not found rather than forbidden; IDs are opaque
// and their existence is not disclosed.
func (s *SubmissionService) GetSubmission(ctx context.Context, userID, submissionID string) (*SubmissionDetail, error) {
	sub, err := s.submissionRepo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, common.Errorf("submission %q: %w", submissionID, err)
	}
	if sub.UserID != userID {
		return nil, common.Errorf("submission %q: %w", submissionID, common.ErrNotFound)
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, sub.ProblemID)
	if err != nil {
		return nil, common.Errorf("problem for submission %q: %w", submissionID, err)
	}
	return &SubmissionDetail{
		Submission:   *sub,
		ProblemTitle: problem.Title,
		ProblemSlug:  problem.Slug,
		Difficulty:   problem.Difficulty,
	}, nil
}

// MarkSolution toggles the user's solution annotation on one submission.
func (s *SubmissionService) MarkSolution(ctx context.Context, userID, submissionID string, isSolution bool, solutionName *string) error {
	if !isSolution {
		solutionName = nil
	}
	if err := s.submissionRepo.SetSolution(ctx, submissionID, userID, isSolution, solutionName); err != nil {
		return common.Errorf("submission %q: %w", submissionID, err)
	}
	s.logger.Info("submission solution flag updated",
		zap.String("submission_id", submissionID),
		zap.Bool("is_solution", isSolution),
	)
	return nil
}
