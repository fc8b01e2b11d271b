package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/devdesignersid/codetrack/internal/common"
	"github.com/devdesignersid/codetrack/internal/domain/model"
	"github.com/devdesignersid/codetrack/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProblemService serves problem reads. Lookups that feed the execution path
// go through a read-through redis cache because every run/submit fetches the
// same problem and test cases again.
type ProblemService struct {
	problemRepo repository.ProblemRepository
	rdb         *redis.Client
	cacheTTL    time.Duration
	logger      *zap.Logger
}

func NewProblemService(probRepo repository.ProblemRepository, rdb *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *ProblemService {
	return &ProblemService{
		problemRepo: probRepo,
		rdb:         rdb,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func problemCacheKey(slug string) string {
	return "problem:slug:" + slug
}

// GetProblemWithTestCases returns the problem and its full ordered test-case
// collection, hidden cases included. Cache failures degrade to the database;
// only a missing problem is an error.
func (s *ProblemService) GetProblemWithTestCases(ctx context.Context, slug string) (*model.Problem, error) {
	key := problemCacheKey(slug)
	if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
		var problem model.Problem
		if err := json.Unmarshal([]byte(cached), &problem); err == nil {
			return &problem, nil
		}
		// Unreadable cache entry; fall through and overwrite it.
		s.rdb.Del(ctx, key)
	}

	problem, err := s.problemRepo.FindProblemBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	testCases, err := s.problemRepo.GetTestCasesByProblemID(ctx, problem.ID)
	if err != nil {
		return nil, common.Errorf("failed to load test cases for %q: %w", slug, err)
	}
	problem.TestCases = testCases

	if data, err := json.Marshal(problem); err == nil {
		if err := s.rdb.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("problem cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	return problem, nil
}

// GetProblemDetails is the problem-detail view: hidden test cases are
// withheld, starter code and visible cases are included.
func (s *ProblemService) GetProblemDetails(ctx context.Context, slug string) (*model.Problem, error) {
	problem, err := s.GetProblemWithTestCases(ctx, slug)
	if err != nil {
		return nil, err
	}

	view := *problem
	view.TestCases = nil
	for _, tc := range problem.TestCases {
		if !tc.IsHidden {
			view.TestCases = append(view.TestCases, tc)
		}
	}
	return &view, nil
}

func (s *ProblemService) ListProblems(ctx context.Context, page, pageSize int) ([]model.Problem, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.problemRepo.ListProblems(ctx, pageSize, (page-1)*pageSize)
}
