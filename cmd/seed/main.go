package main

import (
	"context"
	"errors"
	"time"

	"github.com/devdesignersid/codetrack/internal/common"
	"github.com/devdesignersid/codetrack/internal/domain/model"
	"github.com/devdesignersid/codetrack/internal/domain/repository"
	"github.com/devdesignersid/codetrack/internal/platform/config"
	"github.com/devdesignersid/codetrack/internal/platform/database"
	"github.com/devdesignersid/codetrack/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Idempotent bootstrap: creates the schema, the demo user, and a couple of
// starter problems. Safe to re-run; existing rows are left alone.

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              UUID PRIMARY KEY,
    username        TEXT NOT NULL UNIQUE,
    email           TEXT NOT NULL UNIQUE,
    hashed_password TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS problems (
    id                 UUID PRIMARY KEY,
    title              TEXT NOT NULL,
    slug               TEXT NOT NULL UNIQUE,
    description        TEXT NOT NULL,
    difficulty         TEXT NOT NULL,
    starter_code       TEXT,
    time_limit_minutes INT NOT NULL DEFAULT 30,
    tags               TEXT,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS test_cases (
    id              UUID PRIMARY KEY,
    problem_id      UUID NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
    input           TEXT NOT NULL,
    expected_output TEXT NOT NULL,
    is_hidden       BOOLEAN NOT NULL DEFAULT FALSE,
    sort_order      INT NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS submissions (
    id                    UUID PRIMARY KEY,
    user_id               UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    problem_id            UUID NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
    code                  TEXT NOT NULL,
    language              TEXT NOT NULL,
    status                TEXT NOT NULL,
    output                JSONB,
    avg_execution_time_ms DOUBLE PRECISION,
    avg_memory_used_bytes DOUBLE PRECISION,
    is_solution           BOOLEAN NOT NULL DEFAULT FALSE,
    solution_name         TEXT,
    submitted_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_submissions_user_problem
    ON submissions (user_id, problem_id, submitted_at DESC);
CREATE INDEX IF NOT EXISTS idx_test_cases_problem
    ON test_cases (problem_id, sort_order);
`

type seedProblem struct {
	title       string
	description string
	difficulty  model.ProblemDifficulty
	starterCode string
	tags        []string
	testCases   []seedTestCase
}

type seedTestCase struct {
	input    string
	expected string
	hidden   bool
}

var seedProblems = []seedProblem{
	{
		title:       "Two Sum",
		description: "Given an array of integers nums and an integer target, return the indices of the two numbers that add up to target.",
		difficulty:  model.DifficultyEasy,
		starterCode: "var twoSum = function(nums, target) {\n    // your code here\n};",
		tags:        []string{"array", "hash-map"},
		testCases: []seedTestCase{
			{input: `{nums: [2,7,11,15], target: 9}`, expected: `[0,1]`},
			{input: `{nums: [3,2,4], target: 6}`, expected: `[1,2]`},
			{input: `{nums: [3,3], target: 6}`, expected: `[0,1]`, hidden: true},
		},
	},
	{
		title:       "Valid Palindrome",
		description: "Return true if the given string reads the same forwards and backwards after lowercasing and removing non-alphanumeric characters.",
		difficulty:  model.DifficultyEasy,
		starterCode: "var isPalindrome = function(s) {\n    // your code here\n};",
		tags:        []string{"string", "two-pointers"},
		testCases: []seedTestCase{
			{input: `{s: "A man, a plan, a canal: Panama"}`, expected: `true`},
			{input: `{s: "race a car"}`, expected: `false`},
			{input: `{s: ""}`, expected: `true`, hidden: true},
		},
	},
	{
		title:       "Merge Intervals",
		description: "Given a list of intervals, merge all overlapping intervals and return the result sorted by start.",
		difficulty:  model.DifficultyMedium,
		starterCode: "var merge = function(intervals) {\n    // your code here\n};",
		tags:        []string{"array", "sorting"},
		testCases: []seedTestCase{
			{input: `{intervals: [[1,3],[2,6],[8,10],[15,18]]}`, expected: `[[1,6],[8,10],[15,18]]`},
			{input: `{intervals: [[1,4],[4,5]]}`, expected: `[[1,5]]`, hidden: true},
		},
	},
}

func main() {
	config.Load()

	log := logger.New()
	defer log.Sync()

	database.Connect()
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if _, err := database.DB.ExecContext(ctx, schema); err != nil {
		log.Fatal("schema creation failed", zap.Error(err))
	}
	log.Info("schema ready")

	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)

	seedDemoUser(ctx, userRepo, log)
	for _, sp := range seedProblems {
		seedOneProblem(ctx, problemRepo, sp, log)
	}

	log.Info("seed complete")
}

func seedDemoUser(ctx context.Context, userRepo repository.UserRepository, log *zap.Logger) {
	if _, err := userRepo.FindDemoUser(ctx); err == nil {
		log.Info("demo user already present")
		return
	} else if !errors.Is(err, common.ErrNotFound) {
		log.Fatal("demo user lookup failed", zap.Error(err))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("password hash failed", zap.Error(err))
	}
	user := &model.User{
		ID:             uuid.NewString(),
		Username:       model.DemoUsername,
		Email:          "demo@codetrack.local",
		HashedPassword: string(hashed),
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatal("demo user creation failed", zap.Error(err))
	}
	log.Info("demo user created", zap.String("user_id", user.ID))
}

func seedOneProblem(ctx context.Context, problemRepo repository.ProblemRepository, sp seedProblem, log *zap.Logger) {
	problemSlug := slug.Make(sp.title)
	if _, err := problemRepo.FindProblemBySlug(ctx, problemSlug); err == nil {
		log.Info("problem already present", zap.String("slug", problemSlug))
		return
	} else if !errors.Is(err, common.ErrNotFound) {
		log.Fatal("problem lookup failed", zap.String("slug", problemSlug), zap.Error(err))
	}

	starter := sp.starterCode
	problem := &model.Problem{
		ID:               uuid.NewString(),
		Title:            sp.title,
		Slug:             problemSlug,
		Description:      sp.description,
		Difficulty:       sp.difficulty,
		StarterCode:      &starter,
		TimeLimitMinutes: 30,
		Tags:             sp.tags,
	}

	testCases := make([]model.TestCase, 0, len(sp.testCases))
	for i, tc := range sp.testCases {
		testCases = append(testCases, model.TestCase{
			ID:             uuid.NewString(),
			ProblemID:      problem.ID,
			Input:          tc.input,
			ExpectedOutput: tc.expected,
			IsHidden:       tc.hidden,
			SortOrder:      i + 1,
		})
	}

	tx, err := database.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Fatal("begin tx failed", zap.Error(err))
	}
	defer tx.Rollback()

	if err := problemRepo.CreateProblem(ctx, tx, problem); err != nil {
		log.Fatal("problem creation failed", zap.String("slug", problemSlug), zap.Error(err))
	}
	if err := problemRepo.AddTestCasesToProblem(ctx, tx, problem.ID, testCases); err != nil {
		log.Fatal("test case creation failed", zap.String("slug", problemSlug), zap.Error(err))
	}
	if err := tx.Commit(); err != nil {
		log.Fatal("commit failed", zap.String("slug", problemSlug), zap.Error(err))
	}
	log.Info("problem seeded", zap.String("slug", problemSlug), zap.Int("test_cases", len(testCases)))
}
