package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devdesignersid/codetrack/internal/common"
	"github.com/devdesignersid/codetrack/internal/domain/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	// ListByUserAndProblem returns the user's submissions for one problem,
	// newest first. Code and serialized output are included.
	ListByUserAndProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error)
	SetSolution(ctx context.Context, submissionID, userID string, isSolution bool, solutionName *string) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, code, language, status, output, avg_execution_time_ms, avg_memory_used_bytes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.Code, sub.Language, sub.Status, []byte(sub.Output), sub.AvgExecutionTimeMs, sub.AvgMemoryUsedBytes)
	} else {
		_, err = r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.Code, sub.Language, sub.Status, []byte(sub.Output), sub.AvgExecutionTimeMs, sub.AvgMemoryUsedBytes)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT id, user_id, problem_id, code, language, status, output,
	                 avg_execution_time_ms, avg_memory_used_bytes, is_solution, solution_name, submitted_at
	          FROM submissions WHERE id = $1`

	sub := &model.Submission{}
	var output []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Code, &sub.Language, &sub.Status, &output,
		&sub.AvgExecutionTimeMs, &sub.AvgMemoryUsedBytes, &sub.IsSolution, &sub.SolutionName, &sub.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	sub.Output = output
	return sub, nil
}

func (r *pgSubmissionRepository) ListByUserAndProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error) {
	query := `SELECT id, user_id, problem_id, code, language, status, output,
	                 avg_execution_time_ms, avg_memory_used_bytes, is_solution, solution_name, submitted_at
	          FROM submissions WHERE user_id = $1 AND problem_id = $2
	          ORDER BY submitted_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUserAndProblem query: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var sub model.Submission
		var output []byte
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Code, &sub.Language, &sub.Status, &output,
			&sub.AvgExecutionTimeMs, &sub.AvgMemoryUsedBytes, &sub.IsSolution, &sub.SolutionName, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByUserAndProblem scan: %w", err)
		}
		sub.Output = output
		subs = append(subs, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUserAndProblem rows.Err: %w", err)
	}
	return subs, nil
}

func (r *pgSubmissionRepository) SetSolution(ctx context.Context, submissionID, userID string, isSolution bool, solutionName *string) error {
	query := `UPDATE submissions SET is_solution = $1, solution_name = $2
	          WHERE id = $3 AND user_id = $4`

	res, err := r.db.ExecContext(ctx, query, isSolution, solutionName, submissionID, userID)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.SetSolution: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.SetSolution rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
