package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReconciliationRepository 付款成功但本地寫入失敗的紀錄
type ReconciliationRepository interface {
	Upsert(ctx context.Context, issue *model.ReconciliationIssue) (*model.ReconciliationIssue, error)
	FindByIntentID(ctx context.Context, intentID string) (*model.ReconciliationIssue, error)
	ListUnresolved(ctx context.Context, maxAttempts int) ([]*model.ReconciliationIssue, error)
	MarkResolved(ctx context.Context, intentID string) error
}

type ReconciliationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReconciliationRepository(pool *pgxpool.Pool) ReconciliationRepository {
	return &ReconciliationRepositoryImpl{
		pool: pool,
	}
}

const issueColumns = `payment_intent_id, source, reason, detail, attempts, resolved, created_at, updated_at`

func scanIssue(row rowScanner) (*model.ReconciliationIssue, error) {
	var issue model.ReconciliationIssue
	err := row.Scan(
		&issue.PaymentIntentID,
		&issue.Source,
		&issue.Reason,
		&issue.Detail,
		&issue.Attempts,
		&issue.Resolved,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrIssueNotFound
		}
		return nil, err
	}
	return &issue, nil
}

// Upsert records a failed confirmation. A repeat failure for the same intent
// bumps attempts and reopens the issue.
func (r *ReconciliationRepositoryImpl) Upsert(ctx context.Context, issue *model.ReconciliationIssue) (*model.ReconciliationIssue, error) {
	query := `
		INSERT INTO reconciliation_issues (payment_intent_id, source, reason, detail)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (payment_intent_id) DO UPDATE
		SET source = EXCLUDED.source,
		    reason = EXCLUDED.reason,
		    detail = EXCLUDED.detail,
		    attempts = reconciliation_issues.attempts + 1,
		    resolved = FALSE,
		    updated_at = $5
		RETURNING ` + issueColumns

	saved, err := scanIssue(r.pool.QueryRow(ctx, query,
		issue.PaymentIntentID, issue.Source, issue.Reason, issue.Detail, time.Now().UTC(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert reconciliation issue: %w", err)
	}
	return saved, nil
}

func (r *ReconciliationRepositoryImpl) FindByIntentID(ctx context.Context, intentID string) (*model.ReconciliationIssue, error) {
	query := `SELECT ` + issueColumns + ` FROM reconciliation_issues WHERE payment_intent_id = $1`
	return scanIssue(r.pool.QueryRow(ctx, query, intentID))
}

// ListUnresolved returns open issues below the attempt limit; maxAttempts <= 0
// means no limit.
func (r *ReconciliationRepositoryImpl) ListUnresolved(ctx context.Context, maxAttempts int) ([]*model.ReconciliationIssue, error) {
	query := `
		SELECT ` + issueColumns + `
		FROM reconciliation_issues
		WHERE NOT resolved
		  AND ($1 <= 0 OR attempts < $1)
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, maxAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := make([]*model.ReconciliationIssue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return issues, nil
}

func (r *ReconciliationRepositoryImpl) MarkResolved(ctx context.Context, intentID string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE reconciliation_issues
		SET resolved = TRUE, updated_at = $1
		WHERE payment_intent_id = $2
	`, time.Now().UTC(), intentID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrIssueNotFound
	}

	return nil
}
