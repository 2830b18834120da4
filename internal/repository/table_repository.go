package repository

import (
	"context"
	"errors"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TableRepository interface {
	ListActive(ctx context.Context) ([]*model.Table, error)
	FindByID(ctx context.Context, id string) (*model.Table, error)
}

type TableRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTableRepository(pool *pgxpool.Pool) TableRepository {
	return &TableRepositoryImpl{
		pool: pool,
	}
}

const tableColumns = `id, name, capacity, category, price, position, is_active, created_at, updated_at`

func scanTable(row rowScanner) (*model.Table, error) {
	var table model.Table
	err := row.Scan(
		&table.ID,
		&table.Name,
		&table.Capacity,
		&table.Category,
		&table.Price,
		&table.Position,
		&table.IsActive,
		&table.CreatedAt,
		&table.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

func (r *TableRepositoryImpl) ListActive(ctx context.Context) ([]*model.Table, error) {
	query := `
		SELECT ` + tableColumns + `
		FROM tables
		WHERE is_active
		ORDER BY position, id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]*model.Table, 0)
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tables, nil
}

func (r *TableRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables WHERE id = $1`
	return scanTable(r.pool.QueryRow(ctx, query, id))
}
