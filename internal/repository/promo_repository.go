package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PromoRepository interface {
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error)
	Update(ctx context.Context, code string, params model.UpdatePromoParams) (*model.PromoCode, error)
}

type PromoRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPromoRepository(pool *pgxpool.Pool) PromoRepository {
	return &PromoRepositoryImpl{
		pool: pool,
	}
}

const promoColumns = `code, discount_percent, is_active, expires_at, created_at, updated_at`

func scanPromo(row rowScanner) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := row.Scan(
		&promo.Code,
		&promo.DiscountPercent,
		&promo.IsActive,
		&promo.ExpiresAt,
		&promo.CreatedAt,
		&promo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPromoNotFound
		}
		return nil, err
	}
	return &promo, nil
}

// FindByCode looks the code up case-insensitively; stored codes are upper-case.
func (r *PromoRepositoryImpl) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1`
	return scanPromo(r.pool.QueryRow(ctx, query, model.NormalizePromoCode(code)))
}

func (r *PromoRepositoryImpl) Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error) {
	query := `
		INSERT INTO promo_codes (code, discount_percent, is_active, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + promoColumns

	created, err := scanPromo(r.pool.QueryRow(ctx, query,
		model.NormalizePromoCode(promo.Code), promo.DiscountPercent, promo.IsActive, promo.ExpiresAt,
	))
	if err != nil {
		if isUniqueViolation(err, constraintPromoCode) {
			return nil, apperrors.ErrPromoExists
		}
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}
	return created, nil
}

func (r *PromoRepositoryImpl) Update(ctx context.Context, code string, params model.UpdatePromoParams) (*model.PromoCode, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.DiscountPercent != nil {
		add("discount_percent", *params.DiscountPercent)
	}
	if params.IsActive != nil {
		add("is_active", *params.IsActive)
	}
	if params.ClearExpiry {
		add("expires_at", nil)
	} else if params.ExpiresAt != nil {
		add("expires_at", *params.ExpiresAt)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	add("updated_at", time.Now().UTC())
	args = append(args, model.NormalizePromoCode(code))

	query := fmt.Sprintf(`
		UPDATE promo_codes
		SET %s
		WHERE code = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, promoColumns)

	return scanPromo(r.pool.QueryRow(ctx, query, args...))
}
