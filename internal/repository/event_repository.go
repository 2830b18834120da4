package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error)

	// Transaction methods
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Event, error)
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

const eventColumns = `id, name, starts_at, ends_at, ticket_price, table_price,
		ticket_capacity, is_sold_out, created_at, updated_at`

func scanEvent(row rowScanner) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.StartsAt,
		&event.EndsAt,
		&event.TicketPrice,
		&event.TablePrice,
		&event.TicketCapacity,
		&event.IsSoldOut,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	query := `
		INSERT INTO events (id, name, starts_at, ends_at, ticket_price, table_price, ticket_capacity, is_sold_out)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + eventColumns

	return scanEvent(r.pool.QueryRow(ctx, query,
		event.ID, event.Name, event.StartsAt, event.EndsAt,
		event.TicketPrice, event.TablePrice, event.TicketCapacity, event.IsSoldOut,
	))
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

func (r *EventRepositoryImpl) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return scanEvent(tx.QueryRow(ctx, query, id))
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.StartsAt != nil {
		add("starts_at", *params.StartsAt)
	}
	if params.EndsAt != nil {
		add("ends_at", *params.EndsAt)
	}
	if params.TicketPrice != nil {
		add("ticket_price", *params.TicketPrice)
	}
	if params.TablePrice != nil {
		add("table_price", *params.TablePrice)
	}
	if params.TicketCapacity != nil {
		add("ticket_capacity", *params.TicketCapacity)
	}
	if params.IsSoldOut != nil {
		add("is_sold_out", *params.IsSoldOut)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	add("updated_at", time.Now().UTC())

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, eventColumns)

	return scanEvent(r.pool.QueryRow(ctx, query, args...))
}
