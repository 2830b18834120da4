package service

import (
	"context"
	"time"

	"venue-booking/internal/model"
	"venue-booking/internal/repository"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type EventService interface {
	GetByID(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	// GetSummary 前台訂位頁用的活動摘要 (含是否免費、剩餘票數)
	GetSummary(ctx context.Context, eventID uuid.UUID) (*model.EventSummary, error)
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	Update(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
}

type EventServiceImpl struct {
	db           repository.TxBeginner
	repo         repository.EventRepository
	purchaseRepo repository.PurchaseRepository
	now          func() time.Time
}

func NewEventService(db repository.TxBeginner, repo repository.EventRepository, purchaseRepo repository.PurchaseRepository) EventService {
	return &EventServiceImpl{db: db, repo: repo, purchaseRepo: purchaseRepo, now: time.Now}
}

func (s *EventServiceImpl) GetByID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	return s.repo.FindByID(ctx, eventID)
}

func (s *EventServiceImpl) GetSummary(ctx context.Context, eventID uuid.UUID) (*model.EventSummary, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sold, err := s.purchaseRepo.SumActiveQuantity(ctx, tx, event.ID)
	if err != nil {
		return nil, err
	}

	remaining := 0
	if event.TicketCapacity > 0 {
		remaining = event.TicketCapacity - sold
		if remaining < 0 {
			remaining = 0
		}
	}

	return &model.EventSummary{
		ID:               event.ID,
		Name:             event.Name,
		Date:             event.Date().Format("2006-01-02"),
		StartsAt:         event.StartsAt,
		EndsAt:           event.EndsAt,
		TicketPrice:      event.TicketPrice,
		TablePrice:       event.TablePrice,
		IsSoldOut:        event.IsSoldOut || (event.TicketCapacity > 0 && remaining == 0),
		IsFree:           event.TicketPrice == 0,
		RemainingTickets: remaining,
		HasEnded:         event.HasEnded(s.now()),
	}, nil
}

func (s *EventServiceImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.Name == "" || event.StartsAt.IsZero() || event.EndsAt.Before(event.StartsAt) {
		return nil, apperrors.ErrInvalidInput
	}
	if event.TicketPrice < 0 || event.TablePrice < 0 || event.TicketCapacity < 0 {
		return nil, apperrors.ErrInvalidInput
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return s.repo.Create(ctx, event)
}

func (s *EventServiceImpl) Update(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}
	if (params.TicketPrice != nil && *params.TicketPrice < 0) ||
		(params.TablePrice != nil && *params.TablePrice < 0) ||
		(params.TicketCapacity != nil && *params.TicketCapacity < 0) {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Update(ctx, eventID, params)
}
