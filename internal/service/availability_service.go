package service

import (
	"context"

	"venue-booking/internal/cache"
	"venue-booking/internal/model"
	"venue-booking/internal/repository"
	"venue-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

type AvailabilityService interface {
	// ForEvent 回傳該活動所有桌位及是否已被訂走；任何錯誤都回傳空清單 (fail closed)
	ForEvent(ctx context.Context, eventID uuid.UUID) []*model.TableAvailability
	// Invalidate drops the cached view after a booking is confirmed or cancelled.
	Invalidate(ctx context.Context, eventID uuid.UUID)
}

type AvailabilityServiceImpl struct {
	tableRepo   repository.TableRepository
	bookingRepo repository.BookingRepository
	cache       cache.AvailabilityCache
}

// NewAvailabilityService builds the resolver. availabilityCache may be nil.
func NewAvailabilityService(
	tableRepo repository.TableRepository,
	bookingRepo repository.BookingRepository,
	availabilityCache cache.AvailabilityCache,
) AvailabilityService {
	return &AvailabilityServiceImpl{
		tableRepo:   tableRepo,
		bookingRepo: bookingRepo,
		cache:       availabilityCache,
	}
}

func (s *AvailabilityServiceImpl) ForEvent(ctx context.Context, eventID uuid.UUID) []*model.TableAvailability {
	log := logger.WithComponent("service").With(zap.String("event_id", eventID.String()))

	var version int64
	cacheUsable := s.cache != nil
	if cacheUsable {
		snap, err := s.cache.Load(ctx, eventID)
		switch {
		case err != nil:
			log.Warn("availability cache load failed, falling back to database", zap.Error(err))
			cacheUsable = false
		case snap.Hit():
			return snap.Tables
		default:
			version = snap.Version
		}
	}

	tables, err := s.resolve(ctx, eventID)
	if err != nil {
		log.Error("resolve availability failed", zap.Error(err))
		return []*model.TableAvailability{}
	}

	if cacheUsable {
		if _, err := s.cache.Store(ctx, eventID, version, tables); err != nil {
			log.Warn("availability cache store failed", zap.Error(err))
		}
	}
	return tables
}

func (s *AvailabilityServiceImpl) resolve(ctx context.Context, eventID uuid.UUID) ([]*model.TableAvailability, error) {
	tables, err := s.tableRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	confirmed, err := s.bookingRepo.ConfirmedTableIDs(ctx, eventID)
	if err != nil {
		return nil, err
	}

	booked := make(map[string]struct{}, len(confirmed))
	for _, id := range confirmed {
		booked[id] = struct{}{}
	}

	out := make([]*model.TableAvailability, 0, len(tables))
	for _, t := range tables {
		var slot model.TableAvailability
		if err := copier.Copy(&slot, t); err != nil {
			return nil, err
		}
		_, slot.IsBooked = booked[t.ID]
		out = append(out, &slot)
	}
	return out, nil
}

func (s *AvailabilityServiceImpl) Invalidate(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.WithComponent("cache").Warn("availability invalidate failed",
			zap.String("event_id", eventID.String()), zap.Error(err))
	}
}
