package service

import (
	"context"
	"errors"
	"time"

	"venue-booking/internal/model"
	"venue-booking/internal/repository"
	apperrors "venue-booking/pkg/app_errors"
)

type PromoService interface {
	// ValidatePromo 驗證優惠碼；查無、停用、過期都不是錯誤，而是 Valid=false
	ValidatePromo(ctx context.Context, code string) (*model.PromoValidation, error)
	Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error)
	Update(ctx context.Context, code string, params model.UpdatePromoParams) (*model.PromoCode, error)
	// Redemptions lists purchases that used the code.
	Redemptions(ctx context.Context, code string) ([]*model.TicketPurchase, error)
}

type PromoServiceImpl struct {
	repo         repository.PromoRepository
	purchaseRepo repository.PurchaseRepository
	now          func() time.Time
}

func NewPromoService(repo repository.PromoRepository, purchaseRepo repository.PurchaseRepository) PromoService {
	return &PromoServiceImpl{repo: repo, purchaseRepo: purchaseRepo, now: time.Now}
}

func (s *PromoServiceImpl) ValidatePromo(ctx context.Context, code string) (*model.PromoValidation, error) {
	code = model.NormalizePromoCode(code)
	if code == "" {
		return &model.PromoValidation{Valid: false, Message: model.PromoMessageInvalid}, nil
	}

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrPromoNotFound) {
			return &model.PromoValidation{Valid: false, Message: model.PromoMessageInvalid}, nil
		}
		return nil, err
	}

	switch {
	case !promo.IsActive:
		return &model.PromoValidation{Valid: false, Message: model.PromoMessageInactive}, nil
	case promo.IsExpired(s.now()):
		return &model.PromoValidation{Valid: false, Message: model.PromoMessageExpired}, nil
	}

	return &model.PromoValidation{
		Valid:           true,
		Message:         model.PromoMessageValid,
		DiscountPercent: promo.DiscountPercent,
	}, nil
}

func (s *PromoServiceImpl) Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error) {
	promo.Code = model.NormalizePromoCode(promo.Code)
	if promo.Code == "" || promo.DiscountPercent < 0 || promo.DiscountPercent > 100 {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Create(ctx, promo)
}

func (s *PromoServiceImpl) Update(ctx context.Context, code string, params model.UpdatePromoParams) (*model.PromoCode, error) {
	if params.DiscountPercent != nil && (*params.DiscountPercent < 0 || *params.DiscountPercent > 100) {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Update(ctx, code, params)
}

func (s *PromoServiceImpl) Redemptions(ctx context.Context, code string) ([]*model.TicketPurchase, error) {
	if _, err := s.repo.FindByCode(ctx, code); err != nil {
		return nil, err
	}
	return s.purchaseRepo.ListByCoupon(ctx, code)
}
