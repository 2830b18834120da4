package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venue-booking/internal/model"
	"venue-booking/internal/payment"
	"venue-booking/internal/pricing"
	"venue-booking/internal/queue"
	"venue-booking/internal/repository"
	apperrors "venue-booking/pkg/app_errors"
	"venue-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CheckoutService interface {
	// Quote 試算價格，不寫入任何資料
	Quote(ctx context.Context, req model.QuoteRequest) (*model.PriceQuote, error)
	// Checkout 免費直接確認；付費則建立 payment intent 並回傳 client secret
	Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error)
	// Finalize 前端付款完成後回呼，金額以供應商為準
	Finalize(ctx context.Context, intentID string) (*model.FinalizeResult, error)
	// HandleWebhook verifies and applies a provider callback. A nil result
	// means the event type is not one we act on.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*model.FinalizeResult, error)
	// ReconcileIntent is the single confirmation path shared by webhook,
	// finalize and the retry job.
	ReconcileIntent(ctx context.Context, intentID string, source model.ConfirmationSource) (*model.FinalizeResult, error)
}

// CheckoutDeps 組裝 orchestrator 需要的所有依賴
type CheckoutDeps struct {
	DB            repository.TxBeginner
	Events        repository.EventRepository
	Tables        repository.TableRepository
	Bookings      repository.BookingRepository
	Purchases     repository.PurchaseRepository
	Issues        repository.ReconciliationRepository
	Promos        PromoService
	Availability  AvailabilityService
	Payments      payment.Bridge
	Guard         IdempotencyGuard
	Notifications queue.NotificationQueue // optional
	MinimumAge    int
	Now           func() time.Time
}

type CheckoutServiceImpl struct {
	CheckoutDeps
}

func NewCheckoutService(deps CheckoutDeps) CheckoutService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MinimumAge <= 0 {
		deps.MinimumAge = 21
	}
	return &CheckoutServiceImpl{CheckoutDeps: deps}
}

// selection is a validated, priced request.
type selection struct {
	event *model.Event
	table *model.Table
	quote model.PriceQuote
}

func (s *CheckoutServiceImpl) prepare(
	ctx context.Context,
	req model.QuoteRequest,
) (*selection, error) {
	if !req.TicketType.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	if req.TicketType.IsTable() && req.TableID == "" {
		return nil, apperrors.ErrInvalidInput
	}

	// 1. event
	event, err := s.Events.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event.HasEnded(s.Now()) {
		return nil, apperrors.ErrEventEnded
	}
	if event.IsSoldOut {
		return nil, apperrors.ErrEventSoldOut
	}

	// 2. table
	var table *model.Table
	if req.TicketType.IsTable() {
		table, err = s.Tables.FindByID(ctx, req.TableID)
		if err != nil {
			return nil, err
		}
		if !table.IsActive {
			return nil, apperrors.ErrTableNotFound
		}
		booked, err := s.Bookings.IsTableConfirmed(ctx, event.ID, table.ID)
		if err != nil {
			return nil, err
		}
		if booked {
			return nil, apperrors.ErrTableUnavailable
		}
	}

	// 3. promo
	code := model.NormalizePromoCode(req.PromoCode)
	var discount float64
	if code != "" {
		v, err := s.Promos.ValidatePromo(ctx, code)
		if err != nil {
			return nil, err
		}
		if !v.Valid {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidPromo, v.Message)
		}
		discount = v.DiscountPercent
	}

	return &selection{
		event: event,
		table: table,
		quote: pricing.Quote(event, table, req.TicketType, req.Quantity, discount, code),
	}, nil
}

func (s *CheckoutServiceImpl) Quote(ctx context.Context, req model.QuoteRequest) (*model.PriceQuote, error) {
	sel, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return &sel.quote, nil
}

func (s *CheckoutServiceImpl) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error) {
	// 1. age gate, before anything else is looked at
	dob, err := pricing.ParseDOB(req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	if err := pricing.CheckAge(dob, s.Now(), s.MinimumAge); err != nil {
		return nil, err
	}
	if req.CustomerName == "" || req.CustomerEmail == "" {
		return nil, apperrors.ErrInvalidInput
	}

	// 2. validate selection and price it
	sel, err := s.prepare(ctx, model.QuoteRequest{
		EventID:    req.EventID,
		TicketType: req.TicketType,
		TableID:    req.TableID,
		Quantity:   req.Quantity,
		PromoCode:  req.PromoCode,
	})
	if err != nil {
		return nil, err
	}

	md := model.BookingMetadata{
		EventID:       sel.event.ID,
		TicketType:    req.TicketType,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CustomerDOB:   dob,
		Quantity:      sel.quote.Quantity,
		CouponCode:    sel.quote.PromoCode,
		BookingRef:    NewBookingRef(),
	}
	if sel.table != nil {
		md.TableID = sel.table.ID
		md.TableLabel = sel.table.Label()
		md.PartySize = sel.table.Capacity
	}

	if sel.quote.IsFree {
		return s.checkoutFree(ctx, sel, md)
	}
	return s.checkoutPaid(ctx, sel, md, req.PaymentIntentID)
}

// checkoutFree 免費路徑：單一交易寫入訂位 (桌位) 與 free 購買紀錄
func (s *CheckoutServiceImpl) checkoutFree(ctx context.Context, sel *selection, md model.BookingMetadata) (*model.CheckoutResult, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	event, err := s.lockOpenEvent(ctx, tx, sel.event.ID)
	if err != nil {
		return nil, err
	}

	result := &model.CheckoutResult{
		Outcome:    model.OutcomeConfirmed,
		BookingRef: md.BookingRef,
		Quote:      sel.quote,
	}

	if md.TicketType.IsTable() {
		booking, err := s.Bookings.Create(ctx, tx, &model.EventBooking{
			EventID:       event.ID,
			TableID:       md.TableID,
			CustomerName:  md.CustomerName,
			CustomerEmail: md.CustomerEmail,
			GuestPhone:    md.CustomerPhone,
			GuestDOB:      md.CustomerDOB,
			Status:        model.BookingStatusConfirmed,
			BookingRef:    md.BookingRef,
		})
		if err != nil {
			return nil, err
		}
		result.Booking = booking
	} else if err := s.checkCapacity(ctx, tx, event, md.Quantity); err != nil {
		return nil, err
	}

	purchase := &model.TicketPurchase{
		EventID:       event.ID,
		CustomerName:  md.CustomerName,
		CustomerEmail: md.CustomerEmail,
		CustomerPhone: md.CustomerPhone,
		CustomerDOB:   md.CustomerDOB,
		Quantity:      md.Quantity,
		TotalPrice:    0,
		Status:        model.PurchaseStatusFree,
		CouponCode:    nullableString(md.CouponCode),
		TicketType:    md.TicketType,
		BookingRef:    md.BookingRef,
	}
	if md.TicketType.IsTable() {
		purchase.TableID = nullableString(md.TableID)
	}
	created, err := s.Purchases.Create(ctx, tx, purchase)
	if err != nil {
		return nil, err
	}
	result.Purchase = created

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if md.TicketType.IsTable() {
		s.Availability.Invalidate(ctx, event.ID)
	}
	s.publish(ctx, bookingDetails(event, created, md.TableLabel))

	logger.WithComponent("service").Info("free booking confirmed",
		zap.String("booking_ref", md.BookingRef),
		zap.String("event_id", event.ID.String()),
		zap.String("ticket_type", string(md.TicketType)))
	return result, nil
}

// checkoutPaid 付費路徑：只建立 payment intent，確認交給 webhook / finalize
func (s *CheckoutServiceImpl) checkoutPaid(ctx context.Context, sel *selection, md model.BookingMetadata, existingIntentID string) (*model.CheckoutResult, error) {
	if !md.TicketType.IsTable() {
		if err := s.precheckCapacity(ctx, sel.event.ID, md.Quantity); err != nil {
			return nil, err
		}
	}

	handle, err := s.Payments.CreateOrUpdateIntent(ctx, existingIntentID, sel.quote.FinalPrice, md)
	if err != nil {
		return nil, err
	}

	return &model.CheckoutResult{
		Outcome:         model.OutcomePendingPayment,
		BookingRef:      md.BookingRef,
		Quote:           sel.quote,
		ClientSecret:    handle.ClientSecret,
		PaymentIntentID: handle.ID,
	}, nil
}

// lockOpenEvent 鎖定活動列並重新檢查是否仍可訂
func (s *CheckoutServiceImpl) lockOpenEvent(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (*model.Event, error) {
	event, err := s.Events.FindByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsSoldOut {
		return nil, apperrors.ErrEventSoldOut
	}
	if event.HasEnded(s.Now()) {
		return nil, apperrors.ErrEventEnded
	}
	return event, nil
}

// checkCapacity must run after the event row is locked.
func (s *CheckoutServiceImpl) checkCapacity(ctx context.Context, tx pgx.Tx, event *model.Event, quantity int) error {
	if event.TicketCapacity <= 0 {
		return nil
	}
	sold, err := s.Purchases.SumActiveQuantity(ctx, tx, event.ID)
	if err != nil {
		return err
	}
	if sold >= event.TicketCapacity {
		return apperrors.ErrEventSoldOut
	}
	if sold+quantity > event.TicketCapacity {
		return apperrors.ErrInsufficientCapacity
	}
	return nil
}

func (s *CheckoutServiceImpl) precheckCapacity(ctx context.Context, eventID uuid.UUID, quantity int) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	event, err := s.lockOpenEvent(ctx, tx, eventID)
	if err != nil {
		return err
	}
	return s.checkCapacity(ctx, tx, event, quantity)
}

func (s *CheckoutServiceImpl) Finalize(ctx context.Context, intentID string) (*model.FinalizeResult, error) {
	return s.ReconcileIntent(ctx, intentID, model.SourceFinalize)
}

func (s *CheckoutServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) (*model.FinalizeResult, error) {
	event, err := s.Payments.VerifyWebhook(payload, signature)
	if err != nil {
		return nil, err
	}
	if event.Type != payment.EventPaymentSucceeded || event.Intent == nil {
		logger.WithComponent("service").Debug("ignoring webhook event",
			zap.String("event_id", event.ID), zap.String("type", event.Type))
		return nil, nil
	}
	return s.ReconcileIntent(ctx, event.Intent.ID, model.SourceWebhook)
}

func (s *CheckoutServiceImpl) ReconcileIntent(ctx context.Context, intentID string, source model.ConfirmationSource) (*model.FinalizeResult, error) {
	log := logger.WithComponent("service").With(
		zap.String("payment_intent_id", intentID),
		zap.String("source", string(source)))

	// 1. 以供應商為準，忽略 client 傳來的金額
	intent, err := s.Payments.RetrieveIntent(ctx, intentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidIntentMetadata) && intent != nil && intent.Succeeded {
			return s.reconciliationRequired(ctx, log, intentID, "", source, model.IssueReasonBadMetadata, err), nil
		}
		if errors.Is(err, apperrors.ErrInvalidIntentMetadata) {
			return nil, apperrors.ErrPaymentNotCompleted
		}
		return nil, err
	}
	if !intent.Succeeded {
		return nil, apperrors.ErrPaymentNotCompleted
	}

	// 2. idempotent write
	md := intent.Metadata
	res, err := s.Guard.EnsureSingleRecord(ctx, intentID, intent.Amount, md)
	if err != nil {
		reason := model.IssueReasonWriteFailed
		switch {
		case errors.Is(err, apperrors.ErrTableUnavailable):
			reason = model.IssueReasonTableConflict
		case errors.Is(err, apperrors.ErrEventNotFound):
			reason = model.IssueReasonEventMissing
		}
		return s.reconciliationRequired(ctx, log, intentID, md.BookingRef, source, reason, err), nil
	}

	s.resolveIssue(ctx, log, intentID)

	if res.AlreadyRecorded {
		out := &model.FinalizeResult{Outcome: model.OutcomeAlreadyRecorded, Purchase: res.Purchase}
		if res.Purchase != nil {
			out.BookingRef = res.Purchase.BookingRef
		}
		log.Info("payment already recorded")
		return out, nil
	}

	if md.TicketType.IsTable() {
		s.Availability.Invalidate(ctx, md.EventID)
	}
	s.publish(ctx, bookingDetails(res.Event, res.Purchase, md.TableLabel))

	log.Info("paid booking confirmed", zap.String("booking_ref", res.Purchase.BookingRef))
	return &model.FinalizeResult{
		Outcome:    model.OutcomeConfirmed,
		BookingRef: res.Purchase.BookingRef,
		Purchase:   res.Purchase,
	}, nil
}

// reconciliationRequired 錢已收到但寫入失敗：記錄並回報需人工處理
func (s *CheckoutServiceImpl) reconciliationRequired(
	ctx context.Context,
	log *zap.Logger,
	intentID, bookingRef string,
	source model.ConfirmationSource,
	reason model.IssueReason,
	cause error,
) *model.FinalizeResult {
	log.Error("payment received but booking not recorded",
		zap.String("reason", string(reason)),
		zap.String("booking_ref", bookingRef),
		zap.Error(cause))

	if s.Issues != nil {
		// 用不受請求取消影響的 context，確保紀錄寫得進去
		issueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_, err := s.Issues.Upsert(issueCtx, &model.ReconciliationIssue{
			PaymentIntentID: intentID,
			Source:          source,
			Reason:          reason,
			Detail:          cause.Error(),
		})
		if err != nil {
			log.Error("record reconciliation issue failed", zap.Error(err))
		}
	}

	return &model.FinalizeResult{
		Outcome:    model.OutcomeReconciliationRequired,
		BookingRef: bookingRef,
		Message:    model.MessageReconciliationRequired,
		Retryable:  !reason.Permanent(),
	}
}

func (s *CheckoutServiceImpl) resolveIssue(ctx context.Context, log *zap.Logger, intentID string) {
	if s.Issues == nil {
		return
	}
	err := s.Issues.MarkResolved(ctx, intentID)
	if err != nil && !errors.Is(err, apperrors.ErrIssueNotFound) {
		log.Warn("mark reconciliation issue resolved failed", zap.Error(err))
	}
}

// publish never fails the booking; a lost notification is only logged.
func (s *CheckoutServiceImpl) publish(ctx context.Context, details *model.BookingDetails) {
	if s.Notifications == nil || details == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.Notifications.Publish(pubCtx, details); err != nil {
		logger.WithComponent("mq").Warn("publish booking notification failed",
			zap.String("booking_ref", details.BookingRef), zap.Error(err))
	}
}

func bookingDetails(event *model.Event, purchase *model.TicketPurchase, tableLabel string) *model.BookingDetails {
	if event == nil || purchase == nil {
		return nil
	}
	return &model.BookingDetails{
		EventName:      event.Name,
		Date:           event.Date().Format(pricing.DateLayout),
		TicketType:     string(purchase.TicketType),
		Quantity:       purchase.Quantity,
		TotalAmount:    purchase.TotalPrice,
		Name:           purchase.CustomerName,
		Email:          purchase.CustomerEmail,
		TableSelection: tableLabel,
		BookingRef:     purchase.BookingRef,
	}
}
