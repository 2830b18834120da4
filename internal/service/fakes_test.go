package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"venue-booking/internal/cache"
	"venue-booking/internal/model"
	"venue-booking/internal/payment"
	"venue-booking/internal/queue"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// memStore is an in-memory stand-in for postgres. Transactions are fully
// serialized, which is what the event row lock gives the real schema, and
// the two unique indexes are enforced on write.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	events       map[uuid.UUID]*model.Event
	tables       map[string]*model.Table
	bookings     map[uuid.UUID]*model.EventBooking
	purchases    []*model.TicketPurchase
	reservations []*model.Reservation
	issues       map[string]*model.ReconciliationIssue
	promos       map[string]*model.PromoCode

	beginErr       error
	bookingReadErr error
	reservationErr error
}

func newMemStore() *memStore {
	return &memStore{
		events:   map[uuid.UUID]*model.Event{},
		tables:   map[string]*model.Table{},
		bookings: map[uuid.UUID]*model.EventBooking{},
		issues:   map[string]*model.ReconciliationIssue{},
		promos:   map[string]*model.PromoCode{},
	}
}

type memTx struct {
	pgx.Tx
	store *memStore
	done  bool
	undo  []func()
}

func (s *memStore) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.txMu.Lock()
	return &memTx{store: s}, nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.store.mu.Unlock()
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *memTx) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

func asMemTx(tx pgx.Tx) *memTx {
	return tx.(*memTx)
}

// ---- fixtures ----

func (s *memStore) addEvent(e *model.Event) *model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	s.events[e.ID] = &cp
	return e
}

func (s *memStore) addTable(t *model.Table) *model.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tables[t.ID] = &cp
	return t
}

func (s *memStore) addPromo(p *model.PromoCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.promos[p.Code] = &cp
}

func (s *memStore) confirmedBookings(eventID uuid.UUID, tableID string) []*model.EventBooking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.EventBooking
	for _, b := range s.bookings {
		if b.EventID == eventID && b.TableID == tableID && b.Status == model.BookingStatusConfirmed {
			out = append(out, b)
		}
	}
	return out
}

func (s *memStore) purchasesFor(intentID string) []*model.TicketPurchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.TicketPurchase
	for _, p := range s.purchases {
		if p.PaymentIntentID != nil && *p.PaymentIntentID == intentID {
			out = append(out, p)
		}
	}
	return out
}

func (s *memStore) allPurchases() []*model.TicketPurchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.TicketPurchase(nil), s.purchases...)
}

func (s *memStore) reservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

func (s *memStore) issue(intentID string) *model.ReconciliationIssue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.issues[intentID]; ok {
		cp := *i
		return &cp
	}
	return nil
}

// ---- events ----

type memEvents struct{ s *memStore }

func (r memEvents) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	return r.s.addEvent(event), nil
}

func (r memEvents) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r memEvents) Update(ctx context.Context, id uuid.UUID, p model.UpdateEventParams) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	if p.IsSoldOut != nil {
		e.IsSoldOut = *p.IsSoldOut
	}
	if p.TicketCapacity != nil {
		e.TicketCapacity = *p.TicketCapacity
	}
	if p.TicketPrice != nil {
		e.TicketPrice = *p.TicketPrice
	}
	if p.TablePrice != nil {
		e.TablePrice = *p.TablePrice
	}
	if p.Name != nil {
		e.Name = *p.Name
	}
	cp := *e
	return &cp, nil
}

func (r memEvents) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Event, error) {
	return r.FindByID(ctx, id)
}

// ---- tables ----

type memTables struct{ s *memStore }

func (r memTables) ListActive(ctx context.Context) ([]*model.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Table
	for _, t := range r.s.tables {
		if t.IsActive {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r memTables) FindByID(ctx context.Context, id string) (*model.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tables[id]
	if !ok {
		return nil, apperrors.ErrTableNotFound
	}
	cp := *t
	return &cp, nil
}

// ---- bookings ----

type memBookings struct{ s *memStore }

func (r memBookings) FindByID(ctx context.Context, id uuid.UUID) (*model.EventBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r memBookings) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.EventBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.EventBooking
	for _, b := range r.s.bookings {
		if b.EventID == eventID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memBookings) ConfirmedTableIDs(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.bookingReadErr != nil {
		return nil, r.s.bookingReadErr
	}
	var out []string
	for _, b := range r.s.bookings {
		if b.EventID == eventID && b.Status == model.BookingStatusConfirmed {
			out = append(out, b.TableID)
		}
	}
	return out, nil
}

func (r memBookings) IsTableConfirmed(ctx context.Context, eventID uuid.UUID, tableID string) (bool, error) {
	ids, err := r.ConfirmedTableIDs(ctx, eventID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == tableID {
			return true, nil
		}
	}
	return false, nil
}

func (r memBookings) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return apperrors.ErrBookingNotFound
	}
	delete(r.s.bookings, id)
	return nil
}

func (r memBookings) Create(ctx context.Context, tx pgx.Tx, booking *model.EventBooking) (*model.EventBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if booking.Status == model.BookingStatusConfirmed {
		for _, b := range r.s.bookings {
			if b.EventID == booking.EventID && b.TableID == booking.TableID && b.Status == model.BookingStatusConfirmed {
				return nil, apperrors.ErrTableUnavailable
			}
		}
	}
	cp := *booking
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	r.s.bookings[cp.ID] = &cp
	asMemTx(tx).onRollback(func() { delete(r.s.bookings, cp.ID) })
	out := cp
	return &out, nil
}

func (r memBookings) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.EventBooking, error) {
	return r.FindByID(ctx, id)
}

func (r memBookings) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.BookingStatus) (*model.EventBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	prev := b.Status
	b.Status = status
	asMemTx(tx).onRollback(func() { b.Status = prev })
	cp := *b
	return &cp, nil
}

// ---- purchases ----

type memPurchases struct{ s *memStore }

func (r memPurchases) ListByCoupon(ctx context.Context, code string) ([]*model.TicketPurchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	code = model.NormalizePromoCode(code)
	var out []*model.TicketPurchase
	for _, p := range r.s.purchases {
		if p.CouponCode != nil && *p.CouponCode == code {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPurchases) Create(ctx context.Context, tx pgx.Tx, purchase *model.TicketPurchase) (*model.TicketPurchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if purchase.PaymentIntentID != nil {
		for _, p := range r.s.purchases {
			if p.PaymentIntentID != nil && *p.PaymentIntentID == *purchase.PaymentIntentID {
				return nil, apperrors.ErrDuplicatePaymentIntent
			}
		}
	}
	cp := *purchase
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	r.s.purchases = append(r.s.purchases, &cp)
	n := len(r.s.purchases)
	asMemTx(tx).onRollback(func() { r.s.purchases = r.s.purchases[:n-1] })
	out := cp
	return &out, nil
}

func (r memPurchases) FindByPaymentIntentID(ctx context.Context, tx pgx.Tx, intentID string) (*model.TicketPurchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.purchases {
		if p.PaymentIntentID != nil && *p.PaymentIntentID == intentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrPurchaseNotFound
}

func (r memPurchases) SumActiveQuantity(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0
	for _, p := range r.s.purchases {
		if p.EventID == eventID && p.TicketType == model.TicketTypeStandard && p.Status != model.PurchaseStatusCancelled {
			total += p.Quantity
		}
	}
	return total, nil
}

// ---- reservations ----

type memReservations struct{ s *memStore }

func (r memReservations) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Reservation
	for _, res := range r.s.reservations {
		if res.EventID != nil && *res.EventID == eventID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r memReservations) Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.reservationErr != nil {
		return nil, r.s.reservationErr
	}
	cp := *reservation
	cp.ID = uuid.New()
	r.s.reservations = append(r.s.reservations, &cp)
	n := len(r.s.reservations)
	asMemTx(tx).onRollback(func() { r.s.reservations = r.s.reservations[:n-1] })
	out := cp
	return &out, nil
}

// ---- promos ----

type memPromos struct{ s *memStore }

func (r memPromos) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.promos[model.NormalizePromoCode(code)]
	if !ok {
		return nil, apperrors.ErrPromoNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPromos) Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.promos[promo.Code]; ok {
		return nil, apperrors.ErrPromoExists
	}
	cp := *promo
	r.s.promos[promo.Code] = &cp
	return promo, nil
}

func (r memPromos) Update(ctx context.Context, code string, p model.UpdatePromoParams) (*model.PromoCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	promo, ok := r.s.promos[model.NormalizePromoCode(code)]
	if !ok {
		return nil, apperrors.ErrPromoNotFound
	}
	if p.DiscountPercent != nil {
		promo.DiscountPercent = *p.DiscountPercent
	}
	if p.IsActive != nil {
		promo.IsActive = *p.IsActive
	}
	if p.ExpiresAt != nil {
		promo.ExpiresAt = p.ExpiresAt
	}
	if p.ClearExpiry {
		promo.ExpiresAt = nil
	}
	cp := *promo
	return &cp, nil
}

// ---- reconciliation issues ----

type memIssues struct{ s *memStore }

func (r memIssues) Upsert(ctx context.Context, issue *model.ReconciliationIssue) (*model.ReconciliationIssue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.issues[issue.PaymentIntentID]
	if !ok {
		cp := *issue
		cp.Attempts = 1
		r.s.issues[issue.PaymentIntentID] = &cp
		out := cp
		return &out, nil
	}
	cur.Attempts++
	cur.Resolved = false
	cur.Reason = issue.Reason
	cur.Detail = issue.Detail
	cur.Source = issue.Source
	out := *cur
	return &out, nil
}

func (r memIssues) FindByIntentID(ctx context.Context, intentID string) (*model.ReconciliationIssue, error) {
	if i := r.s.issue(intentID); i != nil {
		return i, nil
	}
	return nil, apperrors.ErrIssueNotFound
}

func (r memIssues) ListUnresolved(ctx context.Context, maxAttempts int) ([]*model.ReconciliationIssue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.ReconciliationIssue
	for _, i := range r.s.issues {
		if i.Resolved || (maxAttempts > 0 && i.Attempts >= maxAttempts) {
			continue
		}
		cp := *i
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].PaymentIntentID < out[b].PaymentIntentID })
	return out, nil
}

func (r memIssues) MarkResolved(ctx context.Context, intentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.issues[intentID]
	if !ok {
		return apperrors.ErrIssueNotFound
	}
	i.Resolved = true
	return nil
}

// ---- payment bridge ----

type fakeBridge struct {
	mu          sync.Mutex
	intents     map[string]*payment.VerifiedIntent
	badMetadata map[string]bool
	seq         int
	createErr   error
	retrieveErr error
	webhook     *payment.WebhookEvent
	webhookErr  error
	calls       int
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		intents:     map[string]*payment.VerifiedIntent{},
		badMetadata: map[string]bool{},
	}
}

func (b *fakeBridge) CreateOrUpdateIntent(ctx context.Context, existingID string, amount float64, md model.BookingMetadata) (*payment.IntentHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.createErr != nil {
		return nil, b.createErr
	}
	if in, ok := b.intents[existingID]; ok && !in.Succeeded && strings.EqualFold(in.Metadata.CustomerEmail, md.CustomerEmail) {
		in.Amount = amount
		in.Metadata = md
		return &payment.IntentHandle{ID: in.ID, ClientSecret: in.ID + "_secret"}, nil
	}
	b.seq++
	id := fmt.Sprintf("pi_%d", b.seq)
	b.intents[id] = &payment.VerifiedIntent{
		ID:       id,
		Status:   "requires_payment_method",
		Amount:   amount,
		Currency: "usd",
		Metadata: md,
	}
	return &payment.IntentHandle{ID: id, ClientSecret: id + "_secret"}, nil
}

// succeed simulates the customer completing payment.
func (b *fakeBridge) succeed(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	in := b.intents[id]
	in.Status = payment.StatusSucceeded
	in.Succeeded = true
}

func (b *fakeBridge) RetrieveIntent(ctx context.Context, id string) (*payment.VerifiedIntent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.retrieveErr != nil {
		return nil, b.retrieveErr
	}
	in, ok := b.intents[id]
	if !ok {
		return nil, apperrors.ErrIntentNotFound
	}
	cp := *in
	if b.badMetadata[id] {
		cp.Metadata = model.BookingMetadata{}
		return &cp, fmt.Errorf("%w: missing eventId", apperrors.ErrInvalidIntentMetadata)
	}
	return &cp, nil
}

func (b *fakeBridge) VerifyWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	if b.webhookErr != nil {
		return nil, b.webhookErr
	}
	return b.webhook, nil
}

// ---- availability cache ----

type memCache struct {
	mu       sync.Mutex
	versions map[uuid.UUID]int64
	data     map[uuid.UUID][]*model.TableAvailability
	loadErr  error
}

func newMemCache() *memCache {
	return &memCache{versions: map[uuid.UUID]int64{}, data: map[uuid.UUID][]*model.TableAvailability{}}
}

func (c *memCache) Load(ctx context.Context, eventID uuid.UUID) (*cache.AvailabilitySnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return &cache.AvailabilitySnapshot{Version: c.versions[eventID], Tables: c.data[eventID]}, nil
}

func (c *memCache) Store(ctx context.Context, eventID uuid.UUID, version int64, tables []*model.TableAvailability) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[eventID] != version {
		return false, nil
	}
	c.data[eventID] = tables
	return true, nil
}

func (c *memCache) Invalidate(ctx context.Context, eventID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[eventID]++
	delete(c.data, eventID)
	return nil
}

// ---- notifications ----

type recordingQueue struct {
	mu        sync.Mutex
	published []*model.BookingDetails
}

func (q *recordingQueue) Publish(ctx context.Context, details *model.BookingDetails) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, details)
	return nil
}

func (q *recordingQueue) Subscribe(ctx context.Context) (<-chan queue.Delivery, error) {
	return nil, errors.New("not supported")
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.published)
}
