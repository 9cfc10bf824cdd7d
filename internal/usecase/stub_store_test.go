package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stubStore is an in-memory stand-in for the pgx repositories. Lookups
// return copies so services only change state through explicit writes.
type stubStore struct {
	mu sync.Mutex

	users     map[uuid.UUID]*entity.User
	sessions  map[uuid.UUID]*entity.Session
	trips     map[uuid.UUID]*entity.Trip
	batches   map[uuid.UUID]*entity.Batch
	bookings  map[uuid.UUID]*entity.Booking
	payments  []*entity.Payment
	wallets   map[uuid.UUID]*entity.Wallet // by user
	txns      []*entity.WalletTransaction
	codes     map[string]*entity.ReferralCode
	earnings  []*entity.ReferralEarning
	reviews   map[uuid.UUID]*entity.Review
	reminders map[string]int64
	messages  []*entity.MessageLog
}

func newStubStore() *stubStore {
	return &stubStore{
		users:     make(map[uuid.UUID]*entity.User),
		sessions:  make(map[uuid.UUID]*entity.Session),
		trips:     make(map[uuid.UUID]*entity.Trip),
		batches:   make(map[uuid.UUID]*entity.Batch),
		bookings:  make(map[uuid.UUID]*entity.Booking),
		wallets:   make(map[uuid.UUID]*entity.Wallet),
		codes:     make(map[string]*entity.ReferralCode),
		reviews:   make(map[uuid.UUID]*entity.Review),
		reminders: make(map[string]int64),
	}
}

func (s *stubStore) repository() *repository.Repository {
	return &repository.Repository{
		User:       stubUsers{s},
		Session:    stubSessions{s},
		Trip:       stubTrips{s},
		Batch:      stubBatches{s},
		Booking:    stubBookings{s},
		Payment:    stubPayments{s},
		Wallet:     stubWallets{s},
		WalletTxn:  stubWalletTxns{s},
		Referral:   stubReferrals{s},
		Review:     stubReviews{s},
		Reminder:   stubReminders{s},
		MessageLog: stubMessages{s},
	}
}

// ==================== fixtures ====================

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testConfig() *utils.Config {
	return &utils.Config{
		App:     utils.AppConfig{Timezone: "UTC"},
		Session: utils.SessionConfig{ExpiryHours: 24},
		Booking: utils.BookingConfig{GraceMinutes: 120},
		Wallet: utils.WalletConfig{
			ReferralReward:     500,
			SignupBonus:        0,
			CreditValidityDays: 180,
		},
	}
}

func (s *stubStore) addUser(t *testing.T, username string, optIn bool) *entity.User {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	phone := fmt.Sprintf("+9198%08d", len(s.users)+1)
	u := &entity.User{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		Username:      username,
		Email:         username + "@example.com",
		Phone:         &phone,
		Role:          entity.RoleUser,
		WhatsAppOptIn: optIn,
		IsActive:      true,
	}
	s.users[u.ID] = u
	return u
}

func (s *stubStore) addTrip(t *testing.T, basePrice int64, live bool) *entity.Trip {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	trip := &entity.Trip{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		Name:         "Spiti Valley",
		BasePrice:    basePrice,
		Capacity:     20,
		DurationDays: 7,
		BookingLive:  live,
		IsActive:     true,
	}
	s.trips[trip.ID] = trip
	return trip
}

func (s *stubStore) addBatch(t *testing.T, tripID uuid.UUID, start time.Time, size, booked int, status entity.BatchStatus) *entity.Batch {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &entity.Batch{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		TripID:       tripID,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 6),
		BatchSize:    size,
		SeatsBooked:  booked,
		Status:       status,
	}
	s.batches[b.ID] = b
	return b
}

func (s *stubStore) addBooking(t *testing.T, user *entity.User, batch *entity.Batch, travelers int, total int64, status entity.BookingStatus) *entity.Booking {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	batchID := batch.ID
	b := &entity.Booking{
		BaseNoDelete:  entity.BaseNoDelete{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		BookingCode:   "TRV-20260310-" + strings.ToUpper(uuid.NewString()[:6]),
		UserID:        user.ID,
		TripID:        batch.TripID,
		BatchID:       &batchID,
		Travelers:     travelers,
		TotalAmount:   total,
		PaymentStatus: entity.PaymentStatusPending,
		BookingStatus: status,
	}
	if status == entity.BookingStatusConfirmed {
		b.PaymentStatus = entity.PaymentStatusAdvanceVerified
	}
	s.bookings[b.ID] = b
	return b
}

func (s *stubStore) addCode(t *testing.T, user *entity.User, code string) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code] = &entity.ReferralCode{UserID: user.ID, Code: code, IsActive: true, CreatedAt: testNow}
}

// fund credits a wallet directly, bypassing the ledger.
func (s *stubStore) fund(t *testing.T, user *entity.User, amount int64, expiresAt *time.Time) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.walletLocked(user.ID)
	w.Balance += amount
	w.TotalEarned += amount
	s.txns = append(s.txns, &entity.WalletTransaction{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: testNow},
		WalletID:   w.ID,
		UserID:     user.ID,
		Amount:     amount,
		Type:       entity.TxnAdminCredit,
		Remaining:  amount,
		ExpiresAt:  expiresAt,
	})
}

func (s *stubStore) walletLocked(userID uuid.UUID) *entity.Wallet {
	w, ok := s.wallets[userID]
	if !ok {
		w = &entity.Wallet{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
			UserID:       userID,
		}
		s.wallets[userID] = w
	}
	return w
}

func (s *stubStore) mustWallet(t *testing.T, userID uuid.UUID) entity.Wallet {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[userID]
	if !ok {
		t.Fatalf("expected wallet for user %s", userID)
	}
	return *w
}

func (s *stubStore) mustBooking(t *testing.T, id uuid.UUID) entity.Booking {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		t.Fatalf("expected booking %s", id)
	}
	return *b
}

func (s *stubStore) txnsOfType(userID uuid.UUID, typ entity.WalletTransactionType) []entity.WalletTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.WalletTransaction
	for _, txn := range s.txns {
		if txn.UserID == userID && txn.Type == typ {
			out = append(out, *txn)
		}
	}
	return out
}

// stubSender records deliveries and rejects the phones in fail.
type stubSender struct {
	mu   sync.Mutex
	sent []string
	fail map[string]bool
}

func (s *stubSender) Send(_ context.Context, phone, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[phone] {
		return errors.New("provider rejected number")
	}
	s.sent = append(s.sent, phone+": "+body)
	return nil
}

func (s *stubSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func newTestMessenger(store *stubStore, sender *stubSender) *messenger {
	return &messenger{repo: store.repository(), sender: sender, now: fixedClock(testNow), log: zap.NewNop()}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ==================== users & sessions ====================

type stubUsers struct{ s *stubStore }

func (r stubUsers) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r stubUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r stubUsers) find(match func(*entity.User) bool) *entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r stubUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r stubUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username }), nil
}

func (r stubUsers) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		cp := *u
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

func (r stubUsers) CountAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r stubUsers) Update(ctx context.Context, user *entity.User) error {
	return r.Create(ctx, user)
}

func (r stubUsers) UpdateRole(_ context.Context, id uuid.UUID, role entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (r stubUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

func (r stubUsers) FindWhatsAppRecipients(_ context.Context) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if u.CanReceiveWhatsApp() {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stubStore) addSession(t *testing.T, userID uuid.UUID, expiresAt time.Time, revokedAt *time.Time) *entity.Session {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: expiresAt.Add(-24 * time.Hour)},
		UserID:     userID,
		Token:      uuid.New(),
		ExpiresAt:  expiresAt,
		RevokedAt:  revokedAt,
	}
	s.sessions[sess.Token] = sess
	return sess
}

func (s *stubStore) sessionRevoked(token uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	return ok && sess.RevokedAt != nil
}

type stubSessions struct{ s *stubStore }

func (r stubSessions) Create(_ context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *session
	r.s.sessions[session.Token] = &cp
	return nil
}

func (r stubSessions) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[token]; ok && sess.RevokedAt == nil {
		cp := *sess
		return &cp, nil
	}
	return nil, nil
}

func (r stubSessions) Revoke(_ context.Context, token uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[token]; ok {
		now := testNow
		sess.RevokedAt = &now
	}
	return nil
}

func (r stubSessions) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sess := range r.s.sessions {
		if sess.UserID == userID {
			now := testNow
			sess.RevokedAt = &now
		}
	}
	return nil
}

func (r stubSessions) CleanExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for token, sess := range r.s.sessions {
		if sess.Purgeable(before) {
			delete(r.s.sessions, token)
			n++
		}
	}
	return n, nil
}

// ==================== trips & batches ====================

type stubTrips struct{ s *stubStore }

func (r stubTrips) Create(_ context.Context, trip *entity.Trip) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *trip
	r.s.trips[trip.ID] = &cp
	return nil
}

func (r stubTrips) FindByID(_ context.Context, id uuid.UUID) (*entity.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if trip, ok := r.s.trips[id]; ok {
		cp := *trip
		return &cp, nil
	}
	return nil, nil
}

func (r stubTrips) FindAll(_ context.Context, activeOnly bool, limit, offset int) ([]*entity.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Trip
	for _, trip := range r.s.trips {
		if activeOnly && !trip.IsActive {
			continue
		}
		cp := *trip
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

func (r stubTrips) Count(ctx context.Context, activeOnly bool) (int64, error) {
	all, _ := r.FindAll(ctx, activeOnly, 0, 0)
	return int64(len(all)), nil
}

func (r stubTrips) Update(ctx context.Context, trip *entity.Trip) error {
	return r.Create(ctx, trip)
}

func (r stubTrips) SetBookingLive(_ context.Context, id uuid.UUID, live bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if trip, ok := r.s.trips[id]; ok {
		trip.BookingLive = live
	}
	return nil
}

type stubBatches struct{ s *stubStore }

func (r stubBatches) Create(_ context.Context, batch *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *batch
	r.s.batches[batch.ID] = &cp
	return nil
}

func (r stubBatches) FindByID(_ context.Context, id uuid.UUID) (*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.batches[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r stubBatches) FindByTripID(_ context.Context, tripID uuid.UUID) ([]*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Batch
	for _, b := range r.s.batches {
		if b.TripID == tripID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r stubBatches) Update(ctx context.Context, batch *entity.Batch) error {
	return r.Create(ctx, batch)
}

func (r stubBatches) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.batches, id)
	return nil
}

func (r stubBatches) IncrementSeats(_ context.Context, id uuid.UUID, seats int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[id]
	if !ok || b.SeatsBooked+seats > b.BatchSize {
		return false, nil
	}
	b.SeatsBooked += seats
	return true, nil
}

func (r stubBatches) ReleaseSeats(_ context.Context, id uuid.UUID, seats int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.batches[id]; ok {
		b.SeatsBooked = max(0, b.SeatsBooked-seats)
	}
	return nil
}

// ==================== bookings & payments ====================

type stubBookings struct{ s *stubStore }

func (r stubBookings) Create(_ context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *booking
	r.s.bookings[booking.ID] = &cp
	return nil
}

func (r stubBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r stubBookings) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r stubBookings) filter(match func(*entity.Booking) bool) []*entity.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if match(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r stubBookings) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	return page(r.filter(func(b *entity.Booking) bool { return b.UserID == userID }), limit, offset), nil
}

func (r stubBookings) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool { return b.UserID == userID }))), nil
}

func (r stubBookings) FindByStatus(_ context.Context, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error) {
	return page(r.filter(func(b *entity.Booking) bool { return status == "" || b.BookingStatus == status }), limit, offset), nil
}

func (r stubBookings) CountByStatus(_ context.Context, status entity.BookingStatus) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool { return status == "" || b.BookingStatus == status }))), nil
}

func (r stubBookings) Update(ctx context.Context, booking *entity.Booking) error {
	return r.Create(ctx, booking)
}

func (r stubBookings) ExpireAbandoned(_ context.Context, createdBefore time.Time) ([]entity.ExpiredBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var expired []entity.ExpiredBooking
	for _, b := range r.s.bookings {
		if b.BookingStatus == entity.BookingStatusInitiated && b.PaymentStatus == entity.PaymentStatusPending &&
			b.CreatedAt.Before(createdBefore) {
			b.BookingStatus = entity.BookingStatusExpired
			b.PaymentStatus = entity.PaymentStatusExpired
			expired = append(expired, entity.ExpiredBooking{ID: b.ID, UserID: b.UserID, WalletCreditApplied: b.WalletCreditApplied})
		}
	}
	return expired, nil
}

func (r stubBookings) candidates(match func(*entity.Batch) bool) []*entity.ReminderCandidate {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ReminderCandidate
	for _, b := range r.s.bookings {
		if b.BookingStatus != entity.BookingStatusConfirmed || b.BatchID == nil {
			continue
		}
		batch, ok := r.s.batches[*b.BatchID]
		if !ok || !match(batch) {
			continue
		}
		c := &entity.ReminderCandidate{
			Booking:   *b,
			StartDate: batch.StartDate,
			EndDate:   batch.EndDate,
		}
		if trip, ok := r.s.trips[b.TripID]; ok {
			c.TripName = trip.Name
		}
		if u, ok := r.s.users[b.UserID]; ok {
			c.User = *u
		}
		out = append(out, c)
	}
	return out
}

func (r stubBookings) FindConfirmedStartingOn(_ context.Context, day time.Time) ([]*entity.ReminderCandidate, error) {
	return r.candidates(func(b *entity.Batch) bool { return sameDay(b.StartDate, day) }), nil
}

func (r stubBookings) FindConfirmedEndedOn(_ context.Context, day time.Time) ([]*entity.ReminderCandidate, error) {
	return r.candidates(func(b *entity.Batch) bool { return sameDay(b.EndDate, day) }), nil
}

func (r stubBookings) FindReviewable(_ context.Context, userID, tripID uuid.UUID, today time.Time) (*entity.Booking, error) {
	for _, c := range r.candidates(func(b *entity.Batch) bool { return b.EndDate.Before(today) }) {
		if c.Booking.UserID == userID && c.Booking.TripID == tripID {
			b := c.Booking
			return &b, nil
		}
	}
	return nil, nil
}

type stubPayments struct{ s *stubStore }

func (r stubPayments) Create(_ context.Context, payment *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *payment
	r.s.payments = append(r.s.payments, &cp)
	return nil
}

func (r stubPayments) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.s.payments {
		if p.BookingID == bookingID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ==================== wallet ledger ====================

type stubWallets struct{ s *stubStore }

func (r stubWallets) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if w, ok := r.s.wallets[userID]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, nil
}

func (r stubWallets) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	return r.FindByUserID(ctx, userID)
}

func (r stubWallets) GetOrCreateForUpdate(_ context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *r.s.walletLocked(userID)
	return &cp, nil
}

func (r stubWallets) UpdateTotals(_ context.Context, wallet *entity.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[wallet.UserID]
	if !ok {
		return errors.New("wallet not found")
	}
	w.Balance = wallet.Balance
	w.TotalEarned = wallet.TotalEarned
	w.TotalSpent = wallet.TotalSpent
	w.UpdatedAt = wallet.UpdatedAt
	return nil
}

func (r stubWallets) SetFrozen(_ context.Context, userID uuid.UUID, frozen bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.walletLocked(userID).IsFrozen = frozen
	return nil
}

type stubWalletTxns struct{ s *stubStore }

func (r stubWalletTxns) Create(_ context.Context, txn *entity.WalletTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *txn
	r.s.txns = append(r.s.txns, &cp)
	return nil
}

func (r stubWalletTxns) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.WalletTransaction
	for i := len(r.s.txns) - 1; i >= 0; i-- {
		if r.s.txns[i].UserID == userID {
			cp := *r.s.txns[i]
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), nil
}

func (r stubWalletTxns) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	all, _ := r.FindByUserID(ctx, userID, 0, 0)
	return int64(len(all)), nil
}

func (r stubWalletTxns) FindOpenCreditsForUpdate(_ context.Context, walletID uuid.UUID) ([]*entity.WalletTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.WalletTransaction
	for _, txn := range r.s.txns {
		if txn.WalletID == walletID && txn.Type.IsCredit() && txn.Remaining > 0 && txn.ExpiredAt == nil {
			cp := *txn
			out = append(out, &cp)
		}
	}
	// earliest expiry first, never-expiring last
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ExpiresAt, out[j].ExpiresAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out, nil
}

func (r stubWalletTxns) lot(id uuid.UUID) *entity.WalletTransaction {
	for _, txn := range r.s.txns {
		if txn.ID == id {
			return txn
		}
	}
	return nil
}

func (r stubWalletTxns) UpdateRemaining(_ context.Context, id uuid.UUID, remaining int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if lot := r.lot(id); lot != nil {
		lot.Remaining = remaining
	}
	return nil
}

func (r stubWalletTxns) FindUsersWithExpiredCredits(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, txn := range r.s.txns {
		if !txn.Type.IsCredit() || txn.Remaining <= 0 || txn.ExpiredAt != nil || txn.ExpiresAt == nil || txn.ExpiresAt.After(now) {
			continue
		}
		if w, ok := r.s.wallets[txn.UserID]; !ok || w.IsFrozen || seen[txn.UserID] {
			continue
		}
		seen[txn.UserID] = true
		out = append(out, txn.UserID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (r stubWalletTxns) MarkExpired(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if lot := r.lot(id); lot != nil {
		lot.Remaining = 0
		lot.ExpiredAt = &at
	}
	return nil
}

type stubReferrals struct{ s *stubStore }

func (r stubReferrals) FindCodeByUserID(_ context.Context, userID uuid.UUID) (*entity.ReferralCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.codes {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r stubReferrals) FindByCode(_ context.Context, code string) (*entity.ReferralCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.codes {
		if c.IsActive && strings.EqualFold(c.Code, code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r stubReferrals) CreateCode(_ context.Context, code *entity.ReferralCode) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.codes[code.Code]; taken {
		return false, nil
	}
	for _, c := range r.s.codes {
		if c.UserID == code.UserID {
			return false, nil
		}
	}
	cp := *code
	r.s.codes[code.Code] = &cp
	return true, nil
}

func (r stubReferrals) CreateEarning(_ context.Context, earning *entity.ReferralEarning) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.earnings {
		if e.ReferredUserID == earning.ReferredUserID && e.BookingID == earning.BookingID {
			return false, nil
		}
	}
	cp := *earning
	r.s.earnings = append(r.s.earnings, &cp)
	return true, nil
}

func (r stubReferrals) EarningStats(_ context.Context, referrerID uuid.UUID) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count, total int64
	for _, e := range r.s.earnings {
		if e.ReferrerID == referrerID {
			count++
			total += e.Amount
		}
	}
	return count, total, nil
}

// ==================== reviews, reminders, messages ====================

type stubReviews struct{ s *stubStore }

func (r stubReviews) Create(_ context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *review
	r.s.reviews[review.ID] = &cp
	return nil
}

func (r stubReviews) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rv, ok := r.s.reviews[id]; ok {
		cp := *rv
		return &cp, nil
	}
	return nil, nil
}

func (r stubReviews) filter(match func(*entity.Review) bool) []*entity.Review {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Review
	for _, rv := range r.s.reviews {
		if match(rv) {
			cp := *rv
			out = append(out, &cp)
		}
	}
	return out
}

func (r stubReviews) FindByTripID(_ context.Context, tripID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	return page(r.filter(func(rv *entity.Review) bool { return rv.TripID == tripID }), limit, offset), nil
}

func (r stubReviews) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	return page(r.filter(func(rv *entity.Review) bool { return rv.UserID == userID }), limit, offset), nil
}

func (r stubReviews) FindByUserAndTrip(_ context.Context, userID, tripID uuid.UUID) (*entity.Review, error) {
	found := r.filter(func(rv *entity.Review) bool { return rv.UserID == userID && rv.TripID == tripID })
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r stubReviews) CountByTripID(_ context.Context, tripID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(rv *entity.Review) bool { return rv.TripID == tripID }))), nil
}

func (r stubReviews) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(rv *entity.Review) bool { return rv.UserID == userID }))), nil
}

func (r stubReviews) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.reviews, id)
	return nil
}

func (r stubReviews) GetTripReviewStats(_ context.Context, tripID uuid.UUID) (float64, int64, error) {
	found := r.filter(func(rv *entity.Review) bool { return rv.TripID == tripID })
	if len(found) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, rv := range found {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(found)), int64(len(found)), nil
}

type stubReminders struct{ s *stubStore }

func reminderKey(bookingID uuid.UUID, kind entity.ReminderType) string {
	return bookingID.String() + "|" + string(kind)
}

func (r stubReminders) Claim(_ context.Context, bookingID uuid.UUID, kind entity.ReminderType, amountDue int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := reminderKey(bookingID, kind)
	if _, ok := r.s.reminders[key]; ok {
		return false, nil
	}
	r.s.reminders[key] = amountDue
	return true, nil
}

func (r stubReminders) Release(_ context.Context, bookingID uuid.UUID, kind entity.ReminderType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.reminders, reminderKey(bookingID, kind))
	return nil
}

type stubMessages struct{ s *stubStore }

func (r stubMessages) Create(_ context.Context, msg *entity.MessageLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *msg
	r.s.messages = append(r.s.messages, &cp)
	return nil
}

func (r stubMessages) FindQueued(_ context.Context, messageType string, limit int) ([]*entity.MessageLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.MessageLog
	for _, m := range r.s.messages {
		if m.Status == entity.MessageStatusQueued && m.MessageType == messageType {
			cp := *m
			out = append(out, &cp)
		}
	}
	return page(out, limit, 0), nil
}

func (r stubMessages) FindRecent(_ context.Context, limit, offset int) ([]*entity.MessageLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.MessageLog, 0, len(r.s.messages))
	for i := len(r.s.messages) - 1; i >= 0; i-- {
		cp := *r.s.messages[i]
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

func (r stubMessages) CountAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.messages)), nil
}

func (r stubMessages) MarkResult(_ context.Context, id uuid.UUID, status entity.MessageStatus, errMsg *string, sentAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.ID == id {
			m.Status = status
			m.Error = errMsg
			m.SentAt = sentAt
		}
	}
	return nil
}

func (s *stubStore) messagesWithStatus(status entity.MessageStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.Status == status {
			n++
		}
	}
	return n
}

// page applies limit/offset; a zero limit returns everything after offset.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func mustParseID(t *testing.T, raw string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(raw)
	if err != nil {
		t.Fatalf("parse id %q: %v", raw, err)
	}
	return id
}
