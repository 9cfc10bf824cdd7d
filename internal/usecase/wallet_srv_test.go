package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"

	"go.uber.org/zap"
)

func newTestWalletService(store *stubStore) *walletService {
	return NewWalletService(store.repository(), testConfig().Wallet, fixedClock(testNow), zap.NewNop()).(*walletService)
}

func TestCreditReferralIsIdempotent(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestWalletService(store)
	referrer := store.addUser(t, "asha", true)
	store.addCode(t, referrer, "ASHA7K2P9Q")
	friend := store.addUser(t, "ravi", true)
	trip := store.addTrip(t, 10000, true)
	batch := store.addBatch(t, trip.ID, testNow.AddDate(0, 0, 20), 20, 2, entity.BatchStatusActive)
	booking := store.addBooking(t, friend, batch, 2, 20000, entity.BookingStatusConfirmed)

	first, err := service.CreditReferral(context.Background(), "ASHA7K2P9Q", friend.ID, booking.ID)
	if err != nil {
		t.Fatalf("first credit: %v", err)
	}
	if !first {
		t.Fatalf("expected first credit to apply")
	}
	second, err := service.CreditReferral(context.Background(), "ASHA7K2P9Q", friend.ID, booking.ID)
	if err != nil {
		t.Fatalf("second credit: %v", err)
	}
	if second {
		t.Fatalf("expected second credit to be a no-op")
	}

	wallet := store.mustWallet(t, referrer.ID)
	if wallet.Balance != 500 || wallet.TotalEarned != 500 {
		t.Fatalf("expected balance 500 earned 500, got %+v", wallet)
	}
	if !wallet.Consistent() {
		t.Fatalf("ledger invariant broken: %+v", wallet)
	}
	if got := len(store.txnsOfType(referrer.ID, entity.TxnReferralCredit)); got != 1 {
		t.Fatalf("expected 1 referral transaction, got %d", got)
	}
}

func TestCreditReferralRejects(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		code  string
		self  bool
		froze bool
	}{
		{name: "unknown code", code: "NOPE000000"},
		{name: "self referral", code: "ASHA7K2P9Q", self: true},
		{name: "frozen referrer wallet", code: "ASHA7K2P9Q", froze: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			store := newStubStore()
			service := newTestWalletService(store)
			referrer := store.addUser(t, "asha", true)
			store.addCode(t, referrer, "ASHA7K2P9Q")
			customer := store.addUser(t, "ravi", true)
			if tc.self {
				customer = referrer
			}
			if tc.froze {
				if _, err := service.SetFrozen(context.Background(), referrer.ID.String(), true); err != nil {
					t.Fatalf("freeze: %v", err)
				}
			}
			trip := store.addTrip(t, 10000, true)
			batch := store.addBatch(t, trip.ID, testNow.AddDate(0, 0, 20), 20, 0, entity.BatchStatusActive)
			booking := store.addBooking(t, customer, batch, 1, 10000, entity.BookingStatusConfirmed)

			credited, err := service.CreditReferral(context.Background(), tc.code, customer.ID, booking.ID)
			if err != nil {
				t.Fatalf("credit referral: %v", err)
			}
			if credited {
				t.Fatalf("expected no credit")
			}
			if len(store.earnings) != 0 {
				t.Fatalf("expected no referral earnings, got %d", len(store.earnings))
			}
			if got := len(store.txnsOfType(referrer.ID, entity.TxnReferralCredit)); got != 0 {
				t.Fatalf("expected no referral transactions, got %d", got)
			}
		})
	}
}

func TestApplyWalletCreditFailsClosedOnInsufficientBalance(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestWalletService(store)
	user := store.addUser(t, "meera", false)
	store.fund(t, user, 300, nil)
	trip := store.addTrip(t, 10000, true)
	batch := store.addBatch(t, trip.ID, testNow.AddDate(0, 0, 20), 20, 0, entity.BatchStatusActive)
	booking := store.addBooking(t, user, batch, 1, 10000, entity.BookingStatusInitiated)

	applied, err := service.ApplyWalletCredit(context.Background(), user.ID, booking.ID, 500)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied {
		t.Fatalf("expected apply to be refused")
	}

	wallet := store.mustWallet(t, user.ID)
	if wallet.Balance != 300 || wallet.TotalSpent != 0 {
		t.Fatalf("expected untouched wallet, got %+v", wallet)
	}
	after := store.mustBooking(t, booking.ID)
	if after.TotalAmount != 10000 || after.WalletCreditApplied != 0 {
		t.Fatalf("expected untouched booking, got total %d applied %d", after.TotalAmount, after.WalletCreditApplied)
	}
	if got := len(store.txnsOfType(user.ID, entity.TxnBookingDebit)); got != 0 {
		t.Fatalf("expected no debit transaction, got %d", got)
	}
}

func TestApplyWalletCreditSpendsEarliestExpiringLotFirst(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestWalletService(store)
	user := store.addUser(t, "meera", false)
	soon := testNow.AddDate(0, 0, 10)
	later := testNow.AddDate(0, 0, 90)
	store.fund(t, user, 300, &later)
	store.fund(t, user, 400, &soon)
	store.fund(t, user, 100, nil)
	trip := store.addTrip(t, 10000, true)
	batch := store.addBatch(t, trip.ID, testNow.AddDate(0, 0, 20), 20, 0, entity.BatchStatusActive)
	booking := store.addBooking(t, user, batch, 1, 10000, entity.BookingStatusPending)

	applied, err := service.ApplyWalletCredit(context.Background(), user.ID, booking.ID, 500)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !applied {
		t.Fatalf("expected apply to succeed")
	}

	lots := store.txnsOfType(user.ID, entity.TxnAdminCredit)
	want := []int64{200, 0, 100} // funded order: later, soon, never
	for i, lot := range lots {
		if lot.Remaining != want[i] {
			t.Fatalf("lot %d: expected remaining %d, got %d", i, want[i], lot.Remaining)
		}
	}

	wallet := store.mustWallet(t, user.ID)
	if wallet.Balance != 300 || wallet.TotalSpent != 500 || !wallet.Consistent() {
		t.Fatalf("unexpected wallet after debit: %+v", wallet)
	}
	after := store.mustBooking(t, booking.ID)
	if after.TotalAmount != 9500 || after.WalletCreditApplied != 500 {
		t.Fatalf("expected total 9500 applied 500, got %d/%d", after.TotalAmount, after.WalletCreditApplied)
	}
}

func TestApplyWalletCreditRequiresOwnOpenBooking(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestWalletService(store)
	owner := store.addUser(t, "owner", false)
	other := store.addUser(t, "other", false)
	store.fund(t, other, 1000, nil)
	store.fund(t, owner, 1000, nil)
	trip := store.addTrip(t, 10000, true)
	batch := store.addBatch(t, trip.ID, testNow.AddDate(0, 0, 20), 20, 0, entity.BatchStatusActive)
	open := store.addBooking(t, owner, batch, 1, 10000, entity.BookingStatusInitiated)
	confirmed := store.addBooking(t, owner, batch, 1, 10000, entity.BookingStatusConfirmed)

	if applied, err := service.ApplyWalletCredit(context.Background(), other.ID, open.ID, 100); err != nil || applied {
		t.Fatalf("expected foreign booking to be refused, got %v %v", applied, err)
	}
	if applied, err := service.ApplyWalletCredit(context.Background(), owner.ID, confirmed.ID, 100); err != nil || applied {
		t.Fatalf("expected confirmed booking to be refused, got %v %v", applied, err)
	}
	if w := store.mustWallet(t, other.ID); w.Balance != 1000 {
		t.Fatalf("expected other wallet untouched, got %d", w.Balance)
	}
}

func TestExpireCreditsRemovesOnlyLapsedUnspentCredit(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestWalletService(store)
	lapsed := testNow.Add(-time.Hour)
	valid := testNow.AddDate(0, 0, 30)

	user := store.addUser(t, "kiran", false)
	store.fund(t, user, 300, &lapsed)
	store.fund(t, user, 200, &valid)

	frozen := store.addUser(t, "frozen", false)
	store.fund(t, frozen, 100, &lapsed)
	if _, err := service.SetFrozen(context.Background(), frozen.ID.String(), true); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	result, err := service.ExpireCredits(context.Background())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if result.Credits != 1 || result.Wallets != 1 || result.Amount != 300 {
		t.Fatalf("expected 1 credit / 1 wallet / 300, got %+v", result)
	}

	wallet := store.mustWallet(t, user.ID)
	if wallet.Balance != 200 || wallet.TotalSpent != 300 || !wallet.Consistent() {
		t.Fatalf("unexpected wallet after expiry: %+v", wallet)
	}
	expired := store.txnsOfType(user.ID, entity.TxnCreditExpired)
	if len(expired) != 1 || expired[0].Amount != -300 {
		t.Fatalf("expected one -300 expiry transaction, got %+v", expired)
	}
	if w := store.mustWallet(t, frozen.ID); w.Balance != 100 {
		t.Fatalf("expected frozen wallet untouched, got %d", w.Balance)
	}

	again, err := service.ExpireCredits(context.Background())
	if err != nil {
		t.Fatalf("second expire: %v", err)
	}
	if again.Credits != 0 {
		t.Fatalf("expected second run to expire nothing, got %+v", again)
	}
}

func TestExpireCreditsNeverDrivesBalanceNegative(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestWalletService(store)
	lapsed := testNow.Add(-time.Hour)
	user := store.addUser(t, "kiran", false)
	store.fund(t, user, 300, &lapsed)

	// balance moved without touching the lot
	store.mu.Lock()
	w := store.wallets[user.ID]
	w.Balance -= 250
	w.TotalSpent += 250
	store.mu.Unlock()

	result, err := service.ExpireCredits(context.Background())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if result.Amount != 50 {
		t.Fatalf("expected expiry capped at 50, got %d", result.Amount)
	}
	if wallet := store.mustWallet(t, user.ID); wallet.Balance != 0 || !wallet.Consistent() {
		t.Fatalf("unexpected wallet: %+v", wallet)
	}
}

func TestAdminAdjustments(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestWalletService(store)
	user := store.addUser(t, "neha", false)

	resp, err := service.AdminCredit(context.Background(), user.ID.String(), &request.WalletAdjustRequest{Amount: 400, Description: "goodwill"})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if resp.Balance != 400 {
		t.Fatalf("expected balance 400, got %d", resp.Balance)
	}

	_, err = service.AdminDebit(context.Background(), user.ID.String(), &request.WalletAdjustRequest{Amount: 500, Description: "correction"})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if w := store.mustWallet(t, user.ID); w.Balance != 400 || !w.Consistent() {
		t.Fatalf("expected untouched wallet, got %+v", w)
	}

	if _, err := service.SetFrozen(context.Background(), user.ID.String(), true); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	_, err = service.AdminCredit(context.Background(), user.ID.String(), &request.WalletAdjustRequest{Amount: 100, Description: "goodwill"})
	if !errors.Is(err, ErrWalletFrozen) {
		t.Fatalf("expected ErrWalletFrozen, got %v", err)
	}
}

func TestGenerateReferralCodeIsStable(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestWalletService(store)
	user := store.addUser(t, "priya", false)

	first, err := service.GenerateReferralCode(context.Background(), user.ID.String())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := service.GenerateReferralCode(context.Background(), user.ID.String())
	if err != nil {
		t.Fatalf("generate again: %v", err)
	}
	if first.Code != second.Code {
		t.Fatalf("expected stable code, got %s then %s", first.Code, second.Code)
	}
	if first.RewardPerReferral != 500 {
		t.Fatalf("expected reward 500, got %d", first.RewardPerReferral)
	}
}
