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

func newTestAuthService(store *stubStore, signupBonus int64) AuthService {
	cfg := testConfig()
	cfg.Wallet.SignupBonus = signupBonus
	return NewAuthService(store.repository(), cfg, fixedClock(testNow), zap.NewNop())
}

func TestRegisterWithReferralGrantsSignupBonus(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestAuthService(store, 250)
	referrer := store.addUser(t, "asha", true)
	store.addCode(t, referrer, "ASHA7K2P9Q")

	phone := "98765 43210"
	code := "asha7k2p9q"
	resp, err := service.Register(context.Background(), &request.RegisterRequest{
		Username:      "newbie",
		Email:         "newbie@example.com",
		Password:      "secret123",
		Phone:         &phone,
		WhatsAppOptIn: true,
		ReferralCode:  &code,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a session token after register")
	}

	user, _ := store.repository().User.FindByEmail(context.Background(), "newbie@example.com")
	if user == nil || user.ReferredBy == nil || *user.ReferredBy != "ASHA7K2P9Q" {
		t.Fatalf("expected referred_by ASHA7K2P9Q, got %+v", user)
	}
	if wallet := store.mustWallet(t, user.ID); wallet.Balance != 250 || !wallet.Consistent() {
		t.Fatalf("expected signup bonus 250, got %+v", wallet)
	}
	if got := len(store.txnsOfType(user.ID, entity.TxnSignupBonus)); got != 1 {
		t.Fatalf("expected one signup_bonus transaction, got %d", got)
	}
}

func TestRegisterRejects(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		req  request.RegisterRequest
		want error
	}{
		{
			name: "unknown referral code",
			req:  request.RegisterRequest{Username: "newbie", Email: "newbie@example.com", Password: "secret123", ReferralCode: strPtr("NOPE0000")},
			want: ErrInvalidReferralCode,
		},
		{
			name: "email taken",
			req:  request.RegisterRequest{Username: "another", Email: "asha@example.com", Password: "secret123"},
			want: ErrEmailTaken,
		},
		{
			name: "username taken",
			req:  request.RegisterRequest{Username: "asha", Email: "fresh@example.com", Password: "secret123"},
			want: ErrUsernameTaken,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			store := newStubStore()
			service := newTestAuthService(store, 0)
			store.addUser(t, "asha", true)

			_, err := service.Register(context.Background(), &tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(store.users) != 1 {
				t.Fatalf("expected no new user, got %d users", len(store.users))
			}
		})
	}
}

func TestLoginAndLogout(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestAuthService(store, 0)

	if _, err := service.Register(context.Background(), &request.RegisterRequest{
		Username: "meera",
		Email:    "meera@example.com",
		Password: "secret123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := service.Login(context.Background(), &request.LoginRequest{Username: "meera", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	resp, err := service.Login(context.Background(), &request.LoginRequest{Username: "meera@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	token := mustParseID(t, resp.Token)
	if sess, _ := store.repository().Session.FindValidSession(context.Background(), token); sess == nil {
		t.Fatalf("expected a valid session")
	} else if want := testNow.Add(24 * time.Hour); !sess.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, sess.ExpiresAt)
	}

	if err := service.Logout(context.Background(), resp.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sess, _ := store.repository().Session.FindValidSession(context.Background(), token); sess != nil {
		t.Fatalf("expected session revoked")
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := newTestAuthService(store, 0)
	if _, err := service.Register(context.Background(), &request.RegisterRequest{
		Username: "gone",
		Email:    "gone@example.com",
		Password: "secret123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	store.mu.Lock()
	for _, u := range store.users {
		u.IsActive = false
	}
	store.mu.Unlock()

	if _, err := service.Login(context.Background(), &request.LoginRequest{Username: "gone", Password: "secret123"}); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestUpdateRoleGuards(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := NewUserService(store.repository().User, store.repository().Session, fixedClock(testNow), zap.NewNop())
	admin := store.addUser(t, "admin", false)
	target := store.addUser(t, "target", false)

	if _, err := service.UpdateRole(context.Background(), admin.ID.String(), string(entity.RoleAdmin), admin.ID.String(),
		&request.UpdateRoleRequest{Role: "finance_manager"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden changing own role, got %v", err)
	}
	if _, err := service.UpdateRole(context.Background(), admin.ID.String(), string(entity.RoleAdmin), target.ID.String(),
		&request.UpdateRoleRequest{Role: "super_admin"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden granting super_admin, got %v", err)
	}

	resp, err := service.UpdateRole(context.Background(), admin.ID.String(), string(entity.RoleAdmin), target.ID.String(),
		&request.UpdateRoleRequest{Role: "finance_manager"})
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if resp.Role != entity.RoleFinanceManager {
		t.Fatalf("expected finance_manager, got %s", resp.Role)
	}
}

func TestRoleChangeAndDeletionRevokeSessions(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := NewUserService(store.repository().User, store.repository().Session, fixedClock(testNow), zap.NewNop())
	admin := store.addUser(t, "admin", false)
	promoted := store.addUser(t, "promoted", false)
	deleted := store.addUser(t, "deleted", false)
	bystander := store.addUser(t, "bystander", false)
	promotedSess := store.addSession(t, promoted.ID, testNow.Add(time.Hour), nil)
	deletedSess := store.addSession(t, deleted.ID, testNow.Add(time.Hour), nil)
	bystanderSess := store.addSession(t, bystander.ID, testNow.Add(time.Hour), nil)

	if _, err := service.UpdateRole(context.Background(), admin.ID.String(), string(entity.RoleAdmin), promoted.ID.String(),
		&request.UpdateRoleRequest{Role: "finance_manager"}); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if err := service.DeleteUser(context.Background(), deleted.ID.String()); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if !store.sessionRevoked(promotedSess.Token) {
		t.Fatalf("expected session revoked after role change")
	}
	if !store.sessionRevoked(deletedSess.Token) {
		t.Fatalf("expected session revoked after deletion")
	}
	if store.sessionRevoked(bystanderSess.Token) {
		t.Fatalf("expected other users' sessions untouched")
	}
}
