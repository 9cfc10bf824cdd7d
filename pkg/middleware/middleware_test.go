package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	testCronSecret = "cron-secret-value"
	testServiceKey = "service-signing-key"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func mustServiceToken(t *testing.T, key, role string, expires time.Time, method jwt.SigningMethod) string {
	t.Helper()
	claims := serviceClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("token signing failed: %v", err)
	}
	return signed
}

func TestCronAuth(t *testing.T) {
	t.Parallel()
	hour := time.Now().Add(time.Hour)
	cases := []struct {
		name   string
		cfg    utils.CronConfig
		header func(t *testing.T, r *http.Request)
		want   int
	}{
		{
			name: "shared secret",
			cfg:  utils.CronConfig{Secret: testCronSecret},
			header: func(t *testing.T, r *http.Request) {
				r.Header.Set("X-Cron-Secret", testCronSecret)
			},
			want: http.StatusNoContent,
		},
		{
			name: "wrong secret",
			cfg:  utils.CronConfig{Secret: testCronSecret},
			header: func(t *testing.T, r *http.Request) {
				r.Header.Set("X-Cron-Secret", "guess")
			},
			want: http.StatusUnauthorized,
		},
		{
			name:   "unset secret never matches",
			cfg:    utils.CronConfig{},
			header: func(t *testing.T, r *http.Request) { r.Header.Set("X-Cron-Secret", "") },
			want:   http.StatusUnauthorized,
		},
		{
			name: "service token",
			cfg:  utils.CronConfig{ServiceJWTSecret: testServiceKey},
			header: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+mustServiceToken(t, testServiceKey, ServiceRole, hour, jwt.SigningMethodHS256))
			},
			want: http.StatusNoContent,
		},
		{
			name: "token without service role",
			cfg:  utils.CronConfig{ServiceJWTSecret: testServiceKey},
			header: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+mustServiceToken(t, testServiceKey, "authenticated", hour, jwt.SigningMethodHS256))
			},
			want: http.StatusUnauthorized,
		},
		{
			name: "token signed with another key",
			cfg:  utils.CronConfig{ServiceJWTSecret: testServiceKey},
			header: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+mustServiceToken(t, "other-key", ServiceRole, hour, jwt.SigningMethodHS256))
			},
			want: http.StatusUnauthorized,
		},
		{
			name: "token with unexpected algorithm",
			cfg:  utils.CronConfig{ServiceJWTSecret: testServiceKey},
			header: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+mustServiceToken(t, testServiceKey, ServiceRole, hour, jwt.SigningMethodHS512))
			},
			want: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			cfg:  utils.CronConfig{ServiceJWTSecret: testServiceKey},
			header: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+mustServiceToken(t, testServiceKey, ServiceRole, time.Now().Add(-time.Minute), jwt.SigningMethodHS256))
			},
			want: http.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/api/jobs/expire-bookings", nil)
			tc.header(t, req)
			rec := httptest.NewRecorder()

			CronAuth(tc.cfg, zap.NewNop())(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

type stubSessions struct {
	repository.SessionRepository
	sessions map[uuid.UUID]*entity.Session
}

func (s stubSessions) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	return s.sessions[token], nil
}

type stubUsers struct {
	repository.UserRepository
	users map[uuid.UUID]*entity.User
}

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return s.users[id], nil
}

func TestAuthSessionAndPermissions(t *testing.T) {
	t.Parallel()
	finance := &entity.User{Base: entity.Base{ID: uuid.New()}, Role: entity.RoleFinanceManager, IsActive: true}
	support := &entity.User{Base: entity.Base{ID: uuid.New()}, Role: entity.RoleSupportStaff, IsActive: true}
	inactive := &entity.User{Base: entity.Base{ID: uuid.New()}, Role: entity.RoleAdmin, IsActive: false}

	sessions := stubSessions{sessions: map[uuid.UUID]*entity.Session{}}
	tokens := map[*entity.User]uuid.UUID{}
	for _, u := range []*entity.User{finance, support, inactive} {
		token := uuid.New()
		sessions.sessions[token] = &entity.Session{UserID: u.ID, Token: token}
		tokens[u] = token
	}
	users := stubUsers{users: map[uuid.UUID]*entity.User{finance.ID: finance, support.ID: support, inactive.ID: inactive}}

	chain := AuthSession(sessions, users, zap.NewNop())(
		RequirePermission(entity.PermVerifyPayments, zap.NewNop())(okHandler()),
	)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "malformed token", header: "Bearer not-a-uuid", want: http.StatusUnauthorized},
		{name: "unknown session", header: "Bearer " + uuid.NewString(), want: http.StatusUnauthorized},
		{name: "inactive account", header: "Bearer " + tokens[inactive].String(), want: http.StatusUnauthorized},
		{name: "role lacks permission", header: "Bearer " + tokens[support].String(), want: http.StatusForbidden},
		{name: "role holds permission", header: "Bearer " + tokens[finance].String(), want: http.StatusNoContent},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/api/admin/bookings/x/verify", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			chain.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
