package middleware

import (
	"crypto/subtle"
	"net/http"

	"travel-booking/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ServiceRole is the role claim a scheduler token must carry.
const ServiceRole = "service_role"

// CronAuth admits the scheduler when it presents either the shared secret in
// X-Cron-Secret or an HS256 token signed with the service key whose role
// claim is ServiceRole. An unset secret never matches.
func CronAuth(cfg utils.CronConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secretMatches(cfg.Secret, r.Header.Get("X-Cron-Secret")) {
				next.ServeHTTP(w, r)
				return
			}

			if token, ok := bearerToken(r); ok && validServiceToken(cfg.ServiceJWTSecret, token) {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("Rejected job trigger",
				zap.String("path", r.URL.Path),
				zap.String("ip", r.RemoteAddr))
			utils.ResponseUnauthorized(w, "Unauthorized")
		})
	}
}

func secretMatches(want, got string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

type serviceClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func validServiceToken(key, raw string) bool {
	if key == "" {
		return false
	}
	claims := &serviceClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(key), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return false
	}
	return claims.Role == ServiceRole
}
