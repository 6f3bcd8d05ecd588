package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	adminSubject  = "admin"
	adminTokenTTL = 12 * time.Hour
)

// AdminAuth issues and verifies the bearer tokens that guard admin routes.
type AdminAuth struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewAdminAuth(secret string) *AdminAuth {
	return &AdminAuth{Secret: []byte(secret), TTL: adminTokenTTL, now: time.Now}
}

// GenerateToken creates an HS256 admin token valid for TTL.
func (a *AdminAuth) GenerateToken() (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.TTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.Secret)
}

// Middleware rejects requests without a valid admin bearer token.
func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
			return
		}

		var claims jwt.RegisteredClaims
		token, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.Secret, nil
		}, jwt.WithTimeFunc(a.now))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", r)
			} else {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", r)
			}
			return
		}

		if !token.Valid || claims.Subject != adminSubject {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token claims", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
