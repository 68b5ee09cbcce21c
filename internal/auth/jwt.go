package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Claims struct {
	MerchantID string `json:"merchant_id"`
	BranchID   string `json:"branch_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Generate signs a token for u. Used by tooling and tests; the POS auth
// service issues tokens in production.
func (m *TokenManager) Generate(u UserContext) (string, error) {
	now := time.Now()
	claims := Claims{
		MerchantID: u.MerchantID,
		BranchID:   u.BranchID,
		Role:       u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   u.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *TokenManager) Validate(token string) (UserContext, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return UserContext{}, ErrExpiredToken
		}
		return UserContext{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.MerchantID == "" {
		return UserContext{}, ErrInvalidToken
	}
	return UserContext{
		MerchantID: claims.MerchantID,
		BranchID:   claims.BranchID,
		UserID:     claims.Subject,
		Role:       claims.Role,
	}, nil
}

// Middleware authenticates the bearer token and stores the caller in the
// request context. An X-Branch-ID header overrides the token's branch.
func Middleware(m *TokenManager, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header || token == "" {
				onError(w, r, apperrors.ErrUnauthenticated)
				return
			}
			u, err := m.Validate(token)
			if err != nil {
				onError(w, r, apperrors.ErrUnauthenticated.WithCause(err))
				return
			}
			if branch := r.Header.Get("X-Branch-ID"); branch != "" {
				u.BranchID = branch
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
