package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", "catalog", time.Minute)
	token, err := m.Generate(UserContext{MerchantID: "m1", BranchID: "b1", UserID: "u1", Role: "admin"})
	require.NoError(t, err)

	u, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, UserContext{MerchantID: "m1", BranchID: "b1", UserID: "u1", Role: "admin"}, u)

	_, err = NewTokenManager("other-secret", "catalog", time.Minute).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewTokenManager("test-secret", "catalog", -time.Minute).Generate(UserContext{MerchantID: "m1"})
	require.NoError(t, err)
	_, err = m.Validate(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestMiddleware(t *testing.T) {
	m := NewTokenManager("test-secret", "catalog", time.Minute)
	var seen UserContext
	h := Middleware(m, func(w http.ResponseWriter, _ *http.Request, _ error) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := m.Generate(UserContext{MerchantID: "m1", BranchID: "b1", UserID: "u1"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Branch-ID", "b2")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "m1", seen.MerchantID)
	assert.Equal(t, "b2", seen.BranchID)
	assert.Equal(t, "u1", seen.UserID)
}

func TestFromContextMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-merchant-id", "m9", "x-branch-id", "b9"))
	assert.Equal(t, "m9", GetMerchantID(ctx))
	assert.Equal(t, "b9", GetBranchID(ctx))
	assert.Equal(t, "", GetUserID(context.Background()))
}
