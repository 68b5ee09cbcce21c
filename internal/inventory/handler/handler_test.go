package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/stock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUseCase struct {
	adjusted  *dto.AdjustStockInput
	movements *dto.MovementFilters
}

func (f *fakeUseCase) AdjustStock(_ context.Context, input *dto.AdjustStockInput) (*dto.AdjustResult, error) {
	f.adjusted = input
	if input.Quantity <= 0 {
		return nil, apperrors.Validation("quantity_positive", "Quantity must be greater than 0", nil)
	}
	return &dto.AdjustResult{
		Variant:  &model.Variant{BaseModel: model.BaseModel{ID: input.VariantID}, Quantity: 1},
		Level:    stock.LevelLow,
		LowStock: true,
		Warnings: []apperrors.Notice{{
			MessageID: "identifier_exists",
			Message:   "IMEI 111 already exists in system",
			Data:      map[string]interface{}{"Value": "111"},
		}},
	}, nil
}

func (f *fakeUseCase) ApplySale(context.Context, *dto.SaleInput) error { return nil }

func (f *fakeUseCase) ListMovements(_ context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	f.movements = filters
	return nil, 0, nil
}

func (f *fakeUseCase) ListLowStock(context.Context, *dto.LowStockFilters) ([]dto.LowStockItem, int, error) {
	return []dto.LowStockItem{{ProductName: "Phone X"}}, 1, nil
}

func newRouter(t *testing.T, uc *fakeUseCase) http.Handler {
	t.Helper()
	tr, err := i18n.New("en")
	require.NoError(t, err)
	h := NewInventoryHandler(uc, httpx.NewResponder(tr, logger.NewNop()))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := auth.UserContext{MerchantID: "m1", UserID: "u1"}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	})
	r.Route("/products/{productID}", h.Routes)
	h.MerchantRoutes(r)
	return r
}

func TestAdjustStock(t *testing.T) {
	uc := &fakeUseCase{}
	rec := httptest.NewRecorder()
	body := `{"variant_id":"v1","kind":"out","quantity":2,"reason":"damage"}`
	newRouter(t, uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/p1/stock-adjustments", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", uc.adjusted.ProductID)
	assert.Equal(t, "m1", uc.adjusted.MerchantID)
	assert.Equal(t, "u1", uc.adjusted.UserID)
	assert.Equal(t, stock.AdjustOut, uc.adjusted.Kind)

	var rsp struct {
		Data struct {
			LowStock bool     `json:"low_stock"`
			Messages []string `json:"messages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	assert.True(t, rsp.Data.LowStock)
	assert.Equal(t, []string{"IMEI 111 already exists in system"}, rsp.Data.Messages)
}

func TestAdjustStockInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"variant_id":"v1","kind":"in","quantity":0,"reason":"purchase"}`
	newRouter(t, &fakeUseCase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/p1/stock-adjustments", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Quantity must be greater than 0")
}

func TestListMovements(t *testing.T) {
	uc := &fakeUseCase{}
	router := newRouter(t, uc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inventory/movements?product_id=p2&start_date=2024-03-01", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p2", uc.movements.ProductID)
	require.NotNil(t, uc.movements.StartDate)
	assert.Equal(t, 2024, uc.movements.StartDate.Year())
	assert.Contains(t, rec.Body.String(), `"movements":[]`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inventory/movements?end_date=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLowStock(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, &fakeUseCase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inventory/low-stock", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"product_name":"Phone X"`)
}
