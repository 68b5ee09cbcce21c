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
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUseCase struct {
	created *dto.CreateProductInput
	storage *dto.StorageLocationInput
}

func (f *fakeUseCase) CreateProduct(_ context.Context, input *dto.CreateProductInput) (*dto.CreateResult, error) {
	f.created = input
	return &dto.CreateResult{
		Product: &model.Product{BaseModel: model.BaseModel{ID: "p1"}, Name: input.Name},
		Warnings: []apperrors.Notice{{
			MessageID: "identifier_exists",
			Message:   "IMEI 111 already exists in system",
			Data:      map[string]interface{}{"Value": "111"},
		}},
	}, nil
}

func (f *fakeUseCase) GetProduct(_ context.Context, merchantID, id string) (*model.Product, error) {
	return &model.Product{BaseModel: model.BaseModel{ID: id}, MerchantID: merchantID}, nil
}

func (f *fakeUseCase) ListProducts(_ context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	return []model.Product{{SKU: filters.SearchQuery}}, 1, nil
}

func (f *fakeUseCase) UpdateProduct(context.Context, *dto.UpdateProductInput) (*model.Product, error) {
	return nil, nil
}

func (f *fakeUseCase) DeleteProduct(context.Context, string, string) error { return nil }

func (f *fakeUseCase) UpdateStorageLocation(_ context.Context, input *dto.StorageLocationInput) error {
	f.storage = input
	if input.ShelfID == "" {
		return apperrors.Validation("storage_location_required", "Please select both storage room and shelf", nil)
	}
	return nil
}

func (f *fakeUseCase) GetProductDetail(_ context.Context, _, id string) (*dto.Detail, error) {
	return nil, apperrors.Validation("no_variants", "no variants", map[string]interface{}{"Name": "Phone " + id})
}

func (f *fakeUseCase) QRCode(context.Context, string, string) (*dto.QRCode, error) {
	return &dto.QRCode{Payload: "Product: Phone", URL: "https://qr", PNG: []byte("\x89PNG")}, nil
}

func (f *fakeUseCase) Export(context.Context, string, string) (*dto.Export, error) {
	return &dto.Export{Filename: "Phone_export_2024-01-01.json", Body: []byte(`{"name":"Phone"}`)}, nil
}

type pingRoutes struct{}

func (pingRoutes) Routes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chi.URLParam(r, "productID")))
	})
}

func newRouter(t *testing.T, uc *fakeUseCase) http.Handler {
	t.Helper()
	tr, err := i18n.New("en")
	require.NoError(t, err)
	h := NewProductHandler(uc, httpx.NewResponder(tr, logger.NewNop()), logger.NewNop(), pingRoutes{})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := auth.UserContext{MerchantID: "m1", BranchID: "b1", UserID: "u1"}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	})
	h.Routes(r)
	return r
}

func TestCreateProduct(t *testing.T) {
	uc := &fakeUseCase{}
	router := newRouter(t, uc)

	body := `{"name":"Phone","category_id":"c1","condition":"new","variants":[{"name":"64GB","quantity":1}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.created)
	assert.Equal(t, "m1", uc.created.MerchantID)
	assert.Equal(t, "b1", uc.created.BranchID)
	assert.Equal(t, "u1", uc.created.UserID)
	require.Len(t, uc.created.Variants, 1)

	var rsp struct {
		Result int `json:"result"`
		Data   struct {
			Product  model.Product `json:"product"`
			Messages []string      `json:"messages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	assert.Equal(t, httpx.Success, rsp.Result)
	assert.Equal(t, "p1", rsp.Data.Product.ID)
	assert.Equal(t, []string{"IMEI 111 already exists in system"}, rsp.Data.Messages)
}

func TestCreateProductBadBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, &fakeUseCase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProductDetailError(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, &fakeUseCase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p9/detail", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var rsp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	assert.Equal(t, "no_variants", rsp["code"])
	assert.Contains(t, rsp["error"], `"Phone p9"`)
}

func TestExportAndQR(t *testing.T) {
	router := newRouter(t, &fakeUseCase{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p1/export", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Phone_export_2024-01-01.json"`, rec.Header().Get("Content-Disposition"))
	assert.JSONEq(t, `{"name":"Phone"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p1/qr.png", nil))
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p1/qr", nil))
	assert.Contains(t, rec.Body.String(), `"url":"https://qr"`)
	assert.NotContains(t, rec.Body.String(), "PNG")
}

func TestStorageLocation(t *testing.T) {
	uc := &fakeUseCase{}
	router := newRouter(t, uc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/p1/storage-location", strings.NewReader(`{"storage_room_id":"r1"}`))
	req.Header.Set("Accept-Language", "sw")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Please select both storage room and shelf")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/products/p1/storage-location",
		strings.NewReader(`{"storage_room_id":"r1","shelf_id":"s1"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", uc.storage.ID)
	assert.Equal(t, "m1", uc.storage.MerchantID)
}

func TestNestedRoutes(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, &fakeUseCase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p7/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p7", rec.Body.String())
}
