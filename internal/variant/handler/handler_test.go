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
	"github.com/fekuna/omnipos-catalog-service/internal/variant/dto"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUseCase struct {
	added    *dto.AddVariantInput
	updated  *dto.UpdateVariantInput
	children *dto.RegisterChildrenInput
	known    map[string]bool
}

func (f *fakeUseCase) ListVariants(context.Context, string, string) ([]model.Variant, error) {
	return nil, nil
}

func (f *fakeUseCase) AddVariant(_ context.Context, input *dto.AddVariantInput) (*model.Variant, error) {
	f.added = input
	if input.SKU == "taken" {
		return nil, apperrors.Conflict("variant_sku_exists", "SKU already exists", nil)
	}
	return &model.Variant{BaseModel: model.BaseModel{ID: "v9"}, ProductID: input.ProductID, Name: input.Name}, nil
}

func (f *fakeUseCase) UpdateVariant(_ context.Context, input *dto.UpdateVariantInput) (*model.Variant, error) {
	f.updated = input
	return &model.Variant{BaseModel: model.BaseModel{ID: input.ID}, Name: input.Name}, nil
}

func (f *fakeUseCase) DeleteVariant(context.Context, string, string, string) error {
	return apperrors.Validation("last_variant", "Cannot delete the last remaining variant of a product", nil)
}

func (f *fakeUseCase) RegisterChildren(_ context.Context, input *dto.RegisterChildrenInput) (*dto.ChildrenResult, error) {
	f.children = input
	res := &dto.ChildrenResult{ParentID: input.ParentID}
	for _, e := range input.Entries {
		if f.known[e.IMEI] {
			res.Failed++
			res.Outcomes = append(res.Outcomes, dto.ChildOutcome{
				Identifier: e.IMEI,
				Error: &apperrors.Notice{
					MessageID: "identifier_exists",
					Message:   "IMEI " + e.IMEI + " already exists in system",
					Data:      map[string]interface{}{"Value": e.IMEI},
				},
			})
			continue
		}
		res.Created++
		res.Outcomes = append(res.Outcomes, dto.ChildOutcome{Identifier: e.IMEI, ChildID: "c-" + e.IMEI})
	}
	return res, nil
}

func (f *fakeUseCase) IdentifierExists(_ context.Context, merchantID, value string) (bool, error) {
	return merchantID == "m1" && f.known[value], nil
}

func (f *fakeUseCase) ListChildren(context.Context, string, string) ([]model.Variant, error) {
	return nil, nil
}

func (f *fakeUseCase) MarkChildSold(context.Context, string, string, string) error { return nil }

func (f *fakeUseCase) RetireChildren(context.Context, string, string, []string) error { return nil }

func newRouter(t *testing.T, uc *fakeUseCase) http.Handler {
	t.Helper()
	tr, err := i18n.New("en")
	require.NoError(t, err)
	h := NewVariantHandler(uc, httpx.NewResponder(tr, logger.NewNop()))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := auth.UserContext{MerchantID: "m1", BranchID: "b1", UserID: "u1"}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	})
	r.Route("/products/{productID}", h.Routes)
	h.IdentifierRoutes(r)
	return r
}

func TestAddVariant(t *testing.T) {
	uc := &fakeUseCase{}
	router := newRouter(t, uc)

	rec := httptest.NewRecorder()
	body := `{"name":"128GB","sku":"PX-128","cost_price":80,"selling_price":120}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/p1/variants/", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "p1", uc.added.ProductID)
	assert.Equal(t, "m1", uc.added.MerchantID)
	assert.Equal(t, "b1", uc.added.BranchID)

	rec = httptest.NewRecorder()
	body = `{"name":"256GB","sku":"taken"}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/p1/variants/", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "SKU already exists")
}

func TestUpdateAndDeleteVariant(t *testing.T) {
	uc := &fakeUseCase{}
	router := newRouter(t, uc)

	rec := httptest.NewRecorder()
	body := `{"name":"Black","sku":"PX-B"}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/products/p1/variants/v1", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", uc.updated.ID)
	assert.Equal(t, "p1", uc.updated.ProductID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/products/p1/variants/v1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"last_variant"`)
}

func TestRegisterChildren(t *testing.T) {
	uc := &fakeUseCase{known: map[string]bool{"111": true}}
	rec := httptest.NewRecorder()
	body := `{"entries":[{"imei":"111"},{"imei":"222"}]}`
	newRouter(t, uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/p1/variants/v1/children", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "v1", uc.children.ParentID)

	var rsp struct {
		Data struct {
			Created  int      `json:"created"`
			Failed   int      `json:"failed"`
			Messages []string `json:"messages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	assert.Equal(t, 1, rsp.Data.Created)
	assert.Equal(t, 1, rsp.Data.Failed)
	assert.Equal(t, []string{"IMEI 111 already exists in system"}, rsp.Data.Messages)
}

func TestRegisterChildrenNoneCreated(t *testing.T) {
	uc := &fakeUseCase{known: map[string]bool{"111": true}}
	rec := httptest.NewRecorder()
	body := `{"entries":[{"imei":"111"}]}`
	newRouter(t, uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/p1/variants/v1/children", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdentifierExists(t *testing.T) {
	router := newRouter(t, &fakeUseCase{known: map[string]bool{"111": true}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/identifiers/111/exists", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"exists":true`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/identifiers/999/exists", nil))
	assert.Contains(t, rec.Body.String(), `"exists":false`)
}

func TestSuggestAttribute(t *testing.T) {
	router := newRouter(t, &fakeUseCase{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attributes/suggestions?name=ram&value=8", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rsp struct {
		Data suggestionsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	assert.Contains(t, rsp.Data.Suggestions, "8GB")
	assert.False(t, rsp.Data.Boolean)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attributes/suggestions?name=waterproof&value=y", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	assert.Equal(t, []string{"Yes"}, rsp.Data.Suggestions)
	assert.True(t, rsp.Data.Boolean)
}
