package handler

import (
	"net/http"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

type InventoryHandler struct {
	uc inventory.UseCase
	rs *httpx.Responder
}

func NewInventoryHandler(uc inventory.UseCase, rs *httpx.Responder) *InventoryHandler {
	return &InventoryHandler{uc: uc, rs: rs}
}

// Routes mounts under /products/{productID}.
func (h *InventoryHandler) Routes(r chi.Router) {
	r.Post("/stock-adjustments", h.rs.Wrap(h.AdjustStock))
	r.Get("/stock-movements", h.rs.Wrap(h.ListMovements))
	r.Get("/low-stock", h.rs.Wrap(h.ListLowStock))
}

func (h *InventoryHandler) MerchantRoutes(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/movements", h.rs.Wrap(h.ListMovements))
		r.Get("/low-stock", h.rs.Wrap(h.ListLowStock))
	})
}

type adjustResponse struct {
	*dto.AdjustResult
	Messages []string `json:"messages,omitempty"`
}

func (h *InventoryHandler) AdjustStock(r *http.Request) (*httpx.Response, error) {
	var input dto.AdjustStockInput
	if err := httpx.GetRequestData(r, &input); err != nil {
		return nil, err
	}
	ctx := r.Context()
	input.MerchantID = auth.GetMerchantID(ctx)
	input.UserID = auth.GetUserID(ctx)
	input.ProductID = chi.URLParam(r, "productID")

	res, err := h.uc.AdjustStock(ctx, &input)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: adjustResponse{
		AdjustResult: res,
		Messages:     h.rs.Notices(r, res.Warnings),
	}}, nil
}

func (h *InventoryHandler) ListMovements(r *http.Request) (*httpx.Response, error) {
	q := r.URL.Query()
	filters := &dto.MovementFilters{
		MerchantID:   auth.GetMerchantID(r.Context()),
		ProductID:    chi.URLParam(r, "productID"),
		VariantID:    q.Get("variant_id"),
		MovementType: q.Get("movement_type"),
		Page:         httpx.QueryInt(r, "page", 1),
		PageSize:     httpx.QueryInt(r, "page_size", 50),
	}
	if filters.ProductID == "" {
		filters.ProductID = q.Get("product_id")
	}
	var err error
	if filters.StartDate, err = queryDate(r, "start_date"); err != nil {
		return nil, err
	}
	if filters.EndDate, err = queryDate(r, "end_date"); err != nil {
		return nil, err
	}

	items, count, err := h.uc.ListMovements(r.Context(), filters)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.StockMovement{}
	}
	return &httpx.Response{Response: &dto.MovementList{Movements: items, Total: count}}, nil
}

func (h *InventoryHandler) ListLowStock(r *http.Request) (*httpx.Response, error) {
	filters := &dto.LowStockFilters{
		MerchantID: auth.GetMerchantID(r.Context()),
		ProductID:  chi.URLParam(r, "productID"),
		Page:       httpx.QueryInt(r, "page", 1),
		PageSize:   httpx.QueryInt(r, "page_size", 50),
	}
	items, count, err := h.uc.ListLowStock(r.Context(), filters)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []dto.LowStockItem{}
	}
	return &httpx.Response{Response: &dto.LowStockList{Items: items, Total: count}}, nil
}

// queryDate reads a YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, apperrors.FieldInvalid(name, "must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}
