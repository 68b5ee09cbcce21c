package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SubRoutes registers routes that live under /products/{productID}.
type SubRoutes interface {
	Routes(r chi.Router)
}

type ProductHandler struct {
	uc     product.UseCase
	rs     *httpx.Responder
	nested []SubRoutes
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, rs *httpx.Responder, log logger.ZapLogger, nested ...SubRoutes) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		rs:     rs,
		nested: nested,
		logger: log,
	}
}

func (h *ProductHandler) Routes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.rs.Wrap(h.CreateProduct))
		r.Get("/", h.rs.Wrap(h.ListProducts))
		r.Get("/search", h.rs.Wrap(h.SearchProducts))

		r.Route("/{productID}", func(r chi.Router) {
			r.Get("/", h.rs.Wrap(h.GetProduct))
			r.Put("/", h.rs.Wrap(h.UpdateProduct))
			r.Delete("/", h.rs.Wrap(h.DeleteProduct))
			r.Get("/detail", h.rs.Wrap(h.GetProductDetail))
			r.Put("/storage-location", h.rs.Wrap(h.UpdateStorageLocation))
			r.Get("/qr", h.rs.Wrap(h.QRCode))
			r.Get("/qr.png", h.rs.Wrap(h.QRCodePNG))
			r.Get("/export", h.rs.Wrap(h.Export))
			for _, sub := range h.nested {
				sub.Routes(r)
			}
		})
	})
}

type createResponse struct {
	*dto.CreateResult
	Messages []string `json:"messages,omitempty"`
}

func (h *ProductHandler) CreateProduct(r *http.Request) (*httpx.Response, error) {
	var input dto.CreateProductInput
	if err := httpx.GetRequestData(r, &input); err != nil {
		return nil, err
	}
	ctx := r.Context()
	input.MerchantID = auth.GetMerchantID(ctx)
	input.BranchID = auth.GetBranchID(ctx)
	input.UserID = auth.GetUserID(ctx)

	res, err := h.uc.CreateProduct(ctx, &input)
	if err != nil {
		return nil, err
	}
	if len(res.Warnings) > 0 {
		h.logger.Warn("product created with warnings",
			zap.String("product_id", res.Product.ID),
			zap.Int("warnings", len(res.Warnings)),
		)
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Response:   createResponse{CreateResult: res, Messages: h.rs.Notices(r, res.Warnings)},
	}, nil
}

func (h *ProductHandler) GetProduct(r *http.Request) (*httpx.Response, error) {
	p, err := h.uc.GetProduct(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: p}, nil
}

func (h *ProductHandler) ListProducts(r *http.Request) (*httpx.Response, error) {
	q := r.URL.Query()
	filters := &dto.ProductFilters{
		MerchantID:  auth.GetMerchantID(r.Context()),
		CategoryID:  q.Get("category_id"),
		SearchQuery: q.Get("q"),
		SortBy:      q.Get("sort_by"),
		SortOrder:   q.Get("sort_order"),
		Page:        httpx.QueryInt(r, "page", 1),
		PageSize:    httpx.QueryInt(r, "page_size", 20),
	}
	if v := q.Get("is_active"); v != "" {
		if active, err := strconv.ParseBool(v); err == nil {
			filters.IsActive = &active
		}
	}

	products, count, err := h.uc.ListProducts(r.Context(), filters)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: &dto.ProductList{Products: products, Total: count}}, nil
}

func (h *ProductHandler) SearchProducts(r *http.Request) (*httpx.Response, error) {
	query := r.URL.Query().Get("q")
	if query == "" {
		return nil, apperrors.FieldInvalid("q", "is required")
	}
	filters := &dto.ProductFilters{
		MerchantID:  auth.GetMerchantID(r.Context()),
		SearchQuery: query,
		Page:        1,
		PageSize:    httpx.QueryInt(r, "limit", 20),
	}

	products, count, err := h.uc.ListProducts(r.Context(), filters)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: &dto.ProductList{Products: products, Total: count}}, nil
}

func (h *ProductHandler) UpdateProduct(r *http.Request) (*httpx.Response, error) {
	var input dto.UpdateProductInput
	if err := httpx.GetRequestData(r, &input); err != nil {
		return nil, err
	}
	input.ID = chi.URLParam(r, "productID")
	input.MerchantID = auth.GetMerchantID(r.Context())

	p, err := h.uc.UpdateProduct(r.Context(), &input)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: p}, nil
}

func (h *ProductHandler) DeleteProduct(r *http.Request) (*httpx.Response, error) {
	if err := h.uc.DeleteProduct(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "productID")); err != nil {
		return nil, err
	}
	return &httpx.Response{Response: map[string]bool{"deleted": true}}, nil
}

func (h *ProductHandler) GetProductDetail(r *http.Request) (*httpx.Response, error) {
	detail, err := h.uc.GetProductDetail(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: detail}, nil
}

func (h *ProductHandler) UpdateStorageLocation(r *http.Request) (*httpx.Response, error) {
	var input dto.StorageLocationInput
	if err := httpx.GetRequestData(r, &input); err != nil {
		return nil, err
	}
	input.ID = chi.URLParam(r, "productID")
	input.MerchantID = auth.GetMerchantID(r.Context())

	if err := h.uc.UpdateStorageLocation(r.Context(), &input); err != nil {
		return nil, err
	}
	return &httpx.Response{Response: map[string]string{
		"storage_room_id": input.StorageRoomID,
		"shelf_id":        input.ShelfID,
	}}, nil
}

func (h *ProductHandler) QRCode(r *http.Request) (*httpx.Response, error) {
	qr, err := h.uc.QRCode(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: qr}, nil
}

func (h *ProductHandler) QRCodePNG(r *http.Request) (*httpx.Response, error) {
	qr, err := h.uc.QRCode(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{ContentType: "image/png", Body: qr.PNG}, nil
}

func (h *ProductHandler) Export(r *http.Request) (*httpx.Response, error) {
	export, err := h.uc.Export(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		ContentType: "application/json",
		Body:        export.Body,
		Filename:    export.Filename,
	}, nil
}
