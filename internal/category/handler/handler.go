package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	uc     category.UseCase
	rs     *httpx.Responder
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, rs *httpx.Responder, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		rs:     rs,
		logger: log,
	}
}

func (h *CategoryHandler) Routes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Post("/", h.rs.Wrap(h.CreateCategory))
		r.Get("/", h.rs.Wrap(h.ListCategories))
		r.Get("/active", h.rs.Wrap(h.ListActive))
		r.Get("/{id}", h.rs.Wrap(h.GetCategory))
		r.Put("/{id}", h.rs.Wrap(h.UpdateCategory))
		r.Delete("/{id}", h.rs.Wrap(h.DeleteCategory))
	})
}

func (h *CategoryHandler) CreateCategory(r *http.Request) (*httpx.Response, error) {
	var input dto.CreateCategoryInput
	if err := httpx.GetRequestData(r, &input); err != nil {
		return nil, err
	}
	input.MerchantID = auth.GetMerchantID(r.Context())

	cat, err := h.uc.CreateCategory(r.Context(), &input)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusCreated, Response: cat}, nil
}

func (h *CategoryHandler) GetCategory(r *http.Request) (*httpx.Response, error) {
	cat, err := h.uc.GetCategory(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: cat}, nil
}

func (h *CategoryHandler) ListCategories(r *http.Request) (*httpx.Response, error) {
	q := r.URL.Query()
	filters := &dto.CategoryFilters{
		MerchantID:      auth.GetMerchantID(r.Context()),
		IncludeChildren: q.Get("include_children") == "true",
		Page:            httpx.QueryInt(r, "page", 1),
		PageSize:        httpx.QueryInt(r, "page_size", 0),
	}
	if q.Has("parent_id") {
		parentID := q.Get("parent_id")
		filters.ParentID = &parentID
	}
	if q.Get("is_active") == "true" {
		active := true
		filters.IsActive = &active
	}

	cats, count, err := h.uc.ListCategories(r.Context(), filters)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: &dto.CategoryList{Categories: cats, Total: count}}, nil
}

func (h *CategoryHandler) ListActive(r *http.Request) (*httpx.Response, error) {
	cats, err := h.uc.ListActive(r.Context(), auth.GetMerchantID(r.Context()))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: &dto.CategoryList{Categories: cats, Total: len(cats)}}, nil
}

func (h *CategoryHandler) UpdateCategory(r *http.Request) (*httpx.Response, error) {
	var input dto.UpdateCategoryInput
	if err := httpx.GetRequestData(r, &input); err != nil {
		return nil, err
	}
	input.ID = chi.URLParam(r, "id")
	input.MerchantID = auth.GetMerchantID(r.Context())

	cat, err := h.uc.UpdateCategory(r.Context(), &input)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: cat}, nil
}

func (h *CategoryHandler) DeleteCategory(r *http.Request) (*httpx.Response, error) {
	if err := h.uc.DeleteCategory(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "id")); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: map[string]bool{"deleted": true}}, nil
}
