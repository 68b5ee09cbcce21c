package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-catalog-service/internal/attribute"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/variant"
	"github.com/fekuna/omnipos-catalog-service/internal/variant/dto"
	"github.com/go-chi/chi/v5"
)

type VariantHandler struct {
	uc variant.UseCase
	rs *httpx.Responder
}

func NewVariantHandler(uc variant.UseCase, rs *httpx.Responder) *VariantHandler {
	return &VariantHandler{uc: uc, rs: rs}
}

// Routes mounts under /products/{productID}.
func (h *VariantHandler) Routes(r chi.Router) {
	r.Route("/variants", func(r chi.Router) {
		r.Get("/", h.rs.Wrap(h.ListVariants))
		r.Post("/", h.rs.Wrap(h.AddVariant))
		r.Put("/{variantID}", h.rs.Wrap(h.UpdateVariant))
		r.Delete("/{variantID}", h.rs.Wrap(h.DeleteVariant))
		r.Get("/{variantID}/children", h.rs.Wrap(h.ListChildren))
		r.Post("/{variantID}/children", h.rs.Wrap(h.RegisterChildren))
	})
}

func (h *VariantHandler) IdentifierRoutes(r chi.Router) {
	r.Get("/identifiers/{value}/exists", h.rs.Wrap(h.IdentifierExists))
	r.Get("/attributes/suggestions", h.rs.Wrap(h.SuggestAttribute))
}

func (h *VariantHandler) ListVariants(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	variants, err := h.uc.ListVariants(ctx, auth.GetMerchantID(ctx), chi.URLParam(r, "productID"))
	if err != nil {
		return nil, err
	}
	if variants == nil {
		variants = []model.Variant{}
	}
	return &httpx.Response{Response: variants}, nil
}

func (h *VariantHandler) AddVariant(r *http.Request) (*httpx.Response, error) {
	var input dto.AddVariantInput
	if err := httpx.GetRequestData(r, &input); err != nil {
		return nil, err
	}
	ctx := r.Context()
	input.MerchantID = auth.GetMerchantID(ctx)
	input.BranchID = auth.GetBranchID(ctx)
	input.ProductID = chi.URLParam(r, "productID")

	v, err := h.uc.AddVariant(ctx, &input)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusCreated, Response: v}, nil
}

func (h *VariantHandler) UpdateVariant(r *http.Request) (*httpx.Response, error) {
	var input dto.UpdateVariantInput
	if err := httpx.GetRequestData(r, &input); err != nil {
		return nil, err
	}
	ctx := r.Context()
	input.ID = chi.URLParam(r, "variantID")
	input.MerchantID = auth.GetMerchantID(ctx)
	input.ProductID = chi.URLParam(r, "productID")

	v, err := h.uc.UpdateVariant(ctx, &input)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: v}, nil
}

func (h *VariantHandler) DeleteVariant(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	err := h.uc.DeleteVariant(ctx, auth.GetMerchantID(ctx), chi.URLParam(r, "productID"), chi.URLParam(r, "variantID"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: map[string]bool{"deleted": true}}, nil
}

func (h *VariantHandler) ListChildren(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	children, err := h.uc.ListChildren(ctx, auth.GetMerchantID(ctx), chi.URLParam(r, "variantID"))
	if err != nil {
		return nil, err
	}
	if children == nil {
		children = []model.Variant{}
	}
	return &httpx.Response{Response: children}, nil
}

type childrenResponse struct {
	*dto.ChildrenResult
	Messages []string `json:"messages,omitempty"`
}

func (h *VariantHandler) RegisterChildren(r *http.Request) (*httpx.Response, error) {
	var input dto.RegisterChildrenInput
	if err := httpx.GetRequestData(r, &input); err != nil {
		return nil, err
	}
	ctx := r.Context()
	input.MerchantID = auth.GetMerchantID(ctx)
	input.ProductID = chi.URLParam(r, "productID")
	input.ParentID = chi.URLParam(r, "variantID")

	result, err := h.uc.RegisterChildren(ctx, &input)
	if err != nil {
		return nil, err
	}
	status := http.StatusCreated
	if result.Created == 0 {
		status = http.StatusOK
	}
	return &httpx.Response{
		StatusCode: status,
		Response:   &childrenResponse{ChildrenResult: result, Messages: h.rs.Notices(r, result.Notices())},
	}, nil
}

func (h *VariantHandler) IdentifierExists(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	exists, err := h.uc.IdentifierExists(ctx, auth.GetMerchantID(ctx), chi.URLParam(r, "value"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: map[string]bool{"exists": exists}}, nil
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Boolean     bool     `json:"boolean"`
}

// SuggestAttribute completes the value of the attribute named by ?name=.
func (h *VariantHandler) SuggestAttribute(r *http.Request) (*httpx.Response, error) {
	q := r.URL.Query()
	name := q.Get("name")
	suggestions := attribute.Suggest(name, q.Get("value"))
	if suggestions == nil {
		suggestions = []string{}
	}
	return &httpx.Response{Response: &suggestionsResponse{
		Suggestions: suggestions,
		Boolean:     attribute.IsBooleanAttribute(name),
	}}, nil
}
