package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/image"
	"github.com/fekuna/omnipos-catalog-service/internal/image/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

type ImageHandler struct {
	uc image.UseCase
	rs *httpx.Responder
}

func NewImageHandler(uc image.UseCase, rs *httpx.Responder) *ImageHandler {
	return &ImageHandler{uc: uc, rs: rs}
}

// Routes mounts under /products/{productID}.
func (h *ImageHandler) Routes(r chi.Router) {
	r.Route("/images", func(r chi.Router) {
		r.Get("/", h.rs.Wrap(h.ListImages))
		r.Post("/", h.rs.Wrap(h.AddImage))
		r.Delete("/{imageID}", h.rs.Wrap(h.DeleteImage))
		r.Put("/{imageID}/primary", h.rs.Wrap(h.SetPrimary))
	})
}

func (h *ImageHandler) ListImages(r *http.Request) (*httpx.Response, error) {
	images, err := h.uc.ListImages(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: images}, nil
}

func (h *ImageHandler) AddImage(r *http.Request) (*httpx.Response, error) {
	var input dto.AddImageInput
	if err := httpx.GetRequestData(r, &input); err != nil {
		return nil, err
	}
	input.MerchantID = auth.GetMerchantID(r.Context())
	input.ProductID = chi.URLParam(r, "productID")

	img, err := h.uc.AddImage(r.Context(), &input)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusCreated, Response: img}, nil
}

func (h *ImageHandler) DeleteImage(r *http.Request) (*httpx.Response, error) {
	err := h.uc.DeleteImage(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "productID"), chi.URLParam(r, "imageID"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: map[string]bool{"deleted": true}}, nil
}

func (h *ImageHandler) SetPrimary(r *http.Request) (*httpx.Response, error) {
	err := h.uc.SetPrimary(r.Context(), auth.GetMerchantID(r.Context()), chi.URLParam(r, "productID"), chi.URLParam(r, "imageID"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{Response: map[string]bool{"primary": true}}, nil
}
