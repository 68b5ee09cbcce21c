package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/purchaseorder"
	"github.com/go-chi/chi/v5"
)

type PurchaseOrderHandler struct {
	uc purchaseorder.UseCase
	rs *httpx.Responder
}

func NewPurchaseOrderHandler(uc purchaseorder.UseCase, rs *httpx.Responder) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc, rs: rs}
}

// Routes mounts under /products/{productID}.
func (h *PurchaseOrderHandler) Routes(r chi.Router) {
	r.Get("/purchase-orders", h.rs.Wrap(h.History))
}

func (h *PurchaseOrderHandler) History(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	rows, err := h.uc.History(ctx, auth.GetMerchantID(ctx), chi.URLParam(r, "productID"))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.PurchaseOrderHistory{}
	}
	return &httpx.Response{Response: rows}, nil
}
