package repository

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// History returns the purchase-order lines for the product, newest first.
func (r *PGRepository) History(ctx context.Context, merchantID, productID string) ([]model.PurchaseOrderHistory, error) {
	var rows []model.PurchaseOrderHistory
	query := `
        SELECT
            po.id AS order_id,
            po.order_number,
            COALESCE(s.name, '') AS supplier_name,
            poi.variant_id,
            poi.quantity,
            COALESCE(poi.received_quantity, 0) AS received_quantity,
            poi.cost_price,
            COALESCE(po.currency, '') AS currency,
            po.status,
            po.order_date
        FROM purchase_order_items poi
        JOIN purchase_orders po ON po.id = poi.purchase_order_id
        LEFT JOIN suppliers s ON s.id = po.supplier_id
        WHERE poi.product_id = $1 AND po.merchant_id = $2
        ORDER BY po.order_date DESC
    `
	if err := r.DB.SelectContext(ctx, &rows, query, productID, merchantID); err != nil {
		return nil, errors.Wrap(err, "purchaseorder.History")
	}
	return rows, nil
}
