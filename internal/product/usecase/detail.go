package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/attribute"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/stock"
	"github.com/fekuna/omnipos-catalog-service/internal/variantview"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9]`)

type detailSources struct {
	variants   []model.Variant
	images     []model.ProductImage
	category   *model.Category
	orders     []model.PurchaseOrderHistory
	orderStats *model.PurchaseOrderStats
}

// load reads everything the detail view needs in parallel. Only the
// variants are required; the other sources degrade to empty.
func (uc *productUseCase) load(ctx context.Context, p *model.Product) (*detailSources, error) {
	var src detailSources
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		variants, err := uc.repo.ListVariants(gctx, p.ID)
		if err != nil {
			return err
		}
		src.variants = variants
		return nil
	})
	if uc.images != nil {
		g.Go(func() error {
			images, err := uc.images.ListImages(gctx, p.MerchantID, p.ID)
			if err != nil {
				uc.logger.Warn("failed to load images", zap.String("product_id", p.ID), zap.Error(err))
				return nil
			}
			src.images = images
			return nil
		})
	}
	if uc.categories != nil && p.CategoryID != nil {
		g.Go(func() error {
			cats, err := uc.categories.ListActive(gctx, p.MerchantID)
			if err != nil {
				uc.logger.Warn("failed to load categories", zap.String("product_id", p.ID), zap.Error(err))
				return nil
			}
			for i := range cats {
				if cats[i].ID == *p.CategoryID {
					src.category = &cats[i]
					break
				}
			}
			return nil
		})
	}
	if uc.orders != nil {
		g.Go(func() error {
			history, err := uc.orders.History(gctx, p.MerchantID, p.ID)
			if err != nil {
				uc.logger.Warn("failed to load purchase history", zap.String("product_id", p.ID), zap.Error(err))
				return nil
			}
			src.orders = history
			return nil
		})
		g.Go(func() error {
			stats, err := uc.orders.Stats(gctx, p.MerchantID, p.ID)
			if err != nil {
				uc.logger.Warn("failed to load purchase stats", zap.String("product_id", p.ID), zap.Error(err))
				return nil
			}
			src.orderStats = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &src, nil
}

func (uc *productUseCase) GetProductDetail(ctx context.Context, merchantID, id string) (*dto.Detail, error) {
	ctx, span := tracer.Start(ctx, "product.GetProductDetail")
	defer span.End()

	p, err := uc.GetProduct(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	src, err := uc.load(ctx, p)
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("failed to load product variants", zap.String("product_id", p.ID), zap.Error(err))
		return nil, apperrors.FromBackend(err, nil)
	}

	variants := variantview.ParentsOnly(src.variants)
	if len(variants) == 0 {
		return nil, noVariants(p)
	}
	p.Variants = variants
	p.Category = src.category

	lines := stock.LinesFrom(variants)
	analytics := stock.Summarize(lines)
	children := countChildren(src.variants)

	detail := &dto.Detail{
		Product: p,
		Overview: dto.Overview{
			PrimaryVariant: stock.PrimaryVariant(variants),
			Category:       src.category,
			Condition:      p.Condition(),
			Specifications: specFields(p.Specification()),
			Images:         src.images,
			QRPayload:      uc.qrPayload(p, variants),
		},
		Financials: dto.Financials{
			Analytics:     analytics,
			Profitability: stock.Profitability(variants, variantview.IndexedName),
		},
		Inventory: dto.Inventory{
			Status:        analytics.StockStatus,
			TotalQuantity: p.TotalQuantity,
			TotalValue:    p.TotalValue,
			StorageRoomID: p.StorageRoomID,
			ShelfID:       p.ShelfID,
		},
		TradeIn: dto.TradeIn{
			IsTradeIn:  variantview.IsTradeInProduct(src.variants),
			VariantIDs: []string{},
		},
		History: dto.History{
			Orders: src.orders,
			Stats:  src.orderStats,
		},
	}

	for i, v := range variants {
		name := variantview.IndexedName(i, v)
		badge := stock.BadgeFor(v.Quantity, v.MinQuantity)
		detail.Inventory.Rows = append(detail.Inventory.Rows, dto.InventoryRow{
			VariantID:   v.ID,
			Name:        name,
			Quantity:    v.Quantity,
			MinQuantity: v.MinQuantity,
			Badge:       badge,
			Level:       stock.Level(v.Quantity, v.MinQuantity, v.MaxQuantity),
		})
		detail.Variants = append(detail.Variants, dto.VariantRow{
			Variant:     v,
			DisplayName: name,
			Identifier:  variantview.Identifier(v),
			Source:      variantview.SourceBadge(v),
			Attributes:  variantview.FormatAttributes(v),
			Badge:       badge,
			Children:    children[v.ID],
		})
	}
	for _, v := range src.variants {
		if variantview.IsTradeInVariant(v) {
			detail.TradeIn.VariantIDs = append(detail.TradeIn.VariantIDs, v.ID)
		}
	}
	return detail, nil
}

func noVariants(p *model.Product) *apperrors.Error {
	return apperrors.Validation("no_variants",
		fmt.Sprintf("Product %q has no variants configured. Please add at least one variant before viewing details.", p.Name),
		map[string]interface{}{"Name": p.Name})
}

// countChildren counts the in-stock unit rows under each parent.
func countChildren(variants []model.Variant) map[string]int {
	out := map[string]int{}
	for _, v := range variants {
		if !variantview.IsChild(v) || v.ParentVariantID == nil {
			continue
		}
		if v.IsActive && v.Quantity > 0 {
			out[*v.ParentVariantID]++
		}
	}
	return out
}

func specFields(text string) []dto.SpecField {
	spec := attribute.ParseSpecification(text)
	fields := make([]dto.SpecField, 0, len(spec))
	for _, k := range attribute.SpecificationKeys(spec) {
		label := variantview.Label(k)
		if k == attribute.RawKey {
			label = "Specification"
		}
		fields = append(fields, dto.SpecField{Key: k, Label: label, Value: attribute.FormatValue(k, spec[k])})
	}
	return fields
}

func (uc *productUseCase) detailsURL(id string) string {
	return fmt.Sprintf("%s/lats/products/%s/edit", strings.TrimRight(uc.cfg.AppURL, "/"), id)
}

func (uc *productUseCase) qrPayload(p *model.Product, variants []model.Variant) string {
	sku, price := "N/A", 0.0
	if primary := stock.PrimaryVariant(variants); primary != nil {
		if primary.SKU != "" {
			sku = primary.SKU
		}
		price = primary.SellingPrice
	}
	return fmt.Sprintf("Product: %s\nSKU: %s\nPrice: %s\nDetails: %s",
		p.Name, sku, decimal.NewFromFloat(price).StringFixed(2), uc.detailsURL(p.ID))
}

// QRCode renders the product label both as a PNG and as a link to the
// external QR service.
func (uc *productUseCase) QRCode(ctx context.Context, merchantID, id string) (*dto.QRCode, error) {
	p, err := uc.GetProduct(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	rows, err := uc.repo.ListVariants(ctx, p.ID)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}

	payload := uc.qrPayload(p, variantview.ParentsOnly(rows))
	png, err := qrcode.Encode(payload, qrcode.Medium, 300)
	if err != nil {
		uc.logger.Error("failed to render qr code", zap.String("product_id", p.ID), zap.Error(err))
		return nil, apperrors.Generic(err)
	}
	return &dto.QRCode{
		Payload: payload,
		URL:     uc.cfg.QRBaseURL + "?size=300x300&data=" + url.QueryEscape(payload),
		PNG:     png,
	}, nil
}

func (uc *productUseCase) Export(ctx context.Context, merchantID, id string) (*dto.Export, error) {
	p, err := uc.GetProduct(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	src, err := uc.load(ctx, p)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}

	variants := variantview.ParentsOnly(src.variants)
	now := time.Now()
	doc := dto.ExportDocument{
		Name:          p.Name,
		SKU:           p.SKU,
		CategoryID:    deref(p.CategoryID),
		Condition:     string(p.Condition()),
		Description:   deref(p.Description),
		Specification: p.Specification(),
		StockQuantity: p.TotalQuantity,
		MinStockLevel: p.MinStockLevel,
		StorageRoomID: deref(p.StorageRoomID),
		ShelfID:       deref(p.ShelfID),
		Images:        make([]string, 0, len(src.images)),
		Metadata:      p.Metadata,
		Variants:      make([]dto.ExportVariant, 0, len(variants)),
		ExportedAt:    now,
	}
	if primary := stock.PrimaryVariant(variants); primary != nil {
		doc.Price = primary.SellingPrice
		doc.CostPrice = primary.CostPrice
	}
	for _, img := range src.images {
		doc.Images = append(doc.Images, img.URL)
	}
	for i, v := range variants {
		doc.Variants = append(doc.Variants, dto.ExportVariant{
			Name:         variantview.IndexedName(i, v),
			SKU:          v.SKU,
			CostPrice:    v.CostPrice,
			SellingPrice: v.SellingPrice,
			Quantity:     v.Quantity,
			MinQuantity:  v.MinQuantity,
			Attributes:   v.MergedAttributes(),
		})
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, apperrors.Generic(err)
	}
	return &dto.Export{Filename: exportFilename(p.Name, now), Body: body}, nil
}

func exportFilename(name string, at time.Time) string {
	return fmt.Sprintf("%s_export_%s.json", unsafeFilename.ReplaceAllString(name, "_"), at.Format("2006-01-02"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
