package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/identifier"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/validation"
	"github.com/fekuna/omnipos-catalog-service/internal/stock"
	"github.com/fekuna/omnipos-catalog-service/internal/variant"
	variantdto "github.com/fekuna/omnipos-catalog-service/internal/variant/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/variantview"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("omnipos-catalog/inventory")

const (
	lockTTL       = 5 * time.Second
	lockRetryWait = 100 * time.Millisecond
	referenceSale = "sale"
)

var (
	errQuantityPositive = apperrors.Validation("quantity_positive", "Quantity must be greater than 0", nil)
	errReasonRequired   = apperrors.Validation("reason_required", "Please select a reason", nil)
)

// Locker serializes adjustments of one variant. *cache.RedisClient satisfies it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type inventoryUseCase struct {
	repo     inventory.Repository
	variants variant.UseCase
	locker   Locker
	bus      *events.Bus
	cfg      config.CatalogConfig
	logger   logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, variants variant.UseCase, locker Locker, bus *events.Bus, cfg config.CatalogConfig, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:     repo,
		variants: variants,
		locker:   locker,
		bus:      bus,
		cfg:      cfg,
		logger:   log,
	}
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	items, count, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.FromBackend(err, nil)
	}
	return items, count, nil
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]dto.LowStockItem, int, error) {
	items, count, err := uc.repo.ListLowStock(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.FromBackend(err, nil)
	}
	return items, count, nil
}

func validateAdjustment(input *dto.AdjustStockInput) ([]string, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, errQuantityPositive
	}
	if input.Reason == "" {
		return nil, errReasonRequired
	}
	if !slices.Contains(dto.Reasons, input.Reason) {
		return nil, apperrors.FieldInvalid("reason", "must be one of "+strings.Join(dto.Reasons, " "))
	}

	ids := identifier.Filled(input.Identifiers)
	if len(ids) == 0 {
		return nil, nil
	}
	if input.Kind != stock.AdjustIn {
		return nil, apperrors.FieldInvalid("identifiers", "only accepted when adding stock")
	}
	if len(ids) != input.Quantity {
		return nil, apperrors.Validation("identifier_count_mismatch",
			fmt.Sprintf("If providing IMEI/Serial numbers, please enter one for each of the %d unit(s)", input.Quantity),
			map[string]interface{}{"Quantity": input.Quantity})
	}
	if err := identifier.CheckVariant(identifier.Variant{Quantity: input.Quantity, Identifiers: ids}); err != nil {
		return nil, err
	}
	return ids, nil
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*dto.AdjustResult, error) {
	ctx, span := tracer.Start(ctx, "inventory.AdjustStock")
	defer span.End()
	span.SetAttributes(
		attribute.String("variant.id", input.VariantID),
		attribute.String("adjustment.kind", string(input.Kind)),
		attribute.Int("adjustment.quantity", input.Quantity),
	)

	ids, err := validateAdjustment(input)
	if err != nil {
		return nil, err
	}

	lockKey := fmt.Sprintf("lock:inventory:%s:%s", input.MerchantID, input.VariantID)
	lockValue := uuid.New().String()
	if err := uc.acquire(ctx, lockKey, lockValue); err != nil {
		return nil, err
	}
	defer uc.release(ctx, lockKey, lockValue)

	v, err := uc.repo.FindVariant(ctx, input.MerchantID, input.VariantID)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	if v == nil || (input.ProductID != "" && v.ProductID != input.ProductID) {
		return nil, apperrors.VariantNotFound(input.VariantID)
	}
	if variantview.IsChild(*v) {
		return nil, apperrors.FieldInvalid("variant_id", "unit rows are adjusted through their parent")
	}
	if input.Kind == stock.AdjustOut && input.Quantity > v.Quantity {
		name := variantview.DisplayName(*v, v.SKU)
		return nil, apperrors.Validation("insufficient_stock",
			fmt.Sprintf("Insufficient stock for variant %q", name),
			map[string]interface{}{"Variant": name})
	}

	previous := v.Quantity
	v.Quantity = stock.NewLevel(previous, input.Kind, input.Quantity)
	trim, err := uc.trimUnits(ctx, input, v, previous)
	if err != nil {
		return nil, err
	}
	movement := &model.StockMovement{
		ID:               uuid.New().String(),
		MerchantID:       input.MerchantID,
		ProductID:        v.ProductID,
		VariantID:        v.ID,
		MovementType:     movementType(input),
		Quantity:         input.Quantity,
		PreviousQuantity: previous,
		NewQuantity:      v.Quantity,
		Reason:           input.Reason,
		Notes:            input.Notes,
		ReferenceType:    optional(input.ReferenceType),
		ReferenceID:      optional(input.ReferenceID),
		CreatedBy:        optional(input.UserID),
		CreatedAt:        time.Now(),
	}
	if err := uc.repo.AdjustStockWithMovement(ctx, v, movement); err != nil {
		span.RecordError(err)
		uc.logger.Error("failed to adjust stock",
			zap.String("variant_id", v.ID),
			zap.Int("previous", previous),
			zap.Int("new", v.Quantity),
			zap.Error(err),
		)
		return nil, apperrors.FromBackend(err, nil)
	}

	level := stock.Level(v.Quantity, v.MinQuantity, v.MaxQuantity)
	result := &dto.AdjustResult{
		Variant:  v,
		Movement: movement,
		Level:    level,
		LowStock: level == stock.LevelLow,
	}
	if len(ids) > 0 {
		uc.registerChildren(ctx, input, v, ids, result)
	}
	if trim.notice != nil {
		result.Warnings = append(result.Warnings, *trim.notice)
		if err := uc.variants.RetireChildren(ctx, input.MerchantID, v.ID, trim.retired); err != nil {
			uc.logger.Warn("failed to retire units after stock reduction", zap.String("variant_id", v.ID), zap.Error(err))
			result.Warnings = append(result.Warnings, apperrors.AsNotice(err))
		}
	}

	go uc.bus.Publish(context.Background(), events.NewProductEvent(events.ActionStockAdjusted, input.MerchantID, v.ProductID, v.ID))
	return result, nil
}

// registerChildren tracks the received units under the adjusted variant.
// The stock change is already committed, so failures become warnings.
func (uc *inventoryUseCase) registerChildren(ctx context.Context, input *dto.AdjustStockInput, v *model.Variant, ids []string, result *dto.AdjustResult) {
	entries := make([]variantdto.ChildEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, variantdto.ChildEntry{IMEI: id, Source: "stock_adjustment"})
	}
	res, err := uc.variants.RegisterChildren(ctx, &variantdto.RegisterChildrenInput{
		MerchantID: input.MerchantID,
		ProductID:  v.ProductID,
		ParentID:   v.ID,
		Entries:    entries,
	})
	if err != nil {
		uc.logger.Warn("failed to register units after stock adjustment", zap.String("variant_id", v.ID), zap.Error(err))
		result.Warnings = append(result.Warnings, apperrors.AsNotice(err))
		return
	}
	result.Children = res
	result.Warnings = append(result.Warnings, res.Notices()...)
}

type unitTrim struct {
	notice  *apperrors.Notice
	retired []string
}

// trimUnits bounds the active units of a parent by its new quantity. The
// most recently registered units are the ones retired.
func (uc *inventoryUseCase) trimUnits(ctx context.Context, input *dto.AdjustStockInput, v *model.Variant, previous int) (unitTrim, error) {
	if !variantview.IsParent(*v) {
		return unitTrim{}, nil
	}
	children, err := uc.variants.ListChildren(ctx, input.MerchantID, v.ID)
	if err != nil {
		return unitTrim{}, err
	}
	var active []model.Variant
	for _, c := range children {
		if c.IsActive && c.Quantity > 0 && c.ID != input.SoldChildID {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return unitTrim{}, nil
	}

	t := identifier.NewTracker(variantview.DisplayName(*v, v.SKU), max(previous, len(active)))
	if err := t.Enable(true); err != nil {
		return unitTrim{}, err
	}
	for i, c := range active {
		value := variantview.Identifier(c)
		if value == "" {
			value = c.ID
		}
		if err := t.Set(i, value); err != nil {
			return unitTrim{}, err
		}
	}
	notice := t.SetQuantity(v.Quantity)
	if notice == nil {
		return unitTrim{}, nil
	}
	kept := len(identifier.Filled(t.Entries()))
	trim := unitTrim{notice: notice}
	for _, c := range active[kept:] {
		trim.retired = append(trim.retired, c.ID)
	}
	return trim, nil
}

// ApplySale deducts a sold order line. Selling a tracked unit takes one
// from its parent and marks the unit sold.
func (uc *inventoryUseCase) ApplySale(ctx context.Context, input *dto.SaleInput) error {
	v, err := uc.repo.FindVariant(ctx, input.MerchantID, input.VariantID)
	if err != nil {
		return apperrors.FromBackend(err, nil)
	}
	if v == nil {
		return apperrors.VariantNotFound(input.VariantID)
	}

	adjust := &dto.AdjustStockInput{
		MerchantID:    input.MerchantID,
		ProductID:     v.ProductID,
		VariantID:     v.ID,
		Kind:          stock.AdjustOut,
		Quantity:      input.Quantity,
		Reason:        referenceSale,
		ReferenceType: referenceSale,
		ReferenceID:   input.OrderID,
	}
	if !variantview.IsChild(*v) {
		_, err := uc.AdjustStock(ctx, adjust)
		return err
	}

	if v.ParentVariantID == nil {
		return apperrors.VariantNotFound(input.VariantID)
	}
	adjust.VariantID = *v.ParentVariantID
	adjust.Quantity = 1
	adjust.SoldChildID = v.ID
	if _, err := uc.AdjustStock(ctx, adjust); err != nil {
		return err
	}
	return uc.variants.MarkChildSold(ctx, input.MerchantID, v.ID, input.OrderID)
}

func (uc *inventoryUseCase) acquire(ctx context.Context, key, value string) error {
	attempts := max(uc.cfg.LockRetries, 1)
	for i := 0; i < attempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(lockRetryWait)
		}
	}
	uc.logger.Warn("stock lock busy", zap.String("key", key))
	return apperrors.ErrSystemBusy
}

func (uc *inventoryUseCase) release(ctx context.Context, key, value string) {
	if err := uc.locker.ReleaseLock(ctx, key, value); err != nil {
		uc.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
	}
}

func movementType(input *dto.AdjustStockInput) model.MovementType {
	switch input.Kind {
	case stock.AdjustIn:
		return model.MovementIn
	case stock.AdjustOut:
		if input.ReferenceType == referenceSale {
			return model.MovementSale
		}
		return model.MovementOut
	default:
		return model.MovementAdjustment
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
