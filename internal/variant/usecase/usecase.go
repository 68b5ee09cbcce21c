package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	attr "github.com/fekuna/omnipos-catalog-service/internal/attribute"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/identifier"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/validation"
	"github.com/fekuna/omnipos-catalog-service/internal/variant"
	"github.com/fekuna/omnipos-catalog-service/internal/variant/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/variantview"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("omnipos-catalog/variant")

var (
	errSKUExists    = apperrors.Conflict("variant_sku_exists", "SKU already exists", nil)
	errReferenced   = apperrors.Conflict("variant_referenced", "Cannot delete: variant is referenced by other records", nil)
	errHasMovements = apperrors.Conflict("variant_has_movements", "Cannot delete variant: has stock movement history", nil)
	errLastVariant  = apperrors.Validation("last_variant", "Cannot delete the last remaining variant of a product", nil)
)

type variantUseCase struct {
	repo   variant.Repository
	bus    *events.Bus
	cfg    config.CatalogConfig
	logger logger.ZapLogger
}

func NewVariantUseCase(repo variant.Repository, bus *events.Bus, cfg config.CatalogConfig, log logger.ZapLogger) variant.UseCase {
	return &variantUseCase{
		repo:   repo,
		bus:    bus,
		cfg:    cfg,
		logger: log,
	}
}

func (uc *variantUseCase) ListVariants(ctx context.Context, merchantID, productID string) ([]model.Variant, error) {
	variants, err := uc.repo.ListByProduct(ctx, merchantID, productID)
	if err != nil {
		uc.logger.Error("failed to load variants", zap.String("product_id", productID), zap.Error(err))
		return nil, apperrors.FromBackend(err, nil)
	}
	return variants, nil
}

func (uc *variantUseCase) AddVariant(ctx context.Context, input *dto.AddVariantInput) (*model.Variant, error) {
	ctx, span := tracer.Start(ctx, "variant.AddVariant")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.SKU = strings.TrimSpace(input.SKU)
	if input.Name == "" || input.SKU == "" {
		return nil, apperrors.Validation("name_and_sku_required", "Please fill in name and SKU", nil)
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.BranchID == "" {
		return nil, apperrors.ErrBranchMissing
	}

	siblings, err := uc.repo.ListByProduct(ctx, input.MerchantID, input.ProductID)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	if err := identifier.CheckVariantNames(append(siblingNames(siblings, ""), input.Name)); err != nil {
		return nil, err
	}

	minQty := uc.cfg.DefaultMinQty
	if input.MinQuantity != nil {
		minQty = *input.MinQuantity
	}
	attrs := model.JSONMap{}
	attr.Merge(attrs, input.Attributes)
	branchID := input.BranchID
	now := time.Now()
	v := &model.Variant{
		BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ProductID:         input.ProductID,
		BranchID:          &branchID,
		Name:              input.Name,
		VariantName:       input.Name,
		SKU:               input.SKU,
		CostPrice:         input.CostPrice,
		UnitPrice:         input.SellingPrice,
		SellingPrice:      input.SellingPrice,
		Quantity:          input.Quantity,
		MinQuantity:       minQty,
		MaxQuantity:       input.MaxQuantity,
		VariantAttributes: attrs,
		Attributes:        attrs,
		IsActive:          true,
		VariantType:       model.VariantTypeStandard,
	}

	err = postgres.Retry(ctx, uint(uc.cfg.InsertRetries), func() error {
		return uc.repo.Create(ctx, v)
	}, uc.onRetry("variant insert", v.ID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		uc.logger.Error("failed to add variant",
			zap.String("product_id", input.ProductID),
			zap.String("sku", v.SKU),
			zap.String("code", apperrors.PGCode(err)),
			zap.Error(err),
		)
		return nil, apperrors.FromBackend(err, apperrors.BackendMessages{
			apperrors.CodeUniqueViolation:     errSKUExists,
			apperrors.CodeForeignKeyViolation: apperrors.ProductNotFound(input.ProductID),
		})
	}

	uc.afterChange(ctx, input.MerchantID, v.ProductID, v.ID)
	return v, nil
}

func (uc *variantUseCase) UpdateVariant(ctx context.Context, input *dto.UpdateVariantInput) (*model.Variant, error) {
	ctx, span := tracer.Start(ctx, "variant.UpdateVariant")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.SKU = strings.TrimSpace(input.SKU)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	v, err := uc.findOwned(ctx, input.MerchantID, input.ProductID, input.ID)
	if err != nil {
		return nil, err
	}
	siblings, err := uc.repo.ListByProduct(ctx, input.MerchantID, v.ProductID)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	if err := identifier.CheckVariantNames(append(siblingNames(siblings, v.ID), input.Name)); err != nil {
		return nil, err
	}

	v.Name = input.Name
	v.VariantName = input.Name
	v.SKU = input.SKU
	v.CostPrice = input.CostPrice
	v.SellingPrice = input.SellingPrice
	v.UnitPrice = input.SellingPrice
	v.MinQuantity = input.MinQuantity
	v.MaxQuantity = input.MaxQuantity
	if input.Attributes != nil {
		// Reserved keys (identifiers, trade-in and purchase markers) survive edits.
		merged := v.MergedAttributes()
		attr.Merge(merged, input.Attributes)
		v.Attributes = merged
		v.VariantAttributes = merged
	}
	if input.IsActive != nil {
		v.IsActive = *input.IsActive
	}
	v.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, v); err != nil {
		span.RecordError(err)
		uc.logger.Error("failed to update variant", zap.String("variant_id", v.ID), zap.Error(err))
		return nil, apperrors.FromBackend(err, apperrors.BackendMessages{
			apperrors.CodeUniqueViolation: errSKUExists,
		})
	}

	uc.afterChange(ctx, input.MerchantID, v.ProductID, v.ID)
	return v, nil
}

// DeleteVariant refuses to remove the last variant of a product or one
// with stock movement history.
func (uc *variantUseCase) DeleteVariant(ctx context.Context, merchantID, productID, variantID string) error {
	ctx, span := tracer.Start(ctx, "variant.DeleteVariant")
	defer span.End()
	span.SetAttributes(attribute.String("variant.id", variantID))

	v, err := uc.findOwned(ctx, merchantID, productID, variantID)
	if err != nil {
		return err
	}

	if !variantview.IsChild(*v) {
		siblings, err := uc.repo.ListByProduct(ctx, merchantID, v.ProductID)
		if err != nil {
			return apperrors.FromBackend(err, nil)
		}
		if len(siblings) <= 1 {
			return errLastVariant
		}
	}

	movements, err := uc.repo.CountMovements(ctx, v.ID)
	if err != nil {
		return apperrors.FromBackend(err, nil)
	}
	if movements > 0 {
		return errHasMovements
	}

	if err := uc.repo.Delete(ctx, v.ID); err != nil {
		uc.logger.Error("failed to delete variant",
			zap.String("variant_id", v.ID),
			zap.String("code", apperrors.PGCode(err)),
			zap.Error(err),
		)
		return apperrors.FromBackend(err, apperrors.BackendMessages{
			apperrors.CodeForeignKeyViolation: errReferenced,
		})
	}

	uc.afterChange(ctx, merchantID, v.ProductID, v.ID)
	return nil
}

// RegisterChildren stores each entry as a child row of the parent variant.
// Entries are independent: one that already exists in the system or fails
// to insert is reported in its outcome while the others are still written.
func (uc *variantUseCase) RegisterChildren(ctx context.Context, input *dto.RegisterChildrenInput) (*dto.ChildrenResult, error) {
	ctx, span := tracer.Start(ctx, "variant.RegisterChildren")
	defer span.End()
	span.SetAttributes(attribute.String("variant.parent_id", input.ParentID), attribute.Int("entries", len(input.Entries)))

	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	parent, err := uc.findOwned(ctx, input.MerchantID, input.ProductID, input.ParentID)
	if err != nil {
		return nil, err
	}
	if !variantview.CanTrackIdentifiers(*parent) {
		return nil, apperrors.FieldInvalid("parent_id", "units cannot be registered under a child variant")
	}

	existing, err := uc.repo.ListChildren(ctx, parent.ID)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	active := 0
	for _, c := range existing {
		if c.IsActive && c.Quantity > 0 {
			active++
		}
	}
	values := make([]string, 0, len(input.Entries))
	for _, e := range input.Entries {
		values = append(values, e.Identifier())
	}
	if err := identifier.CheckVariant(identifier.Variant{
		Name:        variantview.DisplayName(*parent, parent.SKU),
		Quantity:    max(parent.Quantity-active, 0),
		Identifiers: values,
	}); err != nil {
		return nil, err
	}

	if !parent.IsParent {
		if err := uc.repo.ConvertToParent(ctx, parent.ID); err != nil {
			return nil, apperrors.FromBackend(err, nil)
		}
		parent.IsParent = true
		parent.VariantType = model.VariantTypeParent
	}

	result := &dto.ChildrenResult{ParentID: parent.ID, Outcomes: make([]dto.ChildOutcome, 0, len(input.Entries))}
	for _, entry := range input.Entries {
		outcome := uc.registerChild(ctx, input.MerchantID, parent, entry)
		if outcome.Error != nil {
			result.Failed++
		} else {
			result.Created++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	if result.Failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d entries failed", result.Failed, len(input.Entries)))
	}

	uc.afterChange(ctx, input.MerchantID, parent.ProductID, parent.ID)
	return result, nil
}

func (uc *variantUseCase) registerChild(ctx context.Context, merchantID string, parent *model.Variant, entry dto.ChildEntry) dto.ChildOutcome {
	value := strings.TrimSpace(entry.Identifier())
	outcome := dto.ChildOutcome{Identifier: value}
	fail := func(err error) dto.ChildOutcome {
		n := apperrors.AsNotice(err)
		outcome.Error = &n
		return outcome
	}

	exists, err := uc.repo.IdentifierExists(ctx, merchantID, value)
	if err != nil {
		uc.logger.Error("identifier lookup failed", zap.String("identifier", value), zap.Error(err))
		return fail(addFailed(value, err))
	}
	if exists {
		uc.logger.Warn("identifier already registered", zap.String("identifier", value), zap.String("parent_id", parent.ID))
		return fail(identifier.Exists(value))
	}

	child := newChild(parent, entry, value)
	if err := uc.repo.Create(ctx, child); err != nil {
		uc.logger.Error("failed to add child identifier",
			zap.String("identifier", value),
			zap.String("parent_id", parent.ID),
			zap.String("code", apperrors.PGCode(err)),
			zap.Error(err),
		)
		if apperrors.PGCode(err) == apperrors.CodeUniqueViolation {
			return fail(identifier.Exists(value))
		}
		return fail(addFailed(value, err))
	}
	outcome.ChildID = child.ID
	return outcome
}

func newChild(parent *model.Variant, entry dto.ChildEntry, value string) *model.Variant {
	cost := parent.CostPrice
	if entry.CostPrice != nil {
		cost = *entry.CostPrice
	}
	price := parent.SellingPrice
	if entry.SellingPrice != nil {
		price = *entry.SellingPrice
	}
	condition := entry.Condition
	if condition == "" {
		condition = string(model.ConditionNew)
	}
	source := entry.Source
	if source == "" {
		source = "manual"
	}
	attrs := model.JSONMap{
		"imei":          strings.TrimSpace(entry.IMEI),
		"serial_number": strings.TrimSpace(entry.SerialNumber),
		"condition":     condition,
		"source":        source,
	}
	parentID := parent.ID
	now := time.Now()
	return &model.Variant{
		BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ProductID:         parent.ProductID,
		BranchID:          parent.BranchID,
		ParentVariantID:   &parentID,
		Name:              fmt.Sprintf("%s - %s", variantview.DisplayName(*parent, parent.SKU), value),
		VariantName:       value,
		SKU:               fmt.Sprintf("%s-%s", parent.SKU, value),
		CostPrice:         cost,
		UnitPrice:         price,
		SellingPrice:      price,
		Quantity:          1,
		VariantAttributes: attrs,
		Attributes:        model.JSONMap{},
		IsActive:          true,
		VariantType:       model.VariantTypeChild,
	}
}

func addFailed(value string, err error) *apperrors.Error {
	return apperrors.New(apperrors.KindInternal, "identifier_add_failed",
		fmt.Sprintf("Failed to add IMEI %s: %s", value, err.Error()),
		map[string]interface{}{"Value": value, "Reason": err.Error()}).WithCause(err)
}

func (uc *variantUseCase) IdentifierExists(ctx context.Context, merchantID, value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	exists, err := uc.repo.IdentifierExists(ctx, merchantID, value)
	if err != nil {
		return false, apperrors.FromBackend(err, nil)
	}
	return exists, nil
}

func (uc *variantUseCase) ListChildren(ctx context.Context, merchantID, parentID string) ([]model.Variant, error) {
	parent, err := uc.repo.FindByID(ctx, merchantID, parentID)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	if parent == nil {
		return nil, apperrors.VariantNotFound(parentID)
	}
	children, err := uc.repo.ListChildren(ctx, parent.ID)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	return children, nil
}

// MarkChildSold takes a sold unit out of stock and keeps it for history.
func (uc *variantUseCase) MarkChildSold(ctx context.Context, merchantID, childID, saleID string) error {
	child, err := uc.repo.FindByID(ctx, merchantID, childID)
	if err != nil {
		return apperrors.FromBackend(err, nil)
	}
	if child == nil || !variantview.IsChild(*child) {
		return apperrors.VariantNotFound(childID)
	}
	if err := uc.repo.MarkChildSold(ctx, child.ID, saleID); err != nil {
		return apperrors.FromBackend(err, nil)
	}
	uc.afterChange(ctx, merchantID, child.ProductID, child.ID)
	return nil
}

func (uc *variantUseCase) RetireChildren(ctx context.Context, merchantID, parentID string, childIDs []string) error {
	if len(childIDs) == 0 {
		return nil
	}
	parent, err := uc.findOwned(ctx, merchantID, "", parentID)
	if err != nil {
		return err
	}
	if err := uc.repo.RetireChildren(ctx, parent.ID, childIDs); err != nil {
		uc.logger.Error("failed to retire units", zap.String("parent_id", parent.ID), zap.Strings("child_ids", childIDs), zap.Error(err))
		return apperrors.FromBackend(err, nil)
	}
	uc.afterChange(ctx, merchantID, parent.ProductID, parent.ID)
	return nil
}

func (uc *variantUseCase) findOwned(ctx context.Context, merchantID, productID, variantID string) (*model.Variant, error) {
	v, err := uc.repo.FindByID(ctx, merchantID, variantID)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	if v == nil || (productID != "" && v.ProductID != productID) {
		return nil, apperrors.VariantNotFound(variantID)
	}
	return v, nil
}

// afterChange recomputes the product totals and announces the change.
func (uc *variantUseCase) afterChange(ctx context.Context, merchantID, productID, variantID string) {
	if err := uc.repo.RecomputeTotals(ctx, productID); err != nil {
		uc.logger.Warn("failed to recompute product totals", zap.String("product_id", productID), zap.Error(err))
	}
	go uc.bus.Publish(context.Background(), events.NewProductEvent(events.ActionVariantChange, merchantID, productID, variantID))
}

func (uc *variantUseCase) onRetry(op, id string) func(uint, error) {
	return func(n uint, err error) {
		uc.logger.Warn("retrying "+op, zap.String("id", id), zap.Uint("attempt", n+1), zap.Error(err))
	}
}

func siblingNames(variants []model.Variant, exclude string) []string {
	names := make([]string, 0, len(variants)+1)
	for _, v := range variants {
		if v.ID == exclude {
			continue
		}
		names = append(names, variantview.DisplayName(v, ""))
	}
	return names
}
