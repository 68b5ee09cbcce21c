package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/image"
	"github.com/fekuna/omnipos-catalog-service/internal/image/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type imageUseCase struct {
	repo   image.Repository
	bus    *events.Bus
	logger logger.ZapLogger
}

func NewImageUseCase(repo image.Repository, bus *events.Bus, log logger.ZapLogger) image.UseCase {
	return &imageUseCase{repo: repo, bus: bus, logger: log}
}

func (uc *imageUseCase) ListImages(ctx context.Context, merchantID, productID string) ([]model.ProductImage, error) {
	images, err := uc.repo.ListByProduct(ctx, merchantID, productID)
	if err != nil {
		uc.logger.Error("failed to load product images", zap.String("product_id", productID), zap.Error(err))
		return nil, apperrors.FromBackend(err, nil)
	}
	return images, nil
}

// AddImage stores the image. The first image of a product becomes primary.
func (uc *imageUseCase) AddImage(ctx context.Context, input *dto.AddImageInput) (*model.ProductImage, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	existing, err := uc.repo.ListByProduct(ctx, input.MerchantID, input.ProductID)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}

	img := &model.ProductImage{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		URL:       input.URL,
		FileName:  input.FileName,
		IsPrimary: len(existing) == 0,
		CreatedAt: time.Now(),
	}
	if thumb := strings.TrimSpace(input.ThumbnailURL); thumb != "" {
		img.ThumbnailURL = &thumb
	}
	if err := uc.repo.Create(ctx, img); err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	if input.IsPrimary && !img.IsPrimary {
		if err := uc.repo.SetPrimary(ctx, img.ProductID, img.ID); err != nil {
			return nil, apperrors.FromBackend(err, nil)
		}
		img.IsPrimary = true
	}

	go uc.bus.Publish(context.Background(), events.NewProductEvent(events.ActionUpdated, input.MerchantID, input.ProductID, ""))
	return img, nil
}

// DeleteImage removes the image and promotes the next one when the primary goes.
func (uc *imageUseCase) DeleteImage(ctx context.Context, merchantID, productID, imageID string) error {
	img, err := uc.repo.FindByID(ctx, merchantID, imageID)
	if err != nil {
		return apperrors.FromBackend(err, nil)
	}
	if img == nil || img.ProductID != productID {
		return apperrors.ImageNotFound(imageID)
	}
	if err := uc.repo.Delete(ctx, imageID); err != nil {
		return apperrors.FromBackend(err, nil)
	}

	if img.IsPrimary {
		rest, err := uc.repo.ListByProduct(ctx, merchantID, productID)
		if err != nil {
			uc.logger.Warn("failed to reload images after delete", zap.String("product_id", productID), zap.Error(err))
		} else if len(rest) > 0 {
			if err := uc.repo.SetPrimary(ctx, productID, rest[0].ID); err != nil {
				uc.logger.Warn("failed to promote image", zap.String("image_id", rest[0].ID), zap.Error(err))
			}
		}
	}

	go uc.bus.Publish(context.Background(), events.NewProductEvent(events.ActionUpdated, merchantID, productID, ""))
	return nil
}

func (uc *imageUseCase) SetPrimary(ctx context.Context, merchantID, productID, imageID string) error {
	img, err := uc.repo.FindByID(ctx, merchantID, imageID)
	if err != nil {
		return apperrors.FromBackend(err, nil)
	}
	if img == nil || img.ProductID != productID {
		return apperrors.ImageNotFound(imageID)
	}
	if err := uc.repo.SetPrimary(ctx, productID, imageID); err != nil {
		return apperrors.FromBackend(err, nil)
	}
	return nil
}
