package offline

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (f *Facade) GetStockAdjustments(ctx context.Context) ([]*models.StockAdjustment, error) {
	return getAll(ctx, f, f.client.StockAdjustments)
}

// CreateStockAdjustment records a manual stock correction and applies the
// quantity change to the product in the same local transaction. Adjustments
// are append-only.
func (f *Facade) CreateStockAdjustment(ctx context.Context, input *models.NewStockAdjustment) (*models.StockAdjustment, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	now := time.Now()
	adjustedAt := input.AdjustedAt
	if adjustedAt.IsZero() {
		adjustedAt = now
	}
	adjustment := models.StockAdjustment{
		ID:             uuid.NewString(),
		ShopId:         shopId,
		ProductId:      input.ProductId,
		QuantityChange: input.QuantityChange,
		Reason:         input.Reason,
		AdjustedAt:     adjustedAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	adjustment.LocallyCreated = true

	var canonical *models.StockAdjustment
	if f.probe.Online(ctx) {
		if c, err := f.client.StockAdjustments.Create(ctx, &adjustment); err == nil {
			canonical = c
		} else {
			f.logger.WithField("module", "offline").Debug("stock adjustment fallback to queue: " + err.Error())
		}
	}
	write := &adjustment
	if canonical != nil {
		write = canonical
	}
	err = f.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(write).Error; err != nil {
			return err
		}
		return adjustStock(tx, shopId, adjustment.ProductId, adjustment.QuantityChange)
	})
	if err != nil {
		return nil, err
	}
	if canonical == nil {
		if _, err := f.queue.Enqueue(ctx, shopId, models.TableStockAdjustments, models.OperationCreate, adjustment.ID, &adjustment); err != nil {
			return nil, err
		}
	}
	return write, nil
}
