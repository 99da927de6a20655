package offline

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (f *Facade) GetPurchases(ctx context.Context) ([]*models.Purchase, error) {
	return getAll(ctx, f, f.client.Purchases)
}

func (f *Facade) GetPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	return localstore.Get[models.Purchase](ctx, f.store, shopId, id)
}

// CreatePurchase mirrors CreateSale on the inbound side: stock increments
// and supplier due accrual land in the same local transaction as the
// purchase row.
func (f *Facade) CreatePurchase(ctx context.Context, input *models.NewPurchase) (*models.Purchase, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	items := make([]models.PurchaseItem, len(input.Items))
	subtotal := decimal.Zero
	for i, item := range input.Items {
		if item.Subtotal.IsZero() {
			item.Subtotal = item.Quantity.Mul(item.UnitCost)
		}
		items[i] = item
		subtotal = subtotal.Add(item.Subtotal)
	}
	total := subtotal.Sub(input.DiscountAmount)
	due := total.Sub(input.PaidAmount)
	if due.IsNegative() {
		due = decimal.Zero
	}
	status := models.PaymentStatusPartial
	switch {
	case due.IsZero():
		status = models.PaymentStatusPaid
	case input.PaidAmount.LessThanOrEqual(decimal.Zero):
		status = models.PaymentStatusUnpaid
	}

	now := time.Now()
	purchaseDate := input.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = now
	}
	purchase := models.Purchase{
		ID:             uuid.NewString(),
		ShopId:         shopId,
		PurchaseNumber: input.PurchaseNumber,
		SupplierId:     input.SupplierId,
		PurchaseDate:   purchaseDate,
		Items:          models.EncodePurchaseItems(items),
		Subtotal:       subtotal,
		DiscountAmount: input.DiscountAmount,
		TotalAmount:    total,
		PaidAmount:     input.PaidAmount,
		DueAmount:      due,
		PaymentStatus:  status,
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	purchase.LocallyCreated = true

	var canonical *models.Purchase
	if f.probe.Online(ctx) {
		if c, err := f.client.Purchases.Create(ctx, &purchase); err == nil {
			canonical = c
		} else {
			f.logger.WithField("module", "offline").Debug("purchase create fallback to queue: " + err.Error())
		}
	}
	write := &purchase
	if canonical != nil {
		write = canonical
	}
	err = f.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(write).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := adjustStock(tx, shopId, item.ProductId, item.Quantity); err != nil {
				return err
			}
		}
		if purchase.SupplierId != "" && due.IsPositive() {
			if err := adjustSupplierDue(tx, shopId, purchase.SupplierId, due); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if canonical == nil {
		if _, err := f.queue.Enqueue(ctx, shopId, models.TablePurchases, models.OperationCreate, purchase.ID, &purchase); err != nil {
			return nil, err
		}
	}
	return write, nil
}

func (f *Facade) DeletePurchase(ctx context.Context, id string) error {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return err
	}
	purchase, err := localstore.Get[models.Purchase](ctx, f.store, shopId, id)
	if err != nil {
		return err
	}

	remoteDone := false
	if f.probe.Online(ctx) {
		if err := f.client.Purchases.Delete(ctx, shopId, id); err == nil {
			remoteDone = true
		} else {
			f.logger.WithField("module", "offline").Debug("purchase delete fallback to queue: " + err.Error())
		}
	}
	err = f.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ? AND id = ?", shopId, id).Delete(&models.Purchase{}).Error; err != nil {
			return err
		}
		for _, item := range models.DecodePurchaseItems(purchase.Items) {
			if err := adjustStock(tx, shopId, item.ProductId, item.Quantity.Neg()); err != nil {
				return err
			}
		}
		if purchase.SupplierId != "" && purchase.DueAmount.IsPositive() {
			if err := adjustSupplierDue(tx, shopId, purchase.SupplierId, purchase.DueAmount.Neg()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !remoteDone {
		if _, err := f.queue.Enqueue(ctx, shopId, models.TablePurchases, models.OperationDelete, id, nil); err != nil {
			return err
		}
	}
	return nil
}

func adjustSupplierDue(tx *gorm.DB, shopId string, supplierId string, delta decimal.Decimal) error {
	return tx.Model(&models.Supplier{}).
		Where("shop_id = ? AND id = ?", shopId, supplierId).
		UpdateColumn("total_due", gorm.Expr("total_due + ?", delta)).Error
}
