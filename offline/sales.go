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

func (f *Facade) GetSales(ctx context.Context) ([]*models.Sale, error) {
	return getAll(ctx, f, f.client.Sales)
}

func (f *Facade) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	return localstore.Get[models.Sale](ctx, f.store, shopId, id)
}

// CreateSale writes the sale and its derived effects (stock decrement per
// line item, customer due accrual) in one local transaction. Only the sale
// itself is queued; the server recomputes stock and balances from the sale
// payload, so the derived rows carry no sync flags.
func (f *Facade) CreateSale(ctx context.Context, input *models.NewSale) (*models.Sale, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	items := make([]models.SaleItem, len(input.Items))
	subtotal := decimal.Zero
	for i, item := range input.Items {
		if item.Subtotal.IsZero() {
			item.Subtotal = item.Quantity.Mul(item.UnitPrice)
		}
		items[i] = item
		subtotal = subtotal.Add(item.Subtotal)
	}
	total := subtotal.Sub(input.DiscountAmount).Add(input.TaxAmount)
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
	saleDate := input.SaleDate
	if saleDate.IsZero() {
		saleDate = now
	}
	sale := models.Sale{
		ID:             uuid.NewString(),
		ShopId:         shopId,
		SaleNumber:     input.SaleNumber,
		CustomerId:     input.CustomerId,
		SaleDate:       saleDate,
		Items:          models.EncodeSaleItems(items),
		Subtotal:       subtotal,
		DiscountAmount: input.DiscountAmount,
		TaxAmount:      input.TaxAmount,
		TotalAmount:    total,
		PaidAmount:     input.PaidAmount,
		DueAmount:      due,
		PaymentStatus:  status,
		PaymentMethod:  input.PaymentMethod,
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	sale.LocallyCreated = true

	var canonical *models.Sale
	if f.probe.Online(ctx) {
		if c, err := f.client.Sales.Create(ctx, &sale); err == nil {
			canonical = c
		} else {
			f.logger.WithField("module", "offline").Debug("sale create fallback to queue: " + err.Error())
		}
	}
	write := &sale
	if canonical != nil {
		write = canonical
	}
	err = f.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(write).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := adjustStock(tx, shopId, item.ProductId, item.Quantity.Neg()); err != nil {
				return err
			}
		}
		if sale.CustomerId != "" && due.IsPositive() {
			if err := adjustCustomerDue(tx, shopId, sale.CustomerId, due); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if canonical == nil {
		if _, err := f.queue.Enqueue(ctx, shopId, models.TableSales, models.OperationCreate, sale.ID, &sale); err != nil {
			return nil, err
		}
	}
	return write, nil
}

// DeleteSale voids the sale and reverses its derived effects in the same
// local transaction that removes the row.
func (f *Facade) DeleteSale(ctx context.Context, id string) error {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return err
	}
	sale, err := localstore.Get[models.Sale](ctx, f.store, shopId, id)
	if err != nil {
		return err
	}

	remoteDone := false
	if f.probe.Online(ctx) {
		if err := f.client.Sales.Delete(ctx, shopId, id); err == nil {
			remoteDone = true
		} else {
			f.logger.WithField("module", "offline").Debug("sale delete fallback to queue: " + err.Error())
		}
	}
	err = f.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ? AND id = ?", shopId, id).Delete(&models.Sale{}).Error; err != nil {
			return err
		}
		for _, item := range models.DecodeSaleItems(sale.Items) {
			if err := adjustStock(tx, shopId, item.ProductId, item.Quantity); err != nil {
				return err
			}
		}
		if sale.CustomerId != "" && sale.DueAmount.IsPositive() {
			if err := adjustCustomerDue(tx, shopId, sale.CustomerId, sale.DueAmount.Neg()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !remoteDone {
		if _, err := f.queue.Enqueue(ctx, shopId, models.TableSales, models.OperationDelete, id, nil); err != nil {
			return err
		}
	}
	return nil
}

// adjustStock shifts a product's on-hand quantity without touching its sync
// flags or updated_at; derived rows must never look locally edited.
func adjustStock(tx *gorm.DB, shopId string, productId string, delta decimal.Decimal) error {
	if productId == "" || delta.IsZero() {
		return nil
	}
	return tx.Model(&models.Product{}).
		Where("shop_id = ? AND id = ?", shopId, productId).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error
}

func adjustCustomerDue(tx *gorm.DB, shopId string, customerId string, delta decimal.Decimal) error {
	return tx.Model(&models.Customer{}).
		Where("shop_id = ? AND id = ?", shopId, customerId).
		UpdateColumn("total_due", gorm.Expr("total_due + ?", delta)).Error
}
