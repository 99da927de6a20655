package offline

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/google/uuid"
)

func (f *Facade) GetProducts(ctx context.Context) ([]*models.Product, error) {
	return getAll(ctx, f, f.client.Products)
}

func (f *Facade) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	return localstore.Get[models.Product](ctx, f.store, shopId, id)
}

func (f *Facade) CreateProduct(ctx context.Context, input *models.NewProduct) (*models.Product, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	now := time.Now()
	product := models.Product{
		ID:            uuid.NewString(),
		ShopId:        shopId,
		Name:          input.Name,
		Sku:           input.Sku,
		Barcode:       input.Barcode,
		Description:   input.Description,
		CategoryId:    input.CategoryId,
		Unit:          input.Unit,
		PurchasePrice: input.PurchasePrice,
		SellingPrice:  input.SellingPrice,
		StockQuantity: input.StockQuantity,
		AlertQuantity: input.AlertQuantity,
		IsActive:      utils.NewTrue(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	product.LocallyCreated = true
	return createRecord(ctx, f, f.client.Products, &product)
}

// UpdateProduct merges the input onto the latest local record, so a chain
// of offline edits composes; each edit sees the previous one.
func (f *Facade) UpdateProduct(ctx context.Context, id string, input *models.NewProduct) (*models.Product, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	product, err := localstore.Get[models.Product](ctx, f.store, shopId, id)
	if err != nil {
		return nil, err
	}
	product.Name = input.Name
	product.Sku = input.Sku
	product.Barcode = input.Barcode
	product.Description = input.Description
	product.CategoryId = input.CategoryId
	product.Unit = input.Unit
	product.PurchasePrice = input.PurchasePrice
	product.SellingPrice = input.SellingPrice
	product.StockQuantity = input.StockQuantity
	product.AlertQuantity = input.AlertQuantity
	product.UpdatedAt = time.Now()
	product.LocallyModified = true
	return updateRecord(ctx, f, f.client.Products, product)
}

func (f *Facade) DeleteProduct(ctx context.Context, id string) error {
	return deleteRecord[models.Product](ctx, f, f.client.Products, models.TableProducts, id)
}
