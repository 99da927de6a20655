package offline

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/google/uuid"
)

func (f *Facade) GetSuppliers(ctx context.Context) ([]*models.Supplier, error) {
	return getAll(ctx, f, f.client.Suppliers)
}

func (f *Facade) CreateSupplier(ctx context.Context, input *models.NewSupplier) (*models.Supplier, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	supplier := models.Supplier{
		ID:             uuid.NewString(),
		ShopId:         shopId,
		Name:           input.Name,
		Phone:          utils.NormalizePhone(input.Phone),
		Email:          input.Email,
		Address:        input.Address,
		OpeningBalance: input.OpeningBalance,
		TotalDue:       input.OpeningBalance,
		IsActive:       utils.NewTrue(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	supplier.LocallyCreated = true
	return createRecord(ctx, f, f.client.Suppliers, &supplier)
}

func (f *Facade) UpdateSupplier(ctx context.Context, id string, input *models.NewSupplier) (*models.Supplier, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, err
		}
	}

	supplier, err := localstore.Get[models.Supplier](ctx, f.store, shopId, id)
	if err != nil {
		return nil, err
	}
	supplier.Name = input.Name
	supplier.Phone = utils.NormalizePhone(input.Phone)
	supplier.Email = input.Email
	supplier.Address = input.Address
	supplier.UpdatedAt = time.Now()
	supplier.LocallyModified = true
	return updateRecord(ctx, f, f.client.Suppliers, supplier)
}

func (f *Facade) DeleteSupplier(ctx context.Context, id string) error {
	return deleteRecord[models.Supplier](ctx, f, f.client.Suppliers, models.TableSuppliers, id)
}
