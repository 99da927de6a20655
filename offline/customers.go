package offline

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/google/uuid"
)

func (f *Facade) GetCustomers(ctx context.Context) ([]*models.Customer, error) {
	return getAll(ctx, f, f.client.Customers)
}

func (f *Facade) CreateCustomer(ctx context.Context, input *models.NewCustomer) (*models.Customer, error) {
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
	customer := models.Customer{
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
	customer.LocallyCreated = true
	return createRecord(ctx, f, f.client.Customers, &customer)
}

func (f *Facade) UpdateCustomer(ctx context.Context, id string, input *models.NewCustomer) (*models.Customer, error) {
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

	customer, err := localstore.Get[models.Customer](ctx, f.store, shopId, id)
	if err != nil {
		return nil, err
	}
	customer.Name = input.Name
	customer.Phone = utils.NormalizePhone(input.Phone)
	customer.Email = input.Email
	customer.Address = input.Address
	customer.UpdatedAt = time.Now()
	customer.LocallyModified = true
	return updateRecord(ctx, f, f.client.Customers, customer)
}

func (f *Facade) DeleteCustomer(ctx context.Context, id string) error {
	return deleteRecord[models.Customer](ctx, f, f.client.Customers, models.TableCustomers, id)
}
