package offline

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/google/uuid"
)

func (f *Facade) GetCategories(ctx context.Context) ([]*models.Category, error) {
	return getAll(ctx, f, f.client.Categories)
}

func (f *Facade) CreateCategory(ctx context.Context, input *models.NewCategory) (*models.Category, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	now := time.Now()
	category := models.Category{
		ID:          uuid.NewString(),
		ShopId:      shopId,
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	category.LocallyCreated = true
	return createRecord(ctx, f, f.client.Categories, &category)
}

func (f *Facade) UpdateCategory(ctx context.Context, id string, input *models.NewCategory) (*models.Category, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	category, err := localstore.Get[models.Category](ctx, f.store, shopId, id)
	if err != nil {
		return nil, err
	}
	category.Name = input.Name
	category.Description = input.Description
	category.UpdatedAt = time.Now()
	category.LocallyModified = true
	return updateRecord(ctx, f, f.client.Categories, category)
}

func (f *Facade) DeleteCategory(ctx context.Context, id string) error {
	return deleteRecord[models.Category](ctx, f, f.client.Categories, models.TableCategories, id)
}
