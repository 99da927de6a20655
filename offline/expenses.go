package offline

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/google/uuid"
)

func (f *Facade) GetExpenses(ctx context.Context) ([]*models.Expense, error) {
	return getAll(ctx, f, f.client.Expenses)
}

func (f *Facade) CreateExpense(ctx context.Context, input *models.NewExpense) (*models.Expense, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	now := time.Now()
	expenseDate := input.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = now
	}
	expense := models.Expense{
		ID:          uuid.NewString(),
		ShopId:      shopId,
		Name:        input.Name,
		Category:    input.Category,
		Amount:      input.Amount,
		ExpenseDate: expenseDate,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	expense.LocallyCreated = true
	return createRecord(ctx, f, f.client.Expenses, &expense)
}

func (f *Facade) UpdateExpense(ctx context.Context, id string, input *models.NewExpense) (*models.Expense, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	expense, err := localstore.Get[models.Expense](ctx, f.store, shopId, id)
	if err != nil {
		return nil, err
	}
	expense.Name = input.Name
	expense.Category = input.Category
	expense.Amount = input.Amount
	if !input.ExpenseDate.IsZero() {
		expense.ExpenseDate = input.ExpenseDate
	}
	expense.Notes = input.Notes
	expense.UpdatedAt = time.Now()
	expense.LocallyModified = true
	return updateRecord(ctx, f, f.client.Expenses, expense)
}

func (f *Facade) DeleteExpense(ctx context.Context, id string) error {
	return deleteRecord[models.Expense](ctx, f, f.client.Expenses, models.TableExpenses, id)
}
