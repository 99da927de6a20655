package offline

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/google/uuid"
)

func (f *Facade) GetCashTransactions(ctx context.Context) ([]*models.CashTransaction, error) {
	return getAll(ctx, f, f.client.CashTransactions)
}

// CreateCashTransaction records a manual drawer movement. Cash entries are
// append-only; corrections are entered as a counter-transaction.
func (f *Facade) CreateCashTransaction(ctx context.Context, input *models.NewCashTransaction) (*models.CashTransaction, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	now := time.Now()
	transactionDate := input.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = now
	}
	transaction := models.CashTransaction{
		ID:              uuid.NewString(),
		ShopId:          shopId,
		TransactionType: input.TransactionType,
		Amount:          input.Amount,
		Reason:          input.Reason,
		TransactionDate: transactionDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	transaction.LocallyCreated = true
	return createRecord(ctx, f, f.client.CashTransactions, &transaction)
}

func (f *Facade) DeleteCashTransaction(ctx context.Context, id string) error {
	return deleteRecord[models.CashTransaction](ctx, f, f.client.CashTransactions, models.TableCashTransactions, id)
}
