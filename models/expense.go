package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          string          `gorm:"primary_key;size:64" json:"id"`
	ShopId      string          `gorm:"index;not null" json:"shop_id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Category    string          `gorm:"size:100" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	ExpenseDate time.Time       `gorm:"index" json:"expense_date"`
	Notes       string          `gorm:"type:text" json:"notes"`
	SyncMeta
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e Expense) GetID() string     { return e.ID }
func (e Expense) GetShopId() string { return e.ShopId }
func (e Expense) GetTable() Table   { return TableExpenses }
func (e Expense) Meta() SyncMeta    { return e.SyncMeta }

type NewExpense struct {
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	Notes       string          `json:"notes"`
}
