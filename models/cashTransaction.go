package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CashTransaction struct {
	ID              string              `gorm:"primary_key;size:64" json:"id"`
	ShopId          string              `gorm:"index;not null" json:"shop_id"`
	TransactionType CashTransactionType `gorm:"size:10;not null" json:"transaction_type"`
	Amount          decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Reason          string              `gorm:"size:200" json:"reason"`
	TransactionDate time.Time           `gorm:"index" json:"transaction_date"`
	SyncMeta
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c CashTransaction) GetID() string     { return c.ID }
func (c CashTransaction) GetShopId() string { return c.ShopId }
func (c CashTransaction) GetTable() Table   { return TableCashTransactions }
func (c CashTransaction) Meta() SyncMeta    { return c.SyncMeta }

type NewCashTransaction struct {
	TransactionType CashTransactionType `json:"transaction_type" validate:"required,oneof=In Out"`
	Amount          decimal.Decimal     `json:"amount"`
	Reason          string              `json:"reason"`
	TransactionDate time.Time           `json:"transaction_date"`
}
