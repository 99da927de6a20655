package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockAdjustment struct {
	ID             string          `gorm:"primary_key;size:64" json:"id"`
	ShopId         string          `gorm:"index;not null" json:"shop_id"`
	ProductId      string          `gorm:"size:64;index;not null" json:"product_id"`
	QuantityChange decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_change"`
	Reason         string          `gorm:"size:200" json:"reason"`
	AdjustedAt     time.Time       `gorm:"index" json:"adjusted_at"`
	SyncMeta
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a StockAdjustment) GetID() string     { return a.ID }
func (a StockAdjustment) GetShopId() string { return a.ShopId }
func (a StockAdjustment) GetTable() Table   { return TableStockAdjustments }
func (a StockAdjustment) Meta() SyncMeta    { return a.SyncMeta }

type NewStockAdjustment struct {
	ProductId      string          `json:"product_id" validate:"required"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	Reason         string          `json:"reason"`
	AdjustedAt     time.Time       `json:"adjusted_at"`
}
