package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `gorm:"primary_key;size:64" json:"id"`
	ShopId        string          `gorm:"index;not null" json:"shop_id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Sku           string          `gorm:"size:100" json:"sku"`
	Barcode       string          `gorm:"size:100" json:"barcode"`
	Description   string          `gorm:"type:text" json:"description"`
	CategoryId    string          `gorm:"size:64;index" json:"category_id"`
	Unit          string          `gorm:"size:20" json:"unit"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_quantity"`
	AlertQuantity decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"alert_quantity"`
	IsActive      *bool           `gorm:"not null;default:true" json:"is_active"`
	SyncMeta
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Product) GetID() string     { return p.ID }
func (p Product) GetShopId() string { return p.ShopId }
func (p Product) GetTable() Table   { return TableProducts }
func (p Product) Meta() SyncMeta    { return p.SyncMeta }

type NewProduct struct {
	Name          string          `json:"name" validate:"required"`
	Sku           string          `json:"sku"`
	Barcode       string          `json:"barcode"`
	Description   string          `json:"description"`
	CategoryId    string          `json:"category_id"`
	Unit          string          `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	AlertQuantity decimal.Decimal `json:"alert_quantity"`
}
