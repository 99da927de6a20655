package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID             string          `gorm:"primary_key;size:64" json:"id"`
	ShopId         string          `gorm:"index;not null" json:"shop_id"`
	SaleNumber     string          `gorm:"size:50" json:"sale_number"`
	CustomerId     string          `gorm:"size:64;index" json:"customer_id"`
	SaleDate       time.Time       `gorm:"index" json:"sale_date"`
	Items          []byte          `gorm:"type:text" json:"items"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	DueAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"due_amount"`
	PaymentStatus  PaymentStatus   `gorm:"size:20;default:'Unpaid'" json:"payment_status"`
	PaymentMethod  string          `gorm:"size:50" json:"payment_method"`
	Notes          string          `gorm:"type:text" json:"notes"`
	SyncMeta
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s Sale) GetID() string     { return s.ID }
func (s Sale) GetShopId() string { return s.ShopId }
func (s Sale) GetTable() Table   { return TableSales }
func (s Sale) Meta() SyncMeta    { return s.SyncMeta }

// SaleItem rides inside the sale row as JSON. Line items are not separately
// synced; the server rebuilds them from the sale payload.
type SaleItem struct {
	ProductId string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func EncodeSaleItems(items []SaleItem) []byte {
	b, _ := json.Marshal(items)
	return b
}

func DecodeSaleItems(raw []byte) []SaleItem {
	if len(raw) == 0 {
		return nil
	}
	var items []SaleItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

type NewSale struct {
	SaleNumber     string          `json:"sale_number"`
	CustomerId     string          `json:"customer_id"`
	SaleDate       time.Time       `json:"sale_date"`
	Items          []SaleItem      `json:"items" validate:"required,min=1"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	PaymentMethod  string          `json:"payment_method"`
	Notes          string          `json:"notes"`
}
