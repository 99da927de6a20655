package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Purchase struct {
	ID             string          `gorm:"primary_key;size:64" json:"id"`
	ShopId         string          `gorm:"index;not null" json:"shop_id"`
	PurchaseNumber string          `gorm:"size:50" json:"purchase_number"`
	SupplierId     string          `gorm:"size:64;index" json:"supplier_id"`
	PurchaseDate   time.Time       `gorm:"index" json:"purchase_date"`
	Items          []byte          `gorm:"type:text" json:"items"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	DueAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"due_amount"`
	PaymentStatus  PaymentStatus   `gorm:"size:20;default:'Unpaid'" json:"payment_status"`
	Notes          string          `gorm:"type:text" json:"notes"`
	SyncMeta
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Purchase) GetID() string     { return p.ID }
func (p Purchase) GetShopId() string { return p.ShopId }
func (p Purchase) GetTable() Table   { return TablePurchases }
func (p Purchase) Meta() SyncMeta    { return p.SyncMeta }

type PurchaseItem struct {
	ProductId string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func EncodePurchaseItems(items []PurchaseItem) []byte {
	b, _ := json.Marshal(items)
	return b
}

func DecodePurchaseItems(raw []byte) []PurchaseItem {
	if len(raw) == 0 {
		return nil
	}
	var items []PurchaseItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

type NewPurchase struct {
	PurchaseNumber string          `json:"purchase_number"`
	SupplierId     string          `json:"supplier_id"`
	PurchaseDate   time.Time       `json:"purchase_date"`
	Items          []PurchaseItem  `json:"items" validate:"required,min=1"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Notes          string          `json:"notes"`
}
