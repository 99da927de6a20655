package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Supplier struct {
	ID             string          `gorm:"primary_key;size:64" json:"id"`
	ShopId         string          `gorm:"index;not null" json:"shop_id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Phone          string          `gorm:"size:20" json:"phone"`
	Email          string          `gorm:"size:100" json:"email"`
	Address        string          `gorm:"type:text" json:"address"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_balance"`
	TotalDue       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_due"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	SyncMeta
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s Supplier) GetID() string     { return s.ID }
func (s Supplier) GetShopId() string { return s.ShopId }
func (s Supplier) GetTable() Table   { return TableSuppliers }
func (s Supplier) Meta() SyncMeta    { return s.SyncMeta }

type NewSupplier struct {
	Name           string          `json:"name" validate:"required"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Address        string          `json:"address"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}
