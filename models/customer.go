package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
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

func (c Customer) GetID() string     { return c.ID }
func (c Customer) GetShopId() string { return c.ShopId }
func (c Customer) GetTable() Table   { return TableCustomers }
func (c Customer) Meta() SyncMeta    { return c.SyncMeta }

type NewCustomer struct {
	Name           string          `json:"name" validate:"required"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Address        string          `json:"address"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}
