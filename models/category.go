package models

import "time"

type Category struct {
	ID          string `gorm:"primary_key;size:64" json:"id"`
	ShopId      string `gorm:"index;not null" json:"shop_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	SyncMeta
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c Category) GetID() string     { return c.ID }
func (c Category) GetShopId() string { return c.ShopId }
func (c Category) GetTable() Table   { return TableCategories }
func (c Category) Meta() SyncMeta    { return c.SyncMeta }

type NewCategory struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}
