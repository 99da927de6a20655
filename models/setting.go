package models

import "time"

// Setting is a single row per shop.
type Setting struct {
	ID            string `gorm:"primary_key;size:64" json:"id"`
	ShopId        string `gorm:"uniqueIndex;not null" json:"shop_id"`
	ShopName      string `gorm:"size:100" json:"shop_name"`
	CurrencyCode  string `gorm:"size:10;default:'MMK'" json:"currency_code"`
	Timezone      string `gorm:"size:50;default:'Asia/Yangon'" json:"timezone"`
	ReceiptHeader string `gorm:"type:text" json:"receipt_header"`
	ReceiptFooter string `gorm:"type:text" json:"receipt_footer"`
	// DevicePinHash is local-only (bcrypt); it is stripped before any
	// payload leaves the device.
	DevicePinHash string `gorm:"size:100" json:"-"`
	SyncMeta
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s Setting) GetID() string     { return s.ID }
func (s Setting) GetShopId() string { return s.ShopId }
func (s Setting) GetTable() Table   { return TableSettings }
func (s Setting) Meta() SyncMeta    { return s.SyncMeta }

type NewSetting struct {
	ShopName      string `json:"shop_name"`
	CurrencyCode  string `json:"currency_code"`
	Timezone      string `json:"timezone"`
	ReceiptHeader string `json:"receipt_header"`
	ReceiptFooter string `json:"receipt_footer"`
	DevicePin     string `json:"device_pin" validate:"omitempty,len=4,numeric"`
}
