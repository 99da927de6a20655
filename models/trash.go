package models

import "time"

// TrashEntry mirrors a server-side soft-deleted record so the restore/purge
// UI can list it offline. Restore and purge themselves require connectivity.
type TrashEntry struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	ShopId    string    `gorm:"index;not null" json:"shop_id"`
	Table     Table     `gorm:"column:table_name;size:50;not null" json:"table"`
	RecordId  string    `gorm:"size:64;not null" json:"record_id"`
	Label     string    `gorm:"size:200" json:"label"`
	Payload   []byte    `gorm:"type:text" json:"payload"`
	DeletedAt time.Time `json:"deleted_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
