package models

import "time"

// QueueItem is one durable pending mutation. It is created by the offline
// facade at the moment of every local write and owned by the sync engine
// until it is confirmed remote-side or exhausts its retries.
type QueueItem struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	ShopId    string    `gorm:"index;not null" json:"shop_id"`
	Table     Table     `gorm:"column:table_name;size:50;not null;index" json:"table"`
	Operation Operation `gorm:"size:10;not null" json:"operation"`
	// RecordId is the id the mutation targets. For creates this is the
	// surrogate id; the engine re-points it when the server id arrives.
	RecordId   string    `gorm:"size:64;index" json:"record_id"`
	Payload    []byte    `gorm:"type:text" json:"payload"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	LastError  string    `gorm:"type:text" json:"last_error"`
	Synced     bool      `gorm:"not null;default:false;index" json:"synced"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// QueueSummary is what the operator UI shows: pending work grouped by table
// and operation, plus items that have exhausted their retries.
type QueueSummary struct {
	PendingCount int                 `json:"pending_count"`
	FailedCount  int                 `json:"failed_count"`
	ByTable      map[Table]int       `json:"by_table"`
	ByOperation  map[Operation]int   `json:"by_operation"`
	FailedItems  []QueueFailedDetail `json:"failed_items"`
}

type QueueFailedDetail struct {
	ID        uint      `json:"id"`
	Table     Table     `json:"table"`
	Operation Operation `json:"operation"`
	RecordId  string    `json:"record_id"`
	LastError string    `json:"last_error"`
	Retries   int       `json:"retries"`
}
