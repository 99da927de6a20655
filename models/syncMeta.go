package models

// SyncMeta carries the three flags that make a record "dirty" until the
// remote side confirms it. A record with any flag set must never be
// overwritten by a background refresh.
type SyncMeta struct {
	LocallyCreated  bool `gorm:"index;not null;default:false" json:"locally_created"`
	LocallyModified bool `gorm:"not null;default:false" json:"locally_modified"`
	LocallyDeleted  bool `gorm:"not null;default:false" json:"locally_deleted"`
}

func (m SyncMeta) Dirty() bool {
	return m.LocallyCreated || m.LocallyModified || m.LocallyDeleted
}

func (m *SyncMeta) ClearFlags() {
	m.LocallyCreated = false
	m.LocallyModified = false
	m.LocallyDeleted = false
}

// Record is implemented by every local entity type.
type Record interface {
	GetID() string
	GetShopId() string
	GetTable() Table
	Meta() SyncMeta
}
