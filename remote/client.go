// Package remote defines the capabilities the sync engine and the offline
// facade need from the PitiX cloud API, plus the HTTP implementation.
package remote

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/models"
)

// API is one entity table's remote surface. List returns canonical server
// records; Create returns the record with its server-assigned id.
type API[T models.Record] interface {
	List(ctx context.Context, shopId string) ([]*T, error)
	Create(ctx context.Context, record *T) (*T, error)
	Update(ctx context.Context, record *T) (*T, error)
	Delete(ctx context.Context, shopId string, id string) error
}

// SalesAPI adds the bounded recent window used by full sync.
type SalesAPI interface {
	API[models.Sale]
	ListRecent(ctx context.Context, shopId string, since time.Time) ([]*models.Sale, error)
}

// SettingsAPI is single-row per shop.
type SettingsAPI interface {
	Get(ctx context.Context, shopId string) (*models.Setting, error)
	Update(ctx context.Context, record *models.Setting) (*models.Setting, error)
}

// TrashAPI drives the server-side soft-delete bin. Restore and purge
// affect server retention policy, so they are never queued locally.
type TrashAPI interface {
	List(ctx context.Context, shopId string) ([]*models.TrashEntry, error)
	Restore(ctx context.Context, shopId string, table models.Table, id string) error
	Purge(ctx context.Context, shopId string, table models.Table, id string) error
}

// Client aggregates one capability per table.
type Client struct {
	Products         API[models.Product]
	Categories       API[models.Category]
	Customers        API[models.Customer]
	Suppliers        API[models.Supplier]
	Sales            SalesAPI
	Purchases        API[models.Purchase]
	Expenses         API[models.Expense]
	CashTransactions API[models.CashTransaction]
	StockAdjustments API[models.StockAdjustment]
	Settings         SettingsAPI
	Trash            TrashAPI
}
