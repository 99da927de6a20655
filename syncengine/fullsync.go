package syncengine

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/config"
	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/queue"
	"bitbucket.org/mmdatafocus/pitix_local/remote"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
)

// RecentSalesWindow bounds the sales pulled by a full sync.
const RecentSalesWindow = 30 * 24 * time.Hour

// FullSyncResult reports which tables completed. A failed table aborts the
// remainder; completed tables keep their data.
type FullSyncResult struct {
	Completed []models.Table `json:"completed"`
	Failed    models.Table   `json:"failed,omitempty"`
	Err       error          `json:"-"`
}

// FullSync bootstraps or resynchronizes a device: canonical lists for the
// master tables, a bounded recent window of sales, settings, and the trash
// mirror, written unconditionally. This is the one path allowed to
// overwrite local copies with server state.
func (e *Engine) FullSync(ctx context.Context, shopId string) FullSyncResult {
	if shopId == "" {
		return FullSyncResult{Err: utils.ErrorShopIdRequired}
	}
	if !e.probe.Online(ctx) {
		return FullSyncResult{Err: utils.ErrorOffline}
	}
	if !e.syncMu.TryLock() {
		return FullSyncResult{Err: errSyncInProgress}
	}
	defer e.syncMu.Unlock()

	e.mutateStatus(func(s *Status) {
		s.IsSyncing = true
		s.LastError = ""
		s.Progress = 0
	})

	steps := []struct {
		table models.Table
		pull  func(context.Context) error
	}{
		{models.TableProducts, func(ctx context.Context) error {
			records, err := e.client.Products.List(ctx, shopId)
			if err != nil {
				return err
			}
			return localstore.PutMany(ctx, e.store, records)
		}},
		{models.TableCategories, func(ctx context.Context) error {
			records, err := e.client.Categories.List(ctx, shopId)
			if err != nil {
				return err
			}
			return localstore.PutMany(ctx, e.store, records)
		}},
		{models.TableCustomers, func(ctx context.Context) error {
			records, err := e.client.Customers.List(ctx, shopId)
			if err != nil {
				return err
			}
			return localstore.PutMany(ctx, e.store, records)
		}},
		{models.TableSuppliers, func(ctx context.Context) error {
			records, err := e.client.Suppliers.List(ctx, shopId)
			if err != nil {
				return err
			}
			return localstore.PutMany(ctx, e.store, records)
		}},
		{models.TableSales, func(ctx context.Context) error {
			since := time.Now().Add(-RecentSalesWindow)
			records, err := e.client.Sales.ListRecent(ctx, shopId, since)
			if err != nil {
				return err
			}
			return localstore.PutMany(ctx, e.store, records)
		}},
		{models.TableSettings, func(ctx context.Context) error {
			setting, err := e.client.Settings.Get(ctx, shopId)
			if err != nil {
				return err
			}
			// Keep the local-only PIN hash across resync.
			if existing, err := localstore.Get[models.Setting](ctx, e.store, shopId, setting.ID); err == nil {
				setting.DevicePinHash = existing.DevicePinHash
			}
			return localstore.Put(ctx, e.store, setting)
		}},
	}

	result := FullSyncResult{}
	for i, step := range steps {
		if err := step.pull(ctx); err != nil {
			config.LogError(e.logger, "syncengine", "FullSync", string(step.table), nil, err)
			e.mutateStatus(func(s *Status) {
				s.IsSyncing = false
				s.LastError = err.Error()
			})
			result.Failed = step.table
			result.Err = err
			return result
		}
		result.Completed = append(result.Completed, step.table)
		progress := (i + 1) * 100 / len(steps)
		e.mutateStatus(func(s *Status) { s.Progress = progress })
	}

	e.refreshTrash(ctx, shopId)

	e.mutateStatus(func(s *Status) {
		s.IsSyncing = false
		s.LastSyncAt = time.Now()
		s.Progress = 100
	})
	return result
}

// Reconcile is the background refresh: it merges canonical server state
// into the local store while leaving records with unsynced local edits
// untouched and rows with a queued delete absent. Safe to run at any time
// connectivity is present.
func (e *Engine) Reconcile(ctx context.Context) error {
	if !e.probe.Online(ctx) {
		return utils.ErrorOffline
	}

	if err := reconcileTable(ctx, e, e.client.Products); err != nil {
		return err
	}
	if err := reconcileTable(ctx, e, e.client.Categories); err != nil {
		return err
	}
	if err := reconcileTable(ctx, e, e.client.Customers); err != nil {
		return err
	}
	if err := reconcileTable(ctx, e, e.client.Suppliers); err != nil {
		return err
	}

	e.refreshTrash(ctx, e.shopId)
	return nil
}

func reconcileTable[T models.Record](ctx context.Context, e *Engine, api remote.API[T]) error {
	records, err := api.List(ctx, e.shopId)
	if err != nil {
		return err
	}
	records, err = queue.FilterPendingDeletes(ctx, e.queue, e.shopId, records)
	if err != nil {
		return err
	}
	_, err = localstore.PutManyPreserveDirty(ctx, e.store, records)
	return err
}

// refreshTrash mirrors the server's soft-delete bin locally so the restore
// UI can list it offline. Best effort.
func (e *Engine) refreshTrash(ctx context.Context, shopId string) {
	entries, err := e.client.Trash.List(ctx, shopId)
	if err != nil {
		config.LogError(e.logger, "syncengine", "refreshTrash", "list", nil, err)
		return
	}
	db := e.store.DB().WithContext(ctx)
	if err := db.Where("shop_id = ?", shopId).Delete(&models.TrashEntry{}).Error; err != nil {
		config.LogError(e.logger, "syncengine", "refreshTrash", "clear", nil, err)
		return
	}
	for _, entry := range entries {
		entry.ShopId = shopId
		if err := db.Create(entry).Error; err != nil {
			config.LogError(e.logger, "syncengine", "refreshTrash", "insert", entry.RecordId, err)
			return
		}
	}
}
