package offline

import (
	"context"

	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
)

// GetTrash lists the server's soft-delete bin from the local mirror,
// refreshing the mirror first when online.
func (f *Facade) GetTrash(ctx context.Context) ([]*models.TrashEntry, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if f.probe.Online(ctx) {
		if entries, err := f.client.Trash.List(ctx, shopId); err == nil {
			if err := f.replaceTrashMirror(ctx, shopId, entries); err != nil {
				return nil, err
			}
		} else {
			f.logger.WithField("module", "offline").Debug("trash fallback to local: " + err.Error())
		}
	}
	var entries []*models.TrashEntry
	err = f.store.DB().WithContext(ctx).
		Where("shop_id = ?", shopId).
		Order("deleted_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// RestoreTrash undeletes a record on the server. Restore mutates server
// retention state, so it is never queued; offline callers get ErrorOffline
// and must retry later.
func (f *Facade) RestoreTrash(ctx context.Context, table models.Table, id string) error {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return err
	}
	if !f.probe.Online(ctx) {
		return utils.ErrorOffline
	}
	if err := f.client.Trash.Restore(ctx, shopId, table, id); err != nil {
		return err
	}
	return f.dropTrashMirror(ctx, shopId, table, id)
}

// PurgeTrash permanently deletes a trashed record on the server. Like
// restore it requires connectivity and is never queued.
func (f *Facade) PurgeTrash(ctx context.Context, table models.Table, id string) error {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return err
	}
	if !f.probe.Online(ctx) {
		return utils.ErrorOffline
	}
	if err := f.client.Trash.Purge(ctx, shopId, table, id); err != nil {
		return err
	}
	return f.dropTrashMirror(ctx, shopId, table, id)
}

func (f *Facade) replaceTrashMirror(ctx context.Context, shopId string, entries []*models.TrashEntry) error {
	db := f.store.DB().WithContext(ctx)
	if err := db.Where("shop_id = ?", shopId).Delete(&models.TrashEntry{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		entry.ID = 0
		entry.ShopId = shopId
	}
	return db.Create(&entries).Error
}

func (f *Facade) dropTrashMirror(ctx context.Context, shopId string, table models.Table, id string) error {
	return f.store.DB().WithContext(ctx).
		Where("shop_id = ? AND table_name = ? AND record_id = ?", shopId, table, id).
		Delete(&models.TrashEntry{}).Error
}
