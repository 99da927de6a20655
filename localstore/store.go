// Package localstore is the on-device record store. Every operation is
// shop-scoped and durable; reads never touch the network.
package localstore

import (
	"context"

	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Get fetches one record by id, scoped to the shop.
// (may return RecordNotFound)
func Get[T models.Record](ctx context.Context, s *Store, shopId string, id string) (*T, error) {
	var result T
	dbCtx := s.db.WithContext(ctx)
	if shopId != "" {
		dbCtx = dbCtx.Where("shop_id = ?", shopId)
	}
	if err := dbCtx.Where("id = ?", id).First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// GetAll fetches every record of one table for the shop. Other shops' rows
// are never loaded.
func GetAll[T models.Record](ctx context.Context, s *Store, shopId string) ([]*T, error) {
	var results []*T
	err := s.db.WithContext(ctx).Where("shop_id = ?", shopId).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Put upserts the whole row keyed by id. It never merges fields; callers
// pass the complete intended record.
func Put[T models.Record](ctx context.Context, s *Store, record *T) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(record).Error
}

// PutMany upserts unconditionally. This is the full-sync path; it is the
// one write allowed to overwrite local copies with canonical state.
func PutMany[T models.Record](ctx context.Context, s *Store, records []*T) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&records).Error
}

// PutManyPreserveDirty upserts canonical records but skips any row whose
// stored copy still has unsynced local edits. Background refresh must go
// through here so pending offline work is never clobbered.
// Returns how many records were applied.
func PutManyPreserveDirty[T models.Record](ctx context.Context, s *Store, records []*T) (int, error) {
	applied := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			rec := *record
			var existing T
			err := tx.Where("id = ?", rec.GetID()).First(&existing).Error
			if err == nil && existing.Meta().Dirty() {
				continue
			}
			if err != nil && err != gorm.ErrRecordNotFound {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error; err != nil {
				return err
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// Delete removes a record by id. Missing ids are not an error.
func Delete[T models.Record](ctx context.Context, s *Store, shopId string, id string) error {
	var zero T
	dbCtx := s.db.WithContext(ctx)
	if shopId != "" {
		dbCtx = dbCtx.Where("shop_id = ?", shopId)
	}
	return dbCtx.Where("id = ?", id).Delete(&zero).Error
}

func DeleteMany[T models.Record](ctx context.Context, s *Store, shopId string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var zero T
	dbCtx := s.db.WithContext(ctx)
	if shopId != "" {
		dbCtx = dbCtx.Where("shop_id = ?", shopId)
	}
	return dbCtx.Where("id IN ?", utils.UniqueSlice(ids)).Delete(&zero).Error
}

// Replace atomically swaps a surrogate-id row for its canonical record:
// the old row is deleted and the server row inserted in one transaction.
// After it returns, exactly one row exists, under the server id.
func Replace[T models.Record](ctx context.Context, s *Store, oldId string, record *T) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var zero T
		if err := tx.Where("id = ?", oldId).Delete(&zero).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
	})
}
