// Package queue is the durable mutation queue: an ordered log of local
// writes awaiting remote confirmation, independent of the record store.
package queue

import (
	"context"
	"encoding/json"

	"bitbucket.org/mmdatafocus/pitix_local/models"
	"gorm.io/gorm"
)

type Queue struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Queue {
	return &Queue{db: db}
}

// Enqueue appends one pending mutation. The payload is stored as JSON so
// the engine can replay it against the remote API verbatim.
func (q *Queue) Enqueue(ctx context.Context, shopId string, table models.Table, op models.Operation, recordId string, payload any) (*models.QueueItem, error) {
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	item := models.QueueItem{
		ShopId:    shopId,
		Table:     table,
		Operation: op,
		RecordId:  recordId,
		Payload:   raw,
	}
	if err := q.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// EnqueueUpdate coalesces: if an unsynced update for the same record is
// already queued, its payload is replaced instead of appending a second
// item. The facade rebuilds update payloads from the latest local state,
// so one item per record is always enough.
func (q *Queue) EnqueueUpdate(ctx context.Context, shopId string, table models.Table, recordId string, payload any) (*models.QueueItem, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	// An unsynced create for the same record absorbs the edit: the server
	// will first see the record in its latest shape.
	var existing models.QueueItem
	err = q.db.WithContext(ctx).
		Where("shop_id = ? AND table_name = ? AND record_id = ? AND operation IN ? AND synced = ?",
			shopId, table, recordId, []models.Operation{models.OperationCreate, models.OperationUpdate}, false).
		Order("id ASC").
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return q.Enqueue(ctx, shopId, table, models.OperationUpdate, recordId, payload)
	}
	if err != nil {
		return nil, err
	}
	if err := q.db.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{"payload": raw, "retry_count": 0, "last_error": ""}).Error; err != nil {
		return nil, err
	}
	existing.Payload = raw
	existing.RetryCount = 0
	existing.LastError = ""
	return &existing, nil
}

// DequeueEligible returns unsynced items with retry_count below the
// ceiling, in insertion order. Items past the ceiling stay in the table
// for the summary but are excluded from automatic drains.
func (q *Queue) DequeueEligible(ctx context.Context, shopId string, maxRetries int) ([]*models.QueueItem, error) {
	var items []*models.QueueItem
	err := q.db.WithContext(ctx).
		Where("shop_id = ? AND synced = ? AND retry_count < ?", shopId, false, maxRetries).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Get reloads one item by id. The engine re-reads each item right before
// applying it, because a create confirmed earlier in the same drain may have
// re-pointed later items at the canonical id.
func (q *Queue) Get(ctx context.Context, id uint) (*models.QueueItem, error) {
	var item models.QueueItem
	if err := q.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (q *Queue) MarkSynced(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"synced": true, "last_error": ""}).Error
}

func (q *Queue) MarkFailed(ctx context.Context, id uint, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return q.db.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_error":  msg,
		}).Error
}

// ClearSynced garbage-collects confirmed items.
func (q *Queue) ClearSynced(ctx context.Context, shopId string) error {
	return q.db.WithContext(ctx).
		Where("shop_id = ? AND synced = ?", shopId, true).
		Delete(&models.QueueItem{}).Error
}

func (q *Queue) PendingCount(ctx context.Context, shopId string) (int, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("shop_id = ? AND synced = ?", shopId, false).
		Count(&count).Error
	return int(count), err
}

// Summary groups pending work by table and operation and lists items that
// have exhausted their retries. Exhausted items are never auto-discarded;
// they wait here for operator attention.
func (q *Queue) Summary(ctx context.Context, shopId string, maxRetries int) (*models.QueueSummary, error) {
	var items []*models.QueueItem
	err := q.db.WithContext(ctx).
		Where("shop_id = ? AND synced = ?", shopId, false).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	// Every table appears in the summary, zero or not, so the operator UI
	// renders a stable list.
	summary := models.QueueSummary{
		ByTable:     make(map[models.Table]int, len(models.AllTables())),
		ByOperation: make(map[models.Operation]int),
	}
	for _, table := range models.AllTables() {
		summary.ByTable[table] = 0
	}
	for _, item := range items {
		summary.PendingCount++
		summary.ByTable[item.Table]++
		summary.ByOperation[item.Operation]++
		if item.RetryCount >= maxRetries {
			summary.FailedCount++
			summary.FailedItems = append(summary.FailedItems, models.QueueFailedDetail{
				ID:        item.ID,
				Table:     item.Table,
				Operation: item.Operation,
				RecordId:  item.RecordId,
				LastError: item.LastError,
				Retries:   item.RetryCount,
			})
		}
	}
	return &summary, nil
}

// PendingDeleteIds lists record ids with an unsynced delete still queued.
// Refresh paths consult this so a row removed offline is not resurrected by
// canonical server state before the tombstone drains.
func (q *Queue) PendingDeleteIds(ctx context.Context, shopId string, table models.Table) ([]string, error) {
	var ids []string
	err := q.db.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("shop_id = ? AND table_name = ? AND operation = ? AND synced = ?",
			shopId, table, models.OperationDelete, false).
		Pluck("record_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FilterPendingDeletes drops canonical records whose id has an unsynced
// delete queued.
func FilterPendingDeletes[T models.Record](ctx context.Context, q *Queue, shopId string, records []*T) ([]*T, error) {
	if len(records) == 0 {
		return records, nil
	}
	var zero T
	ids, err := q.PendingDeleteIds(ctx, shopId, zero.GetTable())
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return records, nil
	}
	deleted := make(map[string]bool, len(ids))
	for _, id := range ids {
		deleted[id] = true
	}
	var kept []*T
	for _, record := range records {
		if !deleted[(*record).GetID()] {
			kept = append(kept, record)
		}
	}
	return kept, nil
}

// RetargetRecord re-points queued mutations at a new id after a create
// confirmation remaps the surrogate. The payload keeps its own id field in
// sync so replayed updates carry the canonical id.
func (q *Queue) RetargetRecord(ctx context.Context, shopId string, table models.Table, oldId string, newId string) error {
	var items []*models.QueueItem
	err := q.db.WithContext(ctx).
		Where("shop_id = ? AND table_name = ? AND record_id = ? AND synced = ?", shopId, table, oldId, false).
		Find(&items).Error
	if err != nil {
		return err
	}
	for _, item := range items {
		updates := map[string]interface{}{"record_id": newId}
		if len(item.Payload) > 0 {
			var payload map[string]interface{}
			if err := json.Unmarshal(item.Payload, &payload); err == nil {
				if _, ok := payload["id"]; ok {
					payload["id"] = newId
					if raw, err := json.Marshal(payload); err == nil {
						updates["payload"] = raw
					}
				}
			}
		}
		if err := q.db.WithContext(ctx).
			Model(&models.QueueItem{}).
			Where("id = ?", item.ID).
			Updates(updates).Error; err != nil {
			return err
		}
	}
	return nil
}

// RetryFailed resets an exhausted item so the next drain picks it up again.
// Operator action.
func (q *Queue) RetryFailed(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"retry_count": 0, "last_error": ""}).Error
}

// Discard drops an exhausted item for good. Operator action; the engine
// itself never discards failed work.
func (q *Queue) Discard(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.QueueItem{}).Error
}
