package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/pitix_local/config"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/queue"
)

func testQueue(t *testing.T) *queue.Queue {
	t.Helper()
	db, err := config.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return queue.New(db)
}

func TestDequeueKeepsInsertionOrder(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := q.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationCreate, id, map[string]string{"id": id}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	items, err := q.DequeueEligible(ctx, "shop-1", 3)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, want := range []string{"a", "b", "c"} {
		if items[i].RecordId != want {
			t.Fatalf("order broken at %d: got %s want %s", i, items[i].RecordId, want)
		}
	}
}

func TestRetryCeilingExcludesExhaustedItems(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	item, err := q.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationCreate, "p-1", nil)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := q.MarkFailed(ctx, item.ID, errors.New("server 500")); err != nil {
			t.Fatalf("markFailed: %v", err)
		}
	}

	items, err := q.DequeueEligible(ctx, "shop-1", 3)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("exhausted item must not be eligible, got %d", len(items))
	}

	// Never auto-discarded: it still counts as pending and shows up failed.
	pending, err := q.PendingCount(ctx, "shop-1")
	if err != nil {
		t.Fatalf("pendingCount: %v", err)
	}
	if pending != 1 {
		t.Fatalf("exhausted item must stay pending, got %d", pending)
	}

	summary, err := q.Summary(ctx, "shop-1", 3)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.FailedCount != 1 || len(summary.FailedItems) != 1 {
		t.Fatalf("expected 1 failed item, got %+v", summary)
	}
	if summary.FailedItems[0].LastError != "server 500" {
		t.Fatalf("last error not recorded: %q", summary.FailedItems[0].LastError)
	}
}

func TestSummaryListsEveryTable(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, "shop-1", models.TableCustomers, models.OperationCreate, "c-1", nil); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	summary, err := q.Summary(ctx, "shop-1", 3)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.ByTable) != len(models.AllTables()) {
		t.Fatalf("summary must carry every table, got %d of %d", len(summary.ByTable), len(models.AllTables()))
	}
	if summary.ByTable[models.TableCustomers] != 1 {
		t.Fatalf("queued table not counted: %+v", summary.ByTable)
	}
	count, ok := summary.ByTable[models.TableProducts]
	if !ok || count != 0 {
		t.Fatalf("idle table must appear with a zero count, got %d (present=%v)", count, ok)
	}
}

func TestRetryFailedMakesItemEligibleAgain(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	item, _ := q.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationCreate, "p-1", nil)
	for i := 0; i < 3; i++ {
		q.MarkFailed(ctx, item.ID, errors.New("boom"))
	}
	if err := q.RetryFailed(ctx, item.ID); err != nil {
		t.Fatalf("retryFailed: %v", err)
	}

	items, _ := q.DequeueEligible(ctx, "shop-1", 3)
	if len(items) != 1 {
		t.Fatalf("reset item should be eligible, got %d", len(items))
	}
}

func TestEnqueueUpdateCoalescesOntoPendingUpdate(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	first, err := q.EnqueueUpdate(ctx, "shop-1", models.TableProducts, "p-1", map[string]string{"id": "p-1", "name": "v1"})
	if err != nil {
		t.Fatalf("enqueueUpdate: %v", err)
	}
	second, err := q.EnqueueUpdate(ctx, "shop-1", models.TableProducts, "p-1", map[string]string{"id": "p-1", "name": "v2"})
	if err != nil {
		t.Fatalf("enqueueUpdate again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("second edit must coalesce onto the first item")
	}

	items, _ := q.DequeueEligible(ctx, "shop-1", 3)
	if len(items) != 1 {
		t.Fatalf("expected one queued item, got %d", len(items))
	}
	var payload map[string]string
	if err := json.Unmarshal(items[0].Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["name"] != "v2" {
		t.Fatalf("payload must carry the latest edit, got %q", payload["name"])
	}
}

func TestEnqueueUpdateFoldsIntoPendingCreate(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	created, _ := q.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationCreate, "p-1", map[string]string{"id": "p-1", "name": "v1"})
	folded, err := q.EnqueueUpdate(ctx, "shop-1", models.TableProducts, "p-1", map[string]string{"id": "p-1", "name": "v2"})
	if err != nil {
		t.Fatalf("enqueueUpdate: %v", err)
	}
	if folded.ID != created.ID {
		t.Fatalf("edit must fold into the pending create")
	}
	if folded.Operation != models.OperationCreate {
		t.Fatalf("folded item must stay a create, got %s", folded.Operation)
	}
}

func TestRetargetRecordRewritesIdAndPayload(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	item, _ := q.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationUpdate, "local-1", map[string]string{"id": "local-1", "name": "Rice"})
	if err := q.RetargetRecord(ctx, "shop-1", models.TableProducts, "local-1", "srv-1"); err != nil {
		t.Fatalf("retarget: %v", err)
	}

	got, err := q.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RecordId != "srv-1" {
		t.Fatalf("record id not re-pointed: %s", got.RecordId)
	}
	var payload map[string]string
	json.Unmarshal(got.Payload, &payload)
	if payload["id"] != "srv-1" {
		t.Fatalf("payload id not rewritten: %s", payload["id"])
	}
	if payload["name"] != "Rice" {
		t.Fatalf("payload fields must survive the rewrite")
	}
}

func TestPendingDeleteIdsListsOnlyUnsyncedTombstones(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	drained, _ := q.Enqueue(ctx, "shop-1", models.TableCustomers, models.OperationDelete, "c-1", nil)
	q.Enqueue(ctx, "shop-1", models.TableCustomers, models.OperationDelete, "c-2", nil)
	q.Enqueue(ctx, "shop-1", models.TableCustomers, models.OperationUpdate, "c-3", map[string]string{"id": "c-3"})
	q.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationDelete, "p-1", nil)
	if err := q.MarkSynced(ctx, drained.ID); err != nil {
		t.Fatalf("markSynced: %v", err)
	}

	ids, err := q.PendingDeleteIds(ctx, "shop-1", models.TableCustomers)
	if err != nil {
		t.Fatalf("pendingDeleteIds: %v", err)
	}
	if len(ids) != 1 || ids[0] != "c-2" {
		t.Fatalf("expected only the unsynced customer tombstone, got %v", ids)
	}
}

func TestFilterPendingDeletesDropsTombstonedRows(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	q.Enqueue(ctx, "shop-1", models.TableCustomers, models.OperationDelete, "c-1", nil)
	records := []*models.Customer{
		{ID: "c-1", ShopId: "shop-1", Name: "Deleted offline"},
		{ID: "c-2", ShopId: "shop-1", Name: "Kept"},
	}

	kept, err := queue.FilterPendingDeletes(ctx, q, "shop-1", records)
	if err != nil {
		t.Fatalf("filterPendingDeletes: %v", err)
	}
	if len(kept) != 1 || kept[0].ID != "c-2" {
		t.Fatalf("tombstoned row must be dropped, got %v", kept)
	}
}

func TestClearSyncedRemovesOnlyConfirmedItems(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	done, _ := q.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationCreate, "p-1", nil)
	q.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationCreate, "p-2", nil)
	if err := q.MarkSynced(ctx, done.ID); err != nil {
		t.Fatalf("markSynced: %v", err)
	}
	if err := q.ClearSynced(ctx, "shop-1"); err != nil {
		t.Fatalf("clearSynced: %v", err)
	}

	pending, _ := q.PendingCount(ctx, "shop-1")
	if pending != 1 {
		t.Fatalf("expected 1 pending after gc, got %d", pending)
	}
}
