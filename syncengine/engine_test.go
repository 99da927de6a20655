package syncengine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/config"
	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/queue"
	"bitbucket.org/mmdatafocus/pitix_local/remote"
	"bitbucket.org/mmdatafocus/pitix_local/syncengine"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
)

var errRemoteDown = errors.New("remote down")

type fakeAPI[T models.Record] struct {
	mu          sync.Mutex
	fail        bool
	list        []*T
	canonCreate func(T) T
	canonUpdate func(T) T
	createHook  func()
	creates     int
	deletes     []string
}

func (a *fakeAPI[T]) List(ctx context.Context, shopId string) ([]*T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return nil, errRemoteDown
	}
	return a.list, nil
}

func (a *fakeAPI[T]) Create(ctx context.Context, record *T) (*T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return nil, errRemoteDown
	}
	if a.createHook != nil {
		a.createHook()
	}
	a.creates++
	rec := *record
	if a.canonCreate != nil {
		rec = a.canonCreate(rec)
	}
	return &rec, nil
}

func (a *fakeAPI[T]) Update(ctx context.Context, record *T) (*T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return nil, errRemoteDown
	}
	rec := *record
	if a.canonUpdate != nil {
		rec = a.canonUpdate(rec)
	}
	return &rec, nil
}

func (a *fakeAPI[T]) Delete(ctx context.Context, shopId string, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errRemoteDown
	}
	a.deletes = append(a.deletes, id)
	return nil
}

type fakeSalesAPI struct {
	*fakeAPI[models.Sale]
}

func (a fakeSalesAPI) ListRecent(ctx context.Context, shopId string, since time.Time) ([]*models.Sale, error) {
	return a.List(ctx, shopId)
}

type fakeSettingsAPI struct {
	mu      sync.Mutex
	fail    bool
	setting *models.Setting
}

func (a *fakeSettingsAPI) Get(ctx context.Context, shopId string) (*models.Setting, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail || a.setting == nil {
		return nil, errRemoteDown
	}
	setting := *a.setting
	return &setting, nil
}

func (a *fakeSettingsAPI) Update(ctx context.Context, record *models.Setting) (*models.Setting, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return nil, errRemoteDown
	}
	setting := *record
	setting.SyncMeta = models.SyncMeta{}
	a.setting = &setting
	return &setting, nil
}

type fakeTrashAPI struct {
	mu       sync.Mutex
	fail     bool
	entries  []*models.TrashEntry
	restored []string
	purged   []string
}

func (a *fakeTrashAPI) List(ctx context.Context, shopId string) ([]*models.TrashEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return nil, errRemoteDown
	}
	return a.entries, nil
}

func (a *fakeTrashAPI) Restore(ctx context.Context, shopId string, table models.Table, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errRemoteDown
	}
	a.restored = append(a.restored, id)
	return nil
}

func (a *fakeTrashAPI) Purge(ctx context.Context, shopId string, table models.Table, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errRemoteDown
	}
	a.purged = append(a.purged, id)
	return nil
}

type fixtures struct {
	store      *localstore.Store
	queue      *queue.Queue
	probe      *remote.StaticProbe
	products   *fakeAPI[models.Product]
	categories *fakeAPI[models.Category]
	customers  *fakeAPI[models.Customer]
	suppliers  *fakeAPI[models.Supplier]
	sales      *fakeAPI[models.Sale]
	settings   *fakeSettingsAPI
	trash      *fakeTrashAPI
}

func newTestEngine(t *testing.T) (*syncengine.Engine, *fixtures) {
	t.Helper()
	db, err := config.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	fx := &fixtures{
		store:      localstore.New(db),
		queue:      queue.New(db),
		probe:      remote.NewStaticProbe(true),
		products:   &fakeAPI[models.Product]{},
		categories: &fakeAPI[models.Category]{},
		customers:  &fakeAPI[models.Customer]{},
		suppliers:  &fakeAPI[models.Supplier]{},
		sales:      &fakeAPI[models.Sale]{},
		settings:   &fakeSettingsAPI{},
		trash:      &fakeTrashAPI{},
	}
	client := &remote.Client{
		Products:         fx.products,
		Categories:       fx.categories,
		Customers:        fx.customers,
		Suppliers:        fx.suppliers,
		Sales:            fakeSalesAPI{fx.sales},
		Purchases:        &fakeAPI[models.Purchase]{},
		Expenses:         &fakeAPI[models.Expense]{},
		CashTransactions: &fakeAPI[models.CashTransaction]{},
		StockAdjustments: &fakeAPI[models.StockAdjustment]{},
		Settings:         fx.settings,
		Trash:            fx.trash,
	}
	engine := syncengine.New(fx.store, fx.queue, client, fx.probe, config.GetLogger(), "shop-1", syncengine.DefaultConfig())
	return engine, fx
}

func TestSyncReturnsFalseWhenOffline(t *testing.T) {
	engine, fx := newTestEngine(t)
	fx.probe.SetOnline(false)

	if result := engine.Sync(context.Background()); result.Success {
		t.Fatalf("offline sync must not report success")
	}
}

func TestSyncSingleFlight(t *testing.T) {
	engine, fx := newTestEngine(t)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	fx.products.createHook = func() {
		close(entered)
		<-release
	}
	fx.products.canonCreate = func(p models.Product) models.Product {
		p.SyncMeta = models.SyncMeta{}
		return p
	}
	product := &models.Product{ID: "p-1", ShopId: "shop-1", Name: "Rice"}
	if _, err := fx.queue.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationCreate, "p-1", product); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	done := make(chan syncengine.Result, 1)
	go func() {
		done <- engine.Sync(ctx)
	}()
	<-entered

	// The first drain is parked inside the remote create; a second caller
	// must bail out immediately instead of running alongside it.
	if result := engine.Sync(ctx); result.Success {
		t.Fatalf("concurrent sync must bail out without success")
	}
	close(release)

	if result := <-done; !result.Success || result.Synced != 1 {
		t.Fatalf("first drain should finish normally, got %+v", result)
	}
}

func TestSyncConfirmsCreateAndRemapsSurrogateId(t *testing.T) {
	engine, fx := newTestEngine(t)
	ctx := context.Background()

	fx.products.canonCreate = func(p models.Product) models.Product {
		p.ID = "srv-1"
		p.SyncMeta = models.SyncMeta{}
		return p
	}
	fx.products.canonUpdate = func(p models.Product) models.Product {
		p.SyncMeta = models.SyncMeta{}
		return p
	}

	surrogate := &models.Product{ID: "local-1", ShopId: "shop-1", Name: "Rice", IsActive: utils.NewTrue()}
	surrogate.LocallyCreated = true
	if err := localstore.Put(ctx, fx.store, surrogate); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := fx.queue.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationCreate, "local-1", surrogate); err != nil {
		t.Fatalf("enqueue create: %v", err)
	}

	// An edit queued behind the create, still addressed by the surrogate id.
	edited := *surrogate
	edited.Name = "Rice 5kg"
	edited.LocallyModified = true
	if _, err := fx.queue.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationUpdate, "local-1", &edited); err != nil {
		t.Fatalf("enqueue update: %v", err)
	}

	result := engine.Sync(ctx)
	if !result.Success || result.Synced != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	if _, err := localstore.Get[models.Product](ctx, fx.store, "shop-1", "local-1"); err != utils.ErrorRecordNotFound {
		t.Fatalf("surrogate row should be gone, got %v", err)
	}
	got, err := localstore.Get[models.Product](ctx, fx.store, "shop-1", "srv-1")
	if err != nil {
		t.Fatalf("canonical row missing: %v", err)
	}
	if got.Name != "Rice 5kg" {
		t.Fatalf("re-pointed update was not applied, got %q", got.Name)
	}
	if got.Dirty() {
		t.Fatalf("confirmed record must carry no local flags")
	}

	pending, _ := fx.queue.PendingCount(ctx, "shop-1")
	if pending != 0 {
		t.Fatalf("queue should be drained, %d pending", pending)
	}

	status := engine.Status()
	if status.LastSyncAt.IsZero() || status.Progress != 100 || status.IsSyncing {
		t.Fatalf("status not finalized: %+v", status)
	}
}

func TestSyncQueuedSettingsKeepsDevicePin(t *testing.T) {
	engine, fx := newTestEngine(t)
	ctx := context.Background()

	local := &models.Setting{ID: "set-1", ShopId: "shop-1", ShopName: "Edited offline", DevicePinHash: "hash-1"}
	local.LocallyModified = true
	if err := localstore.Put(ctx, fx.store, local); err != nil {
		t.Fatalf("seed setting: %v", err)
	}
	// The queued payload goes through JSON, which strips the PIN hash.
	if _, err := fx.queue.EnqueueUpdate(ctx, "shop-1", models.TableSettings, "set-1", local); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if result := engine.Sync(ctx); !result.Success || result.Synced != 1 {
		t.Fatalf("drain failed: %+v", result)
	}

	got, err := localstore.Get[models.Setting](ctx, fx.store, "shop-1", "set-1")
	if err != nil {
		t.Fatalf("get setting: %v", err)
	}
	if got.ShopName != "Edited offline" {
		t.Fatalf("settings update not applied: %q", got.ShopName)
	}
	if got.Dirty() {
		t.Fatalf("confirmed setting must carry no local flags")
	}
	if got.DevicePinHash != "hash-1" {
		t.Fatalf("device pin hash must survive a queued settings drain, got %q", got.DevicePinHash)
	}
}

func TestSyncRetryCeilingStopsAutomaticRetries(t *testing.T) {
	engine, fx := newTestEngine(t)
	ctx := context.Background()

	fx.products.fail = true
	product := &models.Product{ID: "local-1", ShopId: "shop-1", Name: "Rice"}
	if _, err := fx.queue.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationCreate, "local-1", product); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	maxRetries := syncengine.DefaultConfig().MaxRetries
	for i := 0; i < maxRetries; i++ {
		if result := engine.Sync(ctx); result.Success || result.Failed != 1 {
			t.Fatalf("drain %d should fail the item, got %+v", i, result)
		}
	}

	// Retries exhausted: the next drain sees nothing eligible.
	if result := engine.Sync(ctx); !result.Success || result.Synced != 0 {
		t.Fatalf("empty drain expected, got %+v", result)
	}

	summary, err := fx.queue.Summary(ctx, "shop-1", maxRetries)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.FailedCount != 1 || summary.PendingCount != 1 {
		t.Fatalf("exhausted item must stay visible, got %+v", summary)
	}
}

func TestSyncStatusSubscription(t *testing.T) {
	engine, fx := newTestEngine(t)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []syncengine.Status
	unsubscribe := engine.Subscribe(func(s syncengine.Status) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	defer unsubscribe()

	fx.products.canonCreate = func(p models.Product) models.Product {
		p.SyncMeta = models.SyncMeta{}
		return p
	}
	product := &models.Product{ID: "p-1", ShopId: "shop-1", Name: "Rice"}
	fx.queue.Enqueue(ctx, "shop-1", models.TableProducts, models.OperationCreate, "p-1", product)

	engine.Sync(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) < 3 {
		t.Fatalf("expected initial + progress + final broadcasts, got %d", len(seen))
	}
	last := seen[len(seen)-1]
	if last.IsSyncing || last.Progress != 100 {
		t.Fatalf("final status wrong: %+v", last)
	}
}

func TestFullSyncOverwritesLocalStateAndKeepsPin(t *testing.T) {
	engine, fx := newTestEngine(t)
	ctx := context.Background()

	dirty := &models.Product{ID: "p-1", ShopId: "shop-1", Name: "Local edit"}
	dirty.LocallyModified = true
	if err := localstore.Put(ctx, fx.store, dirty); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	localSetting := &models.Setting{ID: "set-1", ShopId: "shop-1", ShopName: "Old", DevicePinHash: "hash-1"}
	if err := localstore.Put(ctx, fx.store, localSetting); err != nil {
		t.Fatalf("seed setting: %v", err)
	}

	fx.products.list = []*models.Product{{ID: "p-1", ShopId: "shop-1", Name: "Canonical"}}
	fx.settings.setting = &models.Setting{ID: "set-1", ShopId: "shop-1", ShopName: "PitiX Mart"}
	fx.trash.entries = []*models.TrashEntry{{Table: models.TableProducts, RecordId: "p-9", Label: "Old product"}}

	result := engine.FullSync(ctx, "shop-1")
	if result.Err != nil {
		t.Fatalf("fullSync: %v", result.Err)
	}
	if len(result.Completed) != 6 {
		t.Fatalf("expected 6 completed tables, got %v", result.Completed)
	}

	product, _ := localstore.Get[models.Product](ctx, fx.store, "shop-1", "p-1")
	if product.Name != "Canonical" || product.Dirty() {
		t.Fatalf("full sync must overwrite even dirty rows, got %+v", product)
	}
	setting, _ := localstore.Get[models.Setting](ctx, fx.store, "shop-1", "set-1")
	if setting.ShopName != "PitiX Mart" {
		t.Fatalf("setting not refreshed: %q", setting.ShopName)
	}
	if setting.DevicePinHash != "hash-1" {
		t.Fatalf("device pin hash must survive a full sync")
	}

	var mirrored int64
	fx.store.DB().Model(&models.TrashEntry{}).Where("shop_id = ?", "shop-1").Count(&mirrored)
	if mirrored != 1 {
		t.Fatalf("trash mirror not refreshed, got %d rows", mirrored)
	}
}

func TestFullSyncAbortsOnFirstFailedTable(t *testing.T) {
	engine, fx := newTestEngine(t)
	fx.customers.fail = true

	result := engine.FullSync(context.Background(), "shop-1")
	if result.Err == nil || result.Failed != models.TableCustomers {
		t.Fatalf("expected customers to fail, got %+v", result)
	}
	if len(result.Completed) != 2 {
		t.Fatalf("tables before the failure should be reported, got %v", result.Completed)
	}
}

func TestFullSyncRequiresShopId(t *testing.T) {
	engine, _ := newTestEngine(t)
	if result := engine.FullSync(context.Background(), ""); result.Err != utils.ErrorShopIdRequired {
		t.Fatalf("expected ErrorShopIdRequired, got %v", result.Err)
	}
}

func TestReconcilePreservesDirtyRows(t *testing.T) {
	engine, fx := newTestEngine(t)
	ctx := context.Background()

	dirty := &models.Product{ID: "p-1", ShopId: "shop-1", Name: "Local edit"}
	dirty.LocallyModified = true
	localstore.Put(ctx, fx.store, dirty)
	localstore.Put(ctx, fx.store, &models.Product{ID: "p-2", ShopId: "shop-1", Name: "Stale"})

	fx.products.list = []*models.Product{
		{ID: "p-1", ShopId: "shop-1", Name: "Canonical"},
		{ID: "p-2", ShopId: "shop-1", Name: "Fresh"},
	}

	if err := engine.Reconcile(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	kept, _ := localstore.Get[models.Product](ctx, fx.store, "shop-1", "p-1")
	if kept.Name != "Local edit" {
		t.Fatalf("reconcile clobbered a dirty row: %q", kept.Name)
	}
	refreshed, _ := localstore.Get[models.Product](ctx, fx.store, "shop-1", "p-2")
	if refreshed.Name != "Fresh" {
		t.Fatalf("clean row not refreshed: %q", refreshed.Name)
	}
}

func TestReconcileSkipsRowsWithQueuedDelete(t *testing.T) {
	engine, fx := newTestEngine(t)
	ctx := context.Background()

	// The row was deleted offline; only the tombstone remains.
	if _, err := fx.queue.Enqueue(ctx, "shop-1", models.TableCustomers, models.OperationDelete, "c-1", nil); err != nil {
		t.Fatalf("enqueue delete: %v", err)
	}
	fx.customers.list = []*models.Customer{
		{ID: "c-1", ShopId: "shop-1", Name: "Deleted offline"},
		{ID: "c-2", ShopId: "shop-1", Name: "Kept"},
	}

	if err := engine.Reconcile(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if _, err := localstore.Get[models.Customer](ctx, fx.store, "shop-1", "c-1"); err != utils.ErrorRecordNotFound {
		t.Fatalf("reconcile must not resurrect a row with a queued delete, got %v", err)
	}
	if _, err := localstore.Get[models.Customer](ctx, fx.store, "shop-1", "c-2"); err != nil {
		t.Fatalf("untombstoned row should be mirrored: %v", err)
	}
}
