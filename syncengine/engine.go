// Package syncengine drains the mutation queue against the PitiX cloud API
// and keeps the local store reconciled with canonical server state.
package syncengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/config"
	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/queue"
	"bitbucket.org/mmdatafocus/pitix_local/remote"
	"github.com/sirupsen/logrus"
)

type Config struct {
	MaxRetries     int
	BatchSize      int
	Interval       time.Duration
	OnlineDebounce time.Duration
	// ReconcileEvery: run a background refresh after this many drain ticks.
	ReconcileEvery int
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		BatchSize:      10,
		Interval:       30 * time.Second,
		OnlineDebounce: 2 * time.Second,
		ReconcileEvery: 10,
	}
}

func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if n := intFromEnv("PITIX_SYNC_MAX_RETRIES"); n > 0 {
		cfg.MaxRetries = n
	}
	if n := intFromEnv("PITIX_SYNC_BATCH_SIZE"); n > 0 {
		cfg.BatchSize = n
	}
	if n := intFromEnv("PITIX_SYNC_INTERVAL_SECONDS"); n > 0 {
		cfg.Interval = time.Duration(n) * time.Second
	}
	if n := intFromEnv("PITIX_ONLINE_DEBOUNCE_MS"); n > 0 {
		cfg.OnlineDebounce = time.Duration(n) * time.Millisecond
	}
	if n := intFromEnv("PITIX_RECONCILE_EVERY"); n > 0 {
		cfg.ReconcileEvery = n
	}
	return cfg
}

func intFromEnv(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// Engine is an explicit value owned by the composition root; there is no
// package-level singleton.
type Engine struct {
	store  *localstore.Store
	queue  *queue.Queue
	client *remote.Client
	probe  remote.ConnectivityProbe
	logger *logrus.Logger
	shopId string
	cfg    Config

	// syncMu is the single-flight guard: at most one drain at a time,
	// across all tables. TryLock keeps the second caller non-blocking.
	syncMu sync.Mutex

	mu          sync.Mutex
	status      Status
	subscribers map[int]func(Status)
	nextSubId   int

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(store *localstore.Store, q *queue.Queue, client *remote.Client, probe remote.ConnectivityProbe, logger *logrus.Logger, shopId string, cfg Config) *Engine {
	if logger == nil {
		logger = config.GetLogger()
	}
	if cfg.MaxRetries <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{
		store:  store,
		queue:  q,
		client: client,
		probe:  probe,
		logger: logger,
		shopId: shopId,
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}
}

func (e *Engine) ShopId() string { return e.shopId }

// Sync drains eligible queue items against the remote API. Single-flight:
// a second concurrent call returns {Success:false} immediately without
// touching the queue. Offline calls return the same way.
func (e *Engine) Sync(ctx context.Context) Result {
	if !e.probe.Online(ctx) {
		return Result{Success: false}
	}
	if !e.syncMu.TryLock() {
		return Result{Success: false}
	}
	// The unlock must run on every exit path, error or not.
	defer e.syncMu.Unlock()

	items, err := e.queue.DequeueEligible(ctx, e.shopId, e.cfg.MaxRetries)
	if err != nil {
		config.LogError(e.logger, "syncengine", "Sync", "dequeue", nil, err)
		e.mutateStatus(func(s *Status) {
			s.IsSyncing = false
			s.LastError = err.Error()
		})
		return Result{Success: false}
	}

	if len(items) == 0 {
		e.mutateStatus(func(s *Status) {
			s.IsSyncing = false
			s.PendingCount = 0
			s.LastSyncAt = time.Now()
			s.LastError = ""
			s.Progress = 100
		})
		return Result{Success: true}
	}

	e.mutateStatus(func(s *Status) {
		s.IsSyncing = true
		s.PendingCount = len(items)
		s.LastError = ""
		s.Progress = 0
	})

	total := len(items)
	processed := 0
	synced := 0
	failed := 0

	for start := 0; start < total; start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > total {
			end = total
		}
		for _, item := range items[start:end] {
			// A create applied earlier in this drain may have re-pointed
			// this item at the canonical id; use the stored copy.
			if fresh, err := e.queue.Get(ctx, item.ID); err == nil {
				item = fresh
			}
			if err := e.applyItem(ctx, item); err != nil {
				failed++
				if markErr := e.queue.MarkFailed(ctx, item.ID, err); markErr != nil {
					config.LogError(e.logger, "syncengine", "Sync", "markFailed", item.ID, markErr)
				}
				e.logger.WithFields(logrus.Fields{
					"module":    "syncengine",
					"table":     item.Table,
					"operation": item.Operation,
					"recordId":  item.RecordId,
					"retry":     item.RetryCount + 1,
				}).Warn(err.Error())
			} else {
				synced++
				if markErr := e.queue.MarkSynced(ctx, item.ID); markErr != nil {
					config.LogError(e.logger, "syncengine", "Sync", "markSynced", item.ID, markErr)
				}
			}
			processed++
			progress := processed * 100 / total
			e.mutateStatus(func(s *Status) {
				s.Progress = progress
				s.PendingCount = total - processed + failed
			})
		}
	}

	if err := e.queue.ClearSynced(ctx, e.shopId); err != nil {
		config.LogError(e.logger, "syncengine", "Sync", "clearSynced", nil, err)
	}

	pending, _ := e.queue.PendingCount(ctx, e.shopId)
	e.mutateStatus(func(s *Status) {
		s.IsSyncing = false
		s.PendingCount = pending
		s.LastSyncAt = time.Now()
		s.Progress = 100
	})

	e.logger.WithFields(logrus.Fields{
		"module": "syncengine",
		"synced": synced,
		"failed": failed,
	}).Info("sync drain finished")

	return Result{Success: failed == 0, Synced: synced, Failed: failed}
}

// ForceSync is the explicit UI action; identical to Sync but always
// broadcasts a status change so subscribers see the attempt.
func (e *Engine) ForceSync(ctx context.Context) Result {
	e.mutateStatus(func(s *Status) {})
	return e.Sync(ctx)
}

// applyItem maps one queued mutation onto its table's remote capability.
// The switch is exhaustive over models.Table.
func (e *Engine) applyItem(ctx context.Context, item *models.QueueItem) error {
	switch item.Table {
	case models.TableProducts:
		return applyMutation(ctx, e, e.client.Products, item)
	case models.TableCategories:
		return applyMutation(ctx, e, e.client.Categories, item)
	case models.TableCustomers:
		return applyMutation(ctx, e, e.client.Customers, item)
	case models.TableSuppliers:
		return applyMutation(ctx, e, e.client.Suppliers, item)
	case models.TableSales:
		return applyMutation(ctx, e, e.client.Sales, item)
	case models.TablePurchases:
		return applyMutation(ctx, e, e.client.Purchases, item)
	case models.TableExpenses:
		return applyMutation(ctx, e, e.client.Expenses, item)
	case models.TableCashTransactions:
		return applyMutation(ctx, e, e.client.CashTransactions, item)
	case models.TableStockAdjustments:
		return applyMutation(ctx, e, e.client.StockAdjustments, item)
	case models.TableSettings:
		return e.applySettings(ctx, item)
	default:
		// Unknown tables are a programmer error, not a transient failure;
		// fail the item so it surfaces in the summary.
		return fmt.Errorf("no handler for table %q", item.Table)
	}
}

func (e *Engine) applySettings(ctx context.Context, item *models.QueueItem) error {
	if item.Operation != models.OperationUpdate && item.Operation != models.OperationCreate {
		return errors.New("settings only support update")
	}
	var setting models.Setting
	if err := json.Unmarshal(item.Payload, &setting); err != nil {
		return err
	}
	canonical, err := e.client.Settings.Update(ctx, &setting)
	if err != nil {
		return err
	}
	// The PIN hash is local-only: the payload never serializes it and the
	// server copy never carries it, so it comes from the stored row.
	if existing, err := localstore.Get[models.Setting](ctx, e.store, e.shopId, item.RecordId); err == nil {
		canonical.DevicePinHash = existing.DevicePinHash
	}
	return localstore.Put(ctx, e.store, canonical)
}

// applyMutation replays one queued mutation. On a confirmed create the
// surrogate row is swapped for the canonical record and any still-queued
// mutations are re-pointed at the server id.
func applyMutation[T models.Record](ctx context.Context, e *Engine, api remote.API[T], item *models.QueueItem) error {
	switch item.Operation {
	case models.OperationCreate:
		var rec T
		if err := json.Unmarshal(item.Payload, &rec); err != nil {
			return err
		}
		canonical, err := api.Create(ctx, &rec)
		if err != nil {
			return err
		}
		if err := localstore.Replace(ctx, e.store, item.RecordId, canonical); err != nil {
			return err
		}
		newId := (*canonical).GetID()
		if newId != item.RecordId {
			if err := e.queue.RetargetRecord(ctx, e.shopId, item.Table, item.RecordId, newId); err != nil {
				config.LogError(e.logger, "syncengine", "applyMutation", "retarget", item.RecordId, err)
			}
		}
		return nil

	case models.OperationUpdate:
		var rec T
		if err := json.Unmarshal(item.Payload, &rec); err != nil {
			return err
		}
		canonical, err := api.Update(ctx, &rec)
		if err != nil {
			return err
		}
		// Canonical records carry no local flags, so this clears them.
		return localstore.Put(ctx, e.store, canonical)

	case models.OperationDelete:
		if err := api.Delete(ctx, e.shopId, item.RecordId); err != nil {
			return err
		}
		return localstore.Delete[T](ctx, e.store, e.shopId, item.RecordId)

	default:
		return fmt.Errorf("unknown operation %q", item.Operation)
	}
}
