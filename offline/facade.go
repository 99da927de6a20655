// Package offline is the per-entity API the POS client consumes. Reads are
// served locally with an opportunistic remote refresh; writes go remote
// first and fall back to an optimistic local write plus a queued mutation.
// Network failures never surface to callers here; only precondition errors
// do.
package offline

import (
	"context"

	"bitbucket.org/mmdatafocus/pitix_local/config"
	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/queue"
	"bitbucket.org/mmdatafocus/pitix_local/remote"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/sirupsen/logrus"
)

type Facade struct {
	store  *localstore.Store
	queue  *queue.Queue
	client *remote.Client
	probe  remote.ConnectivityProbe
	logger *logrus.Logger
}

func New(store *localstore.Store, q *queue.Queue, client *remote.Client, probe remote.ConnectivityProbe, logger *logrus.Logger) *Facade {
	if logger == nil {
		logger = config.GetLogger()
	}
	return &Facade{store: store, queue: q, client: client, probe: probe, logger: logger}
}

func (f *Facade) shopId(ctx context.Context) (string, error) {
	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return "", utils.ErrorShopIdRequired
	}
	return shopId, nil
}

// getAll refreshes the local table from the remote list when online (never
// clobbering dirty rows, never resurrecting rows with a queued delete),
// then returns the local state. Offline or on any remote failure the local
// cache is returned as-is; reads never hard-fail.
func getAll[T models.Record](ctx context.Context, f *Facade, api remote.API[T]) ([]*T, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if f.probe.Online(ctx) {
		records, err := api.List(ctx, shopId)
		if err == nil {
			records, err = queue.FilterPendingDeletes(ctx, f.queue, shopId, records)
		}
		if err == nil {
			if _, err := localstore.PutManyPreserveDirty(ctx, f.store, records); err != nil {
				config.LogError(f.logger, "offline", "getAll", "refresh", nil, err)
			}
		} else {
			f.logger.WithField("module", "offline").Debug("list fallback to local: " + err.Error())
		}
	}
	return localstore.GetAll[T](ctx, f.store, shopId)
}

// createRecord tries the remote create first; on success the canonical
// server record is mirrored locally and returned. On any failure the
// optimistic record (surrogate id, LocallyCreated set) is stored and a
// create mutation queued. Callers get an answer either way, immediately.
func createRecord[T models.Record](ctx context.Context, f *Facade, api remote.API[T], optimistic *T) (*T, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	if f.probe.Online(ctx) {
		if canonical, err := api.Create(ctx, optimistic); err == nil {
			if err := localstore.Put(ctx, f.store, canonical); err != nil {
				return nil, err
			}
			return canonical, nil
		} else {
			f.logger.WithField("module", "offline").Debug("create fallback to queue: " + err.Error())
		}
	}
	if err := localstore.Put(ctx, f.store, optimistic); err != nil {
		return nil, err
	}
	rec := *optimistic
	if _, err := f.queue.Enqueue(ctx, shopId, rec.GetTable(), models.OperationCreate, rec.GetID(), optimistic); err != nil {
		return nil, err
	}
	return optimistic, nil
}

// updateRecord mirrors createRecord for updates. The caller has already
// merged the input onto the latest local record and set LocallyModified.
func updateRecord[T models.Record](ctx context.Context, f *Facade, api remote.API[T], updated *T) (*T, error) {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return nil, err
	}
	rec := *updated
	// A record the server has never seen cannot be updated remotely; its
	// pending create absorbs the edit instead.
	if f.probe.Online(ctx) && !rec.Meta().LocallyCreated {
		if canonical, err := api.Update(ctx, updated); err == nil {
			if err := localstore.Put(ctx, f.store, canonical); err != nil {
				return nil, err
			}
			return canonical, nil
		} else {
			f.logger.WithField("module", "offline").Debug("update fallback to queue: " + err.Error())
		}
	}
	if err := localstore.Put(ctx, f.store, updated); err != nil {
		return nil, err
	}
	if _, err := f.queue.EnqueueUpdate(ctx, shopId, rec.GetTable(), rec.GetID(), updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// deleteRecord removes locally either way. Remote-first when online; the
// fallback queues a delete tombstone. Deleting an id with no local row is
// not an error, but the tombstone is still queued.
func deleteRecord[T models.Record](ctx context.Context, f *Facade, api remote.API[T], table models.Table, id string) error {
	shopId, err := f.shopId(ctx)
	if err != nil {
		return err
	}
	if f.probe.Online(ctx) {
		if err := api.Delete(ctx, shopId, id); err == nil {
			return localstore.Delete[T](ctx, f.store, shopId, id)
		} else {
			f.logger.WithField("module", "offline").Debug("delete fallback to queue: " + err.Error())
		}
	}
	if err := localstore.Delete[T](ctx, f.store, shopId, id); err != nil {
		return err
	}
	_, err = f.queue.Enqueue(ctx, shopId, table, models.OperationDelete, id, nil)
	return err
}
