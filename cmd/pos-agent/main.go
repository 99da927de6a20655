package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bitbucket.org/mmdatafocus/pitix_local/config"
	"bitbucket.org/mmdatafocus/pitix_local/localstore"
	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/queue"
	"bitbucket.org/mmdatafocus/pitix_local/remote"
	"bitbucket.org/mmdatafocus/pitix_local/syncengine"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// pos-agent is the headless sync daemon for one device: it opens the local
// database, drains the mutation queue on an interval and keeps the cached
// tables reconciled with the PitiX cloud API. The POS UI talks to the same
// database file.
func main() {
	logger := config.GetLogger()

	shopId := strings.TrimSpace(os.Getenv("PITIX_SHOP_ID"))
	if shopId == "" {
		log.Fatal("PITIX_SHOP_ID is required")
	}
	token := strings.TrimSpace(os.Getenv("PITIX_API_TOKEN"))
	if token == "" {
		log.Fatal("PITIX_API_TOKEN is required")
	}

	config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(config.GetDB()); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	client, err := remote.NewHTTPClient(remote.StaticToken(token))
	if err != nil {
		log.Fatalf("remote client: %v", err)
	}
	probe := remote.NewHTTPProbe(remote.NewTransport(remote.StaticToken(token)).BaseURL())

	store := localstore.New(config.GetDB())
	q := queue.New(config.GetDB())
	engine := syncengine.New(store, q, client, probe, logger, shopId, syncengine.ConfigFromEnv())

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx := utils.SetShopIdInContext(sigCtx, shopId)
	if deviceId := strings.TrimSpace(os.Getenv("PITIX_DEVICE_ID")); deviceId != "" {
		ctx = utils.SetDeviceIdInContext(ctx, deviceId)
	}
	ctx = utils.SetCorrelationIdInContext(ctx, uuid.NewString())

	unsubscribe := engine.Subscribe(func(s syncengine.Status) {
		logger.WithFields(logrus.Fields{
			"module":  "pos-agent",
			"syncing": s.IsSyncing,
			"pending": s.PendingCount,
			"percent": s.Progress,
		}).Debug("sync status")
	})
	defer unsubscribe()

	// A cold database gets one full snapshot before the interval loop takes
	// over.
	if n, err := q.PendingCount(ctx, shopId); err == nil && n == 0 {
		if result := engine.FullSync(ctx, shopId); result.Err != nil {
			logger.WithFields(logrus.Fields{
				"module": "pos-agent",
				"failed": result.Failed,
			}).Warn("initial full sync incomplete: " + result.Err.Error())
		}
	}

	engine.StartAutoSync(ctx)
	logger.WithField("module", "pos-agent").Info("pos-agent started")

	<-ctx.Done()
	engine.Stop()
	logger.WithField("module", "pos-agent").Info("pos-agent stopped")
}
