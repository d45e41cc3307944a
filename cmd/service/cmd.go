// The service binary runs the scheduled sync sweep: every interval it
// syncs each active SimpleFin item that is out of its cooldown window.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cashstate/backend/internal/bootstrap"
	simplefinclient "github.com/cashstate/backend/internal/client/simplefin"
	"github.com/cashstate/backend/internal/config"
	"github.com/cashstate/backend/internal/services"
	"github.com/cashstate/backend/internal/store"
	"github.com/cashstate/backend/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// clients
	simplefin := simplefinclient.NewAdapter(&http.Client{Timeout: 30 * time.Second})

	// stores
	istore := store.NewItemStore(bs.Firestore)
	astore := store.NewAccountStore(bs.Firestore)
	tstore := store.NewTransactionStore(bs.Firestore)
	jstore := store.NewSyncJobStore(bs.Firestore)

	// services
	syserv := services.NewSyncService(simplefin, bs.Cipher, istore, astore, tstore, jstore)

	ctx := logger.ToContext(context.Background(), bs.Log)
	bs.Log.Info("sweep worker started", "interval", cfg.SyncInterval.String())

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	syserv.SyncAll(ctx)
	for range ticker.C {
		syserv.SyncAll(ctx)
	}
}
