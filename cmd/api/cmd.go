package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cashstate/backend/internal/bootstrap"
	plaidclient "github.com/cashstate/backend/internal/client/plaid"
	simplefinclient "github.com/cashstate/backend/internal/client/simplefin"
	"github.com/cashstate/backend/internal/config"
	"github.com/cashstate/backend/internal/handlers"
	"github.com/cashstate/backend/internal/response"
	"github.com/cashstate/backend/internal/router"
	"github.com/cashstate/backend/internal/services"
	"github.com/cashstate/backend/internal/store"
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
	plaid := plaidclient.NewAdapter(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnvironment)

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	istore := store.NewItemStore(bs.Firestore)
	astore := store.NewAccountStore(bs.Firestore)
	tstore := store.NewTransactionStore(bs.Firestore)
	jstore := store.NewSyncJobStore(bs.Firestore)

	// services
	userv := services.NewUserService(ustore)
	sfserv := services.NewSimplefinService(simplefin, bs.Cipher, istore, astore, tstore, cfg.SimplefinAccessURL)
	syserv := services.NewSyncService(simplefin, bs.Cipher, istore, astore, tstore, jstore)
	plserv := services.NewPlaidService(plaid, bs.Cipher, istore, astore, tstore, jstore)

	// response handler
	rh := response.New(bs.Log)

	// dependencies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.UserSvc = userv
	deps.SimplefinSvc = sfserv
	deps.SyncSvc = syserv
	deps.PlaidSvc = plserv

	// router
	r := router.NewRouter(deps)
	err = http.ListenAndServe(":8080", r)
	exitOnError("server start failed", err, bs.Log)
}
