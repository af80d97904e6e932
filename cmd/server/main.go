package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	assignmenthandler "aos/internal/assignment/handler"
	assignmentmetrics "aos/internal/assignment/metrics"
	assignmentservice "aos/internal/assignment/service"
	complaintstore "aos/internal/assignment/store/complaint"
	requeststore "aos/internal/assignment/store/request"
	authhandler "aos/internal/auth/handler"
	authmetrics "aos/internal/auth/metrics"
	authservice "aos/internal/auth/service"
	"aos/internal/auth/store/revocation"
	"aos/internal/auth/token"
	"aos/internal/catalog"
	cataloghandler "aos/internal/catalog/handler"
	"aos/internal/document"
	documenthandler "aos/internal/document/handler"
	identityhandler "aos/internal/identity/handler"
	identitymetrics "aos/internal/identity/metrics"
	identityservice "aos/internal/identity/service"
	accountstore "aos/internal/identity/store/account"
	"aos/internal/platform/config"
	"aos/internal/platform/httpserver"
	"aos/internal/platform/logger"
	"aos/internal/platform/metrics"
	platformredis "aos/internal/platform/redis"
	httptransport "aos/internal/transport/http"
	"aos/pkg/platform/audit"
	"aos/pkg/platform/tx"
)

// main wires the stores, services and HTTP surface. Business logic lives in
// the internal packages; this stays assembly only.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var (
		db     *sql.DB
		runner tx.Runner = &tx.MemoryRunner{}

		accounts   accountstore.Store   = accountstore.New()
		requests   requeststore.Store   = requeststore.New()
		complaints complaintstore.Store = complaintstore.New()
		documents  document.Store       = document.NewInMemoryStore()
		services   catalog.Store        = catalog.NewInMemoryStore()
	)
	if cfg.Database.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("database ping failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		runner = &tx.SQLRunner{DB: db}
		accounts = accountstore.NewPostgres(db)
		requests = requeststore.NewPostgres(db)
		complaints = complaintstore.NewPostgres(db)
		documents = document.NewPostgresStore(db)
		services = catalog.NewPostgresStore(db)
	}

	var trl revocation.TokenRevocationList = revocation.NewInMemoryTRL()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		trl = revocation.NewRedisTRL(redisClient.Client)
	}

	auditOpts := []audit.Option{}
	if cfg.Audit.BufferSize > 0 {
		auditOpts = append(auditOpts, audit.WithAsyncBuffer(cfg.Audit.BufferSize))
	}
	auditor := audit.NewPublisher(audit.NewInMemoryStore(), log, auditOpts...)
	defer auditor.Close()

	hasher := identityservice.BcryptHasher{}

	documentService := document.NewService(documents, log)
	catalogService := catalog.NewService(services, log)

	registry := identityservice.NewRegistry(accounts, hasher, log,
		identityservice.WithMetrics(identitymetrics.New()),
		identityservice.WithAuditPublisher(auditor),
		identityservice.WithTxRunner(runner),
	)

	engineOpts := []assignmentservice.Option{
		assignmentservice.WithMetrics(assignmentmetrics.New()),
		assignmentservice.WithAuditPublisher(auditor),
		assignmentservice.WithTxRunner(runner),
	}
	if cfg.Assignment.PreserveClosedStatusOnUnassign {
		engineOpts = append(engineOpts, assignmentservice.PreserveClosedStatusOnUnassign())
	}
	engine := assignmentservice.NewEngine(requests, complaints, accounts, documentService, log, engineOpts...)

	tokens := token.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	authenticator := authservice.NewAuthenticator(accounts, hasher, tokens, trl, log,
		authservice.WithMetrics(authmetrics.New()),
		authservice.WithAuditPublisher(auditor),
	)

	router := httptransport.NewRouter(httptransport.Handlers{
		Auth:       authhandler.New(authenticator, log),
		Identity:   identityhandler.New(registry, engine, log),
		Assignment: assignmenthandler.New(engine, log),
		Catalog:    cataloghandler.New(catalogService, log),
		Document:   documenthandler.New(documentService, log),
	}, authenticator, log, metrics.New())

	srv := httpserver.New(cfg.Server.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
