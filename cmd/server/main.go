package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	ledgerhandler "leagueledger/internal/ledger/handler"
	ledgerservice "leagueledger/internal/ledger/service"
	ledgerstore "leagueledger/internal/ledger/store"
	"leagueledger/internal/oauth/credential"
	"leagueledger/internal/oauth/flow"
	oauthhandler "leagueledger/internal/oauth/handler"
	"leagueledger/internal/oauth/provider"
	"leagueledger/internal/oauth/state"
	"leagueledger/internal/platform/config"
	"leagueledger/internal/platform/httpserver"
	"leagueledger/internal/platform/logger"
	platformredis "leagueledger/internal/platform/redis"
	httptransport "leagueledger/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// ledgerRegistrar adapts the ledger service to the flow controller's
// registrar port.
type ledgerRegistrar struct {
	svc *ledgerservice.Service
}

func (a ledgerRegistrar) Register(ctx context.Context, userID string) error {
	_, err := a.svc.Register(ctx, userID)
	return err
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	st, cleanup, err := openLedgerStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ledgerSvc := ledgerservice.New(st, log)

	states := state.NewManager(cfg.State)
	providerClient := provider.NewHTTPClient(cfg.Provider)

	flowOpts := []flow.Option{flow.WithRegistrar(ledgerRegistrar{svc: ledgerSvc})}
	issuer, err := credential.NewIssuer(cfg.Credential)
	if err != nil {
		return err
	}
	if issuer != nil {
		flowOpts = append(flowOpts, flow.WithCredentialIssuer(issuer))
	}

	flowCtrl := flow.New(states, providerClient, cfg.FrontendURL, cfg.ErrorURL, log, flowOpts...)

	router := httptransport.NewRouter(
		oauthhandler.New(flowCtrl, log),
		ledgerhandler.New(ledgerSvc, log),
		cfg.APISecret,
		log,
	)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting leagueledger", "addr", cfg.Addr, "ledger_backend", cfg.LedgerBackend)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openLedgerStore builds the configured ledger backend and returns a cleanup
// for its connections.
func openLedgerStore(ctx context.Context, cfg config.Config) (ledgerstore.Store, func(), error) {
	switch cfg.LedgerBackend {
	case "memory":
		return ledgerstore.NewInMemoryStore(), func() {}, nil

	case "redis":
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, fmt.Errorf("redis ledger backend selected but no redis URL configured")
		}
		return ledgerstore.NewRedisStore(client.Client), func() { _ = client.Close() }, nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		st := ledgerstore.NewPostgresStore(db)
		if err := st.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return st, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}
