package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coopra.org/internal/approval"
	"coopra.org/internal/config"
	"coopra.org/internal/coop"
	"coopra.org/internal/httpapi"
	"coopra.org/internal/member"
	"coopra.org/internal/obs"
	"coopra.org/internal/product"
	"coopra.org/internal/rbac"
	"coopra.org/internal/store/pg"
	"coopra.org/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	configPath := flag.String("config", os.Getenv("COOPRA_CONFIG"), "path to config file")
	flag.Parse()

	obs.Init()
	obs.InitBuildInfo(version, commit)
	log := obs.Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	var (
		coopStore     coop.Store
		approvalStore approval.Store
		memberStore   member.Store
		productStore  product.Store
		probe         httpapi.ReadyProbe
	)
	if cfg.Postgres.DSN != "" {
		store, err := pg.Open(cfg.Postgres.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres")
		}
		defer store.Close()
		coopStore = store.Cooperatives()
		approvalStore = store.Approvals()
		memberStore = store.Members()
		productStore = store.Products()
		probe = httpapi.ReadyProbe{DB: store.DB()}
	} else {
		log.Warn().Msg("no postgres dsn configured, using in-memory stores")
		coopStore = coop.NewInMemory()
		approvalStore = approval.NewInMemory()
		memberStore = member.NewInMemory()
		productStore = product.NewInMemory()
	}

	coops := coop.NewService(coopStore)
	api := httpapi.New(httpapi.Deps{
		Table:      rbac.NewTable(),
		Coops:      coops,
		Approvals:  approval.NewService(approvalStore, log),
		Members:    member.NewService(memberStore, coops),
		Products:   product.NewService(productStore, coops),
		Events:     stream.New(),
		ReadyProbe: probe,
		Version:    version,
		Log:        log,

		RateLimitBurst:     cfg.RateLimit.Burst,
		RateLimitPerSecond: cfg.RateLimit.PerSecond,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Str("version", version).Msg("starting coopra-api")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Info().Msg("stopped")
}
