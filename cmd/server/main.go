package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/world-cup-simulator/internal/api"
	"github.com/utakatalp/world-cup-simulator/internal/catalog"
	"github.com/utakatalp/world-cup-simulator/internal/config"
	"github.com/utakatalp/world-cup-simulator/internal/league"
	"github.com/utakatalp/world-cup-simulator/internal/store"
	"github.com/utakatalp/world-cup-simulator/internal/tournament"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("loading config: %v", err)
	}
	logger := cfg.NewLogger()
	log := logger.WithField("component", "server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1) catalog
	var cat *catalog.Catalog
	if cfg.Catalog == "" {
		cat, err = catalog.Default()
	} else {
		cat, err = catalog.Load(cfg.Catalog)
	}
	if err != nil {
		log.Fatalf("loading catalog: %v", err)
	}

	// 2) store
	var repo tournament.Repository
	switch cfg.Store {
	case "memory":
		repo = store.NewMemStore()
		log.Warn("using the in-memory store, state is lost on exit")
	default:
		pg := store.InitStore(ctx, cfg.ConnString(), logger.WithField("component", "store"))
		defer pg.Close()
		repo = pg
	}

	// 3) service and router
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	svc := tournament.NewService(repo, cat, league.NewLockedRand(seed), logrus.NewEntry(logger))
	handler := api.WithCORS(api.NewRouter(svc, logrus.NewEntry(logger)), cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithFields(logrus.Fields{"addr": cfg.Addr, "store": cfg.Store, "seed": seed}).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("serving: %v", err)
	}
	log.Info("stopped")
}
