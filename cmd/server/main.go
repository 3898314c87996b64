package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/gacha-sim/internal/game"
	"github.com/xtding233/gacha-sim/internal/ledger/sqlite"
	"github.com/xtding233/gacha-sim/internal/logging"
	"github.com/xtding233/gacha-sim/internal/platform/config"
	"github.com/xtding233/gacha-sim/internal/session"
	"github.com/xtding233/gacha-sim/internal/transport/grpcapi"
	"github.com/xtding233/gacha-sim/internal/transport/httpapi"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", false).Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("bye")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	loader := game.NewLoader(cfg.ConfigDir)
	rules := game.NewResolver(loader, cfg.Game)
	// fail fast on a broken config instead of at the first session
	for _, kind := range session.Kinds {
		spec, err := rules.Pool(kind)
		if err != nil {
			return err
		}
		log.Info().
			Str("pool", string(kind)).
			Str("version", spec.Version).
			Int("hard_pity", spec.Rules.HardPity).
			Float64("base_five", spec.Rules.Base.Five).
			Msg("pool rules loaded")
	}

	if dir := filepath.Dir(cfg.LedgerDB); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	store, err := sqlite.Open(cfg.LedgerDB)
	if err != nil {
		return err
	}
	defer store.Close()

	var opts []session.Option
	if cfg.Seed != 0 {
		opts = append(opts, session.WithSeed(cfg.Seed))
		log.Warn().Uint64("seed", cfg.Seed).Msg("deterministic pull streams enabled")
	}
	sessions := session.NewRegistry(rules, opts...)

	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewHandler(httpapi.Deps{
			Sessions: sessions,
			Rules:    rules,
			Sink:     store,
			Logger:   log.With().Str("transport", "http").Logger(),
		}).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcSrv, health := grpcapi.NewServer(grpcapi.Deps{
		Sessions: sessions,
		Rules:    rules,
		Sink:     store,
		Logger:   log.With().Str("transport", "grpc").Logger(),
	})

	g, ctx := errgroup.WithContext(ctx)

	if cfg.ConfigDir != "" {
		w := game.NewFileWatcher(loader.Watched(rules.Game(), "item", "character"), cfg.WatchInterval, func(path string) {
			loader.Invalidate()
			log.Info().Str("file", path).Msg("config changed; new sessions use reloaded rules")
		})
		g.Go(func() error { return w.Run(ctx) })
	}

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		log.Info().Str("addr", cfg.GRPCAddr).Msg("grpc listening")
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
