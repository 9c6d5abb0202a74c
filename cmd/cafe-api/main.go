package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/djcafe/cafe/internal/api"
	"github.com/djcafe/cafe/internal/config"
	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/db"
	"github.com/djcafe/cafe/internal/display"
	"github.com/djcafe/cafe/internal/logging"
	"github.com/djcafe/cafe/internal/metrics"
	"github.com/djcafe/cafe/internal/notify"
	"github.com/djcafe/cafe/internal/pkg/clock"
	"github.com/djcafe/cafe/internal/seed"
	"github.com/djcafe/cafe/internal/storage"
	"github.com/djcafe/cafe/migrations"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "seed-menu" {
		seedMenu(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "", "Migration files directory (defaults to the embedded set)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		var migrationsFS fs.FS = migrations.FS
		if *migrateDirFlag != "" {
			migrationsFS = os.DirFS(*migrateDirFlag)
		}
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, migrationsFS, "."); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        int32(cfg.DBMaxConns),
		ApplicationName: cfg.ServiceName,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool)

	services := core.NewServices(pool)

	relay := notify.NewRelay(notify.PgDialer(cfg.DatabaseURL), notify.RelayConfig{
		Channels:       []string{notify.ChannelPrices, notify.ChannelDisplay},
		ReconnectDelay: cfg.NotifyReconnectDelay,
		Buffer:         cfg.SubscriberBuffer,
	}, logger)

	videos := storage.NewVideoStore(cfg, logger)
	if !videos.Enabled() {
		logger.Warn().Msg("S3_ENDPOINT not set, campaign video uploads are disabled")
	}

	player := display.NewPlayer(services.Campaign, services.Product, videos, notify.NewPublisher(pool), clock.NewRealClock(), logger)

	var scheduler *display.Scheduler
	if cfg.SchedulerEnabled {
		scheduler = display.NewScheduler(services.Campaign, player, logger)
	}

	srv := api.NewServer(logger, pool, api.Components{
		Services:  services,
		Relay:     relay,
		Player:    player,
		Scheduler: scheduler,
		Videos:    videos,
	}, cfg)

	g, gctx := errgroup.WithContext(ctx)
	httpServer := srv.HTTPServer(gctx, cfg.HTTPListenAddr)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting cafe API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return relay.Run(gctx)
	})

	if scheduler != nil {
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				logger.Warn().Err(err).Msg("shutdown deadline reached, closing remaining connections")
				return httpServer.Close()
			}
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func seedMenu(args []string) {
	flags := flag.NewFlagSet("seed-menu", flag.ExitOnError)
	file := flags.String("file", "seeds/menu.yaml", "Menu YAML file")
	dryRun := flags.Bool("dry-run", false, "Validate the file without writing")
	flags.Parse(args)

	m, err := seed.LoadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := m.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid menu %s:\n%v\n", *file, err)
		os.Exit(1)
	}
	if *dryRun {
		fmt.Printf("%s is valid: %d products, %d tables\n", *file, len(m.Products), len(m.Tables))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        int32(cfg.DBMaxConns),
		ApplicationName: cfg.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	services := core.NewServices(pool)
	res, err := seed.Apply(ctx, m, services.Product, services.Table, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Menu seeded from %s.\n\n", *file)
	fmt.Printf("  Products created: %d (skipped %d)\n", res.ProductsCreated, res.ProductsSkipped)
	fmt.Printf("  Tables created:   %d (skipped %d)\n", res.TablesCreated, res.TablesSkipped)
}
