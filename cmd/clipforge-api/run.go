package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apiserver "github.com/clipforge/clipforge/internal/api_server"
	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/jobs"
	"github.com/clipforge/clipforge/internal/storage"
	"github.com/clipforge/clipforge/internal/store"
	"github.com/clipforge/clipforge/internal/youtube"
	"github.com/clipforge/clipforge/pkg/log"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the clipforge api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		logger := log.InitLog(log.LevelFromString(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		db, err := store.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("initializing data store: %w", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if cfg.Service.MigrationFolder == "" {
			if err := s.InitialMigration(); err != nil {
				return fmt.Errorf("running initial migration: %w", err)
			}
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		pool, err := newPgxPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("creating pgx pool: %w", err)
		}
		defer pool.Close()

		objectStore, err := storage.NewMinioStore(
			storage.WithEndpoint(cfg.Storage.Endpoint),
			storage.WithBucket(cfg.Storage.Bucket),
			storage.WithAccessKey(cfg.Storage.AccessKey),
			storage.WithSecretKey(cfg.Storage.SecretKey),
			storage.WithSSL(cfg.Storage.UseSSL),
		)
		if err != nil {
			return fmt.Errorf("creating object store: %w", err)
		}

		metadataClient := youtube.NewClient(
			youtube.NewInnertubeResolver(),
			cfg.YouTube.MetadataRetries,
			time.Duration(cfg.YouTube.MetadataBackoffSeconds)*time.Second,
		)

		worker := jobs.NewProcessVideoWorker(s, jobs.NewFFProbe(), cfg.Upload.ClipLength)
		queueClient, err := jobs.NewClient(pool, worker)
		if err != nil {
			return fmt.Errorf("creating queue client: %w", err)
		}

		if err := queueClient.Start(ctx); err != nil {
			return fmt.Errorf("starting queue client: %w", err)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer stopCancel()
			if err := queueClient.Stop(stopCtx); err != nil {
				zap.S().Warnw("failed to stop queue client", "error", err)
			}
		}()

		reaper := jobs.NewReaper(s, queueClient)
		go reaper.Run(ctx)

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Errorf("creating listener: %s", err)
				return
			}

			server := apiserver.New(cfg, s, listener, objectStore, metadataClient, queueClient)
			if err := server.Run(ctx); err != nil {
				zap.S().Errorf("Error running server: %s", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Errorf("creating metrics listener: %s", err)
				return
			}

			metricServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricServer.Run(ctx); err != nil {
				zap.S().Errorf("Error running metrics server: %s", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func newPgxPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s port=%s dbname=%s",
		cfg.Database.Hostname,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = 20
	poolCfg.MinConns = 5
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
