// Package main is the entry point for relayd, the trade-copy relay
// broker. It wires together the connection registry, the trade-group
// repository, the Redis-backed publisher, the EA-facing websocket
// ingress, the UI broadcast channel and its websocket hub, the timeout
// monitor and (optionally) the S3 snapshot archiver, then blocks until
// SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aristath/tradecopy-relay/internal/archiver"
	"github.com/aristath/tradecopy-relay/internal/broadcast"
	"github.com/aristath/tradecopy-relay/internal/config"
	"github.com/aristath/tradecopy-relay/internal/disconnect"
	"github.com/aristath/tradecopy-relay/internal/domain"
	"github.com/aristath/tradecopy-relay/internal/handlers"
	"github.com/aristath/tradecopy-relay/internal/publisher"
	"github.com/aristath/tradecopy-relay/internal/registry"
	"github.com/aristath/tradecopy-relay/internal/repository/memory"
	"github.com/aristath/tradecopy-relay/internal/repository/sqlite"
	"github.com/aristath/tradecopy-relay/internal/timeout"
	"github.com/aristath/tradecopy-relay/internal/transport/ingress"
	"github.com/aristath/tradecopy-relay/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)
	log.Info().Msg("starting relayd")

	repo, closeRepo, err := openRepository(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open repository")
	}
	if closeRepo != nil {
		defer closeRepo()
	}

	reg := registry.New()
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	pub := publisher.New(redisClient, log, publisher.Config{QueueCapacity: cfg.PublisherQueueCapacity})
	channel := broadcast.NewChannel()

	dispatcher := handlers.New(reg, repo, pub, channel, log)
	disconnectSvc := disconnect.New(reg, repo, pub, channel, log)
	monitor := timeout.New(reg, disconnectSvc, cfg.HeartbeatTimeout, cfg.SweepInterval, log)
	snapshots := broadcast.NewSnapshotBroadcaster(reg, channel, cfg.SnapshotInterval, log)
	hub := broadcast.NewHub(channel, log)
	ingressSrv := ingress.New(dispatcher, log, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go pub.Run(ctx)
	go monitor.Run(ctx)
	go snapshots.Run(ctx)

	var snap *archiver.Archiver
	if cfg.ArchiverEnabled {
		snap, err = newArchiver(ctx, reg, cfg, log)
		if err != nil {
			log.Error().Err(err).Msg("archiver disabled: setup failed")
		} else if err := snap.Schedule(ctx, cfg.ArchiverSchedule); err != nil {
			log.Error().Err(err).Msg("archiver disabled: schedule failed")
			snap = nil
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/ea", ingressSrv)
	mux.Handle("/ui", hub)

	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	if snap != nil {
		snap.Stop()
	}
	pub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server forced to shutdown")
	}

	log.Info().Msg("relayd stopped")
}

func openRepository(cfg *config.Config, log zerolog.Logger) (domain.Repository, func(), error) {
	if cfg.RepoBackend == "sqlite" {
		repo, err := sqlite.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	}
	return memory.New(), nil, nil
}

func newArchiver(ctx context.Context, reg *registry.Registry, cfg *config.Config, log zerolog.Logger) (*archiver.Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client)
	return archiver.New(reg, uploader, cfg.ArchiverBucket, log), nil
}
