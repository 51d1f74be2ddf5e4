package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/redis/go-redis/v9"

	"shopping.app/pricewatch/common/id"
	"shopping.app/pricewatch/common/logger"
	"shopping.app/pricewatch/common/otel"
	"shopping.app/pricewatch/core/config"
	"shopping.app/pricewatch/core/db"
	"shopping.app/pricewatch/internal/notify"
	"shopping.app/pricewatch/internal/pipeline"
	"shopping.app/pricewatch/internal/queue"
	"shopping.app/pricewatch/internal/store"
	"shopping.app/pricewatch/internal/worker"
)

// stage is one consumer group draining one stream, plus its reclaimer.
type stage struct {
	name      string
	worker    *worker.Worker
	reclaimer *worker.RedisReclaimer
}

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "pricewatch worker starting",
		"env", cfg.Env,
		"stages", cfg.Pipeline.Stages,
		"consumer_name", cfg.Pipeline.Consumer)

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected")

	stores := store.NewStores(database.Queries())

	var stages []stage
	if cfg.Pipeline.RunsStage(config.StageHistory) {
		alerts := queue.NewRedisProducer(redisClient, cfg.Pipeline.Alerts.Stream, slog.Default())
		defer alerts.Close()

		handler := pipeline.NewHistoryConsumer(stores.PriceHistory(), alerts, clock.WallClock)
		s, err := newStage(redisClient, cfg.Pipeline, config.StageHistory, cfg.Pipeline.Changes, handler)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create history stage", "error", err)
			os.Exit(1)
		}
		stages = append(stages, s)
	}

	if cfg.Pipeline.RunsStage(config.StageFanout) {
		dispatcher := notify.NewSMTPDispatcher(cfg.SMTP, notify.NewRenderer("", cfg.SMTP.ProductURL), slog.Default())
		guard := store.NewRedisDeliveryGuard(redisClient, "")

		handler, err := pipeline.NewNotificationFanout(stores.Subscriptions(), dispatcher, guard, pipeline.FanoutConfig{
			InFlightTTL: cfg.Pipeline.InFlightMarkerTTL,
			SentTTL:     cfg.Pipeline.SentMarkerTTL,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create fan-out", "error", err)
			os.Exit(1)
		}
		s, err := newStage(redisClient, cfg.Pipeline, config.StageFanout, cfg.Pipeline.Alerts, handler)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create fanout stage", "error", err)
			os.Exit(1)
		}
		stages = append(stages, s)
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var wg sync.WaitGroup
	for _, s := range stages {
		wg.Add(2)
		go func(s stage) {
			defer wg.Done()
			if err := s.worker.Run(runCtx); err != nil && runCtx.Err() == nil {
				slog.ErrorContext(runCtx, "worker stopped with error", "stage", s.name, "error", err)
			}
		}(s)
		go func(s stage) {
			defer wg.Done()
			s.reclaimer.Run(runCtx)
		}(s)
	}

	slog.InfoContext(ctx, "worker initialized and running", "stage_count", len(stages))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Reclaimers first; workers finish the message in hand.
	for _, s := range stages {
		s.reclaimer.Stop()
	}
	for _, s := range stages {
		s.worker.Stop()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
		cancelRun()
	case <-done:
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

func newStage(client *redis.Client, pcfg config.PipelineConfig, name string, streams config.StreamConfig, handler worker.Handler) (stage, error) {
	consumer, err := queue.NewRedisConsumer(client, queue.ConsumerConfig{
		Stream:       streams.Stream,
		Group:        streams.Group,
		Consumer:     pcfg.Consumer,
		DLQStream:    streams.DLQStream,
		BatchSize:    1,
		Block:        pcfg.Block,
		RequeueDelay: pcfg.RequeueDelay,
	})
	if err != nil {
		return stage{}, fmt.Errorf("creating %s consumer: %w", name, err)
	}

	w := worker.New(consumer, handler, worker.Config{
		Name:        name,
		MaxAttempts: pcfg.MaxAttempts,
	})

	reclaimer := worker.NewRedisReclaimer(client, worker.RedisReclaimerConfig{
		Stream:    streams.Stream,
		Group:     streams.Group,
		Consumer:  pcfg.Consumer + "-reclaimer",
		MinIdle:   pcfg.LeaseTimeout,
		Interval:  pcfg.ReclaimInterval,
		BatchSize: 10,
	}, consumer, w.ProcessReclaimed)

	return stage{name: name, worker: w, reclaimer: reclaimer}, nil
}

const banner = `
 ___     _                    _      _
| _ \_ _(_)__ ___ __ ____ _ _| |_ __| |_    __ __ _____ _ _| |_____ _ _
|  _/ '_| / _/ -_)\ V  V / _' |  _/ _| ' \   \ V  V / _ \ '_| / / -_) '_|
|_| |_| |_\__\___| \_/\_/\__,_|\__\__|_||_|   \_/\_/\___/_| |_\_\___|_|
`
