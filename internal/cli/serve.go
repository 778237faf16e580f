package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"iasrentals/internal/app/notifications"
	"iasrentals/internal/app/policies"
	authsvc "iasrentals/internal/app/services/auth"
	"iasrentals/internal/app/wiring"
	domainreviews "iasrentals/internal/domain/reviews"
	domainvisits "iasrentals/internal/domain/visits"
	"iasrentals/internal/infra/broker/kafka"
	"iasrentals/internal/infra/config"
	ginserver "iasrentals/internal/infra/http/gin"
	"iasrentals/internal/infra/notify"
	"iasrentals/internal/infra/obs"
	infraoutbox "iasrentals/internal/infra/outbox"
	"iasrentals/internal/infra/security"
	"iasrentals/internal/infra/storage/s3"
)

const (
	eventSource     = "iasrentals"
	shutdownTimeout = 5 * time.Second
)

var version = "dev"

func newServeCmd() *cobra.Command {
	var seedOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the event relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger, seedOnStart)
		},
	}
	cmd.Flags().BoolVar(&seedOnStart, "seed", false, "insert demo data before serving when the store is empty")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger, seedOnStart bool) error {
	router := notifications.NewRouter(notify.LogNotifier{Logger: logger}, logger)
	dedup := &notifications.Deduplicating{Next: router, Logger: logger}

	be, err := openBackend(ctx, cfg, dedup, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Close(context.Background()); err != nil {
			logger.Warn("storage close failed", "error", err)
		}
	}()
	dedup.Inbox = be.Inbox
	logger.Info("storage ready", "driver", cfg.StorageDriver)

	hasher := security.BcryptHasher{}
	if seedOnStart {
		if _, err := seed(ctx, be, hasher, logger); err != nil {
			return err
		}
	}

	buses := wiring.NewBuses(wiring.Deps{
		UoW:            be.UoW,
		Outbox:         be.Outbox,
		Idempotency:    be.Idempotency,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Uploader:       newUploader(cfg, logger),
		Logger:         logger,
	})
	auth := &authsvc.Service{
		Users:      be.Users,
		Sessions:   be.Sessions,
		Passwords:  hasher,
		Tokens:     security.RandomTokenGenerator{Prefix: "ias_"},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	if be.Maintain != nil {
		go be.Maintain(ctx)
	}
	relayDone, err := startRelay(ctx, cfg, be, dedup, logger)
	if err != nil {
		return err
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready:   be.Ready,
		Version: version,
	}, ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: auth, Logger: logger},
		Profile:        ginserver.ProfileHandler{Service: auth, Logger: logger},
		Listings:       ginserver.ListingHandler{Queries: buses.Queries, Logger: logger},
		Properties:     ginserver.PropertyHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Stats:          ginserver.StatsHandler{Queries: buses.Queries, Logger: logger},
		Visits:         ginserver.VisitHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Reviews:        ginserver.ReviewHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: auth, Logger: logger}.Handle,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "version", version)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	<-relayDone
	logger.Info("HTTP server stopped")
	return nil
}

// newUploader returns the S3 client when a bucket is configured. Without
// one, uploads fail with s3.ErrNotConfigured.
func newUploader(cfg config.Config, logger *slog.Logger) policies.ImageUploader {
	if !cfg.S3Enabled() {
		return s3.NoopUploader{}
	}
	client, err := s3.NewClient(s3.Config{
		Endpoint:       cfg.S3Endpoint,
		PublicEndpoint: cfg.S3PublicEndpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Bucket:         cfg.S3Bucket,
		UseSSL:         cfg.S3UseSSL,
	}, logger)
	if err != nil {
		logger.Warn("image storage disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

// startRelay runs the outbox worker and, with Kafka configured, the
// notification consumer. The memory driver has no durable queue and
// dispatches on flush instead. The returned channel closes once every
// background loop has stopped.
func startRelay(ctx context.Context, cfg config.Config, be *backend, dedup *notifications.Deduplicating, logger *slog.Logger) (<-chan struct{}, error) {
	done := make(chan struct{})
	if be.Queue == nil {
		close(done)
		return done, nil
	}

	worker := &infraoutbox.Worker{
		Queue:       be.Queue,
		Dispatcher:  dedup,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      eventSource,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}

	var (
		producer *kafka.Producer
		consumer *kafka.Consumer
	)
	if cfg.KafkaEnabled() {
		var err error
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		consumer, err = kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, nil, kafka.EventHandler{Dispatcher: dedup}, logger)
		if err != nil {
			_ = producer.Close()
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		worker.Producer = producer
		logger.Info("kafka relay enabled", "brokers", cfg.KafkaBrokers, "group", cfg.KafkaConsumerGroup)
	}

	topics := infraoutbox.Topics(cfg.KafkaTopicPrefix,
		domainvisits.EventVisitScheduled,
		domainvisits.EventVisitCancelled,
		domainvisits.EventVisitCompleted,
		domainreviews.EventReviewCreated,
	)

	go func() {
		defer close(done)
		consumerDone := make(chan struct{})
		if consumer != nil {
			go func() {
				defer close(consumerDone)
				if err := consumer.Run(ctx, topics); err != nil && ctx.Err() == nil {
					logger.Error("kafka consumer stopped", "error", err)
				}
			}()
		} else {
			close(consumerDone)
		}
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("outbox worker stopped", "error", err)
		}
		<-consumerDone
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logger.Warn("kafka consumer close failed", "error", err)
			}
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka producer close failed", "error", err)
			}
		}
	}()
	return done, nil
}
