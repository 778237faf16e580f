package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"iasrentals/internal/app/middleware"
	"iasrentals/internal/app/notifications"
	appoutbox "iasrentals/internal/app/outbox"
	"iasrentals/internal/app/uow"
	domainauth "iasrentals/internal/domain/auth"
	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
	"iasrentals/internal/infra/config"
	mongostore "iasrentals/internal/infra/db/mongo"
	infrainbox "iasrentals/internal/infra/inbox"
	infraoutbox "iasrentals/internal/infra/outbox"
	"iasrentals/internal/infra/storage/memory"
	"iasrentals/internal/infra/storage/sqlite"
)

const inboxRetention = 7 * 24 * time.Hour

// backend is one storage driver with everything the commands need from it.
// Queue is nil for the memory driver, which flushes events in process.
type backend struct {
	UoW         uow.UoWFactory
	Users       domainuser.Repository
	Properties  domainproperties.Repository
	Sessions    domainauth.SessionStore
	Idempotency middleware.IdempotencyStore
	Outbox      appoutbox.Outbox
	Queue       infraoutbox.Queue
	Inbox       notifications.Inbox
	Ready       func(ctx context.Context) error
	Clear       func(ctx context.Context) error
	Close       func(ctx context.Context) error
	Maintain    func(ctx context.Context)
}

// openBackend connects the configured driver. dispatcher receives events
// flushed by the memory outbox; other drivers ignore it.
func openBackend(ctx context.Context, cfg config.Config, dispatcher appoutbox.Dispatcher, logger *slog.Logger) (*backend, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return openMemory(dispatcher, logger), nil
	case config.DriverSQLite:
		return openSQLite(cfg, logger)
	case config.DriverMongo:
		return openMongo(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func openMemory(dispatcher appoutbox.Dispatcher, logger *slog.Logger) *backend {
	store := memory.NewStore()
	return &backend{
		UoW:         store.Factory(),
		Users:       store.Users,
		Properties:  store.Properties,
		Sessions:    store.Sessions,
		Idempotency: memory.NewIdempotencyStore(),
		Outbox:      memory.NewOutbox(dispatcher, logger),
		Inbox:       memory.NewInbox(),
		Ready:       func(context.Context) error { return nil },
		Clear:       store.Clear,
		Close:       func(context.Context) error { return nil },
	}
}

func openSQLite(cfg config.Config, logger *slog.Logger) (*backend, error) {
	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	store := sqlite.NewStore(db)
	box := sqlite.NewOutbox(db)
	return &backend{
		UoW:         store.Factory(),
		Users:       store.Users,
		Properties:  store.Properties,
		Sessions:    store.Sessions,
		Idempotency: sqlite.NewIdempotencyStore(db, cfg.IdempotencyTTL),
		Outbox:      box,
		Queue:       box,
		Inbox:       sqlite.NewInbox(db, cfg.KafkaConsumerGroup),
		Ready:       db.Ping,
		Clear:       db.Clear,
		Close:       func(context.Context) error { return db.Close() },
		Maintain: func(ctx context.Context) {
			purgeSessions(ctx, store.Sessions, logger)
		},
	}, nil
}

func openMongo(ctx context.Context, cfg config.Config) (*backend, error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*backend, error) {
		_ = client.Close(context.Background())
		return nil, err
	}
	store, err := mongostore.NewStore(ctx, client.DB)
	if err != nil {
		return fail(err)
	}
	idem, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	if err != nil {
		return fail(err)
	}
	box, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return fail(err)
	}
	inbox, err := infrainbox.NewStore(ctx, client.DB, cfg.KafkaConsumerGroup, inboxRetention)
	if err != nil {
		return fail(err)
	}
	return &backend{
		UoW:         store.Factory(),
		Users:       store.Users,
		Properties:  store.Properties,
		Sessions:    store.Sessions,
		Idempotency: idem,
		Outbox:      box,
		Queue:       box,
		Inbox:       inbox,
		Ready:       client.Ping,
		Clear:       store.Clear,
		Close:       client.Close,
	}, nil
}

// purgeSessions drops expired sqlite sessions once an hour. Mongo expires
// them through a TTL index.
func purgeSessions(ctx context.Context, sessions *sqlite.SessionStore, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		n, err := sessions.PurgeExpired(ctx, time.Now().UTC().UnixNano())
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("session purge failed", "error", err)
		case n > 0:
			logger.Info("expired sessions purged", "count", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
