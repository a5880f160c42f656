package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/example/ec-fulfillment/internal/auth"
	"github.com/example/ec-fulfillment/internal/command"
	"github.com/example/ec-fulfillment/internal/config"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/infrastructure/eventbus"
	"github.com/example/ec-fulfillment/internal/infrastructure/kafka"
	"github.com/example/ec-fulfillment/internal/infrastructure/repository"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"github.com/example/ec-fulfillment/internal/logger"
	"github.com/example/ec-fulfillment/internal/query"
	"github.com/example/ec-fulfillment/internal/workflow/orderflow"
)

// runtime owns everything a subcommand opened. close releases it in reverse
// order.
type runtime struct {
	cfg     config.Config
	log     *logger.Logger
	repos   *repository.Set
	clock   shared.Clock
	closers []func() error
}

func (r *runtime) onClose(fn func() error) {
	r.closers = append(r.closers, fn)
}

func (r *runtime) close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.log.Sync()
	return errors.Join(errs...)
}

// bootstrap loads config, builds the logger and opens the document store.
func bootstrap(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	rt := &runtime{cfg: cfg, log: log, clock: shared.SystemClock{}}
	st, err := openStore(ctx, rt)
	if err != nil {
		_ = rt.close()
		return nil, err
	}
	rt.repos = repository.NewSet(st)
	return rt, nil
}

func openStore(ctx context.Context, rt *runtime) (store.DocumentStore, error) {
	cfg := rt.cfg.Store
	log := rt.log.With("store", cfg.Driver)

	switch cfg.Driver {
	case config.StorePostgres:
		db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.onClose(db.Close)
		pg := store.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		log.Info("document store ready")
		return pg, nil

	case config.StoreDynamo:
		client, err := store.NewDynamoClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
		if err != nil {
			return nil, err
		}
		log.Info("document store ready", "table", cfg.DynamoTable, "region", cfg.AWSRegion)
		return store.NewDynamoStore(client, cfg.DynamoTable), nil

	case config.StoreRedis:
		rdb, err := store.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		rt.onClose(rdb.Close)
		log.Info("document store ready", "addr", cfg.RedisAddr)
		return store.NewRedisStore(rdb, cfg.RedisPrefix), nil

	default:
		log.Warn("using in-memory document store; data is lost on exit")
		return store.NewMemoryStore(), nil
	}
}

// bus is the publishing side plus, for the in-process driver, the channel
// a local notifier can subscribe to.
type bus struct {
	publisher eventbus.Publisher
	channel   *gochannel.GoChannel
}

func openBus(rt *runtime) bus {
	cfg := rt.cfg.Bus
	switch cfg.Driver {
	case config.BusKafka:
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		rt.onClose(producer.Close)
		rt.log.Info("event bus ready", "bus", cfg.Driver, "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return bus{publisher: eventbus.NewKafkaPublisher(producer)}

	case config.BusWatermill:
		ch := eventbus.NewChannel(rt.log.Watermill())
		rt.onClose(ch.Close)
		rt.log.Info("event bus ready", "bus", cfg.Driver, "topic", cfg.KafkaTopic)
		return bus{publisher: eventbus.NewWatermillPublisher(ch, cfg.KafkaTopic), channel: ch}

	default:
		rt.log.Info("event bus ready", "bus", config.BusMemory)
		return bus{publisher: eventbus.NewJournal()}
	}
}

func newCommandHandler(rt *runtime, pub eventbus.Publisher) *command.Handler {
	return command.NewHandler(command.Deps{
		Repos:   rt.repos,
		Factory: factory.New(shared.UUIDGenerator{}, rt.clock),
		Hasher:  auth.BcryptHasher{},
		Pricing: orderflow.Pricing{
			ShippingCost: rt.cfg.Pricing.ShippingCost,
			TaxRate:      rt.cfg.Pricing.TaxRate,
		},
		Publisher: pub,
		Logger:    rt.log,
	})
}

func newQueryHandler(rt *runtime) *query.Handler {
	return query.NewHandler(rt.repos, rt.clock, rt.log)
}

func newJWTService(cfg config.JWTConfig) *auth.JWTService {
	return auth.NewJWTService(cfg.Secret, cfg.Issuer, cfg.AccessExpiry, cfg.RefreshExpiry)
}
