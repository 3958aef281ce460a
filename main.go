package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seat-reservation/cmd"
	"seat-reservation/internal/data/memstore"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/data/seed"
	"seat-reservation/internal/event"
	"seat-reservation/internal/notification"
	"seat-reservation/internal/usecase"
	"seat-reservation/internal/wire"
	"seat-reservation/pkg/database"
	"seat-reservation/pkg/metrics"
	"seat-reservation/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("store", config.App.StoreDriver),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Fatal("Application stopped with error", zap.Error(err))
	}
	logger.Info("Application stopped")
}

func run(ctx context.Context, config *utils.Config, logger *zap.Logger) error {
	repos, closeStore, err := openStore(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb := openRedis(ctx, config, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	m := metrics.New()

	// ==================== NOTIFICATIONS ====================
	notifiers := []notification.Notifier{notification.NewConsoleNotifier(logger)}
	var reminderSender notification.ReminderSender = notification.NewConsoleNotifier(logger)

	if email := notification.NewEmailNotifier(config.Email, logger); email != nil {
		notifiers = append(notifiers, email)
	}
	if api := notification.NewTwilioAPI(config.Twilio); api != nil {
		voice := notification.NewVoiceNotifier(api, config.Twilio.FromNumber, logger)
		notifiers = append(notifiers,
			notification.NewSMSNotifier(api, config.Twilio.FromNumber, logger),
			voice,
		)
		reminderSender = voice
	}
	dispatcher := notification.NewDispatcher(logger, notifiers...)
	defer dispatcher.Wait()

	g, ctx := errgroup.WithContext(ctx)

	// ==================== EVENTS ====================
	var publisher event.Publisher = event.NewLocalPublisher(dispatcher.Dispatch, logger)
	if config.RabbitMQ.Enabled {
		amqpPublisher := event.NewAMQPPublisher(config.RabbitMQ.URL, logger)
		defer amqpPublisher.Close()

		async := event.NewAsyncPublisher(amqpPublisher, event.DefaultPublishBuffer, m, logger)
		g.Go(func() error { return async.Run(ctx) })
		publisher = async

		consumer := event.NewConsumer(config.RabbitMQ.URL, dispatcher.Dispatch, logger)
		g.Go(func() error { return consumer.Run(ctx) })
	}

	app := wire.Wiring(repos, usecase.Dependencies{
		Publisher:          publisher,
		ReminderSender:     reminderSender,
		Metrics:            m,
		DefaultHoldMinutes: config.Hold.DefaultMinutes,
		SweepInterval:      config.Hold.SweepInterval,
		Reminder:           config.Reminder,
	}, rdb, config, logger)

	g.Go(func() error { return app.Service.Sweeper.Run(ctx) })
	g.Go(func() error { return app.Service.Reminder.Run(ctx) })
	g.Go(func() error { return cmd.APIServer(ctx, app.Router, config.App.Port, logger) })

	return g.Wait()
}

// openStore connects the configured inventory store and returns its
// repositories with a cleanup func.
func openStore(ctx context.Context, config *utils.Config, logger *zap.Logger) (*repository.Repository, func(), error) {
	if config.App.StoreDriver == utils.StoreDriverMemory {
		store := memstore.New(logger)
		if config.App.SeedDemo {
			store.SeedCatalog(seed.Demo(time.Now()))
			logger.Info("Demo catalog seeded into memory store")
		}
		return store.Repository(), func() {}, nil
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connected successfully")

	if config.Database.AutoMigrate {
		if err := database.MigrateSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Database schema migrated")
	}

	if config.App.SeedDemo {
		if err := repository.SeedCatalog(ctx, db, seed.Demo(time.Now()), logger); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	return repository.NewRepository(db, logger), db.Close, nil
}

// openRedis returns nil when Redis is unreachable; rate limiting is then off.
func openRedis(ctx context.Context, config *utils.Config, logger *zap.Logger) *redis.Client {
	if !config.RateLimit.Enabled {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, rate limiting disabled", zap.Error(err), zap.String("addr", config.Redis.Addr))
		_ = rdb.Close()
		return nil
	}

	logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	return rdb
}
