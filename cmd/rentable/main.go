package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rentable/internal/app/commands"
	availabilityapp "rentable/internal/app/handlers/availability"
	rentalapp "rentable/internal/app/handlers/rental"
	"rentable/internal/app/middleware"
	"rentable/internal/app/outbox"
	"rentable/internal/app/policies"
	"rentable/internal/app/queries"
	"rentable/internal/app/schedule"
	appuow "rentable/internal/app/uow"
	"rentable/internal/domain/identity"
	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/interval"
	"rentable/internal/domain/shared/money"
	"rentable/internal/infra/broker/kafka"
	"rentable/internal/infra/config"
	mongostore "rentable/internal/infra/db/mongo"
	ginserver "rentable/internal/infra/http/gin"
	"rentable/internal/infra/inbox"
	"rentable/internal/infra/notify"
	"rentable/internal/infra/obs"
	infraoutbox "rentable/internal/infra/outbox"
	"rentable/internal/infra/sched"
	"rentable/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if cfg.StorageMode == "memory" {
		fixturesPath := getenv("FIXTURES", defaultFixturesPath())
		if err := app.loadFixtures(ctx, fixturesPath, logger); err != nil {
			logger.Warn("fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	go func() {
		if err := app.taskRunner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("task runner stopped", "error", err)
		}
	}()
	go func() {
		if err := app.activationSweep.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("activation sweep stopped", "error", err)
		}
	}()
	if app.outboxWorker != nil {
		go func() {
			if err := app.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if app.notifyConsumer != nil {
		go func() {
			if err := app.notifyConsumer.Run(ctx, []string{cfg.NotifyTopic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notification consumer stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers        ginserver.Handlers
	taskRunner      *sched.Runner
	activationSweep *sched.ActivationSweep
	outboxWorker    *infraoutbox.Worker
	notifyConsumer  *kafka.Consumer
	ready           func() error

	itemsRepo domainrental.ItemRepository
	usersRepo identity.Repository
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{ready: func() error { return nil }}

	var (
		uowFactory appuow.UoWFactory
		idStore    middleware.IdempotencyStore
		outboxPort outbox.Outbox
		taskStore  schedule.TaskStore
	)

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		producer = p
	}

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		itemsRepo := mongostore.NewItemRepository(client.DB)
		rentalsRepo := mongostore.NewRentalRepository(client.DB)
		usersRepo := mongostore.NewUserRepository(client.DB)
		uowFactory = mongostore.Factory{
			DB:          client.DB,
			ItemsRepo:   itemsRepo,
			RentalsRepo: rentalsRepo,
			UsersRepo:   usersRepo,
		}
		idStore = mongostore.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		outboxStore := infraoutbox.NewStore(client.DB)
		outboxPort = outboxStore
		taskStore = mongostore.NewTaskStore(client.DB)
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		app.itemsRepo = itemsRepo
		app.usersRepo = usersRepo

		if producer != nil {
			app.outboxWorker = &infraoutbox.Worker{
				Store:       outboxStore,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
			consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "rentable-notify", nil, notify.DeliveryHandler{
				Dedup:  inbox.NewStore(client.DB, "rentable-notify"),
				Logger: logger,
			})
			if err != nil {
				return nil, fmt.Errorf("kafka consumer: %w", err)
			}
			app.notifyConsumer = consumer
		}
	default:
		itemsRepo := memory.NewItemRepository()
		rentalsRepo := memory.NewRentalRepository()
		usersRepo := memory.NewUserRepository()
		uowFactory = memory.Factory{
			ItemsRepo:   itemsRepo,
			RentalsRepo: rentalsRepo,
			UsersRepo:   usersRepo,
		}
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		outboxPort = memory.NewOutbox()
		taskStore = memory.NewTaskStore()
		app.itemsRepo = itemsRepo
		app.usersRepo = usersRepo
	}

	var notifier policies.Notifier = &notify.LogNotifier{Logger: logger}
	if producer != nil {
		notifier = &notify.KafkaNotifier{Producer: producer, Topic: cfg.NotifyTopic}
	}

	scheduler := schedule.StoreScheduler{Store: taskStore}
	encoder := outbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, rentalapp.RequestRentalCommand{}.Key(), &rentalapp.RequestRentalHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxPort,
		Encoder:    encoder,
		Notifier:   notifier,
		Currency:   cfg.DefaultCurrency,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, rentalapp.DecideRentalCommand{}.Key(), &rentalapp.DecideRentalHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxPort,
		Encoder:    encoder,
		Notifier:   notifier,
		Scheduler:  scheduler,
		Currency:   cfg.DefaultCurrency,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, rentalapp.TerminateRentalCommand{}.Key(), &rentalapp.TerminateRentalHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxPort,
		Encoder:    encoder,
		Notifier:   notifier,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, rentalapp.ExpireRentalCommand{}.Key(), &rentalapp.ExpireRentalHandler{
		UoWFactory: uowFactory,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, rentalapp.DeleteRentalCommand{}.Key(), &rentalapp.DeleteRentalHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler(commandBus, rentalapp.ActivateDueRentalsCommand{}.Key(), &rentalapp.ActivateDueRentalsHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxPort,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, availabilityapp.UpdateBlockedDatesCommand{}.Key(), &availabilityapp.UpdateBlockedDatesHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxPort,
		Encoder:    encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.FreeIntervalsQuery{}.Key(), &availabilityapp.FreeIntervalsHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, rentalapp.ExportRentalsQuery{}.Key(), &rentalapp.ExportRentalsHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, rentalapp.GetRentalQuery{}.Key(), &rentalapp.GetRentalHandler{
		UoWFactory: uowFactory,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxPort),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app.handlers = ginserver.Handlers{
		Rental: ginserver.RentalHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Availability: ginserver.AvailabilityHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
	}
	app.taskRunner = &sched.Runner{
		Store:    taskStore,
		Bus:      commandBusWithMiddleware,
		Logger:   logger,
		Interval: cfg.TaskPollInterval,
	}
	app.activationSweep = &sched.ActivationSweep{
		Bus:      commandBusWithMiddleware,
		Logger:   logger,
		Interval: cfg.ActivationInterval,
	}
	return app, nil
}

// loadFixtures seeds the in-memory store with demo items and users so the
// API is explorable without any external setup.
func (a *application) loadFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures fixtureFile
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range fixtures.Users {
		user := &identity.User{
			ID:      identity.UserID(fx.ID),
			Name:    fx.Name,
			Email:   fx.Email,
			Balance: money.Money{Amount: fx.Balance, Currency: fx.Currency},
		}
		if err := a.usersRepo.Save(ctx, user); err != nil {
			logger.Error("cannot store fixture user", "user_id", fx.ID, "error", err)
			continue
		}
		logger.Info("user fixture imported", "user_id", fx.ID)
	}

	now := time.Now().UTC()
	for _, fx := range fixtures.Items {
		cadence := domainrental.Cadence(fx.Cadence)
		if !cadence.Valid() {
			logger.Error("fixture item has unknown cadence", "item_id", fx.ID, "cadence", fx.Cadence)
			continue
		}
		item := &domainrental.Item{
			ID:                    domainrental.ItemID(fx.ID),
			OwnerID:               fx.Owner,
			Name:                  fx.Name,
			Cadence:               cadence,
			PreReservationDeposit: money.Money{Amount: fx.DepositAmount, Currency: fx.Currency},
			DeclaredAvailability:  toIntervals(fx.Availability),
			BlockedRanges:         toIntervals(fx.Blocked),
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := a.itemsRepo.Save(ctx, item); err != nil {
			logger.Error("cannot store fixture item", "item_id", fx.ID, "error", err)
			continue
		}
		logger.Info("item fixture imported", "item_id", fx.ID)
	}
	return nil
}

type fixtureFile struct {
	Users []userFixture `json:"users"`
	Items []itemFixture `json:"items"`
}

type userFixture struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}

type itemFixture struct {
	ID            string            `json:"id"`
	Owner         string            `json:"owner"`
	Name          string            `json:"name"`
	Cadence       string            `json:"cadence"`
	DepositAmount int64             `json:"deposit_amount"`
	Currency      string            `json:"currency"`
	Availability  []fixtureInterval `json:"availability"`
	Blocked       []fixtureInterval `json:"blocked"`
}

type fixtureInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func toIntervals(src []fixtureInterval) []interval.Interval {
	if len(src) == 0 {
		return nil
	}
	out := make([]interval.Interval, len(src))
	for i, fx := range src {
		out[i] = interval.Interval{Start: fx.Start.UTC(), End: fx.End.UTC()}
	}
	return out
}

func defaultFixturesPath() string {
	return filepath.Join("data", "fixtures.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
