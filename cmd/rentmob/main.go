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

	"rentmob/internal/app/commands"
	catalogapp "rentmob/internal/app/handlers/catalog"
	checkoutapp "rentmob/internal/app/handlers/checkout"
	fleetapp "rentmob/internal/app/handlers/fleet"
	wishlistapp "rentmob/internal/app/handlers/wishlist"
	"rentmob/internal/app/middleware"
	appoutbox "rentmob/internal/app/outbox"
	"rentmob/internal/app/policies"
	"rentmob/internal/app/queries"
	"rentmob/internal/app/uow"
	"rentmob/internal/domain/catalog"
	domainrental "rentmob/internal/domain/rental"
	"rentmob/internal/domain/shared/money"
	"rentmob/internal/infra/broker/kafka"
	"rentmob/internal/infra/config"
	mongodb "rentmob/internal/infra/db/mongo"
	"rentmob/internal/infra/gateway/midtrans"
	ginserver "rentmob/internal/infra/http/gin"
	"rentmob/internal/infra/obs"
	infraoutbox "rentmob/internal/infra/outbox"
	"rentmob/internal/infra/storage/memory"
	"rentmob/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app := buildApplication(cfg, logger)
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: func() error { return nil },
	}, app.handlers)

	fixturesPath := getenv("CATALOG_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = defaultCatalogFixturesPath()
	}
	if err := app.loadCatalogFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("catalog fixtures load failed", "error", err, "path", fixturesPath)
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
		} else {
			defer producer.Close()
			worker := &infraoutbox.Worker{
				Store:       app.outbox,
				Producer:    producer,
				Logger:      logger,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
			go func() {
				if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("outbox worker stopped", "error", err)
				}
			}()
		}
	} else {
		logger.Info("kafka brokers not configured, outbox events stay local")
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	outbox   *memory.Outbox
	catalog  *memory.CatalogRepository
}

func buildApplication(cfg config.Config, logger *slog.Logger) application {
	catalogRepo := memory.NewCatalogRepository()
	wishlistRepo := memory.NewWishlistRepository()
	outboxStore := memory.NewOutbox()

	// Reference data stays in memory; the rental aggregate and the
	// idempotency records move to Mongo when a URI is configured.
	var uowFactory uow.UoWFactory
	var idStore middleware.IdempotencyStore = memory.NewIdempotencyStore()
	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo unavailable, falling back to memory storage", "error", err)
		} else {
			uowFactory = mongodb.Factory{
				DB:           client.DB,
				CatalogRepo:  catalogRepo,
				RentalRepo:   mongodb.NewRentalRepository(client.DB),
				WishlistRepo: wishlistRepo,
			}
			idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		}
	}
	if uowFactory == nil {
		uowFactory = memory.NewFactoryWith(catalogRepo, memory.NewRentalRepository(), wishlistRepo)
	}

	var gateway policies.PaymentGateway = &midtrans.Client{
		HTTP:      &http.Client{Timeout: 15 * time.Second},
		BaseURL:   cfg.MidtransBaseURL,
		ServerKey: cfg.MidtransServerKey,
		Logger:    logger,
	}

	var objectStorage policies.ObjectStorage = s3.NoopStorage{}
	if uploader, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger); err != nil {
		logger.Warn("object storage unavailable, photo uploads disabled", "error", err)
	} else {
		objectStorage = uploader
	}

	commandBus := commands.NewInMemoryBus()
	submitHandler := &checkoutapp.SubmitRentalHandler{
		Gateway: gateway,
		Outbox:  outboxStore,
		Encoder: appoutbox.JSONEventEncoder{},
	}
	commands.RegisterHandler(commandBus, checkoutapp.SubmitRentalCommand{}.Key(), submitHandler)
	confirmHandler := &checkoutapp.ConfirmPaymentHandler{Outbox: outboxStore, Encoder: appoutbox.JSONEventEncoder{}}
	commands.RegisterHandler(commandBus, checkoutapp.ConfirmPaymentCommand{}.Key(), confirmHandler)
	failHandler := &checkoutapp.FailPaymentHandler{Outbox: outboxStore, Encoder: appoutbox.JSONEventEncoder{}}
	commands.RegisterHandler(commandBus, checkoutapp.FailPaymentCommand{}.Key(), failHandler)
	uploadHandler := &fleetapp.UploadCarPhotoHandler{Storage: objectStorage}
	commands.RegisterHandler(commandBus, fleetapp.UploadCarPhotoCommand{}.Key(), uploadHandler)

	queryBus := queries.NewInMemoryBus()
	catalogapp.Register(queryBus, &catalogapp.Handler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, checkoutapp.CheckStockQuery{}.Key(), &checkoutapp.CheckStockHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, checkoutapp.CheckRentalQuery{}.Key(), &checkoutapp.CheckRentalHandler{UoWFactory: uowFactory})
	wishlistapp.Register(commandBus, queryBus, &wishlistapp.Handler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.SingleFlight(),
		middleware.Idempotency(idStore, nil,
			checkoutapp.ErrReconciliationFailed,
			checkoutapp.ErrCarUnavailable,
			checkoutapp.ErrTokenRequest,
			domainrental.ErrRentalNotFound,
			domainrental.ErrInvalidState,
		),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	observer := &checkoutapp.RedirectObserver{Bus: commandBusWithMiddleware, Logger: logger}

	return application{
		handlers: ginserver.Handlers{
			Rental: ginserver.RentalHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Observer: observer,
			},
			Catalog: ginserver.CatalogHandler{
				Queries:      queryBusWithMiddleware,
				SlotInterval: cfg.PickupSlotInterval,
			},
			Wishlist: ginserver.WishlistHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			Fleet: ginserver.FleetHandler{
				Commands: commandBusWithMiddleware,
			},
		},
		outbox:  outboxStore,
		catalog: catalogRepo,
	}
}

func (a application) loadCatalogFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("catalog fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures catalogFixtures
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	cat := a.catalog
	for _, fx := range fixtures.Cities {
		cat.AddCity(catalog.City{ID: catalog.CityID(fx.ID), Name: fx.Name})
	}
	for _, fx := range fixtures.DeliveryMethods {
		cat.AddDeliveryMethod(catalog.DeliveryMethod{
			ID:   catalog.DeliveryMethodID(fx.ID),
			Name: fx.Name,
			Fee:  money.IDR(fx.Fee),
		})
	}
	for _, fx := range fixtures.RentalOptions {
		cat.AddRentalOption(catalog.RentalOption{
			ID:          catalog.RentalOptionID(fx.ID),
			Name:        fx.Name,
			FeePerDay:   money.IDR(fx.FeePerDay),
			Description: fx.Description,
		})
	}
	for _, fx := range fixtures.Cars {
		car := &catalog.Car{
			ID:        catalog.CarID(fx.ID),
			CityID:    catalog.CityID(fx.CityID),
			Brand:     fx.Brand,
			Model:     fx.Model,
			Year:      fx.Year,
			Type:      fx.Type,
			Capacity:  fx.Capacity,
			FuelType:  fx.FuelType,
			DailyRate: money.IDR(fx.DailyRate),
			PhotoURL:  fx.PhotoURL,
		}
		if err := cat.SaveCar(ctx, car); err != nil {
			logger.Error("cannot store fixture car", "car_id", fx.ID, "error", err)
			continue
		}
	}
	logger.Info("catalog fixtures imported",
		"cars", len(fixtures.Cars),
		"cities", len(fixtures.Cities),
		"delivery_methods", len(fixtures.DeliveryMethods),
		"rental_options", len(fixtures.RentalOptions),
	)
	return nil
}

type catalogFixtures struct {
	Cities []struct {
		ID   string `json:"id"`
		Name string `json:"nama"`
	} `json:"kota"`
	DeliveryMethods []struct {
		ID   string `json:"id"`
		Name string `json:"nama"`
		Fee  int64  `json:"biaya"`
	} `json:"delivery"`
	RentalOptions []struct {
		ID          string `json:"id"`
		Name        string `json:"nama"`
		FeePerDay   int64  `json:"biaya_per_hari"`
		Description string `json:"deskripsi"`
	} `json:"rental_option"`
	Cars []struct {
		ID        string `json:"id"`
		CityID    string `json:"kota_id"`
		Brand     string `json:"merk"`
		Model     string `json:"model"`
		Year      int    `json:"tahun"`
		Type      string `json:"tipe"`
		Capacity  int    `json:"kapasitas"`
		FuelType  string `json:"bahan_bakar"`
		DailyRate int64  `json:"tarif"`
		PhotoURL  string `json:"foto"`
	} `json:"mobil"`
}

func defaultCatalogFixturesPath() string {
	return filepath.Join("data", "catalog.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
