package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	cache_adapter "listing-service/internal/adapters/cache"
	"listing-service/internal/adapters/listing_api_client"
	logger_adapter "listing-service/internal/adapters/logger"
	postgres_adapter "listing-service/internal/adapters/postgres"
	rabbitmq_adapter "listing-service/internal/adapters/rabbitmq"
	"listing-service/internal/adapters/rest"
	"listing-service/internal/configs"
	"listing-service/internal/constants"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"
	"listing-service/internal/core/usecase"
	"listing-service/internal/core/workingset"
	fluentlogger "listing-service/pkg/fluent_logger"
	"listing-service/pkg/postgres"
	"listing-service/pkg/rabbitmq/rabbitmq_common"
	"listing-service/pkg/rabbitmq/rabbitmq_consumer"
	"listing-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	shutdownTimeout = 15 * time.Second
	warmUpTimeout   = 30 * time.Second
)

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	cache        port.ListingCachePort
	workingSet   *workingset.WorkingSet
	apiServer    *rest.Server
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	connManager             *rabbitmq_common.ConnectionManager
	reportsProducer         *rabbitmq_producer.Publisher
	listingsChangedListener port.EventListenerPort
}

// NewApp - composition root: здесь создаются и связываются все зависимости.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}

	// --- 1. Логгеры ---
	var activeLoggers []port.LoggerPort

	stdoutLevel, ok := logger_adapter.ParseLevel(appConfig.StdoutLogger.Level)
	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    stdoutLevel,
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: !appConfig.StdoutLogger.IsJSON,
	})
	if !ok {
		stdoutLogger.Warn("Unknown log level, defaulting to info", port.Fields{"level": appConfig.StdoutLogger.Level})
	}
	activeLoggers = append(activeLoggers, stdoutLogger)

	if appConfig.FluentBit.Enabled {
		app.fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentLevel, _ := logger_adapter.ParseLevel(appConfig.FluentBit.Level)
		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(app.fluentClient, fluentLevel)
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			app.fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger = appLogger
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// при ошибке дальше по сборке закрываем всё, что уже успели открыть
	ok = false
	defer func() {
		if !ok {
			app.closeResources()
		}
	}()

	startupCtx := contextkeys.ContextWithLogger(context.Background(), appLogger)

	// --- 2. Источник карточек ---
	var source port.ListingRepositoryPort
	switch appConfig.ListingSource {
	case configs.ListingSourcePostgres:
		app.dbPool, err = postgres.NewClient(startupCtx, postgres.Config{
			DatabaseURL:    appConfig.Database.URL,
			MaxConns:       int32(appConfig.Database.MaxConns),
			ConnectTimeout: 10 * time.Second,
		})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		source, err = postgres_adapter.NewHotelRepositoryAdapter(app.dbPool)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres hotel repository: %w", err)
		}
		appLogger.Info("PostgreSQL listing source initialized.", nil)
	default:
		source, err = listing_api_client.NewClient(listing_api_client.Config{
			BaseURL:    appConfig.ListingAPI.URL,
			APIKey:     appConfig.ListingAPI.APIKey,
			Collection: appConfig.ListingAPI.Collection,
			PageLimit:  appConfig.ListingAPI.PageLimit,
			Timeout:    appConfig.ListingAPI.Timeout,
		})
		if err != nil {
			appLogger.Error("Failed to create listing API client", err, nil)
			return nil, fmt.Errorf("failed to create listing API client: %w", err)
		}
		appLogger.Info("Listing API source initialized.", port.Fields{"collection": appConfig.ListingAPI.Collection})
	}

	// --- 3. Кэш ---
	listingsCache, err := cache_adapter.NewListingsCache(startupCtx, appConfig.Redis.Enabled, cache_adapter.Config{
		Addr:     appConfig.Redis.Addr,
		Password: appConfig.Redis.Password,
		DB:       appConfig.Redis.DB,
	})
	if err != nil {
		appLogger.Error("Failed to connect to Redis", err, nil)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.cache = listingsCache
	if appConfig.Redis.Enabled {
		appLogger.Info("Redis cache initialized.", port.Fields{"addr": appConfig.Redis.Addr})
	} else {
		appLogger.Info("Listings cache disabled.", nil)
	}

	repository, err := cache_adapter.NewCachedRepository(source, app.cache, constants.WorkingSetCacheKey, appConfig.Redis.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create cached repository: %w", err)
	}

	app.workingSet, err = workingset.NewWorkingSet(repository)
	if err != nil {
		return nil, fmt.Errorf("failed to create working set: %w", err)
	}

	// --- 4. RabbitMQ (необязателен) ---
	var reporter port.RefreshReporterPort
	if appConfig.RabbitMQ.Enabled {
		connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
		app.connManager, err = rabbitmq_common.NewConnectionManager(
			rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			appConfig.RabbitMQ.ReconnectInterval,
			rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger),
		)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

		producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
		app.reportsProducer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:             constants.ListingsExchange,
			ExchangeType:             "topic",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(producerLogger),
		}, app.connManager)
		if err != nil {
			appLogger.Error("Failed to create refresh reports producer", err, nil)
			return nil, fmt.Errorf("failed to create refresh reports producer: %w", err)
		}

		reporter, err = rabbitmq_adapter.NewRefreshReporterAdapter(app.reportsProducer, constants.RoutingKeyRefreshReports, appConfig.AppName)
		if err != nil {
			return nil, err
		}
		appLogger.Info("RabbitMQ refresh reporter initialized.", nil)
	}

	// --- 5. Use cases ---
	queryListingsUseCase := usecase.NewQueryListingsUseCase(app.workingSet)
	getListingStatsUseCase := usecase.NewGetListingStatsUseCase(app.workingSet)
	getHotelDetailsUseCase := usecase.NewGetHotelDetailsUseCase(app.workingSet)
	getFilterOptionsUseCase := usecase.NewGetFilterOptionsUseCase(app.workingSet)
	refreshListingsUseCase := usecase.NewRefreshListingsUseCase(app.workingSet, app.cache, reporter)
	appLogger.Info("All use cases initialized.", nil)

	// --- 6. Входящие адаптеры ---
	if appConfig.RabbitMQ.Enabled {
		consumerCfg := rabbitmq_consumer.ConsumerConfig{
			Config:                 rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			QueueName:              constants.QueueListingsChanged,
			DeclareQueue:           true,
			DurableQueue:           true,
			ExchangeNameForBind:    constants.ListingsExchange,
			DeclareExchangeForBind: true,
			ExchangeTypeForBind:    "topic",
			DurableExchangeForBind: true,
			RoutingKeyForBind:      constants.RoutingKeyListingsChanged,
			PrefetchCount:          appConfig.RabbitMQ.BatchSize,
			ConsumerTag:            appConfig.AppName + "-listings-changed",

			EnableRetryMechanism: true,
			RetryExchange:        constants.QueueListingsChanged + "_retry_ex",
			RetryQueue:           constants.QueueListingsChanged + "_retry_wait_30s",
			RetryTTL:             30000,
			FinalDLXExchange:     constants.FinalDLXExchange,
			FinalDLQ:             constants.FinalDLQ,
			FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
			MaxRetries:           3,
		}
		listener, err := rabbitmq_adapter.NewListingsChangedConsumerAdapter(
			consumerCfg,
			appConfig.RabbitMQ.BatchSize,
			appConfig.RabbitMQ.BatchTimeout,
			refreshListingsUseCase,
			baseLogger,
			app.connManager,
		)
		if err != nil {
			appLogger.Error("Failed to create listings-changed listener", err, nil)
			return nil, err
		}
		app.listingsChangedListener = listener
		appLogger.Info("Listings-changed events listener initialized.", nil)
	}

	hotelsHandler := rest.NewHotelsHandler(
		queryListingsUseCase,
		getListingStatsUseCase,
		getHotelDetailsUseCase,
		getFilterOptionsUseCase,
		refreshListingsUseCase,
		appConfig.Rest.DefaultPageSize,
	)
	router := rest.NewRouter(hotelsHandler, appConfig.Rest.CORSAllowedOrigins, baseLogger)
	app.apiServer = rest.NewServer(appConfig.Rest.PORT, router, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	ok = true
	return app, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		a.closeResources()
	}()

	a.logger.Info("Application is starting...", nil)

	// Прогрев: неудачная загрузка не мешает старту, следующий запрос попробует снова
	warmCtx, cancelWarm := context.WithTimeout(contextkeys.ContextWithLogger(appCtx, a.logger), warmUpTimeout)
	snap := a.workingSet.Current(warmCtx)
	cancelWarm()
	if snap.LoadErr != nil {
		a.logger.Warn("Initial listings load failed, serving empty working set", port.Fields{"error": snap.LoadErr.Error()})
	} else {
		a.logger.Info("Working set loaded", port.Fields{"records": len(snap.Records), "rejected": snap.Rejected})
	}

	errorsCh := make(chan error, 2)

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil && !errors.Is(err, context.Canceled) {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	if a.listingsChangedListener != nil {
		wg.Add(1)
		go startListener("Listings Changed Events Listener", a.listingsChangedListener)
	}

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	cancelApp()
	return runErr
}

// closeResources закрывает внешние соединения в порядке, обратном созданию.
func (a *App) closeResources() {
	if a.listingsChangedListener != nil {
		if err := a.listingsChangedListener.Close(); err != nil {
			a.logger.Error("Error closing listings-changed listener", err, nil)
		}
	}
	if a.reportsProducer != nil {
		if err := a.reportsProducer.Close(); err != nil {
			a.logger.Error("Error closing refresh reports producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("Error closing listings cache", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent к этому моменту может быть уже недоступен
			fmt.Fprintf(os.Stderr, "ERROR: Error closing fluent client: %v\n", err)
		}
	}
}
