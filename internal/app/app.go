package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	httpapi "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/api/http"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/client/sellauth"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/config"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event"
	eventkafka "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event/kafka"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event/updates"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/service/poller"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/service/shop"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/telegram"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/templates"
	platformgrpchealth "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/health/grpc"
	platformhealth "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/health/http"
	platformlogging "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/logging"
	platformobservability "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/observability"
	platformshutdown "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/shutdown"
)

const serviceName = "sellbot"

// App содержит все зависимости для запуска и корректного shutdown бота
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	httpServer  *http.Server
	grpcServer  *grpc.Server
	health      *platformgrpchealth.Health
	telegram    *telegram.Client
	loop        *updates.Loop
	poller      *poller.Poller
	shutdownMgr *platformshutdown.Manager

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Build создаёт и настраивает все зависимости бота
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: serviceName,
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}
	cfg.Log(logger)

	buildLogger := logger.With(zap.String("op", op))
	buildLogger.Info("Building shop bot", zap.String("telegram_mode", cfg.TelegramMode))

	ctx, cancel := context.WithCancel(context.Background())

	// Создаём shutdown manager; функции выполняются в обратном порядке регистрации
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	// Ошибка сборки: освобождаем уже открытые ресурсы
	fail := func(err error) (*App, error) {
		cancel()
		shutdownMgr.Shutdown()
		return nil, err
	}

	// OpenTelemetry
	otelShutdown, err := platformobservability.Init(ctx, platformobservability.Config{
		Enabled:               cfg.OTelEnabled,
		OTLPEndpoint:          cfg.OTelEndpoint,
		SamplingRatio:         cfg.OTelSamplingRatio,
		ServiceName:           serviceName,
		DeploymentEnvironment: string(cfg.AppEnv),
	})
	if err != nil {
		return fail(err)
	}
	shutdownMgr.Add("observability", otelShutdown)

	// Хранилища
	transactions, txCheck, err := openTransactionStore(ctx, cfg, buildLogger, shutdownMgr.Add)
	if err != nil {
		return fail(err)
	}
	conversations, convCheck, err := openConversationStore(ctx, cfg, buildLogger, shutdownMgr.Add)
	if err != nil {
		return fail(err)
	}

	var checks []platformhealth.Check
	for _, c := range []*platformhealth.Check{txCheck, convCheck} {
		if c != nil {
			checks = append(checks, *c)
		}
	}

	// Публикация событий покупок
	var publisher event.PurchasePublisher
	if cfg.Kafka.Enabled {
		buildLogger.Info("Kafka publishing enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.PurchaseTopic),
		)
		kafkaPublisher := eventkafka.NewPurchasePublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.PurchaseTopic)
		shutdownMgr.Add("kafka_writer", platformshutdown.Close(kafkaPublisher))
		publisher = kafkaPublisher
	} else {
		publisher = eventkafka.NewNoOpPurchasePublisher(logger)
	}

	// Клиенты внешних API
	gateway := sellauth.NewClient(logger, sellauth.Config{
		BaseURL:          cfg.SellAuthBaseURL,
		APIKey:           cfg.SellAuthAPIKey,
		ShopID:           cfg.SellAuthShopID,
		MinConfirmations: cfg.MinConfirmations,
		Timeout:          cfg.SellAuthTimeout,
	})
	tg := telegram.NewClient(logger, cfg.TelegramBotToken, cfg.TelegramAPIURL)

	var sender telegram.Sender = tg
	if !cfg.TelegramSendEnabled {
		buildLogger.Warn("Telegram sending disabled, replies are only logged")
		sender = telegram.NewNoOpSender(logger)
	}

	renderer, err := templates.NewRenderer(logger, cfg.TemplatesDir)
	if err != nil {
		return fail(err)
	}

	// Поллер подтверждений оплаты
	confirmations := poller.New(logger, transactions, gateway, sender, renderer, publisher, poller.Config{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.PollMaxAttempts,
	})
	shutdownMgr.Add("poller", confirmations.Stop)

	// Каталог загружается один раз при старте
	catalog := shop.LoadCatalog(ctx, logger, gateway)

	engine := shop.NewEngine(logger, catalog, conversations, transactions, gateway, sender, renderer, publisher, confirmations,
		shop.Config{PaymentMethods: cfg.PaymentMethods})

	loop := updates.NewLoop(logger, engine, updates.Config{})

	// Цикл апдейтов останавливается отменой ctx
	shutdownMgr.Add("update_loop", func(context.Context) error {
		cancel()
		return nil
	})

	// gRPC health server
	health := platformgrpchealth.New(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(platformobservability.GRPCUnaryServerInterceptor(serviceName)))
	health.Register(grpcServer)
	shutdownMgr.Add("grpc_server", platformshutdown.ShutdownGRPCServer(grpcServer))

	// HTTP: /health и (в режиме webhook) /webhook
	var webhook *httpapi.WebhookHandler
	if cfg.TelegramMode == config.ModeWebhook {
		webhook = httpapi.NewWebhookHandler(logger, loop)
	}
	router := httpapi.NewRouter(logger, webhook, cfg.TelegramWebhookSecret, checks...)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	// Первым шагом shutdown перестаём отвечать SERVING
	shutdownMgr.Add("grpc_health", platformshutdown.SetHealthNotServing(health))

	return &App{
		cfg:         cfg,
		logger:      logger,
		httpServer:  httpServer,
		grpcServer:  grpcServer,
		health:      health,
		telegram:    tg,
		loop:        loop,
		poller:      confirmations,
		shutdownMgr: shutdownMgr,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Run запускает бота и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)
	defer a.cancel()

	a.logger.Info("Starting shop bot",
		zap.String("http_addr", a.httpServer.Addr),
		zap.String("grpc_health_addr", a.cfg.GRPCHealthAddr),
	)

	// Pending оплаты, оставшиеся с прошлого запуска
	if _, err := a.poller.Resume(a.ctx); err != nil {
		a.logger.Error("failed to resume pending transactions", zap.Error(err))
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			a.shutdownMgr.Trigger()
		}
	}()

	if a.cfg.GRPCHealthAddr != "" {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := platformgrpchealth.Serve(a.logger, a.grpcServer, a.cfg.GRPCHealthAddr); err != nil {
				a.logger.Error("gRPC health server error", zap.Error(err))
			}
		}()
	}

	if err := a.startUpdates(); err != nil {
		a.logger.Error("failed to start telegram updates", zap.Error(err))
		a.shutdownMgr.Shutdown()
		a.wg.Wait()
		return err
	}

	a.health.SetServing("")

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("Shop bot stopped")
	return nil
}

// startUpdates включает webhook или long polling и запускает цикл апдейтов
func (a *App) startUpdates() error {
	ctx, cancel := context.WithTimeout(a.ctx, connectTimeout)
	defer cancel()

	if a.cfg.TelegramMode == config.ModeWebhook {
		if err := a.telegram.SetWebhook(ctx, a.cfg.TelegramWebhookURL, a.cfg.TelegramWebhookSecret); err != nil {
			return err
		}
		a.logger.Info("Telegram webhook registered", zap.String("url", a.cfg.TelegramWebhookURL))

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			_ = a.loop.Run(a.ctx)
		}()
		return nil
	}

	// getUpdates не работает при активном webhook
	if err := a.telegram.DeleteWebhook(ctx); err != nil {
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.loop.Poll(a.ctx, a.telegram)
	}()
	return nil
}
