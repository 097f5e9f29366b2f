package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/gardenhub/backend/api/handler"
	"github.com/gardenhub/backend/internal/config"
	"github.com/gardenhub/backend/internal/infrastructure/mailer"
	"github.com/gardenhub/backend/internal/infrastructure/monitor"
	"github.com/gardenhub/backend/internal/infrastructure/outbox"
	pgInfra "github.com/gardenhub/backend/internal/infrastructure/postgres"
	redisInfra "github.com/gardenhub/backend/internal/infrastructure/redis"
	"github.com/gardenhub/backend/internal/middleware"
	"github.com/gardenhub/backend/internal/router"
	"github.com/gardenhub/backend/internal/services"
	"github.com/gardenhub/backend/internal/services/lifecycle"
	"github.com/gardenhub/backend/pkg/httpcontext"
	"github.com/gardenhub/backend/pkg/logger"
	"github.com/gardenhub/backend/repository/postgres"
	redisRepo "github.com/gardenhub/backend/repository/redis"
	accessUC "github.com/gardenhub/backend/usecase/access"
	authUC "github.com/gardenhub/backend/usecase/auth"
	gardensUC "github.com/gardenhub/backend/usecase/gardens"
	inviteUC "github.com/gardenhub/backend/usecase/invite"
	ordersUC "github.com/gardenhub/backend/usecase/orders"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "outbox")
	if err != nil {
		zapLogger.Fatal("failed to open mail outbox", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	gardenRepo := postgres.NewGardenRepository(pool)
	plotRepo := postgres.NewPlotRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	pickRepo := postgres.NewPickRepository(pool)
	cropRepo := postgres.NewCropRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)

	smtpSender := mailer.NewSender(cfg.SMTP)
	dispatcher := services.NewMailDispatcher(
		outboxStore,
		smtpSender,
		mon,
		zapLogger,
		services.DispatcherConfig{
			Interval:   cfg.Outbox.DrainInterval,
			BatchSize:  50,
			MaxRetries: cfg.Outbox.MaxRetry,
		},
	)
	dispatcher.Start()
	manager.Register("mail_dispatcher", func(ctx context.Context) error {
		dispatcher.Stop(ctx)
		return nil
	})

	accessEngine := accessUC.New(userRepo, gardenRepo, plotRepo, orderRepo, zapLogger)
	authUseCase := authUC.New(userRepo, sessionRepo, zapLogger)
	inviteUseCase := inviteUC.New(userRepo, dispatcher, cfg.Invite.ActivateBaseURL, zapLogger)
	gardensUseCase := gardensUC.New(gardenRepo, plotRepo, cropRepo, accessEngine, inviteUseCase, zapLogger)
	ordersUseCase := ordersUC.New(orderRepo, plotRepo, pickRepo, accessEngine, dispatcher, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, inviteUseCase, cfg.JWT, ctxAdapter, zapLogger),
		Account: apiHandler.NewAccountHandler(accessEngine, ctxAdapter, zapLogger),
		Garden:  apiHandler.NewGardenHandler(gardensUseCase, ctxAdapter, zapLogger),
		Plot:    apiHandler.NewPlotHandler(gardensUseCase, ctxAdapter, zapLogger),
		Order:   apiHandler.NewOrderHandler(ordersUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
