package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/motorides/dispatch/internal/api/handlers"
	"github.com/motorides/dispatch/internal/api/routes"
	"github.com/motorides/dispatch/internal/config"
	"github.com/motorides/dispatch/internal/events"
	"github.com/motorides/dispatch/internal/observability"
	"github.com/motorides/dispatch/internal/service/chat"
	"github.com/motorides/dispatch/internal/service/dispatch"
	"github.com/motorides/dispatch/internal/service/pricing"
	"github.com/motorides/dispatch/internal/storage/postgres"
	"github.com/motorides/dispatch/pkg/cache"
	"github.com/motorides/dispatch/pkg/database"
	"github.com/motorides/dispatch/pkg/logger"
	"github.com/motorides/dispatch/pkg/monitoring"
	"github.com/motorides/dispatch/pkg/token"
	"github.com/motorides/dispatch/pkg/websocket"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting MotoRides dispatch backend",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
	)

	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
		nrApp, _ = monitoring.New(monitoring.Config{})
	}
	defer nrApp.Shutdown(10 * time.Second)

	postgresDB, err := database.NewPostgresDB(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConns,
		MaxIdle:  cfg.Database.MaxIdle,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer postgresDB.Close()

	appLogger.Info("Connected to PostgreSQL successfully")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cache.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			MaxRetries:  cfg.Redis.MaxRetries,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.DialTimeout,
			ReadTimeout: cfg.Redis.ReadTimeout,
		})
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
		}
		defer cache.Close(redisClient)
		appLogger.Info("Connected to Redis successfully")
	}

	wsHub := websocket.NewHub(appLogger)
	wsHub.OnConnectionCountChange(func(n int) {
		observability.SubscribersConnected.Set(float64(n))
	})
	go wsHub.Run()

	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, appLogger)
	defer producer.Close()

	rideStore := postgres.NewRideStore(postgresDB)
	directory := postgres.NewDirectory(postgresDB)
	views := cache.NewRideViewCache(redisClient, cfg.Cache.TTLRideViews)

	pricingSvc := pricing.NewService(pricing.Config{
		BaseFare: map[string]float64{
			"standard": cfg.Pricing.StandardFare,
			"delivery": cfg.Pricing.DeliveryFare,
		},
		DefaultFare: cfg.Pricing.StandardFare,
	})

	dispatchSvc := dispatch.NewService(rideStore, directory, wsHub, pricingSvc, producer, views, appLogger)
	chatSvc := chat.NewService(rideStore, appLogger)
	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	h := handlers.NewHandlers(dispatchSvc, chatSvc, directory, tokens, wsHub, nrApp, appLogger, handlers.AdminAccount{
		ID:       cfg.Admin.ID,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	var nrApplication *monitoring.NewRelicApp
	if nrApp.IsEnabled() {
		nrApplication = nrApp
	}
	if nrApplication != nil {
		routes.SetupRoutes(router, h, tokens, nrApplication.Application)
	} else {
		routes.SetupRoutes(router, h, tokens, nil)
	}

	appLogger.Info("Routes configured successfully")

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}
