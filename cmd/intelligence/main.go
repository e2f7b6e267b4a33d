package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/UtkarshSingh-06/Taxigo/internal/demand"
	googlemaps "github.com/UtkarshSingh-06/Taxigo/internal/maps"
	"github.com/UtkarshSingh-06/Taxigo/internal/routing"
	"github.com/UtkarshSingh-06/Taxigo/internal/safety"
	"github.com/UtkarshSingh-06/Taxigo/pkg/config"
	"github.com/UtkarshSingh-06/Taxigo/pkg/database"
	"github.com/UtkarshSingh-06/Taxigo/pkg/eventbus"
	"github.com/UtkarshSingh-06/Taxigo/pkg/logger"
	"github.com/UtkarshSingh-06/Taxigo/pkg/middleware"
	redisclient "github.com/UtkarshSingh-06/Taxigo/pkg/redis"
)

const (
	serviceName = "intelligence-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting intelligence service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	redisClient, err := redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("Failed to connect to redis, prediction caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
	}

	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		bus, err = eventbus.Connect(cfg.NATS.URL, serviceName)
		if err != nil {
			logger.Warn("Failed to connect to NATS, events disabled", zap.Error(err))
		} else {
			defer bus.Close()
			logger.Info("Connected to NATS", zap.String("url", cfg.NATS.URL))
		}
	}

	var directions routing.DirectionsProvider
	if cfg.Maps.Enabled {
		provider, err := googlemaps.NewGoogleProvider(cfg.Maps.GoogleAPIKey)
		if err != nil {
			logger.Warn("Failed to initialize directions provider, using heuristic routing", zap.Error(err))
		} else {
			directions = provider
			logger.Info("Google directions provider enabled")
		}
	}

	demandService := demand.NewService(demand.NewRepository(db), nil, nil)
	if redisClient != nil {
		demandService.SetRedis(redisClient)
	}

	routingService := routing.NewService(routing.NewRepository(db), directions, nil)
	safetyService := safety.NewService(safety.NewRepository(db), nil)

	if bus != nil {
		demandService.SetEventBus(bus)
		routingService.SetEventBus(bus)
		safetyService.SetEventBus(bus)
	}

	demandHandler := demand.NewHandler(demandService)
	routingHandler := routing.NewHandler(routingService)
	safetyHandler := safety.NewHandler(safetyService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Metrics(serviceName))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": version,
		})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	if cfg.JWT.Secret != "" {
		api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	}
	demandHandler.RegisterRoutes(api)
	routingHandler.RegisterRoutes(api)
	safetyHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
