package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/talowa-org/talowa-backend/internal/api"
	"github.com/talowa-org/talowa-backend/internal/repository"
	"github.com/talowa-org/talowa-backend/internal/service"
	"github.com/talowa-org/talowa-backend/pkg/auth"
	"github.com/talowa-org/talowa-backend/pkg/deeplink"
	"github.com/talowa-org/talowa-backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	var pending deeplink.PendingStore = deeplink.NewMemoryPendingStore()
	if cfg.Redis.Enabled {
		rdb, err := repository.NewRedisClient(repository.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			zapLogger.Fatal("Failed to initialize redis", zap.Error(err))
		}
		defer rdb.Close()
		pending = repository.NewPendingLinkStore(rdb)
	}

	roles := service.NewRoleTable(cfg.Roles)

	registrationService := service.NewRegistrationService(repo, pending)
	activationService := service.NewActivationService(repo, roles)
	linkService := service.NewLinkService(repo, pending)
	codeService := service.NewCodeService(repo)
	analyticsService := service.NewAnalyticsService(repo)

	serviceAuth := auth.NewServiceAuth(cfg.Auth.AdminToken, cfg.Auth.WebhookSecret)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, registrationService, linkService, analyticsService)
	api.NewLinkRoutes(a, linkService)
	api.NewPaymentRoutes(a, activationService, serviceAuth)
	api.NewAnalyticsRoutes(a, analyticsService, codeService, serviceAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
