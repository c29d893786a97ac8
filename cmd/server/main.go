package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"flowspace/docs"
	"flowspace/internal/auth"
	"flowspace/internal/cache"
	"flowspace/internal/config"
	"flowspace/internal/db"
	"flowspace/internal/handler"
	"flowspace/internal/logger"
	"flowspace/internal/metrics"
	"flowspace/internal/repository"
	"flowspace/internal/router"
	"flowspace/internal/service"
)

// @title FlowSpace API
// @version 1.0
// @description Project management API with Kanban boards, project membership, reports, and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logger.Setup(cfg.LogLevel)

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("database handle: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.WithError(err).Warn("redis unavailable, continuing without cache")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(reg)

	store := repository.NewStore(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpire)

	// Initialize services
	authService := service.NewAuthService(store.Users(), jwtService)
	userService := service.NewUserService(store.Users(), cacheClient)
	dashboardService := service.NewDashboardService(store, cacheClient)
	projectService := service.NewProjectService(store, cacheClient, recorder)
	memberService := service.NewMemberService(store, recorder)
	taskService := service.NewTaskService(store, cacheClient, recorder)
	reportService := service.NewReportService(store, recorder)

	e := echo.New()
	router.Register(e, router.Options{
		Config:   cfg,
		JWT:      jwtService,
		Logger:   log,
		Recorder: recorder,
		Gatherer: reg,
	}, router.Handlers{
		Health: handler.NewHealthHandler(
			map[string]handler.HealthCheck{"database": sqlDB.PingContext},
			map[string]handler.HealthCheck{"redis": cacheClient.Ping},
		),
		Auth:    handler.NewAuthHandler(authService, userService),
		User:    handler.NewUserHandler(userService, dashboardService),
		Project: handler.NewProjectHandler(projectService),
		Member:  handler.NewMemberHandler(memberService),
		Task:    handler.NewTaskHandler(taskService),
		Report:  handler.NewReportHandler(reportService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Infof("Swagger documentation available at: %s", swaggerURL(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.AppEnv, "db": cfg.DBDriver}).Info("FlowSpace API starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if err := cacheClient.Close(); err != nil {
		log.WithError(err).Warn("redis close")
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("database close")
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
