package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devdesignersid/codetrack/internal/api"
	"github.com/devdesignersid/codetrack/internal/app/judge"
	"github.com/devdesignersid/codetrack/internal/app/service"
	"github.com/devdesignersid/codetrack/internal/domain/repository"
	"github.com/devdesignersid/codetrack/internal/platform/cache"
	"github.com/devdesignersid/codetrack/internal/platform/config"
	"github.com/devdesignersid/codetrack/internal/platform/database"
	"github.com/devdesignersid/codetrack/internal/platform/logger"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	config.Load()

	log := logger.New()
	defer log.Sync()
	log.Info("configuration loaded")

	// 2. Initialize Database
	database.Connect()
	defer database.Close()
	log.Info("database connected")

	// 3. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	log.Info("redis connected")

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)

	// 5. Initialize Sandbox & Services
	sandbox := judge.NewSandbox(config.AppConfig.SandboxTimeout, config.AppConfig.SandboxMemoryLimit)

	problemService := service.NewProblemService(problemRepo, cache.RDB, config.AppConfig.ProblemCacheTTL, log)
	executionService := service.NewExecutionService(problemService, submissionRepo, sandbox, log)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, log)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(executionService, problemService, submissionService, userRepo)

	server := &http.Server{
		Addr:    ":" + config.AppConfig.APIPort,
		Handler: router,
		// Execution requests hold the connection for the whole judge run, so
		// the write timeout sits well above the per-case sandbox budget.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server listen failed", zap.Error(err))
		}
	}()

	<-stop

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown failed", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}
