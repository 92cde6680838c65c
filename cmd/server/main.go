// Copyright 2026 The MQConsole Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/mqconsole/mqconsole/internal/audit"
	"github.com/mqconsole/mqconsole/internal/config"
	"github.com/mqconsole/mqconsole/internal/federation"
	"github.com/mqconsole/mqconsole/internal/identity"
	"github.com/mqconsole/mqconsole/internal/observability/logger"
	"github.com/mqconsole/mqconsole/internal/observability/metrics"
	"github.com/mqconsole/mqconsole/internal/observability/tracing"
	"github.com/mqconsole/mqconsole/internal/rbac"
	"github.com/mqconsole/mqconsole/internal/store/postgres"
	"github.com/mqconsole/mqconsole/internal/store/redis"
	"github.com/mqconsole/mqconsole/internal/token"
	transportHTTP "github.com/mqconsole/mqconsole/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Setup(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting mqconsole backend")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	loginCounter := newLoginCounter(meter)

	// Initialize database
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize session-token store
	redisClient, err := redis.New(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		slog.Error("failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.Info("connected to redis")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	bindingRepo := postgres.NewRoleBindingRepository(db)
	tokenRepo := redis.NewTokenRepository(redisClient)

	// Initialize services
	auditLogger := audit.NewSlogLogger()

	identityService := identity.NewService(userRepo, auditLogger)
	rbacService := rbac.NewService(userRepo, roleRepo, bindingRepo, auditLogger)

	tokenService, err := token.NewService(tokenRepo, cfg.Token.Secret)
	if err != nil {
		slog.Error("failed to initialize token service", logger.Error(err))
		os.Exit(1)
	}

	githubProvider := federation.NewGitHubProvider(federation.GitHubConfig{
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
		LoginHost:    cfg.GitHub.LoginHost,
		RedirectHost: cfg.GitHub.RedirectHost,
		APIHost:      cfg.GitHub.APIHost,
	})
	federationService := federation.NewService(
		githubProvider,
		userRepo,
		roleRepo,
		bindingRepo,
		tokenService,
		cfg.GitHub.AssignedRole,
		auditLogger,
	)

	// Rate limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		identityService,
		rbacService,
		federationService,
		auditLogger,
		transportHTTP.LoginConfig{
			ProviderLoginURL: githubProvider.LoginURL(),
			CookieSecure:     strings.HasPrefix(cfg.GitHub.RedirectHost, "https://"),
		},
		loginCounter,
	)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

// newLoginCounter creates the login counter, or returns nil when the meter
// is unavailable. The handler treats a nil counter as metrics disabled.
func newLoginCounter(meter *metrics.Meter) metric.Int64Counter {
	if meter == nil {
		return nil
	}
	counter, err := meter.CreateCounter("mqconsole_logins_total", "Third-party login attempts by mode and outcome")
	if err != nil {
		slog.Error("failed to create login counter", logger.Error(err))
		return nil
	}
	return counter
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
