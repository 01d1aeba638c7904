package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/bankdesk/bankdesk/internal/app"
	"github.com/bankdesk/bankdesk/internal/auth"
	"github.com/bankdesk/bankdesk/internal/banks"
	"github.com/bankdesk/bankdesk/internal/platform/cache"
	"github.com/bankdesk/bankdesk/internal/platform/db"
	"github.com/bankdesk/bankdesk/internal/rbac"
	"github.com/bankdesk/bankdesk/internal/users"
	"github.com/bankdesk/bankdesk/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Redis only backs the permission cache; the API stays up without it.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, permission cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewJWTService(cfg.AuthIssuer, cfg.AuthSecret, cfg.AuthTokenTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, auth.NewHasher(), tokens)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Tokens: tokens, Service: authService, Logger: logger}

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo, redisClient, logger)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	rolesHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	banksRepo := banks.NewRepository(dbpool)
	banksService := banks.NewService(banksRepo, logger)
	banksHandler := banks.NewHandler(logger, banksService)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("jobs client unavailable", slog.Any("error", err))
	} else {
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		banksService.OnApprove(func(ctx context.Context) {
			payload := jobs.BankPurgePayload{RequestedBy: "approve"}
			if _, err := jobsClient.EnqueueBankPurge(ctx, payload); err != nil {
				logger.Warn("enqueue bank purge", slog.Any("error", err))
			}
		})
	}

	usersRepo := users.NewRepository(dbpool)
	usersHandler := users.NewHandler(logger, users.NewService(usersRepo))

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		RBACMiddleware: rbacMiddleware,
		BanksHandler:   banksHandler,
		UsersHandler:   usersHandler,
		RolesHandler:   rolesHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
