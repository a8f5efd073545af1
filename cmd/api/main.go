package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"taskboard-backend/internal/auth"
	"taskboard-backend/internal/router"
	taskrepo "taskboard-backend/internal/task/repo"
	userrepo "taskboard-backend/internal/user/repo"
	"taskboard-backend/pkg/database"
	"taskboard-backend/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting taskboard-backend")

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")
	defer sqlxDB.Close()

	// make sure the schema exists before serving
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := userrepo.NewUserRepo(sqlxDB).EnsureTable(bootCtx); err != nil {
		bootCancel()
		sugar.Fatalf("ensure users table: %v", err)
	}
	if err := taskrepo.NewTaskRepo(sqlxDB).EnsureTable(bootCtx); err != nil {
		bootCancel()
		sugar.Fatalf("ensure tasks table: %v", err)
	}
	bootCancel()

	tokens := auth.NewService(auth.ConfigFromEnv())

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}

	handler := router.RegisterRoutes(sugar, sqlxDB, tokens)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		sugar.Infow("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	// ping db once more
	if err := sqlDB.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
