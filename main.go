// TodoWebService is a task-management REST API with per-user accounts.
//
// Users register and log in with an email and password; login returns a
// bearer token that authorizes the /tasks routes. Tasks are stored in MySQL
// and every answer is a {code, msg, data} JSON envelope. Requests are rate
// limited per client IP and Prometheus metrics are exposed at /metrics.
//
// The following endpoints are available:
//
//  1. GET / - Greeting
//  2. POST /register - Create an account
//  3. POST /login - Exchange credentials for a token
//  4. GET /tasks/list - List the caller's tasks with paging and filters
//  5. GET /tasks/detail - Get one of the caller's tasks by id
//  6. POST /tasks/create - Create a task
//  7. PUT /tasks/update - Update a task
//  8. DELETE /tasks/delete - Delete a task
//  9. GET /metrics - Display Prometheus metrics
//
// Configuration is read from the environment, seeded from .env when present.
// Apply the schema with go run ./cmd/migrate up before the first start.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"TodoWebService/auth"
	"TodoWebService/config"
	"TodoWebService/handlers"
	"TodoWebService/store"
	"TodoWebService/validation"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func main() {
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}
	log.SetLevel(level)
	if cfg.JWTSecret == config.DefaultSecret {
		log.Warn("JWT_SECRET is not set, using the built-in fallback secret")
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqldb, err := sql.Open("mysql", cfg.MySQL().FormatDSN())
	if err != nil {
		return err
	}
	defer sqldb.Close()
	sqldb.SetMaxOpenConns(25)
	sqldb.SetMaxIdleConns(25)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	db := store.New(sqldb, store.Options{
		Dialect: store.MySQL,
		Prefix:  cfg.DBPrefix,
		Timeout: cfg.DBTimeout,
		Hooks: []store.Hook{
			&store.LogHook{Logger: log, SlowQuery: time.Second},
			store.NewMetricsHook(reg),
		},
	})
	if err := db.Ping(ctx); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"host":     cfg.DBHost,
		"database": cfg.DBName,
	}).Info("connected to database")

	h := handlers.New(handlers.Config{
		Users:     store.NewUserStore(db),
		Tasks:     store.NewTaskStore(db),
		Validator: validation.New(),
		Tokens:    auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTLeeway),
		Logger:    log,
		Metrics:   handlers.NewMetrics(reg),
	})

	opts := handlers.RouterOptions{Gatherer: reg}
	if cfg.RateLimitRPS > 0 {
		opts.Limiter = handlers.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		opts.Limiter.StartJanitor(ctx, 2*time.Minute)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening on port " + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
