package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/colegio/auth"
	"github.com/diewo77/colegio/internal/config"
	"github.com/diewo77/colegio/internal/db"
	"github.com/diewo77/colegio/internal/logging"
	"github.com/diewo77/colegio/internal/repository"
	"github.com/diewo77/colegio/internal/server"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
	migrationsDir   = flag.String("migrations", "migrations", "Directory with SQL migrations (MIGRATIONS=1)")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.App.LogLevel, cfg.App.Dev)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			log.WithError(err).Warn("error closing store")
		}
	}()

	if *migrateOnlyFlag {
		log.Info("migrations completed successfully")
		return
	}

	if *seedOnlyFlag || cfg.App.Seed {
		if err := db.Seed(ctx, repo, log); err != nil {
			log.WithError(err).Fatal("seeding failed")
		}
		if *seedOnlyFlag {
			return
		}
	}

	app := server.New(server.Deps{
		Repo:        repo,
		Log:         log,
		Auth:        auth.NewManager(cfg.Auth.AdminUser, cfg.Auth.AdminPasswordHash, cfg.Auth.SessionSecret),
		DefaultLang: cfg.App.DefaultLang,
	})
	if cfg.Auth.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is empty, login is disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Server.Port, "driver": cfg.Database.Driver, "dev": cfg.App.Dev}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	log.Info("server stopped gracefully")
}

// openRepository connects the configured store and prepares its schema.
func openRepository(ctx context.Context, cfg *config.Config, log *logrus.Logger) (repository.Repository, error) {
	if cfg.Database.Driver == config.DriverMongo {
		client, database, err := db.OpenMongo(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		repo := repository.NewMongo(client, database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = repo.Close(context.Background())
			return nil, err
		}
		return repo, nil
	}

	conn, err := db.OpenGorm(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.App.Migrations {
		err = db.RunSQLMigrations(*migrationsDir, cfg.Database.URL())
	} else {
		err = db.Migrate(conn)
	}
	repo := repository.NewGorm(conn)
	if err != nil {
		_ = repo.Close(context.Background())
		return nil, err
	}
	log.WithField("sql_migrations", cfg.App.Migrations).Info("schema up to date")
	return repo, nil
}
