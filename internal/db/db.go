// Package db opens the configured store, applies migrations and seeds demo data.
package db

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/colegio/internal/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

var retryDelay = 2 * time.Second

var passwordRe = regexp.MustCompile(`(password=)([^\s]+)`)

// MaskDSN hides the password of a key=value DSN for logging.
func MaskDSN(dsn string) string {
	return passwordRe.ReplaceAllString(dsn, `${1}***`)
}

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := cfg.DSN()
		return postgres.Open(dsn), MaskDSN(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), cfg.SQLitePath, nil
	default:
		return nil, "", fmt.Errorf("driver %q is not a SQL driver", cfg.Driver)
	}
}

// OpenGorm connects to PostgreSQL or SQLite, retrying while the server starts.
// The gorm logger is silent unless cfg.Debug is set.
func OpenGorm(ctx context.Context, cfg config.DatabaseConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	dial, target, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var conn *gorm.DB
	for i := 1; i <= connectAttempts; i++ {
		conn, err = gorm.Open(dial, gcfg)
		if err == nil {
			err = conn.WithContext(ctx).Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		log.WithFields(logrus.Fields{"attempt": i, "error": err}).Warn("database not ready, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}
	log.WithFields(logrus.Fields{"driver": cfg.Driver, "dsn": target}).Info("database connected")
	return conn, nil
}

// OpenMongo connects to the document store and verifies it with a ping.
func OpenMongo(ctx context.Context, cfg config.MongoConfig, log logrus.FieldLogger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.WithField("database", cfg.Database).Info("mongo connected")
	return client, client.Database(cfg.Database), nil
}
