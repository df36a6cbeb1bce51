package db

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/diewo77/colegio/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

// Migrate creates or updates the students and payments tables from the models.
func Migrate(conn *gorm.DB) error {
	for _, m := range []any{&models.Student{}, &models.Payment{}} {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"students", "payments"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations applies the versioned files of dir with golang-migrate.
// databaseURL is in golang-migrate form (postgres://... or sqlite3://...) and
// selects the dialect subdirectory of dir.
func RunSQLMigrations(dir, databaseURL string) error {
	m, err := migrate.New("file://"+filepath.Join(dir, dialectDir(databaseURL)), databaseURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func dialectDir(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "sqlite3://") {
		return "sqlite"
	}
	return "postgres"
}
