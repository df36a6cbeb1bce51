// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	App      AppConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// Store drivers accepted in DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// DatabaseConfig holds SQL connection settings.
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
}

// MongoConfig holds the document store settings used when Driver is mongo.
type MongoConfig struct {
	URI      string
	Database string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev         bool
	Migrations  bool
	Seed        bool
	LogLevel    string
	DefaultLang string
}

// AuthConfig holds the optional admin login. Empty PasswordHash disables it.
type AuthConfig struct {
	AdminUser         string
	AdminPasswordHash string
	SessionSecret     string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the connection string in URL form, as golang-migrate expects it.
func (d DatabaseConfig) URL() string {
	if d.Driver == DriverSQLite {
		return "sqlite3://" + d.SQLitePath
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Validate rejects unknown drivers.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMongo:
		return nil
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.Database.Driver)
	}
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", DriverPostgres),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "colegio"),
			Password:   getEnv("DB_PASSWORD", "colegio123"),
			DBName:     getEnv("DB_NAME", "colegio"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "colegio.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database: getEnv("MONGO_DB", "colegio"),
		},
		App: AppConfig{
			Dev:         getEnvBool("DEV", false),
			Migrations:  getEnvBool("MIGRATIONS", false),
			Seed:        getEnvBool("DB_SEED", false),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			DefaultLang: getEnv("DEFAULT_LANG", "es"),
		},
		Auth: AuthConfig{
			AdminUser:         getEnv("ADMIN_USER", "admin"),
			AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			SessionSecret:     os.Getenv("SESSION_SECRET"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
