package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gov-dx-sandbox/team-roster/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DatabaseType represents the type of database to use
type DatabaseType string

const (
	DatabaseTypeMongo    DatabaseType = "mongo"
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypePostgres DatabaseType = "postgres"

	defaultMongoURI      = "mongodb://localhost:27017/team-management"
	defaultMongoDatabase = "team-management"
)

// Config holds database connection configuration
type Config struct {
	// Database type (mongo, sqlite or postgres)
	Type DatabaseType

	// MongoDB configuration
	MongoURI      string
	MongoDatabase string

	// SQLite configuration
	DatabasePath string

	// PostgreSQL configuration
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// IsSQL reports whether the configuration targets a GORM backed database
func (c *Config) IsSQL() bool {
	return c.Type == DatabaseTypeSQLite || c.Type == DatabaseTypePostgres
}

// NewDatabaseConfig creates a new database configuration from environment variables.
// DB_TYPE selects the backend: mongo (default), postgres or sqlite.
func NewDatabaseConfig() *Config {
	dbTypeStr := strings.ToLower(config.GetEnvOrDefault("DB_TYPE", string(DatabaseTypeMongo)))

	var dbType DatabaseType
	switch dbTypeStr {
	case "mongo", "mongodb":
		dbType = DatabaseTypeMongo
	case "postgres", "postgresql":
		dbType = DatabaseTypePostgres
	case "sqlite":
		dbType = DatabaseTypeSQLite
	default:
		slog.Warn("Unknown DB_TYPE, defaulting to mongo", "db_type", dbTypeStr)
		dbType = DatabaseTypeMongo
	}

	cfg := &Config{
		Type:            dbType,
		ConnMaxLifetime: config.ParseDurationOrDefault("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: config.ParseDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
		ConnectTimeout:  config.ParseDurationOrDefault("DB_CONNECT_TIMEOUT", 10*time.Second),
	}

	switch dbType {
	case DatabaseTypeMongo:
		cfg.MongoURI = config.GetEnvOrDefault("MONGO_URI", config.GetEnvOrDefault("MONGODB_URI", defaultMongoURI))
		cfg.MongoDatabase = config.GetEnvOrDefault("MONGO_DATABASE", databaseFromURI(cfg.MongoURI))
		cfg.MaxOpenConns = config.ParseIntOrDefault("DB_MAX_OPEN_CONNS", 100)

		slog.Info("Database configuration (MongoDB)",
			"database", cfg.MongoDatabase,
			"max_pool_size", cfg.MaxOpenConns,
		)
	case DatabaseTypeSQLite:
		// SQLite serializes writes, a single connection avoids "database is locked"
		cfg.MaxOpenConns = config.ParseIntOrDefault("DB_MAX_OPEN_CONNS", 1)
		cfg.MaxIdleConns = config.ParseIntOrDefault("DB_MAX_IDLE_CONNS", 1)
		cfg.DatabasePath = config.GetEnvOrDefault("DB_PATH", "./data/roster.db")

		if cfg.DatabasePath != ":memory:" {
			dbDir := filepath.Dir(cfg.DatabasePath)
			if err := os.MkdirAll(dbDir, 0o755); err != nil {
				slog.Warn("Failed to create database directory", "path", dbDir, "error", err)
			}
		}

		slog.Info("Database configuration (SQLite)",
			"database_path", cfg.DatabasePath,
			"max_open_conns", cfg.MaxOpenConns,
		)
	case DatabaseTypePostgres:
		cfg.Host = config.GetEnvOrDefault("DB_HOST", "localhost")
		cfg.Port = config.GetEnvOrDefault("DB_PORT", "5432")
		cfg.Username = config.GetEnvOrDefault("DB_USERNAME", "postgres")
		cfg.Password = config.GetEnvOrDefault("DB_PASSWORD", "")
		cfg.Database = config.GetEnvOrDefault("DB_NAME", "team_management")
		cfg.SSLMode = config.GetEnvOrDefault("DB_SSLMODE", "disable")
		cfg.MaxOpenConns = config.ParseIntOrDefault("DB_MAX_OPEN_CONNS", 25)
		cfg.MaxIdleConns = config.ParseIntOrDefault("DB_MAX_IDLE_CONNS", 5)

		slog.Info("Database configuration (PostgreSQL)",
			"host", cfg.Host,
			"port", cfg.Port,
			"database", cfg.Database,
			"username", cfg.Username,
			"sslmode", cfg.SSLMode,
			"max_open_conns", cfg.MaxOpenConns,
		)
	}

	return cfg
}

// databaseFromURI returns the database named in a mongodb:// URI path
func databaseFromURI(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil || cs.Database == "" {
		return defaultMongoDatabase
	}
	return cs.Database
}

// PostgresDSN builds the PostgreSQL URL with escaped credentials
func (c *Config) PostgresDSN() string {
	dsnURL := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Database,
	}
	q := dsnURL.Query()
	q.Set("sslmode", c.SSLMode)
	dsnURL.RawQuery = q.Encode()
	return dsnURL.String()
}

// ConnectGormDB establishes a GORM connection to the database (SQLite or PostgreSQL)
func ConnectGormDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case DatabaseTypeSQLite:
		slog.Info("Attempting GORM SQLite database connection", "path", cfg.DatabasePath)
		dialector = sqlite.Open(cfg.DatabasePath)
	case DatabaseTypePostgres:
		slog.Info("Attempting GORM PostgreSQL database connection",
			"host", cfg.Host,
			"port", cfg.Port,
			"database", cfg.Database)
		dialector = postgres.Open(cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("database type %q is not supported by GORM", cfg.Type)
	}

	// TranslateError maps driver unique violations to gorm.ErrDuplicatedKey
	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM %s database connection: %w", cfg.Type, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("GORM database connection established successfully", "type", cfg.Type)
	return gormDB, nil
}

// ConnectMongo connects to MongoDB and verifies the deployment is reachable.
// The caller owns the returned client and must Disconnect it.
func ConnectMongo(ctx context.Context, cfg *Config) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetConnectTimeout(cfg.ConnectTimeout)
	if cfg.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxOpenConns))
	}

	slog.Info("Attempting MongoDB connection", "database", cfg.MongoDatabase)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	slog.Info("MongoDB connection established successfully", "database", cfg.MongoDatabase)
	return client, client.Database(cfg.MongoDatabase), nil
}
