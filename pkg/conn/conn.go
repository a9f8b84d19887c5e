// Package conn opens the gorm database handle backing the security
// master mirror. SQLite covers the single-binary default; postgres is
// for deployments sharing one mirror across hosts.
package conn

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresOption carries the postgres connection parameters. ConnString
// wins when set; otherwise a DSN is assembled from the parts.
type PostgresOption struct {
	ConnString string
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
	Config     *gorm.Config
}

// Client wraps an open gorm handle with its lifecycle.
type Client struct {
	db *gorm.DB
}

// NewSQLite opens (or creates) a SQLite database file.
func NewSQLite(path string, config *gorm.Config) (*Client, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(config))
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// NewPostgres opens a postgres connection pool.
func NewPostgres(option PostgresOption) (*Client, error) {
	db, err := gorm.Open(postgres.Open(option.dsn()), gormConfig(option.Config))
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// DB returns the underlying gorm handle.
func (c *Client) DB() *gorm.DB {
	if c == nil {
		return nil
	}
	return c.db
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig(config *gorm.Config) *gorm.Config {
	if config == nil {
		config = &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	}
	return config
}

func (opt PostgresOption) dsn() string {
	if opt.ConnString != "" {
		return opt.ConnString
	}

	parts := make([]string, 0, 6)
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+value)
		}
	}
	add("host", opt.Host)
	if opt.Port > 0 {
		parts = append(parts, fmt.Sprintf("port=%d", opt.Port))
	}
	add("user", opt.User)
	add("password", opt.Password)
	add("dbname", opt.Database)
	sslMode := opt.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	add("sslmode", sslMode)
	return strings.Join(parts, " ")
}
