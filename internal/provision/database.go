// Package provision prepares isolated resources for each lane before it runs.
package provision

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/go-sql-driver/mysql"

	"pts/internal/config"
)

var databaseNamePattern = regexp.MustCompile(`^[A-Za-z0-9_$]{1,64}$`)

// DatabaseManager manages per-lane test databases
type DatabaseManager struct {
	config *config.Config
}

// NewDatabaseManager creates a new DatabaseManager
func NewDatabaseManager(cfg *config.Config) *DatabaseManager {
	return &DatabaseManager{config: cfg}
}

// serverDSN strips the database from the configured DSN so the connection
// can create databases.
func (dm *DatabaseManager) serverDSN() (*mysql.Config, error) {
	if dm.config.MySQLDSN == "" {
		return nil, fmt.Errorf("no database server configured: set PTS_MYSQL_DSN or DB_HOST")
	}
	cfg, err := mysql.ParseDSN(dm.config.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.DBName = ""
	return cfg, nil
}

// EnsureDatabases creates the databases of lanes 0..lanes-1 that do not
// exist yet and returns how many were created.
func (dm *DatabaseManager) EnsureDatabases(ctx context.Context, lanes int) (int, error) {
	cfg, err := dm.serverDSN()
	if err != nil {
		return 0, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to configure mysql: %w", err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to ping database server: %w", err)
	}

	created := 0
	for lane := 0; lane < lanes; lane++ {
		name := dm.config.GetDatabaseName(lane + 1)
		exists, err := dm.databaseExists(ctx, db, name)
		if err != nil {
			return created, fmt.Errorf("failed to check database %s: %w", name, err)
		}
		if exists {
			continue
		}
		if err := dm.createDatabase(ctx, db, name); err != nil {
			return created, fmt.Errorf("failed to create database %s: %w", name, err)
		}
		created++
	}
	return created, nil
}

// databaseExists checks if a database exists
func (dm *DatabaseManager) databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// createDatabase creates a new database
func (dm *DatabaseManager) createDatabase(ctx context.Context, db *sql.DB, name string) error {
	// Identifiers cannot be bound as parameters
	if !isValidDatabaseName(name) {
		return fmt.Errorf("invalid database name: %s", name)
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name))
	return err
}

func isValidDatabaseName(name string) bool {
	return databaseNamePattern.MatchString(name)
}
