package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"pts/internal/domain"
)

const schemaBuilds = `CREATE TABLE IF NOT EXISTS pts_builds (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	project VARCHAR(191) NOT NULL,
	build_id VARCHAR(191) NOT NULL,
	success BOOLEAN NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_pts_builds_project (project, id)
)`

const schemaDurations = `CREATE TABLE IF NOT EXISTS pts_unit_durations (
	build_pk BIGINT NOT NULL,
	suite_file VARCHAR(1024) NOT NULL,
	class_name VARCHAR(1024) NOT NULL,
	duration_ms BIGINT NOT NULL,
	INDEX idx_pts_unit_durations_build (build_pk)
)`

// MySQLProvider keeps per-build unit durations in MySQL so history survives
// across CI workspaces.
type MySQLProvider struct {
	db      *sql.DB
	project string
}

// OpenMySQL validates dsn, connects and ensures the schema exists.
func OpenMySQL(ctx context.Context, dsn, project string) (*MySQLProvider, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mysql: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}

	p := NewMySQLProvider(db, project)
	if err := p.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// NewMySQLProvider uses an existing connection pool.
func NewMySQLProvider(db *sql.DB, project string) *MySQLProvider {
	if project == "" {
		project = "default"
	}
	return &MySQLProvider{db: db, project: project}
}

// Migrate creates the tables if they do not exist.
func (p *MySQLProvider) Migrate(ctx context.Context) error {
	for _, stmt := range []string{schemaBuilds, schemaDurations} {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create history schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (p *MySQLProvider) Close() error {
	return p.db.Close()
}

// Previous implements Provider. It returns the most recent build of the
// project; an unsuccessful build is returned flagged as such.
func (p *MySQLProvider) Previous(ctx context.Context) (*domain.History, error) {
	var (
		pk      int64
		buildID string
		success bool
	)
	err := p.db.QueryRowContext(ctx,
		"SELECT id, build_id, success FROM pts_builds WHERE project = ? ORDER BY id DESC LIMIT 1",
		p.project,
	).Scan(&pk, &buildID, &success)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("query previous build: %w", err)
	}

	rows, err := p.db.QueryContext(ctx,
		"SELECT suite_file, class_name, duration_ms FROM pts_unit_durations WHERE build_pk = ?",
		pk,
	)
	if err != nil {
		return nil, fmt.Errorf("query durations of build %s: %w", buildID, err)
	}
	defer rows.Close()

	h := &domain.History{Source: "mysql:" + buildID, Success: success}
	for rows.Next() {
		var r domain.HistoryRecord
		if err := rows.Scan(&r.SuiteFile, &r.ClassName, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("scan duration: %w", err)
		}
		h.Records = append(h.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read durations: %w", err)
	}
	if len(h.Records) == 0 {
		return nil, ErrNoHistory
	}
	return h, nil
}

// Record stores the durations measured by a build.
func (p *MySQLProvider) Record(ctx context.Context, buildID string, success bool, records []domain.HistoryRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO pts_builds (project, build_id, success) VALUES (?, ?, ?)",
		p.project, buildID, success,
	)
	if err != nil {
		return fmt.Errorf("insert build %s: %w", buildID, err)
	}
	pk, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert build %s: %w", buildID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO pts_unit_durations (build_pk, suite_file, class_name, duration_ms) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("prepare durations: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, pk, r.SuiteFile, r.ClassName, r.DurationMs); err != nil {
			return fmt.Errorf("insert duration of %s: %w", r.ClassName, err)
		}
	}
	return tx.Commit()
}
