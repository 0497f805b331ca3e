// Package sqlite implements domain.Repository on top of modernc.org/
// sqlite, the pure-Go driver. It is the durable counterpart to
// internal/repository/memory; schema is created on Open so the server
// runs against a fresh file with no external migration step.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS trade_groups (
	id             TEXT PRIMARY KEY,
	master_account TEXT NOT NULL UNIQUE,
	enabled        INTEGER NOT NULL DEFAULT 0,
	symbol_prefix  TEXT NOT NULL DEFAULT '',
	symbol_suffix  TEXT NOT NULL DEFAULT '',
	config_version INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trade_group_members (
	id             TEXT PRIMARY KEY,
	group_id       TEXT NOT NULL REFERENCES trade_groups(id),
	master_account TEXT NOT NULL,
	slave_account  TEXT NOT NULL,
	enabled        INTEGER NOT NULL DEFAULT 0,
	stored_status  INTEGER NOT NULL DEFAULT 0,
	settings_json  TEXT NOT NULL DEFAULT '{}',
	UNIQUE(master_account, slave_account)
);

CREATE TABLE IF NOT EXISTS global_log_settings (
	id                  INTEGER PRIMARY KEY CHECK (id = 1),
	enabled             INTEGER NOT NULL DEFAULT 0,
	endpoint            TEXT NOT NULL DEFAULT '',
	batch_size          INTEGER NOT NULL DEFAULT 0,
	flush_interval_secs INTEGER NOT NULL DEFAULT 0,
	log_level           TEXT NOT NULL DEFAULT ''
);
`

const memberColumns = `id, group_id, master_account, slave_account, enabled, stored_status, settings_json`

// Repository is a sqlite-backed domain.Repository.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates the schema (if absent) at path and returns a Repository
// over it, using WAL mode for concurrent reads alongside the single
// writer the relay's handlers funnel through.
func Open(path string, log zerolog.Logger) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	db.SetMaxOpenConns(8)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return &Repository{db: db, log: log.With().Str("component", "repository.sqlite").Logger()}, nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error { return r.db.Close() }

// UpsertGroup writes a TradeGroup row, for admin-surface writes and test
// seeding (trade-group CRUD itself is out of scope, spec.md §1).
func (r *Repository) UpsertGroup(ctx context.Context, g domain.TradeGroup) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trade_groups (id, master_account, enabled, symbol_prefix, symbol_suffix, config_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			master_account = excluded.master_account, enabled = excluded.enabled,
			symbol_prefix = excluded.symbol_prefix, symbol_suffix = excluded.symbol_suffix,
			config_version = excluded.config_version`,
		g.ID, string(g.MasterAccount), boolToInt(g.Enabled), g.SymbolPrefix, g.SymbolSuffix, g.ConfigVersion)
	if err != nil {
		return fmt.Errorf("sqlite: upsert group: %w", err)
	}
	return nil
}

// UpsertMember writes a TradeGroupMember row, settings included.
func (r *Repository) UpsertMember(ctx context.Context, m domain.TradeGroupMember) error {
	settingsJSON, err := encodeSettings(m.Settings)
	if err != nil {
		return fmt.Errorf("sqlite: encode settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO trade_group_members (id, group_id, master_account, slave_account, enabled, stored_status, settings_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			group_id = excluded.group_id, master_account = excluded.master_account,
			slave_account = excluded.slave_account, enabled = excluded.enabled,
			stored_status = excluded.stored_status, settings_json = excluded.settings_json`,
		m.ID, m.GroupID, string(m.MasterAccount), string(m.SlaveAccount), boolToInt(m.Enabled), int(m.StoredStatus), settingsJSON)
	if err != nil {
		return fmt.Errorf("sqlite: upsert member: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *Repository) GetTradeGroupByMaster(ctx context.Context, masterAccount domain.Account) (*domain.TradeGroup, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, master_account, enabled, symbol_prefix, symbol_suffix, config_version
		 FROM trade_groups WHERE master_account = ?`, string(masterAccount))

	var g domain.TradeGroup
	var masterAcc string
	var enabled int
	if err := row.Scan(&g.ID, &masterAcc, &enabled, &g.SymbolPrefix, &g.SymbolSuffix, &g.ConfigVersion); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get trade group: %w", err)
	}
	g.MasterAccount = domain.Account(masterAcc)
	g.Enabled = enabled != 0
	return &g, nil
}

func (r *Repository) GetMember(ctx context.Context, masterAccount, slaveAccount domain.Account) (*domain.TradeGroupMember, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM trade_group_members WHERE master_account = ? AND slave_account = ?`,
		string(masterAccount), string(slaveAccount))
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get member: %w", err)
	}
	return m, nil
}

func (r *Repository) MembersOfGroup(ctx context.Context, groupID string) ([]domain.TradeGroupMember, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM trade_group_members WHERE group_id = ?`, groupID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: members of group: %w", err)
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *Repository) MembersForSlave(ctx context.Context, slaveAccount domain.Account) ([]domain.TradeGroupMember, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM trade_group_members WHERE slave_account = ?`, string(slaveAccount))
	if err != nil {
		return nil, fmt.Errorf("sqlite: members for slave: %w", err)
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *Repository) GroupsForSlave(ctx context.Context, slaveAccount domain.Account) ([]domain.TradeGroup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT g.id, g.master_account, g.enabled, g.symbol_prefix, g.symbol_suffix, g.config_version
		FROM trade_groups g
		JOIN trade_group_members m ON m.group_id = g.id
		WHERE m.slave_account = ?`, string(slaveAccount))
	if err != nil {
		return nil, fmt.Errorf("sqlite: groups for slave: %w", err)
	}
	defer rows.Close()

	var out []domain.TradeGroup
	for rows.Next() {
		var g domain.TradeGroup
		var masterAcc string
		var enabled int
		if err := rows.Scan(&g.ID, &masterAcc, &enabled, &g.SymbolPrefix, &g.SymbolSuffix, &g.ConfigVersion); err != nil {
			return nil, fmt.Errorf("sqlite: scan group: %w", err)
		}
		g.MasterAccount = domain.Account(masterAcc)
		g.Enabled = enabled != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateMemberStatus(ctx context.Context, memberID string, status domain.RuntimeStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE trade_group_members SET stored_status = ? WHERE id = ?`, int(status), memberID)
	if err != nil {
		return fmt.Errorf("sqlite: update member status: %w", err)
	}
	return nil
}

func (r *Repository) GlobalLogSettings(ctx context.Context) (*domain.GlobalLogSettings, error) {
	row := r.db.QueryRowContext(ctx, `SELECT enabled, endpoint, batch_size, flush_interval_secs, log_level FROM global_log_settings WHERE id = 1`)

	var s domain.GlobalLogSettings
	var enabled int
	if err := row.Scan(&enabled, &s.Endpoint, &s.BatchSize, &s.FlushIntervalSecs, &s.LogLevel); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: global log settings: %w", err)
	}
	s.Enabled = enabled != 0
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(row rowScanner) (*domain.TradeGroupMember, error) {
	var m domain.TradeGroupMember
	var masterAcc, slaveAcc string
	var enabled, status int
	var settingsJSON string
	if err := row.Scan(&m.ID, &m.GroupID, &masterAcc, &slaveAcc, &enabled, &status, &settingsJSON); err != nil {
		return nil, err
	}
	m.MasterAccount = domain.Account(masterAcc)
	m.SlaveAccount = domain.Account(slaveAcc)
	m.Enabled = enabled != 0
	m.StoredStatus = domain.RuntimeStatus(status)
	settings, err := decodeSettings(settingsJSON)
	if err != nil {
		return nil, fmt.Errorf("sqlite: decode settings: %w", err)
	}
	m.Settings = settings
	return &m, nil
}

func scanMembers(rows *sql.Rows) ([]domain.TradeGroupMember, error) {
	var out []domain.TradeGroupMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan member: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
