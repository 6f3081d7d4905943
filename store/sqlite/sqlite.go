/*
Package sqlite provides the SQLite-backed implementation of the lease
storage interfaces.

PURPOSE:
  Implements lease.ContractStore, lease.IndexStore and lease.AuditLog on
  SQLite. The same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

STORAGE MODEL:
  Contracts are persisted as JSON documents (the aggregate embeds its
  payments and incidents) alongside a few extracted columns for listing
  and filtering. Writes go through optimistic concurrency: every UPDATE
  is guarded by the version the caller loaded, and a mismatch surfaces
  as lease.ErrStaleWrite instead of silently overwriting a concurrent
  save.

KEY TABLES:
  contracts:    JSON document + version counter (optimistic locking)
  index_rates:  published price-index values, one row per year-month
  audit_log:    append-only record of dispatched engine events

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery improves.

USAGE:
  store, err := sqlite.New("./data/lease.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - lease/storage.go: Interface definitions
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/lease-engine/lease"
)

// Store implements all lease storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Contract documents with optimistic version counter
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		body_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_status
		ON contracts(status);
	CREATE INDEX IF NOT EXISTS idx_contracts_tenant
		ON contracts(tenant_id);

	-- Published price-index values
	CREATE TABLE IF NOT EXISTS index_rates (
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		rate TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (year, month)
	);

	-- Audit log (append-only: no UPDATE, no DELETE)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload_json TEXT,
		at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_contract
		ON audit_log(contract_id, at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CONTRACT STORE (lease.ContractStore interface)
// =============================================================================

func (s *Store) Create(ctx context.Context, c *lease.Contract) error {
	c.Version = 1

	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal contract: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contracts
		(id, property_id, tenant_id, status, start_date, end_date, body_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.PropertyID,
		c.TenantID,
		c.Status,
		c.StartDate.Format(time.RFC3339),
		c.EndDate.Format(time.RFC3339),
		string(body),
		c.Version,
		c.CreatedAt.UTC().Format(time.RFC3339),
		c.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id lease.ContractID) (*lease.Contract, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT body_json, version FROM contracts WHERE id = ?`, id)

	var body string
	var version int64
	if err := row.Scan(&body, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &lease.NotFoundError{Entity: "contract", Ref: string(id)}
		}
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}

	var c lease.Contract
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contract: %w", err)
	}
	// The version column is authoritative; the serialized document lags
	// one write behind it.
	c.Version = version
	return &c, nil
}

func (s *Store) List(ctx context.Context) ([]*lease.Contract, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body_json, version FROM contracts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var result []*lease.Contract
	for rows.Next() {
		var body string
		var version int64
		if err := rows.Scan(&body, &version); err != nil {
			return nil, err
		}
		var c lease.Contract
		if err := json.Unmarshal([]byte(body), &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contract: %w", err)
		}
		c.Version = version
		result = append(result, &c)
	}
	return result, rows.Err()
}

// Save persists a modified snapshot, guarded by the version the caller
// loaded. A concurrent save in between surfaces as lease.ErrStaleWrite.
func (s *Store) Save(ctx context.Context, c *lease.Contract) error {
	c.UpdatedAt = time.Now().UTC()

	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal contract: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE contracts
		SET status = ?, start_date = ?, end_date = ?, body_json = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		c.Status,
		c.StartDate.Format(time.RFC3339),
		c.EndDate.Format(time.RFC3339),
		string(body),
		c.UpdatedAt.Format(time.RFC3339),
		c.ID,
		c.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save contract: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the contract vanished or someone saved first.
		var exists int
		row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM contracts WHERE id = ?`, c.ID)
		if err := row.Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return &lease.NotFoundError{Entity: "contract", Ref: string(c.ID)}
		}
		return lease.ErrStaleWrite
	}

	c.Version++
	return nil
}

var _ lease.ContractStore = (*Store)(nil)

// =============================================================================
// INDEX STORE (lease.IndexStore interface)
// =============================================================================

func (s *Store) Current(ctx context.Context) (lease.IndexTable, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT year, month, rate FROM index_rates`)
	if err != nil {
		return lease.IndexTable{}, fmt.Errorf("failed to load index table: %w", err)
	}
	defer rows.Close()

	table := lease.NewIndexTable()
	for rows.Next() {
		var year, month int
		var rateStr string
		if err := rows.Scan(&year, &month, &rateStr); err != nil {
			return lease.IndexTable{}, err
		}
		rate, err := decimal.NewFromString(rateStr)
		if err != nil {
			return lease.IndexTable{}, &lease.IntegrityError{Field: "index_rates", Reason: "malformed rate " + rateStr}
		}
		table.Set(year, time.Month(month), rate)
	}
	return table, rows.Err()
}

func (s *Store) SetRate(ctx context.Context, year int, month time.Month, rate decimal.Decimal) error {
	if month < time.January || month > time.December {
		return &lease.IntegrityError{Field: "month", Reason: "must be 1-12"}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO index_rates (year, month, rate, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(year, month) DO UPDATE SET rate = excluded.rate, updated_at = excluded.updated_at`,
		year, int(month), rate.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert index rate: %w", err)
	}
	return nil
}

var _ lease.IndexStore = (*Store)(nil)

// =============================================================================
// AUDIT LOG (lease.AuditLog interface)
// =============================================================================

func (s *Store) Append(ctx context.Context, entry lease.AuditEntry) error {
	payload, _ := json.Marshal(entry.Payload)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, contract_id, kind, payload_json, at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Contract,
		entry.Kind,
		string(payload),
		entry.At.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *Store) ByContract(ctx context.Context, id lease.ContractID) ([]lease.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, kind, payload_json, at
		FROM audit_log WHERE contract_id = ? ORDER BY at DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var result []lease.AuditEntry
	for rows.Next() {
		var e lease.AuditEntry
		var payload, at string
		if err := rows.Scan(&e.ID, &e.Contract, &e.Kind, &payload, &at); err != nil {
			return nil, err
		}
		if payload != "" {
			_ = json.Unmarshal([]byte(payload), &e.Payload)
		}
		if t, err := time.Parse(time.RFC3339, at); err == nil {
			e.At = t
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

var _ lease.AuditLog = (*Store)(nil)
