/*
storage.go - Persistence boundary interfaces

PURPOSE:
  The engine performs no I/O: it consumes and produces contract
  snapshots. These interfaces define what the hosting layer must supply.

CONCURRENCY CONTRACT:
  ContractStore.Save implements optimistic concurrency: the caller's
  snapshot carries the version it was loaded at, and Save fails with
  ErrStaleWrite if the stored version has moved. There is no locking in
  the engine itself.

IMPLEMENTATIONS:
  - store/memory: in-memory, for tests and development
  - store/sqlite: SQLite-backed, for production

SEE ALSO:
  - events.go: AuditEntry payload shape
  - index.go: IndexProvider (read side of IndexStore)
*/
package lease

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONTRACT STORE
// =============================================================================

// ContractStore persists contract snapshots (payments and incidents are
// embedded in the aggregate).
type ContractStore interface {
	// Create persists a new contract at version 1.
	Create(ctx context.Context, c *Contract) error

	// Load returns a snapshot of the contract, or ErrNotFound.
	Load(ctx context.Context, id ContractID) (*Contract, error)

	// List returns snapshots of all contracts, newest first.
	List(ctx context.Context) ([]*Contract, error)

	// Save persists a modified snapshot. Fails with ErrStaleWrite when
	// the stored version differs from the snapshot's loaded version.
	// On success the snapshot's version is bumped.
	Save(ctx context.Context, c *Contract) error
}

// =============================================================================
// INDEX STORE
// =============================================================================

// IndexStore is the writable side of the index table: the data-entry
// boundary upserts published rates, the engine only ever reads snapshots
// through IndexProvider.
type IndexStore interface {
	IndexProvider

	// SetRate upserts the published rate for a month.
	SetRate(ctx context.Context, year int, month time.Month, rate decimal.Decimal) error
}

// =============================================================================
// AUDIT LOG
// =============================================================================

// AuditEntry is a persisted engine event. Append-only.
type AuditEntry struct {
	ID       string
	At       time.Time
	Contract ContractID
	Kind     EventKind
	Payload  map[string]any
}

// AuditLog records dispatched engine events.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error

	// ByContract returns entries for a contract, newest first.
	ByContract(ctx context.Context, id ContractID) ([]AuditEntry, error)
}
