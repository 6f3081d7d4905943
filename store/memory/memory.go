// Package memory provides in-memory store implementations for tests and
// development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/lease-engine/lease"
)

// =============================================================================
// CONTRACT STORE - In-memory implementation with optimistic versioning
// =============================================================================

type ContractStore struct {
	mu        sync.RWMutex
	contracts map[lease.ContractID]*lease.Contract
}

func NewContractStore() *ContractStore {
	return &ContractStore{contracts: make(map[lease.ContractID]*lease.Contract)}
}

func (s *ContractStore) Create(_ context.Context, c *lease.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contracts[c.ID]; exists {
		return &lease.IntegrityError{Field: "id", Reason: "contract already exists"}
	}

	c.Version = 1
	s.contracts[c.ID] = c.Clone()
	return nil
}

func (s *ContractStore) Load(_ context.Context, id lease.ContractID) (*lease.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return nil, &lease.NotFoundError{Entity: "contract", Ref: string(id)}
	}
	return c.Clone(), nil
}

func (s *ContractStore) List(_ context.Context) ([]*lease.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*lease.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		result = append(result, c.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Save applies a modified snapshot. The snapshot's version must match the
// stored one; on success the version is bumped.
func (s *ContractStore) Save(_ context.Context, c *lease.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.contracts[c.ID]
	if !ok {
		return &lease.NotFoundError{Entity: "contract", Ref: string(c.ID)}
	}
	if stored.Version != c.Version {
		return lease.ErrStaleWrite
	}

	c.Version++
	s.contracts[c.ID] = c.Clone()
	return nil
}

var _ lease.ContractStore = (*ContractStore)(nil)

// =============================================================================
// INDEX STORE
// =============================================================================

type IndexStore struct {
	mu    sync.RWMutex
	table lease.IndexTable
}

func NewIndexStore() *IndexStore {
	return &IndexStore{table: lease.NewIndexTable()}
}

func (s *IndexStore) Current(_ context.Context) (lease.IndexTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Snapshot copy so callers never observe later upserts.
	snapshot := lease.NewIndexTable()
	for year, months := range s.table.Years {
		for month, rate := range months {
			snapshot.Set(year, time.Month(month), rate)
		}
	}
	return snapshot, nil
}

func (s *IndexStore) SetRate(_ context.Context, year int, month time.Month, rate decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.Set(year, month, rate)
	return nil
}

var _ lease.IndexStore = (*IndexStore)(nil)

// =============================================================================
// AUDIT LOG
// =============================================================================

type AuditLog struct {
	mu      sync.RWMutex
	entries []lease.AuditEntry
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (l *AuditLog) Append(_ context.Context, entry lease.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *AuditLog) ByContract(_ context.Context, id lease.ContractID) ([]lease.AuditEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []lease.AuditEntry
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Contract == id {
			result = append(result, l.entries[i])
		}
	}
	return result, nil
}

var _ lease.AuditLog = (*AuditLog)(nil)
