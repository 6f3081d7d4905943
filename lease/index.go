/*
index.go - Published price-index table

PURPOSE:
  IndexTable is a two-level lookup of periodic rate values: year -> month
  (1-12) -> percent rate (4.5 means +4.5%). The engine consumes snapshots
  of it; fetching and data entry live behind IndexProvider.

MISSING ENTRIES:
  A month with no published value contributes a factor of 1 (zero
  inflation). This is a deliberate policy: gaps in the table silently
  leave the rent unchanged for that month rather than failing the
  calculation. An empty table behaves identically.
*/
package lease

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// IndexTable maps year -> month (1-12) -> rate in percent.
type IndexTable struct {
	Years map[int]map[int]decimal.Decimal
}

func NewIndexTable() IndexTable {
	return IndexTable{Years: make(map[int]map[int]decimal.Decimal)}
}

// Rate returns the published rate for a month, or zero when absent.
func (t IndexTable) Rate(year int, month time.Month) decimal.Decimal {
	if t.Years == nil {
		return decimal.Zero
	}
	return t.Years[year][int(month)]
}

// Set records a rate. Used by providers and tests.
func (t IndexTable) Set(year int, month time.Month, rate decimal.Decimal) {
	if t.Years[year] == nil {
		t.Years[year] = make(map[int]decimal.Decimal)
	}
	t.Years[year][int(month)] = rate
}

// MonthlyFactor returns 1 + rate/100 for a month. Missing months yield 1.
func (t IndexTable) MonthlyFactor(year int, month time.Month) decimal.Decimal {
	return decimal.NewFromInt(1).Add(t.Rate(year, month).Div(oneHundred))
}

// IndexProvider supplies the current published table. The engine treats
// the returned snapshot as immutable.
type IndexProvider interface {
	Current(ctx context.Context) (IndexTable, error)
}
