// Package persist synchronizes ledger snapshots to and from a key-value
// store. The adapter is pure plumbing: Writes turns a snapshot into KV
// writes, Load rehydrates a snapshot with per-key defaults, and nothing else
// reaches into the store.
package persist

import "context"

// Store keys. Absence of a key means "use the default".
const (
	KeyTransactions = "transactions"
	KeyTemplates    = "templates"
	KeyOpening      = "openingBalance"
	KeyStartDate    = "startDate"
	KeyEndDate      = "endDate"
	KeySaveProgress = "saveProgress"
)

// StateKeys are the five keys purged when the persistence toggle is turned
// off. The toggle's own key stays, recording the off position.
var StateKeys = []string{KeyTransactions, KeyTemplates, KeyOpening, KeyStartDate, KeyEndDate}

// KV is the persistence port. Get returns ok=false for absent keys.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Write is a single pending key-value write.
type Write struct {
	Key   string
	Value string
}
