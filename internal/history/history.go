// Package history records co2plot runs and the window summaries they produce.
package history

import (
	"sync"

	"github.com/huangsam/co2plot/internal/contract"
)

// HistoryStoreManager holds the HistoryStore shared by commands.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	store        contract.HistoryStore
}

var _ contract.HistoryManager = &HistoryStoreManager{} // Compile-time check

// NewHistoryStoreManager wraps an existing store, mostly for tests and the MCP server.
func NewHistoryStoreManager(store contract.HistoryStore) *HistoryStoreManager {
	return &HistoryStoreManager{store: store}
}

// GetHistoryStore returns the HistoryStore, or nil when history is not initialized.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.store
}
