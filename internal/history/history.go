// Package history persists validation runs and their result rows.
package history

import (
	"sync"

	"github.com/huangsam/fm301check/internal/contract"
)

// StoreManager holds the run store of the process.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

var _ contract.HistoryManager = &StoreManager{} // Compile-time check

// GetRunStore returns the run store, or nil when history is not initialized.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
