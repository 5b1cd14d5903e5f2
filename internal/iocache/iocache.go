// Package iocache persists platform lookups and analysis results across runs.
package iocache

import (
	"sync"

	"github.com/huangsam/repostats/internal/contract"
)

// CacheStoreManager manages the platform cache and the analysis store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	platform     contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetPlatformStore returns the CacheStore holding platform metrics.
func (mgr *CacheStoreManager) GetPlatformStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.platform
}

// GetAnalysisStore returns the analysis AnalysisStore.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
