package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
)

// currentCacheVersion defines the version of the cached platform payload
const currentCacheVersion = 1

// platformMetrics returns the platform metrics of a repository, served from
// the cache store while the entry is fresh.
func (a *Analyzer) platformMetrics(ctx context.Context, cfg *contract.Config, ref schema.RepoRef) (schema.PlatformMetrics, error) {
	store := a.platformStore()
	if store == nil {
		// Fallback to direct request
		return a.platform.GetRepoMetrics(ctx, ref)
	}

	key := platformCacheKey(ref)
	if result, ok := a.checkCacheHit(store, key, cfg.PlatformCacheTTL); ok {
		return result, nil
	}
	return a.fetchAndStore(ctx, store, ref, key)
}

func (a *Analyzer) platformStore() contract.CacheStore {
	if a.mgr == nil {
		return nil
	}
	return a.mgr.GetPlatformStore()
}

// checkCacheHit attempts to retrieve and validate a cached result
func (a *Analyzer) checkCacheHit(store contract.CacheStore, key string, ttl time.Duration) (schema.PlatformMetrics, bool) {
	var result schema.PlatformMetrics
	data, version, ts, err := store.Get(key)
	if err != nil {
		return result, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || a.now().Sub(time.Unix(ts, 0)) > ttl {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}

// fetchAndStore requests the metrics and stores them in cache
func (a *Analyzer) fetchAndStore(ctx context.Context, store contract.CacheStore, ref schema.RepoRef, key string) (schema.PlatformMetrics, error) {
	result, err := a.platform.GetRepoMetrics(ctx, ref)
	if err != nil {
		return result, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, a.now().Unix()); err != nil {
			contract.LogWarn("Failed to cache platform metrics", err)
		}
	}
	return result, nil
}

// platformCacheKey identifies a repository independent of URL casing
func platformCacheKey(ref schema.RepoRef) string {
	return "platform:v1:" + strings.ToLower(ref.String())
}
