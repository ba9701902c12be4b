package db

import (
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Storing cache keys in concurrent data structures so all keys of one
// entity type can be cleared together when the rule engine rewrites
// transactions in bulk.
var (
	Cache                *ristretto.Cache
	TransactionCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	AccountCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	RuleCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
}

// Transaction Cache Functions
func SetTransactionCache(cacheKey string, value interface{}) {
	TransactionCacheKeys.Lock()
	TransactionCacheKeys.m[cacheKey] = struct{}{}
	TransactionCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func ClearAllTransactionCaches() {
	TransactionCacheKeys.Lock()
	for key := range TransactionCacheKeys.m {
		Cache.Del(key)
	}
	TransactionCacheKeys.m = make(map[string]struct{})
	TransactionCacheKeys.Unlock()
}

// Account Cache Functions
func SetAccountCache(cacheKey string, value interface{}) {
	AccountCacheKeys.Lock()
	AccountCacheKeys.m[cacheKey] = struct{}{}
	AccountCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func ClearAllAccountCaches() {
	AccountCacheKeys.Lock()
	for key := range AccountCacheKeys.m {
		Cache.Del(key)
	}
	AccountCacheKeys.m = make(map[string]struct{})
	AccountCacheKeys.Unlock()
}

// Rule Cache Functions
func SetRuleCache(cacheKey string, value interface{}) {
	RuleCacheKeys.Lock()
	RuleCacheKeys.m[cacheKey] = struct{}{}
	RuleCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func ClearAllRuleCaches() {
	RuleCacheKeys.Lock()
	for key := range RuleCacheKeys.m {
		Cache.Del(key)
	}
	RuleCacheKeys.m = make(map[string]struct{})
	RuleCacheKeys.Unlock()
}
