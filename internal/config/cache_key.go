package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AdminSessionKey returns the cache key for the admin's active session.
func (r *CacheKeyStruct) AdminSessionKey(email string) string {
	return fmt.Sprintf("admin:%s:session", email)
}

// DashboardStatsKey returns the cache key for the computed dashboard statistics.
func (r *CacheKeyStruct) DashboardStatsKey() string {
	return "stats:dashboard"
}

// PerformanceAnalysisKey returns the cache key for the performance analysis block.
func (r *CacheKeyStruct) PerformanceAnalysisKey() string {
	return "stats:performance"
}

var CacheKey = NewCacheKeyStruct()
