package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SyncStatsCollector aggregates catalog synchronization outcomes per scope.
// It backs the catalog stats endpoint; Prometheus counters cover the
// monitoring side separately.
type SyncStatsCollector struct {
	stats      map[string]*ScopeSyncStats
	statsMutex sync.RWMutex

	global      *GlobalSyncStats
	globalMutex sync.RWMutex

	retentionDuration time.Duration
	cleanupInterval   time.Duration
}

// ScopeSyncStats holds sync statistics for one catalog scope
type ScopeSyncStats struct {
	ScopeKey        string
	DataSourceID    string
	TotalSyncs      int64
	SuccessfulSyncs int64
	FailedSyncs     int64
	TotalDurationNs int64
	MinDurationNs   int64
	MaxDurationNs   int64
	AvgDurationNs   int64
	TablesCached    int64
	LastSyncTime    time.Time
	LastError       string
	LastErrorTime   time.Time
	SyncsByHour     map[int64]int64
}

// GlobalSyncStats holds service-wide sync statistics
type GlobalSyncStats struct {
	TotalSyncs      int64
	SuccessfulSyncs int64
	FailedSyncs     int64
	TotalDurationNs int64
	TablesCached    int64
	SyncsByScope    map[string]int64
	SyncsByHour     map[int64]int64
	StartTime       time.Time
}

// SyncOutcome captures one completed or failed synchronization
type SyncOutcome struct {
	ScopeKey     string
	DataSourceID string
	Success      bool
	Duration     time.Duration
	TablesCached int64
	Error        string
	Timestamp    time.Time
}

// NewSyncStatsCollector creates a new sync stats collector
func NewSyncStatsCollector(retention time.Duration) *SyncStatsCollector {
	return &SyncStatsCollector{
		stats:             make(map[string]*ScopeSyncStats),
		retentionDuration: retention,
		cleanupInterval:   1 * time.Hour,
		global: &GlobalSyncStats{
			SyncsByScope: make(map[string]int64),
			SyncsByHour:  make(map[int64]int64),
			StartTime:    time.Now(),
		},
	}
}

// RecordSync records the outcome of one synchronization attempt
func (sc *SyncStatsCollector) RecordSync(outcome *SyncOutcome) {
	if outcome == nil {
		return
	}
	durationNs := outcome.Duration.Nanoseconds()

	sc.statsMutex.Lock()
	stats, exists := sc.stats[outcome.ScopeKey]
	if !exists {
		stats = &ScopeSyncStats{
			ScopeKey:      outcome.ScopeKey,
			DataSourceID:  outcome.DataSourceID,
			MinDurationNs: durationNs,
			MaxDurationNs: durationNs,
			SyncsByHour:   make(map[int64]int64),
		}
		sc.stats[outcome.ScopeKey] = stats
	}

	stats.TotalSyncs++
	stats.TotalDurationNs += durationNs
	stats.TablesCached += outcome.TablesCached
	stats.LastSyncTime = outcome.Timestamp

	if outcome.Success {
		stats.SuccessfulSyncs++
	} else {
		stats.FailedSyncs++
		stats.LastError = outcome.Error
		stats.LastErrorTime = outcome.Timestamp
	}

	if durationNs < stats.MinDurationNs {
		stats.MinDurationNs = durationNs
	}
	if durationNs > stats.MaxDurationNs {
		stats.MaxDurationNs = durationNs
	}
	stats.AvgDurationNs = stats.TotalDurationNs / stats.TotalSyncs

	hour := outcome.Timestamp.Truncate(time.Hour).Unix()
	stats.SyncsByHour[hour]++
	sc.statsMutex.Unlock()

	sc.globalMutex.Lock()
	sc.global.TotalSyncs++
	sc.global.TotalDurationNs += durationNs
	sc.global.TablesCached += outcome.TablesCached
	if outcome.Success {
		sc.global.SuccessfulSyncs++
	} else {
		sc.global.FailedSyncs++
	}
	sc.global.SyncsByScope[outcome.ScopeKey]++
	sc.global.SyncsByHour[hour]++
	sc.globalMutex.Unlock()
}

// GetScopeStats returns sync statistics for one scope
func (sc *SyncStatsCollector) GetScopeStats(scopeKey string) (*ScopeSyncStats, error) {
	sc.statsMutex.RLock()
	defer sc.statsMutex.RUnlock()

	stats, exists := sc.stats[scopeKey]
	if !exists {
		return nil, ErrScopeStatsNotFound
	}

	// Return a copy to avoid race conditions
	copy := *stats
	copy.SyncsByHour = make(map[int64]int64)
	for k, v := range stats.SyncsByHour {
		copy.SyncsByHour[k] = v
	}
	return &copy, nil
}

// GetAllStats returns sync statistics for every tracked scope
func (sc *SyncStatsCollector) GetAllStats() map[string]*ScopeSyncStats {
	sc.statsMutex.RLock()
	defer sc.statsMutex.RUnlock()

	result := make(map[string]*ScopeSyncStats)
	for key, stats := range sc.stats {
		copy := *stats
		copy.SyncsByHour = make(map[int64]int64)
		for k, v := range stats.SyncsByHour {
			copy.SyncsByHour[k] = v
		}
		result[key] = &copy
	}
	return result
}

// GetGlobalStats returns service-wide sync statistics
func (sc *SyncStatsCollector) GetGlobalStats() *GlobalSyncStats {
	sc.globalMutex.RLock()
	defer sc.globalMutex.RUnlock()

	copy := *sc.global
	copy.SyncsByScope = make(map[string]int64)
	copy.SyncsByHour = make(map[int64]int64)
	for k, v := range sc.global.SyncsByScope {
		copy.SyncsByScope[k] = v
	}
	for k, v := range sc.global.SyncsByHour {
		copy.SyncsByHour[k] = v
	}
	return &copy
}

// GetSummary returns an at-a-glance summary of sync behavior
func (sc *SyncStatsCollector) GetSummary() map[string]interface{} {
	global := sc.GetGlobalStats()
	uptime := time.Since(global.StartTime)

	summary := map[string]interface{}{
		"uptime_seconds":      uptime.Seconds(),
		"total_syncs":         global.TotalSyncs,
		"successful_syncs":    global.SuccessfulSyncs,
		"failed_syncs":        global.FailedSyncs,
		"tables_cached":       global.TablesCached,
		"success_rate":        0.0,
		"avg_sync_time_ms":    0.0,
		"tracked_scopes":      len(global.SyncsByScope),
		"syncs_by_scope":      global.SyncsByScope,
	}

	if global.TotalSyncs > 0 {
		summary["success_rate"] = float64(global.SuccessfulSyncs) / float64(global.TotalSyncs)
		summary["avg_sync_time_ms"] = (float64(global.TotalDurationNs) / float64(global.TotalSyncs)) / 1e6
	}
	return summary
}

// CleanupOldStats removes hourly buckets older than the retention period
func (sc *SyncStatsCollector) CleanupOldStats() {
	cutoff := time.Now().Add(-sc.retentionDuration).Unix()

	sc.statsMutex.Lock()
	for _, stats := range sc.stats {
		for hour := range stats.SyncsByHour {
			if hour < cutoff {
				delete(stats.SyncsByHour, hour)
			}
		}
	}
	sc.statsMutex.Unlock()

	sc.globalMutex.Lock()
	for hour := range sc.global.SyncsByHour {
		if hour < cutoff {
			delete(sc.global.SyncsByHour, hour)
		}
	}
	sc.globalMutex.Unlock()
}

// StartCleanupRoutine starts a background routine to clean up old stats
func (sc *SyncStatsCollector) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(sc.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sc.CleanupOldStats()
		}
	}
}

// Errors
var (
	ErrScopeStatsNotFound = fmt.Errorf("scope sync stats not found")
)
