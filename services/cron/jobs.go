package cron

import (
	"context"
	"fmt"
	"time"
)

const (
	jobWarmCatalogCache   = "warm_catalog_cache"
	jobPruneRevokedTokens = "prune_revoked_tokens"
	jobCatalogStatsReport = "catalog_stats_report"
)

// WarmCatalogCache fills the listing cache so the first page of every sort
// order is served without a store read.
func (m *CronManager) WarmCatalogCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	m.logJobStart(jobWarmCatalogCache)

	n, err := m.colleges.WarmCache(ctx)
	if err != nil {
		m.logJobError(jobWarmCatalogCache, err)
		return
	}

	m.logJobComplete(jobWarmCatalogCache, fmt.Sprintf("Warmed %d listing pages", n))
}

// PruneRevokedTokens removes revocations whose tokens have expired anyway
func (m *CronManager) PruneRevokedTokens() {
	m.logJobStart(jobPruneRevokedTokens)

	if m.pruner == nil {
		m.logJobComplete(jobPruneRevokedTokens, "No pruner configured")
		return
	}
	removed := m.pruner.Prune()

	m.logJobComplete(jobPruneRevokedTokens, fmt.Sprintf("Pruned %d expired revocations", removed))
}

// ReportCatalogStats logs the dashboard counters once a day
func (m *CronManager) ReportCatalogStats() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	m.logJobStart(jobCatalogStatsReport)

	stats, err := m.colleges.Stats(ctx)
	if err != nil {
		m.logJobError(jobCatalogStatsReport, fmt.Errorf("failed to read catalog stats: %w", err))
		return
	}

	m.logger.Info().
		Int64("total_colleges", stats.TotalColleges).
		Int64("published", stats.Published).
		Int64("drafts", stats.Drafts).
		Int64("total_courses", stats.TotalCourses).
		Msg("catalog stats")

	m.logJobComplete(jobCatalogStatsReport, fmt.Sprintf("Reported %d colleges", stats.TotalColleges))
}
