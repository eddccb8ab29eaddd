package service

import (
	"sort"

	"stressbox/internal/domain"
)

// RankByCount returns a copy of ips ordered by visit count, highest first.
// Ties keep their aggregation order. A positive limit truncates the result.
func RankByCount(ips []domain.IPStat, limit int) []domain.IPStat {
	ranked := make([]domain.IPStat, len(ips))
	copy(ranked, ips)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
