package service

import (
	"context"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// StatsService serves a fixed analytics snapshot. The numbers are demo data
// and never change at runtime.
type StatsService struct {
	stats domain.SiteStats
}

func NewStatsService(stats domain.SiteStats) *StatsService {
	return &StatsService{stats: stats}
}

func (s *StatsService) Snapshot(_ context.Context) domain.SiteStats {
	out := s.stats
	out.TopPages = append([]domain.PageViews(nil), s.stats.TopPages...)
	out.VisitsByDay = append([]domain.DailyVisits(nil), s.stats.VisitsByDay...)
	return out
}
