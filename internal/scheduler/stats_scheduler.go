package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/storerate/storerate-backend/internal/app/service"
	"github.com/storerate/storerate-backend/pkg/logger"
)

// StatsScheduler logs a daily snapshot of the platform counters so the
// numbers end up in the log stream without the API caching anything.
type StatsScheduler struct {
	cron         *cron.Cron
	adminService service.AdminService
}

func NewStatsScheduler(adminService service.AdminService) *StatsScheduler {
	return &StatsScheduler{
		cron:         cron.New(),
		adminService: adminService,
	}
}

func (s *StatsScheduler) Start() error {
	// Midnight snapshot, server local time
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		stats, err := s.adminService.Stats()
		if err != nil {
			logger.Error("Failed to collect platform stats snapshot", err)
			return
		}

		logger.Info("Platform stats snapshot", map[string]interface{}{
			"total_users":   stats.TotalUsers,
			"total_stores":  stats.TotalStores,
			"total_ratings": stats.TotalRatings,
			"avg_rating":    stats.AvgRating,
		})
	})
	if err != nil {
		logger.Error("Failed to schedule stats snapshot", err)
		return err
	}

	s.cron.Start()
	logger.Info("Stats scheduler started (daily at midnight)", nil)
	return nil
}

func (s *StatsScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Stats scheduler stopped", nil)
}
