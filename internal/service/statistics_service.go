package service

import (
	"github.com/miftajuneidi2008/ansar-dfp/internal/auth"
	"github.com/miftajuneidi2008/ansar-dfp/internal/metrics"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
)

// DashboardStatistics summarizes the applications visible to an actor.
type DashboardStatistics struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Returned int64 `json:"returned"`
	Rejected int64 `json:"rejected"`
}

// StatisticsService computes dashboard counters.
type StatisticsService interface {
	Dashboard(actor auth.Actor) (*DashboardStatistics, error)
}

type statisticsService struct {
	appSvc ApplicationService
	repo   repository.ApplicationRepository
}

// NewStatisticsService creates a statistics service.
func NewStatisticsService(appSvc ApplicationService, repo repository.ApplicationRepository) StatisticsService {
	return &statisticsService{appSvc: appSvc, repo: repo}
}

// Dashboard counts applications by status within the actor's visibility
// window, and refreshes the status gauges.
func (s *statisticsService) Dashboard(actor auth.Actor) (*DashboardStatistics, error) {
	apps, _, err := s.appSvc.ListForActor(actor, nil)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStatistics{Total: int64(len(apps))}
	for _, app := range apps {
		switch app.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusApproved:
			stats.Approved++
		case model.StatusReturned:
			stats.Returned++
		case model.StatusRejected:
			stats.Rejected++
		}
	}

	if actor.IsAdmin() {
		if counts, err := s.repo.CountByStatus(); err == nil {
			metrics.UpdateApplicationsByStatus(counts)
		}
	}

	return stats, nil
}
