package platform

import (
	"context"
	"net/http"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
)

// DashboardService covers the read-only aggregates behind the dashboard.
type DashboardService struct {
	api *apiclient.Client
}

func NewDashboardService(api *apiclient.Client) *DashboardService {
	return &DashboardService{api: api}
}

func (s *DashboardService) Overview(ctx context.Context) (core.StatsOverview, error) {
	return apiclient.Do[core.StatsOverview](ctx, s.api, http.MethodGet, "statistics/overview", nil)
}

// TopShillers returns the short leaderboard shown on the dashboard.
func (s *DashboardService) TopShillers(ctx context.Context) ([]core.Shiller, error) {
	return apiclient.Do[[]core.Shiller](ctx, s.api, http.MethodGet, "top-shillers", nil)
}

// TopShillersExtended returns the full leaderboard with per-shiller detail.
func (s *DashboardService) TopShillersExtended(ctx context.Context) ([]core.Shiller, error) {
	return apiclient.Do[[]core.Shiller](ctx, s.api, http.MethodGet, "top-shillers-extended", nil)
}

func (s *DashboardService) CampaignsGraph(ctx context.Context) ([]core.CampaignsGraphPoint, error) {
	return apiclient.Do[[]core.CampaignsGraphPoint](ctx, s.api, http.MethodGet, "statistics/campaigns-graph", nil)
}

func (s *DashboardService) RewardsGraph(ctx context.Context) ([]core.RewardsGraphPoint, error) {
	return apiclient.Do[[]core.RewardsGraphPoint](ctx, s.api, http.MethodGet, "statistics/rewards-graph", nil)
}

func (s *DashboardService) TierGraph(ctx context.Context) ([]core.TierGraphPoint, error) {
	return apiclient.Do[[]core.TierGraphPoint](ctx, s.api, http.MethodGet, "statistics/tier-graph", nil)
}
