package core

import "github.com/shopspring/decimal"

// StatsOverview is the dashboard headline block.
type StatsOverview struct {
	TotalCampaigns int             `json:"totalCampaigns"`
	TotalTasks     int             `json:"totalTasks"`
	ActiveShillers int             `json:"activeShillers"`
	ShillPriceUsd  decimal.Decimal `json:"shillPriceUsd"`
}

// CampaignsGraphPoint is one bar of the per-campaign activity chart.
type CampaignsGraphPoint struct {
	Name        string `json:"name"`
	Tasks       int    `json:"tasks"`
	Submissions int    `json:"submissions"`
}

// RewardsGraphPoint is one bucket of the monthly rewards chart.
type RewardsGraphPoint struct {
	Month   string          `json:"month"`
	Rewards decimal.Decimal `json:"rewards"`
}

// TierGraphPoint is one slice of the tier distribution chart.
type TierGraphPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
