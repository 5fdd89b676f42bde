package core

import "github.com/shopspring/decimal"

// CampaignStatus enumerates the lifecycle states a campaign moves through.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "Active"
	CampaignPlanning  CampaignStatus = "Planning"
	CampaignCompleted CampaignStatus = "Completed"
	CampaignOnHold    CampaignStatus = "On Hold"
)

// DaoSummary is the embedded DAO shape carried by campaign listings.
type DaoSummary struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Campaign is a funded shilling campaign run by a DAO.
type Campaign struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Dao         *DaoSummary     `json:"dao"`
	Progress    float64         `json:"progress"`
	TotalTasks  int             `json:"totalTasks"`
	Budget      decimal.Decimal `json:"budget"`
	Status      CampaignStatus  `json:"status"`
	CreatedAt   string          `json:"createdAt"`
	Tasks       []Task          `json:"tasks,omitempty"`
}

// CampaignOverview aggregates campaign counters for the stats cards.
type CampaignOverview struct {
	ActiveCampaigns    int             `json:"activeCampaigns"`
	CompletedCampaigns int             `json:"completedCampaigns"`
	TotalBudget        decimal.Decimal `json:"totalBudget"`
	TotalTasks         int             `json:"totalTasks"`
}

// CampaignDraft is the payload a funded-campaign form submits. It is held by
// the transaction coordinator until the on-chain transfer confirms, then
// forwarded to the backend together with the transaction hash.
type CampaignDraft struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Budget      decimal.Decimal `json:"budget"`
	Status      CampaignStatus  `json:"status"`
	DaoID       int64           `json:"dao"`
}
