package core

import "github.com/shopspring/decimal"

// Tier is the reward tier a shiller has earned.
type Tier string

const (
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
	TierDiamond  Tier = "Diamond"
)

// User is a platform account bound to a wallet address.
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username,omitempty"`
	Tier       Tier   `json:"tier"`
	EthAddress string `json:"ethAddress,omitempty"`
	Image      string `json:"image,omitempty"`
	Approved   int    `json:"approved,omitempty"`
	Rejected   int    `json:"rejected,omitempty"`
	Role       Role   `json:"role,omitempty"`
}

// Shiller is a leaderboard entry.
type Shiller struct {
	ID                       int64           `json:"id"`
	Username                 string          `json:"username,omitempty"`
	Image                    string          `json:"image,omitempty"`
	Tier                     Tier            `json:"tier"`
	ApprovalRate             float64         `json:"approvalRate"`
	ApprovedSubmissionsCount int             `json:"approvedSubmissionsCount"`
	TotalSubmissionsCount    int             `json:"totalSubmissionsCount,omitempty"`
	Growth                   float64         `json:"growth"`
	EthAddress               string          `json:"ethAddress,omitempty"`
	TotalRewards             decimal.Decimal `json:"totalRewards"`
	JoinedDate               string          `json:"joinedDate,omitempty"`
	IsActive                 bool            `json:"isActive,omitempty"`
	Role                     Role            `json:"role,omitempty"`
}
