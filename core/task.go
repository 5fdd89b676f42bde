package core

import "github.com/shopspring/decimal"

// TaskType enumerates the kinds of shilling work a campaign can ask for.
type TaskType string

const (
	TaskDiscussion  TaskType = "Discussion"
	TaskVideo       TaskType = "Video"
	TaskPublication TaskType = "Publication"
	TaskSocialPost  TaskType = "Social Post"
	TaskTutorial    TaskType = "Tutorial"
)

// Task is a unit of rewarded work inside a campaign.
type Task struct {
	ID               int64           `json:"id"`
	Type             TaskType        `json:"type"`
	Description      string          `json:"description"`
	Reward           decimal.Decimal `json:"reward"`
	Quantity         int             `json:"quantity"`
	Deadline         int64           `json:"deadline"`
	Campaign         string          `json:"campaign,omitempty"`
	SubmissionsCount int             `json:"submissionsCount"`
	Status           int             `json:"status"`
	CreatedAt        int64           `json:"createdAt"`
}

// TaskDraft is the payload for creating a task under a campaign.
type TaskDraft struct {
	Description string          `json:"description"`
	Type        TaskType        `json:"type"`
	Reward      decimal.Decimal `json:"reward"`
	Quantity    int             `json:"quantity"`
	Deadline    int64           `json:"deadline"`
	CampaignID  int64           `json:"campaign"`
}
