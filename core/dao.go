package core

import "github.com/shopspring/decimal"

// Dao is a registered DAO on the platform.
type Dao struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Image       string            `json:"image,omitempty"`
	Description string            `json:"description,omitempty"`
	Website     string            `json:"website,omitempty"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`
	Network     int64             `json:"network,omitempty"`
	CreatedBy   int64             `json:"createdBy,omitempty"`
	Balance     decimal.Decimal   `json:"balance"`
	Campaigns   []Campaign        `json:"campaigns,omitempty"`
	CreatedAt   string            `json:"createdAt"`
	IsFavorited bool              `json:"isFavorited,omitempty"`
}

// DaoRegistration is the payload for registering or editing a DAO. The image
// is uploaded as a multipart part alongside these fields, so it is not listed.
type DaoRegistration struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Website     string            `json:"website,omitempty"`
	Network     int64             `json:"network"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`
}
