package model

import "gorm.io/datatypes"

// AgentModel is the persisted shape of an auto-bid agent. Monetary columns
// are stored as exact decimal strings, the conditions map as a JSON column.
type AgentModel struct {
	ID              string         `gorm:"column:id;primaryKey"`
	AuctionID       string         `gorm:"column:auction_id;index"`
	UserID          string         `gorm:"column:user_id;index"`
	MaxBidAmount    *string        `gorm:"column:max_bid_amount"`
	IncrementAmount *string        `gorm:"column:increment_amount"`
	IntervalMinutes int            `gorm:"column:interval_minutes"`
	IsActive        bool           `gorm:"column:is_active;index"`
	ConditionsJSON  datatypes.JSON `gorm:"column:conditions_json;type:TEXT"`
	LastRunUnix     *int64         `gorm:"column:last_run_at"`
	NextRunUnix     *int64         `gorm:"column:next_run_at;index"`
	CreatedAtUnix   int64          `gorm:"column:created_at"`
	UpdatedAtUnix   int64          `gorm:"column:updated_at"`
}

func (AgentModel) TableName() string { return "auto_bid_agents" }
