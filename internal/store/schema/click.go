package schema

import (
	"time"
)

// Click represents the clicks table - an append-only event log of button
// presses. Clicks are never mutated or deleted.
type Click struct {
	// ID is an opaque UUID primary key
	ID string `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	// LinkID is the link that was open when the button was pressed
	LinkID *string `gorm:"column:link_id;type:varchar(36);index" json:"link_id"`
	// ClickedBy identifies the visitor (address, fid, or "anonymous")
	ClickedBy *string `gorm:"column:clicked_by;type:text" json:"clicked_by"`
	// ClickerUsername is optional display metadata
	ClickerUsername *string `gorm:"column:clicker_username;type:text" json:"clicker_username"`
	// ClickerPfpURL is optional display metadata
	ClickerPfpURL *string `gorm:"column:clicker_pfp_url;type:text" json:"clicker_pfp_url"`
	// UserAgent is the visitor's User-Agent header
	UserAgent *string `gorm:"column:user_agent;type:text" json:"user_agent"`
	// ClickedAt is the timestamp of the press
	ClickedAt time.Time `gorm:"column:clicked_at;not null;default:now();index;type:timestamptz" json:"clicked_at"`
}

// TableName specifies the table name for the Click model
func (Click) TableName() string {
	return "clicks"
}
