package schema

import (
	"time"
)

// ButtonOwnership represents the button_ownerships table - a time-boxed,
// exclusive right to set the shared button's destination and appearance.
//
// There is no status column: an ownership is "active" purely when
// `now < expires_at`, computed at query time. The unique index on tx_hash is
// the authoritative replay guard; application-level pre-checks are only an
// optimization.
type ButtonOwnership struct {
	// ID is an opaque UUID primary key
	ID string `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	// OwnerAddress is the chain identity that paid for the ownership
	OwnerAddress string `gorm:"column:owner_address;not null;type:text" json:"owner_address"`
	// TxHash is the paying transaction, globally unique across ownerships
	TxHash string `gorm:"column:tx_hash;not null;uniqueIndex;type:text" json:"tx_hash"`
	// StartsAt is the purchase time
	StartsAt time.Time `gorm:"column:starts_at;not null;type:timestamptz" json:"starts_at"`
	// ExpiresAt is StartsAt plus the purchased duration
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index;type:timestamptz" json:"expires_at"`
	// DurationSeconds is derived from the payment amount, always positive
	DurationSeconds int64 `gorm:"column:duration_seconds;not null" json:"duration_seconds"`
	// ButtonColor is an optional background color (exclusive with image)
	ButtonColor *string `gorm:"column:button_color;type:text" json:"button_color"`
	// ButtonEmoji is an optional emoji label (exclusive with image)
	ButtonEmoji *string `gorm:"column:button_emoji;type:text" json:"button_emoji"`
	// ButtonImageURL is an optional image skin (exclusive with color/emoji)
	ButtonImageURL *string `gorm:"column:button_image_url;type:text" json:"button_image_url"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz" json:"created_at"`
}

// TableName specifies the table name for the ButtonOwnership model
func (ButtonOwnership) TableName() string {
	return "button_ownerships"
}

// Expired reports whether the ownership is no longer active at the given time
func (o *ButtonOwnership) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// RemainingSeconds returns the whole seconds left before expiry, floored at zero
func (o *ButtonOwnership) RemainingSeconds(now time.Time) int64 {
	remaining := int64(o.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}
