package schema

import (
	"time"
)

// Link represents the links table - the destination URL behind the button.
// In the ownership flow a link belongs to an ownership (OwnershipID set);
// in the legacy flow it is payment-gated on its own transaction.
type Link struct {
	// ID is an opaque UUID primary key
	ID string `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	// OwnershipID is the owning ownership, nil for legacy submissions
	OwnershipID *string `gorm:"column:ownership_id;type:varchar(36);index" json:"ownership_id"`
	// URL is the destination; the only mutable field after creation
	URL string `gorm:"column:url;not null;type:text" json:"url"`
	// SubmittedBy is the submitter's chain address
	SubmittedBy string `gorm:"column:submitted_by;not null;type:text" json:"submitted_by"`
	// SubmitterUsername is optional display metadata
	SubmitterUsername *string `gorm:"column:submitter_username;type:text" json:"submitter_username"`
	// SubmitterPfpURL is optional display metadata
	SubmitterPfpURL *string `gorm:"column:submitter_pfp_url;type:text" json:"submitter_pfp_url"`
	// TxHash is the paying transaction, unique across links
	TxHash string `gorm:"column:tx_hash;not null;uniqueIndex;type:text" json:"tx_hash"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz" json:"created_at"`
}

// TableName specifies the table name for the Link model
func (Link) TableName() string {
	return "links"
}
