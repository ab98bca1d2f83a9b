package store

import (
	"context"
	"time"

	"github.com/mysterylink/button-server/internal/store/schema"
)

// ActiveOwnership is an ownership joined with its link (if the owner has set
// one) as returned by the active-ownership query
type ActiveOwnership struct {
	Ownership schema.ButtonOwnership
	Link      *schema.Link
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// CreateOwnership persists a new ownership. A reused tx_hash surfaces as
	// domain.ErrDuplicateTransaction via the unique index, even under
	// concurrent submissions.
	CreateOwnership(ctx context.Context, ownership *schema.ButtonOwnership) error
	// GetOwnershipByID retrieves an ownership by id, nil when absent
	GetOwnershipByID(ctx context.Context, id string) (*schema.ButtonOwnership, error)
	// GetOwnershipByTxHash retrieves an ownership by paying transaction, nil when absent
	GetOwnershipByTxHash(ctx context.Context, txHash string) (*schema.ButtonOwnership, error)
	// GetActiveOwnership returns the most recently created ownership whose
	// expiry is still in the future at `now`, joined with its link.
	// nil result is the normal empty-button state, not an error.
	GetActiveOwnership(ctx context.Context, now time.Time) (*ActiveOwnership, error)
	// UpdateOwnershipVisuals persists the visual attributes of an ownership.
	// An unknown id yields domain.ErrNotFound.
	UpdateOwnershipVisuals(ctx context.Context, id string, color, emoji, imageURL *string) (*schema.ButtonOwnership, error)

	// CreateLink persists a new link. A reused tx_hash surfaces as
	// domain.ErrDuplicateTransaction via the unique index.
	CreateLink(ctx context.Context, link *schema.Link) error
	// GetLinkByOwnershipID retrieves the link belonging to an ownership, nil when absent
	GetLinkByOwnershipID(ctx context.Context, ownershipID string) (*schema.Link, error)
	// GetLinkByTxHash retrieves a link by paying transaction, nil when absent
	GetLinkByTxHash(ctx context.Context, txHash string) (*schema.Link, error)
	// GetCurrentLink returns the most recently created link, nil when none exist
	GetCurrentLink(ctx context.Context) (*schema.Link, error)
	// UpdateLinkURL updates the URL of an ownership's link. An ownership
	// without a link yields domain.ErrNotFound.
	UpdateLinkURL(ctx context.Context, ownershipID string, url string) (*schema.Link, error)

	// CreateClick appends a click event
	CreateClick(ctx context.Context, click *schema.Click) error
	// GetRecentClicks returns the newest clicks, most recent first
	GetRecentClicks(ctx context.Context, limit int) ([]schema.Click, error)
	// CountClicks returns the total number of recorded clicks
	CountClicks(ctx context.Context) (int64, error)
}
