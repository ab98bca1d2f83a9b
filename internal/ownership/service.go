package ownership

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mysterylink/button-server/internal/adapter"
	"github.com/mysterylink/button-server/internal/chain"
	"github.com/mysterylink/button-server/internal/domain"
	"github.com/mysterylink/button-server/internal/logger"
	"github.com/mysterylink/button-server/internal/messaging"
	"github.com/mysterylink/button-server/internal/payment"
	"github.com/mysterylink/button-server/internal/store"
	"github.com/mysterylink/button-server/internal/store/schema"
)

// Service implements the button ownership flows: purchasing the button,
// pointing it at a URL, changing its appearance, recording clicks, and the
// legacy single-link submission. All chain and payment rules are delegated to
// the observer, validator, and calculator; the service owns sequencing and
// authorization.
type Service struct {
	store      store.Store
	observer   chain.Observer
	validator  payment.Validator
	calculator *payment.DurationCalculator
	publisher  messaging.Publisher
	clock      adapter.Clock

	// globalTxUniqueness extends the replay pre-check across both the
	// ownerships and links tables
	globalTxUniqueness bool
}

// NewService wires the ownership service from its collaborators
func NewService(
	s store.Store,
	observer chain.Observer,
	validator payment.Validator,
	calculator *payment.DurationCalculator,
	publisher messaging.Publisher,
	clock adapter.Clock,
	globalTxUniqueness bool,
) *Service {
	return &Service{
		store:              s,
		observer:           observer,
		validator:          validator,
		calculator:         calculator,
		publisher:          publisher,
		clock:              clock,
		globalTxUniqueness: globalTxUniqueness,
	}
}

// PurchaseParams are the inputs of an ownership purchase
type PurchaseParams struct {
	TxHash       string
	OwnerAddress string
	Visuals      domain.ButtonVisuals
}

// CurrentOwnership is the active ownership joined with its link and the
// remaining time, as served to clients
type CurrentOwnership struct {
	Ownership        schema.ButtonOwnership `json:"ownership"`
	Link             *schema.Link           `json:"link"`
	RemainingSeconds int64                  `json:"remaining_seconds"`
}

// Purchase verifies the payment transaction and creates a new ownership.
// The purchase blocks while the chain observer waits for the transaction to
// become visible, up to the observer's retry budget.
//
// A new ownership always supersedes the current one: the active ownership is
// selected by recency, so overlapping purchases are allowed and the newest
// wins for the remainder of both durations.
func (s *Service) Purchase(ctx context.Context, params PurchaseParams) (*schema.ButtonOwnership, error) {
	if !domain.IsValidTxHash(params.TxHash) {
		return nil, fmt.Errorf("%w: malformed transaction hash", domain.ErrValidation)
	}
	if !domain.IsValidAddress(params.OwnerAddress) {
		return nil, fmt.Errorf("%w: malformed owner address", domain.ErrValidation)
	}
	if !params.Visuals.Exclusive() {
		return nil, fmt.Errorf("%w: button image cannot be combined with color or emoji", domain.ErrValidation)
	}

	// Replay pre-check before touching the chain. The unique index remains
	// the authoritative guard under concurrent submissions.
	if err := s.checkTxHashUnused(ctx, params.TxHash, true); err != nil {
		return nil, err
	}

	obs, err := s.observer.Observe(ctx, params.TxHash)
	if err != nil {
		return nil, err
	}

	result := s.validator.Validate(obs)
	if !result.IsValid {
		return nil, fmt.Errorf("%w: %s", result.Failure, result.Reason)
	}
	if !domain.SameAddress(result.Sender, params.OwnerAddress) {
		return nil, fmt.Errorf("%w: transaction was signed by %s",
			domain.ErrSenderMismatch, domain.NormalizeAddress(result.Sender))
	}

	durationSeconds, err := s.calculator.Duration(result.Amount)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ownership := &schema.ButtonOwnership{
		ID:              uuid.NewString(),
		OwnerAddress:    domain.NormalizeAddress(params.OwnerAddress),
		TxHash:          params.TxHash,
		StartsAt:        now,
		ExpiresAt:       now.Add(time.Duration(durationSeconds) * time.Second),
		DurationSeconds: durationSeconds,
		ButtonColor:     params.Visuals.ButtonColor,
		ButtonEmoji:     params.Visuals.ButtonEmoji,
		ButtonImageURL:  params.Visuals.ButtonImageURL,
		CreatedAt:       now,
	}

	if err := s.store.CreateOwnership(ctx, ownership); err != nil {
		return nil, err
	}

	logger.Info("ownership purchased",
		zap.String("ownership_id", ownership.ID),
		zap.String("owner", ownership.OwnerAddress),
		zap.Int64("duration_seconds", durationSeconds))

	s.publish(ctx, messaging.EventOwnershipCreated, ownership)
	return ownership, nil
}

// Current returns the active ownership with its link and remaining time.
// A nil result means nobody owns the button right now.
func (s *Service) Current(ctx context.Context) (*CurrentOwnership, error) {
	now := s.clock.Now()
	active, err := s.store.GetActiveOwnership(ctx, now)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}
	return &CurrentOwnership{
		Ownership:        active.Ownership,
		Link:             active.Link,
		RemainingSeconds: active.Ownership.RemainingSeconds(now),
	}, nil
}

// LinkParams are the inputs of setting an ownership's destination URL
type LinkParams struct {
	OwnershipID      string
	RequesterAddress string
	URL              string
	Username         *string
	PfpURL           *string
}

// SetLink creates or replaces the destination URL of an ownership. Only the
// owner may call it, and only while the ownership is active.
func (s *Service) SetLink(ctx context.Context, params LinkParams) (*schema.Link, error) {
	if err := validateDestinationURL(params.URL); err != nil {
		return nil, err
	}

	ownership, err := s.authorizeMutation(ctx, params.OwnershipID, params.RequesterAddress)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetLinkByOwnershipID(ctx, ownership.ID)
	if err != nil {
		return nil, err
	}

	var link *schema.Link
	if existing != nil {
		link, err = s.store.UpdateLinkURL(ctx, ownership.ID, params.URL)
		if err != nil {
			return nil, err
		}
	} else {
		link = &schema.Link{
			ID:                uuid.NewString(),
			OwnershipID:       &ownership.ID,
			URL:               params.URL,
			SubmittedBy:       ownership.OwnerAddress,
			SubmitterUsername: params.Username,
			SubmitterPfpURL:   params.PfpURL,
			TxHash:            ownership.TxHash,
			CreatedAt:         s.clock.Now(),
		}
		if err := s.store.CreateLink(ctx, link); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, messaging.EventLinkCreated, link)
	return link, nil
}

// SetVisuals updates the button's appearance. Only the owner may call it,
// and only while the ownership is active.
func (s *Service) SetVisuals(ctx context.Context, ownershipID, requesterAddress string, visuals domain.ButtonVisuals) (*schema.ButtonOwnership, error) {
	if visuals.IsZero() {
		return nil, fmt.Errorf("%w: no visual attribute provided", domain.ErrValidation)
	}
	if !visuals.Exclusive() {
		return nil, fmt.Errorf("%w: button image cannot be combined with color or emoji", domain.ErrValidation)
	}

	ownership, err := s.authorizeMutation(ctx, ownershipID, requesterAddress)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateOwnershipVisuals(ctx, ownership.ID,
		visuals.ButtonColor, visuals.ButtonEmoji, visuals.ButtonImageURL)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.EventOwnershipUpdated, updated)
	return updated, nil
}

// SubmitLinkParams are the inputs of the legacy pay-per-link flow
type SubmitLinkParams struct {
	TxHash      string
	URL         string
	SubmittedBy string
	Username    *string
	PfpURL      *string
}

// SubmitLink is the legacy flow: a payment buys exactly one link replacement
// with no time-boxed ownership attached.
func (s *Service) SubmitLink(ctx context.Context, params SubmitLinkParams) (*schema.Link, error) {
	if !domain.IsValidTxHash(params.TxHash) {
		return nil, fmt.Errorf("%w: malformed transaction hash", domain.ErrValidation)
	}
	if !domain.IsValidAddress(params.SubmittedBy) {
		return nil, fmt.Errorf("%w: malformed submitter address", domain.ErrValidation)
	}
	if err := validateDestinationURL(params.URL); err != nil {
		return nil, err
	}

	if err := s.checkTxHashUnused(ctx, params.TxHash, false); err != nil {
		return nil, err
	}

	obs, err := s.observer.Observe(ctx, params.TxHash)
	if err != nil {
		return nil, err
	}

	result := s.validator.Validate(obs)
	if !result.IsValid {
		return nil, fmt.Errorf("%w: %s", result.Failure, result.Reason)
	}
	if !domain.SameAddress(result.Sender, params.SubmittedBy) {
		return nil, fmt.Errorf("%w: transaction was signed by %s",
			domain.ErrSenderMismatch, domain.NormalizeAddress(result.Sender))
	}

	link := &schema.Link{
		ID:                uuid.NewString(),
		URL:               params.URL,
		SubmittedBy:       domain.NormalizeAddress(params.SubmittedBy),
		SubmitterUsername: params.Username,
		SubmitterPfpURL:   params.PfpURL,
		TxHash:            params.TxHash,
		CreatedAt:         s.clock.Now(),
	}
	if err := s.store.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.EventLinkCreated, link)
	return link, nil
}

// CurrentLink returns the most recently created link, nil when none exist
func (s *Service) CurrentLink(ctx context.Context) (*schema.Link, error) {
	return s.store.GetCurrentLink(ctx)
}

// ClickParams are the inputs of recording a button press
type ClickParams struct {
	ClickedBy       *string
	ClickerUsername *string
	ClickerPfpURL   *string
	UserAgent       *string
}

// RecordClick appends a click against the current link. Clicks are accepted
// even when no link is set; LinkID stays nil then.
func (s *Service) RecordClick(ctx context.Context, params ClickParams) (*schema.Click, error) {
	current, err := s.store.GetCurrentLink(ctx)
	if err != nil {
		return nil, err
	}

	click := &schema.Click{
		ID:              uuid.NewString(),
		ClickedBy:       params.ClickedBy,
		ClickerUsername: params.ClickerUsername,
		ClickerPfpURL:   params.ClickerPfpURL,
		UserAgent:       params.UserAgent,
		ClickedAt:       s.clock.Now(),
	}
	if current != nil {
		click.LinkID = &current.ID
	}

	if err := s.store.CreateClick(ctx, click); err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.EventClickCreated, click)
	return click, nil
}

// RecentClicks returns the newest clicks, most recent first
func (s *Service) RecentClicks(ctx context.Context, limit int) ([]schema.Click, error) {
	return s.store.GetRecentClicks(ctx, limit)
}

// ClickCount returns the total number of recorded clicks
func (s *Service) ClickCount(ctx context.Context) (int64, error) {
	return s.store.CountClicks(ctx)
}

// authorizeMutation loads the ownership and checks that the requester is the
// owner and that the ownership has not expired
func (s *Service) authorizeMutation(ctx context.Context, ownershipID, requesterAddress string) (*schema.ButtonOwnership, error) {
	if ownershipID == "" {
		return nil, fmt.Errorf("%w: missing ownership id", domain.ErrValidation)
	}
	if !domain.IsValidAddress(requesterAddress) {
		return nil, fmt.Errorf("%w: malformed requester address", domain.ErrValidation)
	}

	ownership, err := s.store.GetOwnershipByID(ctx, ownershipID)
	if err != nil {
		return nil, err
	}
	if ownership == nil {
		return nil, fmt.Errorf("%w: ownership %s", domain.ErrNotFound, ownershipID)
	}
	if !domain.SameAddress(ownership.OwnerAddress, requesterAddress) {
		return nil, fmt.Errorf("%w: only the owner may modify the button", domain.ErrForbidden)
	}
	if ownership.Expired(s.clock.Now()) {
		return nil, fmt.Errorf("%w: ownership %s", domain.ErrOwnershipExpired, ownershipID)
	}
	return ownership, nil
}

// checkTxHashUnused pre-checks the replay guard. primaryOwnership selects
// which table is checked first; with global uniqueness enabled both tables
// are consulted.
func (s *Service) checkTxHashUnused(ctx context.Context, txHash string, primaryOwnership bool) error {
	checkOwnerships := primaryOwnership || s.globalTxUniqueness
	checkLinks := !primaryOwnership || s.globalTxUniqueness

	if checkOwnerships {
		existing, err := s.store.GetOwnershipByTxHash(ctx, txHash)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateTransaction, txHash)
		}
	}
	if checkLinks {
		existing, err := s.store.GetLinkByTxHash(ctx, txHash)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateTransaction, txHash)
		}
	}
	return nil
}

// publish fans out an event; delivery failures are logged, never surfaced to
// the caller, the write has already committed
func (s *Service) publish(ctx context.Context, eventType messaging.EventType, payload any) {
	event := &messaging.Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: s.clock.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish event",
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}

func validateDestinationURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: missing url", domain.ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: malformed url", domain.ErrValidation)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url must be absolute http or https", domain.ErrValidation)
	}
	return nil
}
