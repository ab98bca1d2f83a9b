package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mysterylink/button-server/internal/domain"
	"github.com/mysterylink/button-server/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// AutoMigrate creates or updates the tables for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.ButtonOwnership{},
		&schema.Link{},
		&schema.Click{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// translateDuplicateError remaps a unique-constraint violation into
// domain.ErrDuplicateTransaction. The index on tx_hash is the authoritative
// replay guard; this translation is what turns a racing second submission
// into a clean client error instead of a 500.
func translateDuplicateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTransaction, err.Error())
	}
	return err
}

func (s *pgStore) CreateOwnership(ctx context.Context, ownership *schema.ButtonOwnership) error {
	if err := s.db.WithContext(ctx).Create(ownership).Error; err != nil {
		if dup := translateDuplicateError(err); errors.Is(dup, domain.ErrDuplicateTransaction) {
			return dup
		}
		return fmt.Errorf("failed to create ownership: %w", err)
	}
	return nil
}

func (s *pgStore) GetOwnershipByID(ctx context.Context, id string) (*schema.ButtonOwnership, error) {
	var ownership schema.ButtonOwnership
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&ownership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ownership: %w", err)
	}
	return &ownership, nil
}

func (s *pgStore) GetOwnershipByTxHash(ctx context.Context, txHash string) (*schema.ButtonOwnership, error) {
	var ownership schema.ButtonOwnership
	err := s.db.WithContext(ctx).Where("lower(tx_hash) = lower(?)", txHash).First(&ownership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ownership by tx hash: %w", err)
	}
	return &ownership, nil
}

func (s *pgStore) GetActiveOwnership(ctx context.Context, now time.Time) (*ActiveOwnership, error) {
	var ownership schema.ButtonOwnership
	err := s.db.WithContext(ctx).
		Where("expires_at > ?", now).
		Order("created_at DESC").
		First(&ownership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active ownership: %w", err)
	}

	link, err := s.GetLinkByOwnershipID(ctx, ownership.ID)
	if err != nil {
		return nil, err
	}

	return &ActiveOwnership{Ownership: ownership, Link: link}, nil
}

func (s *pgStore) UpdateOwnershipVisuals(ctx context.Context, id string, color, emoji, imageURL *string) (*schema.ButtonOwnership, error) {
	updates := map[string]any{
		"button_color":     color,
		"button_emoji":     emoji,
		"button_image_url": imageURL,
	}
	result := s.db.WithContext(ctx).
		Model(&schema.ButtonOwnership{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update ownership visuals: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: ownership %s", domain.ErrNotFound, id)
	}
	return s.GetOwnershipByID(ctx, id)
}

func (s *pgStore) CreateLink(ctx context.Context, link *schema.Link) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		if dup := translateDuplicateError(err); errors.Is(dup, domain.ErrDuplicateTransaction) {
			return dup
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

func (s *pgStore) GetLinkByOwnershipID(ctx context.Context, ownershipID string) (*schema.Link, error) {
	var link schema.Link
	err := s.db.WithContext(ctx).Where("ownership_id = ?", ownershipID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get link by ownership: %w", err)
	}
	return &link, nil
}

func (s *pgStore) GetLinkByTxHash(ctx context.Context, txHash string) (*schema.Link, error) {
	var link schema.Link
	err := s.db.WithContext(ctx).Where("lower(tx_hash) = lower(?)", txHash).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get link by tx hash: %w", err)
	}
	return &link, nil
}

func (s *pgStore) GetCurrentLink(ctx context.Context) (*schema.Link, error) {
	var link schema.Link
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current link: %w", err)
	}
	return &link, nil
}

func (s *pgStore) UpdateLinkURL(ctx context.Context, ownershipID string, url string) (*schema.Link, error) {
	result := s.db.WithContext(ctx).
		Model(&schema.Link{}).
		Where("ownership_id = ?", ownershipID).
		Update("url", url)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: no link for ownership %s", domain.ErrNotFound, ownershipID)
	}
	return s.GetLinkByOwnershipID(ctx, ownershipID)
}

func (s *pgStore) CreateClick(ctx context.Context, click *schema.Click) error {
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		return fmt.Errorf("failed to create click: %w", err)
	}
	return nil
}

func (s *pgStore) GetRecentClicks(ctx context.Context, limit int) ([]schema.Click, error) {
	var clicks []schema.Click
	err := s.db.WithContext(ctx).
		Order("clicked_at DESC").
		Limit(limit).
		Find(&clicks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent clicks: %w", err)
	}
	return clicks, nil
}

func (s *pgStore) CountClicks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.Click{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}
