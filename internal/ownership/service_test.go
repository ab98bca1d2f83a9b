package ownership

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysterylink/button-server/internal/domain"
	"github.com/mysterylink/button-server/internal/logger"
	"github.com/mysterylink/button-server/internal/messaging"
	"github.com/mysterylink/button-server/internal/mocks"
	"github.com/mysterylink/button-server/internal/payment"
	"github.com/mysterylink/button-server/internal/store"
	"github.com/mysterylink/button-server/internal/store/schema"
)

const (
	testTxHash    = "0x4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"
	testOwner     = "0x52908400098527886E0F7030069857D2E4169EE7"
	testRecipient = "0x8617E340B3D01FA5F11F306F4090FD50E238070D"
)

var testCostPerHour = big.NewInt(10000000000000)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type serviceFixture struct {
	service   *Service
	store     *mocks.MockStore
	observer  *mocks.MockObserver
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
	now       time.Time
}

func newServiceFixture(t *testing.T, globalTxUniqueness bool) *serviceFixture {
	ctrl := gomock.NewController(t)

	validator, err := payment.NewValidator(domain.PaymentSchemeNative, payment.ValidatorConfig{
		RecipientAddress: testRecipient,
		MinimumAmount:    big.NewInt(1),
		Decimals:         18,
	})
	require.NoError(t, err)

	f := &serviceFixture{
		store:     mocks.NewMockStore(ctrl),
		observer:  mocks.NewMockObserver(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
		now:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.clock.EXPECT().Now().Return(f.now).AnyTimes()

	calculator := payment.NewDurationCalculator(testCostPerHour, 60, 18)
	f.service = NewService(f.store, f.observer, validator, calculator, f.publisher, f.clock, globalTxUniqueness)
	return f
}

func successfulObservation(value *big.Int) *domain.Observation {
	return &domain.Observation{
		Hash:      testTxHash,
		Succeeded: true,
		Sender:    testOwner,
		Recipient: testRecipient,
		Value:     value,
	}
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("two hours for twice the hourly rate", func(t *testing.T) {
		f := newServiceFixture(t, false)

		amount := new(big.Int).Mul(testCostPerHour, big.NewInt(2))
		f.store.EXPECT().GetOwnershipByTxHash(ctx, testTxHash).Return(nil, nil)
		f.observer.EXPECT().Observe(ctx, testTxHash).Return(successfulObservation(amount), nil)
		f.store.EXPECT().CreateOwnership(ctx, gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, event *messaging.Event) error {
				assert.Equal(t, messaging.EventOwnershipCreated, event.Type)
				return nil
			})

		ownership, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       testTxHash,
			OwnerAddress: testOwner,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, ownership.ID)
		assert.Equal(t, domain.NormalizeAddress(testOwner), ownership.OwnerAddress)
		assert.Equal(t, testTxHash, ownership.TxHash)
		assert.Equal(t, int64(7200), ownership.DurationSeconds)
		assert.Equal(t, f.now, ownership.StartsAt)
		assert.Equal(t, f.now.Add(2*time.Hour), ownership.ExpiresAt)
	})

	t.Run("malformed hash rejected without any chain call", func(t *testing.T) {
		f := newServiceFixture(t, false)

		_, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       "0xdeadbeef",
			OwnerAddress: testOwner,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("malformed owner address rejected", func(t *testing.T) {
		f := newServiceFixture(t, false)

		_, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       testTxHash,
			OwnerAddress: "not-an-address",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("image combined with color rejected", func(t *testing.T) {
		f := newServiceFixture(t, false)

		image := "https://example.com/skin.png"
		color := "#ff0000"
		_, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       testTxHash,
			OwnerAddress: testOwner,
			Visuals:      domain.ButtonVisuals{ButtonImageURL: &image, ButtonColor: &color},
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("reused transaction rejected by pre-check", func(t *testing.T) {
		f := newServiceFixture(t, false)

		f.store.EXPECT().GetOwnershipByTxHash(ctx, testTxHash).
			Return(&schema.ButtonOwnership{ID: "existing", TxHash: testTxHash}, nil)

		_, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       testTxHash,
			OwnerAddress: testOwner,
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateTransaction)
	})

	t.Run("global uniqueness also checks links", func(t *testing.T) {
		f := newServiceFixture(t, true)

		f.store.EXPECT().GetOwnershipByTxHash(ctx, testTxHash).Return(nil, nil)
		f.store.EXPECT().GetLinkByTxHash(ctx, testTxHash).
			Return(&schema.Link{ID: "existing", TxHash: testTxHash}, nil)

		_, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       testTxHash,
			OwnerAddress: testOwner,
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateTransaction)
	})

	t.Run("sender mismatch rejected", func(t *testing.T) {
		f := newServiceFixture(t, false)

		obs := successfulObservation(new(big.Int).Set(testCostPerHour))
		obs.Sender = "0xDe709F2102306220921060314715629080E2fB77"
		f.store.EXPECT().GetOwnershipByTxHash(ctx, testTxHash).Return(nil, nil)
		f.observer.EXPECT().Observe(ctx, testTxHash).Return(obs, nil)

		_, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       testTxHash,
			OwnerAddress: testOwner,
		})
		assert.ErrorIs(t, err, domain.ErrSenderMismatch)
	})

	t.Run("half the hourly rate buys nothing", func(t *testing.T) {
		f := newServiceFixture(t, false)

		amount := new(big.Int).Div(testCostPerHour, big.NewInt(2))
		f.store.EXPECT().GetOwnershipByTxHash(ctx, testTxHash).Return(nil, nil)
		f.observer.EXPECT().Observe(ctx, testTxHash).Return(successfulObservation(amount), nil)

		_, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       testTxHash,
			OwnerAddress: testOwner,
		})
		assert.ErrorIs(t, err, domain.ErrPaymentTooSmall)
	})

	t.Run("wrong recipient rejected", func(t *testing.T) {
		f := newServiceFixture(t, false)

		obs := successfulObservation(new(big.Int).Set(testCostPerHour))
		obs.Recipient = "0xDe709F2102306220921060314715629080E2fB77"
		f.store.EXPECT().GetOwnershipByTxHash(ctx, testTxHash).Return(nil, nil)
		f.observer.EXPECT().Observe(ctx, testTxHash).Return(obs, nil)

		_, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       testTxHash,
			OwnerAddress: testOwner,
		})
		assert.ErrorIs(t, err, domain.ErrWrongRecipient)
	})

	t.Run("observer failure propagates", func(t *testing.T) {
		f := newServiceFixture(t, false)

		f.store.EXPECT().GetOwnershipByTxHash(ctx, testTxHash).Return(nil, nil)
		f.observer.EXPECT().Observe(ctx, testTxHash).
			Return(nil, domain.ErrTransactionNotYetVisible)

		_, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       testTxHash,
			OwnerAddress: testOwner,
		})
		assert.ErrorIs(t, err, domain.ErrTransactionNotYetVisible)
	})

	t.Run("publish failure does not fail the purchase", func(t *testing.T) {
		f := newServiceFixture(t, false)

		f.store.EXPECT().GetOwnershipByTxHash(ctx, testTxHash).Return(nil, nil)
		f.observer.EXPECT().Observe(ctx, testTxHash).
			Return(successfulObservation(new(big.Int).Set(testCostPerHour)), nil)
		f.store.EXPECT().CreateOwnership(ctx, gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("broker down"))

		_, err := f.service.Purchase(ctx, PurchaseParams{
			TxHash:       testTxHash,
			OwnerAddress: testOwner,
		})
		assert.NoError(t, err)
	})
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()

	t.Run("nobody owns the button", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.store.EXPECT().GetActiveOwnership(ctx, f.now).Return(nil, nil)

		current, err := f.service.Current(ctx)
		require.NoError(t, err)
		assert.Nil(t, current)
	})

	t.Run("active ownership with remaining time", func(t *testing.T) {
		f := newServiceFixture(t, false)

		active := &store.ActiveOwnership{
			Ownership: schema.ButtonOwnership{
				ID:        "own-1",
				ExpiresAt: f.now.Add(90 * time.Second),
			},
			Link: &schema.Link{ID: "link-1", URL: "https://example.com"},
		}
		f.store.EXPECT().GetActiveOwnership(ctx, f.now).Return(active, nil)

		current, err := f.service.Current(ctx)
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, "own-1", current.Ownership.ID)
		assert.Equal(t, int64(90), current.RemainingSeconds)
		require.NotNil(t, current.Link)
		assert.Equal(t, "https://example.com", current.Link.URL)
	})
}

func TestSetLink(t *testing.T) {
	ctx := context.Background()

	activeOwnership := func(now time.Time) *schema.ButtonOwnership {
		return &schema.ButtonOwnership{
			ID:           "own-1",
			OwnerAddress: domain.NormalizeAddress(testOwner),
			TxHash:       testTxHash,
			ExpiresAt:    now.Add(time.Hour),
		}
	}

	t.Run("creates the first link", func(t *testing.T) {
		f := newServiceFixture(t, false)

		f.store.EXPECT().GetOwnershipByID(ctx, "own-1").Return(activeOwnership(f.now), nil)
		f.store.EXPECT().GetLinkByOwnershipID(ctx, "own-1").Return(nil, nil)
		f.store.EXPECT().CreateLink(ctx, gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, event *messaging.Event) error {
				assert.Equal(t, messaging.EventLinkCreated, event.Type)
				return nil
			})

		link, err := f.service.SetLink(ctx, LinkParams{
			OwnershipID:      "own-1",
			RequesterAddress: testOwner,
			URL:              "https://example.com/page",
		})
		require.NoError(t, err)
		require.NotNil(t, link.OwnershipID)
		assert.Equal(t, "own-1", *link.OwnershipID)
		assert.Equal(t, "https://example.com/page", link.URL)
		assert.Equal(t, testTxHash, link.TxHash)
	})

	t.Run("replaces an existing link", func(t *testing.T) {
		f := newServiceFixture(t, false)

		existing := &schema.Link{ID: "link-1", URL: "https://old.example.com"}
		updated := &schema.Link{ID: "link-1", URL: "https://new.example.com"}
		f.store.EXPECT().GetOwnershipByID(ctx, "own-1").Return(activeOwnership(f.now), nil)
		f.store.EXPECT().GetLinkByOwnershipID(ctx, "own-1").Return(existing, nil)
		f.store.EXPECT().UpdateLinkURL(ctx, "own-1", "https://new.example.com").Return(updated, nil)
		f.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

		link, err := f.service.SetLink(ctx, LinkParams{
			OwnershipID:      "own-1",
			RequesterAddress: testOwner,
			URL:              "https://new.example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://new.example.com", link.URL)
	})

	t.Run("unknown ownership", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.store.EXPECT().GetOwnershipByID(ctx, "missing").Return(nil, nil)

		_, err := f.service.SetLink(ctx, LinkParams{
			OwnershipID:      "missing",
			RequesterAddress: testOwner,
			URL:              "https://example.com",
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("only the owner may set the link", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.store.EXPECT().GetOwnershipByID(ctx, "own-1").Return(activeOwnership(f.now), nil)

		_, err := f.service.SetLink(ctx, LinkParams{
			OwnershipID:      "own-1",
			RequesterAddress: "0xDe709F2102306220921060314715629080E2fB77",
			URL:              "https://example.com",
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("one second before expiry still succeeds", func(t *testing.T) {
		f := newServiceFixture(t, false)

		almostExpired := activeOwnership(f.now)
		almostExpired.ExpiresAt = f.now.Add(time.Second)
		f.store.EXPECT().GetOwnershipByID(ctx, "own-1").Return(almostExpired, nil)
		f.store.EXPECT().GetLinkByOwnershipID(ctx, "own-1").Return(nil, nil)
		f.store.EXPECT().CreateLink(ctx, gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

		_, err := f.service.SetLink(ctx, LinkParams{
			OwnershipID:      "own-1",
			RequesterAddress: testOwner,
			URL:              "https://example.com",
		})
		require.NoError(t, err)
	})

	t.Run("expired ownership cannot be modified", func(t *testing.T) {
		f := newServiceFixture(t, false)

		expired := activeOwnership(f.now)
		expired.ExpiresAt = f.now.Add(-time.Second)
		f.store.EXPECT().GetOwnershipByID(ctx, "own-1").Return(expired, nil)

		_, err := f.service.SetLink(ctx, LinkParams{
			OwnershipID:      "own-1",
			RequesterAddress: testOwner,
			URL:              "https://example.com",
		})
		assert.ErrorIs(t, err, domain.ErrOwnershipExpired)
	})

	t.Run("relative url rejected", func(t *testing.T) {
		f := newServiceFixture(t, false)

		_, err := f.service.SetLink(ctx, LinkParams{
			OwnershipID:      "own-1",
			RequesterAddress: testOwner,
			URL:              "/just/a/path",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestSetVisuals(t *testing.T) {
	ctx := context.Background()
	color := "#00ff00"
	emoji := "🚀"
	image := "https://example.com/skin.png"

	t.Run("updates color and emoji", func(t *testing.T) {
		f := newServiceFixture(t, false)

		ownership := &schema.ButtonOwnership{
			ID:           "own-1",
			OwnerAddress: domain.NormalizeAddress(testOwner),
			ExpiresAt:    f.now.Add(time.Hour),
		}
		updated := &schema.ButtonOwnership{ID: "own-1", ButtonColor: &color, ButtonEmoji: &emoji}
		f.store.EXPECT().GetOwnershipByID(ctx, "own-1").Return(ownership, nil)
		f.store.EXPECT().UpdateOwnershipVisuals(ctx, "own-1", &color, &emoji, nil).Return(updated, nil)
		f.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, event *messaging.Event) error {
				assert.Equal(t, messaging.EventOwnershipUpdated, event.Type)
				return nil
			})

		result, err := f.service.SetVisuals(ctx, "own-1", testOwner, domain.ButtonVisuals{
			ButtonColor: &color,
			ButtonEmoji: &emoji,
		})
		require.NoError(t, err)
		assert.Equal(t, &color, result.ButtonColor)
	})

	t.Run("image excludes color", func(t *testing.T) {
		f := newServiceFixture(t, false)

		_, err := f.service.SetVisuals(ctx, "own-1", testOwner, domain.ButtonVisuals{
			ButtonColor:    &color,
			ButtonImageURL: &image,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("empty update rejected", func(t *testing.T) {
		f := newServiceFixture(t, false)

		_, err := f.service.SetVisuals(ctx, "own-1", testOwner, domain.ButtonVisuals{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestSubmitLink(t *testing.T) {
	ctx := context.Background()

	t.Run("legacy payment buys one link", func(t *testing.T) {
		f := newServiceFixture(t, false)

		f.store.EXPECT().GetLinkByTxHash(ctx, testTxHash).Return(nil, nil)
		f.observer.EXPECT().Observe(ctx, testTxHash).
			Return(successfulObservation(new(big.Int).Set(testCostPerHour)), nil)
		f.store.EXPECT().CreateLink(ctx, gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

		link, err := f.service.SubmitLink(ctx, SubmitLinkParams{
			TxHash:      testTxHash,
			URL:         "https://example.com",
			SubmittedBy: testOwner,
		})
		require.NoError(t, err)
		assert.Nil(t, link.OwnershipID)
		assert.Equal(t, domain.NormalizeAddress(testOwner), link.SubmittedBy)
	})

	t.Run("reused transaction rejected", func(t *testing.T) {
		f := newServiceFixture(t, false)

		f.store.EXPECT().GetLinkByTxHash(ctx, testTxHash).
			Return(&schema.Link{ID: "existing"}, nil)

		_, err := f.service.SubmitLink(ctx, SubmitLinkParams{
			TxHash:      testTxHash,
			URL:         "https://example.com",
			SubmittedBy: testOwner,
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateTransaction)
	})
}

func TestRecordClick(t *testing.T) {
	ctx := context.Background()

	t.Run("click against the current link", func(t *testing.T) {
		f := newServiceFixture(t, false)

		f.store.EXPECT().GetCurrentLink(ctx).Return(&schema.Link{ID: "link-1"}, nil)
		f.store.EXPECT().CreateClick(ctx, gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, event *messaging.Event) error {
				assert.Equal(t, messaging.EventClickCreated, event.Type)
				return nil
			})

		visitor := "anonymous"
		click, err := f.service.RecordClick(ctx, ClickParams{ClickedBy: &visitor})
		require.NoError(t, err)
		require.NotNil(t, click.LinkID)
		assert.Equal(t, "link-1", *click.LinkID)
		assert.Equal(t, f.now, click.ClickedAt)
	})

	t.Run("click with no link set", func(t *testing.T) {
		f := newServiceFixture(t, false)

		f.store.EXPECT().GetCurrentLink(ctx).Return(nil, nil)
		f.store.EXPECT().CreateClick(ctx, gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

		click, err := f.service.RecordClick(ctx, ClickParams{})
		require.NoError(t, err)
		assert.Nil(t, click.LinkID)
	})
}
