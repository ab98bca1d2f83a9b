package ownership

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/mysterylink/button-server/internal/mocks"
	"github.com/mysterylink/button-server/internal/store"
	"github.com/mysterylink/button-server/internal/store/schema"
)

func TestWatcherTick(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newFixture := func(t *testing.T) (*Watcher, *mocks.MockStore) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockStore(ctrl)
		clock := mocks.NewMockClock(ctrl)
		clock.EXPECT().Now().Return(now).AnyTimes()
		return NewWatcher(mockStore, clock, time.Minute), mockStore
	}

	active := &store.ActiveOwnership{
		Ownership: schema.ButtonOwnership{
			ID:           "own-1",
			OwnerAddress: "0xabc",
			ExpiresAt:    now.Add(time.Hour),
		},
	}

	t.Run("tracks the active ownership across ticks", func(t *testing.T) {
		w, mockStore := newFixture(t)

		// free -> owned -> owned (same) -> free
		gomock.InOrder(
			mockStore.EXPECT().GetActiveOwnership(ctx, now).Return(nil, nil),
			mockStore.EXPECT().GetActiveOwnership(ctx, now).Return(active, nil),
			mockStore.EXPECT().GetActiveOwnership(ctx, now).Return(active, nil),
			mockStore.EXPECT().GetActiveOwnership(ctx, now).Return(nil, nil),
		)

		w.tick(ctx)
		assert.Equal(t, "", w.lastActiveID)
		w.tick(ctx)
		assert.Equal(t, "own-1", w.lastActiveID)
		w.tick(ctx)
		assert.Equal(t, "own-1", w.lastActiveID)
		w.tick(ctx)
		assert.Equal(t, "", w.lastActiveID)
	})

	t.Run("query failure keeps the last state", func(t *testing.T) {
		w, mockStore := newFixture(t)
		w.lastActiveID = "own-1"

		mockStore.EXPECT().GetActiveOwnership(ctx, now).Return(nil, errors.New("db down"))

		w.tick(ctx)
		assert.Equal(t, "own-1", w.lastActiveID)
	})
}
