package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/biddingerrors"
	model "storefront/internal/models"

	"github.com/stretchr/testify/require"
)

// Helper to create a new listing
func newListing(listingID, title string, basePrice float64, closesAt *time.Time) model.AuctionListing {
	return model.AuctionListing{
		ListingID: listingID,
		Title:     title,
		BasePrice: basePrice,
		Price:     basePrice,
		Specs:     []model.Spec{{Key: "Condition", Value: fmt.Sprintf("%s used", title)}},
		ClosesAt:  closesAt,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func float64Ptr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

// Test CreateAuctionListing
func TestMemoryRepo_CreateAuctionListing(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	ctx := context.Background()

	created, err := repo.CreateAuctionListing(ctx, model.AuctionListing{Title: "Camera", BasePrice: 1000, Price: 5})
	require.NoError(t, err)
	require.NotEmpty(t, created.ListingID)
	require.Equal(t, 1000.0, created.Price, "price starts at base price")
	require.Equal(t, int64(1), created.Version)
	require.Empty(t, created.Bids)
	require.False(t, created.CreatedAt.IsZero())

	fetched, err := repo.GetAuctionListing(ctx, created.ListingID)
	require.NoError(t, err)
	require.Equal(t, created.Title, fetched.Title)
	require.NotNil(t, fetched.Bids)

	t.Run("cancelled_context", func(t *testing.T) {
		t.Parallel()

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := repo.CreateAuctionListing(cancelled, model.AuctionListing{Title: "x", BasePrice: 1})
		require.ErrorIs(t, err, biddingerrors.ErrPersistence)
	})
}

// Test GetAuctionListing
func TestMemoryRepo_GetAuctionListing(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	now := time.Now().UTC()
	repo.AddListing(newListing("l1", "Listing 1", 50, nil))
	withBids := newListing("l2", "Listing 2", 75, nil)
	withBids.Bids = []model.Bid{{Amount: 100, BidderName: "Ali", SubmittedAt: now}}
	repo.AddListing(withBids)
	repo.AddListing(newListing("l3", "Listing 3", 75, nil))
	repo.SetRawBids("l3", `not json`)

	tests := []struct {
		name      string
		listingID string
		wantBids  int
		wantError error
	}{
		{name: "listing_without_bids", listingID: "l1", wantBids: 0},
		{name: "listing_with_bids", listingID: "l2", wantBids: 1},
		{name: "non_existing_listing", listingID: "lX", wantError: biddingerrors.ErrListingNotFound},
		{name: "malformed_bids", listingID: "l3", wantError: biddingerrors.ErrMalformedBids},
		{name: "empty_listingID", listingID: "", wantError: biddingerrors.ErrListingNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			listing, err := repo.GetAuctionListing(context.Background(), tc.listingID)
			if tc.wantError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.wantError), "expected error: %v, got: %v", tc.wantError, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, listing.Bids, tc.wantBids)
		})
	}

	t.Run("returned_copy_is_isolated", func(t *testing.T) {
		t.Parallel()

		closes := now.Add(time.Hour)
		repo := NewMemoryRepo()
		repo.AddListing(newListing("iso", "Iso", 10, &closes))

		first, err := repo.GetAuctionListing(context.Background(), "iso")
		require.NoError(t, err)
		*first.ClosesAt = first.ClosesAt.Add(48 * time.Hour)
		first.Specs[0].Value = "mutated"

		second, err := repo.GetAuctionListing(context.Background(), "iso")
		require.NoError(t, err)
		require.True(t, closes.Equal(*second.ClosesAt))
		require.NotEqual(t, "mutated", second.Specs[0].Value)
	})

	t.Run("malformed_bids_keep_other_columns", func(t *testing.T) {
		t.Parallel()

		repo := NewMemoryRepo()
		repo.AddListing(newListing("broken", "Broken", 10, nil))
		repo.SetRawBids("broken", `{not json`)

		listing, err := repo.GetAuctionListing(context.Background(), "broken")
		require.ErrorIs(t, err, biddingerrors.ErrMalformedBids)
		require.Equal(t, "broken", listing.ListingID)
		require.Equal(t, "Broken", listing.Title)
		require.Equal(t, int64(1), listing.Version)
		require.Nil(t, listing.Bids)

		updated, err := repo.UpdateAuctionListing(context.Background(), "broken", listing.Version, model.ListingUpdate{Ended: boolPtr(true)})
		require.ErrorIs(t, err, biddingerrors.ErrMalformedBids)
		require.True(t, updated.Ended)
		require.Equal(t, int64(2), updated.Version)
	})
}

// Test UpdateAuctionListing
func TestMemoryRepo_UpdateAuctionListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("version_checked_write", func(t *testing.T) {
		t.Parallel()

		repo := NewMemoryRepo()
		repo.AddListing(newListing("l1", "Listing 1", 1000, nil))

		bids := []model.Bid{{Amount: 1200, BidderName: "Ali", SubmittedAt: now}}
		updated, err := repo.UpdateAuctionListing(ctx, "l1", 1, model.ListingUpdate{
			Bids: bids, SetBids: true, Price: float64Ptr(1200),
		})
		require.NoError(t, err)
		require.Equal(t, int64(2), updated.Version)
		require.Equal(t, 1200.0, updated.Price)
		require.Len(t, updated.Bids, 1)
		require.Equal(t, "Ali", updated.Bids[0].BidderName)

		_, err = repo.UpdateAuctionListing(ctx, "l1", 1, model.ListingUpdate{Ended: boolPtr(true)})
		require.ErrorIs(t, err, biddingerrors.ErrStaleListing)

		stored, err := repo.GetAuctionListing(ctx, "l1")
		require.NoError(t, err)
		require.False(t, stored.Ended)
	})

	t.Run("close_time_set_and_cleared", func(t *testing.T) {
		t.Parallel()

		repo := NewMemoryRepo()
		repo.AddListing(newListing("l1", "Listing 1", 1000, nil))

		closes := now.Add(time.Hour)
		updated, err := repo.UpdateAuctionListing(ctx, "l1", 1, model.ListingUpdate{ClosesAt: &closes})
		require.NoError(t, err)
		require.NotNil(t, updated.ClosesAt)
		require.Equal(t, model.ListingScheduled, updated.State())

		updated, err = repo.UpdateAuctionListing(ctx, "l1", 2, model.ListingUpdate{ClosesAt: &closes, ClearClosesAt: true})
		require.NoError(t, err)
		require.Nil(t, updated.ClosesAt)
		require.Equal(t, model.ListingOpen, updated.State())
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		repo := NewMemoryRepo()
		_, err := repo.UpdateAuctionListing(ctx, "missing", 1, model.ListingUpdate{})
		require.ErrorIs(t, err, biddingerrors.ErrListingNotFound)
	})

	// concurrent writers racing on the same version: exactly one wins
	t.Run("concurrent_writers", func(t *testing.T) {
		t.Parallel()

		repo := NewMemoryRepo()
		repo.AddListing(newListing("l1", "Listing 1", 50, nil))

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			i := i
			go func() {
				defer wg.Done()
				bid := model.Bid{Amount: float64(100 + i), BidderName: fmt.Sprintf("user-%d", i), SubmittedAt: time.Now()}
				_, err := repo.UpdateAuctionListing(ctx, "l1", 1, model.ListingUpdate{Bids: []model.Bid{bid}, SetBids: true})
				if err == nil {
					mu.Lock()
					accepted++
					mu.Unlock()
					return
				}
				require.ErrorIs(t, err, biddingerrors.ErrStaleListing)
			}()
		}
		wg.Wait()

		require.Equal(t, 1, accepted)
		stored, err := repo.GetAuctionListing(ctx, "l1")
		require.NoError(t, err)
		require.Equal(t, int64(2), stored.Version)
		require.Len(t, stored.Bids, 1)
	})
}

// Test ListOpenScheduledAuctions
func TestMemoryRepo_ListOpenScheduledAuctions(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	repo := NewMemoryRepo()

	due := newListing("due", "Due", 10, timePtr(now.Add(-time.Minute)))
	atCutoff := newListing("at-cutoff", "At cutoff", 10, timePtr(now))
	future := newListing("future", "Future", 10, timePtr(now.Add(time.Hour)))
	unscheduled := newListing("open", "Open", 10, nil)
	ended := newListing("ended", "Ended", 10, timePtr(now.Add(-time.Hour)))
	ended.Ended = true
	broken := newListing("broken", "Broken", 10, timePtr(now.Add(-time.Hour)))

	for _, l := range []model.AuctionListing{due, atCutoff, future, unscheduled, ended, broken} {
		repo.AddListing(l)
	}
	repo.SetRawBids("broken", `[{"amount": {}}]`)

	batch, err := repo.ListOpenScheduledAuctions(context.Background(), now)
	require.NoError(t, err)

	ids := make([]string, 0, len(batch.Listings))
	for _, l := range batch.Listings {
		ids = append(ids, l.ListingID)
	}
	require.ElementsMatch(t, []string{"due", "at-cutoff"}, ids)
	require.Len(t, batch.Malformed, 1)
	require.Equal(t, "broken", batch.Malformed[0].ListingID)
	require.ErrorIs(t, batch.Malformed[0].Err, biddingerrors.ErrMalformedBids)
}

// Test ListAuctionListings
func TestMemoryRepo_ListAuctionListings(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC()
	repo := NewMemoryRepo()
	for i := 0; i < 5; i++ {
		l := newListing(fmt.Sprintf("l%d", i), fmt.Sprintf("Listing %d", i), 10, nil)
		l.CreatedAt = base.Add(time.Duration(5-i) * time.Second)
		repo.AddListing(l)
	}

	batch, err := repo.ListAuctionListings(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Listings, 5)
	require.Equal(t, "l4", batch.Listings[0].ListingID)
	require.Equal(t, "l0", batch.Listings[4].ListingID)
}

// Test CreateNotification
func TestMemoryRepo_CreateNotification(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	err := repo.CreateNotification(context.Background(), model.Notification{
		Type:    model.NotificationAuctionWinner,
		Title:   "Auction Won!",
		Message: "hello",
	})
	require.NoError(t, err)

	stored := repo.Notifications()
	require.Len(t, stored, 1)
	require.Equal(t, model.NotificationAuctionWinner, stored[0].Type)
	require.False(t, stored[0].CreatedAt.IsZero())
}
