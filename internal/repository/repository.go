package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/biddingerrors"
	model "storefront/internal/models"
	"storefront/utils"
)

// AuctionDB defines the record store the auction engine reads from and writes to
type AuctionDB interface {
	CreateAuctionListing(ctx context.Context, listing model.AuctionListing) (model.AuctionListing, error)
	// GetAuctionListing and UpdateAuctionListing return every column except Bids
	// alongside an ErrMalformedBids error, so a listing with unreadable bids can still be closed.
	GetAuctionListing(ctx context.Context, listingID string) (model.AuctionListing, error)
	ListAuctionListings(ctx context.Context) (ListingBatch, error)
	// UpdateAuctionListing applies update only if the stored version still equals expectedVersion.
	UpdateAuctionListing(ctx context.Context, listingID string, expectedVersion int64, update model.ListingUpdate) (model.AuctionListing, error)
	// ListOpenScheduledAuctions returns listings with ended=false and closesAt <= cutoff.
	ListOpenScheduledAuctions(ctx context.Context, cutoff time.Time) (ListingBatch, error)
	CreateNotification(ctx context.Context, n model.Notification) error
}

// MalformedListing is a listing whose stored bid data could not be decoded
type MalformedListing struct {
	ListingID string
	Err       error
}

// ListingBatch is the result of a multi-row read. Rows with undecodable bids
// are reported separately instead of failing the whole read.
type ListingBatch struct {
	Listings  []model.AuctionListing
	Malformed []MalformedListing
}

type storedListing struct {
	listing model.AuctionListing // Bids left nil; rawBids is authoritative
	rawBids any
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu            sync.RWMutex
	listings      map[string]*storedListing // key: listingID
	notifications []model.Notification
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		listings: make(map[string]*storedListing),
	}
}

// CreateAuctionListing stores a new listing with an empty bid sequence
func (r *MemoryRepo) CreateAuctionListing(ctx context.Context, listing model.AuctionListing) (model.AuctionListing, error) {
	if err := ctx.Err(); err != nil {
		return model.AuctionListing{}, fmt.Errorf("create listing: %v: %w", err, biddingerrors.ErrPersistence)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.ListingID == "" {
		listing.ListingID = utils.GenerateID()
	}
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now().UTC()
	}
	listing.Price = listing.BasePrice
	listing.Version = 1

	encoded, err := EncodeBids(nil)
	if err != nil {
		return model.AuctionListing{}, fmt.Errorf("create listing %s: %w", listing.ListingID, err)
	}
	stored := &storedListing{listing: listing, rawBids: encoded}
	stored.listing.Bids = nil
	r.listings[listing.ListingID] = stored

	listing.Bids = []model.Bid{}
	return listing, nil
}

// GetAuctionListing returns a listing with its decoded bids
func (r *MemoryRepo) GetAuctionListing(ctx context.Context, listingID string) (model.AuctionListing, error) {
	if err := ctx.Err(); err != nil {
		return model.AuctionListing{}, fmt.Errorf("get listing %s: %v: %w", listingID, err, biddingerrors.ErrPersistence)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.listings[listingID]
	if !ok {
		return model.AuctionListing{}, fmt.Errorf("get listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	return hydrate(stored)
}

// ListAuctionListings returns every listing ordered by creation time
func (r *MemoryRepo) ListAuctionListings(ctx context.Context) (ListingBatch, error) {
	return r.filter(ctx, func(model.AuctionListing) bool { return true })
}

// ListOpenScheduledAuctions returns open listings whose close time is at or before cutoff
func (r *MemoryRepo) ListOpenScheduledAuctions(ctx context.Context, cutoff time.Time) (ListingBatch, error) {
	return r.filter(ctx, func(l model.AuctionListing) bool {
		return !l.Ended && l.ClosesAt != nil && !l.ClosesAt.After(cutoff)
	})
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(model.AuctionListing) bool) (ListingBatch, error) {
	if err := ctx.Err(); err != nil {
		return ListingBatch{}, fmt.Errorf("list listings: %v: %w", err, biddingerrors.ErrPersistence)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*storedListing, 0, len(r.listings))
	for _, stored := range r.listings {
		if keep(stored.listing) {
			matched = append(matched, stored)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].listing, matched[j].listing
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ListingID < b.ListingID
	})

	batch := ListingBatch{Listings: make([]model.AuctionListing, 0, len(matched))}
	for _, stored := range matched {
		listing, err := hydrate(stored)
		if err != nil {
			batch.Malformed = append(batch.Malformed, MalformedListing{ListingID: stored.listing.ListingID, Err: err})
			continue
		}
		batch.Listings = append(batch.Listings, listing)
	}
	return batch, nil
}

// UpdateAuctionListing performs a version-checked write of the given fields
func (r *MemoryRepo) UpdateAuctionListing(ctx context.Context, listingID string, expectedVersion int64, update model.ListingUpdate) (model.AuctionListing, error) {
	if err := ctx.Err(); err != nil {
		return model.AuctionListing{}, fmt.Errorf("update listing %s: %v: %w", listingID, err, biddingerrors.ErrPersistence)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.listings[listingID]
	if !ok {
		return model.AuctionListing{}, fmt.Errorf("update listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	if stored.listing.Version != expectedVersion {
		return model.AuctionListing{}, fmt.Errorf("update listing %s at version %d (stored %d): %w",
			listingID, expectedVersion, stored.listing.Version, biddingerrors.ErrStaleListing)
	}

	next := stored.listing
	if update.SetBids {
		encoded, err := EncodeBids(update.Bids)
		if err != nil {
			return model.AuctionListing{}, fmt.Errorf("update listing %s: %w", listingID, err)
		}
		stored.rawBids = encoded
	}
	if update.Price != nil {
		next.Price = *update.Price
	}
	if update.Ended != nil {
		next.Ended = *update.Ended
	}
	if update.ClearClosesAt {
		next.ClosesAt = nil
	} else if update.ClosesAt != nil {
		t := update.ClosesAt.UTC()
		next.ClosesAt = &t
	}
	next.Version++
	stored.listing = next

	return hydrate(stored)
}

// CreateNotification appends a CMS notification
func (r *MemoryRepo) CreateNotification(ctx context.Context, n model.Notification) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("create notification: %v: %w", err, biddingerrors.ErrPersistence)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	r.notifications = append(r.notifications, n)
	return nil
}

// AddListing stores a listing as-is, bids included. This method is intended for seeding and tests.
func (r *MemoryRepo) AddListing(listing model.AuctionListing) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.Version == 0 {
		listing.Version = 1
	}
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now().UTC()
	}
	stored := &storedListing{listing: listing, rawBids: listing.Bids}
	stored.listing.Bids = nil
	r.listings[listing.ListingID] = stored
}

// SetRawBids replaces a listing's stored bid column with an arbitrary value. This method is intended for tests only.
func (r *MemoryRepo) SetRawBids(listingID string, raw any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.listings[listingID]; ok {
		stored.rawBids = raw
	}
}

// Notifications returns a copy of the stored notifications
func (r *MemoryRepo) Notifications() []model.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Notification(nil), r.notifications...)
}

func hydrate(stored *storedListing) (model.AuctionListing, error) {
	listing := stored.listing
	listing.Specs = append([]model.Spec{}, listing.Specs...)
	if listing.ClosesAt != nil {
		t := *listing.ClosesAt
		listing.ClosesAt = &t
	}
	bids, err := DecodeBids(stored.rawBids)
	if err != nil {
		return listing, fmt.Errorf("listing %s: %w", listing.ListingID, err)
	}
	listing.Bids = bids
	return listing, nil
}
