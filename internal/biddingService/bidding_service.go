package bidding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"storefront/internal/biddingerrors"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/utils"
)

// maxBidAttempts bounds the read-validate-write loop when the listing changes underneath a bid.
const maxBidAttempts = 3

// Options tunes an AuctionService. Zero values fall back to the defaults below.
type Options struct {
	StoreTimeout time.Duration
	// ClockOffset is subtracted from closesAt when deciding whether a listing is due.
	ClockOffset time.Duration
	Now         func() time.Time
}

// AuctionService validates bids, closes auctions and picks winners
type AuctionService struct {
	repo         repository.AuctionDB
	notifier     notify.Notifier
	storeTimeout time.Duration
	clockOffset  time.Duration
	now          func() time.Time
}

// PlaceBidResult is returned for an accepted bid
type PlaceBidResult struct {
	Accepted        bool    `json:"accepted"`
	NewCurrentPrice float64 `json:"new_current_price"`
	TotalBids       int     `json:"total_bids"`
}

// CloseResult describes one closed listing. WinnerName is nil when the listing had no readable bids.
type CloseResult struct {
	ListingID     string  `json:"listing_id"`
	WinnerName    *string `json:"winner_name"`
	WinningAmount float64 `json:"winning_amount"`
}

// NewListingInput carries the admin-supplied fields of a new listing
type NewListingInput struct {
	Title         string
	BasePrice     float64
	ImageURL      string
	Specs         []models.Spec
	IncludedItems []string
	ClosesAt      *time.Time
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, notifier notify.Notifier, opts Options) *AuctionService {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &AuctionService{
		repo:         repo,
		notifier:     notifier,
		storeTimeout: opts.StoreTimeout,
		clockOffset:  opts.ClockOffset,
		now:          opts.Now,
	}
}

// PlaceBid validates and appends a bid, persisting the bid sequence and price in one conditional write
func (s *AuctionService) PlaceBid(ctx context.Context, listingID string, amount float64, bidderName string) (PlaceBidResult, error) {
	bidderName = strings.TrimSpace(bidderName)
	if err := validateBid(listingID, amount, bidderName); err != nil {
		return PlaceBidResult{}, err
	}

	for attempt := 1; attempt <= maxBidAttempts; attempt++ {
		listing, err := s.getListing(ctx, listingID)
		if err != nil {
			return PlaceBidResult{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
		}
		if listing.Ended {
			return PlaceBidResult{}, fmt.Errorf("service: %w - listing %s", biddingerrors.ErrListingEnded, listingID)
		}

		highest := listing.HighestAmount()
		if amount <= highest {
			return PlaceBidResult{}, fmt.Errorf("service: %w - current highest bid is %.2f", biddingerrors.ErrBidTooLow, highest)
		}

		bids := make([]models.Bid, 0, len(listing.Bids)+1)
		bids = append(bids, listing.Bids...)
		bids = append(bids, models.Bid{Amount: amount, BidderName: bidderName, SubmittedAt: s.now()})

		updated, err := s.updateListing(ctx, listingID, listing.Version, models.ListingUpdate{
			Bids:    bids,
			SetBids: true,
			Price:   &amount,
		})
		if errors.Is(err, biddingerrors.ErrStaleListing) {
			utils.Debug("PlaceBid: listing changed before write, retrying", map[string]any{
				"listing_id": listingID,
				"attempt":    attempt,
			})
			continue
		}
		if err != nil {
			return PlaceBidResult{}, fmt.Errorf("service: failed to record bid on listing %s: %w", listingID, err)
		}

		return PlaceBidResult{
			Accepted:        true,
			NewCurrentPrice: updated.Price,
			TotalBids:       len(updated.Bids),
		}, nil
	}

	return PlaceBidResult{}, fmt.Errorf("service: %w - listing %s kept changing after %d attempts",
		biddingerrors.ErrStaleListing, listingID, maxBidAttempts)
}

func validateBid(listingID string, amount float64, bidderName string) error {
	if listingID == "" {
		return fmt.Errorf("service: %w - missing listing ID", biddingerrors.ErrInvalidBid)
	}
	if bidderName == "" {
		return fmt.Errorf("service: %w - missing bidder name", biddingerrors.ErrInvalidBid)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("service: %w - amount must be a positive number", biddingerrors.ErrInvalidAmount)
	}
	return nil
}

// CloseExpiredAuctions ends every open listing whose close time has passed and notifies winners.
// A listing whose bids cannot be decoded is skipped; the next sweep sees it again.
func (s *AuctionService) CloseExpiredAuctions(ctx context.Context) ([]CloseResult, error) {
	cutoff := s.now().Add(s.clockOffset)

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	batch, err := s.repo.ListOpenScheduledAuctions(storeCtx, cutoff)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list expired auctions: %w", err)
	}

	for _, m := range batch.Malformed {
		utils.Warn("CloseExpiredAuctions: skipping listing with malformed bids", map[string]any{
			"listing_id": m.ListingID,
			"error":      m.Err.Error(),
		})
	}

	results := make([]CloseResult, 0, len(batch.Listings))
	for _, listing := range batch.Listings {
		result, err := s.closeListing(ctx, listing, func(l models.AuctionListing) bool {
			return l.ClosesAt != nil && !l.ClosesAt.After(cutoff)
		})
		if err != nil {
			utils.Warn("CloseExpiredAuctions: failed to close listing", map[string]any{
				"listing_id": listing.ListingID,
				"error":      err.Error(),
			})
			continue
		}
		results = append(results, result)
	}

	if len(results) > 0 || len(batch.Malformed) > 0 {
		utils.Info("CloseExpiredAuctions: sweep finished", map[string]any{
			"closed":    len(results),
			"skipped":   len(batch.Malformed),
			"cutoff_at": cutoff.Format(time.RFC3339),
		})
	}
	return results, nil
}

// CloseAuctionNow ends a single listing on demand, regardless of its close time
func (s *AuctionService) CloseAuctionNow(ctx context.Context, listingID string) (CloseResult, error) {
	if listingID == "" {
		return CloseResult{}, fmt.Errorf("service: %w - missing listing ID", biddingerrors.ErrInvalidListing)
	}

	listing, err := s.getListing(ctx, listingID)
	unreadable := errors.Is(err, biddingerrors.ErrMalformedBids)
	if err != nil && !unreadable {
		return CloseResult{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}
	if listing.Ended {
		return CloseResult{}, fmt.Errorf("service: %w - listing %s", biddingerrors.ErrListingEnded, listingID)
	}
	if unreadable {
		return s.closeUnreadable(ctx, listing, err)
	}

	result, err := s.closeListing(ctx, listing, nil)
	if err != nil {
		return CloseResult{}, fmt.Errorf("service: failed to close listing %s: %w", listingID, err)
	}
	return result, nil
}

// closeListing marks the listing ended against the version that was read.
// A stale write means the listing changed in between, so it is re-read once and,
// when stillDue is set, re-checked before closing.
func (s *AuctionService) closeListing(ctx context.Context, listing models.AuctionListing, stillDue func(models.AuctionListing) bool) (CloseResult, error) {
	ended := true
	update := models.ListingUpdate{Ended: &ended, ClearClosesAt: true}

	updated, err := s.updateListing(ctx, listing.ListingID, listing.Version, update)
	if errors.Is(err, biddingerrors.ErrStaleListing) {
		fresh, getErr := s.getListing(ctx, listing.ListingID)
		if getErr != nil {
			return CloseResult{}, getErr
		}
		if fresh.Ended {
			return CloseResult{}, fmt.Errorf("%w - listing %s closed concurrently", biddingerrors.ErrListingEnded, listing.ListingID)
		}
		if stillDue != nil && !stillDue(fresh) {
			return CloseResult{}, fmt.Errorf("%w - listing %s was rescheduled", biddingerrors.ErrStaleListing, listing.ListingID)
		}
		updated, err = s.updateListing(ctx, fresh.ListingID, fresh.Version, update)
	}
	if err != nil {
		return CloseResult{}, err
	}

	result := CloseResult{ListingID: updated.ListingID}
	if winning, ok := updated.WinningBid(); ok {
		name := winning.BidderName
		result.WinnerName = &name
		result.WinningAmount = winning.Amount
		s.notify(ctx, models.Notification{
			Type:    models.NotificationAuctionWinner,
			Title:   "Auction Won!",
			Message: fmt.Sprintf("Congratulations! You won the auction for \"%s\" with a bid of PKR %s", updated.Title, formatAmount(winning.Amount)),
		})
	}

	utils.Info("auction closed", map[string]any{
		"listing_id":     result.ListingID,
		"winner":         winnerField(result.WinnerName),
		"winning_amount": result.WinningAmount,
		"total_bids":     len(updated.Bids),
	})
	return result, nil
}

// closeUnreadable ends a listing whose stored bids cannot be decoded. No winner can be
// determined, so the listing closes without one and nobody is notified.
func (s *AuctionService) closeUnreadable(ctx context.Context, listing models.AuctionListing, cause error) (CloseResult, error) {
	ended := true
	update := models.ListingUpdate{Ended: &ended, ClearClosesAt: true}

	// the write lands before the returned row is decoded, so ErrMalformedBids here means it succeeded
	_, err := s.updateListing(ctx, listing.ListingID, listing.Version, update)
	if err != nil && !errors.Is(err, biddingerrors.ErrMalformedBids) {
		return CloseResult{}, fmt.Errorf("service: failed to close listing %s: %w", listing.ListingID, err)
	}

	utils.Warn("auction closed without a winner, stored bids are unreadable", map[string]any{
		"listing_id": listing.ListingID,
		"error":      cause.Error(),
	})
	return CloseResult{ListingID: listing.ListingID}, nil
}

// CreateListing stores a new listing and announces it to the CMS
func (s *AuctionService) CreateListing(ctx context.Context, in NewListingInput) (models.AuctionListing, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return models.AuctionListing{}, fmt.Errorf("service: %w - missing title", biddingerrors.ErrInvalidListing)
	}
	if math.IsNaN(in.BasePrice) || math.IsInf(in.BasePrice, 0) || in.BasePrice <= 0 {
		return models.AuctionListing{}, fmt.Errorf("service: %w - base price must be positive", biddingerrors.ErrInvalidAmount)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	created, err := s.repo.CreateAuctionListing(storeCtx, models.AuctionListing{
		Title:         in.Title,
		BasePrice:     in.BasePrice,
		ImageURL:      in.ImageURL,
		Specs:         in.Specs,
		IncludedItems: in.IncludedItems,
		ClosesAt:      in.ClosesAt,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return models.AuctionListing{}, fmt.Errorf("service: failed to create listing: %w", err)
	}

	s.notify(ctx, models.Notification{
		Type:    models.NotificationAuction,
		Title:   "New Auction Product",
		Message: fmt.Sprintf("New auction product \"%s\" added with starting price PKR %s", created.Title, formatAmount(created.BasePrice)),
	})
	return created, nil
}

// RescheduleListing sets or clears a listing's close time. A nil closesAt returns it to Open.
func (s *AuctionService) RescheduleListing(ctx context.Context, listingID string, closesAt *time.Time) (models.AuctionListing, error) {
	if listingID == "" {
		return models.AuctionListing{}, fmt.Errorf("service: %w - missing listing ID", biddingerrors.ErrInvalidListing)
	}

	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return models.AuctionListing{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}
	if listing.Ended {
		return models.AuctionListing{}, fmt.Errorf("service: %w - listing %s cannot be rescheduled", biddingerrors.ErrListingEnded, listingID)
	}

	update := models.ListingUpdate{ClosesAt: closesAt, ClearClosesAt: closesAt == nil}
	updated, err := s.updateListing(ctx, listingID, listing.Version, update)
	if err != nil {
		return models.AuctionListing{}, fmt.Errorf("service: failed to reschedule listing %s: %w", listingID, err)
	}
	return updated, nil
}

// GetListing returns one listing with its decoded bids
func (s *AuctionService) GetListing(ctx context.Context, listingID string) (models.AuctionListing, error) {
	if listingID == "" {
		return models.AuctionListing{}, fmt.Errorf("service: %w - missing listing ID", biddingerrors.ErrInvalidListing)
	}
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return models.AuctionListing{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	return listing, nil
}

// ListListings returns every readable listing; undecodable ones are logged and left out
func (s *AuctionService) ListListings(ctx context.Context) ([]models.AuctionListing, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	batch, err := s.repo.ListAuctionListings(storeCtx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list listings: %w", err)
	}
	for _, m := range batch.Malformed {
		utils.Warn("ListListings: listing has malformed bids", map[string]any{
			"listing_id": m.ListingID,
			"error":      m.Err.Error(),
		})
	}
	if batch.Listings == nil {
		return []models.AuctionListing{}, nil
	}
	return batch.Listings, nil
}

func (s *AuctionService) getListing(ctx context.Context, listingID string) (models.AuctionListing, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.repo.GetAuctionListing(storeCtx, listingID)
}

func (s *AuctionService) updateListing(ctx context.Context, listingID string, version int64, update models.ListingUpdate) (models.AuctionListing, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.repo.UpdateAuctionListing(storeCtx, listingID, version, update)
}

// notify is best effort: failures are logged and never reach the caller.
func (s *AuctionService) notify(ctx context.Context, n models.Notification) {
	if s.notifier == nil {
		return
	}
	n.CreatedAt = s.now()

	notifyCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.notifier.Notify(notifyCtx, n); err != nil {
		utils.Warn("failed to create notification", map[string]any{
			"type":  string(n.Type),
			"title": n.Title,
			"error": err.Error(),
		})
	}
}

// formatAmount renders whole amounts without decimals and others with two.
func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func winnerField(name *string) any {
	if name == nil {
		return nil
	}
	return *name
}
