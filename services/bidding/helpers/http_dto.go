package helpers

import (
	"time"

	model "storefront/internal/models"
)

// Request/Response DTOs

// PlaceBidRequest keeps the storefront's field names; bidAmount may be a number or a formatted string
type PlaceBidRequest struct {
	BidAmount model.Amount `json:"bidAmount"`
	UserName  string       `json:"userName"`
}

type CreateListingRequest struct {
	Title         string       `json:"title" binding:"required"`
	BasePrice     model.Amount `json:"base_price" binding:"required"`
	ImageURL      string       `json:"image_url"`
	Specs         []model.Spec `json:"specs"`
	IncludedItems []string     `json:"included_items"`
	ClosesAt      *time.Time   `json:"closes_at"`
}

// TimerRequest sets the close time; null or an absent field clears it
type TimerRequest struct {
	ClosesAt *time.Time `json:"closes_at"`
}

type ListingResponse struct {
	ListingID     string       `json:"listing_id"`
	Title         string       `json:"title"`
	BasePrice     float64      `json:"base_price"`
	CurrentPrice  float64      `json:"current_price"`
	ImageURL      string       `json:"image_url,omitempty"`
	Specs         []model.Spec `json:"specs"`
	IncludedItems []string     `json:"included_items"`
	ClosesAt      *string      `json:"closes_at"`
	Ended         bool         `json:"ended"`
	State         string       `json:"state"`
	Bids          []model.Bid  `json:"bids"`
	TotalBids     int          `json:"total_bids"`
	HighestBid    float64      `json:"highest_bid"`
	CreatedAt     string       `json:"created_at,omitempty"`
}

// NewListingResponse flattens a listing for the API, deriving bid totals
func NewListingResponse(l model.AuctionListing) ListingResponse {
	resp := ListingResponse{
		ListingID:     l.ListingID,
		Title:         l.Title,
		BasePrice:     l.BasePrice,
		CurrentPrice:  l.Price,
		ImageURL:      l.ImageURL,
		Specs:         l.Specs,
		IncludedItems: l.IncludedItems,
		Ended:         l.Ended,
		State:         string(l.State()),
		Bids:          l.Bids,
		TotalBids:     len(l.Bids),
		HighestBid:    l.HighestAmount(),
	}
	if resp.Specs == nil {
		resp.Specs = []model.Spec{}
	}
	if resp.IncludedItems == nil {
		resp.IncludedItems = []string{}
	}
	if resp.Bids == nil {
		resp.Bids = []model.Bid{}
	}
	if l.ClosesAt != nil {
		closesAt := l.ClosesAt.UTC().Format(time.RFC3339)
		resp.ClosesAt = &closesAt
	}
	if !l.CreatedAt.IsZero() {
		resp.CreatedAt = l.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
