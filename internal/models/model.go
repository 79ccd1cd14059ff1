package models

import "time"

// Spec is one key/value line of an auction listing's specification sheet
type Spec struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AuctionListing represents an item accepting bids.
// Price is the amount of the leading bid, or the base price while Bids is empty.
type AuctionListing struct {
	ListingID     string     `json:"listing_id"`
	Title         string     `json:"title"`
	BasePrice     float64    `json:"base_price"`
	Price         float64    `json:"current_price"`
	ImageURL      string     `json:"image_url,omitempty"`
	Specs         []Spec     `json:"specs"`
	IncludedItems []string   `json:"included_items,omitempty"`
	ClosesAt      *time.Time `json:"closes_at"`
	Ended         bool       `json:"ended"`
	Bids          []Bid      `json:"bids"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Bid represents one monetary offer against a listing
type Bid struct {
	Amount      float64   `json:"amount"`
	BidderName  string    `json:"userName"`
	SubmittedAt time.Time `json:"timestamp"`
}

// ListingState is the lifecycle position of a listing
type ListingState string

const (
	ListingOpen      ListingState = "open"
	ListingScheduled ListingState = "scheduled"
	ListingEnded     ListingState = "ended"
)

// State derives the lifecycle state from the ended flag and close time.
func (l AuctionListing) State() ListingState {
	switch {
	case l.Ended:
		return ListingEnded
	case l.ClosesAt != nil:
		return ListingScheduled
	default:
		return ListingOpen
	}
}

// HighestAmount returns the maximum bid amount, or the base price when there are no bids.
func (l AuctionListing) HighestAmount() float64 {
	if len(l.Bids) == 0 {
		return l.BasePrice
	}
	highest := l.Bids[0].Amount
	for _, b := range l.Bids[1:] {
		if b.Amount > highest {
			highest = b.Amount
		}
	}
	return highest
}

// WinningBid picks the highest bid; ties go to the earliest submission.
func (l AuctionListing) WinningBid() (Bid, bool) {
	if len(l.Bids) == 0 {
		return Bid{}, false
	}
	winning := l.Bids[0]
	for _, b := range l.Bids[1:] {
		if b.Amount > winning.Amount || (b.Amount == winning.Amount && b.SubmittedAt.Before(winning.SubmittedAt)) {
			winning = b
		}
	}
	return winning, true
}

// ListingUpdate carries the mutable fields written back to the record store.
// Nil pointers leave the stored column untouched.
type ListingUpdate struct {
	Price    *float64
	Bids     []Bid
	SetBids  bool
	Ended    *bool
	ClosesAt *time.Time
	// ClearClosesAt nulls the close time; it wins over ClosesAt.
	ClearClosesAt bool
}

// NotificationType groups CMS notifications
type NotificationType string

const (
	NotificationAuction       NotificationType = "auction"
	NotificationAuctionWinner NotificationType = "auction_winner"
)

// Notification is a CMS dashboard entry
type Notification struct {
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}
