package handler

import (
	"context"
	"net/http"
	"time"

	bidding "storefront/internal/biddingService"
	model "storefront/internal/models"
	"storefront/services/bidding/helpers"
	"storefront/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	PlaceBid(ctx context.Context, listingID string, amount float64, bidderName string) (bidding.PlaceBidResult, error)
	CloseExpiredAuctions(ctx context.Context) ([]bidding.CloseResult, error)
	CloseAuctionNow(ctx context.Context, listingID string) (bidding.CloseResult, error)
	CreateListing(ctx context.Context, in bidding.NewListingInput) (model.AuctionListing, error)
	RescheduleListing(ctx context.Context, listingID string, closesAt *time.Time) (model.AuctionListing, error)
	GetListing(ctx context.Context, listingID string) (model.AuctionListing, error)
	ListListings(ctx context.Context) ([]model.AuctionListing, error)
}

type BiddingHandler struct {
	service AuctionServiceInterface
}

func NewBiddingHandler(service AuctionServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /api/auctionproducts/:id/bid
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	listingID := c.Param("id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	result, err := h.service.PlaceBid(c.Request.Context(), listingID, float64(req.BidAmount), req.UserName)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", err, map[string]any{
			"listing_id": listingID,
			"user_name":  req.UserName,
			"amount":     float64(req.BidAmount),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, result, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"listing_id": listingID,
		"user_name":  req.UserName,
		"amount":     result.NewCurrentPrice,
		"total_bids": result.TotalBids,
	})
}

// ListListingsHandler handles GET /api/auctionproducts
func (h *BiddingHandler) ListListingsHandler(c *gin.Context) {
	listings, err := h.service.ListListings(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListListingsHandler", err, nil)
		return
	}

	resp := make([]helpers.ListingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, helpers.NewListingResponse(l))
	}
	utils.JSONResponse(c, http.StatusOK, resp, "auction products retrieved successfully")
}

// GetListingHandler handles GET /api/auctionproducts/:id
func (h *BiddingHandler) GetListingHandler(c *gin.Context) {
	listingID := c.Param("id")
	listing, err := h.service.GetListing(c.Request.Context(), listingID)
	if err != nil {
		helpers.RespondError(c, "GetListingHandler", err, map[string]any{"listing_id": listingID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.NewListingResponse(listing), "auction product retrieved successfully")
}

// CreateListingHandler handles POST /api/auctionproducts
func (h *BiddingHandler) CreateListingHandler(c *gin.Context) {
	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	listing, err := h.service.CreateListing(c.Request.Context(), bidding.NewListingInput{
		Title:         req.Title,
		BasePrice:     float64(req.BasePrice),
		ImageURL:      req.ImageURL,
		Specs:         req.Specs,
		IncludedItems: req.IncludedItems,
		ClosesAt:      req.ClosesAt,
	})
	if err != nil {
		helpers.RespondError(c, "CreateListingHandler", err, map[string]any{"title": req.Title})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewListingResponse(listing), "auction product created successfully")
	helpers.LogSuccess("CreateListingHandler", "auction product created", map[string]any{
		"listing_id": listing.ListingID,
		"title":      listing.Title,
	})
}

// RescheduleHandler handles PUT /api/auctionproducts/:id/timer
func (h *BiddingHandler) RescheduleHandler(c *gin.Context) {
	listingID := c.Param("id")

	var req helpers.TimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RescheduleHandler", err)
		return
	}

	listing, err := h.service.RescheduleListing(c.Request.Context(), listingID, req.ClosesAt)
	if err != nil {
		helpers.RespondError(c, "RescheduleHandler", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewListingResponse(listing), "auction timer updated successfully")
	helpers.LogSuccess("RescheduleHandler", "auction timer updated", map[string]any{
		"listing_id": listingID,
		"state":      string(listing.State()),
	})
}

// CloseExpiredHandler handles POST /api/cms/auctionproducts/end-expired
func (h *BiddingHandler) CloseExpiredHandler(c *gin.Context) {
	results, err := h.service.CloseExpiredAuctions(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "CloseExpiredHandler", err, nil)
		return
	}
	if results == nil {
		results = []bidding.CloseResult{}
	}

	utils.JSONResponse(c, http.StatusOK, results, "expired auctions closed")
	helpers.LogSuccess("CloseExpiredHandler", "expired auctions closed", map[string]any{"closed": len(results)})
}

// CloseNowHandler handles POST /api/cms/auctionproducts/:id/end
func (h *BiddingHandler) CloseNowHandler(c *gin.Context) {
	listingID := c.Param("id")
	result, err := h.service.CloseAuctionNow(c.Request.Context(), listingID)
	if err != nil {
		helpers.RespondError(c, "CloseNowHandler", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, result, "auction closed successfully")
	helpers.LogSuccess("CloseNowHandler", "auction closed", map[string]any{
		"listing_id":     listingID,
		"winning_amount": result.WinningAmount,
	})
}
