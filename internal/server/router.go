package server

import (
	"net/http"

	"storefront/internal/ws"
	biddinghandler "storefront/services/bidding/handler"
	livestorehandler "storefront/services/livestore/handler"
	"storefront/utils"

	"github.com/gin-gonic/gin"
)

// Dependencies groups what the router wires into handlers
type Dependencies struct {
	Auctions  biddinghandler.AuctionServiceInterface
	LiveStore livestorehandler.LiveStoreInterface
	Sockets   *ws.Server
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(CORSMiddleware)

	biddingHandler := biddinghandler.NewBiddingHandler(deps.Auctions)
	liveStoreHandler := livestorehandler.NewLiveStoreHandler(deps.LiveStore)

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"status": "ok"}, "service healthy")
	})

	products := api.Group("/auctionproducts")
	{
		products.GET("", biddingHandler.ListListingsHandler)
		products.POST("", biddingHandler.CreateListingHandler)
		products.GET("/:id", biddingHandler.GetListingHandler)
		products.POST("/:id/bid", biddingHandler.PlaceBidHandler)
		products.PUT("/:id/timer", biddingHandler.RescheduleHandler)
	}

	cms := api.Group("/cms/auctionproducts")
	{
		cms.POST("/end-expired", biddingHandler.CloseExpiredHandler)
		cms.POST("/:id/end", biddingHandler.CloseNowHandler)
	}

	live := api.Group("/live-store")
	{
		live.POST("/request-connection", liveStoreHandler.RequestConnectionHandler)
		live.GET("/check-user/:identity", liveStoreHandler.CheckUserHandler)
		live.GET("/agent-status", liveStoreHandler.AgentStatusHandler)
		live.POST("/end-session", liveStoreHandler.EndSessionHandler)
	}

	if deps.Sockets != nil {
		router.GET("/ws", deps.Sockets.HandleWebSocket)
	}

	return router
}
