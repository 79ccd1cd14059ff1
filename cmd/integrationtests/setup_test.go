package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "storefront/internal/biddingService"
	"storefront/internal/config"
	"storefront/internal/livestore"
	model "storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/ws"

	"github.com/gin-gonic/gin"
)

// testClock is the fixed wall clock the auction engine sees in integration tests
var testClock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testApp struct {
	router *gin.Engine
	repo   *repository.MemoryRepo
	hub    *livestore.Hub
}

// SetupTestApp wires the full router over an in-memory record store, seeded with listings.
func SetupTestApp(t *testing.T, listings ...model.AuctionListing) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	for _, l := range listings {
		repo.AddListing(l)
	}

	service := bidding.NewAuctionService(repo, notify.NewRecordStoreNotifier(repo), bidding.Options{
		ClockOffset: 5 * time.Hour,
		Now:         func() time.Time { return testClock },
	})

	cfg := &config.Config{
		WSReadTimeout:     5 * time.Second,
		WSWriteTimeout:    time.Second,
		WSPingInterval:    time.Second,
		WSMaxMessageBytes: 1 << 16,
	}
	hub := livestore.NewHub(50 * time.Millisecond)
	t.Cleanup(hub.Close)

	router := server.SetupRouter(server.Dependencies{
		Auctions:  service,
		LiveStore: hub,
		Sockets:   ws.NewServer(cfg, hub),
	})
	return &testApp{router: router, repo: repo, hub: hub}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}
