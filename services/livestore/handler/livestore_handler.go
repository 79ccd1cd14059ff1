package handler

import (
	"fmt"
	"net/http"

	"storefront/internal/livestore"
	bidhelpers "storefront/services/bidding/helpers"
	"storefront/services/livestore/helpers"
	"storefront/utils"

	"github.com/gin-gonic/gin"
)

type LiveStoreInterface interface {
	RequestConnection(userIdentity, userName string) (livestore.RequestResult, error)
	EndSession(sessionID string) (livestore.Session, error)
	AgentStatus() livestore.Stats
	CheckUser(identity string) livestore.ConnectionState
}

type LiveStoreHandler struct {
	hub LiveStoreInterface
}

func NewLiveStoreHandler(hub LiveStoreInterface) *LiveStoreHandler {
	return &LiveStoreHandler{hub: hub}
}

func respondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := helpers.MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	fields["error"] = err.Error()
	utils.Warn(handlerName+": request rejected", fields)
}

// RequestConnectionHandler handles POST /api/live-store/request-connection
func (h *LiveStoreHandler) RequestConnectionHandler(c *gin.Context) {
	var req helpers.RequestConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bidhelpers.HandleBindError(c, "RequestConnectionHandler", err)
		return
	}

	result, err := h.hub.RequestConnection(req.UserEmail, req.UserName)
	if err != nil {
		respondError(c, "RequestConnectionHandler", err, map[string]any{"user_email": req.UserEmail})
		return
	}

	if !result.AgentAssigned {
		utils.JSONResponse(c, http.StatusOK, result, "No agents are currently online")
		return
	}
	utils.JSONResponse(c, http.StatusOK, result, "connection request sent to agent")
	bidhelpers.LogSuccess("RequestConnectionHandler", "connection request routed", map[string]any{
		"user_email":  req.UserEmail,
		"agent_email": result.AgentIdentity,
		"request_id":  result.RequestID,
	})
}

// CheckUserHandler handles GET /api/live-store/check-user/:identity
func (h *LiveStoreHandler) CheckUserHandler(c *gin.Context) {
	state := h.hub.CheckUser(c.Param("identity"))
	utils.JSONResponse(c, http.StatusOK, state, "connection state retrieved successfully")
}

// AgentStatusHandler handles GET /api/live-store/agent-status
func (h *LiveStoreHandler) AgentStatusHandler(c *gin.Context) {
	stats := h.hub.AgentStatus()
	if stats.OnlineAgents == nil {
		stats.OnlineAgents = []string{}
	}
	if stats.OnlineUsers == nil {
		stats.OnlineUsers = []string{}
	}
	utils.JSONResponse(c, http.StatusOK, stats, "agent status retrieved successfully")
}

// EndSessionHandler handles POST /api/live-store/end-session
func (h *LiveStoreHandler) EndSessionHandler(c *gin.Context) {
	var req helpers.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bidhelpers.HandleBindError(c, "EndSessionHandler", err)
		return
	}

	session, err := h.hub.EndSession(req.SessionID)
	if err != nil {
		respondError(c, "EndSessionHandler", err, map[string]any{"session_id": req.SessionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, session, "session ended successfully")
	bidhelpers.LogSuccess("EndSessionHandler", "session ended", map[string]any{
		"session_id": req.SessionID,
		"user_id":    req.UserID,
		"agent_id":   req.AgentID,
	})
}
