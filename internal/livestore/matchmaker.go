package livestore

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/utils"
)

const (
	declineReasonNoAgents     = "No agents available"
	declineMessageUnavailable = "Agent is currently unavailable"
	declineMessageDisconnect  = "Agent disconnected"
	endReasonPeerDisconnected = "peer-disconnected"
)

// PendingRequest is a user's connect request routed to one agent and awaiting a reply
type PendingRequest struct {
	RequestID     string    `json:"request_id"`
	UserIdentity  string    `json:"user_email"`
	UserName      string    `json:"user_name"`
	AgentIdentity string    `json:"agent_email"`
	CreatedAt     time.Time `json:"created_at"`
}

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// Session is an accepted agent and user pairing
type Session struct {
	SessionID     string        `json:"session_id"`
	UserIdentity  string        `json:"user_email"`
	UserName      string        `json:"user_name"`
	AgentIdentity string        `json:"agent_email"`
	StartedAt     time.Time     `json:"started_at"`
	Status        SessionStatus `json:"status"`
}

// Counterpart returns the identity on the other side from role
func (s Session) Counterpart(role Role) string {
	if role == RoleAgent {
		return s.UserIdentity
	}
	return s.AgentIdentity
}

// RoleOf returns the side identity takes in the session; identities outside it read as users.
func (s Session) RoleOf(identity string) Role {
	if identity == s.AgentIdentity && identity != s.UserIdentity {
		return RoleAgent
	}
	return RoleUser
}

// HasParticipant reports whether identity is either side of the session
func (s Session) HasParticipant(identity string) bool {
	return identity == s.UserIdentity || identity == s.AgentIdentity
}

// RequestResult is the outcome of RequestConnection
type RequestResult struct {
	AgentAssigned bool   `json:"agent_assigned"`
	AgentIdentity string `json:"agent_email,omitempty"`
	AgentName     string `json:"agent_name,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
}

// Matchmaker turns connect requests into sessions.
// Pending requests, sessions and agent assignment history each have their own lock.
type Matchmaker struct {
	presence     *Presence
	connectDelay time.Duration
	now          func() time.Time

	reqMu   sync.Mutex
	pending map[string]PendingRequest

	sessMu   sync.RWMutex
	sessions map[string]Session
	timers   map[string]*time.Timer // pending call-connected triggers by session

	assignMu     sync.Mutex
	assignSeq    uint64
	lastAssigned map[string]uint64
}

func NewMatchmaker(presence *Presence, connectDelay time.Duration) *Matchmaker {
	return &Matchmaker{
		presence:     presence,
		connectDelay: connectDelay,
		now:          func() time.Time { return time.Now().UTC() },
		pending:      make(map[string]PendingRequest),
		sessions:     make(map[string]Session),
		timers:       make(map[string]*time.Timer),
		lastAssigned: make(map[string]uint64),
	}
}

// RequestConnection routes a user's request to the least recently assigned online agent.
// With no agent online it returns AgentAssigned=false and records nothing.
func (m *Matchmaker) RequestConnection(userIdentity, userName string) (RequestResult, error) {
	if userIdentity == "" {
		return RequestResult{}, fmt.Errorf("request connection: %w", ErrMissingIdentity)
	}

	agents := m.presence.ListOnlineAgents()
	if len(agents) == 0 {
		utils.Info("no agents available for connection request", map[string]any{"user_email": userIdentity})
		return RequestResult{AgentAssigned: false}, nil
	}

	agentIdentity := m.pickAgent(agents)
	request := PendingRequest{
		RequestID:     utils.PrefixedID("req"),
		UserIdentity:  userIdentity,
		UserName:      userName,
		AgentIdentity: agentIdentity,
		CreatedAt:     m.now(),
	}

	m.reqMu.Lock()
	m.pending[request.RequestID] = request
	m.reqMu.Unlock()

	m.sendTo(agentIdentity, RoleAgent, EventConnectionRequest, ConnectionRequestEvent{
		RequestID: request.RequestID,
		UserEmail: userIdentity,
		UserName:  userName,
		Timestamp: request.CreatedAt,
	})

	utils.Info("connection request routed", map[string]any{
		"request_id":  request.RequestID,
		"user_email":  userIdentity,
		"agent_email": agentIdentity,
	})
	result := RequestResult{AgentAssigned: true, AgentIdentity: agentIdentity, AgentName: "Agent", RequestID: request.RequestID}
	if agent, ok := m.presence.LookupRole(agentIdentity, RoleAgent); ok && agent.DisplayName != "" {
		result.AgentName = agent.DisplayName
	}
	return result, nil
}

// pickAgent returns the agent assigned longest ago; never-assigned agents come first,
// ties broken lexicographically.
func (m *Matchmaker) pickAgent(agents []string) string {
	m.assignMu.Lock()
	defer m.assignMu.Unlock()

	candidates := append([]string(nil), agents...)
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := m.lastAssigned[candidates[i]], m.lastAssigned[candidates[j]]
		if a != b {
			return a < b
		}
		return candidates[i] < candidates[j]
	})

	chosen := candidates[0]
	m.assignSeq++
	m.lastAssigned[chosen] = m.assignSeq
	return chosen
}

// AcceptConnection turns a pending request into an active session and notifies both sides.
// call-connected follows after the configured delay if the session is still active.
func (m *Matchmaker) AcceptConnection(requestID string) (Session, error) {
	m.reqMu.Lock()
	request, ok := m.pending[requestID]
	if ok {
		delete(m.pending, requestID)
	}
	m.reqMu.Unlock()
	if !ok {
		return Session{}, fmt.Errorf("accept %q: %w", requestID, ErrRequestNotFound)
	}

	session := Session{
		UserIdentity:  request.UserIdentity,
		UserName:      request.UserName,
		AgentIdentity: request.AgentIdentity,
		StartedAt:     m.now(),
		Status:        SessionActive,
	}

	m.sessMu.Lock()
	for at := session.StartedAt; ; at = at.Add(time.Nanosecond) {
		session.SessionID = newSessionID(at, request.UserIdentity, request.AgentIdentity)
		if _, taken := m.sessions[session.SessionID]; !taken {
			break
		}
	}
	m.sessions[session.SessionID] = session
	m.sessMu.Unlock()

	agentName := "Agent"
	if agent, ok := m.presence.LookupRole(session.AgentIdentity, RoleAgent); ok && agent.DisplayName != "" {
		agentName = agent.DisplayName
	}
	userName := session.UserName
	if userName == "" {
		userName = "User"
	}

	m.sendTo(session.UserIdentity, RoleUser, EventConnectionAccepted, AcceptedForUserEvent{
		SessionID:  session.SessionID,
		AgentEmail: session.AgentIdentity,
		AgentName:  agentName,
	})
	m.sendTo(session.AgentIdentity, RoleAgent, EventConnectionAccepted, AcceptedForAgentEvent{
		SessionID: session.SessionID,
		UserEmail: session.UserIdentity,
		UserName:  userName,
	})

	sessionID := session.SessionID
	m.sessMu.Lock()
	if _, active := m.sessions[sessionID]; active {
		m.timers[sessionID] = time.AfterFunc(m.connectDelay, func() { m.fireCallConnected(sessionID) })
	}
	m.sessMu.Unlock()

	utils.Info("session started", map[string]any{
		"session_id":  session.SessionID,
		"request_id":  requestID,
		"user_email":  session.UserIdentity,
		"agent_email": session.AgentIdentity,
	})
	return session, nil
}

func (m *Matchmaker) fireCallConnected(sessionID string) {
	m.sessMu.Lock()
	session, ok := m.sessions[sessionID]
	delete(m.timers, sessionID)
	m.sessMu.Unlock()
	if !ok {
		return
	}

	event := CallEvent{SessionID: sessionID}
	m.sendTo(session.UserIdentity, RoleUser, EventCallConnected, event)
	m.sendTo(session.AgentIdentity, RoleAgent, EventCallConnected, event)
}

// DeclineConnection drops a pending request and tells the user
func (m *Matchmaker) DeclineConnection(requestID string) error {
	m.reqMu.Lock()
	request, ok := m.pending[requestID]
	if ok {
		delete(m.pending, requestID)
	}
	m.reqMu.Unlock()
	if !ok {
		return fmt.Errorf("decline %q: %w", requestID, ErrRequestNotFound)
	}

	m.sendTo(request.UserIdentity, RoleUser, EventConnectionDeclined, DeclinedEvent{
		RequestID: requestID,
		Message:   declineMessageUnavailable,
	})
	utils.Info("connection request declined", map[string]any{
		"request_id":  requestID,
		"agent_email": request.AgentIdentity,
	})
	return nil
}

// EndSession removes the session and tells whichever participants are still connected
func (m *Matchmaker) EndSession(sessionID string) (Session, error) {
	return m.endSession(sessionID, "")
}

func (m *Matchmaker) endSession(sessionID, reason string) (Session, error) {
	m.sessMu.Lock()
	session, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
		if timer, pending := m.timers[sessionID]; pending {
			timer.Stop()
			delete(m.timers, sessionID)
		}
	}
	m.sessMu.Unlock()
	if !ok {
		return Session{}, fmt.Errorf("end %q: %w", sessionID, ErrSessionNotFound)
	}

	session.Status = SessionEnded
	event := CallEvent{SessionID: sessionID, Reason: reason}
	m.sendTo(session.UserIdentity, RoleUser, EventCallEnded, event)
	m.sendTo(session.AgentIdentity, RoleAgent, EventCallEnded, event)

	utils.Info("session ended", map[string]any{
		"session_id": sessionID,
		"reason":     reason,
		"duration_s": m.now().Sub(session.StartedAt).Seconds(),
	})
	return session, nil
}

// Session returns an active session by id
func (m *Matchmaker) Session(sessionID string) (Session, bool) {
	m.sessMu.RLock()
	defer m.sessMu.RUnlock()
	session, ok := m.sessions[sessionID]
	return session, ok
}

// PendingRequest returns a pending request by id
func (m *Matchmaker) PendingRequest(requestID string) (PendingRequest, bool) {
	m.reqMu.Lock()
	defer m.reqMu.Unlock()
	request, ok := m.pending[requestID]
	return request, ok
}

// ParticipantLeft cleans up after a participant's connection dropped: their active
// sessions end with the peer notified, and their pending requests are dropped.
func (m *Matchmaker) ParticipantLeft(p Participant) {
	for _, sessionID := range m.sessionsOf(p) {
		if _, err := m.endSession(sessionID, endReasonPeerDisconnected); err != nil {
			utils.Debug("session already ended during disconnect cleanup", map[string]any{"session_id": sessionID})
		}
	}

	m.reqMu.Lock()
	var orphaned []PendingRequest
	for id, request := range m.pending {
		if (p.Role == RoleAgent && request.AgentIdentity == p.Identity) ||
			(p.Role == RoleUser && request.UserIdentity == p.Identity) {
			delete(m.pending, id)
			orphaned = append(orphaned, request)
		}
	}
	m.reqMu.Unlock()

	if p.Role != RoleAgent {
		return
	}
	for _, request := range orphaned {
		m.sendTo(request.UserIdentity, RoleUser, EventConnectionDeclined, DeclinedEvent{
			RequestID: request.RequestID,
			Message:   declineMessageDisconnect,
		})
	}
}

func (m *Matchmaker) sessionsOf(p Participant) []string {
	m.sessMu.RLock()
	defer m.sessMu.RUnlock()

	var ids []string
	for id, session := range m.sessions {
		if (p.Role == RoleAgent && session.AgentIdentity == p.Identity) ||
			(p.Role == RoleUser && session.UserIdentity == p.Identity) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Stats is a point-in-time view for the agent status endpoint
type Stats struct {
	OnlineAgents    []string `json:"online_agents"`
	OnlineUsers     []string `json:"online_users"`
	ActiveSessions  int      `json:"active_sessions"`
	PendingRequests int      `json:"pending_requests"`
}

func (m *Matchmaker) Stats() Stats {
	m.reqMu.Lock()
	pending := len(m.pending)
	m.reqMu.Unlock()

	m.sessMu.RLock()
	active := len(m.sessions)
	m.sessMu.RUnlock()

	return Stats{
		OnlineAgents:    m.presence.ListOnlineAgents(),
		OnlineUsers:     m.presence.ListOnlineUsers(),
		ActiveSessions:  active,
		PendingRequests: pending,
	}
}

// Close stops every pending call-connected trigger
func (m *Matchmaker) Close() {
	m.sessMu.Lock()
	defer m.sessMu.Unlock()
	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
}

// sendTo delivers to identity's connection in role; an absent peer is not an error.
func (m *Matchmaker) sendTo(identity string, role Role, event string, payload any) {
	participant, ok := m.presence.LookupRole(identity, role)
	if !ok {
		utils.Warn("live store recipient not connected", map[string]any{
			"event":    event,
			"identity": identity,
			"role":     string(role),
		})
		return
	}
	if err := participant.Conn.Send(event, payload); err != nil {
		utils.Warn("live store delivery failed", map[string]any{
			"event":    event,
			"identity": identity,
			"error":    err.Error(),
		})
	}
}

var identityReplacer = strings.NewReplacer("@", "_", ".", "_")

func newSessionID(at time.Time, userIdentity, agentIdentity string) string {
	return fmt.Sprintf("session_%d_%s_%s", at.UnixNano(), identityReplacer.Replace(userIdentity), identityReplacer.Replace(agentIdentity))
}
