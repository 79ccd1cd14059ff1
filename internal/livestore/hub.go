package livestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/utils"
)

// ConnectionState reports how an identity is currently attached
type ConnectionState struct {
	Identity    string `json:"user_id"`
	Connected   bool   `json:"is_connected_via_socket"`
	ConnectedAs string `json:"socket_type"`
}

// Hub is the live store's entry point for socket events and the HTTP surface
type Hub struct {
	presence   *Presence
	matchmaker *Matchmaker
	relay      *Relay
}

func NewHub(connectDelay time.Duration) *Hub {
	presence := NewPresence()
	matchmaker := NewMatchmaker(presence, connectDelay)
	return &Hub{
		presence:   presence,
		matchmaker: matchmaker,
		relay:      NewRelay(presence, matchmaker),
	}
}

// Dispatch handles one inbound event from conn.
// Invalid payloads and unknown kinds are returned so the transport can answer with an error frame;
// events that reference missing requests, sessions or peers are logged and dropped.
func (h *Hub) Dispatch(conn Conn, event string, data json.RawMessage) error {
	var err error
	switch event {
	case EventRegisterUser:
		err = h.handleRegister(conn, data)
	case EventRequestConnection:
		err = h.handleRequestConnection(conn, data)
	case EventAcceptConnection:
		var payload RequestIDPayload
		if err = decode(event, data, &payload); err == nil {
			_, err = h.matchmaker.AcceptConnection(payload.RequestID)
		}
	case EventDeclineConnection:
		var payload RequestIDPayload
		if err = decode(event, data, &payload); err == nil {
			err = h.matchmaker.DeclineConnection(payload.RequestID)
		}
	case EventEndCall:
		var payload SessionIDPayload
		if err = decode(event, data, &payload); err == nil {
			_, err = h.matchmaker.EndSession(payload.SessionID)
		}
	default:
		if !IsDirectKind(event) && !IsCounterpartKind(event) {
			return fmt.Errorf("dispatch %q: %w", event, ErrUnknownEvent)
		}
		err = h.relay.Forward(event, data)
	}

	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidPayload) || errors.Is(err, ErrMissingIdentity) || errors.Is(err, ErrUnknownEvent) {
		return err
	}
	utils.Warn("live store event dropped", map[string]any{
		"event":   event,
		"conn_id": conn.ID(),
		"error":   err.Error(),
	})
	return nil
}

func decode(event string, data json.RawMessage, into any) error {
	if len(data) == 0 {
		return fmt.Errorf("%s: empty payload: %w", event, ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("%s: %v: %w", event, err, ErrInvalidPayload)
	}
	return nil
}

func (h *Hub) handleRegister(conn Conn, data json.RawMessage) error {
	var payload RegisterPayload
	if err := decode(EventRegisterUser, data, &payload); err != nil {
		return err
	}
	identity := payload.Identity()
	if identity == "" {
		return fmt.Errorf("register: %w", ErrMissingIdentity)
	}

	role := RoleUser
	if payload.IsAgent {
		role = RoleAgent
	}

	evicted, replaced := h.presence.Register(identity, payload.UserName, role, conn)
	fields := map[string]any{
		"identity": identity,
		"role":     string(role),
		"conn_id":  conn.ID(),
	}
	if replaced {
		fields["replaced_conn_id"] = evicted.Conn.ID()
	}
	utils.Info("live store participant registered", fields)

	if err := conn.Send(EventRegistered, RegisteredEvent{UserEmail: identity, Role: role}); err != nil {
		utils.Warn("failed to acknowledge registration", map[string]any{"identity": identity, "error": err.Error()})
	}
	return nil
}

func (h *Hub) handleRequestConnection(conn Conn, data json.RawMessage) error {
	var payload RequestConnectionPayload
	if err := decode(EventRequestConnection, data, &payload); err != nil {
		return err
	}

	result, err := h.matchmaker.RequestConnection(payload.UserEmail, payload.UserName)
	if err != nil {
		return err
	}
	if !result.AgentAssigned {
		if err := conn.Send(EventConnectionDeclined, DeclinedEvent{Reason: declineReasonNoAgents}); err != nil {
			utils.Warn("failed to deliver decline", map[string]any{"user_email": payload.UserEmail, "error": err.Error()})
		}
	}
	return nil
}

// Disconnect forgets every identity bound to conn and cleans up what they left behind
func (h *Hub) Disconnect(conn Conn) {
	removed := h.presence.Unregister(conn)
	for _, participant := range removed {
		utils.Info("live store participant disconnected", map[string]any{
			"identity": participant.Identity,
			"role":     string(participant.Role),
			"conn_id":  conn.ID(),
		})
		h.matchmaker.ParticipantLeft(participant)
	}
}

// RequestConnection is the HTTP variant of the socket request; the assigned agent
// still receives connection-request over its socket.
func (h *Hub) RequestConnection(userIdentity, userName string) (RequestResult, error) {
	return h.matchmaker.RequestConnection(userIdentity, userName)
}

// EndSession ends a session on behalf of the HTTP surface
func (h *Hub) EndSession(sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("end session: missing sessionId: %w", ErrInvalidPayload)
	}
	return h.matchmaker.EndSession(sessionID)
}

func (h *Hub) AgentStatus() Stats {
	return h.matchmaker.Stats()
}

// CheckUser reports whether identity holds a socket and in which role; agents take precedence.
func (h *Hub) CheckUser(identity string) ConnectionState {
	state := ConnectionState{Identity: identity, ConnectedAs: "none"}
	if _, ok := h.presence.LookupRole(identity, RoleAgent); ok {
		state.Connected = true
		state.ConnectedAs = string(RoleAgent)
	} else if _, ok := h.presence.LookupRole(identity, RoleUser); ok {
		state.Connected = true
		state.ConnectedAs = string(RoleUser)
	}
	return state
}

func (h *Hub) Close() {
	h.matchmaker.Close()
}
