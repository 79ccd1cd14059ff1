package livestore

import (
	"encoding/json"
	"fmt"

	"storefront/utils"
)

// SessionLookup resolves active sessions for the relay
type SessionLookup interface {
	Session(sessionID string) (Session, bool)
}

// Relay forwards signaling payloads between the two participants of an active session.
// Payloads are delivered byte for byte; only routing fields are read.
type Relay struct {
	presence *Presence
	sessions SessionLookup
}

func NewRelay(presence *Presence, sessions SessionLookup) *Relay {
	return &Relay{presence: presence, sessions: sessions}
}

// outboundName maps an inbound kind to the event the counterpart receives
func outboundName(kind string) string {
	if kind == EventSendStreamInfo {
		return EventReceiveStreamInfo
	}
	return kind
}

// IsDirectKind reports whether the sender names the target explicitly
func IsDirectKind(kind string) bool {
	switch kind {
	case EventWebRTCOffer, EventWebRTCAnswer, EventWebRTCIceCandidate:
		return true
	}
	return false
}

// IsCounterpartKind reports whether the target is derived from the sender's declared role
func IsCounterpartKind(kind string) bool {
	switch kind {
	case EventCameraStateChanged, EventAudioStateChanged, EventRequestRemoteStream, EventSendStreamInfo:
		return true
	}
	return false
}

// Forward routes one signaling message. Errors describe why it was dropped;
// callers on the socket path log them and carry on.
func (r *Relay) Forward(kind string, payload json.RawMessage) error {
	var env signalEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("relay %s: %v: %w", kind, err, ErrInvalidPayload)
	}
	if env.SessionID == "" {
		return fmt.Errorf("relay %s: missing sessionId: %w", kind, ErrInvalidPayload)
	}

	session, ok := r.sessions.Session(env.SessionID)
	if !ok {
		return fmt.Errorf("relay %s for %s: %w", kind, env.SessionID, ErrSessionNotFound)
	}

	var (
		target     string
		targetRole Role
	)
	switch {
	case IsDirectKind(kind):
		if env.TargetUserEmail == "" {
			return fmt.Errorf("relay %s: missing targetUserEmail: %w", kind, ErrInvalidPayload)
		}
		if !session.HasParticipant(env.TargetUserEmail) {
			return fmt.Errorf("relay %s to %s: %w", kind, env.TargetUserEmail, ErrNotParticipant)
		}
		target = env.TargetUserEmail
		targetRole = session.RoleOf(target)
	case IsCounterpartKind(kind):
		role := Role(env.senderRole())
		if role != RoleAgent && role != RoleUser {
			return fmt.Errorf("relay %s: sender role %q: %w", kind, role, ErrInvalidRole)
		}
		target = session.Counterpart(role)
		targetRole = role.Other()
	default:
		return fmt.Errorf("relay %s: %w", kind, ErrUnknownEvent)
	}

	participant, ok := r.presence.LookupRole(target, targetRole)
	if !ok {
		return fmt.Errorf("relay %s to %s: %w", kind, target, ErrTargetOffline)
	}

	fields := map[string]any{
		"event":      kind,
		"session_id": session.SessionID,
		"target":     target,
	}
	for k, v := range describeSignal(kind, payload) {
		fields[k] = v
	}
	utils.Debug("relaying signal", fields)

	if err := participant.Conn.Send(outboundName(kind), json.RawMessage(payload)); err != nil {
		return fmt.Errorf("relay %s to %s: %w", kind, target, err)
	}
	return nil
}
