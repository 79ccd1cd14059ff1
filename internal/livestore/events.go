package livestore

import "time"

// Inbound events
const (
	EventRegisterUser        = "register-user"
	EventRequestConnection   = "request-connection"
	EventAcceptConnection    = "accept-connection"
	EventDeclineConnection   = "decline-connection"
	EventEndCall             = "end-call"
	EventCameraStateChanged  = "camera-state-changed"
	EventAudioStateChanged   = "audio-state-changed"
	EventRequestRemoteStream = "request-remote-stream"
	EventSendStreamInfo      = "send-stream-info"
	EventWebRTCOffer         = "webrtc-offer"
	EventWebRTCAnswer        = "webrtc-answer"
	EventWebRTCIceCandidate  = "webrtc-ice-candidate"
)

// Outbound events
const (
	EventConnectionRequest  = "connection-request"
	EventConnectionAccepted = "connection-accepted"
	EventConnectionDeclined = "connection-declined"
	EventCallConnected      = "call-connected"
	EventCallEnded          = "call-ended"
	EventReceiveStreamInfo  = "receive-stream-info"
	EventRegistered         = "registered"
	EventError              = "error"
)

// RegisterPayload accepts both userEmail and the legacy UserEmail key
type RegisterPayload struct {
	UserEmail       string `json:"userEmail"`
	LegacyUserEmail string `json:"UserEmail"`
	UserName        string `json:"userName"`
	IsAgent         bool   `json:"isAgent"`
}

// Identity returns whichever email key the client sent
func (p RegisterPayload) Identity() string {
	if p.LegacyUserEmail != "" {
		return p.LegacyUserEmail
	}
	return p.UserEmail
}

type RequestConnectionPayload struct {
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}

type RequestIDPayload struct {
	RequestID string `json:"requestId"`
}

type SessionIDPayload struct {
	SessionID string `json:"sessionId"`
}

// signalEnvelope holds the routing fields shared by every relayed kind.
// The rest of the payload is never decoded for routing.
type signalEnvelope struct {
	SessionID       string `json:"sessionId"`
	TargetUserEmail string `json:"targetUserEmail"`
	UserType        string `json:"userType"`
	RequestedBy     string `json:"requestedBy"`
	SenderType      string `json:"senderType"`
}

// senderRole is the role the sender declared, whichever key the kind uses for it.
func (e signalEnvelope) senderRole() string {
	switch {
	case e.UserType != "":
		return e.UserType
	case e.RequestedBy != "":
		return e.RequestedBy
	default:
		return e.SenderType
	}
}

// Outbound payloads

type ConnectionRequestEvent struct {
	RequestID string    `json:"requestId"`
	UserEmail string    `json:"userEmail"`
	UserName  string    `json:"userName"`
	Timestamp time.Time `json:"timestamp"`
}

type AcceptedForUserEvent struct {
	SessionID  string `json:"sessionId"`
	AgentEmail string `json:"agentEmail"`
	AgentName  string `json:"agentName"`
}

type AcceptedForAgentEvent struct {
	SessionID string `json:"sessionId"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}

type DeclinedEvent struct {
	RequestID string `json:"requestId,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

type CallEvent struct {
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason,omitempty"`
}

type RegisteredEvent struct {
	UserEmail string `json:"userEmail"`
	Role      Role   `json:"role"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
