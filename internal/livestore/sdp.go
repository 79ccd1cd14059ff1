package livestore

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

type sdpCarrier struct {
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
}

// describeSignal extracts log fields from offer/answer/candidate payloads.
// It never affects delivery: anything it cannot parse is reported, not rejected.
func describeSignal(kind string, payload json.RawMessage) map[string]any {
	var carrier sdpCarrier
	if err := json.Unmarshal(payload, &carrier); err != nil {
		return nil
	}

	switch kind {
	case EventWebRTCOffer:
		return describeSDP(carrier.Offer)
	case EventWebRTCAnswer:
		return describeSDP(carrier.Answer)
	case EventWebRTCIceCandidate:
		return describeCandidate(carrier.Candidate)
	}
	return nil
}

func describeSDP(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{"sdp_present": false}
	}

	var desc webrtc.SessionDescription
	if err := json.Unmarshal(raw, &desc); err != nil {
		return map[string]any{"sdp_present": true, "sdp_valid": false}
	}

	fields := map[string]any{
		"sdp_present": true,
		"sdp_type":    desc.Type.String(),
		"sdp_bytes":   len(desc.SDP),
	}

	parsed, err := desc.Unmarshal()
	if err != nil {
		fields["sdp_valid"] = false
		return fields
	}
	fields["sdp_valid"] = true

	var hasAudio, hasVideo bool
	for _, media := range parsed.MediaDescriptions {
		switch media.MediaName.Media {
		case "audio":
			hasAudio = true
		case "video":
			hasVideo = true
		}
	}
	fields["has_audio"] = hasAudio
	fields["has_video"] = hasVideo
	return fields
}

func describeCandidate(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{"candidate_present": false}
	}

	var init webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &init); err != nil {
		return map[string]any{"candidate_present": true, "candidate_valid": false}
	}

	fields := map[string]any{
		"candidate_present": true,
		"candidate_valid":   true,
		"end_of_candidates": init.Candidate == "",
	}
	if init.SDPMid != nil {
		fields["sdp_mid"] = *init.SDPMid
	}
	if init.SDPMLineIndex != nil {
		fields["sdp_mline_index"] = *init.SDPMLineIndex
	}
	return fields
}
