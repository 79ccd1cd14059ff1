package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"storefront/internal/biddingerrors"
	"storefront/internal/models"
)

// DecodeBids normalizes every stored shape of the bids column into an ordered []models.Bid.
//
// Accepted shapes: nil, a JSON document as string or bytes (possibly a JSON string that
// itself holds the array), or an already-decoded []any / []map[string]any.
func DecodeBids(raw any) ([]models.Bid, error) {
	switch v := raw.(type) {
	case nil:
		return []models.Bid{}, nil
	case []models.Bid:
		return append([]models.Bid{}, v...), nil
	case string:
		return decodeBidsText(v)
	case []byte:
		return decodeBidsText(string(v))
	case json.RawMessage:
		return decodeBidsText(string(v))
	case []map[string]any:
		entries := make([]any, len(v))
		for i := range v {
			entries[i] = v[i]
		}
		return decodeBidEntries(entries)
	case []any:
		return decodeBidEntries(v)
	default:
		return nil, fmt.Errorf("decode bids: unsupported type %T: %w", raw, biddingerrors.ErrMalformedBids)
	}
}

func decodeBidsText(text string) ([]models.Bid, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "null" {
		return []models.Bid{}, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, fmt.Errorf("decode bids: %v: %w", err, biddingerrors.ErrMalformedBids)
	}

	switch v := parsed.(type) {
	case nil:
		return []models.Bid{}, nil
	case string:
		// double-encoded column
		return decodeBidsText(v)
	case []any:
		return decodeBidEntries(v)
	default:
		return nil, fmt.Errorf("decode bids: expected array, got %T: %w", parsed, biddingerrors.ErrMalformedBids)
	}
}

func decodeBidEntries(entries []any) ([]models.Bid, error) {
	bids := make([]models.Bid, 0, len(entries))
	for i, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("decode bids: entry %d is %T: %w", i, e, biddingerrors.ErrMalformedBids)
		}

		amount, err := amountFrom(m["amount"])
		if err != nil {
			return nil, fmt.Errorf("decode bids: entry %d: %v: %w", i, err, biddingerrors.ErrMalformedBids)
		}

		bid := models.Bid{Amount: amount}
		if name, ok := m["userName"].(string); ok {
			bid.BidderName = name
		}
		if ts, ok := m["timestamp"].(string); ok && ts != "" {
			parsed, err := time.Parse(time.RFC3339Nano, ts)
			if err != nil {
				return nil, fmt.Errorf("decode bids: entry %d timestamp: %v: %w", i, err, biddingerrors.ErrMalformedBids)
			}
			bid.SubmittedAt = parsed.UTC()
		}
		bids = append(bids, bid)
	}
	return bids, nil
}

func amountFrom(v any) (float64, error) {
	switch a := v.(type) {
	case float64:
		return a, nil
	case int:
		return float64(a), nil
	case int64:
		return float64(a), nil
	case json.Number:
		return models.ParseAmount(a.String())
	case string:
		return models.ParseAmount(a)
	case nil:
		return 0, fmt.Errorf("missing amount")
	default:
		return 0, fmt.Errorf("unsupported amount type %T", v)
	}
}

// EncodeBids serializes bids in the canonical stored form.
func EncodeBids(bids []models.Bid) ([]byte, error) {
	if bids == nil {
		bids = []models.Bid{}
	}
	out := make([]models.Bid, len(bids))
	for i, b := range bids {
		b.SubmittedAt = b.SubmittedAt.UTC()
		out[i] = b
	}
	return json.Marshal(out)
}
