package repository

import (
	"encoding/json"
	"testing"
	"time"

	"storefront/internal/biddingerrors"
	model "storefront/internal/models"

	"github.com/stretchr/testify/require"
)

func TestDecodeBids(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	canonical := `[{"amount":1200,"userName":"Ali","timestamp":"2024-03-01T10:30:00Z"}]`
	doubled, err := json.Marshal(canonical)
	require.NoError(t, err)

	tests := []struct {
		name      string
		raw       any
		want      []model.Bid
		wantError bool
	}{
		{name: "nil", raw: nil, want: []model.Bid{}},
		{name: "empty_text", raw: "", want: []model.Bid{}},
		{name: "null_text", raw: "null", want: []model.Bid{}},
		{name: "empty_array", raw: "[]", want: []model.Bid{}},
		{name: "json_text", raw: canonical, want: []model.Bid{{Amount: 1200, BidderName: "Ali", SubmittedAt: ts}}},
		{name: "json_bytes", raw: []byte(canonical), want: []model.Bid{{Amount: 1200, BidderName: "Ali", SubmittedAt: ts}}},
		{name: "double_encoded", raw: string(doubled), want: []model.Bid{{Amount: 1200, BidderName: "Ali", SubmittedAt: ts}}},
		{
			name: "formatted_amount",
			raw:  `[{"amount":"1,500","userName":"Sara","timestamp":"2024-03-01T10:30:00Z"}]`,
			want: []model.Bid{{Amount: 1500, BidderName: "Sara", SubmittedAt: ts}},
		},
		{
			name: "decoded_entries",
			raw:  []any{map[string]any{"amount": 900.0, "userName": "Omar"}},
			want: []model.Bid{{Amount: 900, BidderName: "Omar"}},
		},
		{
			name: "decoded_maps",
			raw:  []map[string]any{{"amount": 700, "userName": "Hina"}},
			want: []model.Bid{{Amount: 700, BidderName: "Hina"}},
		},
		{name: "not_json", raw: "{{", wantError: true},
		{name: "object_instead_of_array", raw: `{"amount":1}`, wantError: true},
		{name: "entry_not_object", raw: `[1,2]`, wantError: true},
		{name: "missing_amount", raw: `[{"userName":"x"}]`, wantError: true},
		{name: "bad_timestamp", raw: `[{"amount":1,"timestamp":"yesterday"}]`, wantError: true},
		{name: "unsupported_type", raw: 42, wantError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			bids, err := DecodeBids(tc.raw)
			if tc.wantError {
				require.ErrorIs(t, err, biddingerrors.ErrMalformedBids)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, bids)
		})
	}
}

func TestEncodeBids(t *testing.T) {
	t.Parallel()

	encoded, err := EncodeBids(nil)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(encoded))

	local := time.Date(2024, 3, 1, 15, 30, 0, 0, time.FixedZone("PKT", 5*60*60))
	encoded, err = EncodeBids([]model.Bid{{Amount: 1200, BidderName: "Ali", SubmittedAt: local}})
	require.NoError(t, err)
	require.JSONEq(t, `[{"amount":1200,"userName":"Ali","timestamp":"2024-03-01T10:30:00Z"}]`, string(encoded))

	decoded, err := DecodeBids(encoded)
	require.NoError(t, err)
	require.True(t, local.Equal(decoded[0].SubmittedAt))
}
