package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

var winnerNotification = models.Notification{
	Type:    models.NotificationAuctionWinner,
	Title:   "Auction Won!",
	Message: `Congratulations! You won the auction for "Camera" with a bid of PKR 1500`,
}

func TestRecordStoreNotifier(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	err := NewRecordStoreNotifier(repo).Notify(context.Background(), winnerNotification)
	require.NoError(t, err)
	require.Len(t, repo.Notifications(), 1)
	require.Equal(t, winnerNotification.Message, repo.Notifications()[0].Message)
}

func TestRedisPublisher(t *testing.T) {
	t.Parallel()

	t.Run("publishes_json", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{}
		err := NewRedisPublisher(pub, "storefront:notifications").Notify(context.Background(), winnerNotification)
		require.NoError(t, err)
		require.Equal(t, "storefront:notifications", pub.channel)

		var decoded models.Notification
		require.NoError(t, json.Unmarshal(pub.payload, &decoded))
		require.Equal(t, models.NotificationAuctionWinner, decoded.Type)
		require.False(t, decoded.CreatedAt.IsZero())
	})

	t.Run("publish_error", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{err: errors.New("connection refused")}
		err := NewRedisPublisher(pub, "ch").Notify(context.Background(), winnerNotification)
		require.Error(t, err)
		require.Contains(t, err.Error(), "connection refused")
	})
}

func TestComposite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		setup       func(a, b *MockNotifier)
		expectError bool
	}{
		{
			name: "all_succeed",
			setup: func(a, b *MockNotifier) {
				a.EXPECT().Notify(gomock.Any(), winnerNotification).Return(nil)
				b.EXPECT().Notify(gomock.Any(), winnerNotification).Return(nil)
			},
		},
		{
			name: "one_fails_other_still_called",
			setup: func(a, b *MockNotifier) {
				a.EXPECT().Notify(gomock.Any(), winnerNotification).Return(errors.New("db down"))
				b.EXPECT().Notify(gomock.Any(), winnerNotification).Return(nil)
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			a, b := NewMockNotifier(ctrl), NewMockNotifier(ctrl)
			tc.setup(a, b)

			err := NewComposite(a, nil, b).Notify(context.Background(), winnerNotification)
			if tc.expectError {
				require.Error(t, err)
				require.Contains(t, err.Error(), "db down")
			} else {
				require.NoError(t, err)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		require.Error(t, NewComposite().Notify(context.Background(), winnerNotification))
	})
}
