package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCapturesEvents(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()

	rec.Notify(ctx, SeveritySuccess, "Post published successfully!")
	rec.Notify(ctx, SeverityError, "Username already taken")

	items := rec.Items()
	require.Len(t, items, 2)
	assert.Equal(t, SeveritySuccess, items[0].Severity)
	assert.Equal(t, "Post published successfully!", items[0].Message)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, SeverityError, last.Severity)

	rec.Reset()
	_, ok = rec.Last()
	assert.False(t, ok)
}

func TestPublisherWithoutRedis(t *testing.T) {
	pub := NewPublisher(nil)

	// Must not panic; toasts still reach the log.
	pub.Notify(context.Background(), SeverityInfo, "Logged out successfully")
	pub.NotifyRender(context.Background(), "feed")
}

func TestPublisherPublishesToChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, Channel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewPublisher(rdb)
	pub.Notify(ctx, SeveritySuccess, "Welcome back, Alice!")

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
	assert.Equal(t, "toast", ev.Type)
	assert.Equal(t, SeveritySuccess, ev.Severity)
	assert.Equal(t, "Welcome back, Alice!", ev.Message)
	assert.NotZero(t, ev.Timestamp)
}

func TestPublisherPublishesRenderSignals(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, Channel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewPublisher(rdb)
	pub.NotifyRender(ctx, "chat_window")

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
	assert.Equal(t, "render", ev.Type)
	assert.Equal(t, "chat_window", ev.Region)
}
