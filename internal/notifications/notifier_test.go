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

func TestPublishDeliversToSessionChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, Channel("sid-1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	notifier := NewRedisNotifier(rdb)
	notifier.Publish(ctx, "sid-1", KindSuccess, "Welcome back, John Doe!")

	select {
	case msg := <-sub.Channel():
		var toast Toast
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &toast))
		assert.Equal(t, KindSuccess, toast.Kind)
		assert.Equal(t, "Welcome back, John Doe!", toast.Message)
		assert.False(t, toast.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("toast never arrived")
	}
}

func TestPublishWithoutRedisDoesNotPanic(t *testing.T) {
	notifier := NewRedisNotifier(nil)
	notifier.Publish(context.Background(), "sid-1", KindError, "lost toast")
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "notify:session:abc", Channel("abc"))
}
