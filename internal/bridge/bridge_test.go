package bridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/dispatcher"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

func setupBridge(t *testing.T) (*redis.Client, *Bridge, <-chan *redis.Message, context.CancelFunc) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	b := New(Config{ExtensionID: "ext-1"}, client, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sub := client.Subscribe(ctx, b.ExtensionChannel())
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	go func() { _ = b.Run(ctx) }()

	// Give the bridge a moment to subscribe before publishing events.
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, defaultAuthChannel).Result()
		return err == nil && n[defaultAuthChannel] > 0
	}, 2*time.Second, 10*time.Millisecond)

	return client, b, sub.Channel(), cancel
}

func receiveSync(t *testing.T, ch <-chan *redis.Message) dispatcher.Message {
	t.Helper()
	select {
	case msg := <-ch:
		var sync dispatcher.Message
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &sync))
		return sync
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded sync message")
		return dispatcher.Message{}
	}
}

func TestBridgeForwardsSignIn(t *testing.T) {
	client, _, ch, _ := setupBridge(t)
	ctx := context.Background()

	event := `{"event":"signed_in","session":{"access_token":"tok","user_id":"user-1"}}`
	require.NoError(t, client.Publish(ctx, defaultAuthChannel, event).Err())

	sync := receiveSync(t, ch)
	assert.Equal(t, dispatcher.TypeSyncSession, sync.Type)
	require.NotNil(t, sync.Session)
	assert.Equal(t, "tok", sync.Session.AccessToken)
}

func TestBridgeForwardsSignOutAsNull(t *testing.T) {
	client, _, ch, _ := setupBridge(t)
	ctx := context.Background()

	require.NoError(t, client.Publish(ctx, defaultAuthChannel, `{"event":"signed_out"}`).Err())

	sync := receiveSync(t, ch)
	assert.Equal(t, dispatcher.TypeSyncSession, sync.Type)
	assert.Nil(t, sync.Session)
}

func TestBridgeIgnoresUnknownAndMalformedEvents(t *testing.T) {
	client, _, ch, _ := setupBridge(t)
	ctx := context.Background()

	require.NoError(t, client.Publish(ctx, defaultAuthChannel, `{"event":"password_changed"}`).Err())
	require.NoError(t, client.Publish(ctx, defaultAuthChannel, `not json`).Err())
	require.NoError(t, client.Publish(ctx, defaultAuthChannel, `{"event":"signed_out"}`).Err())

	// Only the signed_out event makes it through.
	sync := receiveSync(t, ch)
	assert.Nil(t, sync.Session)

	select {
	case msg := <-ch:
		t.Fatalf("unexpected extra message: %s", msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestConfigEnabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{ExtensionID: "ext-1"}.Enabled())
}
