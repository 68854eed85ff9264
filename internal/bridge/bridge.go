// Package bridge relays authentication state changes from the web
// application to the capture agent, keeping the agent's mirrored session
// in step with sign-ins, token refreshes and sign-outs.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/dispatcher"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/session"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

// Auth event names published by the web application.
const (
	EventSignedIn       = "signed_in"
	EventTokenRefreshed = "token_refreshed"
	EventSignedOut      = "signed_out"
)

const defaultAuthChannel = "auth:events"

// Config holds bridge settings. An empty ExtensionID disables the bridge.
type Config struct {
	ExtensionID string `yaml:"extension_id" env:"BRIDGE_EXTENSION_ID"`
	AuthChannel string `yaml:"auth_channel" env:"BRIDGE_AUTH_CHANNEL"`
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.AuthChannel == "" {
		c.AuthChannel = defaultAuthChannel
	}
}

// Enabled reports whether the bridge has a sync target.
func (c Config) Enabled() bool {
	return c.ExtensionID != ""
}

// authEvent is the wire form of an authentication state change.
type authEvent struct {
	Event   string              `json:"event"`
	Session *session.Credential `json:"session"`
}

// Bridge forwards auth events as session sync messages.
type Bridge struct {
	cfg    Config
	client *redis.Client
	logger logger.Logger
}

// New creates a Bridge.
func New(cfg Config, client *redis.Client, log logger.Logger) *Bridge {
	cfg.SetDefaults()
	return &Bridge{cfg: cfg, client: client, logger: log}
}

// ExtensionChannel returns the channel sync messages are delivered on.
func (b *Bridge) ExtensionChannel() string {
	return "extension:" + b.cfg.ExtensionID
}

// Run subscribes to the auth event channel and relays events until the
// context is cancelled. Relay failures are logged and skipped; the bridge
// is best-effort by design of the sync protocol.
func (b *Bridge) Run(ctx context.Context) error {
	if !b.cfg.Enabled() {
		b.logger.Info("session bridge disabled, no extension id configured")
		<-ctx.Done()
		return nil
	}

	sub := b.client.Subscribe(ctx, b.cfg.AuthChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", b.cfg.AuthChannel, err)
	}

	b.logger.Info("session bridge running",
		logger.String("auth_channel", b.cfg.AuthChannel),
		logger.String("extension_channel", b.ExtensionChannel()))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(ctx, []byte(msg.Payload))
		}
	}
}

func (b *Bridge) handle(ctx context.Context, payload []byte) {
	var event authEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		b.logger.Warn("ignoring malformed auth event", logger.Error(err))
		return
	}

	var cred *session.Credential
	switch event.Event {
	case EventSignedIn, EventTokenRefreshed:
		if event.Session == nil {
			b.logger.Warn("auth event without session payload",
				logger.String("event", event.Event))
			return
		}
		cred = event.Session
	case EventSignedOut:
		cred = nil
	default:
		b.logger.Debug("ignoring unknown auth event",
			logger.String("event", event.Event))
		return
	}

	sync := dispatcher.Message{Type: dispatcher.TypeSyncSession, Session: cred}
	data, err := json.Marshal(sync)
	if err != nil {
		b.logger.Error("failed to encode sync message", logger.Error(err))
		return
	}

	if err := b.client.Publish(ctx, b.ExtensionChannel(), data).Err(); err != nil {
		b.logger.Error("failed to forward sync message",
			logger.String("event", event.Event),
			logger.Error(err))
		return
	}

	b.logger.Debug("session sync forwarded",
		logger.String("event", event.Event))
}
