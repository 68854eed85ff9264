package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/domain"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/session"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

// Message discriminators.
const (
	ActionSaveLink  = "saveLink"
	TypeSyncSession = "SYNC_SESSION"
)

// Tab identifies the page a capture request targets.
type Tab struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Message is the envelope of the agent's message surface. Capture requests
// carry an action, session sync carries a type; exactly one is set.
type Message struct {
	Action  string              `json:"action,omitempty"`
	Type    string              `json:"type,omitempty"`
	Tab     *Tab                `json:"tab,omitempty"`
	Session *session.Credential `json:"session"`
}

// SaveAck acknowledges a saveLink request.
type SaveAck struct {
	Success bool               `json:"success"`
	Data    *domain.LinkRecord `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// SyncAck acknowledges a SYNC_SESSION request. Every sync is acknowledged,
// storage trouble included.
type SyncAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HandleSyncSession stores the given credential, or clears the stored one
// when cred is nil (sign-out).
func (d *Dispatcher) HandleSyncSession(ctx context.Context, cred *session.Credential) SyncAck {
	var err error
	if cred != nil {
		err = d.sessions.Save(ctx, cred)
	} else {
		err = d.sessions.Clear(ctx)
	}
	if err != nil {
		d.logger.Error("session sync failed", logger.Error(err))
		return SyncAck{Error: err.Error()}
	}
	return SyncAck{Success: true}
}

// HandleMessage decodes a raw message and routes it to the matching
// handler. Unknown messages are ignored with a nil response, mirroring a
// listener that simply does not answer.
func (d *Dispatcher) HandleMessage(ctx context.Context, raw []byte) (any, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}

	switch {
	case msg.Action == ActionSaveLink:
		if msg.Tab == nil {
			return SaveAck{Error: errMsgInvalidTab}, nil
		}
		return d.SaveLink(ctx, *msg.Tab), nil
	case msg.Type == TypeSyncSession:
		return d.HandleSyncSession(ctx, msg.Session), nil
	default:
		return nil, nil
	}
}
