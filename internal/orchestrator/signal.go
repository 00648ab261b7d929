package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soundlink/conductor/internal/logger"
)

// Signaling event types consumed from the real-time gateway. The transport
// delivers envelopes in order, at least once; everything else is ignored.
const (
	eventVoiceStateUpdate  = "VOICE_STATE_UPDATE"
	eventVoiceServerUpdate = "VOICE_SERVER_UPDATE"
)

type envelope struct {
	Op   int             `json:"op"`
	Type string          `json:"t"`
	Data json.RawMessage `json:"d"`
}

type voiceStateData struct {
	GuildID   string `json:"guild_id"`
	SessionID string `json:"session_id"`
	ChannelID string `json:"channel_id,omitempty"`
}

type voiceServerData struct {
	GuildID  string `json:"guild_id"`
	Endpoint string `json:"endpoint"`
	Token    string `json:"token"`
}

// HandleSignal ingests one signaling envelope and routes it to the guild's
// session. Envelopes of other event types are dropped silently: the gateway
// stream carries far more than voice signaling.
func (o *Orchestrator) HandleSignal(ctx context.Context, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("malformed signaling envelope: %w", err)
	}

	switch env.Type {
	case eventVoiceStateUpdate:
		var d voiceStateData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		o.logger.Debug("voice state update",
			logger.String("guild", d.GuildID))
		return o.sessions.SessionUpdate(ctx, d.GuildID, d.SessionID, d.ChannelID)

	case eventVoiceServerUpdate:
		var d voiceServerData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		o.logger.Debug("voice server update",
			logger.String("guild", d.GuildID),
			logger.String("endpoint", d.Endpoint))
		return o.sessions.ServerUpdate(ctx, d.GuildID, d.Endpoint, d.Token)
	}
	return nil
}
