package webhook

import (
	"context"
	"time"
)

// SessionSummaryPayload mirrors an end-of-session summary to an external
// consumer.
type SessionSummaryPayload struct {
	ChannelID          string    `json:"channel_id"`
	ChannelName        string    `json:"channel_name"`
	GuildID            string    `json:"guild_id"`
	ParticipantCount   int       `json:"participant_count"`
	Participants       []string  `json:"participants"`
	SpiritParticipants []string  `json:"spirit_participants"`
	StartedAt          time.Time `json:"started_at"`
	EndedAt            time.Time `json:"ended_at"`
}

type Sender interface {
	SendSummary(ctx context.Context, payload SessionSummaryPayload) error
}
