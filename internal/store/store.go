package store

import (
	"context"
	"time"
)

type UpsertChannelInput struct {
	ChannelID   string
	ChannelName string
	GuildID     string
	GuildName   string
	JoinedAt    time.Time
}

type WarningInput struct {
	UserID    string
	Tier      int
	Message   string
	CreatedAt time.Time
}

type SessionSummaryInput struct {
	ChannelID    string
	Kind         SummaryKind
	Count        int
	Participants []string
	CreatedAt    time.Time
}

type ChannelRepository interface {
	UpsertChannel(ctx context.Context, input UpsertChannelInput) error
	// GetDurations returns nil when the channel has no stored durations yet.
	GetDurations(ctx context.Context, channelID string) (*Durations, error)
	SetDurations(ctx context.Context, channelID string, d Durations) error
}

type HistoryRepository interface {
	AppendWarning(ctx context.Context, input WarningInput) error
	AppendSessionSummary(ctx context.Context, input SessionSummaryInput) error
	// ListSessionSummaries returns summaries of one kind ordered by
	// participant count descending.
	ListSessionSummaries(ctx context.Context, channelID string, kind SummaryKind) ([]SessionSummary, error)
}

type Store interface {
	ChannelRepository
	HistoryRepository
}
