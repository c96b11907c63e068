package store

import "time"

type SummaryKind string

const (
	// SummaryKindPre is recorded when a session starts while pre-joined
	// participants already existed.
	SummaryKindPre SummaryKind = "pre"
	// SummaryKindEnd is recorded when a session's end-timer elapses.
	SummaryKindEnd SummaryKind = "end"
)

// Durations are the per-channel configured timer lengths.
type Durations struct {
	Session  time.Duration
	Reminder time.Duration
}

type Warning struct {
	ID        string
	UserID    string
	Tier      int
	Message   string
	CreatedAt time.Time
}

type SessionSummary struct {
	ID               string
	ChannelID        string
	Kind             SummaryKind
	ParticipantCount int
	Participants     []string
	CreatedAt        time.Time
}
