package store

import (
	"context"
	"time"

	"github.com/chronicchat/tokebot/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) store.Store {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) UpsertChannel(ctx context.Context, input store.UpsertChannelInput) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO channels (channel_id, channel_name, guild_id, guild_name, joined_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (channel_id) DO NOTHING`,
		input.ChannelID, input.ChannelName, input.GuildID, input.GuildName, input.JoinedAt)
	return err
}

func (s *PostgresStore) GetDurations(ctx context.Context, channelID string) (*store.Durations, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT session_ms, reminder_ms FROM channel_times WHERE channel_id = $1`,
		channelID)
	var sessionMs, reminderMs int64
	if err := row.Scan(&sessionMs, &reminderMs); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &store.Durations{
		Session:  time.Duration(sessionMs) * time.Millisecond,
		Reminder: time.Duration(reminderMs) * time.Millisecond,
	}, nil
}

func (s *PostgresStore) SetDurations(ctx context.Context, channelID string, d store.Durations) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO channel_times (channel_id, session_ms, reminder_ms, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (channel_id) DO UPDATE SET session_ms = $2, reminder_ms = $3, updated_at = NOW()`,
		channelID, d.Session.Milliseconds(), d.Reminder.Milliseconds())
	return err
}

func (s *PostgresStore) AppendWarning(ctx context.Context, input store.WarningInput) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO warned_messages (user_id, warning_number, message, created_at)
		 VALUES ($1, $2, $3, $4)`,
		input.UserID, input.Tier, input.Message, input.CreatedAt)
	return err
}

func (s *PostgresStore) AppendSessionSummary(ctx context.Context, input store.SessionSummaryInput) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_summaries (channel_id, kind, participant_count, participants, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		input.ChannelID, string(input.Kind), input.Count, input.Participants, input.CreatedAt)
	return err
}

func (s *PostgresStore) ListSessionSummaries(ctx context.Context, channelID string, kind store.SummaryKind) ([]store.SessionSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, channel_id, kind, participant_count, participants, created_at
		 FROM session_summaries WHERE channel_id = $1 AND kind = $2
		 ORDER BY participant_count DESC, created_at DESC`,
		channelID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []store.SessionSummary
	for rows.Next() {
		var sum store.SessionSummary
		var kindStr string
		if err := rows.Scan(&sum.ID, &sum.ChannelID, &kindStr, &sum.ParticipantCount, &sum.Participants, &sum.CreatedAt); err != nil {
			return nil, err
		}
		sum.Kind = store.SummaryKind(kindStr)
		list = append(list, sum)
	}
	return list, rows.Err()
}
