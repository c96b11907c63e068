package discord

import (
	"context"
	"time"
)

// MessageEvent is an inbound guild text message, flattened to the fields the
// session logic needs.
type MessageEvent struct {
	MessageID       string
	AuthorID        string
	AuthorIsBot     bool
	AuthorRoleNames []string
	ChannelID       string
	ChannelName     string
	GuildID         string
	GuildName       string
	Text            string
	CreatedAt       time.Time
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	Run() error
	GetBotUserID() (string, error)
	RegisterMessageHandler(handler func(MessageEvent))
	SendChannelMessage(channelID, content string) error
	ReactToMessage(channelID, messageID, emoji string) error
	AddRole(guildID, userID, roleID string) error
	FindRoleByName(guildID, name string) (string, error)
	FindChannelByName(guildID, name string) (string, error)
	// LastMessageAuthor reports the author of the most recent message in the
	// channel, for the reminder-suppression policy.
	LastMessageAuthor(channelID string) (userID string, isBot bool, err error)
}
