package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/chronicchat/tokebot/internal/discord"
)

type Client struct {
	session   *discordgo.Session
	token     string
	botUserID string
}

func NewClient(token string) discordpkg.Client {
	return &Client{
		token: token,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	_ = ctx
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	c.session = s
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	if err := s.Open(); err != nil {
		return err
	}
	userID, err := c.GetBotUserID()
	if err != nil {
		return err
	}
	c.botUserID = userID
	return nil
}

func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) GetBotUserID() (string, error) {
	if c.botUserID != "" {
		return c.botUserID, nil
	}
	if c.session.State != nil && c.session.State.User != nil {
		return c.session.State.User.ID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (c *Client) RegisterMessageHandler(handler func(discordpkg.MessageEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m == nil || m.Author == nil {
			return
		}
		if m.GuildID == "" {
			return
		}
		guildName := ""
		if g := c.resolveGuild(m.GuildID); g != nil {
			guildName = g.Name
		}
		channelName := ""
		if ch := c.resolveChannel(m.ChannelID); ch != nil {
			channelName = ch.Name
		}
		handler(discordpkg.MessageEvent{
			MessageID:       m.ID,
			AuthorID:        m.Author.ID,
			AuthorIsBot:     m.Author.Bot,
			AuthorRoleNames: c.resolveMemberRoleNames(m.GuildID, m.Member),
			ChannelID:       m.ChannelID,
			ChannelName:     channelName,
			GuildID:         m.GuildID,
			GuildName:       guildName,
			Text:            m.Content,
			CreatedAt:       m.Timestamp,
		})
	})
}

func (c *Client) SendChannelMessage(channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, content)
	return err
}

func (c *Client) ReactToMessage(channelID, messageID, emoji string) error {
	return c.session.MessageReactionAdd(channelID, messageID, emoji)
}

func (c *Client) AddRole(guildID, userID, roleID string) error {
	return c.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (c *Client) FindRoleByName(guildID, name string) (string, error) {
	roles, err := c.guildRoles(guildID)
	if err != nil {
		return "", err
	}
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("role %q not found in guild %s", name, guildID)
}

func (c *Client) FindChannelByName(guildID, name string) (string, error) {
	var channels []*discordgo.Channel
	if g, err := c.session.State.Guild(guildID); err == nil && g != nil && len(g.Channels) > 0 {
		channels = g.Channels
	} else {
		channels, err = c.session.GuildChannels(guildID)
		if err != nil {
			return "", err
		}
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && strings.EqualFold(ch.Name, name) {
			return ch.ID, nil
		}
	}
	return "", fmt.Errorf("channel %q not found in guild %s", name, guildID)
}

func (c *Client) LastMessageAuthor(channelID string) (string, bool, error) {
	msgs, err := c.session.ChannelMessages(channelID, 1, "", "", "")
	if err != nil {
		return "", false, err
	}
	if len(msgs) == 0 || msgs[0].Author == nil {
		return "", false, nil
	}
	return msgs[0].Author.ID, msgs[0].Author.Bot, nil
}

func (c *Client) Run() error {
	// discordgo runs its own websocket goroutines after Open; block forever
	// so the caller owns shutdown via signals.
	select {}
}

func (c *Client) resolveGuild(guildID string) *discordgo.Guild {
	if g, err := c.session.State.Guild(guildID); err == nil && g != nil {
		return g
	}
	g, err := c.session.Guild(guildID)
	if err != nil {
		return nil
	}
	return g
}

func (c *Client) resolveChannel(channelID string) *discordgo.Channel {
	if ch, err := c.session.State.Channel(channelID); err == nil && ch != nil {
		return ch
	}
	ch, err := c.session.Channel(channelID)
	if err != nil {
		return nil
	}
	return ch
}

func (c *Client) guildRoles(guildID string) ([]*discordgo.Role, error) {
	if g, err := c.session.State.Guild(guildID); err == nil && g != nil && len(g.Roles) > 0 {
		return g.Roles, nil
	}
	return c.session.GuildRoles(guildID)
}

func (c *Client) resolveMemberRoleNames(guildID string, member *discordgo.Member) []string {
	if member == nil || len(member.Roles) == 0 {
		return nil
	}
	roles, err := c.guildRoles(guildID)
	if err != nil {
		return nil
	}
	nameByID := make(map[string]string, len(roles))
	for _, r := range roles {
		nameByID[r.ID] = r.Name
	}
	names := make([]string, 0, len(member.Roles))
	for _, id := range member.Roles {
		if name, ok := nameByID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}
