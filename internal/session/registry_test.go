package session

import (
	"testing"
	"time"

	"github.com/chronicchat/tokebot/internal/discord"
	"github.com/stretchr/testify/require"
)

func registryEvent(channelID, authorID string, isBot bool) discord.MessageEvent {
	return discord.MessageEvent{
		MessageID:   "m-1",
		AuthorID:    authorID,
		AuthorIsBot: isBot,
		ChannelID:   channelID,
		ChannelName: "side-channel",
		GuildID:     "guild-1",
		GuildName:   "ChronicChat",
		Text:        "hello there",
	}
}

func newTestRegistry(t *testing.T) (*Registry, *mockStore) {
	t.Helper()
	cfg := testConfig()
	monitor, err := NewMonitor(cfg.BannedPhrases)
	require.NoError(t, err)
	st := &mockStore{}
	clock := newFakeClock(time.Date(2021, 4, 20, 16, 0, 0, 0, time.UTC))
	return NewRegistry(cfg, st, &mockGateway{}, &mockSummarySender{}, clock, monitor), st
}

func TestRegistryCreatesControllerOncePerChannel(t *testing.T) {
	req := require.New(t)
	reg, st := newTestRegistry(t)

	reg.HandleMessage(registryEvent("chan-a", "alice", false))
	reg.HandleMessage(registryEvent("chan-a", "bob", false))
	reg.HandleMessage(registryEvent("chan-b", "alice", false))

	req.Len(reg.controllers, 2)
	req.Len(st.upserts, 2)
	req.Equal("chan-a", st.upserts[0].ChannelID)
	req.Equal("chan-b", st.upserts[1].ChannelID)
}

func TestRegistryIgnoresBotAuthors(t *testing.T) {
	req := require.New(t)
	reg, st := newTestRegistry(t)

	reg.HandleMessage(registryEvent("chan-a", "other-bot", true))
	req.Empty(reg.controllers)
	req.Empty(st.upserts)
}
