package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/chronicchat/tokebot/internal/config"
	"github.com/chronicchat/tokebot/internal/discord"
	"github.com/chronicchat/tokebot/internal/store"
	"github.com/chronicchat/tokebot/internal/webhook"
)

// Registry maps channel IDs to their controllers, creating one on the first
// observed message. Controllers are never evicted; idle ones hold no timers
// once their broadcaster self-cancels, so growth is bounded by guild size.
type Registry struct {
	cfg     *config.Config
	store   store.Store
	gateway discord.Client
	summary webhook.Sender
	clock   Clock
	monitor *Monitor

	mu          sync.Mutex
	controllers map[string]*Controller
	botUserID   string
}

func NewRegistry(cfg *config.Config, st store.Store, gw discord.Client, wh webhook.Sender, clock Clock, monitor *Monitor) *Registry {
	return &Registry{
		cfg:         cfg,
		store:       st,
		gateway:     gw,
		summary:     wh,
		clock:       clock,
		monitor:     monitor,
		controllers: make(map[string]*Controller),
	}
}

func (r *Registry) SetBotUserID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.botUserID = id
}

// HandleMessage routes an inbound message to its channel's controller.
func (r *Registry) HandleMessage(ev discord.MessageEvent) {
	if ev.AuthorIsBot {
		return
	}
	r.controllerFor(ev).post(messageEvent{msg: ev})
}

func (r *Registry) controllerFor(ev discord.MessageEvent) *Controller {
	r.mu.Lock()
	c, ok := r.controllers[ev.ChannelID]
	if !ok {
		c = newController(r.cfg, r.store, r.gateway, r.summary, r.clock, r.monitor, r.botUserID, ev)
		r.controllers[ev.ChannelID] = c
		c.start()
	}
	r.mu.Unlock()
	if !ok {
		r.registerChannel(ev)
	}
	return c
}

func (r *Registry) registerChannel(ev discord.MessageEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer cancel()
	err := r.store.UpsertChannel(ctx, store.UpsertChannelInput{
		ChannelID:   ev.ChannelID,
		ChannelName: ev.ChannelName,
		GuildID:     ev.GuildID,
		GuildName:   ev.GuildName,
		JoinedAt:    r.clock.Now(),
	})
	if err != nil {
		slog.Error("failed to register channel", "error", err, "channel_id", ev.ChannelID)
		return
	}
	slog.Info("channel registered", "channel_id", ev.ChannelID, "channel_name", ev.ChannelName, "guild_id", ev.GuildID)
}
