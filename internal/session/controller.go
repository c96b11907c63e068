package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chronicchat/tokebot/internal/config"
	"github.com/chronicchat/tokebot/internal/discord"
	"github.com/chronicchat/tokebot/internal/store"
	"github.com/chronicchat/tokebot/internal/webhook"
	"github.com/samber/lo"
)

const (
	eventQueueSize   = 128
	storeCallTimeout = 5 * time.Second
	maxWarningTier   = 3
)

type event interface{}

type messageEvent struct{ msg discord.MessageEvent }
type endElapsedEvent struct{ gen uint64 }
type reminderElapsedEvent struct{ gen uint64 }
type broadcastTickEvent struct{ gen uint64 }

// Controller owns one channel's session state. All state is mutated only by
// the run loop, which consumes an ordered event queue; timer fires are
// delivered as events carrying the generation they were armed with, so a
// timer cancelled during rescheduling can never act after its successor.
type Controller struct {
	channelID   string
	channelName string
	guildID     string
	guildName   string

	cfg     *config.Config
	store   store.Store
	gateway discord.Client
	summary webhook.Sender
	clock   Clock
	monitor *Monitor
	routes  []route

	botUserID string
	events    chan event

	// Owned by the run loop.
	sessionRunning   bool
	participants     memberList
	spirit           memberList
	sessionDuration  time.Duration
	reminderInterval time.Duration
	startedAt        time.Time
	initialized      bool

	endTimer      Timer
	endGen        uint64
	reminderTimer Timer
	reminderGen   uint64

	broadcastTimer    Timer
	broadcastGen      uint64
	broadcastInterval time.Duration
}

func newController(cfg *config.Config, st store.Store, gw discord.Client, wh webhook.Sender, clock Clock, monitor *Monitor, botUserID string, ev discord.MessageEvent) *Controller {
	c := &Controller{
		channelID:         ev.ChannelID,
		channelName:       strings.ToLower(ev.ChannelName),
		guildID:           ev.GuildID,
		guildName:         ev.GuildName,
		cfg:               cfg,
		store:             st,
		gateway:           gw,
		summary:           wh,
		clock:             clock,
		monitor:           monitor,
		routes:            commandRoutes(),
		botUserID:         botUserID,
		events:            make(chan event, eventQueueSize),
		sessionDuration:   cfg.DefaultSessionDuration,
		reminderInterval:  cfg.DefaultReminderInterval,
		broadcastInterval: broadcastPollInterval,
	}
	return c
}

// start arms the first broadcast check and launches the run loop.
func (c *Controller) start() {
	c.armBroadcastTimer()
	go c.run()
}

func (c *Controller) post(ev event) {
	c.events <- ev
}

func (c *Controller) run() {
	for ev := range c.events {
		c.dispatchEvent(ev)
	}
}

func (c *Controller) dispatchEvent(ev event) {
	switch e := ev.(type) {
	case messageEvent:
		c.handleMessage(e.msg)
	case endElapsedEvent:
		// Generation checks drop fires from timers that were cancelled
		// after the event was already queued.
		if e.gen == c.endGen {
			c.endSession()
		}
	case reminderElapsedEvent:
		if e.gen == c.reminderGen {
			c.reminderElapsed(e.gen)
		}
	case broadcastTickEvent:
		if e.gen == c.broadcastGen {
			c.broadcastTick()
		}
	}
}

func (c *Controller) handleMessage(msg discord.MessageEvent) {
	if phrase, ok := c.monitor.Match(msg.Text); ok {
		c.applyWarning(msg, phrase)
	}
	if !strings.HasPrefix(msg.Text, c.cfg.CommandPrefix) {
		return
	}
	body := msg.Text[len(c.cfg.CommandPrefix):]
	c.ensureInitialized()
	if r, rest, ok := matchRoute(c.routes, body); ok {
		r.handle(c, msg, rest)
	}
}

// ensureInitialized loads the persisted durations once. A load failure keeps
// the controller on defaults and leaves initialized unset so the next
// command retries.
func (c *Controller) ensureInitialized() {
	if c.initialized {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer cancel()
	d, err := c.store.GetDurations(ctx, c.channelID)
	if err != nil {
		slog.Warn("failed to load channel durations; using defaults", "error", err, "channel_id", c.channelID)
		return
	}
	if d != nil {
		c.sessionDuration = clampDuration(d.Session)
		c.reminderInterval = clampDuration(d.Reminder)
	}
	c.initialized = true
}

// Timer plumbing. Rearming always stops the previous registration and bumps
// the generation within the same serialized step.

func (c *Controller) armEndTimer(d time.Duration) {
	c.stopEndTimer()
	c.endGen++
	gen := c.endGen
	c.endTimer = c.clock.AfterFunc(d, func() {
		c.post(endElapsedEvent{gen: gen})
	})
}

func (c *Controller) stopEndTimer() {
	if c.endTimer != nil {
		c.endTimer.Stop()
		c.endTimer = nil
	}
	c.endGen++
}

func (c *Controller) armReminderTimer() {
	c.stopReminderTimer()
	c.reminderGen++
	c.scheduleReminder(c.reminderGen)
}

func (c *Controller) scheduleReminder(gen uint64) {
	c.reminderTimer = c.clock.AfterFunc(c.reminderInterval, func() {
		c.post(reminderElapsedEvent{gen: gen})
	})
}

func (c *Controller) stopReminderTimer() {
	if c.reminderTimer != nil {
		c.reminderTimer.Stop()
		c.reminderTimer = nil
	}
	c.reminderGen++
}

// Command handlers.

func (c *Controller) handleToke(msg discord.MessageEvent, rest string) {
	// Dual-mode command: a leading integer updates the session duration,
	// anything else is a join or start request.
	if minutes, ok := leadingInt(rest); ok {
		c.setSessionDuration(msg, minutes)
		return
	}
	if !c.sessionRunning {
		if c.canStartSession(msg) {
			c.startSession(msg)
		} else {
			c.reply(msg, fmt.Sprintf(messageRankTooLowFormat, c.cfg.CommandPrefix))
		}
		return
	}
	c.addParticipant(msg)
}

func (c *Controller) handlePre(msg discord.MessageEvent, _ string) {
	c.addParticipant(msg)
}

func (c *Controller) handleSpirit(msg discord.MessageEvent, _ string) {
	if !c.sessionRunning {
		return
	}
	c.spirit.add(msg.AuthorID)
	c.participants.remove(msg.AuthorID)
	c.react(msg)
}

func (c *Controller) handlePing(msg discord.MessageEvent, _ string) {
	latency := c.clock.Now().Sub(msg.CreatedAt).Milliseconds()
	c.reply(msg, fmt.Sprintf(messagePingFormat, latency))
}

func (c *Controller) handleWho(msg discord.MessageEvent, _ string) {
	c.send(composeWhoMessage(c.cfg.CommandPrefix, c.participants.snapshot(), c.spirit.snapshot()))
}

func (c *Controller) handleEnd(msg discord.MessageEvent, _ string) {
	if !c.sessionRunning {
		c.reply(msg, messageNoSessionRunning)
		return
	}
	if !c.canStartSession(msg) {
		c.reply(msg, fmt.Sprintf(messageRankTooLowFormat, c.cfg.CommandPrefix))
		return
	}
	c.endSession()
}

func (c *Controller) handleRecords(_ discord.MessageEvent, _ string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer cancel()
	ends, err := c.store.ListSessionSummaries(ctx, c.channelID, store.SummaryKindEnd)
	if err != nil {
		slog.Error("failed to list session summaries", "error", err, "channel_id", c.channelID)
		return
	}
	pres, err := c.store.ListSessionSummaries(ctx, c.channelID, store.SummaryKindPre)
	if err != nil {
		slog.Error("failed to list pre-session summaries", "error", err, "channel_id", c.channelID)
		return
	}
	largest, largestPre := 0, 0
	if len(ends) > 0 {
		largest = ends[0].ParticipantCount
	}
	if len(pres) > 0 {
		largestPre = pres[0].ParticipantCount
	}
	c.send(composeRecordsMessage(c.channelID, len(ends), len(pres), largest, largestPre))
}

func (c *Controller) handleReminder(msg discord.MessageEvent, rest string) {
	minutes, ok := leadingInt(rest)
	if !ok {
		c.reply(msg, messageInvalidMinutes)
		return
	}
	minutes = clampMinutes(minutes)
	c.reminderInterval = time.Duration(minutes) * time.Minute
	c.persistDurations()
	slog.Info("reminder interval updated", "channel_id", c.channelID, "minutes", minutes)
	c.send(fmt.Sprintf(messageReminderUpdated, minutes))
	c.stopReminderTimer()
	if c.sessionRunning {
		c.armReminderTimer()
	}
}

func (c *Controller) setSessionDuration(msg discord.MessageEvent, minutes int) {
	minutes = clampMinutes(minutes)
	c.sessionDuration = time.Duration(minutes) * time.Minute
	c.persistDurations()
	slog.Info("session duration updated", "channel_id", c.channelID, "minutes", minutes)
	c.send(fmt.Sprintf(messageSessionUpdated, minutes))

	if c.sessionRunning {
		// The session restarts from now for the full new duration, and the
		// reminder cadence is resynchronized against the new end time.
		c.armEndTimer(c.sessionDuration)
		c.startedAt = c.clock.Now()
		c.armReminderTimer()
	}
}

// Session transitions.

func (c *Controller) canStartSession(msg discord.MessageEvent) bool {
	marker := strings.ToLower(c.cfg.ModerationRoleMarker)
	for _, role := range msg.AuthorRoleNames {
		if lo.Contains(c.cfg.SessionStartRoles, role) {
			return true
		}
		if marker != "" && strings.Contains(strings.ToLower(role), marker) {
			return true
		}
	}
	return false
}

func (c *Controller) startSession(msg discord.MessageEvent) {
	others := lo.Filter(c.participants.snapshot(), func(id string, _ int) bool {
		return id != msg.AuthorID
	})
	c.sessionRunning = true

	if c.participants.len() > 0 {
		c.appendSummary(store.SummaryKindPre, c.participants.len(), c.participants.snapshot())
	}

	c.addParticipant(msg)
	c.startedAt = c.clock.Now()
	c.armEndTimer(c.sessionDuration)
	c.armReminderTimer()

	c.send(composeStartMessage(c.cfg.CommandPrefix, msg.AuthorID, others, ceilMinutes(c.sessionDuration)))
	slog.Info("session started", "channel_id", c.channelID, "starter_id", msg.AuthorID, "duration", c.sessionDuration)
}

// autoStartSession begins a session from pre-joined participants without a
// role gate, used by the scheduled broadcaster.
func (c *Controller) autoStartSession() {
	c.sessionRunning = true
	c.startedAt = c.clock.Now()
	c.armEndTimer(c.sessionDuration)
	c.armReminderTimer()
	slog.Info("session auto-started", "channel_id", c.channelID, "participants", c.participants.len())
}

func (c *Controller) endSession() {
	c.stopEndTimer()
	c.stopReminderTimer()

	participants := c.participants.snapshot()
	spirit := c.spirit.snapshot()
	c.send(composeEndMessage(participants, spirit))
	c.appendSummary(store.SummaryKindEnd, len(participants), participants)
	c.sendSummaryWebhook(participants, spirit)

	c.participants.clear()
	c.spirit.clear()
	c.sessionRunning = false
	slog.Info("session ended", "channel_id", c.channelID, "participants", len(participants))
}

func (c *Controller) reminderElapsed(gen uint64) {
	if !c.sessionRunning {
		return
	}
	if !c.shouldSuppressReminder() {
		remaining := c.sessionDuration - c.clock.Now().Sub(c.startedAt)
		minutes := int(math.Round(float64(remaining) / float64(time.Minute)))
		c.send(fmt.Sprintf(messageReminderFormat, c.cfg.CommandPrefix, minutes))
	}
	c.scheduleReminder(gen)
}

// shouldSuppressReminder skips the announcement when the previous channel
// message was already one of ours, so an idle channel is not spammed.
func (c *Controller) shouldSuppressReminder() bool {
	if !c.cfg.ReminderSkipIfLastFromBot || c.botUserID == "" {
		return false
	}
	authorID, isBot, err := c.gateway.LastMessageAuthor(c.channelID)
	if err != nil {
		slog.Warn("failed to inspect last channel message", "error", err, "channel_id", c.channelID)
		return false
	}
	return isBot && authorID == c.botUserID
}

func (c *Controller) addParticipant(msg discord.MessageEvent) {
	c.participants.add(msg.AuthorID)
	c.spirit.remove(msg.AuthorID)
	c.react(msg)
}

// Moderation.

func (c *Controller) applyWarning(msg discord.MessageEvent, phrase string) {
	tier := 1
	for tier < maxWarningTier && c.holdsWarnedRole(msg, tier) {
		tier++
	}
	roleName := fmt.Sprintf("%s %d", c.cfg.WarnedRolePrefix, tier)
	if roleID, err := c.gateway.FindRoleByName(msg.GuildID, roleName); err != nil {
		slog.Error("failed to find warned role", "error", err, "role", roleName, "guild_id", msg.GuildID)
	} else if err := c.gateway.AddRole(msg.GuildID, msg.AuthorID, roleID); err != nil {
		slog.Error("failed to assign warned role", "error", err, "role", roleName, "user_id", msg.AuthorID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer cancel()
	if err := c.store.AppendWarning(ctx, store.WarningInput{
		UserID:    msg.AuthorID,
		Tier:      tier,
		Message:   msg.Text,
		CreatedAt: c.clock.Now(),
	}); err != nil {
		slog.Error("failed to persist warning", "error", err, "user_id", msg.AuthorID, "tier", tier)
	}
	slog.Info("warning applied", "user_id", msg.AuthorID, "tier", tier, "phrase", phrase)

	if tier < maxWarningTier {
		c.send(fmt.Sprintf(messageWarningFormat, msg.AuthorID, tier))
		return
	}
	c.send(fmt.Sprintf(messageFinalWarning, msg.AuthorID))
	modChannelID, err := c.gateway.FindChannelByName(msg.GuildID, c.cfg.ModerationChannelName)
	if err != nil {
		slog.Error("failed to find moderation channel", "error", err, "guild_id", msg.GuildID)
		return
	}
	if err := c.gateway.SendChannelMessage(modChannelID, fmt.Sprintf(messageModAlertFormat, msg.AuthorID, maxWarningTier)); err != nil {
		slog.Error("failed to alert moderation channel", "error", err, "guild_id", msg.GuildID)
	}
}

func (c *Controller) holdsWarnedRole(msg discord.MessageEvent, tier int) bool {
	name := fmt.Sprintf("%s %d", c.cfg.WarnedRolePrefix, tier)
	return lo.ContainsBy(msg.AuthorRoleNames, func(r string) bool {
		return strings.EqualFold(r, name)
	})
}

// Outbound helpers. Platform and persistence calls are best-effort; failures
// are logged and the command still completes with in-memory state.

func (c *Controller) send(content string) {
	if err := c.gateway.SendChannelMessage(c.channelID, content); err != nil {
		slog.Error("failed to send channel message", "error", err, "channel_id", c.channelID)
	}
}

func (c *Controller) reply(msg discord.MessageEvent, content string) {
	c.send(fmt.Sprintf("%s, %s", mention(msg.AuthorID), content))
}

func (c *Controller) react(msg discord.MessageEvent) {
	emoji := c.cfg.ReactionEmoji
	if c.cfg.CustomReactionEmoji != "" && strings.EqualFold(c.guildName, c.cfg.CustomReactionGuildName) {
		emoji = c.cfg.CustomReactionEmoji
	}
	if err := c.gateway.ReactToMessage(msg.ChannelID, msg.MessageID, emoji); err != nil {
		slog.Warn("failed to add reaction", "error", err, "channel_id", msg.ChannelID)
	}
}

func (c *Controller) persistDurations() {
	ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer cancel()
	err := c.store.SetDurations(ctx, c.channelID, store.Durations{
		Session:  c.sessionDuration,
		Reminder: c.reminderInterval,
	})
	if err != nil {
		slog.Error("failed to persist channel durations", "error", err, "channel_id", c.channelID)
	}
}

func (c *Controller) appendSummary(kind store.SummaryKind, count int, participants []string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer cancel()
	err := c.store.AppendSessionSummary(ctx, store.SessionSummaryInput{
		ChannelID:    c.channelID,
		Kind:         kind,
		Count:        count,
		Participants: participants,
		CreatedAt:    c.clock.Now(),
	})
	if err != nil {
		slog.Error("failed to persist session summary", "error", err, "channel_id", c.channelID, "kind", kind)
	}
}

func (c *Controller) sendSummaryWebhook(participants, spirit []string) {
	if c.summary == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer cancel()
	err := c.summary.SendSummary(ctx, webhook.SessionSummaryPayload{
		ChannelID:          c.channelID,
		ChannelName:        c.channelName,
		GuildID:            c.guildID,
		ParticipantCount:   len(participants),
		Participants:       participants,
		SpiritParticipants: spirit,
		StartedAt:          c.startedAt,
		EndedAt:            c.clock.Now(),
	})
	if err != nil {
		slog.Warn("failed to send summary webhook", "error", err, "channel_id", c.channelID)
	}
}

// Parsing helpers.

func leadingInt(s string) (int, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

func clampMinutes(minutes int) int {
	if minutes < config.MinSessionMinutes {
		return config.MinSessionMinutes
	}
	if minutes > config.MaxSessionMinutes {
		return config.MaxSessionMinutes
	}
	return minutes
}

func clampDuration(d time.Duration) time.Duration {
	return time.Duration(clampMinutes(int(d/time.Minute))) * time.Minute
}

func ceilMinutes(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}
