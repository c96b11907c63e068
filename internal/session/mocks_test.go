package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chronicchat/tokebot/internal/config"
	"github.com/chronicchat/tokebot/internal/discord"
	"github.com/chronicchat/tokebot/internal/store"
	"github.com/chronicchat/tokebot/internal/webhook"
)

// fakeClock drives timers deterministically. Advance fires due timer
// callbacks in chronological order; callbacks post events onto the
// controller's queue, which tests drain explicitly.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	// onFire runs after each timer callback so queued events are handled
	// at the fire time, not after the whole advance.
	onFire func()
}

type fakeTimer struct {
	clock *fakeClock
	when  time.Time
	fn    func()
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{clock: f, when: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	f := t.clock
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, pending := range f.timers {
		if pending == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeClock) pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()
	for {
		f.mu.Lock()
		sort.Slice(f.timers, func(i, j int) bool { return f.timers[i].when.Before(f.timers[j].when) })
		if len(f.timers) == 0 || f.timers[0].when.After(target) {
			f.now = target
			f.mu.Unlock()
			return
		}
		t := f.timers[0]
		f.timers = f.timers[1:]
		f.now = t.when
		f.mu.Unlock()
		t.fn()
		if f.onFire != nil {
			f.onFire()
		}
	}
}

type sentMessage struct {
	channelID string
	content   string
}

type mockGateway struct {
	sent            []sentMessage
	reactions       []string
	rolesAdded      []string
	roleIDByName    map[string]string
	channelIDByName map[string]string
	lastAuthorID    string
	lastAuthorBot   bool
	lastAuthorErr   error
}

func (m *mockGateway) Connect(_ context.Context) error                     { return nil }
func (m *mockGateway) Close() error                                        { return nil }
func (m *mockGateway) Run() error                                          { return nil }
func (m *mockGateway) GetBotUserID() (string, error)                       { return "bot-self", nil }
func (m *mockGateway) RegisterMessageHandler(_ func(discord.MessageEvent)) {}

func (m *mockGateway) SendChannelMessage(channelID, content string) error {
	m.sent = append(m.sent, sentMessage{channelID: channelID, content: content})
	return nil
}

func (m *mockGateway) ReactToMessage(_, _, emoji string) error {
	m.reactions = append(m.reactions, emoji)
	return nil
}

func (m *mockGateway) AddRole(_, userID, roleID string) error {
	m.rolesAdded = append(m.rolesAdded, userID+":"+roleID)
	return nil
}

func (m *mockGateway) FindRoleByName(_, name string) (string, error) {
	if id, ok := m.roleIDByName[name]; ok {
		return id, nil
	}
	return "role-" + name, nil
}

func (m *mockGateway) FindChannelByName(_, name string) (string, error) {
	if id, ok := m.channelIDByName[name]; ok {
		return id, nil
	}
	return "chan-" + name, nil
}

func (m *mockGateway) LastMessageAuthor(_ string) (string, bool, error) {
	return m.lastAuthorID, m.lastAuthorBot, m.lastAuthorErr
}

func (m *mockGateway) sentTo(channelID string) []string {
	var out []string
	for _, s := range m.sent {
		if s.channelID == channelID {
			out = append(out, s.content)
		}
	}
	return out
}

type mockStore struct {
	upserts    []store.UpsertChannelInput
	durations  *store.Durations
	getErr     error
	getCalls   int
	setCalls   []store.Durations
	setErr     error
	warnings   []store.WarningInput
	summaries  []store.SessionSummaryInput
	listByKind map[store.SummaryKind][]store.SessionSummary
}

func (m *mockStore) UpsertChannel(_ context.Context, input store.UpsertChannelInput) error {
	m.upserts = append(m.upserts, input)
	return nil
}

func (m *mockStore) GetDurations(_ context.Context, _ string) (*store.Durations, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.durations, nil
}

func (m *mockStore) SetDurations(_ context.Context, _ string, d store.Durations) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setCalls = append(m.setCalls, d)
	return nil
}

func (m *mockStore) AppendWarning(_ context.Context, input store.WarningInput) error {
	m.warnings = append(m.warnings, input)
	return nil
}

func (m *mockStore) AppendSessionSummary(_ context.Context, input store.SessionSummaryInput) error {
	m.summaries = append(m.summaries, input)
	return nil
}

func (m *mockStore) ListSessionSummaries(_ context.Context, _ string, kind store.SummaryKind) ([]store.SessionSummary, error) {
	return m.listByKind[kind], nil
}

func (m *mockStore) summariesOfKind(kind store.SummaryKind) []store.SessionSummaryInput {
	var out []store.SessionSummaryInput
	for _, s := range m.summaries {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

type mockSummarySender struct {
	payloads []webhook.SessionSummaryPayload
}

func (m *mockSummarySender) SendSummary(_ context.Context, payload webhook.SessionSummaryPayload) error {
	m.payloads = append(m.payloads, payload)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                     "development",
		DiscordToken:            "token",
		DatabaseURL:             "postgres://localhost/tokebot",
		CommandPrefix:           "!",
		SessionStartRoles:       []string{"Moderators", "Veteran CC Members", "Stoner"},
		ModerationRoleMarker:    "mod",
		WarnedRolePrefix:        "Warned",
		ModerationChannelName:   "moderation",
		MainChannelNames:        []string{"main-chat", "general"},
		DefaultSessionDuration:  5 * time.Minute,
		DefaultReminderInterval: 2 * time.Minute,
		BannedPhrases:           []string{"lsd", "cocaine", "mdma", "pcp"},
		ReactionEmoji:           "😁",
		CustomReactionGuildName: "chronicchat",
	}
}

type testEnv struct {
	cfg     *config.Config
	clock   *fakeClock
	gateway *mockGateway
	store   *mockStore
	sender  *mockSummarySender
	ctrl    *Controller
}

func newTestEnv(cfg *config.Config) *testEnv {
	return newTestEnvInChannel(cfg, "main-chat")
}

func newTestEnvInChannel(cfg *config.Config, channelName string) *testEnv {
	clock := newFakeClock(time.Date(2021, 4, 20, 16, 20, 0, 0, time.UTC))
	gw := &mockGateway{}
	st := &mockStore{}
	sender := &mockSummarySender{}
	monitor, err := NewMonitor(cfg.BannedPhrases)
	if err != nil {
		panic(err)
	}
	ctrl := newController(cfg, st, gw, sender, clock, monitor, "bot-self", discord.MessageEvent{
		ChannelID:   "chan-1",
		ChannelName: channelName,
		GuildID:     "guild-1",
		GuildName:   "ChronicChat",
	})
	env := &testEnv{cfg: cfg, clock: clock, gateway: gw, store: st, sender: sender, ctrl: ctrl}
	clock.onFire = env.drain
	return env
}

// drain processes queued events on the test goroutine, standing in for the
// controller's run loop.
func (e *testEnv) drain() {
	for {
		select {
		case ev := <-e.ctrl.events:
			e.ctrl.dispatchEvent(ev)
		default:
			return
		}
	}
}

func (e *testEnv) message(authorID, text string, roles ...string) {
	e.ctrl.handleMessage(discord.MessageEvent{
		MessageID:       "msg-1",
		AuthorID:        authorID,
		AuthorRoleNames: roles,
		ChannelID:       e.ctrl.channelID,
		ChannelName:     e.ctrl.channelName,
		GuildID:         e.ctrl.guildID,
		GuildName:       e.ctrl.guildName,
		Text:            text,
		CreatedAt:       e.clock.Now(),
	})
}

func (e *testEnv) advance(d time.Duration) {
	e.clock.Advance(d)
	e.drain()
}
