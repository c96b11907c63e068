package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimezoneTable(t *testing.T) {
	req := require.New(t)

	zones := map[int]string{
		0: "Alaska", 12: "Alaska",
		2: "Hawaii", 14: "Hawaii",
		3: "British", 15: "British",
		8: "Eastern", 20: "Eastern",
		9: "Central", 21: "Central",
		10: "Mountain", 22: "Mountain",
		11: "Pacific", 23: "Pacific",
	}
	for hour := 0; hour < 24; hour++ {
		zone, ok := timezoneAt(hour)
		want, recognized := zones[hour]
		req.Equal(recognized, ok, "hour %d", hour)
		if recognized {
			req.Contains(zone, want, "hour %d", hour)
		}
	}
}

func TestBroadcastSelfCancelsOffAllowList(t *testing.T) {
	req := require.New(t)
	env := newTestEnvInChannel(testConfig(), "side-channel")

	env.ctrl.armBroadcastTimer()
	req.Equal(1, env.clock.pending())
	env.advance(time.Minute)
	req.Equal(0, env.clock.pending(), "non-main channels stop polling after the first check")
	req.Empty(env.gateway.sent)
}

func TestBroadcastAnnouncesAt420(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(testConfig())

	// Clock starts at 16:20 UTC; the next recognized zone hour is 20.
	env.ctrl.armBroadcastTimer()
	env.advance(4 * time.Hour)

	msgs := env.gateway.sentTo("chan-1")
	req.Len(msgs, 1)
	req.Equal("It's currently 4:20 in Eastern Time.", msgs[0])
}

func TestBroadcastWidensIntervalAfterMatchingMinute(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(testConfig())

	env.ctrl.armBroadcastTimer()
	// First minute-20 hit is at 17:20 even though hour 17 maps to no zone.
	env.advance(time.Hour)
	req.Equal(time.Hour, env.ctrl.broadcastInterval)
	req.Equal(1, env.clock.pending())
}

func TestBroadcastAutoStartsSessionFromPreJoiners(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(testConfig())

	env.message("bob", "!pre")
	env.message("carol", "!pre")
	env.ctrl.armBroadcastTimer()
	env.advance(4 * time.Hour)

	req.True(env.ctrl.sessionRunning)
	msgs := env.gateway.sentTo("chan-1")
	last := msgs[len(msgs)-1]
	req.Contains(last, "It's currently 4:20 in Eastern Time.")
	req.Contains(last, "Starting a session with <@bob>, <@carol>.")
	req.Contains(last, "Ending in 5 minutes.")
}

func TestBroadcastDoesNotAutoStartDuringRunningSession(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(testConfig())

	env.message("alice", "!toke 60", "Stoner")
	env.message("alice", "!toke", "Stoner")
	req.True(env.ctrl.sessionRunning)
	startedAt := env.ctrl.startedAt

	env.ctrl.armBroadcastTimer()
	env.advance(30 * time.Minute)
	req.Equal(startedAt, env.ctrl.startedAt, "running session untouched by broadcast")
}
