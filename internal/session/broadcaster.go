package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

const (
	broadcastMinute       = 20
	broadcastPollInterval = time.Minute
	broadcastRestInterval = time.Hour
)

// broadcastTick runs once a minute for channels on the main-channel
// allow-list and checks whether it is 4:20 somewhere. Channels off the list
// stop rescheduling after the first evaluation.
func (c *Controller) broadcastTick() {
	if !lo.Contains(c.cfg.MainChannelNames, c.channelName) {
		return
	}
	now := c.clock.Now().UTC()
	if now.Minute() == broadcastMinute {
		if zone, ok := timezoneAt(now.Hour()); ok {
			reply := "It's currently 4:20 " + zone
			if c.participants.len() > 0 && !c.sessionRunning {
				c.autoStartSession()
				reply += fmt.Sprintf(" Starting a session with %s. Ending in %d minutes.",
					mentionAll(c.participants.snapshot()), ceilMinutes(c.sessionDuration))
			}
			c.send(reply)
			slog.Info("broadcast fired", "channel_id", c.channelID, "zone", zone)
		}
		// Back off to hourly so the same matching minute cannot re-trigger.
		c.broadcastInterval = broadcastRestInterval
	}
	c.armBroadcastTimer()
}

func (c *Controller) armBroadcastTimer() {
	c.broadcastGen++
	gen := c.broadcastGen
	c.broadcastTimer = c.clock.AfterFunc(c.broadcastInterval, func() {
		c.post(broadcastTickEvent{gen: gen})
	})
}

// timezoneAt maps a UTC hour to the zone description in which the local time
// is 4:20 when the UTC minute is 20.
func timezoneAt(utcHour int) (string, bool) {
	switch utcHour {
	case 0, 12:
		return "in Alaska Time.", true
	case 2, 14:
		return "in Hawaii Time and South Africa Standard Time.", true
	case 3, 15:
		return "in British Summer Time.", true
	case 8, 20:
		return "in Eastern Time.", true
	case 9, 21:
		return "in Central Time.", true
	case 10, 22:
		return "in Mountain Time.", true
	case 11, 23:
		return "in Pacific Time.", true
	default:
		return "", false
	}
}
