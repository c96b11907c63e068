package session

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/samber/lo"
)

const (
	messageRankTooLowFormat = "your rank isn't high enough to start a session. %spre to join the next session instead."
	messageInvalidMinutes   = "please enter a valid number for minutes."
	messageNoSessionRunning = "There is no toke session running right now."
	messageSessionUpdated   = "Updated the session time to %d minutes."
	messageReminderUpdated  = "Updated the reminder time to %d minutes."
	messageReminderFormat   = "Toke session in progress. Type %stoke to join. Ending in %d minutes."
	messageWarningFormat    = "<@%s> this is a cannabis only server. Please don't talk about other drugs. You have been warned %d times."
	messageFinalWarning     = "<@%s> this is a cannabis only server. Please don't talk about other drugs. FINAL WARNING!"
	messageModAlertFormat   = "<@%s> has hit %d warnings for talking about drugs."
	messagePingFormat       = "Pong! This message had a latency of %dms."
)

// The end-of-session announcement is composed of one entry from each pool:
// "{endReplyOpeners}. {endReplyCompanions} {participants}."
var endReplyOpeners = []string{
	"Toke it up!",
	"Blaze it!",
	"Hits from the bong!",
	"Pass the joint!",
	"Tokers unite!",
	"That's the good stuff!",
	"Dabs for everybody!",
	"Blunts, and bongs, and dabs, Oh my!",
	"Get cyber stoned and download some happiness!",
	"It smells like a Cypress Hill concert in here!",
	"Man that was a good session.",
}

var endReplyCompanions = []string{
	"Getting stoned with",
	"Toking it up with",
	"Smoking with",
	"Stoned with the homies",
	"That was a nice session with",
	"Blazing with",
	"Burning one with",
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func mentionAll(userIDs []string) string {
	return strings.Join(lo.Map(userIDs, func(id string, _ int) string {
		return mention(id)
	}), ", ")
}

func composeEndMessage(participants, spirit []string) string {
	msg := fmt.Sprintf("%s %s %s.",
		endReplyOpeners[rand.IntN(len(endReplyOpeners))],
		endReplyCompanions[rand.IntN(len(endReplyCompanions))],
		mentionAll(participants))
	if len(spirit) > 0 {
		msg += " Toking in spirit: " + mentionAll(spirit) + "."
	}
	return msg
}

func composeStartMessage(prefix, starterID string, others []string, minutes int) string {
	with := ""
	if len(others) > 0 {
		with = " with " + mentionAll(others)
	}
	return fmt.Sprintf("%s is starting a toke session%s. Type %stoke to join. Ending in %d minutes.",
		mention(starterID), with, prefix, minutes)
}

func composeRecordsMessage(channelID string, sessions, preSessions int, largest, largestPre int) string {
	return fmt.Sprintf("There have been %d toke sessions in <#%s>. %d had pre tokes.\n"+
		"Largest toke session: %d tokers.\n"+
		"Largest pre toke session: %d pre tokers.",
		sessions, channelID, preSessions, largest, largestPre)
}

func composeWhoMessage(prefix string, participants, spirit []string) string {
	if len(participants) == 0 && len(spirit) == 0 {
		return fmt.Sprintf("Nobody has joined yet. Type %spre to join the next session.", prefix)
	}
	msg := ""
	if len(participants) > 0 {
		msg = "Toking: " + mentionAll(participants) + "."
	}
	if len(spirit) > 0 {
		if msg != "" {
			msg += " "
		}
		msg += "Toking in spirit: " + mentionAll(spirit) + "."
	}
	return msg
}
