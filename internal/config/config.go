package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env                       string
	DiscordToken              string
	DatabaseURL               string
	CommandPrefix             string
	SessionStartRoles         []string
	ModerationRoleMarker      string
	WarnedRolePrefix          string
	ModerationChannelName     string
	MainChannelNames          []string
	DefaultSessionDuration    time.Duration
	DefaultReminderInterval   time.Duration
	BannedPhrases             []string
	ReactionEmoji             string
	CustomReactionGuildName   string
	CustomReactionEmoji       string
	ReminderSkipIfLastFromBot bool
	SummaryWebhookURL         string
}

const (
	MinSessionMinutes = 1
	MaxSessionMinutes = 60
)

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if len(c.CommandPrefix) != 1 {
		return fmt.Errorf("COMMAND_PREFIX must be a single character, got %q", c.CommandPrefix)
	}
	if len(c.SessionStartRoles) == 0 {
		return fmt.Errorf("SESSION_START_ROLES must name at least one role")
	}
	if err := validateMinuteRange("DEFAULT_SESSION_MINUTES", c.DefaultSessionDuration); err != nil {
		return err
	}
	if err := validateMinuteRange("DEFAULT_REMINDER_MINUTES", c.DefaultReminderInterval); err != nil {
		return err
	}
	return nil
}

func validateMinuteRange(name string, d time.Duration) error {
	minutes := int(d / time.Minute)
	if minutes < MinSessionMinutes || minutes > MaxSessionMinutes {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, MinSessionMinutes, MaxSessionMinutes, minutes)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "COMMAND_PREFIX", value: c.CommandPrefix},
		{name: "WARNED_ROLE_PREFIX", value: c.WarnedRolePrefix},
		{name: "MODERATION_CHANNEL_NAME", value: c.ModerationChannelName},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
