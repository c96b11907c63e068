package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/chronicchat/tokebot/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env                       string   `env:"ENV" envDefault:"production"`
	DiscordToken              string   `env:"DISCORD_TOKEN,required"`
	DatabaseURL               string   `env:"DATABASE_URL,required"`
	CommandPrefix             string   `env:"COMMAND_PREFIX" envDefault:"!"`
	SessionStartRoles         []string `env:"SESSION_START_ROLES" envDefault:"Moderators,Veteran CC Members,Stoner"`
	ModerationRoleMarker      string   `env:"MODERATION_ROLE_MARKER" envDefault:"mod"`
	WarnedRolePrefix          string   `env:"WARNED_ROLE_PREFIX" envDefault:"Warned"`
	ModerationChannelName     string   `env:"MODERATION_CHANNEL_NAME" envDefault:"moderation"`
	MainChannelNames          []string `env:"MAIN_CHANNEL_NAMES" envDefault:"main-chat,general"`
	DefaultSessionMinutes     int      `env:"DEFAULT_SESSION_MINUTES" envDefault:"5"`
	DefaultReminderMinutes    int      `env:"DEFAULT_REMINDER_MINUTES" envDefault:"2"`
	BannedPhrases             []string `env:"BANNED_PHRASES" envDefault:"lsd,cocaine,mdma,ecstasy,codeine,percocet,vicodin,xanax,heroin,dxm,dmt,pcp"`
	ReactionEmoji             string   `env:"REACTION_EMOJI" envDefault:"😁"`
	CustomReactionGuildName   string   `env:"CUSTOM_REACTION_GUILD_NAME" envDefault:"chronicchat"`
	CustomReactionEmoji       string   `env:"CUSTOM_REACTION_EMOJI_ID"`
	ReminderSkipIfLastFromBot bool     `env:"REMINDER_SKIP_IF_LAST_FROM_BOT" envDefault:"false"`
	SummaryWebhookURL         string   `env:"SUMMARY_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                       raw.Env,
		DiscordToken:              raw.DiscordToken,
		DatabaseURL:               raw.DatabaseURL,
		CommandPrefix:             raw.CommandPrefix,
		SessionStartRoles:         raw.SessionStartRoles,
		ModerationRoleMarker:      raw.ModerationRoleMarker,
		WarnedRolePrefix:          raw.WarnedRolePrefix,
		ModerationChannelName:     raw.ModerationChannelName,
		MainChannelNames:          raw.MainChannelNames,
		DefaultSessionDuration:    time.Duration(raw.DefaultSessionMinutes) * time.Minute,
		DefaultReminderInterval:   time.Duration(raw.DefaultReminderMinutes) * time.Minute,
		BannedPhrases:             raw.BannedPhrases,
		ReactionEmoji:             raw.ReactionEmoji,
		CustomReactionGuildName:   raw.CustomReactionGuildName,
		CustomReactionEmoji:       raw.CustomReactionEmoji,
		ReminderSkipIfLastFromBot: raw.ReminderSkipIfLastFromBot,
		SummaryWebhookURL:         raw.SummaryWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
