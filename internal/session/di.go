package session

import (
	"github.com/chronicchat/tokebot/internal/config"
	"github.com/chronicchat/tokebot/internal/discord"
	"github.com/chronicchat/tokebot/internal/store"
	"github.com/chronicchat/tokebot/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (Clock, error) {
		return NewSystemClock(), nil
	})
	do.Provide(injector, func(i do.Injector) (*Monitor, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewMonitor(cfg.BannedPhrases)
	})
	do.Provide(injector, func(i do.Injector) (*Registry, error) {
		cfg := do.MustInvoke[*config.Config](i)
		st := do.MustInvoke[store.Store](i)
		dc := do.MustInvoke[discord.Client](i)
		wh := do.MustInvoke[webhook.Sender](i)
		clock := do.MustInvoke[Clock](i)
		monitor := do.MustInvoke[*Monitor](i)
		return NewRegistry(cfg, st, dc, wh, clock, monitor), nil
	})
}
