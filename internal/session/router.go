package session

import (
	"strings"

	"github.com/chronicchat/tokebot/internal/discord"
)

type handlerFunc func(c *Controller, msg discord.MessageEvent, rest string)

type route struct {
	key    string
	handle handlerFunc
}

// commandRoutes is evaluated top to bottom and the first key that is a
// case-insensitive prefix of the message body wins. Order is load-bearing:
// multi-word keys must appear before the bare "toke" key they would
// otherwise lose to.
func commandRoutes() []route {
	joinOrStart := func(c *Controller, msg discord.MessageEvent, rest string) {
		c.handleToke(msg, rest)
	}
	routes := []route{
		{key: "toke ping", handle: (*Controller).handlePing},
		{key: "toke records", handle: (*Controller).handleRecords},
		{key: "toke reminder", handle: (*Controller).handleReminder},
		{key: "toke who", handle: (*Controller).handleWho},
		{key: "toke end", handle: (*Controller).handleEnd},
		{key: "toke", handle: joinOrStart},
	}
	for _, alias := range []string{"bong", "pipe", "joint", "blunt", "dab", "smoke", "steam", "vape", "blaze"} {
		routes = append(routes, route{key: alias, handle: joinOrStart})
	}
	routes = append(routes,
		route{key: "pre", handle: (*Controller).handlePre},
		route{key: "spirit", handle: (*Controller).handleSpirit},
		route{key: "dougdimmadab", handle: joinOrStart},
	)
	return routes
}

// matchRoute returns the winning route and the trailing text after its key.
func matchRoute(routes []route, body string) (route, string, bool) {
	lowered := strings.ToLower(body)
	for _, r := range routes {
		if strings.HasPrefix(lowered, r.key) {
			return r, strings.TrimSpace(body[len(r.key):]), true
		}
	}
	return route{}, "", false
}
