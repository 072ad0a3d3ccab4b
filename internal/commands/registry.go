// Package commands assembles the command registry of the bot.
package commands

import (
	"fmt"
	"time"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/commands/core"
	"github.com/keshon/trollbot/internal/commands/karma"
	"github.com/keshon/trollbot/internal/xp"
)

// Deps are the collaborators of the built-in commands.
type Deps struct {
	Store           xp.Store
	LeaderboardSize int
	// Latency reports the gateway round trip. Nil reports zero.
	Latency func() time.Duration
	Names   karma.NameFunc
}

// Build registers every command not named in disabled. Help is always
// registered.
func Build(roles command.Roles, d Deps, disabled func(name string) bool) (*command.Registry, error) {
	if disabled == nil {
		disabled = func(string) bool { return false }
	}
	latency := d.Latency
	if latency == nil {
		latency = func() time.Duration { return 0 }
	}

	reg := command.NewRegistry(roles)
	all := []command.Options{
		core.Help(reg),
		core.Ping(latency),
		core.About(),
	}
	all = append(all, karma.Commands(karma.Deps{
		Store:           d.Store,
		LeaderboardSize: d.LeaderboardSize,
		Names:           d.Names,
	})...)

	for _, opts := range all {
		if opts.Name != "help" && disabled(opts.Name) {
			continue
		}
		if _, err := reg.Register(opts); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", opts.Name, err)
		}
	}
	return reg, nil
}
