package karma

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/xp"
)

// Rank shows one user's standing.
func Rank(d Deps) command.Options {
	return command.Options{
		Name:        "rank",
		Description: "check where you (or someone else) stand",
		Category:    Category,
		Aliases:     []string{"karma", "xp"},
		Arguments:   []command.Argument{{Name: "user", Type: command.ArgUser, Optional: true}},
		Runner: command.RunnerFunc(func(ctx context.Context, inv *command.Invocation) *command.Result {
			author := inv.Author()
			target := author
			if inv.Args.Has("user") {
				target = inv.Args.User("user")
			}
			self := target.ID == author.ID
			if self {
				if _, err := d.Store.Get(ctx, author.ID); err != nil {
					return command.Fail(fmt.Errorf("failed to get record: %w", err))
				}
			}

			stats, known, err := d.Store.Stats(ctx, target.ID)
			if err != nil {
				return command.Fail(fmt.Errorf("failed to get stats: %w", err))
			}

			var msg string
			switch {
			case self:
				msg = xp.Standing(stats)
			case !known:
				msg = fmt.Sprintf("%s has no karma yet", target.Mention())
			default:
				msg = fmt.Sprintf("%s is in **%s** with **%s** karma", target.Mention(), xp.Place(stats.Place), humanize.Comma(stats.XP))
			}
			if err := inv.Reply(ctx, msg); err != nil {
				return command.Fail(fmt.Errorf("failed to reply: %w", err))
			}
			return command.Info("%s ran command %q", author.Mention(), "rank")
		}),
	}
}
