package karma

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/keshon/trollbot/internal/command"
)

// GiveXP adds (or with a negative amount, takes) karma.
func GiveXP(d Deps) command.Options {
	return command.Options{
		Name:        "givexp",
		Description: "hand out karma (or take it away)",
		Category:    Category,
		Access:      command.Access{Tier: command.TierAdmin},
		Permissions: command.Permissions{User: discordgo.PermissionManageMessages},
		Arguments: []command.Argument{
			{Name: "member", Type: command.ArgMember},
			{Name: "amount", Type: command.ArgNumber},
		},
		Runner: command.RunnerFunc(func(ctx context.Context, inv *command.Invocation) *command.Result {
			target := inv.Args.User("member")
			amount := inv.Args.Number("amount")
			if amount != math.Trunc(amount) || amount == 0 || math.Abs(amount) > math.MaxInt32 {
				if err := inv.Reply(ctx, "amount must be a non-zero whole number"); err != nil {
					return command.Fail(fmt.Errorf("failed to reply: %w", err))
				}
				return &command.Result{Code: command.CodeWarn, Details: fmt.Sprintf("rejected amount %v", amount)}
			}

			rec, err := d.Store.Award(ctx, target.ID, int64(amount), time.Time{})
			if err != nil {
				return command.Fail(fmt.Errorf("failed to award %s: %w", target.ID, err))
			}

			n := int64(amount)
			msg := fmt.Sprintf("Gave **%s** karma to %s. They now have **%s**.", humanize.Comma(n), target.Mention(), humanize.Comma(rec.XP))
			if n < 0 {
				msg = fmt.Sprintf("Took **%s** karma from %s. They now have **%s**.", humanize.Comma(-n), target.Mention(), humanize.Comma(rec.XP))
			}
			if err := inv.Reply(ctx, msg); err != nil {
				return command.Fail(fmt.Errorf("failed to reply: %w", err))
			}
			return command.Info("%s gave %d karma to %s", inv.Author().Mention(), n, target.ID)
		}),
	}
}

// ResetXP zeroes a user's karma.
func ResetXP(d Deps) command.Options {
	return command.Options{
		Name:        "resetxp",
		Description: "wipe someone's karma",
		Category:    Category,
		Access:      command.Access{Tier: command.TierOwner},
		Arguments:   []command.Argument{{Name: "user", Type: command.ArgUser}},
		Runner: command.RunnerFunc(func(ctx context.Context, inv *command.Invocation) *command.Result {
			target := inv.Args.User("user")
			if _, err := d.Store.Set(ctx, target.ID, 0); err != nil {
				return command.Fail(fmt.Errorf("failed to reset %s: %w", target.ID, err))
			}
			if err := inv.Reply(ctx, fmt.Sprintf("%s is back to zero.", target.Mention())); err != nil {
				return command.Fail(fmt.Errorf("failed to reply: %w", err))
			}
			return command.Info("%s reset karma of %s", inv.Author().Mention(), target.ID)
		}),
	}
}
