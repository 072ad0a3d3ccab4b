package karma

import (
	"context"
	"fmt"
	"strconv"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/xp"
)

// Leaderboard shows the top users and the caller's own standing.
//
// The result is always INFO and names the caller. A failed step is attached
// to the result instead of changing its code.
func Leaderboard(d Deps) command.Options {
	return command.Options{
		Name:        "leaderboard",
		Description: "see how much better everyone is",
		Category:    Category,
		Aliases:     []string{"lb", "top", "rankings"},
		Runner: command.RunnerFunc(func(ctx context.Context, inv *command.Invocation) *command.Result {
			author := inv.Author()
			res := command.Info("%s ran command %q", author.Mention(), "leaderboard")
			if err := leaderboard(ctx, d, inv, author.ID); err != nil {
				return res.WithErr(err)
			}
			return res
		}),
	}
}

func leaderboard(ctx context.Context, d Deps, inv *command.Invocation, userID string) error {
	if _, err := d.Store.Get(ctx, userID); err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	stats, _, err := d.Store.Stats(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	top, err := d.Store.Top(ctx, size(d.LeaderboardSize, inv))
	if err != nil {
		return fmt.Errorf("failed to list leaderboard: %w", err)
	}

	msg := xp.FormatLeaderboard(top, d.namer(inv.Message.GuildID)) + "\n\n" + xp.Standing(stats)
	if err := inv.Reply(ctx, msg); err != nil {
		return fmt.Errorf("failed to send leaderboard: %w", err)
	}
	return nil
}

// size is the configured size unless a valid --size flag overrides it.
func size(def int, inv *command.Invocation) int {
	if def <= 0 {
		def = 10
	}
	v, ok := inv.Flag("size")
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return min(n, maxLeaderboardSize)
}
