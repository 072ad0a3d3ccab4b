package core

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/trollbot/internal/command"
)

// Ping reports the gateway heartbeat latency returned by latency.
func Ping(latency func() time.Duration) command.Options {
	return command.Options{
		Name:        "ping",
		Description: "Check bot latency",
		Category:    CategoryInfo,
		Runner: command.RunnerFunc(func(ctx context.Context, inv *command.Invocation) *command.Result {
			if err := inv.Reply(ctx, fmt.Sprintf("🏓 Pong! %dms", latency().Milliseconds())); err != nil {
				return command.Fail(fmt.Errorf("failed to reply: %w", err))
			}
			return command.Info("%s ran command \"ping\"", inv.Author().Mention())
		}),
	}
}
