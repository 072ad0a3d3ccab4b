// Package karma holds the leaderboard commands over an xp.Store.
package karma

import (
	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/xp"
)

const (
	Category = "🏆 Karma"

	maxLeaderboardSize = 25
)

// NameFunc resolves a user to the name shown on the leaderboard. An empty
// result falls back to a mention.
type NameFunc func(guildID, userID string) string

// Deps are the collaborators the karma commands share.
type Deps struct {
	Store           xp.Store
	LeaderboardSize int
	Names           NameFunc
}

// Commands returns every karma command.
func Commands(d Deps) []command.Options {
	return []command.Options{
		Leaderboard(d),
		Rank(d),
		GiveXP(d),
		ResetXP(d),
	}
}

func (d Deps) namer(guildID string) func(string) string {
	if d.Names == nil {
		return nil
	}
	return func(userID string) string { return d.Names(guildID, userID) }
}
