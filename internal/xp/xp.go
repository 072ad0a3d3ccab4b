// Package xp tracks per-user experience ("karma") and ranks users by it.
package xp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Record is one user's experience.
type Record struct {
	UserID   string    `json:"user_id"`
	XP       int64     `json:"xp"`
	EarnedAt time.Time `json:"earned_at"`
}

// Stats is a user's score and 1-based place. Users with equal scores share a
// place.
type Stats struct {
	XP    int64
	Place int
}

// Store persists records. Scores never drop below zero.
type Store interface {
	// Get returns the user's record, creating an empty one on first contact.
	Get(ctx context.Context, userID string) (Record, error)
	// Award adds delta to the user's score. A non-zero at becomes EarnedAt.
	Award(ctx context.Context, userID string, delta int64, at time.Time) (Record, error)
	// Set overwrites the user's score.
	Set(ctx context.Context, userID string, xp int64) (Record, error)
	// Stats ranks the user without creating a record. ok is false for users
	// the store has never seen; they get a zero score placed after everyone
	// with karma.
	Stats(ctx context.Context, userID string) (stats Stats, ok bool, err error)
	// Top returns up to n records, highest score first, ties by user ID.
	Top(ctx context.Context, n int) ([]Record, error)
	Close() error
}

// Place renders a 1-based place as an English ordinal.
func Place(place int) string {
	return humanize.Ordinal(place)
}

// Standing is the caller's line under the leaderboard.
func Standing(s Stats) string {
	return fmt.Sprintf("you're in **%s** with **%s** karma", Place(s.Place), humanize.Comma(s.XP))
}

// FormatLeaderboard renders one line per record. name resolves a user ID to
// a display name; an empty result falls back to a mention.
func FormatLeaderboard(records []Record, name func(userID string) string) string {
	if len(records) == 0 {
		return "nobody has any karma yet"
	}
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		display := ""
		if name != nil {
			display = name(r.UserID)
		}
		if display == "" {
			display = "<@" + r.UserID + ">"
		}
		fmt.Fprintf(&b, "`#%d` **%s** · %s karma", i+1, display, humanize.Comma(r.XP))
	}
	return b.String()
}

// Clamp applies the lower bound stores keep scores at.
func Clamp(xp int64) int64 {
	if xp < 0 {
		return 0
	}
	return xp
}
