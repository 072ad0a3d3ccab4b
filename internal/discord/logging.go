package discord

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

var hookOnce sync.Once

// hookLogger routes discordgo's internal log lines through log.
func hookLogger(log zerolog.Logger) {
	hookOnce.Do(func() {
		log := log.With().Str("component", "discordgo").Logger()
		discordgo.Logger = func(msgL, _ int, format string, a ...interface{}) {
			log.WithLevel(level(msgL)).Msg(fmt.Sprintf(format, a...))
		}
	})
}

func level(msgL int) zerolog.Level {
	switch msgL {
	case discordgo.LogError:
		return zerolog.ErrorLevel
	case discordgo.LogWarning:
		return zerolog.WarnLevel
	case discordgo.LogInformational:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
