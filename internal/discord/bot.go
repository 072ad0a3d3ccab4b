// Package discord connects the command dispatcher to a Discord gateway
// session.
package discord

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/xp"
	"github.com/keshon/trollbot/pkg/retrylimit"
)

// Intents the bot needs: guild metadata and members for authorization,
// messages and their content for prefix commands.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentMessageContent

// Bot is a Discord bot. Set Dispatcher before calling Run.
type Bot struct {
	Dispatcher *command.Dispatcher
	// Earner, if set, awards experience for guild messages.
	Earner *xp.Earner
	// OnMessage, if set, is called for every message not sent by a bot.
	OnMessage func()

	log       zerolog.Logger
	session   *discordgo.Session
	messenger *Messenger
	resolver  *Resolver
	ctx       context.Context
	ready     atomic.Bool
}

// New creates the session without connecting.
func New(token string, log zerolog.Logger, lim *retrylimit.AdaptiveLimiter, retry retrylimit.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = Intents
	dg.LogLevel = discordgo.LogWarning
	dg.State.TrackMembers = true
	dg.State.MaxMessageCount = 0
	hookLogger(log)

	retry.Logger = log
	b := &Bot{
		log:       log,
		session:   dg,
		messenger: NewMessenger(dg, lim, retry),
		resolver:  NewResolver(dg, log),
		ctx:       context.Background(),
	}
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onDisconnect)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	return b, nil
}

// Run opens the gateway connection and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if b.Dispatcher == nil {
		return fmt.Errorf("bot has no dispatcher")
	}
	b.ctx = ctx
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.session.Close()

	<-ctx.Done()
	b.log.Info().Msg("Shutdown signal received, closing session")
	b.ready.Store(false)
	return nil
}

// Ready reports whether the gateway session is up.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

// Latency returns the last gateway heartbeat round trip.
func (b *Bot) Latency() time.Duration {
	return b.session.HeartbeatLatency()
}

// DisplayName resolves a member name from the state cache.
func (b *Bot) DisplayName(guildID, userID string) string {
	return b.resolver.DisplayName(guildID, userID)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.ready.Store(true)
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("Discord bot is running")
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.ready.Store(false)
	b.log.Warn().Msg("Disconnected from gateway")
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Debug().Str("guild", g.ID).Str("name", g.Name).Msg("Guild available")
}
