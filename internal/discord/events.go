package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/trollbot/internal/command"
)

// eventSource supplies the context of a message.
type eventSource interface {
	Channel(channelID string) (*discordgo.Channel, error)
	Guild(guildID string) (*discordgo.Guild, error)
	Member(guildID, userID string) (*discordgo.Member, error)
	ChannelPermissions(userID, channelID string) (int64, error)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if b.OnMessage != nil {
		b.OnMessage()
	}

	var selfID string
	if s.State.User != nil {
		selfID = s.State.User.ID
	}
	ev := buildEvent(b.resolver, selfID, m.Message, b.log)
	ev.Messenger = b.messenger
	ev.Resolver = b.resolver
	b.Dispatcher.Dispatch(b.ctx, ev)

	if ev.Guild != nil {
		b.earn(b.ctx, m.Author.ID)
	}
}

func (b *Bot) earn(ctx context.Context, userID string) {
	if b.Earner == nil {
		return
	}
	awarded, err := b.Earner.Earn(ctx, userID)
	if err != nil {
		b.log.Error().Err(err).Str("user", userID).Msg("Failed to award karma")
		return
	}
	if awarded {
		b.log.Debug().Str("user", userID).Int64("amount", b.Earner.Amount).Msg("Awarded karma")
	}
}

// buildEvent resolves the channel, guild, member and client permissions of
// msg. Lookup failures leave the corresponding field empty, which makes
// guild-bound commands fail closed.
func buildEvent(src eventSource, selfID string, msg *discordgo.Message, log zerolog.Logger) *command.Event {
	ev := &command.Event{Message: msg, SelfID: selfID}

	ch, err := src.Channel(msg.ChannelID)
	if err != nil {
		log.Warn().Err(err).Str("channel", msg.ChannelID).Msg("Failed to resolve channel")
	}
	ev.Channel = ch

	if msg.GuildID == "" {
		return ev
	}
	guild, err := src.Guild(msg.GuildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", msg.GuildID).Msg("Failed to resolve guild")
		return ev
	}
	ev.Guild = guild

	if msg.Member != nil {
		// Gateway message members are partial: no user and no guild.
		member := *msg.Member
		member.User = msg.Author
		member.GuildID = msg.GuildID
		ev.Member = &member
	} else if member, err := src.Member(msg.GuildID, msg.Author.ID); err == nil {
		ev.Member = member
	} else {
		log.Warn().Err(err).Str("user", msg.Author.ID).Msg("Failed to resolve member")
	}

	if selfID != "" {
		perms, err := src.ChannelPermissions(selfID, msg.ChannelID)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to compute own permissions")
		}
		ev.ClientPermissions = perms
	}
	return ev
}
