package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/keshon/trollbot/internal/command"
)

// restLookup is the part of *discordgo.Session the resolver falls back to
// when the state cache misses.
type restLookup interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
}

// Resolver looks entities up in the state cache first and over REST second.
type Resolver struct {
	state *discordgo.State
	rest  restLookup
	log   zerolog.Logger
}

var _ command.Resolver = (*Resolver)(nil)

// NewResolver returns a resolver over the session state.
func NewResolver(s *discordgo.Session, log zerolog.Logger) *Resolver {
	return &Resolver{state: s.State, rest: s, log: log}
}

func (r *Resolver) Member(guildID, userID string) (*discordgo.Member, error) {
	if m, err := r.state.Member(guildID, userID); err == nil {
		return withGuild(m, guildID), nil
	}
	m, err := r.rest.GuildMember(guildID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get member")
	}
	if r.state.TrackMembers {
		if err := r.state.MemberAdd(withGuild(m, guildID)); err != nil {
			r.log.Debug().Err(err).Str("guild", guildID).Str("user", userID).Msg("Failed to cache member")
		}
	}
	return withGuild(m, guildID), nil
}

func withGuild(m *discordgo.Member, guildID string) *discordgo.Member {
	if m.GuildID == "" {
		m.GuildID = guildID
	}
	return m
}

func (r *Resolver) User(userID string) (*discordgo.User, error) {
	if r.state.User != nil && r.state.User.ID == userID {
		return r.state.User, nil
	}
	u, err := r.rest.User(userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return u, nil
}

func (r *Resolver) Channel(channelID string) (*discordgo.Channel, error) {
	if c, err := r.state.Channel(channelID); err == nil {
		return c, nil
	}
	c, err := r.rest.Channel(channelID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get channel")
	}
	return c, nil
}

// Guild is not part of command.Resolver; the bot uses it to build events.
func (r *Resolver) Guild(guildID string) (*discordgo.Guild, error) {
	if g, err := r.state.Guild(guildID); err == nil {
		return g, nil
	}
	g, err := r.rest.Guild(guildID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get guild")
	}
	return g, nil
}

func (r *Resolver) Role(guildID, roleID string) (*discordgo.Role, error) {
	if role, err := r.state.Role(guildID, roleID); err == nil {
		return role, nil
	}
	roles, err := r.rest.GuildRoles(guildID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get roles")
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role, nil
		}
	}
	return nil, errors.Errorf("role %s not found", roleID)
}

// ChannelPermissions returns the permissions userID holds in channelID, from
// the state cache. Threads inherit the permissions of their parent.
func (r *Resolver) ChannelPermissions(userID, channelID string) (int64, error) {
	if c, err := r.state.Channel(channelID); err == nil && c.IsThread() {
		channelID = c.ParentID
	}
	perms, err := r.state.UserChannelPermissions(userID, channelID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to compute channel permissions")
	}
	return perms, nil
}

// DisplayName returns the nickname, global name or username of a cached
// member, or "" when the member is not cached.
func (r *Resolver) DisplayName(guildID, userID string) string {
	m, err := r.state.Member(guildID, userID)
	if err != nil || m.User == nil {
		return ""
	}
	switch {
	case m.Nick != "":
		return m.Nick
	case m.User.GlobalName != "":
		return m.User.GlobalName
	default:
		return m.User.Username
	}
}
