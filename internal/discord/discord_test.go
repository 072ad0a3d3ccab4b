package discord

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/trollbot/pkg/retrylimit"
)

func restErr(code int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: code, Status: http.StatusText(code), Header: http.Header{}}}
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))
	assert.Equal(t, 502, retrylimit.Status(classify(restErr(502))))
	assert.False(t, retrylimit.Retryable(classify(restErr(403))))

	rl := &discordgo.RateLimitError{RateLimit: &discordgo.RateLimit{
		TooManyRequests: &discordgo.TooManyRequests{RetryAfter: 3 * time.Second},
		URL:             "https://discord.com/api/channels/1/messages",
	}}
	err := classify(rl)
	require.True(t, retrylimit.IsRateLimited(err))
	var ra retrylimit.RetryAfterError
	require.True(t, errors.As(err, &ra))
	assert.Equal(t, 3*time.Second, ra.RetryAfter())

	plain := errors.New("websocket closed")
	assert.Equal(t, plain, classify(plain))
}

type sender struct {
	fails []error
	sent  []string
}

func (s *sender) next() error {
	if len(s.fails) == 0 {
		return nil
	}
	err := s.fails[0]
	s.fails = s.fails[1:]
	return err
}

func (s *sender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	s.sent = append(s.sent, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (s *sender) ChannelMessageSendEmbed(channelID string, e *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	s.sent = append(s.sent, e.Title)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func fastRetry() retrylimit.Config {
	cfg := retrylimit.DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	cfg.RateLimitDelay = time.Millisecond
	return cfg
}

func TestMessengerRetries(t *testing.T) {
	s := &sender{fails: []error{restErr(502), restErr(500)}}
	m := NewMessenger(s, nil, fastRetry())
	require.NoError(t, m.Send(context.Background(), "c", "hello"))
	require.Equal(t, []string{"hello"}, s.sent)

	s = &sender{fails: []error{restErr(403)}}
	m = NewMessenger(s, nil, fastRetry())
	err := m.SendEmbed(context.Background(), "c", &discordgo.MessageEmbed{Title: "t"})
	require.Error(t, err)
	var rest *discordgo.RESTError
	require.True(t, errors.As(err, &rest), "the platform error stays reachable")
	require.Empty(t, s.sent)
}

const (
	guildID = "100000000000000001"
	ownerID = "100000000000000002"
	userID  = "100000000000000003"
	selfID  = "100000000000000004"
	chanID  = "100000000000000005"
	modRole = "100000000000000006"
)

func state(t *testing.T) *discordgo.State {
	t.Helper()
	st := discordgo.NewState()
	require.NoError(t, st.GuildAdd(&discordgo.Guild{
		ID:      guildID,
		OwnerID: ownerID,
		Roles: []*discordgo.Role{
			{ID: guildID, Permissions: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages},
			{ID: modRole, Name: "mod", Permissions: discordgo.PermissionManageMessages},
		},
	}))
	require.NoError(t, st.ChannelAdd(&discordgo.Channel{ID: chanID, GuildID: guildID, Type: discordgo.ChannelTypeGuildText}))
	require.NoError(t, st.MemberAdd(&discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: userID, Username: "bocchi", GlobalName: "Bocchi"},
		Roles:   []string{modRole},
	}))
	require.NoError(t, st.MemberAdd(&discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: selfID, Username: "trollbot"},
		Nick:    "Troll",
	}))
	return st
}

// rest fails every lookup unless the entity is listed.
type rest struct {
	users map[string]*discordgo.User
	calls int
}

var errUnknown = errors.New("404 Not Found")

func (r *rest) GuildMember(_, id string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	r.calls++
	if u, ok := r.users[id]; ok {
		return &discordgo.Member{User: u}, nil
	}
	return nil, errUnknown
}

func (r *rest) User(id string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	r.calls++
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, errUnknown
}

func (r *rest) Channel(string, ...discordgo.RequestOption) (*discordgo.Channel, error) {
	r.calls++
	return nil, errUnknown
}

func (r *rest) Guild(string, ...discordgo.RequestOption) (*discordgo.Guild, error) {
	r.calls++
	return nil, errUnknown
}

func (r *rest) GuildRoles(string, ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	r.calls++
	return nil, nil
}

func TestResolverPrefersState(t *testing.T) {
	fallback := &rest{}
	r := &Resolver{state: state(t), rest: fallback}

	m, err := r.Member(guildID, userID)
	require.NoError(t, err)
	assert.Equal(t, "bocchi", m.User.Username)

	c, err := r.Channel(chanID)
	require.NoError(t, err)
	assert.Equal(t, guildID, c.GuildID)

	role, err := r.Role(guildID, modRole)
	require.NoError(t, err)
	assert.Equal(t, "mod", role.Name)

	g, err := r.Guild(guildID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, g.OwnerID)

	assert.Zero(t, fallback.calls)
}

func TestResolverFallsBackToREST(t *testing.T) {
	fallback := &rest{users: map[string]*discordgo.User{"7": {ID: "7", Username: "kita"}}}
	r := &Resolver{state: state(t), rest: fallback}

	m, err := r.Member(guildID, "7")
	require.NoError(t, err)
	assert.Equal(t, guildID, m.GuildID)

	_, err = r.Member(guildID, "8")
	require.ErrorIs(t, err, errUnknown)
	assert.Contains(t, err.Error(), "failed to get member")

	_, err = r.Role(guildID, "9")
	require.Error(t, err)

	u, err := r.User("7")
	require.NoError(t, err)
	assert.Equal(t, "kita", u.Username)
}

func TestResolverLogsUncachedMember(t *testing.T) {
	var buf bytes.Buffer
	fallback := &rest{users: map[string]*discordgo.User{"7": {ID: "7", Username: "kita"}}}
	r := &Resolver{state: state(t), rest: fallback, log: zerolog.New(&buf)}

	m, err := r.Member("600000000000000009", "7")
	require.NoError(t, err)
	assert.Equal(t, "kita", m.User.Username)
	assert.Contains(t, buf.String(), "Failed to cache member")
	assert.Contains(t, buf.String(), `"level":"debug"`)
}

func TestChannelPermissions(t *testing.T) {
	r := &Resolver{state: state(t), rest: &rest{}}

	perms, err := r.ChannelPermissions(userID, chanID)
	require.NoError(t, err)
	assert.NotZero(t, perms&discordgo.PermissionManageMessages)
	assert.NotZero(t, perms&discordgo.PermissionSendMessages)

	perms, err = r.ChannelPermissions(selfID, chanID)
	require.NoError(t, err)
	assert.Zero(t, perms&discordgo.PermissionManageMessages)
}

func TestDisplayName(t *testing.T) {
	r := &Resolver{state: state(t), rest: &rest{}}
	assert.Equal(t, "Bocchi", r.DisplayName(guildID, userID))
	assert.Equal(t, "Troll", r.DisplayName(guildID, selfID))
	assert.Empty(t, r.DisplayName(guildID, "404"))
}

func TestBuildEvent(t *testing.T) {
	r := &Resolver{state: state(t), rest: &rest{}}
	author := &discordgo.User{ID: userID}
	msg := &discordgo.Message{
		ChannelID: chanID,
		GuildID:   guildID,
		Author:    author,
		Member:    &discordgo.Member{Roles: []string{modRole}},
	}

	ev := buildEvent(r, selfID, msg, zerolog.Nop())
	require.NotNil(t, ev.Guild)
	require.NotNil(t, ev.Channel)
	require.NotNil(t, ev.Member)
	assert.Same(t, author, ev.Member.User)
	assert.Equal(t, guildID, ev.Member.GuildID)
	assert.Nil(t, msg.Member.User, "the gateway member is not modified")
	assert.NotZero(t, ev.ClientPermissions&discordgo.PermissionSendMessages)
}

func TestBuildEventDirectMessage(t *testing.T) {
	r := &Resolver{state: state(t), rest: &rest{}}
	msg := &discordgo.Message{ChannelID: "dm", Author: &discordgo.User{ID: userID}}

	ev := buildEvent(r, selfID, msg, zerolog.Nop())
	assert.Nil(t, ev.Guild)
	assert.Nil(t, ev.Member)
	assert.Nil(t, ev.Channel)
	assert.Zero(t, ev.ClientPermissions)
}
