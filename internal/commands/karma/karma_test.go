package karma_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/commands/karma"
	"github.com/keshon/trollbot/internal/xp"
)

type messenger struct {
	sent []string
	err  error
}

func (m *messenger) Send(_ context.Context, _ string, content string) error {
	m.sent = append(m.sent, content)
	return m.err
}

func (m *messenger) SendEmbed(context.Context, string, *discordgo.MessageEmbed) error {
	m.sent = append(m.sent, "<embed>")
	return m.err
}

var errOffline = errors.New("store offline")

// brokenStore fails whichever operation is named in fail.
type brokenStore struct {
	*xp.MemStore
	fail string
}

func (s brokenStore) Get(ctx context.Context, id string) (xp.Record, error) {
	if s.fail == "get" {
		return xp.Record{}, errOffline
	}
	return s.MemStore.Get(ctx, id)
}

func (s brokenStore) Stats(ctx context.Context, id string) (xp.Stats, bool, error) {
	if s.fail == "stats" {
		return xp.Stats{}, false, errOffline
	}
	return s.MemStore.Stats(ctx, id)
}

func (s brokenStore) Top(ctx context.Context, n int) ([]xp.Record, error) {
	if s.fail == "top" {
		return nil, errOffline
	}
	return s.MemStore.Top(ctx, n)
}

const caller = "111111111111111111"

func invoke(t *testing.T, opts command.Options, m *messenger, args command.Values, flags map[string]string) *command.Result {
	t.Helper()
	cmd, err := command.New(opts, command.Roles{})
	require.NoError(t, err)
	return cmd.Run(context.Background(), &command.Invocation{
		Command:   cmd,
		Message:   &discordgo.Message{ChannelID: "c", GuildID: "g", Author: &discordgo.User{ID: caller}},
		Args:      args,
		Flags:     flags,
		Messenger: m,
	})
}

func seeded(t *testing.T) *xp.MemStore {
	t.Helper()
	s := xp.NewMemStore()
	for id, n := range map[string]int64{"1": 5000, "2": 40, caller: 1234} {
		_, err := s.Set(context.Background(), id, n)
		require.NoError(t, err)
	}
	return s
}

func TestLeaderboardSendsOneMessage(t *testing.T) {
	m := &messenger{}
	names := func(_, id string) string {
		if id == "1" {
			return "bocchi"
		}
		return ""
	}
	res := invoke(t, karma.Leaderboard(karma.Deps{Store: seeded(t), LeaderboardSize: 10, Names: names}), m, nil, nil)

	require.Equal(t, command.CodeInfo, res.Code)
	require.Equal(t, `<@`+caller+`> ran command "leaderboard"`, res.Details)
	require.NoError(t, res.Err)
	require.Len(t, m.sent, 1)
	require.Equal(t,
		"`#1` **bocchi** · 5,000 karma\n"+
			"`#2` **<@"+caller+">** · 1,234 karma\n"+
			"`#3` **<@2>** · 40 karma\n\n"+
			"you're in **2nd** with **1,234** karma",
		m.sent[0])
}

func TestLeaderboardCreatesRecordOnFirstContact(t *testing.T) {
	m := &messenger{}
	store := xp.NewMemStore()
	res := invoke(t, karma.Leaderboard(karma.Deps{Store: store}), m, nil, nil)
	require.NoError(t, res.Err)
	require.Equal(t, "`#1` **<@"+caller+">** · 0 karma\n\nyou're in **1st** with **0** karma", m.sent[0])
}

func TestLeaderboardSizeFlag(t *testing.T) {
	m := &messenger{}
	invoke(t, karma.Leaderboard(karma.Deps{Store: seeded(t), LeaderboardSize: 10}), m, nil, map[string]string{"size": "1"})
	require.Equal(t, "`#1` **<@1>** · 5,000 karma\n\nyou're in **2nd** with **1,234** karma", m.sent[0])
}

func TestLeaderboardFailureStaysInfo(t *testing.T) {
	for _, step := range []string{"get", "stats", "top"} {
		t.Run(step, func(t *testing.T) {
			m := &messenger{}
			res := invoke(t, karma.Leaderboard(karma.Deps{Store: brokenStore{seeded(t), step}}), m, nil, nil)
			require.Equal(t, command.CodeInfo, res.Code)
			require.Equal(t, `<@`+caller+`> ran command "leaderboard"`, res.Details)
			require.ErrorIs(t, res.Err, errOffline)
			require.Empty(t, m.sent)
		})
	}
}

func TestLeaderboardSendFailureStaysInfo(t *testing.T) {
	sendErr := errors.New("missing access")
	m := &messenger{err: sendErr}
	res := invoke(t, karma.Leaderboard(karma.Deps{Store: seeded(t)}), m, nil, nil)
	require.Equal(t, command.CodeInfo, res.Code)
	require.ErrorIs(t, res.Err, sendErr)
}

func TestRank(t *testing.T) {
	m := &messenger{}
	d := karma.Deps{Store: seeded(t)}

	res := invoke(t, karma.Rank(d), m, command.Values{}, nil)
	require.Equal(t, command.CodeInfo, res.Code)

	other := command.Values{"user": {User: &discordgo.User{ID: "2"}}}
	invoke(t, karma.Rank(d), m, other, nil)

	require.Equal(t, []string{
		"you're in **2nd** with **1,234** karma",
		"<@2> is in **3rd** with **40** karma",
	}, m.sent)
}

func TestRankUnknownUserLeavesStoreAlone(t *testing.T) {
	m := &messenger{}
	store := seeded(t)
	stranger := command.Values{"user": {User: &discordgo.User{ID: "999999999999999999"}}}
	res := invoke(t, karma.Rank(karma.Deps{Store: store}), m, stranger, nil)
	require.Equal(t, command.CodeInfo, res.Code)
	require.Equal(t, []string{"<@999999999999999999> has no karma yet"}, m.sent)

	top, err := store.Top(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
}

func TestRankCreatesCallerRecord(t *testing.T) {
	m := &messenger{}
	store := xp.NewMemStore()
	invoke(t, karma.Rank(karma.Deps{Store: store}), m, command.Values{}, nil)
	require.Equal(t, []string{"you're in **1st** with **0** karma"}, m.sent)

	_, known, err := store.Stats(context.Background(), caller)
	require.NoError(t, err)
	require.True(t, known)
}

func TestGiveXP(t *testing.T) {
	store := seeded(t)
	d := karma.Deps{Store: store}
	target := &discordgo.Member{User: &discordgo.User{ID: "2"}}

	m := &messenger{}
	res := invoke(t, karma.GiveXP(d), m, command.Values{
		"member": {Member: target},
		"amount": {Number: 1000},
	}, nil)
	require.Equal(t, command.CodeInfo, res.Code)
	require.Equal(t, "Gave **1,000** karma to <@2>. They now have **1,040**.", m.sent[0])

	res = invoke(t, karma.GiveXP(d), m, command.Values{
		"member": {Member: target},
		"amount": {Number: -5000},
	}, nil)
	require.Equal(t, command.CodeInfo, res.Code)
	require.Equal(t, "Took **5,000** karma from <@2>. They now have **0**.", m.sent[1])

	res = invoke(t, karma.GiveXP(d), m, command.Values{
		"member": {Member: target},
		"amount": {Number: 1.5},
	}, nil)
	require.Equal(t, command.CodeWarn, res.Code)

	rec, err := store.Get(context.Background(), "2")
	require.NoError(t, err)
	require.Zero(t, rec.XP)
	require.True(t, rec.EarnedAt.IsZero(), "manual grants do not reset the cooldown")
}

func TestGiveXPDeclaration(t *testing.T) {
	cmd, err := command.New(karma.GiveXP(karma.Deps{}), command.Roles{})
	require.NoError(t, err)
	require.Equal(t, "givexp <member> <amount>:troll:", cmd.Usage())
	require.Equal(t, command.TierAdmin, cmd.Access().Tier)
	require.Equal(t, int64(discordgo.PermissionManageMessages), cmd.Permissions().User)
}

func TestResetXP(t *testing.T) {
	store := seeded(t)
	m := &messenger{}
	res := invoke(t, karma.ResetXP(karma.Deps{Store: store}), m, command.Values{"user": {User: &discordgo.User{ID: "1"}}}, nil)
	require.Equal(t, command.CodeInfo, res.Code)

	stats, _, err := store.Stats(context.Background(), "1")
	require.NoError(t, err)
	require.Zero(t, stats.XP)
	require.Equal(t, "<@1> is back to zero.", m.sent[0])
}

func TestCommandsRegister(t *testing.T) {
	reg := command.NewRegistry(command.Roles{})
	for _, o := range karma.Commands(karma.Deps{Store: xp.NewMemStore(), LeaderboardSize: 3}) {
		_, err := reg.Register(o)
		require.NoError(t, err)
	}
	for _, key := range []string{"leaderboard", "lb", "top", "rankings", "rank", "givexp", "resetxp"} {
		_, ok := reg.Get(key)
		require.True(t, ok, key)
	}
}
