package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
)

// Denial reasons passed to Recorder.Denied.
const (
	DenyGuildOnly   = "guild_only"
	DenyNSFW        = "nsfw"
	DenyAccess      = "access"
	DenyClientPerms = "client_permissions"
	DenyArguments   = "arguments"
)

// Recorder observes dispatch outcomes.
type Recorder interface {
	Ran(command string, code Code, took time.Duration)
	Denied(command, reason string)
	Unknown()
}

// Event is one inbound message with the context resolved by the platform
// adapter. Member and Guild are nil for direct messages.
type Event struct {
	Message           *discordgo.Message
	Member            *discordgo.Member
	Guild             *discordgo.Guild
	Channel           *discordgo.Channel
	SelfID            string
	ClientPermissions int64
	Messenger         Messenger
	Resolver          Resolver
}

// Dispatcher routes messages to registered commands.
type Dispatcher struct {
	Registry *Registry
	Prefix   string
	Timeout  time.Duration
	Logger   zerolog.Logger
	Recorder Recorder

	// SuggestDistance is the largest fuzzy distance still offered as a
	// "did you mean". Zero disables suggestions.
	SuggestDistance int
}

// Dispatch handles ev. It returns the command result and whether the message
// addressed a known command at all.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) (*Result, bool) {
	msg := ev.Message
	if msg == nil || msg.Author == nil || msg.Author.Bot {
		return nil, false
	}
	body, ok := d.strip(msg.Content, ev.SelfID)
	if !ok {
		return nil, false
	}
	tokens := Tokenize(body)
	if len(tokens) == 0 {
		return nil, false
	}
	name := tokens[0]
	cmd, ok := d.Registry.Get(name)
	if !ok {
		d.unknown(ctx, ev, name)
		return nil, false
	}

	log := d.Logger.With().
		Str("command", cmd.Name()).
		Str("user", msg.Author.ID).
		Str("guild", msg.GuildID).
		Logger()

	if cmd.Access().GuildOnly && ev.Guild == nil {
		d.deny(ctx, ev, cmd, DenyGuildOnly, "This command only works in servers.")
		return nil, true
	}
	if cmd.NSFW() && (ev.Channel == nil || !ev.Channel.NSFW) {
		d.deny(ctx, ev, cmd, DenyNSFW, "This command only works in NSFW channels.")
		return nil, true
	}
	if !cmd.IsAuthorized(ev.Member, ev.Guild) {
		log.Debug().Msg("Not authorized")
		d.deny(ctx, ev, cmd, DenyAccess, "")
		return nil, true
	}
	if ev.Guild != nil {
		if missing := cmd.MissingClientPermissions(ev.ClientPermissions); missing != 0 {
			d.deny(ctx, ev, cmd, DenyClientPerms, fmt.Sprintf(
				"I need the following permissions in this channel to run this command:\n`%s`",
				strings.Join(PermissionList(missing), "`, `"),
			))
			return nil, true
		}
	}

	positional, flags := SplitFlags(tokens[1:])
	args, err := ParseArguments(cmd.Arguments(), positional, msg.GuildID, ev.Resolver)
	if err != nil {
		d.deny(ctx, ev, cmd, DenyArguments, fmt.Sprintf("%v\nusage: `%s`", err, cmd.Usage()))
		return nil, true
	}

	inv := &Invocation{
		Command:   cmd,
		Message:   msg,
		Member:    ev.Member,
		Guild:     ev.Guild,
		Args:      args,
		Flags:     flags,
		Messenger: ev.Messenger,
	}
	runner := Apply(cmd, WithRecover(), WithTimeout(d.Timeout))

	start := time.Now()
	res := runner.Run(ctx, inv)
	took := time.Since(start)

	d.report(log, res, took)
	if d.Recorder != nil {
		code := Code("")
		if res != nil {
			code = res.Code
		}
		d.Recorder.Ran(cmd.Name(), code, took)
	}
	return res, true
}

func (d *Dispatcher) strip(content, selfID string) (string, bool) {
	content = strings.TrimSpace(content)
	if d.Prefix != "" && strings.HasPrefix(content, d.Prefix) {
		return content[len(d.Prefix):], true
	}
	if selfID != "" {
		for _, m := range []string{"<@" + selfID + ">", "<@!" + selfID + ">"} {
			if strings.HasPrefix(content, m) {
				return content[len(m):], true
			}
		}
	}
	return "", false
}

func (d *Dispatcher) unknown(ctx context.Context, ev *Event, name string) {
	if d.Recorder != nil {
		d.Recorder.Unknown()
	}
	if d.SuggestDistance <= 0 {
		return
	}
	ranks := fuzzy.RankFindFold(name, d.Registry.Keys())
	if len(ranks) == 0 {
		return
	}
	sort.Sort(ranks)
	if ranks[0].Distance > d.SuggestDistance {
		return
	}
	d.send(ctx, ev, fmt.Sprintf("Unknown command `%s`. Did you mean `%s`?", name, ranks[0].Target))
}

func (d *Dispatcher) deny(ctx context.Context, ev *Event, cmd *Command, reason, reply string) {
	if d.Recorder != nil {
		d.Recorder.Denied(cmd.Name(), reason)
	}
	if reply != "" {
		d.send(ctx, ev, reply)
	}
}

func (d *Dispatcher) send(ctx context.Context, ev *Event, content string) {
	if ev.Messenger == nil {
		return
	}
	if err := ev.Messenger.Send(ctx, ev.Message.ChannelID, content); err != nil {
		d.Logger.Warn().Err(err).Str("channel", ev.Message.ChannelID).Msg("Failed to send reply")
	}
}

func (d *Dispatcher) report(log zerolog.Logger, res *Result, took time.Duration) {
	if res == nil {
		log.Debug().Dur("took", took).Msg("Command finished")
		return
	}
	var e *zerolog.Event
	switch res.Code {
	case CodeError:
		e = log.Error()
	case CodeWarn:
		e = log.Warn()
	default:
		e = log.Info()
	}
	e = e.Str("code", string(res.Code)).Dur("took", took)
	if res.Err != nil {
		e = e.Err(res.Err)
	}
	e.Msg(res.Details)

	// An INFO or WARN result can still carry the failure of a step inside
	// the run; surface it at error level.
	if res.Err != nil && res.Code != CodeError {
		log.Error().Err(res.Err).Str("code", string(res.Code)).Msg("Command reported a failure")
	}
}
