package command

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Runner is a command's behavior. A nil Result means there is nothing to
// report.
type Runner interface {
	Run(ctx context.Context, inv *Invocation) *Result
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, inv *Invocation) *Result

func (f RunnerFunc) Run(ctx context.Context, inv *Invocation) *Result {
	return f(ctx, inv)
}

// Messenger sends messages back to the platform.
type Messenger interface {
	Send(ctx context.Context, channelID, content string) error
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
}

// Invocation is everything a runner gets for one authorized call. It must
// not be retained after Run returns.
type Invocation struct {
	Command   *Command
	Message   *discordgo.Message
	Member    *discordgo.Member
	Guild     *discordgo.Guild
	Args      Values
	Flags     map[string]string
	Messenger Messenger
}

// Reply sends content to the channel the command came from.
func (inv *Invocation) Reply(ctx context.Context, content string) error {
	return inv.Messenger.Send(ctx, inv.Message.ChannelID, content)
}

// ReplyEmbed sends an embed to the channel the command came from.
func (inv *Invocation) ReplyEmbed(ctx context.Context, embed *discordgo.MessageEmbed) error {
	return inv.Messenger.SendEmbed(ctx, inv.Message.ChannelID, embed)
}

// Author returns the user who sent the message.
func (inv *Invocation) Author() *discordgo.User {
	if inv.Message != nil && inv.Message.Author != nil {
		return inv.Message.Author
	}
	if inv.Member != nil {
		return inv.Member.User
	}
	return nil
}

// Flag returns the value of a flag and whether it was given.
func (inv *Invocation) Flag(name string) (string, bool) {
	v, ok := inv.Flags[name]
	return v, ok
}
