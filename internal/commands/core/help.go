// Package core holds the informational commands every bot ships with.
package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/version"
)

const (
	EmbedColor = 0xb01e66

	CategoryInfo = "🕯️ Information"
)

// Help lists the commands in reg that the caller may run.
func Help(reg *command.Registry) command.Options {
	return command.Options{
		Name:        "help",
		Description: "Get a list of available commands",
		Category:    CategoryInfo,
		Aliases:     []string{"commands"},
		Permissions: command.Permissions{Client: discordgo.PermissionEmbedLinks},
		Arguments:   []command.Argument{{Name: "command", Type: command.ArgText, Optional: true}},
		Runner: command.RunnerFunc(func(ctx context.Context, inv *command.Invocation) *command.Result {
			var embed *discordgo.MessageEmbed
			if name := inv.Args.Text("command"); name != "" {
				cmd, ok := reg.Get(name)
				if !ok || !cmd.IsAuthorized(inv.Member, inv.Guild) {
					if err := inv.Reply(ctx, fmt.Sprintf("No command named `%s`.", name)); err != nil {
						return command.Fail(fmt.Errorf("failed to reply: %w", err))
					}
					return command.Info("help for unknown command %q", name)
				}
				embed = describe(cmd)
			} else {
				embed = &discordgo.MessageEmbed{
					Title:       version.AppName + " Help",
					Description: byCategory(reg.All(), inv),
					Color:       EmbedColor,
				}
			}
			if err := inv.ReplyEmbed(ctx, embed); err != nil {
				return command.Fail(fmt.Errorf("failed to send help: %w", err))
			}
			return command.Info("%s ran command \"help\"", inv.Author().Mention())
		}),
	}
}

func byCategory(all []*command.Command, inv *command.Invocation) string {
	cats := make(map[string][]*command.Command)
	for _, cmd := range all {
		if !cmd.IsAuthorized(inv.Member, inv.Guild) {
			continue
		}
		if cmd.Access().GuildOnly && inv.Guild == nil {
			continue
		}
		cats[cmd.Category()] = append(cats[cmd.Category()], cmd)
	}

	names := make([]string, 0, len(cats))
	for cat := range cats {
		names = append(names, cat)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, cat := range names {
		if cat == "" {
			sb.WriteString("**Other**\n")
		} else {
			fmt.Fprintf(&sb, "**%s**\n", cat)
		}
		// all is sorted by name already
		for _, cmd := range cats[cat] {
			fmt.Fprintf(&sb, "`%s` - %s\n", cmd.Name(), cmd.Description())
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func describe(cmd *command.Command) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Usage", Value: "`" + cmd.Usage() + "`"},
	}
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Aliases", Value: "`" + strings.Join(aliases, "`, `") + "`", Inline: true})
	}
	if t := cmd.Access().Tier; t != command.TierNone {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Requires", Value: t.String(), Inline: true})
	}
	if perms := command.PermissionList(cmd.Permissions().User); len(perms) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Permissions", Value: strings.Join(perms, ", "), Inline: true})
	}
	return &discordgo.MessageEmbed{
		Title:       cmd.Name(),
		Description: cmd.Description(),
		Color:       EmbedColor,
		Fields:      fields,
	}
}
