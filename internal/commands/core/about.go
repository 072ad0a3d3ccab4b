package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/version"
)

// About shows version information.
func About() command.Options {
	return command.Options{
		Name:        "about",
		Description: "Discover the origin of this bot",
		Category:    CategoryInfo,
		Permissions: command.Permissions{Client: discordgo.PermissionEmbedLinks},
		Runner: command.RunnerFunc(func(ctx context.Context, inv *command.Invocation) *command.Result {
			if err := inv.ReplyEmbed(ctx, aboutEmbed()); err != nil {
				return command.Fail(fmt.Errorf("failed to send about: %w", err))
			}
			return command.Info("%s ran command \"about\"", inv.Author().Mention())
		}),
	}
}

func aboutEmbed() *discordgo.MessageEmbed {
	buildDate := "unknown"
	if version.BuildDate != "" {
		if t, err := time.Parse(time.RFC3339, version.BuildDate); err == nil {
			buildDate = t.Format("2006-01-02")
		} else {
			buildDate = "invalid date"
		}
	}
	goVer := strings.TrimPrefix(version.GoVersion(), "go")

	return &discordgo.MessageEmbed{
		Title:       "ℹ️ About " + version.AppName,
		Description: version.AppDescription,
		Color:       EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Version", Value: version.Version, Inline: true},
			{Name: "Release", Value: buildDate + " (Go " + goVer + ")", Inline: true},
		},
	}
}
