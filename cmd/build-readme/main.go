// Command build-readme renders README.md from README.md.tmpl with the
// command reference of the bot.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/urfave/cli/v3"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/commands"
	"github.com/keshon/trollbot/internal/version"
	"github.com/keshon/trollbot/internal/xp"
)

var app = cli.Command{
	Name:  "build-readme",
	Usage: "Render the README command reference",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "template", Value: "README.md.tmpl", Usage: "Template file"},
		&cli.StringFlag{Name: "out", Value: "README.md", Usage: "Output file"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		tmpl, err := os.ReadFile(cmd.String("template"))
		if err != nil {
			return err
		}
		reg, err := commands.Build(command.Roles{}, commands.Deps{Store: xp.NewMemStore()}, nil)
		if err != nil {
			return err
		}
		out, err := render(string(tmpl), reg)
		if err != nil {
			return err
		}
		return os.WriteFile(cmd.String("out"), out, 0o644)
	},
}

func main() {
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func render(tmpl string, reg *command.Registry) ([]byte, error) {
	t, err := template.New("readme").Parse(tmpl)
	if err != nil {
		return nil, err
	}

	sections := make(map[string][]*command.Command)
	for _, c := range reg.All() {
		cat := c.Category()
		if cat == "" {
			cat = "Other"
		}
		sections[cat] = append(sections[cat], c)
	}
	cats := make([]string, 0, len(sections))
	for cat := range sections {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	var buf bytes.Buffer
	for _, cat := range cats {
		fmt.Fprintf(&buf, "### %s\n\n", cat)
		for _, c := range sections[cat] {
			fmt.Fprintf(&buf, "* **`%s`**", strings.TrimSuffix(c.Usage(), command.UsageSuffix))
			if aliases := c.Aliases(); len(aliases) > 0 {
				fmt.Fprintf(&buf, " (also `%s`)", strings.Join(aliases, "`, `"))
			}
			fmt.Fprintf(&buf, "\n  %s\n\n", c.Description())
		}
	}

	var out bytes.Buffer
	err = t.Execute(&out, map[string]any{
		"AppName":         version.AppName,
		"Description":     version.AppDescription,
		"CommandSections": buf.String(),
	})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
