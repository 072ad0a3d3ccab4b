// Command trollctl inspects and edits the karma store offline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	"github.com/keshon/trollbot/internal/version"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "trollctl",
		Usage:   "Inspect and edit " + version.AppName + " karma without the bot",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:       "config",
				Usage:      "TOML config file of the bot",
				Persistent: true,
			},
			&cli.StringFlag{
				Name:       "driver",
				Usage:      "Storage driver, json or sqlite; overrides the config",
				Persistent: true,
			},
			&cli.StringFlag{
				Name:       "path",
				Usage:      "Store file; overrides the config",
				Persistent: true,
			},
			&cli.BoolFlag{
				Name:       "no-color",
				Usage:      "Disable colored output",
				Persistent: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "leaderboard",
				Aliases: []string{"lb", "top"},
				Usage:   "Print the top of the leaderboard",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "n",
						Usage: "Number of entries",
						Value: 10,
					},
				},
				Action: cliLeaderboard,
			},
			{
				Name:  "xp",
				Usage: "Read or change one user's karma",
				Commands: []*cli.Command{
					{
						Name:      "get",
						Usage:     "Print a user's karma and place",
						ArgsUsage: "<user id>",
						Action:    cliGet,
					},
					{
						Name:      "set",
						Usage:     "Set a user's karma",
						ArgsUsage: "<user id> <amount>",
						Action:    cliSet,
					},
					{
						Name:      "give",
						Usage:     "Add to a user's karma; negative amounts take",
						ArgsUsage: "<user id> <amount>",
						Action:    cliGive,
					},
				},
			},
			{
				Name:   "commands",
				Usage:  "List the bot's commands with their usage and requirements",
				Action: cliCommands,
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
