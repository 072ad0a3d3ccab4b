package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/commands"
	"github.com/keshon/trollbot/internal/config"
	"github.com/keshon/trollbot/internal/storage"
	"github.com/keshon/trollbot/internal/xp"
)

var (
	bold  = color.New(color.Bold)
	gold  = color.New(color.FgYellow, color.Bold)
	faint = color.New(color.Faint)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// openStore opens the store the bot would use, with flag overrides.
func openStore(ctx context.Context, cmd *cli.Command) (xp.Store, error) {
	if cmd.Bool("no-color") {
		color.NoColor = true
	}
	cfg, err := config.Read(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("couldn't load config: %w", err)
	}
	if d := cmd.String("driver"); d != "" {
		cfg.Storage.Driver = d
	}
	if p := cmd.String("path"); p != "" {
		cfg.Storage.Path = p
		cfg.Storage.SQLitePath = p
	}
	return storage.Open(ctx, cfg.Storage, zerolog.Nop())
}

func userArg(cmd *cli.Command, i int) (string, error) {
	id := cmd.Args().Get(i)
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("%q is not a user id", id)
	}
	return id, nil
}

func amountArg(cmd *cli.Command, i int) (int64, error) {
	raw := cmd.Args().Get(i)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return n, nil
}

func cliLeaderboard(ctx context.Context, cmd *cli.Command) error {
	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Top(ctx, int(cmd.Int("n")))
	if err != nil {
		return err
	}
	w := out(cmd)
	if len(records) == 0 {
		faint.Fprintln(w, "nobody has any karma yet")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, bold.Sprint("PLACE\tUSER\tKARMA\tLAST EARNED"))
	place := 0
	for i, rec := range records {
		if i == 0 || rec.XP != records[i-1].XP {
			place = i + 1
		}
		p := humanize.Ordinal(place)
		if place == 1 {
			p = gold.Sprint(p)
		}
		earned := "never"
		if !rec.EarnedAt.IsZero() {
			earned = humanize.Time(rec.EarnedAt)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p, rec.UserID, humanize.Comma(rec.XP), faint.Sprint(earned))
	}
	return tw.Flush()
}

func cliGet(ctx context.Context, cmd *cli.Command) error {
	id, err := userArg(cmd, 0)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, ok, err := store.Stats(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		faint.Fprintf(out(cmd), "%s has no karma yet\n", id)
		return nil
	}
	fmt.Fprintf(out(cmd), "%s is in %s with %s karma\n",
		id, bold.Sprint(xp.Place(stats.Place)), bold.Sprint(humanize.Comma(stats.XP)))
	return nil
}

func cliSet(ctx context.Context, cmd *cli.Command) error {
	id, err := userArg(cmd, 0)
	if err != nil {
		return err
	}
	n, err := amountArg(cmd, 1)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Set(ctx, id, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "%s now has %s karma\n", id, bold.Sprint(humanize.Comma(rec.XP)))
	return nil
}

func cliGive(ctx context.Context, cmd *cli.Command) error {
	id, err := userArg(cmd, 0)
	if err != nil {
		return err
	}
	n, err := amountArg(cmd, 1)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Award(ctx, id, n, time.Time{})
	if err != nil {
		return err
	}
	delta := green.Sprintf("+%s", humanize.Comma(n))
	if n < 0 {
		delta = red.Sprint(humanize.Comma(n))
	}
	fmt.Fprintf(out(cmd), "%s %s, now %s karma\n", id, delta, bold.Sprint(humanize.Comma(rec.XP)))
	return nil
}

func cliCommands(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("no-color") {
		color.NoColor = true
	}
	reg, err := commands.Build(command.Roles{}, commands.Deps{Store: xp.NewMemStore()}, nil)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, bold.Sprint("USAGE\tACCESS\tPERMISSIONS\tDESCRIPTION"))
	for _, c := range reg.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Usage(), access(c), perms(c), c.Description())
	}
	return tw.Flush()
}

func access(c *command.Command) string {
	a := c.Access()
	var parts []string
	if a.Tier != command.TierNone {
		parts = append(parts, a.Tier.String())
	}
	if a.GuildOnly {
		parts = append(parts, "guild only")
	}
	if len(parts) == 0 {
		return faint.Sprint("anyone")
	}
	return strings.Join(parts, ", ")
}

func perms(c *command.Command) string {
	p := c.Permissions()
	var parts []string
	if p.User != 0 {
		parts = append(parts, "user: "+strings.Join(command.PermissionList(p.User), ", "))
	}
	if p.Client != 0 {
		parts = append(parts, "bot: "+strings.Join(command.PermissionList(p.Client), ", "))
	}
	if len(parts) == 0 {
		return faint.Sprint("-")
	}
	return strings.Join(parts, "; ")
}
