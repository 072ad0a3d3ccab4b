package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/internal/commands"
	"github.com/keshon/trollbot/internal/config"
	"github.com/keshon/trollbot/internal/discord"
	"github.com/keshon/trollbot/internal/httpapi"
	"github.com/keshon/trollbot/internal/logging"
	"github.com/keshon/trollbot/internal/metrics"
	"github.com/keshon/trollbot/internal/storage"
	"github.com/keshon/trollbot/internal/version"
	"github.com/keshon/trollbot/internal/xp"
	"github.com/keshon/trollbot/pkg/retrylimit"
)

var app = cli.Command{
	Name:    "trollbot",
	Usage:   version.AppDescription,
	Version: version.Version,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "TOML config file; environment variables override it",
		},
	},
	Action: run,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("couldn't load config: %w", err)
	}
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()
	log.Info().Str("version", version.Version).Msgf("Starting %s", version.AppName)

	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	met, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("couldn't register metrics: %w", err)
	}

	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
	bot, err := discord.New(cfg.DiscordToken, log, lim, retrylimit.DefaultConfig())
	if err != nil {
		return err
	}

	registry, err := commands.Build(
		command.Roles{Admin: cfg.AdminRoleID, Mod: cfg.ModRoleID},
		commands.Deps{
			Store:           store,
			LeaderboardSize: cfg.XP.LeaderboardSize,
			Latency:         bot.Latency,
			Names:           bot.DisplayName,
		},
		cfg.Disabled,
	)
	if err != nil {
		return err
	}
	log.Info().Int("commands", len(registry.All())).Msg("Registered commands")

	earner := xp.NewEarner(store, cfg.XP.PerMessage, cfg.XP.Cooldown)
	earner.OnAward = met.Award

	bot.Dispatcher = &command.Dispatcher{
		Registry:        registry,
		Prefix:          cfg.Prefix,
		Timeout:         cfg.CommandTimeout,
		Logger:          log,
		Recorder:        met,
		SuggestDistance: cfg.SuggestDistance,
	}
	bot.Earner = earner
	bot.OnMessage = met.Messages.Inc

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return bot.Run(ctx)
	})
	if cfg.HTTP.Addr != "" {
		gin.SetMode(gin.ReleaseMode)
		srv := &httpapi.Server{
			Store:    store,
			Gatherer: reg,
			Logger:   log.With().Str("component", "http").Logger(),
			Ready:    bot.Ready,
		}
		group.Go(func() error {
			return srv.Serve(ctx, cfg.HTTP.Addr)
		})
	}

	err = group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Bot stopped")
		return err
	}
	log.Info().Msg("Bot exited cleanly")
	return nil
}
