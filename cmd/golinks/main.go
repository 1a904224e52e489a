package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"github.com/vadimbarashkov/golinks/internal/app"
	"github.com/vadimbarashkov/golinks/internal/config"
	"github.com/vadimbarashkov/golinks/pkg/postgres"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "golinks",
		Usage: "Memorable short links with semantic search and click analytics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				EnvVars: []string{"CONFIG_PATH"},
				Value:   "config.yml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Apply pending migrations and serve the HTTP API",
				Action: serveCommand,
			},
			{
				Name:  "migrate",
				Usage: "Manage the database schema",
				Subcommands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "Apply all pending migrations",
						Action: migrateUpCommand,
					},
					{
						Name:   "down",
						Usage:  "Roll back migrations",
						Action: migrateDownCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "steps",
								Usage: "Number of migrations to roll back, 0 rolls back all",
								Value: 1,
							},
						},
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Compute link embeddings that are missing",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Recompute every embedding, e.g. after switching models",
					},
				},
			},
		},
	}
}

func setup(c *cli.Context) (*config.Config, *httplog.Logger, func() error, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}

	logger, closeLog, err := app.NewLogger(cfg.Env, cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, closeLog, nil
}

func serveCommand(c *cli.Context) error {
	cfg, logger, closeLog, err := setup(c)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", slog.Any("err", err))
		return err
	}

	return nil
}

func migrateUpCommand(c *cli.Context) error {
	cfg, logger, closeLog, err := setup(c)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := postgres.MigrateUp(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN()); err != nil {
		return err
	}

	logger.Info("migrations applied")
	return nil
}

func migrateDownCommand(c *cli.Context) error {
	cfg, logger, closeLog, err := setup(c)
	if err != nil {
		return err
	}
	defer closeLog()

	steps := c.Int("steps")
	if err := postgres.MigrateDown(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN(), steps); err != nil {
		return err
	}

	logger.Info("migrations rolled back", slog.Int("steps", steps))
	return nil
}

func reembedCommand(c *cli.Context) error {
	cfg, logger, closeLog, err := setup(c)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	n, err := app.Reembed(ctx, cfg, logger.Logger, c.Bool("all"))
	logger.Info("reembedded links", slog.Int("count", n), slog.Bool("all", c.Bool("all")))

	return err
}
