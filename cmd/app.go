package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/traitdex/traitdex/config"
	"github.com/traitdex/traitdex/internal/core/logger"
	"github.com/traitdex/traitdex/internal/kdf/bcrypt"
	"github.com/traitdex/traitdex/internal/version"
)

func App() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to config file",
		Aliases: []string{"c"},
		Sources: cli.EnvVars("TRAITDEX_CONFIG_PATH"),
	}

	app := &cli.Command{
		Name:    "traitdex",
		Usage:   "Documentation implementors registry daemon",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:  "daemon",
				Usage: "Collect implementor fragments, publish the registry and serve it over HTTP",
				Flags: []cli.Flag{
					configFlag,
				},
				Action: func(_ context.Context, c *cli.Command) error {
					cfg := loadConfig(c, config.ModeDaemon)
					RunDaemonMode(cfg)
					return nil
				},
			},

			{
				Name:  "build",
				Usage: "One-shot: scan the docs dir and write the implementors.js artifact",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "out",
						Usage: "Artifact destination ('-' for stdout)",
						Value: "implementors.js",
					},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					cfg := loadConfig(c, config.ModeBuild)
					return RunBuild(cfg, c.String("out"))
				},
			},

			{
				Name:  "fetch",
				Usage: "Fetch a peer site's implementors artifact and re-emit it locally",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "Peer artifact URL",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Artifact destination ('-' for stdout)",
						Value: "-",
					},
					&cli.StringFlag{
						Name:  "timeout",
						Usage: "Request timeout",
						Value: "5s",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return RunFetch(ctx, &FetchOpts{
						URL:     c.String("url"),
						Out:     c.String("out"),
						Timeout: c.String("timeout"),
					})
				},
			},

			{
				Name:  "hash-password",
				Usage: "Derive a bcrypt password hash for auth.password_hash",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "cost",
						Usage: "bcrypt cost (4..31)",
						Value: bcrypt.DefaultCost,
					},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					return RunHashPassword(int(c.Int("cost")))
				},
			},

			// Validate command
			{
				Name:  "validate",
				Usage: "Validate the config file without running the application",
				Flags: []cli.Flag{
					configFlag,
				},
				Action: func(_ context.Context, c *cli.Command) error {
					_ = loadConfig(c, config.ModeValidate)
					fmt.Println("Configuration is valid.")
					return nil
				},
			},
		},
	}

	return app
}

func loadConfig(c *cli.Command, mode string) *config.Config {
	configPath := c.String("config")

	// 1) if -c flag is set -> must read config from file
	// 2) if $TRAITDEX_CONFIG_PATH is set -> must read config from file
	// 3) read config with go-envconfig otherwise
	var cfg *config.Config
	if configPath != "" {
		cfg = config.MustLoad(configPath, mode)
	} else {
		cfg = config.MustEnvconfig(mode)
	}

	// debug config (NOTE: sensitive fields are hidden)
	_, _ = fmt.Fprintf(os.Stderr, "STARTING WITH CONFIGURATION (%s):\n%s\n\n",
		filepath.ToSlash(configPath),
		cfg.String(),
	)

	logger.Init(&logger.Opts{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	return cfg
}
