package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/halvard/ansuz/internal"
	"github.com/halvard/ansuz/internal/locale"
	"github.com/halvard/ansuz/internal/termprompt"
	pkgconfig "github.com/halvard/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// cliOptions builds the option set for terminal-driven commands: the
// interactive rename dialog is available there.
func cliOptions(cfg *internal.Config) []internal.Option {
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithPrompter(termprompt.New(locale.New(cfg.Language))),
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func upload(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunUpload(ctx, cliOptions(cfg),
		cmd.String("image"), cmd.String("note"), int(cmd.Int("cursor")), cmd.String("mode"))
}

func batch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunBatch(ctx, cliOptions(cfg), cmd.String("note"), cmd.String("mode"))
}

func check(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunCheck(ctx, []internal.Option{internal.WithConfig(cfg)})
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, []internal.Option{internal.WithConfig(cfg)})
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	modeFlag := &cli.StringFlag{
		Name:  "mode",
		Usage: "Rename mode override (dialog, ai, template)",
	}
	noteFlag := &cli.StringFlag{
		Name:     "note",
		Usage:    "Vault-relative path of the note",
		Required: true,
	}

	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Upload note images to WebDAV and rewrite the references in place",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, SSE stream, and inbox watcher",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "upload",
				Usage:  "Upload one image file and insert its hosted link into a note",
				Action: upload,
				Flags: []cli.Flag{
					configFlag,
					noteFlag,
					&cli.StringFlag{
						Name:     "image",
						Usage:    "Path to the image file to upload",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "cursor",
						Usage: "Byte offset for the inserted link (default: end of note)",
						Value: -1,
					},
					modeFlag,
				},
			},
			{
				Name:   "batch",
				Usage:  "Upload every not-yet-hosted image referenced by a note",
				Action: batch,
				Flags:  []cli.Flag{configFlag, noteFlag, modeFlag},
			},
			{
				Name:   "check",
				Usage:  "Probe the WebDAV store and the AI naming service",
				Action: check,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tool surface on stdin/stdout",
				Action: mcp,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
