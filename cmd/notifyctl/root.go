package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cmlabs-hris/hris-notify/internal/app"
	"github.com/cmlabs-hris/hris-notify/internal/config"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/spf13/cobra"
)

// cli carries the loaded configuration between the root and its subcommands.
type cli struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "notifyctl",
		Short:         "Operate the HRIS notification service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
			return nil
		},
	}

	root.AddCommand(
		c.migrateCmd(),
		c.tokenCmd(),
		c.templateCmd(),
		c.renderCmd(),
		c.sendCmd(),
		c.channelCmd(),
	)
	return root
}

// withApp builds the full service graph for one command and tears it down after.
func (c *cli) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func parseChannel(s string) (template.Channel, error) {
	ch := template.Channel(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range template.AllChannels() {
		if ch == known {
			return ch, nil
		}
	}
	return "", fmt.Errorf("unknown channel %q (want one of email, whatsapp, push, telegram)", s)
}
