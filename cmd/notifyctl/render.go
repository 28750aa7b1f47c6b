package main

import (
	"fmt"

	"github.com/cmlabs-hris/hris-notify/internal/app"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/spf13/cobra"
)

func (c *cli) renderCmd() *cobra.Command {
	var (
		channelName string
		vars        map[string]string
	)
	cmd := &cobra.Command{
		Use:   "render <slug>",
		Short: "Preview a template with sample variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := parseChannel(channelName)
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				rendered, err := a.Renderer.Render(cmd.Context(), ch, args[0], vars)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if ch == template.ChannelTelegram || ch == template.ChannelWhatsApp {
					fmt.Fprintln(out, rendered.ChatText())
					return nil
				}
				fmt.Fprintf(out, "Subject: %s\n\n%s\n", rendered.Subject, rendered.Body)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&channelName, "channel", "email", "Channel")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "Template variable as key=value (repeatable)")
	return cmd
}
