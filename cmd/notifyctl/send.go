package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/cmlabs-hris/hris-notify/internal/app"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/spf13/cobra"
)

func (c *cli) sendCmd() *cobra.Command {
	var (
		channelName string
		slug        string
		to          []string
		vars        map[string]string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Render a template and deliver it through one channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := parseChannel(channelName)
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				d := a.Dispatcher(ch)
				if d == nil {
					return fmt.Errorf("no dispatcher for channel %s", ch)
				}
				rendered, err := a.Renderer.Render(cmd.Context(), ch, slug, vars)
				if err != nil {
					return err
				}

				deliveries := d.Dispatch(cmd.Context(), to, notify.Message{
					Event:    notification.NotificationType(strings.ReplaceAll(slug, "-", "_")),
					Rendered: rendered,
					Data:     vars,
				})

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TO\tSUCCESS\tQUEUED\tMESSAGE ID\tERROR")
				failed := 0
				for _, del := range deliveries {
					if !del.Success {
						failed++
					}
					fmt.Fprintf(tw, "%s\t%t\t%t\t%s\t%s\n", del.To, del.Success, del.Queued, del.MessageID, del.Error)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				if len(deliveries) == 0 {
					return fmt.Errorf("channel %s made no deliveries; is it configured?", ch)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d deliveries failed", failed, len(deliveries))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&channelName, "channel", "", "Channel to send through")
	cmd.Flags().StringVar(&slug, "slug", "", "Template slug")
	cmd.Flags().StringSliceVar(&to, "to", nil, "Destinations: emails, phones, user ids, or \"group\" for telegram")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "Template variable as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("channel")
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
