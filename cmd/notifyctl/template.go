package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cmlabs-hris/hris-notify/internal/app"
	"github.com/cmlabs-hris/hris-notify/internal/fixtures"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/spf13/cobra"
)

func (c *cli) templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "List and edit message templates",
	}
	cmd.AddCommand(c.templateListCmd(), c.templateSetCmd(), c.templateSeedCmd())
	return cmd
}

func (c *cli) templateListCmd() *cobra.Command {
	var channelName string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates for a channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := parseChannel(channelName)
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				templates, err := a.Repos.Templates.ListByChannel(cmd.Context(), ch)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SLUG\tNAME\tSUBJECT\tUPDATED")
				for _, t := range templates {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Slug, t.Name, t.Subject, t.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&channelName, "channel", "email", "Channel")
	return cmd
}

func (c *cli) templateSetCmd() *cobra.Command {
	var (
		channelName string
		name        string
		subject     string
		bodyFile    string
	)
	cmd := &cobra.Command{
		Use:   "set <slug>",
		Short: "Create or replace a template from a body file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := parseChannel(channelName)
			if err != nil {
				return err
			}
			body, err := os.ReadFile(bodyFile)
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}
			t := template.Template{
				Channel: ch,
				Slug:    args[0],
				Name:    name,
				Subject: subject,
				Body:    string(body),
			}
			if t.Name == "" {
				t.Name = t.Slug
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Repos.Templates.Upsert(cmd.Context(), t); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s/%s\n", ch, t.Slug)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&channelName, "channel", "email", "Channel")
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the slug)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject line with {{placeholders}}")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "File holding the body")
	_ = cmd.MarkFlagRequired("body-file")
	return cmd
}

func (c *cli) templateSeedCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install the default templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(a *app.App) error {
				saved, skipped := 0, 0
				for _, t := range fixtures.DefaultTemplates() {
					if !overwrite {
						_, err := a.Repos.Templates.GetBySlug(ctx, t.Channel, t.Slug)
						if err == nil {
							skipped++
							continue
						}
						if !errors.Is(err, template.ErrTemplateNotFound) {
							return err
						}
					}
					if err := a.Repos.Templates.Upsert(ctx, t); err != nil {
						return err
					}
					saved++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d templates, kept %d existing\n", saved, skipped)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace templates that already exist")
	return cmd
}
