package main

import (
	"fmt"

	"github.com/cmlabs-hris/hris-notify/internal/app"
	"github.com/cmlabs-hris/hris-notify/internal/domain/channel"
	"github.com/spf13/cobra"
)

func (c *cli) channelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Configure delivery providers",
	}
	cmd.AddCommand(c.channelEmailCmd(), c.channelWhatsAppCmd(), c.channelTelegramCmd())
	return cmd
}

func (c *cli) channelEmailCmd() *cobra.Command {
	var (
		p        channel.EmailProfile
		provider string
		inactive bool
	)
	cmd := &cobra.Command{
		Use:   "email <name>",
		Short: "Save an email profile and make it the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Name = args[0]
			p.Provider = channel.EmailProvider(provider)
			p.IsActive = !inactive
			if err := validateEmailProfile(p); err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Repos.Settings.SaveEmailProfile(cmd.Context(), p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved email profile %q (%s, active=%t)\n", p.Name, p.Provider, p.IsActive)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&provider, "provider", string(channel.EmailProviderSMTP), "smtp or graph")
	f.BoolVar(&inactive, "inactive", false, "Store without activating")
	f.StringVar(&p.FromAddress, "from", "", "Sender address")
	f.StringVar(&p.FromName, "from-name", "", "Sender display name")
	f.StringVar(&p.Host, "host", "", "SMTP host")
	f.IntVar(&p.Port, "port", 587, "SMTP port")
	f.StringVar(&p.Username, "username", "", "SMTP username")
	f.StringVar(&p.Password, "password", "", "SMTP password")
	f.StringVar(&p.TenantID, "tenant-id", "", "Graph tenant id")
	f.StringVar(&p.ClientID, "client-id", "", "Graph application id")
	f.StringVar(&p.ClientSecret, "client-secret", "", "Graph client secret")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func validateEmailProfile(p channel.EmailProfile) error {
	switch p.Provider {
	case channel.EmailProviderSMTP:
		if p.Host == "" {
			return fmt.Errorf("--host is required for smtp")
		}
	case channel.EmailProviderGraph:
		if p.TenantID == "" || p.ClientID == "" || p.ClientSecret == "" {
			return fmt.Errorf("--tenant-id, --client-id and --client-secret are required for graph")
		}
	default:
		return channel.ErrInvalidEmailProvider
	}
	return nil
}

func (c *cli) channelWhatsAppCmd() *cobra.Command {
	var (
		g        channel.WhatsAppGateway
		inactive bool
	)
	cmd := &cobra.Command{
		Use:   "whatsapp <name>",
		Short: "Save a WhatsApp gateway and make it the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.Name = args[0]
			g.IsActive = !inactive
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Repos.Settings.SaveWhatsAppGateway(cmd.Context(), g); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved WhatsApp gateway %q (active=%t)\n", g.Name, g.IsActive)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.BoolVar(&inactive, "inactive", false, "Store without activating")
	f.StringVar(&g.BaseURL, "base-url", "", "Gateway base URL")
	f.StringVar(&g.APIKey, "api-key", "", "Gateway API key")
	f.StringVar(&g.Sender, "sender", "", "Sender number or device id")
	_ = cmd.MarkFlagRequired("base-url")
	_ = cmd.MarkFlagRequired("api-key")
	return cmd
}

func (c *cli) channelTelegramCmd() *cobra.Command {
	var (
		s        channel.TelegramSettings
		disabled bool
	)
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Save the Telegram group chat settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s.Enabled = !disabled
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Repos.Settings.SaveTelegramSettings(cmd.Context(), s); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved Telegram settings (chat %s, enabled=%t)\n", s.GroupChatID, s.Enabled)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.BoolVar(&disabled, "disabled", false, "Store but disable group posts")
	f.StringVar(&s.BotToken, "bot-token", "", "Bot token")
	f.StringVar(&s.GroupChatID, "chat-id", "", "Group chat id")
	_ = cmd.MarkFlagRequired("bot-token")
	_ = cmd.MarkFlagRequired("chat-id")
	return cmd
}
