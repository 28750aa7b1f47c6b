package main

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

func (c *cli) tokenCmd() *cobra.Command {
	var (
		email string
		roles []string
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint an access token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := jwt.NewJWTService(c.cfg.JWT.Secret, c.cfg.JWT.AccessExpiration)
			token, expiresAt, err := svc.GenerateAccessToken(args[0], email, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "Comma-separated roles")
	return cmd
}
