package main

import (
	"errors"
	"fmt"
	"time"

	"questboard/internal/platform/auth"
	"questboard/internal/platform/config"

	"github.com/spf13/cobra"
)

func tokenCommand(cfg *config.Config) *cobra.Command {
	var (
		email     string
		name      string
		moderator bool
		inactive  bool
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Bearer token utilities",
	}
	issue := &cobra.Command{
		Use:   "issue <member-id>",
		Short: "Mint a signed bearer token for local use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
			if verifier == nil {
				return errors.New("JWT_SECRET must be set to issue tokens")
			}
			role := auth.RoleMember
			if moderator {
				role = auth.RoleModerator
			}
			token, err := verifier.Issue(auth.Principal{
				MemberID: args[0],
				Email:    email,
				Name:     name,
				Role:     role,
				Active:   !inactive,
			}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&email, "email", "", "member email")
	issue.Flags().StringVar(&name, "name", "", "display name")
	issue.Flags().BoolVar(&moderator, "moderator", false, "grant the moderator role")
	issue.Flags().BoolVar(&inactive, "inactive", false, "mark the member inactive")
	issue.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.AddCommand(issue)
	return cmd
}
