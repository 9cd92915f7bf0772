package commands

import (
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/middleware"
	"github.com/spf13/cobra"
)

// NewTokenCmd creates the token command
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API bearer tokens",
	}
	cmd.AddCommand(newTokenIssueCmd())
	return cmd
}

func newTokenIssueCmd() *cobra.Command {
	var subject, email, name, secret, issuer string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an HS256 bearer token",
		Long:  "Issue a bearer token accepted by the API. The user is created on first request with the token.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive")
			}

			if secret == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load config (or pass --secret): %w", err)
				}
				secret = cfg.JWTSecret
				if issuer == "" {
					issuer = cfg.JWTIssuer
				}
			}

			token, err := middleware.NewTokenVerifier(secret, issuer).Issue(middleware.TokenClaims{
				Subject: subject,
				Email:   email,
				Name:    name,
			}, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject, the user's provider ID (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&name, "name", "", "Name claim")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default JWT_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Issuer claim (default JWT_ISSUER)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}
