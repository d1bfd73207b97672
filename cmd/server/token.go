package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "deedgate/internal/jwt_token"
	"deedgate/pkg/domain"
	"deedgate/pkg/platform/middleware/admin"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

// newTokenCommand mints access tokens signed with the configured key, for local testing.
func newTokenCommand(cc *commandContext) *cobra.Command {
	var (
		email      string
		wallet     string
		userID     string
		ttl        time.Duration
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.config()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			uid := domain.NewUserID()
			if userID != "" {
				if uid, err = domain.ParseUserID(userID); err != nil {
					return fmt.Errorf("invalid --user-id: %w", err)
				}
			}
			var w domain.WalletAddress
			if wallet != "" {
				if w, err = domain.ParseWalletAddress(wallet); err != nil {
					return fmt.Errorf("invalid --wallet: %w", err)
				}
			}

			svc := jwttoken.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, ttl)
			token, err := svc.GenerateAccessToken(cmd.Context(), uid, email, w)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			isAdmin := admin.NewAllowlist(cfg.Auth.AdminEmails).IsAdmin(email)

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tokenOutput{
					Token:     token,
					Type:      "access_token",
					ExpiresIn: ttl.String(),
					Claims: map[string]any{
						"user_id": uid.String(),
						"email":   email,
						"wallet":  w.String(),
						"admin":   isAdmin,
					},
					Usage: map[string]string{
						"header": "Authorization: Bearer <token>",
					},
				})
			}

			fmt.Fprintln(out, "Access Token (JWT)")
			fmt.Fprintln(out, "==================")
			fmt.Fprintf(out, "Expires In:  %s\n", ttl)
			fmt.Fprintf(out, "User ID:     %s\n", uid)
			fmt.Fprintf(out, "Email:       %s\n", email)
			if wallet != "" {
				fmt.Fprintf(out, "Wallet:      %s\n", w)
			}
			fmt.Fprintf(out, "Admin:       %t\n", isAdmin)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Token:")
			fmt.Fprintln(out, token)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&email, "email", "", "Email claim (admins are matched against auth.adminEmails)")
	flags.StringVar(&wallet, "wallet", "", "Wallet address claim")
	flags.StringVar(&userID, "user-id", "", "User ID (generated when empty)")
	flags.DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to auth.tokenTTL)")
	flags.BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
