package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"arcade-go/internal/auth"
	"arcade-go/internal/errors"
)

var tokenCmd = &cobra.Command{
	Use:   "token [subject]",
	Short: "Issue a bearer token for the mutating HTTP routes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireJWT(); err != nil {
		return errors.ConfigError("token needs token settings", err)
	}
	service, err := auth.NewService([]byte(cfg.JWTSecret), cfg.JWTExpiration)
	if err != nil {
		return errors.AuthError("failed to create token service", err)
	}

	subject := "operator"
	if len(args) == 1 {
		subject = args[0]
	}
	tokens, err := service.IssueTokenPair(subject)
	if err != nil {
		return errors.AuthError("failed to issue token", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(tokens)
}
