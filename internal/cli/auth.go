package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zoheirhassoun/Telegram-bot/internal/config"
	"github.com/zoheirhassoun/Telegram-bot/internal/logging"
	"github.com/zoheirhassoun/Telegram-bot/internal/source"
)

// NewAuthCommand creates the auth command.
func NewAuthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Sheets access and store the token",
		Long: `Run the OAuth consent flow for the client in GOOGLE_CREDENTIALS_FILE and
save the token to GOOGLE_TOKEN_FILE. The bot reuses the stored token and
never prompts while serving.

A local server on SHEETS_AUTH_ADDR receives the redirect; that address
must be an authorized redirect URI of the OAuth client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadData()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			if cfg.Data.Source != config.SourceSheets {
				return errors.New("auth only applies to DATA_SOURCE=sheets")
			}

			auth := newAuthorizer(cfg, true, source.WithPrompt(printAuthURL(cmd.ErrOrStderr())))
			if err := auth.Authorize(cmd.Context()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", cfg.Data.TokenFile)
			return err
		},
	}
}

// printAuthURL returns a consent prompt that writes the URL to w.
func printAuthURL(w io.Writer) func(string) {
	return func(authURL string) {
		fmt.Fprintf(w, "Open this URL in your browser to authorize access:\n\n%s\n\n", authURL)
	}
}
