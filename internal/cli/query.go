package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoheirhassoun/Telegram-bot/internal/config"
	"github.com/zoheirhassoun/Telegram-bot/internal/core"
	"github.com/zoheirhassoun/Telegram-bot/internal/logging"
	"github.com/zoheirhassoun/Telegram-bot/internal/source"
)

// NewAskCommand creates the ask command.
func NewAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <query>",
		Short: "Search the data once and print the reply",
		Long: `Search the configured data source the way the bot does and print the
reply it would send. All arguments are joined into one query.`,
		Example: `  sheetbot ask widgets
  sheetbot ask "New York"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := offlineSession(cmd)
			if err != nil {
				return err
			}
			reply := session.Answer(cmd.Context(), strings.Join(args, " "))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the data summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := offlineSession(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), session.Summary(cmd.Context()))
			return err
		},
	}
}

// offlineSession builds a session for one-off commands.
func offlineSession(cmd *cobra.Command) (*core.Session, error) {
	cfg, err := config.LoadData()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	src, err := newSource(cfg, source.WithPrompt(printAuthURL(cmd.ErrOrStderr())))
	if err != nil {
		return nil, err
	}
	return newSession(cfg, src), nil
}
