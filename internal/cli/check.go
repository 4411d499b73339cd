package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zoheirhassoun/Telegram-bot/internal/config"
)

// errCheckFailed is returned when any setup check fails.
var errCheckFailed = errors.New("setup incomplete")

// checkResult is one line of the check report.
type checkResult struct {
	ok     bool
	label  string
	detail []string
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the bot setup",
		Long: `Check that the env file, the Google credentials and the configuration
are in place. Exits non-zero when something needs fixing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return runCheck(cmd.OutOrStdout(), envFile)
		},
	}
}

func runCheck(w io.Writer, envFile string) error {
	fmt.Fprintln(w, "Checking configuration...")
	fmt.Fprintln(w)

	results := []checkResult{checkEnvFile(envFile)}

	cfg, err := config.Read()
	if err != nil {
		results = append(results, checkResult{label: "configuration could not be read", detail: []string{err.Error()}})
		return report(w, results)
	}

	if cfg.Data.Source == config.SourceSheets {
		results = append(results, checkFile(cfg.Data.CredentialsFile, []string{
			"Please download it from Google Cloud Console:",
			"  1. Go to https://console.cloud.google.com/",
			"  2. Enable Google Sheets API",
			"  3. Create OAuth 2.0 credentials",
			"  4. Download as " + cfg.Data.CredentialsFile,
		}))
		results = append(results, checkToken(cfg.Data.TokenFile))
	}

	if cfg.Voice.Enabled && cfg.Voice.CredentialsFile != "" {
		results = append(results, checkFile(cfg.Voice.CredentialsFile, nil))
	}

	if err := cfg.Validate(); err != nil {
		results = append(results, checkResult{label: "configuration is invalid", detail: []string{err.Error()}})
	} else {
		results = append(results, checkResult{ok: true, label: "configuration is valid"})
	}

	return report(w, results)
}

func checkEnvFile(path string) checkResult {
	if _, err := os.Stat(path); err != nil {
		return checkResult{label: path + " file not found", detail: []string{
			"Create it and fill in your values:",
			"  - TELEGRAM_BOT_TOKEN (from BotFather)",
			"  - GOOGLE_SHEET_ID (from your Google Sheet URL)",
			"or set them in the environment.",
		}}
	}
	return checkResult{ok: true, label: path + " file found"}
}

func checkFile(path string, help []string) checkResult {
	if _, err := os.Stat(path); err != nil {
		return checkResult{label: path + " not found", detail: help}
	}
	return checkResult{ok: true, label: path + " found"}
}

// checkToken never fails: service accounts need no token.
func checkToken(path string) checkResult {
	if _, err := os.Stat(path); err != nil {
		return checkResult{ok: true, label: path + " not found", detail: []string{
			"Run `sheetbot auth` if your credentials are an OAuth client.",
		}}
	}
	return checkResult{ok: true, label: path + " found"}
}

func report(w io.Writer, results []checkResult) error {
	failed := false
	for _, r := range results {
		mark := "✅"
		if !r.ok {
			mark = "⚠️ "
			failed = true
		}
		fmt.Fprintf(w, "%s %s\n", mark, r.label)
		for _, d := range r.detail {
			fmt.Fprintf(w, "   %s\n", d)
		}
	}

	fmt.Fprintln(w)
	if failed {
		fmt.Fprintln(w, "Please complete the missing configuration steps above.")
		return errCheckFailed
	}
	fmt.Fprintln(w, "Setup complete! You can now run: sheetbot serve")
	return nil
}
