package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from the developer's environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN", "TELEGRAM_MODE",
		"DATA_SOURCE", "GOOGLE_SHEET_ID", "SPREADSHEET_ID", "DATA_CSV_PATH",
		"GOOGLE_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_TOKEN_FILE",
		"VOICE_ENABLED", "VOICE_REPLIES", "DATABASE_URL", "DB_URL",
		"WEBHOOK_SECRET", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	data := "Name,City\nAnn,New York\nBob,Boston\nAnnabel,Austin\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAsk_CSV(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_SOURCE", "csv")
	t.Setenv("DATA_CSV_PATH", writeCSV(t))

	out, err := run(t, "ask", "BOB")
	require.NoError(t, err)
	assert.Equal(t, "Name: Bob\nCity: Boston\n\n", out)

	out, err = run(t, "ask", "ann")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 results:")

	out, err = run(t, "ask", "new", "york")
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Ann\n")
}

func TestAsk_NoQuery(t *testing.T) {
	clearEnv(t)
	_, err := run(t, "ask")
	assert.Error(t, err)
}

func TestSummary_CSV(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_SOURCE", "csv")
	t.Setenv("DATA_CSV_PATH", writeCSV(t))

	out, err := run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Records: 3")
	assert.Contains(t, out, "  • Name (3 values)")
}

func TestAsk_InvalidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_SOURCE", "csv")

	_, err := run(t, "ask", "x")
	assert.ErrorContains(t, err, "DATA_CSV_PATH")
}

func TestAuth_RequiresSheets(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_SOURCE", "csv")
	t.Setenv("DATA_CSV_PATH", writeCSV(t))

	_, err := run(t, "auth")
	assert.ErrorContains(t, err, "DATA_SOURCE=sheets")
}

func TestCheck(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	creds := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(creds, []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(envFile, []byte("TELEGRAM_BOT_TOKEN=123:abc\nGOOGLE_SHEET_ID=sheet-1\nGOOGLE_CREDENTIALS_FILE="+creds+"\nGOOGLE_TOKEN_FILE="+filepath.Join(dir, "token.json")+"\n"), 0o600))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", envFile, "check"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "✅ "+envFile+" file found")
	assert.Contains(t, out.String(), "✅ "+creds+" found")
	assert.Contains(t, out.String(), "sheetbot auth")
	assert.Contains(t, out.String(), "Setup complete!")
}

func TestCheck_Missing(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("GOOGLE_CREDENTIALS_FILE", filepath.Join(dir, "credentials.json"))

	var out bytes.Buffer
	err := runCheck(&out, filepath.Join(dir, ".env"))

	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out.String(), ".env file not found")
	assert.Contains(t, out.String(), "credentials.json not found")
	assert.Contains(t, out.String(), "TELEGRAM_BOT_TOKEN is required")
	assert.Contains(t, out.String(), "Please complete the missing configuration steps above.")
}
