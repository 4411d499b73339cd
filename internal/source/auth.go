package source

// auth.go turns credentials.json into a client option for the Sheets API.
//
// Two credential kinds are supported:
//
//   - Service account (or authorized_user) keys are used directly.
//   - OAuth client secrets ("installed" or "web") need a user token. The token
//     is cached in the token file and refreshed tokens are written back. When
//     no token is cached and interactive auth is enabled, a loopback consent
//     flow is served on ListenAddr and the consent URL is handed to the prompt.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrNoToken means an OAuth client has no cached token and may not prompt for one.
var ErrNoToken = errors.New("no cached token; run `sheetbot auth` to authorize")

// AuthConfig controls how the Authorizer obtains credentials.
type AuthConfig struct {
	CredentialsFile string
	TokenFile       string
	Interactive     bool
	ListenAddr      string
	Timeout         time.Duration
}

// Authorizer produces Sheets client options from a credentials file.
type Authorizer struct {
	cfg    AuthConfig
	tokens *TokenStore
	prompt func(authURL string)
}

// AuthOption customizes an Authorizer.
type AuthOption func(*Authorizer)

// WithPrompt sets where the consent URL is shown. The default logs it.
func WithPrompt(fn func(authURL string)) AuthOption {
	return func(a *Authorizer) {
		a.prompt = fn
	}
}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer(cfg AuthConfig, opts ...AuthOption) *Authorizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "localhost:8080"
	}

	a := &Authorizer{
		cfg:    cfg,
		tokens: NewTokenStore(cfg.TokenFile),
		prompt: func(authURL string) {
			slog.Warn("google sheets authorization required, open this URL in a browser", "url", authURL)
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ClientOption returns the credentials option for sheets.NewService.
func (a *Authorizer) ClientOption(ctx context.Context) (option.ClientOption, error) {
	data, err := a.readCredentials()
	if err != nil {
		return nil, err
	}

	if !isOAuthClient(data) {
		creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, authError("parse credentials", err)
		}
		return option.WithCredentials(creds), nil
	}

	cfg, err := google.ConfigFromJSON(data, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, authError("parse credentials", err)
	}

	tok, err := a.tokens.Load()
	if err != nil {
		return nil, authError("load token", err)
	}
	if tok == nil {
		if !a.cfg.Interactive {
			return nil, authError("load token", ErrNoToken)
		}
		if tok, err = a.consent(ctx, cfg); err != nil {
			return nil, err
		}
	}

	// The token source outlives the request that created it.
	base := oauth2.ReuseTokenSource(tok, cfg.TokenSource(context.WithoutCancel(ctx), tok))
	return option.WithTokenSource(newPersistingTokenSource(base, a.tokens, tok)), nil
}

// Authorize runs the consent flow unconditionally and caches the new token.
// Only OAuth client credentials need it.
func (a *Authorizer) Authorize(ctx context.Context) error {
	data, err := a.readCredentials()
	if err != nil {
		return err
	}
	if !isOAuthClient(data) {
		return nil
	}

	cfg, err := google.ConfigFromJSON(data, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return authError("parse credentials", err)
	}
	_, err = a.consent(ctx, cfg)
	return err
}

// Reset deletes the cached token.
func (a *Authorizer) Reset() error {
	if err := a.tokens.Clear(); err != nil {
		return authError("reset token", err)
	}
	return nil
}

func (a *Authorizer) readCredentials() ([]byte, error) {
	data, err := os.ReadFile(a.cfg.CredentialsFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, authError("read credentials",
			fmt.Errorf("%s not found. Please download it from Google Cloud Console: %w", a.cfg.CredentialsFile, err))
	}
	if err != nil {
		return nil, authError("read credentials", err)
	}
	return data, nil
}

// consent serves the loopback redirect, hands the consent URL to the prompt
// and exchanges the returned code for a token.
func (a *Authorizer) consent(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", a.cfg.ListenAddr)
	if err != nil {
		return nil, authError("start consent listener", err)
	}

	conf := *cfg
	conf.RedirectURL = "http://" + ln.Addr().String() + "/"
	state := uuid.NewString()

	codes := make(chan string, 1)
	denied := make(chan error, 1)

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if reason := q.Get("error"); reason != "" {
			http.Error(w, "authorization denied", http.StatusForbidden)
			select {
			case denied <- fmt.Errorf("consent denied: %s", reason):
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this window.")
		select {
		case codes <- code:
		default:
		}
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer srv.Close()

	a.prompt(conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	// The wait is bounded by the auth timeout, not by the caller's deadline.
	// Cancellation still stops it.
	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, func() {
		if errors.Is(ctx.Err(), context.Canceled) {
			cancel()
		}
	})
	defer stop()

	select {
	case code := <-codes:
		tok, err := conf.Exchange(waitCtx, code)
		if err != nil {
			return nil, authError("exchange code", err)
		}
		if err := a.tokens.Save(tok); err != nil {
			return nil, authError("save token", err)
		}
		slog.Info("google sheets authorization successful", "token_file", a.tokens.Path())
		return tok, nil
	case err := <-denied:
		return nil, authError("consent", err)
	case <-waitCtx.Done():
		return nil, authError("consent", waitCtx.Err())
	}
}

// isOAuthClient reports whether data holds OAuth client secrets rather than a key.
func isOAuthClient(data []byte) bool {
	var probe struct {
		Installed json.RawMessage `json:"installed"`
		Web       json.RawMessage `json:"web"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Installed != nil || probe.Web != nil
}
