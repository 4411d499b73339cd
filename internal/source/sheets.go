package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var (
	_ Source       = (*Sheets)(nil)
	_ AuthResetter = (*Sheets)(nil)
)

// Sheets reads a range from one spreadsheet through the Sheets v4 API.
// The API client is built lazily and reused until ResetAuth.
type Sheets struct {
	spreadsheetID string
	auth          *Authorizer
	extra         []option.ClientOption

	mu  sync.Mutex
	svc *sheets.Service
}

// NewSheets returns a source for spreadsheetID. auth may be nil when opts
// already carry credentials.
func NewSheets(spreadsheetID string, auth *Authorizer, opts ...option.ClientOption) *Sheets {
	return &Sheets{
		spreadsheetID: spreadsheetID,
		auth:          auth,
		extra:         opts,
	}
}

// Name is used in refresh replies.
func (s *Sheets) Name() string {
	return "Google Sheets"
}

func (s *Sheets) Fetch(ctx context.Context, rangeRef string) ([][]string, error) {
	if rangeRef == "" {
		rangeRef = DefaultRange
	}

	svc, err := s.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Values.Get(s.spreadsheetID, rangeRef).Context(ctx).Do()
	if err != nil {
		return nil, classify("get values", err)
	}

	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				cells[j] = fmt.Sprint(cell)
			}
		}
		values[i] = cells
	}

	slog.Debug("fetched sheet values", "range", rangeRef, "rows", len(values))
	return values, nil
}

// ResetAuth drops the cached client and the stored token.
func (s *Sheets) ResetAuth(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.svc = nil
	if s.auth == nil {
		return nil
	}
	return s.auth.Reset()
}

func (s *Sheets) service(ctx context.Context) (*sheets.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.svc != nil {
		return s.svc, nil
	}

	opts := append([]option.ClientOption{}, s.extra...)
	if s.auth != nil {
		cred, err := s.auth.ClientOption(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cred)
	}

	svc, err := sheets.NewService(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, authError("create sheets client", err)
	}
	s.svc = svc
	return svc, nil
}

// classify sorts an API failure into ErrAuth or ErrTransport.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return authError(op, err)
		}
		return transportError(op, err)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return authError(op, err)
	}

	return transportError(op, err)
}
