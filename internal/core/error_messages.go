package core

// error_messages.go maps technical errors to plain-language replies.
//
// # Error Codes Reference
//
// Users can quote the code in a reply when asking for help; operators then
// look it up here and check the logs for the technical error.
//
// # Authorization Errors (AUTH001-AUTH099)
//
//	AUTH001 - Credentials file missing
//	          Action: Download credentials.json from Google Cloud Console
//	          Match: source.ErrAuth + fs.ErrNotExist
//
//	AUTH002 - Access not authorized yet (OAuth client without a cached token)
//	          Action: Run `sheetbot auth` on the server
//	          Match: source.ErrNoToken
//
//	AUTH003 - Credentials rejected or expired
//	          Action: Share the sheet with the bot account or send /refresh
//	          Match: source.ErrAuth
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Spreadsheet could not be read
//	         Action: Check GOOGLE_SHEET_ID and the configured range
//	         Match: source.ErrTransport
//
//	SRC002 - Data file missing
//	         Action: Check DATA_CSV_PATH
//	         Match: source.ErrTransport + fs.ErrNotExist
//
//	SRC003 - Data file is not valid CSV
//	         Patterns: "invalid csv"
//
// # Network Errors (NET001-NET099)
//
//	NET001 - Data source unreachable
//	         Patterns: "connection refused", "connection reset", "no such host"
//
//	NET002 - Data source timed out
//	         Match: context.DeadlineExceeded; Patterns: "timeout"
//
//	NET003 - Request cancelled
//	         Match: context.Canceled
//
//	NET004 - Rate limited
//	         Patterns: "rate limit", "quota"
//
// # Voice Errors (VOICE001-VOICE099)
//
//	VOICE001 - No speech recognized
//	           Match: speech.ErrNoSpeech
//
//	VOICE002 - Transcription failed
//	           Match: speech.ErrTranscription
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// # Matching
//
// Error kinds are checked first with errors.Is; an entry matches only when
// the error carries every listed target. Text patterns are then matched
// case-insensitively with strings.Contains. In both tables the first match
// wins, so specific entries come before general ones.

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/zoheirhassoun/Telegram-bot/internal/source"
	"github.com/zoheirhassoun/Telegram-bot/internal/speech"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorKind matches errors that wrap every target.
type errorKind struct {
	targets []error
	msg     UserMessage
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgCredentialsMissing = UserMessage{
		Message: "The Google credentials file is missing",
		Action:  "Download credentials.json from Google Cloud Console and place it next to the bot",
		Code:    "AUTH001",
	}
	msgNotAuthorized = UserMessage{
		Message: "Google Sheets access has not been authorized yet",
		Action:  "Run `sheetbot auth` on the server, then try again",
		Code:    "AUTH002",
	}
	msgAuthRejected = UserMessage{
		Message: "Google Sheets rejected the bot's credentials",
		Action:  "Make sure the sheet is shared with the bot account, or send /refresh to re-authorize",
		Code:    "AUTH003",
	}
	msgSourceUnreadable = UserMessage{
		Message: "The spreadsheet could not be read",
		Action:  "Check GOOGLE_SHEET_ID and the configured range, then try again",
		Code:    "SRC001",
	}
	msgFileMissing = UserMessage{
		Message: "The data file could not be found",
		Action:  "Check DATA_CSV_PATH",
		Code:    "SRC002",
	}
	msgUnreachable = UserMessage{
		Message: "The data source is unreachable",
		Action:  "Please try again in a few moments",
		Code:    "NET001",
	}
	msgTimeout = UserMessage{
		Message: "The data source took too long to respond",
		Action:  "Please try again",
		Code:    "NET002",
	}
)

var errorKinds = []errorKind{
	// =========================================================================
	// Authorization (AUTH001-AUTH003)
	// =========================================================================
	{targets: []error{source.ErrAuth, fs.ErrNotExist}, msg: msgCredentialsMissing},
	{targets: []error{source.ErrNoToken}, msg: msgNotAuthorized},
	{targets: []error{source.ErrAuth}, msg: msgAuthRejected},

	// =========================================================================
	// Timeouts and cancellation (NET002-NET003)
	// =========================================================================
	{targets: []error{context.DeadlineExceeded}, msg: msgTimeout},
	{
		targets: []error{context.Canceled},
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "NET003",
		},
	},

	// =========================================================================
	// Voice (VOICE001-VOICE002)
	// =========================================================================
	{
		targets: []error{speech.ErrNoSpeech},
		msg: UserMessage{
			Message: "No speech was recognized in the voice message",
			Action:  "Speak clearly and try again, or type your question",
			Code:    "VOICE001",
		},
	},
	{
		targets: []error{speech.ErrTranscription},
		msg: UserMessage{
			Message: "The voice message could not be transcribed",
			Action:  "Please type your question instead",
			Code:    "VOICE002",
		},
	},

	// =========================================================================
	// Source (SRC002; SRC001 is the fallback for transport failures)
	// =========================================================================
	{targets: []error{source.ErrTransport, fs.ErrNotExist}, msg: msgFileMissing},
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// They are consulted after errorKinds.
var errorPatterns = []errorPattern{
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The data file is not valid CSV",
			Action:  "Export the sheet again as comma-separated values",
			Code:    "SRC003",
		},
	},
	{pattern: "connection refused", msg: msgUnreachable},
	{pattern: "connection reset", msg: msgUnreachable},
	{pattern: "no such host", msg: msgUnreachable},
	{pattern: "timeout", msg: msgTimeout},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests to the data source",
			Action:  "Please wait a moment before trying again",
			Code:    "NET004",
		},
	},
	{
		pattern: "quota",
		msg: UserMessage{
			Message: "Too many requests to the data source",
			Action:  "Please wait a moment before trying again",
			Code:    "NET004",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact the bot administrator",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(err)
//	// msg.Code == "AUTH003" for a 403 from the Sheets API
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ek := range errorKinds {
		if matchesAll(err, ek.targets) {
			return ek.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if errors.Is(err, source.ErrTransport) {
		return msgSourceUnreadable
	}

	return defaultMessage
}

func matchesAll(err error, targets []error) bool {
	for _, target := range targets {
		if !errors.Is(err, target) {
			return false
		}
	}
	return true
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known entry rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
