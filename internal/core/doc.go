// Package core answers chat queries against a spreadsheet-backed dataset.
//
// It holds no transport or storage code. The bot, the CLI and tests all go
// through the same [Session].
//
// # Session
//
// A [Session] is created once at startup with a [source.Source] and injected
// into whatever receives user input:
//
//	session := core.NewSession(src, "Sheet1!A:Z",
//	    core.WithRecorder(auditStore),
//	)
//	reply := session.Answer(ctx, "widgets")
//
// Every call fetches the range again and builds a fresh dataset, so edits to
// the sheet are visible on the next message. Nothing is cached between calls.
//
// # Errors
//
// Session methods never return errors. Fetch failures are mapped by
// [MapError] to a plain-language message with a support code and returned as
// the reply. See error_messages.go for the code reference.
//
// # Query events
//
// A [Recorder] gets a [QueryEvent] after every operation. Recorder failures
// are logged and do not affect the reply.
package core
