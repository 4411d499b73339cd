package core

import "context"

type contextKey string

const ctxKeyChatID contextKey = "chat_id"

// ContextWithChatID tags ctx with the chat a query came from, for query events.
func ContextWithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, ctxKeyChatID, chatID)
}

// ChatIDFromContext extracts the chat id, or 0 when none is set.
func ChatIDFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(ctxKeyChatID).(int64); ok {
		return v
	}
	return 0
}
