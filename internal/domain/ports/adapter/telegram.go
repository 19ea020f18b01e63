package adapter

import "context"

// Messenger sends text replies to a Telegram chat.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// FileFetcher downloads a Telegram-hosted file. Implementations must refuse
// bodies larger than maxBytes.
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string, maxBytes int64) (data []byte, mimeType string, err error)
}
