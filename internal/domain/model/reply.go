package model

// Reply is a text message addressed to one chat.
type Reply struct {
	ChatID int64
	Text   string
}
