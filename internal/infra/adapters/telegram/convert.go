package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-nutrition-bot/internal/domain/model"
)

// ToEvent classifies a raw update. It returns nil for updates the bot does
// not react to (edited messages, callbacks, stickers...).
func ToEvent(u tgbotapi.Update) model.Event {
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID

	switch {
	case len(msg.Photo) > 0:
		photo, _ := model.LargestPhoto(photoRefs(msg.Photo))
		return model.PhotoEvent{
			UpdateID:  u.UpdateID,
			ChatID:    chatID,
			MessageID: msg.MessageID,
			Photo:     photo,
		}
	case isImageDocument(msg.Document):
		// uncompressed photos and screenshots sent as files
		return model.PhotoEvent{
			UpdateID:  u.UpdateID,
			ChatID:    chatID,
			MessageID: msg.MessageID,
			Photo: model.PhotoRef{
				FileID:       msg.Document.FileID,
				FileUniqueID: msg.Document.FileUniqueID,
				FileSize:     msg.Document.FileSize,
			},
		}
	case msg.IsCommand():
		return model.CommandEvent{
			UpdateID: u.UpdateID,
			ChatID:   chatID,
			Name:     msg.Command(),
			Args:     msg.CommandArguments(),
		}
	case msg.Text != "":
		return model.TextEvent{
			UpdateID: u.UpdateID,
			ChatID:   chatID,
			Text:     msg.Text,
		}
	}
	return nil
}

func isImageDocument(d *tgbotapi.Document) bool {
	return d != nil && d.FileID != "" && strings.HasPrefix(strings.ToLower(d.MimeType), "image/")
}

func photoRefs(sizes []tgbotapi.PhotoSize) []model.PhotoRef {
	refs := make([]model.PhotoRef, 0, len(sizes))
	for _, s := range sizes {
		refs = append(refs, model.PhotoRef{
			FileID:       s.FileID,
			FileUniqueID: s.FileUniqueID,
			Width:        s.Width,
			Height:       s.Height,
			FileSize:     s.FileSize,
		})
	}
	return refs
}
