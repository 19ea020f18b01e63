package logging

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// BotLogger routes telegram-bot-api's internal logging into zerolog.
// It satisfies tgbotapi.BotLogger.
type BotLogger struct {
	log *zerolog.Logger
}

func NewBotLogger(log *zerolog.Logger) *BotLogger {
	return &BotLogger{log: log}
}

func (b *BotLogger) Println(v ...interface{}) {
	b.emit(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (b *BotLogger) Printf(format string, v ...interface{}) {
	b.emit(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

func (b *BotLogger) emit(msg string) {
	// tgbotapi only logs on failures and in debug mode
	b.log.Warn().Str("component", "tgbotapi").Msg(msg)
}
