package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/domain"
	"telegram-nutrition-bot/internal/domain/ports/adapter"
	"telegram-nutrition-bot/internal/infra/metrics"
)

// MaxMessageUnits is Telegram's limit for one text message, counted in
// UTF-16 code units.
const MaxMessageUnits = 4096

const defaultMIME = "image/jpeg"

var (
	_ adapter.Messenger   = (*Client)(nil)
	_ adapter.FileFetcher = (*Client)(nil)
)

// Client sends replies and downloads photo files through the Bot API.
type Client struct {
	api  BotAPI
	http *http.Client
	log  *zerolog.Logger
}

// NewClient builds a Client. downloadTimeout bounds each file download.
func NewClient(api BotAPI, downloadTimeout time.Duration, log *zerolog.Logger) *Client {
	return NewClientWithHTTP(api, &http.Client{Timeout: downloadTimeout}, log)
}

func NewClientWithHTTP(api BotAPI, hc *http.Client, log *zerolog.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{api: api, http: hc, log: log}
}

// SendMessage sends text as plain text, split into several messages when it
// exceeds the Telegram limit.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if text == "" {
		return fmt.Errorf("%w: empty message text", domain.ErrInvalidArgument)
	}
	for i, chunk := range SplitText(text, MaxMessageUnits) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: sendMessage: %w", domain.ErrTransport, err)
		}
		msg := tgbotapi.NewMessage(chatID, chunk)
		if _, err := c.api.Send(msg); err != nil {
			return fmt.Errorf("%w: sendMessage chunk %d: %w", domain.ErrTransport, i, err)
		}
	}
	return nil
}

// Fetch resolves fileID to a download link and reads at most maxBytes of it.
func (c *Client) Fetch(ctx context.Context, fileID string, maxBytes int64) ([]byte, string, error) {
	link, err := c.api.GetFileDirectLink(fileID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: getFile %s: %w", domain.ErrImageRetrieval, fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: build request: %w", domain.ErrImageRetrieval, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		// the link embeds the bot token
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, "", fmt.Errorf("%w: download %s: %w", domain.ErrImageRetrieval, fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: download %s: status %d", domain.ErrImageRetrieval, fileID, resp.StatusCode)
	}
	if maxBytes > 0 && resp.ContentLength > maxBytes {
		return nil, "", fmt.Errorf("%w: %w: %d bytes", domain.ErrImageRetrieval, domain.ErrImageTooLarge, resp.ContentLength)
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read %s: %w", domain.ErrImageRetrieval, fileID, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("%w: %w: more than %d bytes", domain.ErrImageRetrieval, domain.ErrImageTooLarge, maxBytes)
	}

	metrics.ObserveImageDownload(len(data))
	mime := detectMIME(resp.Header.Get("Content-Type"), data)
	c.log.Debug().Str("file_id", fileID).Int("bytes", len(data)).Str("mime", mime).Msg("photo downloaded")
	return data, mime, nil
}

// detectMIME prefers a concrete image type from the header, then sniffs.
// Telegram serves photos as application/octet-stream.
func detectMIME(header string, data []byte) string {
	if mt, _, _ := strings.Cut(header, ";"); strings.HasPrefix(strings.TrimSpace(mt), "image/") {
		return strings.TrimSpace(mt)
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return defaultMIME
}

// SplitText cuts s into pieces of at most limit UTF-16 code units without
// splitting a rune. A cut prefers the last newline in the second half of the
// window. Joining the pieces gives back s.
func SplitText(s string, limit int) []string {
	if limit <= 0 || UTF16Len(s) <= limit {
		return []string{s}
	}
	var out []string
	for s != "" {
		end, units := 0, 0
		lastNL, nlUnits := -1, 0
		for end < len(s) {
			r, w := utf8.DecodeRuneInString(s[end:])
			n := utf16.RuneLen(r)
			if n < 0 {
				n = 1
			}
			if units+n > limit {
				break
			}
			units += n
			end += w
			if r == '\n' {
				lastNL, nlUnits = end, units
			}
		}
		if end == len(s) {
			out = append(out, s)
			break
		}
		if end == 0 {
			// limit smaller than one rune
			_, end = utf8.DecodeRuneInString(s)
		} else if lastNL > 0 && nlUnits > limit/2 {
			end = lastNL
		}
		out = append(out, s[:end])
		s = s[end:]
	}
	return out
}

// UTF16Len is the length of s as Telegram counts it.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
