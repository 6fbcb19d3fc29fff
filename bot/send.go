package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/marathon_analyzer/logger"
)

const (
	// Telegram rejects longer messages; leave room for the <pre> wrapper.
	maxMessageLen = 3900
	// Larger charts go out as documents so Telegram does not downscale them.
	maxSizePhoto = 150000
)

// send paces outgoing messages under the Telegram flood limit.
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := b.api.Send(c)
	return err
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if err := b.send(ctx, msg); err != nil {
		b.log.Error(ctx, "send message", logger.Any("chat_id", chatID), logger.Error(err))
	}
}

// sendPre sends a monospaced table, split on line boundaries when too long.
func (b *Bot) sendPre(ctx context.Context, chatID int64, title, table string) {
	for i, chunk := range splitLines(table, maxMessageLen-len(title)) {
		text := "<pre>\n" + html.EscapeString(chunk) + "\n</pre>"
		if i == 0 && title != "" {
			text = "<b>" + html.EscapeString(title) + "</b>\n" + text
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		if err := b.send(ctx, msg); err != nil {
			b.log.Error(ctx, "send table", logger.Any("chat_id", chatID), logger.Error(err))
			return
		}
	}
}

func splitLines(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	var cur strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if cur.Len() > 0 && cur.Len()+len(line)+1 > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func (b *Bot) sendGraph(ctx context.Context, chatID int64, graph []byte, view, caption string) {
	file := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("%s_%s.png", view, time.Now().Format("20060102-150405")),
		Bytes: graph,
	}

	var msg tgbotapi.Chattable
	if len(graph) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(chatID, file)
		photo.Caption = caption
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(chatID, file)
		doc.Caption = caption
		msg = doc
	}
	if err := b.send(ctx, msg); err != nil {
		b.log.Error(ctx, "send chart", logger.String("view", view), logger.Error(err))
		b.reply(ctx, chatID, fmt.Sprintf("Could not send the %s chart: %v", view, err))
	}
}
