// Package bot answers Telegram commands with the marathon views.
package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/ingest"
	"github.com/pivolan/marathon_analyzer/logger"
	"github.com/pivolan/marathon_analyzer/metrics"
	"golang.org/x/time/rate"
)

// Telegram allows about 30 messages a second per bot.
const sendRate = 25

// Sender is the part of the Telegram API the bot needs; *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// fileLinker resolves an uploaded document to a download URL.
type fileLinker interface {
	GetFileDirectURL(fileID string) (string, error)
}

type Options struct {
	TopN      int
	Threshold int
	PageSize  int
	YearFrom  int
	YearTo    int
	UploadDir string
	Ingest    ingest.Options
}

type yearRange struct{ from, to int }

type Bot struct {
	api     Sender
	store   *analysis.Store
	opts    Options
	metrics *metrics.Manager
	log     logger.Logger
	limiter *rate.Limiter

	mu    sync.Mutex
	years map[int64]yearRange // per chat, set by /years
}

func New(api Sender, store *analysis.Store, opts Options, m *metrics.Manager, log logger.Logger) *Bot {
	return &Bot{
		api:     api,
		store:   store,
		opts:    opts,
		metrics: m,
		log:     log.Named("bot"),
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendRate),
		years:   make(map[int64]yearRange),
	}
}

// Run polls Telegram for updates until ctx is cancelled.
func Run(ctx context.Context, token string, store *analysis.Store, opts Options, m *metrics.Manager, log logger.Logger) error {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("tg error: %w", err)
	}
	b := New(api, store, opts, m, log)
	b.log.Info(ctx, "authorized", logger.String("account", api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("get updates: %w", err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate dispatches one incoming message.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Error(ctx, "update handler panicked", logger.Any("panic", r), logger.String("text", message.Text))
			b.reply(ctx, message.Chat.ID, "Something went wrong, try again.")
		}
	}()
	switch {
	case message.Document != nil:
		b.handleDocument(ctx, message)
	case message.IsCommand():
		b.handleCommand(ctx, message)
	case message.Text != "":
		b.reply(ctx, message.Chat.ID, welcomeText)
	}
}

func (b *Bot) chatYears(chatID int64) yearRange {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.years[chatID]; ok {
		return r
	}
	return yearRange{b.opts.YearFrom, b.opts.YearTo}
}

func (b *Bot) setChatYears(chatID int64, r yearRange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.years[chatID] = r
}

func (b *Bot) dataset(chatID int64) *analysis.Dataset {
	r := b.chatYears(chatID)
	return b.store.Load().Dataset.Between(r.from, r.to)
}

func (b *Bot) params() analysis.Params {
	return analysis.Params{
		Gender:    analysis.GenderAll,
		TopN:      b.opts.TopN,
		Threshold: b.opts.Threshold,
		Page:      1,
		PageSize:  b.opts.PageSize,
	}
}
