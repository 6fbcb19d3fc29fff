package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/ingest"
	"github.com/pivolan/marathon_analyzer/logger"
	"github.com/pivolan/marathon_analyzer/report"
)

// handleDocument downloads a results file sent to the chat and makes it the
// current dataset.
func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	linker, ok := b.api.(fileLinker)
	if !ok {
		b.reply(ctx, chatID, "File uploads are not supported here.")
		return
	}
	fileURL, err := linker.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		b.log.Error(ctx, "get file url", logger.Error(err))
		b.reply(ctx, chatID, "Error on upload file, if the file is too big use the web upload.")
		return
	}

	filePath := filepath.Join(b.opts.UploadDir, strconv.FormatInt(chatID, 10), filepath.Base(message.Document.FileName))
	if err := download(ctx, fileURL, filePath); err != nil {
		b.log.Error(ctx, "download document", logger.String("file", message.Document.FileName), logger.Error(err))
		b.reply(ctx, chatID, "Could not download the file.")
		return
	}

	raw, err := ingest.Load(ctx, filePath, b.opts.Ingest)
	if err != nil {
		b.reply(ctx, chatID, "Could not read the file: "+err.Error())
		return
	}
	snap := analysis.NewSnapshot(raw, message.Document.FileName)
	b.store.Swap(snap)
	if b.metrics != nil {
		b.metrics.RecordLoaded(snap.Report.Loaded)
		b.metrics.RecordExclusions(snap.Report.Counts())
	}
	b.log.Info(ctx, "dataset replaced",
		logger.Any("chat_id", chatID),
		logger.String("file", message.Document.FileName),
		logger.Int("kept", snap.Report.Kept),
	)
	b.sendPre(ctx, chatID, "Loaded "+message.Document.FileName,
		report.ExclusionTable(snap.Report.Loaded, snap.Report.Kept, snap.Report.Counts()))
}

func download(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: status %s", resp.Status)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
