package bot

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/pivolan/marathon_analyzer/logger"
	"github.com/pivolan/marathon_analyzer/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.InitWriter(io.Discard); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	fileURL string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) GetFileDirectURL(fileID string) (string, error) {
	return f.fileURL + "/" + fileID, nil
}

func (f *fakeSender) texts() []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) photos() []tgbotapi.PhotoConfig {
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()
	ds := analysis.NewSnapshot([]models.RawResult{
		{Year: "2000", Country: "GER", Gender: "male", Age: "30", Time: "2:10:00"},
		{Year: "2000", Country: "KEN", Gender: "female", Age: "28", Time: "2:30:00"},
		{Year: "2001", Country: "KEN", Gender: "male", Age: "M", Time: "2:05:00"},
		{Year: "2001", Country: "ETH", Gender: "female", Age: "31", Time: "2:25:00"},
		{Year: "2002", Country: "ETH", Gender: "male", Age: "25", Time: "DSQ"},
	}, "sample.csv")
	sender := &fakeSender{}
	b := New(sender, analysis.NewStore(ds), Options{
		TopN:      50,
		Threshold: 0,
		PageSize:  10,
		YearFrom:  1974,
		YearTo:    2023,
		UploadDir: t.TempDir(),
	}, metrics.New(), logger.Get())
	return b, sender
}

func command(chatID int64, text string) tgbotapi.Update {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmdLen = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: &[]tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func TestStartAndPlainText(t *testing.T) {
	b, sender := newTestBot(t)
	b.HandleUpdate(context.Background(), command(1, "/start"))
	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{Text: "hi", Chat: &tgbotapi.Chat{ID: 1}}})
	b.HandleUpdate(context.Background(), tgbotapi.Update{})

	texts := sender.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "/top [male|female|all]")
	assert.Equal(t, texts[0], texts[1])
}

func TestViewCommands(t *testing.T) {
	tests := []struct {
		text      string
		wantTable string
		wantPhoto bool
	}{
		{text: "/yearly", wantTable: "AVERAGE TIMES", wantPhoto: true},
		{text: "/population", wantTable: "COUNTRY", wantPhoto: true},
		{text: "/age", wantTable: "TIME_HOURS", wantPhoto: true},
		{text: "/gender", wantTable: "female", wantPhoto: true},
		{text: "/top female", wantTable: "ETH", wantPhoto: true},
		{text: "/gap", wantTable: "DIFFERENCE_HOURS", wantPhoto: true},
		{text: "/results", wantTable: "2:05:00", wantPhoto: false},
		{text: "/report", wantTable: "time_sentinel", wantPhoto: false},
		{text: "/summary", wantTable: "p97.5", wantPhoto: false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			b, sender := newTestBot(t)
			b.HandleUpdate(context.Background(), command(7, tt.text))

			texts := sender.texts()
			require.NotEmpty(t, texts)
			assert.Contains(t, texts[0], "<pre>")
			assert.Contains(t, texts[0], tt.wantTable)
			assert.Equal(t, tt.wantPhoto, len(sender.photos()) == 1)
		})
	}
}

func TestTopFiltersGender(t *testing.T) {
	b, sender := newTestBot(t)
	b.HandleUpdate(context.Background(), command(7, "/top male"))
	texts := sender.texts()
	require.NotEmpty(t, texts)
	assert.NotContains(t, texts[0], "female")
	assert.Contains(t, texts[0], "KEN")
}

func TestBadArguments(t *testing.T) {
	for _, text := range []string{"/top robots", "/population lots", "/results 0", "/results 922337203685477582", "/years 2000", "/years 2000 1990", "/nope"} {
		t.Run(text, func(t *testing.T) {
			b, sender := newTestBot(t)
			b.HandleUpdate(context.Background(), command(7, text))
			texts := sender.texts()
			require.Len(t, texts, 1)
			assert.NotContains(t, texts[0], "<pre>")
			assert.Empty(t, sender.photos())
		})
	}
}

func TestYearsPerChat(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, command(7, "/years 2001 2001"))
	assert.Contains(t, sender.texts()[0], "2001-2001, 2 results")

	b.HandleUpdate(ctx, command(7, "/yearly"))
	table := sender.texts()[1]
	assert.Contains(t, table, "2001")
	assert.NotContains(t, table, "2000 ")

	assert.Equal(t, 4, b.dataset(8).Len(), "other chats keep the full range")

	b.HandleUpdate(ctx, command(7, "/years"))
	assert.Equal(t, 4, b.dataset(7).Len())
}

func TestSplitLines(t *testing.T) {
	text := strings.Repeat("0123456789\n", 10)
	chunks := splitLines(strings.TrimSuffix(text, "\n"), 25)
	require.Len(t, chunks, 5)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 25)
	}
	assert.Equal(t, []string{"short"}, splitLines("short", 25))
}

func TestDocumentReplacesDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "year,country,gender,age,time\n2015,GER,female,40,3:10:00\n")
	}))
	defer srv.Close()

	b, sender := newTestBot(t)
	sender.fileURL = srv.URL
	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 7},
		Document: &tgbotapi.Document{FileID: "abc", FileName: "new.csv"},
	}})

	texts := sender.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Loaded new.csv")
	assert.Equal(t, "new.csv", b.store.Load().Source)
	assert.Equal(t, 1, b.store.Load().Dataset.Len())
}
