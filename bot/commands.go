package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/logger"
	"github.com/pivolan/marathon_analyzer/plot"
	"github.com/pivolan/marathon_analyzer/report"
)

const welcomeText = `Berlin Marathon runners

Commands:
/yearly - average and finishing times per year
/population [min] - where are most runners from
/age - average time by age
/gender - average time per gender and year
/top [male|female|all] - where are the top 50 runners from
/gap - male and female mean times
/results [page] - fastest results
/summary - spread of finishing times
/years [from to] - limit every view to a year range
/report - records dropped while cleaning

Send a CSV file (gzip, lz4 or zip archives work too) to replace the data.`

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())
	p := b.params()

	switch message.Command() {
	case "start", "help":
		b.reply(ctx, chatID, welcomeText)
	case "yearly":
		b.sendView(ctx, chatID, analysis.ViewYearly, "Average and Finishing times", p)
	case "population":
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				b.reply(ctx, chatID, "Usage: /population [min count]")
				return
			}
			p.Threshold = n
		}
		b.sendView(ctx, chatID, analysis.ViewPopulation, fmt.Sprintf("Where are most runners from? (more than %d)", p.Threshold), p)
	case "age":
		b.sendView(ctx, chatID, analysis.ViewAge, "Average time by age", p)
	case "gender":
		b.sendView(ctx, chatID, analysis.ViewGender, "Average time per gender", p)
	case "top":
		if len(args) > 0 {
			g := strings.ToLower(args[0])
			if g != analysis.GenderMale && g != analysis.GenderFemale && g != analysis.GenderAll {
				b.reply(ctx, chatID, "Usage: /top [male|female|all]")
				return
			}
			p.Gender = g
		}
		b.sendView(ctx, chatID, analysis.ViewTop, fmt.Sprintf("Where are the top %d runners from? (%s)", p.TopN, p.Gender), p)
	case "gap":
		if _, ok := b.dataset(chatID).GenderGap(); !ok {
			b.reply(ctx, chatID, "Not enough male and female results for a comparison.")
			return
		}
		b.sendView(ctx, chatID, analysis.ViewGap, "Mean time by gender", p)
	case "results":
		if len(args) > 0 {
			page, err := strconv.Atoi(args[0])
			if err != nil || page < 1 || page > analysis.MaxPage {
				b.reply(ctx, chatID, "Usage: /results [page]")
				return
			}
			p.Page = page
		}
		_, total := b.dataset(chatID).Leaderboard(p.Page, p.PageSize)
		pages := (total + p.PageSize - 1) / p.PageSize
		b.sendTable(ctx, chatID, analysis.ViewResults, fmt.Sprintf("Fastest results, page %d of %d", p.Page, pages), p)
	case "summary":
		sum, ok := b.dataset(chatID).TimeSummary()
		if !ok {
			b.reply(ctx, chatID, "No finishing times in this year range.")
			return
		}
		b.sendPre(ctx, chatID, "Finishing times, hours", report.Table(analysis.SummaryFrame(sum)))
	case "years":
		b.handleYears(ctx, chatID, args)
	case "report":
		snap := b.store.Load()
		text := report.ExclusionTable(snap.Report.Loaded, snap.Report.Kept, snap.Report.Counts())
		b.sendPre(ctx, chatID, "Source: "+snap.Source, text)
	default:
		b.reply(ctx, chatID, "Unknown command. Use /help to list the commands.")
	}
}

func (b *Bot) handleYears(ctx context.Context, chatID int64, args []string) {
	switch len(args) {
	case 0:
		b.setChatYears(chatID, yearRange{b.opts.YearFrom, b.opts.YearTo})
	case 2:
		from, err1 := strconv.Atoi(args[0])
		to, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil || from < 0 || to < from {
			b.reply(ctx, chatID, "Usage: /years FROM TO, e.g. /years 1990 2000")
			return
		}
		b.setChatYears(chatID, yearRange{from, to})
	default:
		b.reply(ctx, chatID, "Usage: /years FROM TO, e.g. /years 1990 2000")
		return
	}
	r := b.chatYears(chatID)
	b.reply(ctx, chatID, fmt.Sprintf("Year range set to %d-%d, %d results.", r.from, r.to, b.dataset(chatID).Len()))
}

// sendView sends the view as a table followed by its chart.
func (b *Bot) sendView(ctx context.Context, chatID int64, view, title string, p analysis.Params) {
	if !b.sendTable(ctx, chatID, view, title, p) {
		return
	}
	ds := b.dataset(chatID)
	img, err := plot.Render(ds, view, p)
	if err != nil {
		b.log.Debug(ctx, "no chart", logger.String("view", view), logger.Error(err))
		return
	}
	b.sendGraph(ctx, chatID, img, view, title)
}

func (b *Bot) sendTable(ctx context.Context, chatID int64, view, title string, p analysis.Params) bool {
	var done func()
	if b.metrics != nil {
		done = b.metrics.ObserveView(view)
	}
	df, err := b.dataset(chatID).Frame(view, p)
	if done != nil {
		done()
	}
	if err != nil {
		b.reply(ctx, chatID, "Error: "+err.Error())
		return false
	}
	if df.Nrow() == 0 {
		b.reply(ctx, chatID, title+": no data for this selection.")
		return false
	}
	b.sendPre(ctx, chatID, title, report.Table(df))
	return true
}
