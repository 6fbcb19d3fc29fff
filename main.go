package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/bot"
	"github.com/pivolan/marathon_analyzer/config"
	"github.com/pivolan/marathon_analyzer/dashboard"
	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/pivolan/marathon_analyzer/ingest"
	"github.com/pivolan/marathon_analyzer/logger"
	"github.com/pivolan/marathon_analyzer/metrics"
	"github.com/pivolan/marathon_analyzer/plot"
	"github.com/pivolan/marathon_analyzer/report"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/sync/errgroup"
)

const uploadDir = "upload"

func main() {
	cfg := config.GetConfig()
	if err := logger.Init(); err != nil {
		panic(err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		panic(err)
	}
	log := logger.Get().With(logger.String("run_id", uuid.NewV4().String()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, source, err := load(ctx, cfg)
	if err != nil {
		log.Fatal(ctx, "load results", logger.Error(err))
	}
	snap := analysis.NewSnapshot(raw, source)
	log.Info(ctx, "results loaded",
		logger.String("source", source),
		logger.Int("loaded", snap.Report.Loaded),
		logger.Int("kept", snap.Report.Kept),
		logger.Int("dropped", snap.Report.Dropped()),
	)

	m := metrics.New()
	m.RecordLoaded(snap.Report.Loaded)
	m.RecordExclusions(snap.Report.Counts())

	p := analysis.Params{
		Gender:    analysis.GenderAll,
		TopN:      cfg.TopN,
		Threshold: cfg.PopulationThreshold,
		Page:      1,
		PageSize:  cfg.PageSize,
	}
	ds := snap.Dataset.Between(cfg.YearFrom, cfg.YearTo)

	frames, err := printViews(ds, p)
	if err != nil {
		log.Fatal(ctx, "compute views", logger.Error(err))
	}
	if sum, ok := ds.TimeSummary(); ok {
		fmt.Println(report.TitledTable("summary", analysis.SummaryFrame(sum)))
	}
	fmt.Println(report.ExclusionTable(snap.Report.Loaded, snap.Report.Kept, snap.Report.Counts()))

	if cfg.OutputDir != "" {
		if err := writeOutputs(ctx, log, cfg.OutputDir, ds, p, frames); err != nil {
			log.Fatal(ctx, "write outputs", logger.Error(err))
		}
	}

	if !cfg.Serve {
		return
	}
	if err := serve(ctx, log, cfg, analysis.NewStore(snap), m); err != nil {
		log.Fatal(ctx, "serve", logger.Error(err))
	}
}

func load(ctx context.Context, cfg *config.Config) ([]models.RawResult, string, error) {
	if cfg.UseDatabase() {
		db, err := ingest.OpenDB(cfg.DbDsn)
		if err != nil {
			return nil, "", err
		}
		raw, err := ingest.ReadTable(ctx, db, cfg.DbTable)
		return raw, cfg.DbTable, err
	}
	raw, err := ingest.Load(ctx, cfg.Input, ingestOptions(cfg))
	return raw, filepath.Base(cfg.Input), err
}

func ingestOptions(cfg *config.Config) ingest.Options {
	opts := ingest.Options{Encoding: cfg.Encoding}
	if cfg.Delimiter != "" {
		opts.Delimiter = []rune(cfg.Delimiter)[0]
	}
	return opts
}

// printViews prints every view as a table and returns them for export.
func printViews(ds *analysis.Dataset, p analysis.Params) ([]report.NamedFrame, error) {
	var frames []report.NamedFrame
	for _, view := range analysis.Views {
		vp := p
		if view == analysis.ViewResults {
			// the export carries the whole ranking, not one page
			vp.PageSize = max(ds.Len(), 1)
		}
		df, err := ds.Frame(view, vp)
		if err != nil {
			return nil, err
		}
		if view != analysis.ViewResults {
			fmt.Println(report.TitledTable(view, df))
		}
		frames = append(frames, report.NamedFrame{Name: view, Frame: df})
	}
	return frames, nil
}

func writeOutputs(ctx context.Context, log logger.Logger, dir string, ds *analysis.Dataset, p analysis.Params, frames []report.NamedFrame) error {
	files, err := report.WriteCSVFiles(dir, frames)
	if err != nil {
		return err
	}
	if err := report.WriteXLSX(filepath.Join(dir, "views.xlsx"), frames); err != nil {
		return err
	}
	files = append(files, filepath.Join(dir, "views.xlsx"))

	page, err := os.Create(filepath.Join(dir, "dashboard.html"))
	if err != nil {
		return err
	}
	if err := dashboard.RenderCharts(page, ds, p); err != nil {
		page.Close()
		return err
	}
	if err := page.Close(); err != nil {
		return err
	}
	files = append(files, page.Name())

	for _, view := range plot.Charted {
		img, err := plot.Render(ds, view, p)
		if errors.Is(err, plot.ErrNoData) {
			log.Warn(ctx, "chart skipped", logger.String("view", view), logger.Error(err))
			continue
		}
		if err != nil {
			return fmt.Errorf("chart %s: %w", view, err)
		}
		path := filepath.Join(dir, view+".png")
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return err
		}
		files = append(files, path)
	}
	log.Info(ctx, "outputs written", logger.String("dir", dir), logger.Int("files", len(files)))
	return nil
}

func serve(ctx context.Context, log logger.Logger, cfg *config.Config, store *analysis.Store, m *metrics.Manager) error {
	g, ctx := errgroup.WithContext(ctx)

	srv := dashboard.New(store, dashboard.Options{
		TopN:      cfg.TopN,
		Threshold: cfg.PopulationThreshold,
		PageSize:  cfg.PageSize,
		YearFrom:  cfg.YearFrom,
		YearTo:    cfg.YearTo,
		UploadDir: uploadDir,
		Ingest:    ingestOptions(cfg),
	}, m, log)
	g.Go(func() error {
		return srv.Serve(ctx, cfg.Addr)
	})

	if cfg.TgToken != "" {
		g.Go(func() error {
			return bot.Run(ctx, cfg.TgToken, store, bot.Options{
				TopN:      cfg.TopN,
				Threshold: cfg.PopulationThreshold,
				PageSize:  cfg.PageSize,
				YearFrom:  cfg.YearFrom,
				YearTo:    cfg.YearTo,
				UploadDir: uploadDir,
				Ingest:    ingestOptions(cfg),
			}, m, log)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := removeOldFiles(uploadDir, time.Now().Add(-time.Hour*2)); err != nil && !errors.Is(err, os.ErrNotExist) {
					log.Warn(ctx, "clean uploads", logger.Error(err))
				}
			}
		}
	})

	return g.Wait()
}

// removeOldFiles deletes uploaded files last modified before maxAge.
func removeOldFiles(dirPath string, maxAge time.Time) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(dirPath, entry.Name())
		if entry.IsDir() {
			if err := removeOldFiles(path, maxAge); err != nil {
				return err
			}
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(maxAge) {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}
	return nil
}
