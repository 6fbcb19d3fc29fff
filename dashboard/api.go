package dashboard

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/pivolan/marathon_analyzer/ingest"
	"github.com/pivolan/marathon_analyzer/logger"
	"github.com/pivolan/marathon_analyzer/plot"
	"github.com/pivolan/marathon_analyzer/report"
	uuid "github.com/satori/go.uuid"
)

const maxUploadSize = 256 << 20

var errNoTimes = errors.New("no finishing times in range")

func (s *Server) listViews(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, analysis.Views)
}

// view serves one named view as JSON rows, or CSV with ?format=csv.
func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q, err := s.parseQuery(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	done := s.metrics.ObserveView(name)
	df, err := s.dataset(q).Frame(name, q.params())
	done()
	if errors.Is(err, analysis.ErrUnknownView) {
		s.fail(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
		if err := report.WriteCSV(w, df); err != nil {
			s.log.Error(r.Context(), "csv export failed", logger.String("view", name), logger.Error(err))
		}
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"view":    name,
		"columns": df.Names(),
		"rows":    df.Maps(),
	})
}

type resultsPage struct {
	Page  int             `json:"page"`
	Size  int             `json:"size"`
	Total int             `json:"total"`
	Pages int             `json:"pages"`
	Rows  []models.Result `json:"rows"`
}

func (s *Server) resultsPage(q query) resultsPage {
	rows, total := s.dataset(q).Leaderboard(q.Page, q.Size)
	return resultsPage{
		Page:  q.Page,
		Size:  q.Size,
		Total: total,
		Pages: (total + q.Size - 1) / q.Size,
		Rows:  rows,
	}
}

func (s *Server) results(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	render.JSON(w, r, s.resultsPage(q))
}

type reportResponse struct {
	Source   string                  `json:"source"`
	LoadedAt time.Time               `json:"loaded_at"`
	Loaded   int                     `json:"loaded"`
	Kept     int                     `json:"kept"`
	Excluded []models.ExclusionCount `json:"excluded"`
}

func newReportResponse(snap *analysis.Snapshot) reportResponse {
	return reportResponse{
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt,
		Loaded:   snap.Report.Loaded,
		Kept:     snap.Report.Kept,
		Excluded: snap.Report.Counts(),
	}
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, newReportResponse(s.store.Load()))
}

type summaryResponse struct {
	models.TimeSummary
	Quantiles map[string]float64 `json:"quantiles"`
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	sum, ok := s.dataset(q).TimeSummary()
	if !ok {
		s.fail(w, r, http.StatusNotFound, errNoTimes)
		return
	}
	resp := summaryResponse{TimeSummary: sum, Quantiles: make(map[string]float64, len(sum.Quantiles))}
	for p, v := range sum.Quantiles {
		resp.Quantiles[analysis.LevelName(p)] = v
	}
	render.JSON(w, r, resp)
}

func (s *Server) png(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q, err := s.parseQuery(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	done := s.metrics.ObserveView(name)
	img, err := plot.Render(s.dataset(q), name, q.params())
	done()
	switch {
	case errors.Is(err, analysis.ErrUnknownView), errors.Is(err, plot.ErrNoChart), errors.Is(err, plot.ErrNoData):
		s.fail(w, r, http.StatusNotFound, err)
		return
	case err != nil:
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}

// upload replaces the dataset with a posted results file.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("error uploading file: %w", err))
		return
	}
	defer file.Close()

	id := uuid.NewV4().String()
	dir := filepath.Join(s.opts.UploadDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	path := filepath.Join(dir, filepath.Base(header.Filename))
	if err := saveUpload(path, file); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	raw, err := ingest.Load(r.Context(), path, s.opts.Ingest)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	snap := analysis.NewSnapshot(raw, header.Filename)
	s.store.Swap(snap)
	s.metrics.RecordLoaded(snap.Report.Loaded)
	s.metrics.RecordExclusions(snap.Report.Counts())
	s.log.Info(r.Context(), "dataset replaced",
		logger.String("upload_id", id),
		logger.String("file", header.Filename),
		logger.Int("loaded", snap.Report.Loaded),
		logger.Int("kept", snap.Report.Kept),
	)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newReportResponse(&snap))
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error create saving file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("error saving file: %w", err)
	}
	return dst.Close()
}
