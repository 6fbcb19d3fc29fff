package analysis

import (
	"sync/atomic"
	"time"

	"github.com/pivolan/marathon_analyzer/domain/models"
)

// Snapshot is one cleaned load of the data together with its report.
type Snapshot struct {
	Dataset  *Dataset
	Report   Report
	Source   string
	LoadedAt time.Time
}

// NewSnapshot cleans raw records read from source.
func NewSnapshot(raw []models.RawResult, source string) Snapshot {
	ds, report := Clean(raw)
	return Snapshot{Dataset: ds, Report: report, Source: source, LoadedAt: time.Now()}
}

// Store hands the current snapshot to readers. A new upload swaps the whole
// snapshot; readers holding the old one keep a consistent view.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore(s Snapshot) *Store {
	st := &Store{}
	st.Swap(s)
	return st
}

func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

func (s *Store) Swap(snap Snapshot) {
	s.current.Store(&snap)
}
