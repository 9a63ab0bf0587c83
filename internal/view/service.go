// Package view coordinates a render request: input checks, merge, filter,
// column policy, rendering and the per-viewer table slot used by print and
// download.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"attendview/internal/attendance"
	"attendview/internal/render"
)

const (
	inputDateLayout = "2006-01-02"
	keyDateLayout   = "02-01-2006"
)

// Merger produces the merged report of one session instance.
type Merger interface {
	Merge(ctx context.Context, sessionName, date string) ([]attendance.Report, error)
}

// Observer is told about finished renders and dropped stale results.
type Observer interface {
	ObserveRender(filter string, rows int)
	ObserveStale()
}

// Request is one render asked for by a viewer.
type Request struct {
	Viewer  string
	Session string
	Date    string // YYYY-MM-DD
	Filter  string // "", "Present" or "Absent"
}

// Result is what the page displays: either HTML or Message is set.
type Result struct {
	Seq     int64  `json:"seq"`
	Applied bool   `json:"applied"`
	Count   int    `json:"count"`
	HTML    string `json:"html,omitempty"`
	Message string `json:"message,omitempty"`
}

// Service runs render requests.
type Service struct {
	merger   Merger
	store    Store
	renderer *render.Renderer
	sessions []string
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires a view service. sessions is the list offered to the page.
func NewService(merger Merger, store Store, renderer *render.Renderer, sessions []string) *Service {
	if renderer == nil {
		renderer = render.New(nil, "")
	}
	return &Service{
		merger:   merger,
		store:    store,
		renderer: renderer,
		sessions: sessions,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// WithObserver attaches a render observer.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// WithLogger replaces the default logger.
func (s *Service) WithLogger(l *slog.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Sessions returns the configured session names.
func (s *Service) Sessions() []string {
	out := make([]string, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// DateKey turns a YYYY-MM-DD date into the DD-MM-YYYY form used in
// attendance collection names.
func DateKey(date string) (string, error) {
	t, err := time.Parse(inputDateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, date)
	}
	return t.Format(keyDateLayout), nil
}

// ParseFilter accepts "" (everything), "Present" or "Absent".
func ParseFilter(filter string) (attendance.Status, error) {
	switch attendance.Status(filter) {
	case "":
		return "", nil
	case attendance.StatusPresent, attendance.StatusAbsent:
		return attendance.Status(filter), nil
	}
	return "", fmt.Errorf("%w: filter %q", ErrInvalidInput, filter)
}

// EmptyMessage is shown instead of a table when nothing matches.
func EmptyMessage(filter attendance.Status) string {
	if filter == "" {
		return "No records found."
	}
	return fmt.Sprintf("No %s students.", strings.ToLower(string(filter)))
}

// Render merges, filters and renders the requested session. The status
// column is hidden when a filter is active. A non-empty table replaces the
// viewer's snapshot unless a newer request already did.
func (s *Service) Render(ctx context.Context, req Request) (Result, error) {
	session := strings.TrimSpace(req.Session)
	date := strings.TrimSpace(req.Date)
	if session == "" || date == "" {
		return Result{}, ErrMissingInput
	}
	key, err := DateKey(date)
	if err != nil {
		return Result{}, err
	}
	filter, err := ParseFilter(req.Filter)
	if err != nil {
		return Result{}, err
	}

	seq, err := s.store.NextSeq(ctx, req.Viewer)
	if err != nil {
		return Result{}, fmt.Errorf("allocate sequence: %w", err)
	}

	all, err := s.merger.Merge(ctx, session, key)
	if err != nil {
		s.logger.Error("attendance retrieval failed",
			slog.String("session", session),
			slog.String("date", key),
			slog.String("error", err.Error()))
		return Result{}, &RetrievalError{Err: err}
	}

	records := attendance.FilterByStatus(all, filter)
	res := Result{Seq: seq, Count: len(records)}
	if s.observer != nil {
		s.observer.ObserveRender(string(filter), len(records))
	}
	if len(records) == 0 {
		res.Message = EmptyMessage(filter)
		return res, nil
	}

	showStatus := filter == ""
	res.HTML = s.renderer.Table(records, showStatus, true)
	applied, err := s.store.Apply(ctx, req.Viewer, Snapshot{
		Seq:        seq,
		Session:    session,
		Date:       key,
		Filter:     string(filter),
		Table:      res.HTML,
		Records:    records,
		RenderedAt: s.now().UTC(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("store snapshot: %w", err)
	}
	res.Applied = applied
	if !applied {
		if s.observer != nil {
			s.observer.ObserveStale()
		}
		s.logger.Info("stale render dropped", slog.String("viewer", req.Viewer), slog.Int64("seq", seq))
	}
	return res, nil
}

// Print returns a standalone page holding the viewer's last table that opens
// the print dialog.
func (s *Service) Print(ctx context.Context, viewer string) (string, error) {
	snap, err := s.store.Last(ctx, viewer)
	if err != nil {
		return "", err
	}
	return render.Document(snap.Table, true), nil
}

// Download returns the viewer's last table markup, served as attendance.html.
func (s *Service) Download(ctx context.Context, viewer string) ([]byte, error) {
	snap, err := s.store.Last(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return []byte(snap.Table), nil
}

// ExportCSV encodes the records behind the viewer's last table.
func (s *Service) ExportCSV(ctx context.Context, viewer string) ([]byte, error) {
	snap, err := s.store.Last(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return s.renderer.CSV(snap.Records)
}

// ExportXLSX encodes the records behind the viewer's last table as a
// workbook.
func (s *Service) ExportXLSX(ctx context.Context, viewer string) ([]byte, error) {
	snap, err := s.store.Last(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return s.renderer.XLSX(snap.Records)
}

// IsInputError reports whether err is an input-validation failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingInput) || errors.Is(err, ErrInvalidInput)
}
