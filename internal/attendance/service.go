package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultRosterCollection is the collection holding every registered user.
const DefaultRosterCollection = "users"

// ErrDuplicateMark is returned under RejectDuplicates when a session holds
// more than one mark for the same regNumber.
var ErrDuplicateMark = errors.New("duplicate attendance mark")

// DuplicatePolicy decides which mark survives when a regNumber appears more
// than once in a session collection.
type DuplicatePolicy int

const (
	// LastWins keeps the last mark in retrieval order.
	LastWins DuplicatePolicy = iota
	// FirstWins keeps the first mark in retrieval order.
	FirstWins
	// RejectDuplicates fails the merge.
	RejectDuplicates
)

// ParseDuplicatePolicy maps a config value to a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last", "last-wins", "last_wins":
		return LastWins, nil
	case "first", "first-wins", "first_wins":
		return FirstWins, nil
	case "reject", "error":
		return RejectDuplicates, nil
	}
	return LastWins, fmt.Errorf("unknown duplicate mark policy %q", s)
}

func (p DuplicatePolicy) String() string {
	switch p {
	case FirstWins:
		return "first-wins"
	case RejectDuplicates:
		return "reject"
	default:
		return "last-wins"
	}
}

// Source lists every document of a named collection as field maps.
type Source interface {
	ListDocuments(ctx context.Context, collection string) ([]map[string]any, error)
}

// Observer receives the outcome of every merge.
type Observer interface {
	ObserveMerge(d time.Duration, rows int, err error)
}

// Service merges session marks with the roster.
type Service struct {
	source   Source
	roster   string
	policy   DuplicatePolicy
	observer Observer
	logger   *slog.Logger
}

// NewService creates a service reading from source.
func NewService(source Source, rosterCollection string, policy DuplicatePolicy) *Service {
	if rosterCollection == "" {
		rosterCollection = DefaultRosterCollection
	}
	return &Service{source: source, roster: rosterCollection, policy: policy, logger: slog.Default()}
}

// WithObserver attaches a merge observer.
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

// Merge fetches the marks of (sessionName, date) and the roster in parallel
// and returns one report per roster user, in roster order. If either fetch
// fails no partial result is returned.
func (s *Service) Merge(ctx context.Context, sessionName, date string) ([]Report, error) {
	start := time.Now()
	reports, err := s.merge(ctx, sessionName, date)
	if s.observer != nil {
		s.observer.ObserveMerge(time.Since(start), len(reports), err)
	}
	return reports, err
}

func (s *Service) merge(ctx context.Context, sessionName, date string) ([]Report, error) {
	key := SessionKey(sessionName, date)

	var markDocs, userDocs []map[string]any
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := s.source.ListDocuments(gctx, key)
		if err != nil {
			return fmt.Errorf("list %s: %w", key, err)
		}
		markDocs = docs
		return nil
	})
	g.Go(func() error {
		docs, err := s.source.ListDocuments(gctx, s.roster)
		if err != nil {
			return fmt.Errorf("list %s: %w", s.roster, err)
		}
		userDocs = docs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reports, err := Join(DecodeUsers(userDocs), DecodeMarks(markDocs), s.policy)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", key, err)
	}
	s.logger.Debug("attendance merged",
		slog.String("collection", key),
		slog.Int("marks", len(markDocs)),
		slog.Int("roster", len(userDocs)))
	return reports, nil
}

// Join builds the report for roster from marks. Marks whose regNumber is not
// on the roster are dropped, so len(result) == len(roster).
func Join(roster []UserRecord, marks []Mark, policy DuplicatePolicy) ([]Report, error) {
	present := make(map[string]*Timestamp, len(marks))
	for _, m := range marks {
		if _, seen := present[m.RegNumber]; seen {
			switch policy {
			case FirstWins:
				continue
			case RejectDuplicates:
				return nil, fmt.Errorf("%w: %s", ErrDuplicateMark, m.RegNumber)
			}
		}
		present[m.RegNumber] = m.Timestamp
	}

	reports := make([]Report, 0, len(roster))
	for _, u := range roster {
		r := Report{Name: u.Name, RegNumber: u.RegNumber, Status: StatusAbsent}
		if ts, ok := present[u.RegNumber]; ok && u.RegNumber != "" {
			r.Status = StatusPresent
			r.Timestamp = ts
		}
		reports = append(reports, r)
	}
	return reports, nil
}
