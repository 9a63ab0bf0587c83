package attendance

import (
	"fmt"
	"time"
)

// Status is the presence outcome for one roster user.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// Timestamp is a point in time as stored by the document source.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanoseconds"`
}

// Time converts the timestamp to a time.Time in the given location.
func (t Timestamp) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(t.Seconds, int64(t.Nanos)).In(loc)
}

// UserRecord is one entry of the roster collection.
type UserRecord struct {
	Name      string `json:"name"`
	RegNumber string `json:"regNumber"`
}

// Mark is evidence that a user checked in during a session.
type Mark struct {
	RegNumber string     `json:"regNumber"`
	Timestamp *Timestamp `json:"timestamp"`
}

// Report is the merged presence row for a roster user.
type Report struct {
	Name      string     `json:"name"`
	RegNumber string     `json:"regNumber"`
	Status    Status     `json:"status"`
	Timestamp *Timestamp `json:"timestamp"`
}

// SessionKey returns the collection name holding the marks of one session
// instance, e.g. "CS101_05-03-2025".
func SessionKey(sessionName, date string) string {
	return fmt.Sprintf("%s_%s", sessionName, date)
}

// FilterByStatus keeps the reports whose status matches exactly. An empty
// status keeps everything.
func FilterByStatus(reports []Report, status Status) []Report {
	if status == "" {
		return reports
	}
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
