package attendance

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Field names used by both collections.
const (
	FieldName      = "name"
	FieldRegNumber = "regNumber"
	FieldTimestamp = "timestamp"
)

// pocketbaseLayout is the datetime format PocketBase returns in JSON.
const pocketbaseLayout = "2006-01-02 15:04:05.000Z"

// DecodeUsers maps roster documents to user records. Missing fields decode
// to empty strings; retrieval order is kept.
func DecodeUsers(docs []map[string]any) []UserRecord {
	users := make([]UserRecord, 0, len(docs))
	for _, d := range docs {
		users = append(users, UserRecord{
			Name:      fieldString(d, FieldName),
			RegNumber: fieldString(d, FieldRegNumber),
		})
	}
	return users
}

// DecodeMarks maps attendance documents to marks. Documents without a
// regNumber cannot match a roster entry and are skipped.
func DecodeMarks(docs []map[string]any) []Mark {
	marks := make([]Mark, 0, len(docs))
	for _, d := range docs {
		reg := fieldString(d, FieldRegNumber)
		if reg == "" {
			continue
		}
		marks = append(marks, Mark{RegNumber: reg, Timestamp: DecodeTimestamp(d[FieldTimestamp])})
	}
	return marks
}

func fieldString(d map[string]any, key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// DecodeTimestamp accepts the shapes document stores use for instants:
// time.Time, {seconds, nanoseconds} maps (also the "_seconds" REST form),
// numeric seconds and RFC3339 or PocketBase datetime strings. Anything else,
// and the zero time, yields nil.
func DecodeTimestamp(v any) *Timestamp {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return fromTime(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return fromTime(*t)
	case Timestamp:
		return &t
	case *Timestamp:
		return t
	case map[string]any:
		return fromMap(t)
	case string:
		return fromString(t)
	default:
		secs, err := cast.ToInt64E(v)
		if err != nil || secs == 0 {
			return nil
		}
		return &Timestamp{Seconds: secs}
	}
}

func fromTime(t time.Time) *Timestamp {
	if t.IsZero() {
		return nil
	}
	return &Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

func fromMap(m map[string]any) *Timestamp {
	raw, ok := firstKey(m, "seconds", "_seconds")
	if !ok {
		return nil
	}
	secs, err := cast.ToInt64E(raw)
	if err != nil {
		return nil
	}
	ts := &Timestamp{Seconds: secs}
	if rawNanos, ok := firstKey(m, "nanoseconds", "_nanoseconds", "nanos"); ok {
		ts.Nanos = cast.ToInt32(rawNanos)
	}
	return ts
}

func fromString(s string) *Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, pocketbaseLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return fromTime(t)
		}
	}
	if secs, err := cast.ToInt64E(s); err == nil && secs != 0 {
		return &Timestamp{Seconds: secs}
	}
	return nil
}

func firstKey(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
