package attendance

import (
	"testing"
	"time"
)

func TestDecodeTimestamp(t *testing.T) {
	when := time.Date(2025, 3, 5, 9, 30, 0, 500, time.UTC)
	tests := []struct {
		name string
		in   any
		want *Timestamp
	}{
		{name: "nil", in: nil, want: nil},
		{name: "time", in: when, want: &Timestamp{Seconds: when.Unix(), Nanos: 500}},
		{name: "zero time", in: time.Time{}, want: nil},
		{name: "seconds map", in: map[string]any{"seconds": 1000, "nanoseconds": 7}, want: &Timestamp{Seconds: 1000, Nanos: 7}},
		{name: "rest map", in: map[string]any{"_seconds": float64(1000)}, want: &Timestamp{Seconds: 1000}},
		{name: "map without seconds", in: map[string]any{"foo": 1}, want: nil},
		{name: "float seconds", in: float64(1234), want: &Timestamp{Seconds: 1234}},
		{name: "rfc3339", in: "2025-03-05T09:30:00Z", want: &Timestamp{Seconds: time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC).Unix()}},
		{name: "pocketbase", in: "2025-03-05 09:30:00.000Z", want: &Timestamp{Seconds: time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC).Unix()}},
		{name: "garbage", in: "yesterday", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeTimestamp(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("DecodeTimestamp(%v) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("DecodeTimestamp(%v) = %+v, want %+v", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestDecodeUsers_MissingFields(t *testing.T) {
	users := DecodeUsers([]map[string]any{
		{"name": "Alice"},
		{"regNumber": 42},
		{},
	})
	if len(users) != 3 {
		t.Fatalf("len = %d, want 3", len(users))
	}
	if users[0].RegNumber != "" || users[1].RegNumber != "42" || users[2].Name != "" {
		t.Errorf("users = %+v", users)
	}
}

func TestDecodeMarks_SkipsMissingRegNumber(t *testing.T) {
	marks := DecodeMarks([]map[string]any{
		{"regNumber": "R1", "timestamp": map[string]any{"seconds": 1}},
		{"timestamp": map[string]any{"seconds": 2}},
	})
	if len(marks) != 1 || marks[0].RegNumber != "R1" {
		t.Errorf("marks = %+v", marks)
	}
}
