package repository

import (
	"testing"
	"time"
)

func TestNormalizeValueNumerics(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
	}{
		{int(5), 5},
		{int8(5), 5},
		{int16(5), 5},
		{int32(5), 5},
		{int64(5), 5},
		{uint8(5), 5},
		{uint16(5), 5},
		{uint32(5), 5},
		{uint64(5), 5},
		{float32(2.5), 2.5},
		{float64(2.5), 2.5},
	}
	for _, c := range cases {
		got, ok := normalizeValue(c.in).(float64)
		if !ok || got != c.want {
			t.Fatalf("normalizeValue(%T %v) = %v, want %v", c.in, c.in, got, c.want)
		}
	}
}

func TestNormalizeValueTime(t *testing.T) {
	ts := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	got, ok := normalizeValue(ts).(string)
	if !ok || got != "2026-03-10T15:30:00Z" {
		t.Fatalf("unexpected time: %v", got)
	}

	got2, ok := normalizeValue(&ts).(string)
	if !ok || got2 != got {
		t.Fatalf("pointer time should match: %v", got2)
	}

	var nilTime *time.Time
	if normalizeValue(nilTime) != nil {
		t.Fatalf("nil time pointer should be nil")
	}
}

func TestNormalizeValueBytesAndNil(t *testing.T) {
	if got := normalizeValue([]byte("AAPL")); got != "AAPL" {
		t.Fatalf("bytes should become string, got %v", got)
	}
	if got := normalizeValue(nil); got != nil {
		t.Fatalf("nil stays nil, got %v", got)
	}
	if got := normalizeValue("plain"); got != "plain" {
		t.Fatalf("strings pass through, got %v", got)
	}
}
