package models

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/transx/internal/shared"
)

func TestSessionStatusTranslationMap(t *testing.T) {
	status := SessionStatus{Translated: map[string]string{
		"0":   "một",
		"12":  "mười hai",
		"abc": "bỏ qua",
	}}

	got, skipped := status.TranslationMap()

	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0] != "một" || got[12] != "mười hai" {
		t.Errorf("unexpected mapping %v", got)
	}
	if len(skipped) != 1 || skipped[0] != "abc" {
		t.Errorf("expected abc to be skipped, got %v", skipped)
	}

	empty, _ := SessionStatus{}.TranslationMap()
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil map, got %v", empty)
	}
}

func TestTranslateRangeRequestValidate(t *testing.T) {
	tc := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{name: "start below one", start: 0, end: 5, wantErr: true},
		{name: "end before start", start: 3, end: 2, wantErr: true},
		{name: "single chapter", start: 1, end: 1},
		{name: "beyond chapter count is allowed", start: 5, end: 500},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := TranslateRangeRequest{Start: tt.start, End: tt.end}.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrInvalidRange) {
				t.Errorf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestTranslationMapHelpers(t *testing.T) {
	m := TranslationMap{3: "c", 1: "a", 2: "b"}

	idx := m.Indices()
	if len(idx) != 3 || idx[0] != 1 || idx[2] != 3 {
		t.Errorf("Indices() = %v", idx)
	}

	c := m.Clone()
	c[9] = "z"
	if _, ok := m[9]; ok {
		t.Error("Clone() should not share storage")
	}

	var nilMap TranslationMap
	if nilMap.Clone() == nil {
		t.Error("Clone() of nil should be empty, not nil")
	}
}

func TestIdentity(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id := Identity{Name: "user_id", Token: "user_1", ExpiresAt: now.Add(time.Hour)}

	if id.Expired(now) {
		t.Error("identity should not be expired before ExpiresAt")
	}
	if !id.Expired(now.Add(time.Hour)) {
		t.Error("identity should be expired at ExpiresAt")
	}
	if got := id.MaxAge(now); got != 3600 {
		t.Errorf("MaxAge() = %d, want 3600", got)
	}
	if got := id.MaxAge(now.Add(2 * time.Hour)); got != 0 {
		t.Errorf("MaxAge() after expiry = %d, want 0", got)
	}
}

func TestTranslateRangeResponseOK(t *testing.T) {
	if !(TranslateRangeResponse{Status: "success"}).OK() {
		t.Error("success status should be OK")
	}
	if (TranslateRangeResponse{Status: "error"}).OK() {
		t.Error("non-success status should not be OK")
	}
}
