package models

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/desertthunder/transx/internal/shared"
)

// Chapter is one chapter of the uploaded source text.
type Chapter struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// TranslationMap maps a chapter index to its translated text.
//
// It is sparse: only chapters the server reports as done are present.
type TranslationMap map[int]string

// Indices returns the keys in ascending order.
func (m TranslationMap) Indices() []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Clone returns a copy of m. A nil map clones to an empty map.
func (m TranslationMap) Clone() TranslationMap {
	out := make(TranslationMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SessionStatus is the body of GET /status.
type SessionStatus struct {
	Translated map[string]string `json:"translated"`
}

// TranslationMap converts the string-keyed server mapping into a [TranslationMap].
//
// Keys that are not base-10 integers are returned separately so callers can log them.
func (s SessionStatus) TranslationMap() (TranslationMap, []string) {
	out := make(TranslationMap, len(s.Translated))
	var skipped []string
	for k, v := range s.Translated {
		idx, err := strconv.Atoi(k)
		if err != nil {
			skipped = append(skipped, k)
			continue
		}
		out[idx] = v
	}
	sort.Strings(skipped)
	return out, skipped
}

// TranslateRangeRequest is the body of POST /translate-range. Start and End are 1-based and inclusive.
type TranslateRangeRequest struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	APIKeys string `json:"api_keys"`
	Prompt  string `json:"prompt"`
}

// Validate applies the local range check. There is no upper bound: the server validates against its chapter count.
func (r TranslateRangeRequest) Validate() error {
	if r.Start < 1 || r.End < r.Start {
		return fmt.Errorf("%w: start=%d end=%d", shared.ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// StatusSuccess is the only status value that marks a successful range translation.
const StatusSuccess = "success"

// TranslateRangeResponse is the body returned by POST /translate-range.
type TranslateRangeResponse struct {
	Status          string `json:"status"`
	TranslatedCount int    `json:"translated_count"`
}

// OK reports whether the server flagged the request as successful.
func (r TranslateRangeResponse) OK() bool { return r.Status == StatusSuccess }

// ExportRequest is the body of POST /export-epub.
type ExportRequest struct {
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Chapters []Chapter `json:"chapters"`
}

// ExportResponse is the body returned by POST /export-epub.
type ExportResponse struct {
	URL string `json:"url"`
}

// Identity is the identity cookie scoping server-side session state to this client.
type Identity struct {
	Name      string
	Token     string
	Path      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the identity is past its expiry at now.
func (i Identity) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// MaxAge returns the remaining lifetime in whole seconds, as used for the cookie's Max-Age attribute.
func (i Identity) MaxAge(now time.Time) int {
	remaining := i.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// IdentityRepository persists identity cookies by name.
type IdentityRepository interface {
	Get(name string) (*Identity, error) // Get returns shared.ErrIdentityNotFound when no identity exists
	Save(identity *Identity) error      // Save inserts or replaces the identity
}

// ChapterRepository caches the chapter list of the last upload.
type ChapterRepository interface {
	ReplaceAll(chapters []Chapter) error // ReplaceAll swaps the whole cached list
	List() ([]Chapter, error)            // List returns chapters in document order
}
