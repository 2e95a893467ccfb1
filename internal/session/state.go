package session

import (
	"sync"

	"github.com/desertthunder/transx/internal/models"
)

// State is the chapter list and translation map of one client session. It is safe for concurrent use.
type State struct {
	mu         sync.RWMutex
	chapters   []models.Chapter
	translated models.TranslationMap
}

// NewState returns an empty state.
func NewState() *State {
	return &State{chapters: []models.Chapter{}, translated: models.TranslationMap{}}
}

// SetChapters replaces the chapter list. Translations are left alone even if they no longer line up.
func (s *State) SetChapters(chapters []models.Chapter) {
	cp := make([]models.Chapter, len(chapters))
	copy(cp, chapters)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chapters = cp
}

// ReplaceTranslations replaces the translation map wholesale.
func (s *State) ReplaceTranslations(m models.TranslationMap) {
	cp := m.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.translated = cp
}

// Chapters returns a copy of the chapter list.
func (s *State) Chapters() []models.Chapter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]models.Chapter, len(s.chapters))
	copy(cp, s.chapters)
	return cp
}

// Translations returns a copy of the translation map.
func (s *State) Translations() models.TranslationMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.translated.Clone()
}

// Counts returns the translation map size and the chapter count.
func (s *State) Counts() (done, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.translated), len(s.chapters)
}

// HasTranslations reports whether any chapter is translated.
func (s *State) HasTranslations() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.translated) > 0
}

// Snapshot returns consistent copies of both collections taken under one lock.
func (s *State) Snapshot() ([]models.Chapter, models.TranslationMap) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]models.Chapter, len(s.chapters))
	copy(cp, s.chapters)
	return cp, s.translated.Clone()
}
