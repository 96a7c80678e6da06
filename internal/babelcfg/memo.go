package babelcfg

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ktiyab/babel-tool-sub001/internal/idgen"
)

// promotionThreshold is how many distinct sessions must observe the
// same candidate instruction before it's worth prompting the user to
// promote it to a memo.
const promotionThreshold = 2

// Memo is a confirmed, mutable user preference — an operational
// shortcut, not an architectural decision, so it needs no Rationale
// and never enters the event log (spec.md Design Notes §9(4)).
// Init memos surface automatically at session start.
type Memo struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	Contexts []string  `json:"contexts"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
	Source   string    `json:"source"` // "manual" | "promoted"
	UseCount int       `json:"use_count"`
	Init     bool      `json:"init"`
}

// Candidate is an AI-detected instruction pattern awaiting confirmation
// before it's promoted to a Memo.
type Candidate struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Contexts  []string  `json:"contexts"`
	Sessions  []string  `json:"sessions"`
	FirstSeen time.Time `json:"first_seen"`
	Status    string    `json:"status"` // "pending" | "dismissed"
}

// Count reports how many distinct sessions have observed this candidate.
func (c Candidate) Count() int { return len(c.Sessions) }

type memoData struct {
	Memos      []Memo      `json:"memos"`
	Candidates []Candidate `json:"candidates"`
}

// MemoStore persists Memos/Candidates to .babel/memos.json (spec.md §6
// layout). It is mutable JSON, never event-sourced, never replayed.
type MemoStore struct {
	path      string
	sessionID string

	mu   sync.Mutex
	data memoData
}

// NewMemoStore opens (or lazily creates) the store at path. sessionID
// distinguishes repeated candidate sightings across runs; an empty
// value derives one from the current time.
func NewMemoStore(path, sessionID string) (*MemoStore, error) {
	if sessionID == "" {
		sessionID = idgen.ContentHash(8, time.Now(), 0, "session")
	}
	s := &MemoStore{path: path, sessionID: sessionID}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MemoStore) load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.data = memoData{Memos: []Memo{}, Candidates: []Candidate{}}
		return s.saveLocked()
	}
	if err != nil {
		return err
	}
	var d memoData
	if err := json.Unmarshal(raw, &d); err != nil {
		s.data = memoData{Memos: []Memo{}, Candidates: []Candidate{}}
		return nil
	}
	if d.Memos == nil {
		d.Memos = []Memo{}
	}
	if d.Candidates == nil {
		d.Candidates = []Candidate{}
	}
	s.data = d
	return nil
}

func (s *MemoStore) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// Add creates a new memo.
func (s *MemoStore) Add(content string, contexts []string, init bool) (Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	memo := Memo{
		ID:       idgen.PrefixedHash("m", 8, now, 0, content),
		Content:  content,
		Contexts: contexts,
		Created:  now,
		Updated:  now,
		Source:   "manual",
		Init:     init,
	}
	s.data.Memos = append(s.data.Memos, memo)
	return memo, s.saveLocked()
}

// Remove deletes every memo whose ID has the given prefix. Reports
// whether anything was removed.
func (s *MemoStore) Remove(idPrefix string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.data.Memos[:0:0]
	removed := false
	for _, m := range s.data.Memos {
		if strings.HasPrefix(m.ID, idPrefix) {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	if !removed {
		return false, nil
	}
	s.data.Memos = kept
	return true, s.saveLocked()
}

func (s *MemoStore) findMemo(idPrefix string) int {
	for i, m := range s.data.Memos {
		if strings.HasPrefix(m.ID, idPrefix) {
			return i
		}
	}
	return -1
}

// Update edits an existing memo's content and/or contexts (nil leaves
// the field unchanged). Returns the updated memo, or false if not found.
func (s *MemoStore) Update(idPrefix string, content *string, contexts []string) (Memo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findMemo(idPrefix)
	if i < 0 {
		return Memo{}, false, nil
	}
	if content != nil {
		s.data.Memos[i].Content = *content
	}
	if contexts != nil {
		s.data.Memos[i].Contexts = contexts
	}
	s.data.Memos[i].Updated = time.Now().UTC()
	return s.data.Memos[i], true, s.saveLocked()
}

// Get looks up a memo by ID or ID prefix.
func (s *MemoStore) Get(idPrefix string) (Memo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findMemo(idPrefix)
	if i < 0 {
		return Memo{}, false
	}
	return s.data.Memos[i], true
}

// List returns every memo.
func (s *MemoStore) List() []Memo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Memo, len(s.data.Memos))
	copy(out, s.data.Memos)
	return out
}

// ListInit returns only foundational memos (spec.md's session-start
// surfacing set).
func (s *MemoStore) ListInit() []Memo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Memo
	for _, m := range s.data.Memos {
		if m.Init {
			out = append(out, m)
		}
	}
	return out
}

// SetInit flips a memo's Init flag.
func (s *MemoStore) SetInit(idPrefix string, isInit bool) (Memo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findMemo(idPrefix)
	if i < 0 {
		return Memo{}, false, nil
	}
	s.data.Memos[i].Init = isInit
	s.data.Memos[i].Updated = time.Now().UTC()
	return s.data.Memos[i], true, s.saveLocked()
}

// GetRelevant returns memos whose Contexts intersect the given
// contexts, plus every global (context-less) memo. An empty contexts
// list returns nil, global memos included.
func (s *MemoStore) GetRelevant(contexts []string) []Memo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(contexts) == 0 {
		return nil
	}
	want := map[string]bool{}
	for _, c := range contexts {
		want[strings.ToLower(c)] = true
	}

	var out []Memo
	for _, m := range s.data.Memos {
		if len(m.Contexts) == 0 {
			out = append(out, m)
			continue
		}
		for _, c := range m.Contexts {
			if want[strings.ToLower(c)] {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// IncrementUse bumps a memo's use count, reporting whether it existed.
func (s *MemoStore) IncrementUse(idPrefix string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findMemo(idPrefix)
	if i < 0 {
		return false, nil
	}
	s.data.Memos[i].UseCount++
	return true, s.saveLocked()
}

// AddCandidate registers (or bumps) an AI-detected instruction pattern.
// Matching is case-insensitive, trimmed-whitespace content equality.
func (s *MemoStore) AddCandidate(content string, contexts []string) (Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := strings.ToLower(strings.TrimSpace(content))
	for i, c := range s.data.Candidates {
		if strings.ToLower(strings.TrimSpace(c.Content)) != normalized {
			continue
		}
		if !containsString(c.Sessions, s.sessionID) {
			s.data.Candidates[i].Sessions = append(s.data.Candidates[i].Sessions, s.sessionID)
		}
		s.data.Candidates[i].Contexts = unionStrings(s.data.Candidates[i].Contexts, contexts)
		return s.data.Candidates[i], s.saveLocked()
	}

	now := time.Now().UTC()
	candidate := Candidate{
		ID:        idgen.PrefixedHash("c", 8, now, 0, content),
		Content:   content,
		Contexts:  contexts,
		Sessions:  []string{s.sessionID},
		FirstSeen: now,
		Status:    "pending",
	}
	s.data.Candidates = append(s.data.Candidates, candidate)
	return candidate, s.saveLocked()
}

// ShouldSuggestPromotion reports whether a candidate has crossed the
// promotion threshold.
func ShouldSuggestPromotion(c Candidate) bool { return c.Count() >= promotionThreshold }

// Promote converts a candidate into a memo and removes the candidate.
// contextsOverride, if non-nil, replaces the candidate's contexts.
func (s *MemoStore) Promote(idPrefix string, contextsOverride []string) (Memo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.data.Candidates {
		if !strings.HasPrefix(c.ID, idPrefix) {
			continue
		}
		contexts := c.Contexts
		if contextsOverride != nil {
			contexts = contextsOverride
		}
		now := time.Now().UTC()
		memo := Memo{
			ID:       idgen.PrefixedHash("m", 8, now, 0, c.Content),
			Content:  c.Content,
			Contexts: contexts,
			Created:  now,
			Updated:  now,
			Source:   "promoted",
		}
		s.data.Memos = append(s.data.Memos, memo)
		s.data.Candidates = append(s.data.Candidates[:i], s.data.Candidates[i+1:]...)
		return memo, true, s.saveLocked()
	}
	return Memo{}, false, nil
}

// Dismiss marks a candidate as dismissed so it stops resurfacing.
func (s *MemoStore) Dismiss(idPrefix string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.data.Candidates {
		if strings.HasPrefix(c.ID, idPrefix) {
			s.data.Candidates[i].Status = "dismissed"
			return true, s.saveLocked()
		}
	}
	return false, nil
}

// ListCandidates returns pending candidates, plus dismissed ones when
// includeDismissed is true.
func (s *MemoStore) ListCandidates(includeDismissed bool) []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Candidate
	for _, c := range s.data.Candidates {
		if includeDismissed || c.Status != "dismissed" {
			out = append(out, c)
		}
	}
	return out
}

// PendingSuggestions returns candidates that have crossed the
// promotion threshold and are still pending.
func (s *MemoStore) PendingSuggestions() []Candidate {
	var out []Candidate
	for _, c := range s.ListCandidates(false) {
		if ShouldSuggestPromotion(c) {
			out = append(out, c)
		}
	}
	return out
}

func containsString(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

func unionStrings(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
