package historystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bookscout/lib/bookapi"
	"bookscout/lib/historystore/db"
	"bookscout/lib/searchform"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/historystore")

// MaxEntries caps the recency list; the oldest entry is evicted silently
// once the cap is exceeded.
const MaxEntries = 10

// the named storage slots; history and draft never share a key so the
// autosave tick and a submission cannot race on the same slot
const (
	historySlot     = "searchHistory"
	draftSlot       = "searchFormDraft"
	lastResultsSlot = "lastResults"
)

// Entry is one remembered query. The id is the creation timestamp in unix
// milliseconds; a collision under rapid successive submissions is
// tolerated rather than deduplicated.
type Entry struct {
	Id int64 `json:"id"`
	bookapi.SearchQuery
	DisplayText string `json:"displayText"`
}

type Store struct {
	db      *sql.DB
	qry     *db.Queries
	entries []Entry
}

// NewStore loads the persisted history into memory. The database should
// have been opened with db.Schema applied.
func NewStore(ctx context.Context, database *sql.DB) (*Store, error) {
	s := &Store{
		db:  database,
		qry: db.New(database),
	}

	raw, err := s.qry.GetSlot(ctx, historySlot)
	if err == sql.ErrNoRows {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal([]byte(raw), &s.entries)
	if err != nil {
		return nil, fmt.Errorf("failed to parse persisted history: %w", err)
	}
	if len(s.entries) > MaxEntries {
		s.entries = s.entries[:MaxEntries]
	}
	return s, nil
}

// DisplayText derives the human-readable summary of a query: whichever of
// title/author/ISBN are present, in that order, joined with " | ".
func DisplayText(q bookapi.SearchQuery) string {
	var parts []string
	if q.BookName != "" {
		parts = append(parts, fmt.Sprintf("Title: %q", q.BookName))
	}
	if q.Author != "" {
		parts = append(parts, fmt.Sprintf("Author: %q", q.Author))
	}
	if q.Isbn != "" {
		parts = append(parts, fmt.Sprintf("ISBN: %s", q.Isbn))
	}
	return strings.Join(parts, " | ")
}

// Record prepends a validated query to the history, truncates to
// MaxEntries and persists, all before returning.
func (s *Store) Record(ctx context.Context, q bookapi.SearchQuery, now time.Time) (Entry, error) {
	ctx, span := tracer.Start(ctx, "store:Record")
	defer span.End()

	entry := Entry{
		Id:          now.UnixMilli(),
		SearchQuery: q,
		DisplayText: DisplayText(q),
	}

	entries := append([]Entry{entry}, s.entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	err := s.persist(ctx, entries)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist history")
		return Entry{}, err
	}
	s.entries = entries
	return entry, nil
}

func (s *Store) persist(ctx context.Context, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.qry.SetSlot(ctx, db.SetSlotParams{
		Key:   historySlot,
		Value: string(raw),
	})
}

// List returns the entries most-recent-first.
func (s *Store) List() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Replay returns the form fields of the entry at the given position so
// the caller can repopulate the form. It never submits anything.
func (s *Store) Replay(index int) (searchform.State, error) {
	if index < 0 || index >= len(s.entries) {
		return searchform.State{}, fmt.Errorf("no history entry at position %d", index)
	}
	e := s.entries[index]
	return searchform.State{
		BookName: e.BookName,
		Isbn:     e.Isbn,
		Author:   e.Author,
		Site:     e.Site,
	}, nil
}

// Clear empties the history. Without confirmation nothing changes and
// false is returned.
func (s *Store) Clear(ctx context.Context, confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}

	ctx, span := tracer.Start(ctx, "store:Clear")
	defer span.End()

	err := s.qry.DeleteSlot(ctx, historySlot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete persisted history")
		return false, err
	}
	s.entries = nil
	return true, nil
}

// Match filters entries whose display text or site matches the term,
// either as a case-insensitive substring or within a small edit distance
// of one of its words.
func Match(entries []Entry, term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries
	}

	var out []Entry
	for _, e := range entries {
		haystack := strings.ToLower(e.DisplayText + " " + e.Site)
		if strings.Contains(haystack, term) {
			out = append(out, e)
			continue
		}
		for _, word := range strings.Fields(haystack) {
			word = strings.Trim(word, `"|:`)
			if matchr.DamerauLevenshtein(term, word) <= 2 {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// SaveDraft overwrites the single draft slot with the current raw field
// values, valid or not.
func (s *Store) SaveDraft(ctx context.Context, state searchform.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.qry.SetSlot(ctx, db.SetSlotParams{
		Key:   draftSlot,
		Value: string(raw),
	})
}

// LoadDraft reads the saved draft, reporting whether one existed.
func (s *Store) LoadDraft(ctx context.Context) (searchform.State, bool, error) {
	raw, err := s.qry.GetSlot(ctx, draftSlot)
	if err == sql.ErrNoRows {
		return searchform.State{}, false, nil
	}
	if err != nil {
		return searchform.State{}, false, err
	}
	var state searchform.State
	err = json.Unmarshal([]byte(raw), &state)
	if err != nil {
		return searchform.State{}, false, fmt.Errorf("failed to parse saved draft: %w", err)
	}
	return state, true, nil
}

// SaveLastResults keeps the exact record sequence most recently rendered
// so a later export works on what the user saw, not on live state.
func (s *Store) SaveLastResults(ctx context.Context, records []bookapi.BookRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.qry.SetSlot(ctx, db.SetSlotParams{
		Key:   lastResultsSlot,
		Value: string(raw),
	})
}

// ClearLastResults drops the capture. An empty result set must leave
// nothing behind for a later export to pick up.
func (s *Store) ClearLastResults(ctx context.Context) error {
	return s.qry.DeleteSlot(ctx, lastResultsSlot)
}

// LoadLastResults returns the captured record sequence, if any.
func (s *Store) LoadLastResults(ctx context.Context) ([]bookapi.BookRecord, error) {
	raw, err := s.qry.GetSlot(ctx, lastResultsSlot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []bookapi.BookRecord
	err = json.Unmarshal([]byte(raw), &records)
	if err != nil {
		return nil, fmt.Errorf("failed to parse captured results: %w", err)
	}
	return records, nil
}
