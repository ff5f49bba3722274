package historystore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookscout/lib/bookapi"
	"bookscout/lib/historystore/db"
	"bookscout/lib/searchform"
	"bookscout/lib/testutil"

	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, func(ctx context.Context) *Store) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "lib/historystore",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	store, err := NewStore(context.Background(), setup.DB)
	if err != nil {
		t.Fatal(err)
	}
	reopen := func(ctx context.Context) *Store {
		fresh, err := NewStore(ctx, setup.DB)
		if err != nil {
			t.Fatal(err)
		}
		return fresh
	}
	return store, reopen
}

func TestRecordCapsAtTen(t *testing.T) {
	store, reopen := setupStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 11; i++ {
		_, err := store.Record(ctx, bookapi.SearchQuery{
			BookName:  fmt.Sprintf("book %d", i),
			Site:      "openlibrary",
			Timestamp: base.Add(time.Duration(i) * time.Second).Format(time.RFC3339),
		}, base.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatal(err)
		}
	}

	entries := store.List()
	require.Len(t, entries, MaxEntries)
	// index 0 is the most recent submission
	require.Equal(t, "book 10", entries[0].BookName)
	// the very first entry fell off the end silently
	for _, e := range entries {
		require.NotEqual(t, "book 0", e.BookName)
	}

	// the persisted copy agrees with memory
	fresh := reopen(ctx)
	require.Equal(t, entries, fresh.List())
}

func TestDisplayText(t *testing.T) {
	cases := []struct {
		q    bookapi.SearchQuery
		want string
	}{
		{bookapi.SearchQuery{BookName: "Dune"}, `Title: "Dune"`},
		{bookapi.SearchQuery{Author: "Frank Herbert"}, `Author: "Frank Herbert"`},
		{bookapi.SearchQuery{Isbn: "9780441013593"}, "ISBN: 9780441013593"},
		{
			bookapi.SearchQuery{BookName: "Dune", Author: "Frank Herbert", Isbn: "9780441013593"},
			`Title: "Dune" | Author: "Frank Herbert" | ISBN: 9780441013593`,
		},
	}
	for _, c := range cases {
		require.Equal(t, c.want, DisplayText(c.q))
	}
}

func TestReplay(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	now := time.Now()
	_, err := store.Record(ctx, bookapi.SearchQuery{
		BookName:  "Dune",
		Site:      "amazon",
		Timestamp: now.Format(time.RFC3339),
	}, now)
	if err != nil {
		t.Fatal(err)
	}

	state, err := store.Replay(0)
	if err != nil {
		t.Fatal(err)
	}
	// missing fields come back as empty strings
	require.Equal(t, searchform.State{
		BookName: "Dune",
		Isbn:     "",
		Author:   "",
		Site:     "amazon",
	}, state)

	_, err = store.Replay(5)
	require.Error(t, err)
}

func TestClear(t *testing.T) {
	store, reopen := setupStore(t)
	ctx := context.Background()

	now := time.Now()
	_, err := store.Record(ctx, bookapi.SearchQuery{
		BookName:  "Dune",
		Site:      "amazon",
		Timestamp: now.Format(time.RFC3339),
	}, now)
	if err != nil {
		t.Fatal(err)
	}

	// rejected confirmation leaves everything untouched
	cleared, err := store.Clear(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	require.False(t, cleared)
	require.Len(t, store.List(), 1)
	require.Len(t, reopen(ctx).List(), 1)

	cleared, err = store.Clear(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, cleared)
	require.Len(t, store.List(), 0)
	require.Len(t, reopen(ctx).List(), 0)
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		age  time.Duration
		want string
	}{
		{time.Second * 30, "just now"},
		{time.Minute * 5, "5m ago"},
		{time.Minute * 59, "59m ago"},
		{time.Hour * 3, "3h ago"},
		{time.Hour*23 + time.Minute*59, "23h ago"},
		{time.Hour * 48, "2d ago"},
	}
	for _, c := range cases {
		ts := now.Add(-c.age).Format(time.RFC3339)
		require.Equal(t, c.want, RelativeTime(ts, now), "age=%s", c.age)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, found, err := store.LoadDraft(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.False(t, found)

	draft := searchform.State{BookName: "Du", Site: "amazon"}
	err = store.SaveDraft(ctx, draft)
	if err != nil {
		t.Fatal(err)
	}

	// a later tick overwrites the single slot
	draft.BookName = "Dune"
	err = store.SaveDraft(ctx, draft)
	if err != nil {
		t.Fatal(err)
	}

	got, found, err := store.LoadDraft(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, found)
	require.Equal(t, draft, got)
}

func TestLastResultsCapture(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	records, err := store.LoadLastResults(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Nil(t, records)

	want := []bookapi.BookRecord{
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "Dune Messiah", Author: "Frank Herbert"},
	}
	err = store.SaveLastResults(ctx, want)
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.LoadLastResults(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, want, got)
}

func TestClearLastResults(t *testing.T) {
	store, reopen := setupStore(t)
	ctx := context.Background()

	err := store.SaveLastResults(ctx, []bookapi.BookRecord{
		{Title: "Dune", Author: "Frank Herbert"},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = store.ClearLastResults(ctx)
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.LoadLastResults(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, got)

	// persisted state agrees
	got, err = reopen(ctx).LoadLastResults(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, got)

	// clearing an already empty capture is fine
	err = store.ClearLastResults(ctx)
	if err != nil {
		t.Fatal(err)
	}
}

func TestMatch(t *testing.T) {
	entries := []Entry{
		{SearchQuery: bookapi.SearchQuery{BookName: "Dune", Site: "amazon"}, DisplayText: `Title: "Dune"`},
		{SearchQuery: bookapi.SearchQuery{Author: "Ursula K. Le Guin", Site: "openlibrary"}, DisplayText: `Author: "Ursula K. Le Guin"`},
	}

	require.Len(t, Match(entries, "dune"), 1)
	require.Len(t, Match(entries, "le guin"), 1)
	// close misspelling still matches
	require.Len(t, Match(entries, "dunee"), 1)
	require.Len(t, Match(entries, "zzzzzz"), 0)
	require.Len(t, Match(entries, ""), 2)
}
