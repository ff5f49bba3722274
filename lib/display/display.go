package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"bookscout/lib/bookapi"
	"bookscout/lib/historystore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxSubjectTags = 3

// Capture is the exact record sequence that was rendered, detached from
// whatever produced it, so a later export operates on what the user saw.
type Capture struct {
	Records []bookapi.BookRecord
}

func cloneRecords(records []bookapi.BookRecord) []bookapi.BookRecord {
	out := make([]bookapi.BookRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].Subjects != nil {
			subjects := make([]string, len(out[i].Subjects))
			copy(subjects, out[i].Subjects)
			out[i].Subjects = subjects
		}
	}
	return out
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

func subjectTags(subjects []string) string {
	if len(subjects) > maxSubjectTags {
		subjects = subjects[:maxSubjectTags]
	}
	return strings.Join(subjects, ", ")
}

// RenderResults prints the result list and returns a capture of what was
// shown. Empty results render a fixed placeholder and produce no capture,
// which is what makes export unavailable for them.
func RenderResults(w io.Writer, res *bookapi.SearchResponse) *Capture {
	if len(res.Results) == 0 {
		fmt.Fprintln(w, "No books found. Try different search terms or another site.")
		return nil
	}

	fmt.Fprintln(w, text.FgCyan.Sprintf("Search Results (%d)", len(res.Results)))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Format", "Price", "Title", "Author", "ISBN", "Publisher", "Year", "Site", "Subjects"})

	for i, r := range res.Results {
		t.AppendRow(table.Row{
			i + 1,
			orPlaceholder(r.Format, "-"),
			orPlaceholder(r.Price, "N/A"),
			orPlaceholder(r.Title, "Unknown Title"),
			orPlaceholder(r.Author, "Unknown Author"),
			orPlaceholder(r.Isbn, "N/A"),
			orPlaceholder(r.Publisher, "Unknown Publisher"),
			orPlaceholder(r.PublishDate, "Unknown"),
			siteLink(r),
			subjectTags(r.Subjects),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()

	return &Capture{Records: cloneRecords(res.Results)}
}

func siteLink(r bookapi.BookRecord) string {
	site := orPlaceholder(r.Site, "unknown")
	if r.Url == "" {
		return site
	}
	return fmt.Sprintf("%s <%s>", site, r.Url)
}

// Describe is the informational line shown when the user selects an item.
// Selecting never navigates anywhere.
func Describe(r bookapi.BookRecord) string {
	return fmt.Sprintf(
		"Selected: %q by %s (%s)",
		orPlaceholder(r.Title, "Unknown Title"),
		orPlaceholder(r.Author, "Unknown Author"),
		orPlaceholder(r.Site, "unknown"),
	)
}

// RenderHistory prints the recency list. The caller is expected to offer
// clear-all only when this returns true (something was shown).
func RenderHistory(w io.Writer, entries []historystore.Entry, now time.Time) bool {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No search history yet.")
		return false
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Query", "Site", "When"})

	for i, e := range entries {
		t.AppendRow(table.Row{
			i + 1,
			e.DisplayText,
			e.Site,
			historystore.RelativeTime(e.Timestamp, now),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
	return true
}

// RenderForm echoes the current form fields, used after a replay or a
// draft restore so the user can see what got repopulated.
func RenderForm(w io.Writer, bookName, isbn, author, site string) {
	fmt.Fprintln(w, text.FgYellow.Sprint("Form:"))
	fmt.Fprintf(w, "  title:  %s\n", bookName)
	fmt.Fprintf(w, "  isbn:   %s\n", isbn)
	fmt.Fprintf(w, "  author: %s\n", author)
	fmt.Fprintf(w, "  site:   %s\n", site)
}
