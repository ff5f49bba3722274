package searchform

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"bookscout/lib/bookapi"
)

// State holds the raw form field values as the user typed them. It doubles
// as the draft payload persisted between sessions, hence the json tags.
type State struct {
	BookName string `json:"bookName"`
	Isbn     string `json:"isbn"`
	Author   string `json:"author"`
	Site     string `json:"site"`
}

// ValidationError means the form cannot be submitted as-is. It is caught
// before any network call and never clears what the user entered.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Collect assembles an immutable query from the current field values,
// trimming whitespace and stamping the creation time.
func (s State) Collect(now time.Time) bookapi.SearchQuery {
	return bookapi.SearchQuery{
		BookName:  strings.TrimSpace(s.BookName),
		Isbn:      strings.TrimSpace(s.Isbn),
		Author:    strings.TrimSpace(s.Author),
		Site:      strings.TrimSpace(s.Site),
		Timestamp: now.Format(time.RFC3339),
	}
}

// Validate reports whether the query is submittable: at least one of
// title/ISBN/author must be present, and a known site must be selected.
func Validate(q bookapi.SearchQuery) error {
	if q.BookName == "" && q.Isbn == "" && q.Author == "" {
		return &ValidationError{
			Message: "please provide at least one search parameter (book name, ISBN, or author)",
		}
	}
	if q.Site == "" {
		return &ValidationError{
			Message: "please select a site to search",
		}
	}
	if !bookapi.KnownSite(q.Site) {
		return &ValidationError{
			Message: fmt.Sprintf(
				"unknown site %q, expected one of: %s",
				q.Site, strings.Join(bookapi.Sites, ", "),
			),
		}
	}
	return nil
}

// Feedback is the advisory per-field cue shown while the user types. It
// never blocks submission.
type Feedback int

const (
	FeedbackNeutral Feedback = iota
	FeedbackValid
	FeedbackInvalid
)

var isbnCharset = regexp.MustCompile(`^[0-9Xx-]+$`)

// FieldFeedback grades a single field's current value. The ISBN field is
// flagged valid only when it is at least 10 characters of digits, hyphens
// and the X check character; any other non-empty field is valid
// unconditionally.
func FieldFeedback(field, value string) Feedback {
	value = strings.TrimSpace(value)
	if value == "" {
		return FeedbackNeutral
	}
	if field != "isbn" {
		return FeedbackValid
	}
	if len(value) >= 10 && isbnCharset.MatchString(value) {
		return FeedbackValid
	}
	return FeedbackInvalid
}
