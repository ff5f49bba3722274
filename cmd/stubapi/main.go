// stubapi is a stand-in for the real book search backend. It answers
// /api/search with canned listings and /api/export with a server-side
// filename, which is enough to exercise the bookscout client end to end
// without scraping anything.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"bookscout/lib/bookapi"
	"bookscout/lib/serviceutil"
	"bookscout/lib/telemetry"

	"github.com/mazen160/go-random"
)

func main() {
	telemetry.InitSlog(os.Getenv("BOOKSCOUT_DEBUG") != "")

	ctx := serviceutil.SignalContext()

	_, err := telemetry.SetupFromEnv(ctx, "stubapi")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx)

	port := 5000
	if raw := os.Getenv("PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			serviceutil.Fatal("invalid PORT", err)
		}
		port = parsed
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", handleSearch)
	mux.HandleFunc("/api/export", handleExport)

	go serviceutil.StartHttpServer(port, mux)

	<-ctx.Done()
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to write response", "err", err)
	}
}

func mockPrice() string {
	dollars, err := random.IntRange(10, 50)
	if err != nil {
		dollars = 19
	}
	cents, err := random.IntRange(10, 99)
	if err != nil {
		cents = 99
	}
	return fmt.Sprintf("$%d.%d", dollars, cents)
}

func mockRating() float64 {
	tenths, err := random.IntRange(35, 50)
	if err != nil {
		tenths = 42
	}
	return float64(tenths) / 10
}

var sitePublishers = map[string]string{
	"openlibrary":    "Open Library",
	"amazon":         "Amazon Publishing",
	"goodreads":      "Goodreads Selection",
	"bookdepository": "International Publisher",
	"barnesandnoble": "Barnes & Noble Press",
}

func handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJson(w, http.StatusMethodNotAllowed, bookapi.SearchResponse{
			Success: false,
			Message: "Endpoint not found",
		})
		return
	}

	var query bookapi.SearchQuery
	err := json.NewDecoder(r.Body).Decode(&query)
	if err != nil {
		writeJson(w, http.StatusBadRequest, bookapi.SearchResponse{
			Success: false,
			Message: "Malformed search request",
		})
		return
	}

	if query.BookName == "" && query.Isbn == "" && query.Author == "" {
		writeJson(w, http.StatusBadRequest, bookapi.SearchResponse{
			Success: false,
			Message: "Please provide at least one search parameter (book name, ISBN, or author)",
		})
		return
	}

	// search term priority mirrors the real backend: ISBN, then title,
	// then author
	term := query.Isbn
	if term == "" {
		term = query.BookName
	}
	if term == "" {
		term = query.Author
	}

	site := query.Site
	if !bookapi.KnownSite(site) {
		site = "openlibrary"
	}
	publisher := sitePublishers[site]

	author := query.Author
	if author == "" {
		author = "Various Authors"
	}
	isbn := query.Isbn
	if isbn == "" {
		isbn = "N/A"
	}

	record := bookapi.BookRecord{
		Id:           fmt.Sprintf("%s_%s", term, site),
		Title:        fmt.Sprintf("%s (%s)", term, publisher),
		Author:       author,
		Isbn:         isbn,
		Publisher:    publisher,
		PublishDate:  "2024",
		Pages:        "250",
		Language:     "English",
		Format:       "paperback",
		Price:        mockPrice(),
		Rating:       mockRating(),
		Availability: "Available",
		Url:          fmt.Sprintf("https://%s.example.com/%s", site, term),
		Site:         site,
		Subjects:     []string{"Fiction", "Popular"},
	}

	slog.Info("search", "term", term, "site", site)
	writeJson(w, http.StatusOK, bookapi.SearchResponse{
		Success:    true,
		Message:    "Found 1 books",
		Results:    []bookapi.BookRecord{record},
		Query:      term,
		Site:       site,
		TotalCount: 1,
	})
}

func handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJson(w, http.StatusMethodNotAllowed, bookapi.ExportResponse{
			Success: false,
			Message: "Endpoint not found",
		})
		return
	}

	var body struct {
		Results []bookapi.BookRecord `json:"results"`
	}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		writeJson(w, http.StatusBadRequest, bookapi.ExportResponse{
			Success: false,
			Message: "Malformed export request",
		})
		return
	}
	if len(body.Results) == 0 {
		writeJson(w, http.StatusBadRequest, bookapi.ExportResponse{
			Success: false,
			Message: "No results to export",
		})
		return
	}

	filename := fmt.Sprintf("book_search_results_%s.xlsx", time.Now().Format("20060102_150405"))
	slog.Info("export", "records", len(body.Results), "filename", filename)
	writeJson(w, http.StatusOK, bookapi.ExportResponse{
		Success:  true,
		Message:  fmt.Sprintf("Results exported to %s", filename),
		Filename: filename,
	})
}
