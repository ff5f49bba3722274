package bookapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(ClientOptions{
		BaseUrl: server.URL,
		Timeout: time.Second * 5,
	})
	require.NoError(t, err)
	return client
}

func TestSearch(t *testing.T) {
	want := BookRecord{
		Title:    "Dune",
		Author:   "Frank Herbert",
		Isbn:     "9780441013593",
		Format:   "paperback",
		Price:    "$10.99",
		Site:     "amazon",
		Subjects: []string{"sci-fi", "classic"},
	}

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/search" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var query SearchQuery
		err := json.NewDecoder(r.Body).Decode(&query)
		if err != nil {
			t.Error(err)
		}
		require.Equal(t, "Dune", query.BookName)
		require.Equal(t, "amazon", query.Site)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{
			Success:    true,
			Results:    []BookRecord{want},
			TotalCount: 1,
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	res, err := client.Search(ctx, SearchQuery{
		BookName:  "Dune",
		Site:      "amazon",
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, res.Results, 1)
	if diff := cmp.Diff(want, res.Results[0]); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchEmptyResults(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{Success: true, Message: "Found 0 books"})
	})

	res, err := client.Search(context.Background(), SearchQuery{BookName: "nothing", Site: "openlibrary"})
	if err != nil {
		t.Fatal(err)
	}
	// empty is a valid outcome, distinct from failure
	require.Len(t, res.Results, 0)
}

func TestSearchServerFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{Success: false, Message: "scraper exploded"})
	})

	_, err := client.Search(context.Background(), SearchQuery{BookName: "Dune", Site: "amazon"})
	var searchErr *SearchError
	require.ErrorAs(t, err, &searchErr)
	require.Equal(t, "scraper exploded", searchErr.Message)
}

func TestSearchBadStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), SearchQuery{BookName: "Dune", Site: "amazon"})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, http.StatusBadGateway, netErr.StatusCode)
}

func TestExportBinary(t *testing.T) {
	payload := []byte("PK\x03\x04 pretend this is a spreadsheet")

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/export" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string][]BookRecord
		err := json.NewDecoder(r.Body).Decode(&body)
		if err != nil {
			t.Error(err)
		}
		require.Len(t, body["results"], 2)

		w.Header().Set("Content-Type", spreadsheetContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="dune_results.xlsx"`)
		w.Write(payload)
	})

	res, err := client.Export(context.Background(), []BookRecord{
		{Title: "Dune"},
		{Title: "Dune Messiah"},
	})
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, res.Transferred)
	require.Equal(t, "dune_results.xlsx", res.Filename)
	require.Equal(t, payload, res.Data)

	dir := t.TempDir()
	path, err := res.WriteFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, filepath.Join(dir, "dune_results.xlsx"), path)
	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, payload, saved)
}

func TestExportBinaryDefaultFilename(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", spreadsheetContentType)
		w.Write([]byte("bytes"))
	})

	res, err := client.Export(context.Background(), []BookRecord{{Title: "Dune"}})
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, res.Transferred)
	require.Equal(t, DefaultExportFilename, res.Filename)
}

func TestExportJsonFilenameOnly(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ExportResponse{
			Success:  true,
			Message:  "Results exported to book_search_results_20260829.xlsx",
			Filename: "book_search_results_20260829.xlsx",
		})
	})

	res, err := client.Export(context.Background(), []BookRecord{{Title: "Dune"}})
	if err != nil {
		t.Fatal(err)
	}
	require.False(t, res.Transferred)
	require.Equal(t, "book_search_results_20260829.xlsx", res.Filename)

	_, err = res.WriteFile(t.TempDir())
	require.Error(t, err)
}

func TestExportJsonDownloadUrl(t *testing.T) {
	payload := []byte("spreadsheet via locator")

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/export":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(ExportResponse{
				Success:     true,
				DownloadUrl: server.URL + "/files/out.xlsx",
				Filename:    "out.xlsx",
			})
		case "/files/out.xlsx":
			w.Header().Set("Content-Type", spreadsheetContentType)
			w.Write(payload)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{BaseUrl: server.URL, Timeout: time.Second * 5})
	require.NoError(t, err)

	res, err := client.Export(context.Background(), []BookRecord{{Title: "Dune"}})
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, res.Transferred)
	require.Equal(t, "out.xlsx", res.Filename)
	require.Equal(t, payload, res.Data)
}

func TestExportServerFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ExportResponse{Success: false, Message: "no results to export"})
	})

	_, err := client.Export(context.Background(), []BookRecord{{Title: "Dune"}})
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	require.Equal(t, "no results to export", exportErr.Message)
}
