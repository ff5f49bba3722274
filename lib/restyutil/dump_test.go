package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDumpTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "transcripts")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New().SetBaseURL(server.URL)
	DumpTransactions(client, output)

	_, err = client.R().SetBody(map[string]string{"q": "dune"}).Post("/api/search")
	require.NoError(t, err)
	_, err = client.R().Get("/api/search")
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Contains(t, string(first), "POST")
	require.Contains(t, string(first), `"q":"dune"`)
	require.Contains(t, string(first), `{"ok":true}`)

	_, err = os.Stat(filepath.Join(dir, "2.txt"))
	require.NoError(t, err)
}

func TestFilesystemOutputClearsDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transcripts")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0600))

	_, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "stale.txt"))
	require.True(t, os.IsNotExist(err))
}
