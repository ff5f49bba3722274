package bookapi

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookscout/lib/restyutil"
	"bookscout/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/bookapi")

// DefaultExportFilename is used when a binary export response carries no
// content-disposition filename.
const DefaultExportFilename = "book_search_results.xlsx"

const spreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Client struct {
	http *resty.Client
}

type ClientOptions struct {
	BaseUrl string
	// Timeout defaults to 30 seconds when zero.
	Timeout time.Duration
	// DumpDir, when set, writes a transcript of every request/response
	// pair to that directory. Meant for debugging against a live backend.
	DumpDir string
}

func NewClient(opts ClientOptions) (*Client, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(timeout)
	client.SetHeader("accept", "application/json")

	telemetry.InstrumentResty(client, "bookapi/http")

	if opts.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create http dump directory: %w", err)
		}
		restyutil.DumpTransactions(client, output)
	}

	return &Client{http: client}, nil
}

// Search submits the query to the backend. An empty result list on a
// successful response is a valid outcome, not an error.
func (c *Client) Search(ctx context.Context, query SearchQuery) (*SearchResponse, error) {
	ctx, span := tracer.Start(ctx, "client:Search")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(query).
		Post("/api/search")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to reach search endpoint")
		return nil, err
	}
	if !res.IsSuccess() {
		err := &NetworkError{StatusCode: res.StatusCode()}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var out SearchResponse
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse search response")
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if !out.Success {
		err := &SearchError{Message: out.Message}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &out, nil
}

// ExportResult describes what came back from an export request. When
// Transferred is true, Data holds the exact bytes of a spreadsheet
// document to be saved under Filename. Otherwise the server only reported
// a filename and Message is all there is to show the user.
type ExportResult struct {
	Filename    string
	Data        []byte
	Transferred bool
	Message     string
}

// WriteFile saves a transferred document under dir, creating it if
// needed, and returns the full path written.
func (r *ExportResult) WriteFile(dir string) (string, error) {
	if !r.Transferred {
		return "", fmt.Errorf("export produced no file to save")
	}
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, r.Filename)
	err = os.WriteFile(path, r.Data, 0644)
	if err != nil {
		return "", err
	}
	return path, nil
}

// Export sends the record sequence to the export endpoint. The backend
// may answer with the spreadsheet bytes directly or with a JSON pointer
// to a file; both shapes are handled here.
func (c *Client) Export(ctx context.Context, records []BookRecord) (*ExportResult, error) {
	ctx, span := tracer.Start(ctx, "client:Export")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(map[string][]BookRecord{"results": records}).
		Post("/api/export")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to reach export endpoint")
		return nil, err
	}
	if !res.IsSuccess() {
		err := &NetworkError{StatusCode: res.StatusCode()}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	contentType := res.Header().Get("Content-Type")
	if strings.Contains(contentType, spreadsheetContentType) {
		return &ExportResult{
			Filename:    dispositionFilename(res.Header().Get("Content-Disposition")),
			Data:        res.Body(),
			Transferred: true,
		}, nil
	}

	var out ExportResponse
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse export response")
		return nil, &ExportError{}
	}
	if !out.Success {
		err := &ExportError{Message: out.Message}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if out.DownloadUrl != "" {
		return c.download(ctx, out)
	}

	filename := out.Filename
	if filename == "" {
		filename = DefaultExportFilename
	}
	return &ExportResult{
		Filename: filename,
		Message:  out.Message,
	}, nil
}

func (c *Client) download(ctx context.Context, info ExportResponse) (*ExportResult, error) {
	ctx, span := tracer.Start(ctx, "client:download")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(info.DownloadUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch download locator")
		return nil, err
	}
	if !res.IsSuccess() {
		err := &NetworkError{StatusCode: res.StatusCode()}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	filename := info.Filename
	if filename == "" {
		filename = dispositionFilename(res.Header().Get("Content-Disposition"))
	}
	return &ExportResult{
		Filename:    filename,
		Data:        res.Body(),
		Transferred: true,
		Message:     info.Message,
	}, nil
}

func dispositionFilename(disposition string) string {
	if disposition != "" {
		_, params, err := mime.ParseMediaType(disposition)
		if err == nil && params["filename"] != "" {
			return params["filename"]
		}
	}
	return DefaultExportFilename
}
