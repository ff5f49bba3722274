// Package restyutil captures full request/response transcripts from a
// resty client, mainly for debugging backend interactions offline.
package restyutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Output receives one rendered HTTP transcript per completed request.
type Output interface {
	Write(id string, contents string)
}

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput clears dir and recreates it so every run starts
// with a fresh set of transcripts.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	os.RemoveAll(dir)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http transcript", "id", id, "err", err)
	}
}

type dumpCtx struct {
	output    Output
	idcounter *uint64
}

type messageIdKey struct{}

// DumpTransactions writes a transcript of every request the client
// completes to output. It does not open spans of its own, tracing is
// handled separately so the two can be layered on the same client.
// A nil output makes this a no-op.
func DumpTransactions(client *resty.Client, output Output) {
	if output == nil {
		return
	}

	var idcounter uint64
	d := dumpCtx{output: output, idcounter: &idcounter}
	client.OnBeforeRequest(d.onBeforeRequest)
	client.OnAfterResponse(d.onAfterResponse)
	client.OnError(d.onError)
}

func (d dumpCtx) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	messageId := strconv.FormatUint(atomic.AddUint64(d.idcounter, 1), 10)
	slog.Debug(
		"start request",
		"method", req.Method,
		"url", req.URL,
		"message_id", messageId,
	)
	req.SetContext(context.WithValue(req.Context(), messageIdKey{}, messageId))
	return nil
}

func (d dumpCtx) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	messageId, ok := ctx.Value(messageIdKey{}).(string)
	if !ok {
		return nil
	}
	d.output.Write(messageId, formatHttpMessage(res))
	slog.Debug(
		"request completed",
		"method", res.Request.Method,
		"url", res.Request.URL,
		"status", res.StatusCode(),
		"message_id", messageId,
	)
	return nil
}

func (d dumpCtx) onError(req *resty.Request, err error) {
	messageId, _ := req.Context().Value(messageIdKey{}).(string)
	slog.Error(
		"request failed",
		"method", req.Method,
		"url", req.URL,
		"err", err,
		"message_id", messageId,
	)
}
