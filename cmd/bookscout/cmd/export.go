package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"bookscout/lib/bookapi"
	"bookscout/lib/notify"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Exports the most recently rendered results to a spreadsheet.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		records, err := store.LoadLastResults(ctx)
		if err != nil {
			notifier.Notify(err.Error(), notify.Error)
			os.Exit(1)
		}
		if len(records) == 0 {
			// an empty capture is never offered for export
			notifier.Notify("nothing to export, run a search first", notify.Error)
			os.Exit(1)
		}

		err = runExport(ctx, records)
		if err != nil {
			os.Exit(1)
		}
	},
}

// runExport sends the captured records off and saves or reports whatever
// comes back. The progress line is torn down on success and failure alike
// so no stuck state leaks.
func runExport(ctx context.Context, records []bookapi.BookRecord) error {
	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	tracker := &progress.Tracker{Message: "Exporting..."}
	pw.AppendTracker(tracker)
	go pw.Render()
	defer pw.Stop()

	res, err := client.Export(ctx, records)
	if err != nil {
		tracker.MarkAsErrored()
		notifier.Notify(fmt.Sprintf("export failed: %s", err.Error()), notify.Error)
		return err
	}
	tracker.MarkAsDone()

	if res.Transferred {
		path, err := res.WriteFile(config.DownloadDir)
		if err != nil {
			notifier.Notify(fmt.Sprintf("failed to save export: %s", err.Error()), notify.Error)
			return err
		}
		notifier.Notify(fmt.Sprintf("saved export to %s", path), notify.Success)
		return nil
	}

	message := res.Message
	if message == "" {
		message = fmt.Sprintf("export ready on the server as %s", res.Filename)
	}
	notifier.Notify(message, notify.Success)
	return nil
}
