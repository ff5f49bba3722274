package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bookscout/lib/bookapi"
	"bookscout/lib/configutil"
	"bookscout/lib/historystore"
	"bookscout/lib/historystore/db"
	"bookscout/lib/localdb"
	"bookscout/lib/notify"
	"bookscout/lib/serviceutil"
	"bookscout/lib/telemetry"

	"github.com/spf13/cobra"
)

type Config struct {
	// base url of the book search backend
	BaseUrl string `json:"base_url"`
	// where history, drafts and the last result capture live
	Database localdb.Config `json:"database"`
	// where exported spreadsheets are saved
	DownloadDir string `json:"download_dir"`
	// when set, every http exchange with the backend is written here
	// as a plain text transcript
	HttpDumpDir string `json:"http_dump_dir"`
}

var (
	config   Config
	client   *bookapi.Client
	store    *historystore.Store
	notifier *notify.Notifier
)

var rootCmd = &cobra.Command{
	Use:   "bookscout",
	Short: "bookscout searches book retailer sites through the book search backend.",
}

func defaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	baseUrl := os.Getenv("BOOKSCOUT_BASE_URL")
	if baseUrl == "" {
		baseUrl = "http://localhost:5000"
	}
	return Config{
		BaseUrl: baseUrl,
		Database: localdb.Config{
			File: filepath.Join(home, ".bookscout", "state.db"),
		},
		DownloadDir: ".",
	}
}

func Execute() {
	telemetry.InitSlog(os.Getenv("BOOKSCOUT_DEBUG") != "")

	ctx := serviceutil.SignalContext()

	// telemetry is optional for a client tool; without a telemetry.json5
	// nearby the no-op providers stay in place
	tel, err := telemetry.SetupFromEnv(ctx, "bookscout")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}

	config, err = configutil.ReadRecursively[Config]("bookscout.json5")
	if os.IsNotExist(err) {
		config = defaultConfig()
	} else if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	client, err = bookapi.NewClient(bookapi.ClientOptions{
		BaseUrl: config.BaseUrl,
		DumpDir: config.HttpDumpDir,
	})
	if err != nil {
		serviceutil.Fatal("failed to create backend client", err)
	}

	database, err := config.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open state database", err)
	}
	store, err = historystore.NewStore(ctx, database)
	if err != nil {
		serviceutil.Fatal("failed to load search history", err)
	}

	notifier = notify.New(notify.Options{Out: os.Stderr})

	err = rootCmd.ExecuteContext(ctx)

	// flush buffered spans before the process goes away; ctx may already
	// be canceled by a signal so the shutdown gets its own context
	if shutdownErr := tel.Shutdown(context.Background()); shutdownErr != nil {
		slog.Warn("failed to shut down telemetry", "err", shutdownErr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
