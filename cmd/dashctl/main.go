package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"dashboard-cms/pkg/cache"
	"dashboard-cms/pkg/client"
	"dashboard-cms/pkg/config"
	"dashboard-cms/pkg/logging"
	"dashboard-cms/pkg/media"
	"dashboard-cms/pkg/models"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	apiURL   string
	cacheDir string
	verbose  bool
	fs       afero.Fs

	logger   *zap.Logger
	api      *client.HTTPClient
	sync     *client.SyncClient
	uploader *media.Uploader
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}
	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Edit dashboard content and keep it in sync with the content API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			color.NoColor = !shouldUseColor(cmd.OutOrStdout())
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", config.APIURL, "content API base URL")
	root.PersistentFlags().StringVar(&a.cacheDir, "cache-dir", config.CacheDir, "directory holding the local working copy")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(a.showCmd())
	root.AddCommand(a.pullCmd())
	root.AddCommand(a.pushCmd())
	root.AddCommand(a.resetCmd())
	root.AddCommand(a.headerCmd())
	root.AddCommand(a.navCmd())
	root.AddCommand(a.footerCmd())
	root.AddCommand(a.uploadCmd())
	root.AddCommand(a.healthCmd())
	root.AddCommand(a.statusCmd())
	return root
}

func (a *app) setup() error {
	logger, err := logging.New(logging.Options{Development: a.verbose, File: config.LogFile})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	if !a.verbose {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}
	a.logger = logger

	if a.cacheDir == "" {
		return fmt.Errorf("no cache directory: pass --cache-dir or set DASHBOARD_CACHE_DIR")
	}
	mirror := cache.New(cache.NewFileStorage(a.fs, a.cacheDir), models.DefaultRecord(), logger)

	a.api = client.NewHTTPClient(a.apiURL, &http.Client{Timeout: 30 * time.Second})
	a.sync = client.New(a.api, mirror, logger)
	a.uploader = media.NewUploader(media.Config{
		CloudName:    config.CloudinaryCloudName,
		UploadPreset: config.CloudinaryUploadPreset,
		Folder:       config.CloudinaryFolder,
		Endpoint:     config.CloudinaryEndpoint,
	}, logger)
	return nil
}

func main() {
	config.Init()
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
