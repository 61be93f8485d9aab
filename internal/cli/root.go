// Package cli implements the country-explorer CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/country-explorer/internal/config"
	"github.com/rcliao/country-explorer/internal/explorer"
	"github.com/rcliao/country-explorer/internal/logging"
	"github.com/rcliao/country-explorer/internal/render"
	"github.com/rcliao/country-explorer/internal/source"
	"github.com/rcliao/country-explorer/internal/store"
)

var (
	configPath     string
	baseURL        string
	snapshotPath   string
	formatFlag     string
	logLevel       string
	logFile        string
	partialBorders bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "country-explorer",
	Short: "Explore countries from the REST Countries API",
	Long: "Where in the world? Search and filter countries by region, then look up a country's " +
		"details and neighbors. Data comes from restcountries.com or a saved SQLite snapshot.",
	SilenceUsage: true,
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Config file (default: $COUNTRY_EXPLORER_CONFIG or ~/.country-explorer/config.yaml)")
	pf.StringVar(&baseURL, "base-url", "", "REST Countries base URL (default: "+source.DefaultBaseURL+")")
	pf.StringVarP(&snapshotPath, "snapshot", "s", "", "Read from a SQLite snapshot instead of the API")
	pf.StringVarP(&formatFlag, "format", "f", "", "Output format: json or text")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "Write logs to a file instead of stderr")
	pf.BoolVar(&partialBorders, "partial-borders", false, "Keep resolved border names when some lookups fail")
}

// loadConfig layers the config file, the environment and the flags.
func loadConfig() (*config.Config, error) {
	path, required := configPath, configPath != ""
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)

	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if snapshotPath != "" {
		cfg.Snapshot = snapshotPath
	}
	if formatFlag != "" {
		cfg.Format = formatFlag
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if partialBorders {
		cfg.BorderPolicy = string(explorer.Partial)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	src    source.Source
	format render.Format
	closer func() error
}

func openApp() *app {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	return openAppWith(cfg)
}

func openAppWith(cfg *config.Config) *app {
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		exitErr("config", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		exitErr("logger", err)
	}

	a := &app{cfg: cfg, logger: logger, format: format, closer: func() error { return nil }}
	if cfg.Snapshot != "" {
		st, err := store.NewSQLiteStore(cfg.Snapshot)
		if err != nil {
			exitErr("open snapshot", err)
		}
		a.src = st
		a.closer = st.Close
		logger.Debug("using snapshot", zap.String("path", cfg.Snapshot))
	} else {
		client, err := newClient(cfg, logger, cfg.Fields)
		if err != nil {
			exitErr("config", err)
		}
		a.src = client
	}
	return a
}

func newClient(cfg *config.Config, logger *zap.Logger, fields []string) (*source.Client, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields = source.DefaultFields
	}
	return source.NewClient(source.Options{
		BaseURL:           cfg.BaseURL,
		Fields:            fields,
		Timeout:           timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, logger), nil
}

// explorer builds the view controller. curated=false ignores the configured
// initial countries and starts from the whole record set.
func (a *app) explorer(curated bool) *explorer.Explorer {
	policy, err := explorer.ParseBorderPolicy(a.cfg.BorderPolicy)
	if err != nil {
		exitErr("config", err)
	}
	opts := explorer.Options{
		BorderPolicy:      policy,
		BorderConcurrency: a.cfg.BorderConcurrency,
	}
	if curated {
		opts.InitialCountries = a.cfg.InitialCountries
	}
	return explorer.New(a.src, opts, a.logger)
}

func (a *app) Close() {
	a.closer()
	a.logger.Sync()
}

func defaultSnapshotPath() string {
	return filepath.Join(config.Dir(), "snapshot.db")
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
