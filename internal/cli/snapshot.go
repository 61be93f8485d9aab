package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rcliao/country-explorer/internal/config"
	"github.com/rcliao/country-explorer/internal/logging"
	"github.com/rcliao/country-explorer/internal/source"
	"github.com/rcliao/country-explorer/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	snapCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and inspect offline snapshots of the country data",
		Long: "A snapshot is a SQLite copy of the full record set. Point any command at it with " +
			"--snapshot to read from it instead of the API.",
	}

	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Fetch every country from the API and save it as a new snapshot",
		Run:   runSnapshotSave,
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show snapshot statistics",
		Run:   runSnapshotStats,
	}

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old snapshots",
		Run:   runSnapshotPrune,
	}
	pruneCmd.Flags().IntP("keep", "k", 1, "Number of newest snapshots to keep")

	snapCmd.AddCommand(saveCmd, statsCmd, pruneCmd)
	RootCmd.AddCommand(snapCmd)
}

// snapshotConfig resolves the snapshot database path. Unlike the other
// commands, a snapshot path never switches the data source here.
func snapshotConfig() (*config.Config, string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	path := cfg.Snapshot
	if path == "" {
		path = defaultSnapshotPath()
	}
	return cfg, path
}

func openSnapshot(path string) *store.SQLiteStore {
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		exitErr("open snapshot", err)
	}
	return st
}

func runSnapshotSave(cmd *cobra.Command, args []string) {
	cfg, path := snapshotConfig()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		exitErr("logger", err)
	}
	defer logger.Sync()

	client, err := newClient(cfg, logger, source.SnapshotFields)
	if err != nil {
		exitErr("config", err)
	}
	countries, err := client.FetchAll(cmd.Context())
	if err != nil {
		exitErr("fetch countries", err)
	}

	st := openSnapshot(path)
	defer st.Close()

	origin := cfg.BaseURL
	if origin == "" {
		origin = source.DefaultBaseURL
	}
	snap, err := st.Save(cmd.Context(), origin, countries)
	if err != nil {
		exitErr("save snapshot", err)
	}

	b, _ := json.MarshalIndent(snap, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func runSnapshotStats(cmd *cobra.Command, args []string) {
	_, path := snapshotConfig()
	st := openSnapshot(path)
	defer st.Close()

	stats, err := st.Stats(cmd.Context(), path)
	if err != nil {
		exitErr("stats", err)
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func runSnapshotPrune(cmd *cobra.Command, args []string) {
	keep, _ := cmd.Flags().GetInt("keep")
	_, path := snapshotConfig()
	st := openSnapshot(path)
	defer st.Close()

	n, err := st.Prune(cmd.Context(), keep)
	if err != nil {
		exitErr("prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"pruned":%d}`+"\n", n)
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
