package cli

import (
	"path/filepath"

	"github.com/rcliao/country-explorer/internal/config"
	"github.com/rcliao/country-explorer/internal/tui"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse countries interactively",
		Long:  "Open the interactive gallery. Logs go to ~/.country-explorer/browse.log unless --log-file is set.",
		Run:   runBrowse,
	}

	RootCmd.AddCommand(cmd)
}

func runBrowse(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	// The browser owns the terminal.
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(config.Dir(), "browse.log")
		if err := ensureDir(config.Dir()); err != nil {
			exitErr("log dir", err)
		}
	}

	a := openAppWith(cfg)
	defer a.Close()

	if err := tui.Run(cmd.Context(), a.explorer(true)); err != nil {
		exitErr("browse", err)
	}
}
