package cli

import (
	"github.com/rcliao/country-explorer/internal/render"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List the regions present in the data",
		Run:   runRegions,
	}

	RootCmd.AddCommand(cmd)
}

func runRegions(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	exp := a.explorer(true)
	if err := exp.Load(cmd.Context()); err != nil {
		exitErr("load countries", err)
	}
	if err := render.Regions(cmd.OutOrStdout(), exp.Regions(), a.format); err != nil {
		exitErr("render", err)
	}
}
