package cli

import (
	"strings"

	"github.com/rcliao/country-explorer/internal/render"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List countries",
		Long: "List the gallery. With no region the curated initial countries are shown; " +
			"a query keeps names containing it (case-insensitive).",
		Run: runList,
	}

	cmd.Flags().StringP("region", "r", "", "Filter by region, e.g. Europe or Americas")
	cmd.Flags().StringP("query", "q", "", "Name substring to search for")
	cmd.Flags().BoolP("all", "a", false, "Start from every country instead of the curated set")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	region, _ := cmd.Flags().GetString("region")
	query, _ := cmd.Flags().GetString("query")
	all, _ := cmd.Flags().GetBool("all")
	if query == "" {
		query = strings.Join(args, " ")
	}

	a := openApp()
	defer a.Close()

	exp := a.explorer(!all)
	if err := exp.Load(cmd.Context()); err != nil {
		exitErr("load countries", err)
	}
	exp.SetRegion(region)
	exp.SetQuery(query)

	if err := render.Gallery(cmd.OutOrStdout(), exp.State().Displayed, a.format); err != nil {
		exitErr("render", err)
	}
}
