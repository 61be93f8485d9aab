package cli

import (
	"strings"

	"github.com/rcliao/country-explorer/internal/render"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show a country's details and neighbors",
		Long:  "Fetch a country by its exact common name and resolve its border countries.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runShow,
	}

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	name := strings.Join(args, " ")

	a := openApp()
	defer a.Close()

	exp := a.explorer(true)
	if err := exp.Select(cmd.Context(), name); err != nil {
		exitErr("show", err)
	}

	st := exp.State()
	if err := render.Detail(cmd.OutOrStdout(), *st.Selection, st.Borders, a.format); err != nil {
		exitErr("render", err)
	}
}
