package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/blogfront/route"
)

var routeCmd = &cobra.Command{
	Use:   "route <fragment>",
	Short: "Show which view a hash fragment resolves to",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := route.Parse(args[0])
		out := cmd.OutOrStdout()
		if !m.Matched() {
			fmt.Fprintf(out, "%s -> no route (not found view)\n", m.Path)
			return
		}
		fmt.Fprintf(out, "%s -> %s view (%s)", m.Path, m.Kind, m.Pattern)
		if m.Mode != "" {
			fmt.Fprintf(out, " mode=%s", m.Mode)
		}
		if m.ID != "" {
			fmt.Fprintf(out, " id=%s", m.ID)
		}
		fmt.Fprintln(out)
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
}
