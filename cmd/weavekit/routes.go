package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRoutesCmd() *cobra.Command {
	var patterns bool
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the registered routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			srv, err := app.newServer()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if patterns {
				entries, err := srv.Registry().Materialize()
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, "PATTERN\tHANDLER")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s.%s\n", e.Pattern, e.Route.Module, e.Route.View)
				}
				return tw.Flush()
			}

			fmt.Fprintln(tw, "METHOD\tURL\tHANDLER\tKIND")
			for _, r := range srv.Registry().Routes() {
				kind := "func"
				if r.ClassBased {
					kind = "view"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s.%s\t%s\n", r.Method, r.URL, r.Module, r.View, kind)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&patterns, "patterns", false, "Show the materialized mux patterns instead")
	return cmd
}
