package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Abraxas-365/exceptionx/errx"
	"github.com/Abraxas-365/exceptionx/filterx"
)

func newCodesCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List the registered error codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			mod, err := flags.module(cmd.Context(), cfg, filterx.LoggerFunc(func(filterx.Record) {}))
			if err != nil {
				return err
			}

			defs := mod.Registry.Definitions()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(defs)
			}
			return printCodes(cmd.OutOrStdout(), defs)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printCodes(w io.Writer, defs []errx.ErrorDefinition) error {
	if len(defs) == 0 {
		_, err := fmt.Fprintln(w, "no error codes registered")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tSTATUS\tMESSAGE")
	for _, d := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Code, statusColor(d.StatusCode).Sprint(d.StatusCode), d.Message)
	}
	return tw.Flush()
}

func statusColor(status int) *color.Color {
	if status >= 500 {
		return color.New(color.FgRed)
	}
	return color.New(color.FgYellow)
}
