package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"goDT/internal/column"
	"goDT/internal/config"
)

func newColumnsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "Print how the columns of a table resolve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, ok := a.tables.Tables[args[0]]
			if !ok {
				return fmt.Errorf("unknown table %q (have %v)", args[0], a.tables.Names())
			}
			return printColumns(cmd, def, a)
		},
	}
}

func printColumns(cmd *cobra.Command, def config.TableDef, a *app) error {
	reg, err := column.NewRegistry(def.Specs(), def.Entities, a.log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tRESOLVED\tSORTABLE\tSEARCHABLE\tLEGACY")
	for _, s := range reg.Specs() {
		var resolved string
		if col, err := reg.Lookup(s.Name); err != nil {
			resolved = "error: " + err.Error()
		} else {
			resolved = col.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\t%t\n", s.Name, s.Source, resolved, s.Sortable, s.Searchable, s.Legacy)
	}
	return w.Flush()
}
