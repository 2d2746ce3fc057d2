package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"goDT/internal/config"
)

// app is the state shared by the subcommands, filled in before any of them
// runs.
type app struct {
	configPath string
	cfg        *config.Config
	tables     *config.Tables
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "godt",
		Short:        "Server-side processing for data-grid tables",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to the YAML config file")

	cmd.AddCommand(newServeCmd(a), newQueryCmd(a), newColumnsCmd(a))
	return cmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = config.NewLogger(cfg.Logging, cmd.ErrOrStderr())

	if cfg.TablesFile == "" {
		a.log.Warn().Msg("no tables_file configured, serving the in-memory demo table")
		a.tables = demoTables()
		return nil
	}
	a.tables, err = config.LoadTables(cfg.TablesFile)
	return err
}
