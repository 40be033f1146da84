package main

import (
	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/history"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/ui"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past provision runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := history.NewStore().List()
			if err != nil {
				return err
			}
			ui.RenderHistory(cmd.OutOrStdout(), reports)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show the full report of a run",
		Long:  `Show a stored run. The id may be any unique prefix.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := history.NewStore().Load(args[0])
			if err != nil {
				return err
			}
			ui.RenderReport(cmd.OutOrStdout(), report)
			return nil
		},
	})

	return cmd
}
