package main

import (
	"github.com/spf13/cobra"
)

func newAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run regret, quadrants and landscape on the same histories",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.groups()
			if err != nil {
				return err
			}
			if err := a.regret(groups); err != nil {
				return err
			}
			if err := a.quadrants(cmd.OutOrStdout(), groups); err != nil {
				return err
			}
			return a.landscape(groups)
		},
	}
}
