package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Noofbiz/pushWorld/history"
)

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in.csv> <out.hist>",
		Short: "Import CSV trial histories into a history artifact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := history.LoadCSV(args[0])
			if err != nil {
				return err
			}
			if err := history.Save(args[1], h); err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{
				"in":     args[0],
				"out":    args[1],
				"trials": len(h),
			}).Info("converted histories")
			return nil
		},
	}
}
