package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Noofbiz/pushWorld/history"
	"github.com/Noofbiz/pushWorld/render"
	"github.com/Noofbiz/pushWorld/stats"
)

func newRegretCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "regret",
		Short: "Aggregate per-step statistics and plot mean/std per model",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.groups()
			if err != nil {
				return err
			}
			return a.regret(groups)
		},
	}
}

func (a *app) regret(groups map[string][]*history.Trial) error {
	metrics, err := a.cfg.ParsedMetrics()
	if err != nil {
		return err
	}
	if len(metrics) == 0 {
		return fmt.Errorf("no metrics configured")
	}

	panels := make([]render.MetricPanel, 0, len(metrics))
	all := make([]map[string]*stats.Result, 0, len(metrics))
	for _, metric := range metrics {
		opts, err := a.cfg.MetricOptions(metric)
		if err != nil {
			return err
		}
		results, err := stats.Aggregate(groups, metric, opts)
		if err != nil {
			return fmt.Errorf("aggregate %v: %w", metric, err)
		}
		for _, model := range stats.Models(results) {
			fields := logrus.Fields{
				"metric": metric.String(),
				"model":  model,
				"trials": results[model].Trials,
				"steps":  len(results[model].Steps),
			}
			if values := results[model].Values; values != nil {
				fields["shape"] = values.Shape().Dimensions
			}
			a.log.WithFields(fields).Info("aggregated")
		}
		panels = append(panels, render.MetricPanel{Metric: metric, Results: results})
		all = append(all, results)
	}

	csvPath, err := a.out(statsFile)
	if err != nil {
		return err
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", csvPath, err)
	}
	defer f.Close()
	if err := stats.WriteCSV(f, all...); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.log.WithField("path", csvPath).Info("wrote statistics")

	pngPath, err := a.out(regretFile)
	if err != nil {
		return err
	}
	if err := render.RegretFigure(pngPath, panels, a.styles()); err != nil {
		return err
	}
	a.log.WithField("path", pngPath).Info("wrote regret figure")
	return nil
}
