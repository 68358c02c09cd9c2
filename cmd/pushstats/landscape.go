package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/plotter"

	"github.com/Noofbiz/pushWorld/history"
	"github.com/Noofbiz/pushWorld/monte"
	"github.com/Noofbiz/pushWorld/render"
)

func newLandscapeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "landscape",
		Short: "Plot the goal-distance landscape with final and perturbed outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.groups()
			if err != nil {
				return err
			}
			return a.landscape(groups)
		},
	}
}

func positions(outcomes [][]float64) plotter.XYs {
	xys := make(plotter.XYs, 0, len(outcomes))
	for _, o := range outcomes {
		if len(o) < 2 {
			continue
		}
		xys = append(xys, plotter.XY{X: o[0], Y: o[1]})
	}
	return xys
}

func (a *app) landscape(groups map[string][]*history.Trial) error {
	grid, err := a.cfg.Mesh().Sample()
	if err != nil {
		return err
	}
	styles := a.styles()
	levels := a.cfg.Landscape.Levels

	finals := make(map[string][][]float64, len(groups))
	overlays := make([]render.Overlay, 0, len(a.cfg.Models))
	for _, model := range a.cfg.ModelNames() {
		finals[model] = history.FinalOutcomes(groups[model])
		overlays = append(overlays, render.Overlay{Name: model, Points: positions(finals[model])})
	}

	path, err := a.out(landscapeFile)
	if err != nil {
		return err
	}
	if err := render.LandscapeFigure(path, "distance to nearest goal", grid, levels, overlays, styles); err != nil {
		return err
	}
	a.log.WithField("path", path).Info("wrote landscape figure")

	samples := a.cfg.Perturbation.Samples
	if samples == 0 {
		return nil
	}
	perturber, err := monte.NewPerturber(a.cfg.GMM(), a.cfg.Seed)
	if err != nil {
		return err
	}
	perturber.SetWorkers(a.cfg.Perturbation.Workers)

	for _, model := range a.cfg.ModelNames() {
		if len(finals[model]) == 0 {
			continue
		}
		noisy, err := perturber.Perturb(finals[model], samples)
		if err != nil {
			return fmt.Errorf("perturb %s: %w", model, err)
		}
		path, err := a.out(fmt.Sprintf("push_world_%s_outcomes.png", model))
		if err != nil {
			return err
		}
		overlays := []render.Overlay{
			{Name: model + " perturbed", Points: positions(noisy)},
			{Name: model, Points: positions(finals[model])},
		}
		title := fmt.Sprintf("%s outcomes (%d samples per trial)", model, samples)
		if err := render.LandscapeFigure(path, title, grid, levels, overlays, styles); err != nil {
			return err
		}
		a.log.WithFields(logrus.Fields{
			"model":   model,
			"samples": len(noisy),
			"path":    path,
		}).Info("wrote perturbed outcomes")
	}
	return nil
}
