package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Noofbiz/pushWorld/history"
	"github.com/Noofbiz/pushWorld/quadrant"
	"github.com/Noofbiz/pushWorld/render"
)

func newQuadrantsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quadrants",
		Short: "Partition final outcomes by quadrant and plot them per model",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.groups()
			if err != nil {
				return err
			}
			return a.quadrants(cmd.OutOrStdout(), groups)
		},
	}
}

// partition builds the quadrant summary of every configured model, in
// configuration order.
func (a *app) partition(groups map[string][]*history.Trial) []render.QuadrantGroup {
	include := a.cfg.QuadrantList()
	out := make([]render.QuadrantGroup, 0, len(a.cfg.Models))
	for _, model := range a.cfg.ModelNames() {
		var points []quadrant.Point
		skipped := 0
		for _, o := range history.FinalOutcomes(groups[model]) {
			p, ok := quadrant.PointFromOutcome(o)
			if !ok {
				skipped++
				continue
			}
			points = append(points, p)
		}
		if skipped > 0 {
			a.log.WithFields(logrus.Fields{
				"model":   model,
				"skipped": skipped,
			}).Warn("outcomes without position and orientation")
		}
		out = append(out, render.QuadrantGroup{
			Model:   model,
			Summary: quadrant.Partition(points, include...),
		})
	}
	return out
}

func (a *app) quadrants(w io.Writer, groups map[string][]*history.Trial) error {
	parts := a.partition(groups)
	for _, g := range parts {
		fmt.Fprintln(w, g.Summary.Describe(g.Model))
	}
	fmt.Fprintln(w)
	if err := writeQuadrantTable(w, parts); err != nil {
		return err
	}

	path, err := a.out(quadrantsFile)
	if err != nil {
		return err
	}
	opts := render.QuadrantOptions{
		Jitter:   a.cfg.Quadrants.Jitter,
		ColorMin: a.cfg.Quadrants.ColorMin,
		ColorMax: a.cfg.Quadrants.ColorMax,
		Seed:     a.cfg.Seed,
	}
	if err := render.QuadrantFigure(path, parts, opts); err != nil {
		return err
	}
	a.log.WithField("path", path).Info("wrote quadrant figure")
	return nil
}

func writeQuadrantTable(w io.Writer, parts []render.QuadrantGroup) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tQUADRANT\tCOUNT\tPERCENT\tORIENTATION")
	for _, g := range parts {
		for _, b := range g.Summary.Buckets {
			fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%.2f%%\t%.2f+-%.2f\n",
				g.Model, b.Quadrant, b.Count, g.Summary.Total, b.Percent,
				b.Orientation.Mean, b.Orientation.Std)
		}
	}
	return tw.Flush()
}
