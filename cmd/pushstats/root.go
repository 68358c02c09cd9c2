package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Noofbiz/pushWorld/config"
	"github.com/Noofbiz/pushWorld/history"
	"github.com/Noofbiz/pushWorld/render"
)

const (
	statsFile     = "push_world_stats.csv"
	regretFile    = "push_world_result.png"
	quadrantsFile = "push_world_quadrants.png"
	landscapeFile = "push_world_landscape.png"
)

// app carries the state shared by every subcommand.
type app struct {
	cfgFile string
	outDir  string
	metrics []string
	verbose bool

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}
	root := &cobra.Command{
		Use:          "pushstats",
		Short:        "Analyse push-world optimisation experiments",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log.SetOutput(cmd.ErrOrStderr())
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "pushstats.yaml", "config file path")
	root.PersistentFlags().StringVar(&a.outDir, "out", "", "output directory (overrides output_dir)")
	root.PersistentFlags().StringSliceVar(&a.metrics, "metrics", nil, "metrics to aggregate (overrides metrics)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRegretCmd(a))
	root.AddCommand(newQuadrantsCmd(a))
	root.AddCommand(newLandscapeCmd(a))
	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newAllCmd(a))
	return root
}

func (a *app) setup() error {
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}
	cfg, err := config.LoadOrDefault(a.cfgFile)
	if err != nil {
		return err
	}
	if a.outDir != "" {
		cfg.OutputDir = a.outDir
	}
	if len(a.metrics) > 0 {
		cfg.Metrics = a.metrics
	}
	a.cfg = cfg
	a.log.WithFields(logrus.Fields{
		"config": a.cfgFile,
		"out":    cfg.OutputDir,
		"models": len(cfg.Models),
	}).Debug("configuration loaded")
	return nil
}

// out returns the path of name inside the output directory, creating the
// directory if needed.
func (a *app) out(name string) (string, error) {
	if err := os.MkdirAll(a.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", a.cfg.OutputDir, err)
	}
	return filepath.Join(a.cfg.OutputDir, name), nil
}

// groups loads every configured history artifact and attributes its trials
// to the configured models.
func (a *app) groups() (map[string][]*history.Trial, error) {
	paths := a.cfg.HistoryPaths()
	if len(paths) == 0 {
		found, err := history.Discover(a.cfg.Histories.Dir)
		if err != nil {
			return nil, fmt.Errorf("no histories.files configured: %w", err)
		}
		paths = found
	}
	h, err := history.LoadAll(paths, a.log)
	if err != nil {
		return nil, err
	}
	groups := history.GroupByModel(h, a.cfg.ModelNames())
	for _, m := range a.cfg.ModelNames() {
		a.log.WithFields(logrus.Fields{
			"model":  m,
			"trials": len(groups[m]),
		}).Debug("model group")
	}
	return groups, nil
}

func (a *app) styles() render.Styles {
	zorders := make(map[string]int, len(a.cfg.Models))
	for _, m := range a.cfg.Models {
		zorders[m.Name] = m.ZOrder
	}
	return render.NewStyles(a.cfg.ModelNames(), zorders)
}
