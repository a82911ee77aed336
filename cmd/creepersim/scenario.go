package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/san-kum/creepersim/internal/config"
	"github.com/san-kum/creepersim/internal/scenario"
	"github.com/san-kum/creepersim/internal/setting"
	"github.com/san-kum/creepersim/internal/storage"
	"github.com/san-kum/creepersim/internal/viz"
	"github.com/spf13/cobra"
)

func addScenarioFlags(cmd *cobra.Command) {
	d := scenario.DefaultConfig()
	cmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
	cmd.Flags().StringVar(&path, "path", d.Path, "end point path")
	cmd.Flags().IntVar(&legs, "legs", d.Legs, "number of legs")
	cmd.Flags().IntVar(&groups, "groups", d.Groups, "number of leg groups")
	cmd.Flags().IntVar(&tail, "tail", d.Tail, "tail bones driven by the rig helper")
	cmd.Flags().Float64Var(&scale, "scale", d.Scale, "cursor size")
	cmd.Flags().Float64Var(&dt, "dt", d.Dt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", d.Duration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", d.Seed, "random seed")
	cmd.Flags().BoolVar(&audioOn, "audio", false, "bounce the body to a pulsing tone")
}

// scenarioConfig layers config file, preset and explicit flags, in that order.
func scenarioConfig(cmd *cobra.Command) (scenario.Config, error) {
	cfg := appConfig.Scenario
	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return cfg, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	f := cmd.Flags()
	if f.Changed("path") {
		cfg.Path = path
	}
	if f.Changed("legs") {
		cfg.Legs = legs
	}
	if f.Changed("groups") {
		cfg.Groups = groups
	}
	if f.Changed("tail") {
		cfg.Tail = tail
	}
	if f.Changed("scale") {
		cfg.Scale = scale
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("audio") {
		cfg.Audio.Enabled = audioOn
	}
	return cfg, cfg.Validate()
}

// openSettings returns the persisted settings manager when the config asks
// for it, otherwise nil so the scenario keeps its own in-memory one.
func openSettings() (*setting.CommonSettingManager, error) {
	if !appConfig.Settings.Persist {
		return nil, nil
	}
	store, err := setting.OpenStore(appConfig.Settings.AppName)
	if err != nil {
		return nil, err
	}
	return setting.NewCommonSettingManagerGData(store), nil
}

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario and store the result",
		Args:  cobra.NoArgs,
		RunE:  runScenario,
	}
	addScenarioFlags(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := scenarioConfig(cmd)
	if err != nil {
		return err
	}
	settings, err := openSettings()
	if err != nil {
		return err
	}
	if settings != nil && !cmd.Flags().Changed("scale") {
		cfg.Scale = settings.CursorSize()
	}

	exp, err := scenario.New(cfg, settings)
	if err != nil {
		return err
	}
	// the run borrows the persisted cursor size and hands it back untouched
	defer exp.Close()

	fmt.Printf("running %s (%s, %d legs in %d groups)...\n", cfg.Name, cfg.Path, cfg.Legs, cfg.Groups)
	start := time.Now()
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(res)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("frames: %d\n", len(res.Samples))
	printMetrics(res.Metrics)
	return nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, metrics[name])
	}
}

func batchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [preset...]",
		Short: "run presets concurrently and compare them",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = config.ListPresets()
			}
			cfgs := make([]scenario.Config, 0, len(names))
			for _, name := range names {
				cfg, ok := config.GetPreset(name)
				if !ok {
					return fmt.Errorf("unknown preset: %s", name)
				}
				cfgs = append(cfgs, cfg)
			}

			start := time.Now()
			results, err := scenario.RunBatch(cmd.Context(), cfgs)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tPATH\tLEGS\tSTEPS\tALIGN\tMAX LAG\tMEAN LAG\tREACH")
			for _, res := range results {
				m := res.Metrics
				fmt.Fprintf(w, "%s\t%s\t%d\t%.0f\t%.0f\t%.3f\t%.3f\t%.3f\n",
					res.Config.Name, res.Config.Path, res.Config.Legs,
					m["steps"], m["alignments"], m["max_lag"], m["mean_lag"], m["reach"])
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%d scenarios in %v\n", len(results), time.Since(start))
			return nil
		},
	}
}

func liveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "watch a scenario in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := scenarioConfig(cmd)
			if err != nil {
				return err
			}
			return viz.Run(cfg)
		},
	}
	addScenarioFlags(cmd)
	return cmd
}

func presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets and paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tPATH\tLEGS\tGROUPS\tTAIL\tAUDIO")
			for _, name := range config.ListPresets() {
				cfg, _ := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%v\n",
					name, cfg.Path, cfg.Legs, cfg.Groups, cfg.Tail, cfg.Audio.Enabled)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\npaths: %v\n", scenario.Paths())
			return nil
		},
	}
}
