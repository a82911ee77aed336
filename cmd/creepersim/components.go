package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/creepersim/internal/audio"
	"github.com/san-kum/creepersim/internal/liquid"
	"github.com/san-kum/creepersim/internal/optim"
	"github.com/san-kum/creepersim/internal/scenario"
	"github.com/san-kum/creepersim/internal/setting"
	"github.com/san-kum/creepersim/internal/sim"
	"github.com/spf13/cobra"
)

func audioCommand() *cobra.Command {
	var (
		freq   float64
		amp    float64
		wave   string
		frames int
	)
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "feed a test tone through the audio analyser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			waves := map[string]audio.WaveType{"sine": audio.WaveSine, "square": audio.WaveSquare, "noise": audio.WaveNoise}
			w, ok := waves[wave]
			if !ok {
				return fmt.Errorf("unknown wave: %s (sine, square, noise)", wave)
			}

			an := audio.NewAnalyser(audio.DefaultSampleRate)
			updates := 0
			unsubscribe := an.SpectrumDataChanged.Subscribe(func([]float64) { updates++ })
			defer unsubscribe()

			n, err := an.Pull(audio.Tone(freq, amp, w, audio.DefaultSampleRate, frames), frames, audio.RawSampleCount)
			if err != nil {
				return err
			}

			spectrum := an.Spectrum()
			peak := 0
			for i, v := range spectrum {
				if v > spectrum[peak] {
					peak = i
				}
			}
			fmt.Printf("frames read:      %d\n", n)
			fmt.Printf("spectrum updates: %d\n", updates)
			fmt.Printf("silent:           %v\n", an.Silent())
			fmt.Printf("loudness:         %.4f\n", an.Loudness())
			fmt.Printf("peak band:        %d (~%.0f hz)\n\n", peak, an.BandHz(peak))
			fmt.Println(asciigraph.Plot(spectrum,
				asciigraph.Height(10),
				asciigraph.Width(audio.SpectrumCount),
				asciigraph.Caption("spectrum (log bands, 20 hz to 20 khz)"),
			))
			return nil
		},
	}
	cmd.Flags().Float64Var(&freq, "freq", 440, "tone frequency in hz")
	cmd.Flags().Float64Var(&amp, "amp", 0.8, "tone amplitude")
	cmd.Flags().StringVar(&wave, "wave", "sine", "waveform (sine, square, noise)")
	cmd.Flags().IntVar(&frames, "frames", 8192, "frames to analyse")
	return cmd
}

func liquidCommand() *cobra.Command {
	var (
		shape    string
		strength float64
		decay    float64
	)
	cmd := &cobra.Command{
		Use:   "liquid",
		Short: "run the liquid with a force field bound to its setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lc := appConfig.Liquid
			liq, err := liquid.New(lc.Config)
			if err != nil {
				return err
			}
			field := liquid.NewForceField(lc.FieldX, lc.FieldY, lc.FieldRadius)
			liq.AddField(field)

			s := liquid.NewForceFieldSetting("liquid", appConfig.ForceField)
			var store setting.Store
			if appConfig.Settings.Persist {
				m, err := setting.OpenStore(appConfig.Settings.AppName)
				if err != nil {
					return err
				}
				store = m
				if err := s.Load(store); err != nil {
					return err
				}
			}
			ctrl := liquid.NewForceFieldController(s, field)
			ctrl.Attach()
			defer ctrl.Detach()
			ctrl.UpdateSetting()

			ffc := s.Get()
			if cmd.Flags().Changed("shape") {
				if ffc.Shape, err = liquid.ParseShape(shape); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("strength") {
				ffc.Strength = strength
			}
			if cmd.Flags().Changed("decay") {
				ffc.DistanceDecay = decay
			}
			s.Set(ffc)
			if store != nil {
				if err := s.Save(store); err != nil {
					return err
				}
			}

			loop := sim.New(sim.NewClock(sim.FixedScale(1)))
			loop.AddSystem(liq)
			energy := make([]float64, 0, int(lc.Duration/lc.Dt)+1)
			err = loop.RunWithCallback(cmd.Context(), sim.Config{Dt: lc.Dt, Duration: lc.Duration}, func(sim.Frame) bool {
				energy = append(energy, liq.KineticEnergy())
				return liq.Valid()
			})
			if err != nil {
				return err
			}
			if !liq.Valid() {
				return fmt.Errorf("liquid diverged after %d frames", len(energy))
			}

			cx, cy := liq.CenterOfMass()
			fmt.Printf("field:          %s strength %.2f decay %.2f at (%.1f, %.1f) r %.1f\n",
				field.Shape, field.Strength, field.DistanceDecay, field.X, field.Y, field.Radius)
			fmt.Printf("setting pushes: %d\n", ctrl.Updates())
			fmt.Printf("particles:      %d (%s)\n", liq.Len(), lc.Integrator)
			fmt.Printf("centre of mass: (%.2f, %.2f)\n\n", cx, cy)
			fmt.Println(asciigraph.Plot(energy,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption("kinetic energy"),
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&shape, "shape", "sphere", "field shape (sphere, cube, cylinder)")
	cmd.Flags().Float64Var(&strength, "strength", 1, "field strength in [-1, 1], negative attracts")
	cmd.Flags().Float64Var(&decay, "decay", 1, "distance decay in [0, 10]")
	return cmd
}

func rigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rig",
		Short: "resize a tailed creeper and watch the rig rebuild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("preset") {
				preset = "lizard"
			}
			cfg, err := scenarioConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Tail == 0 {
				return fmt.Errorf("scenario has no tail to rig")
			}
			if len(cfg.ScaleChanges) == 0 {
				cfg.ScaleChanges = []scenario.ScaleChange{{At: cfg.Duration / 3, Size: cfg.Scale * 1.5}, {At: 2 * cfg.Duration / 3, Size: cfg.Scale}}
			}

			exp, err := scenario.New(cfg, nil)
			if err != nil {
				return err
			}
			defer exp.Close()
			settings := exp.Settings()
			windowAt := cfg.Duration / 2
			windowSent := false

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tEVENT\tSIZE\tREBUILDS\tPENDING")
			lastRebuilds := 0
			for i := 0; i < cfg.SimConfig().Steps(); i++ {
				s := exp.Step()
				if !windowSent && s.Time >= windowAt {
					windowSent = true
					settings.NotifyWindowChanged(setting.WindowEvent{Stage: setting.WindowBefore})
					settings.NotifyWindowChanged(setting.WindowEvent{Stage: setting.WindowAfter})
					fmt.Fprintf(w, "%.2f\twindow changed\t%.2f\t%d\t%v\n", s.Time, s.Scale, exp.Helper().Rebuilds(), exp.Helper().Pending())
				}
				if r := exp.Helper().Rebuilds(); r != lastRebuilds {
					lastRebuilds = r
					fmt.Fprintf(w, "%.2f\trebuilt\t%.2f\t%d\t%v\n", s.Time, s.Scale, r, exp.Helper().Pending())
				}
			}
			return w.Flush()
		},
	}
	addScenarioFlags(cmd)
	return cmd
}

func settingsCommand() *cobra.Command {
	var (
		cursorSize float64
		alive      bool
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "show or change the persisted cursor settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := setting.OpenStore(appConfig.Settings.AppName)
			if err != nil {
				return err
			}
			m := setting.NewCommonSettingManagerGData(store)
			behaviour := &setting.CommonSettingBehaviour{}
			behaviour.Attach(m)
			defer behaviour.Detach()
			behaviour.OnAliveCursorActiveDeactive.Subscribe(func(active bool) {
				fmt.Printf("alive cursor active: %v\n", active)
			})
			m.CursorSizeChanged.Subscribe(func(size float64) {
				fmt.Printf("cursor size: %.2f\n", size)
			})

			changed := false
			if cmd.Flags().Changed("cursor-size") {
				if err := m.SetCursorSize(cursorSize); err != nil {
					return err
				}
				changed = true
			}
			if cmd.Flags().Changed("alive") {
				m.SetAliveCursorActive(alive)
				changed = true
			}
			if changed {
				if err := m.Save(); err != nil {
					return err
				}
			}

			cur := m.Settings()
			fmt.Printf("cursor_size: %.2f\nis_alive_cursor_active: %v\n", cur.CursorSize, cur.IsAliveCursorActive)
			return nil
		},
	}
	cmd.Flags().Float64Var(&cursorSize, "cursor-size", 1, "cursor size")
	cmd.Flags().BoolVar(&alive, "alive", true, "alive cursor active")
	return cmd
}

func benchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "benchmark frames per second by leg count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LEGS\tGROUPS\tTAIL\tFRAMES\tTIME\tFRAMES/SEC")
			for _, n := range []int{4, 8, 16, 32, 64} {
				for _, tailLen := range []int{0, 8} {
					cfg := scenario.DefaultConfig()
					cfg.Legs, cfg.Groups, cfg.Tail = n, 2, tailLen
					cfg.Duration = 10

					exp, err := scenario.New(cfg, nil)
					if err != nil {
						return err
					}
					start := time.Now()
					res, err := exp.Run(cmd.Context())
					exp.Close()
					if err != nil {
						return err
					}
					elapsed := time.Since(start)
					frames := len(res.Samples)
					fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%v\t%.0f\n",
						n, cfg.Groups, tailLen, frames, elapsed, float64(frames)/elapsed.Seconds())
				}
			}
			return w.Flush()
		},
	}
}

func tuneCommand() *cobra.Command {
	var (
		params []string
		metric string
	)
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search locomotion parameters",
		Long: "Grid search over parameters given as name=v1,v2,... .\nTunable: " +
			strings.Join(optim.Params(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := scenarioConfig(cmd)
			if err != nil {
				return err
			}
			if len(params) == 0 {
				params = []string{"body_move_speed=1,3,6", "leg_move_interval_time=0.1,0.2"}
			}
			names := make([]string, 0, len(params))
			ranges := make([][]float64, 0, len(params))
			for _, p := range params {
				name, values, err := parseParam(p)
				if err != nil {
					return err
				}
				names = append(names, name)
				ranges = append(ranges, values)
			}

			g, err := optim.NewGridSearch(names, ranges)
			if err != nil {
				return err
			}
			best, all, err := g.Search(cmd.Context(), cfg, metric)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metric))
			for _, c := range all {
				row := make([]string, 0, len(names)+1)
				for _, n := range names {
					row = append(row, strconv.FormatFloat(c.Params[n], 'g', 4, 64))
				}
				row = append(row, strconv.FormatFloat(c.Value, 'f', 4, 64))
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nbest %s = %.4f with %v\n", metric, best.Value, best.Params)
			return nil
		},
	}
	addScenarioFlags(cmd)
	cmd.Flags().StringArrayVar(&params, "param", nil, "parameter grid, name=v1,v2,...")
	cmd.Flags().StringVar(&metric, "metric", "mean_lag", "metric to minimise")
	return cmd
}

func parseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("bad --param %q, want name=v1,v2", s)
	}
	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
