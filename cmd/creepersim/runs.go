package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/creepersim/internal/analysis"
	"github.com/san-kum/creepersim/internal/export"
	"github.com/san-kum/creepersim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	svgOut    string
	svgWidth  int
	svgHeight int
)

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCENARIO\tPATH\tTIME\tDURATION\tLEGS\tSTEPS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%d\t%d\n",
					run.ID,
					run.Scenario,
					run.Path,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Duration,
					run.Legs,
					run.Steps,
				)
			}
			return w.Flush()
		},
	}
}

func plotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot lag and body position of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			samples, err := st.LoadSamples(args[0])
			if err != nil {
				return err
			}
			if len(samples) == 0 {
				return fmt.Errorf("no data to plot")
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("scenario: %s (%s)\n", meta.Scenario, meta.Path)
			fmt.Printf("samples: %d\n\n", len(samples))

			series := []struct {
				caption string
				value   func(i int) float64
			}{
				{"lag (body to end point)", func(i int) float64 { return samples[i].Lag }},
				{"body x", func(i int) float64 { return samples[i].Body[0] }},
				{"body z", func(i int) float64 { return samples[i].Body[2] }},
				{"body bounce", func(i int) float64 { return samples[i].Bounce }},
			}
			for _, s := range series {
				data := make([]float64, len(samples))
				for i := range samples {
					data[i] = s.value(i)
				}
				graph := asciigraph.Plot(data,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(s.caption),
				)
				fmt.Println(graph)
				fmt.Println()
			}
			return nil
		},
	}
}

func exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := storage.New(dataDir).Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}
}

func exportJSONCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export the full run as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := storage.New(dataDir).LoadResult(args[0])
			if err != nil {
				return err
			}
			return storage.ExportJSON(out, res)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func exportCSVCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames as csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := storage.New(dataDir).LoadSamples(args[0])
			if err != nil {
				return err
			}
			if len(samples) == 0 {
				return fmt.Errorf("no data to export")
			}
			w := csv.NewWriter(os.Stdout)
			if err := storage.WriteSamples(w, samples); err != nil {
				return err
			}
			w.Flush()
			return w.Error()
		},
	}
}

func exportSVGCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a run from above as svg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := storage.New(dataDir).LoadResult(args[0])
			if err != nil {
				return err
			}
			svg := export.RunToSVG(res, svgWidth, svgHeight)
			if svg == "" {
				return fmt.Errorf("not enough data to draw")
			}
			if svgOut == "-" {
				_, err = fmt.Println(svg)
				return err
			}
			if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", svgOut)
			return nil
		},
	}
	cmd.Flags().StringVarP(&svgOut, "out", "o", "run.svg", "output file, - for stdout")
	cmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	cmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	return cmd
}

func analyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "gait and frequency analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := storage.New(dataDir).LoadResult(args[0])
			if err != nil {
				return err
			}
			if len(res.Samples) == 0 {
				return fmt.Errorf("no data")
			}
			cfg := res.Config

			g := analysis.Gait(res.Steps, cfg.Groups, cfg.Duration)
			fmt.Printf("gait analysis: %s\n\n", args[0])
			fmt.Printf("group steps:  %d (%v per group)\n", g.Steps, g.PerGroup)
			fmt.Printf("alignments:   %d\n", g.Alignments)
			fmt.Printf("cadence:      %.2f steps/s\n", g.Cadence)
			fmt.Printf("gap:          mean %.3fs, min %.3fs\n", g.MeanGap, g.MinGap)
			fmt.Printf("alternation:  %.2f\n", g.Alternation)
			fmt.Printf("balance:      %.2f\n\n", g.Balance)

			lag := make([]float64, len(res.Samples))
			body := make([]mgl64.Vec3, len(res.Samples))
			end := make([]mgl64.Vec3, len(res.Samples))
			for i, s := range res.Samples {
				lag[i], body[i], end[i] = s.Lag, s.Body, s.EndPoint
			}
			ps := analysis.PowerSpectrum(lag)
			if len(ps) > 8 {
				graph := asciigraph.Plot(ps[1:len(ps)/4],
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption("lag power spectrum"),
				)
				fmt.Println(graph)
				fmt.Println()
			}
			if f := analysis.DominantFrequency(lag, cfg.Dt); f > 0 {
				fmt.Printf("lag dominant frequency: %.3f hz (period %.3f s)\n", f, 1/f)
			}
			times := make([]float64, 0, len(res.Steps))
			for _, ev := range res.Steps {
				times = append(times, ev.Time)
			}
			if f := analysis.DominantFrequency(analysis.StepSeries(times, cfg.Dt, cfg.Duration), cfg.Dt); f > 0 {
				fmt.Printf("step rhythm:            %.3f hz\n", f)
			}

			fmt.Println("\ntrack (· end point, • body):")
			fmt.Print(analysis.TrackToASCII(body, end, 72, 20))
			return nil
		},
	}
}
