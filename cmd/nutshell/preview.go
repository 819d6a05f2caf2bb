package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/nutshell/internal/analysis"
	"github.com/san-kum/nutshell/internal/display"
	"github.com/san-kum/nutshell/internal/frame"
	"github.com/san-kum/nutshell/internal/music"
)

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", frames)
	}
	e, err := build(cfg)
	if err != nil {
		return err
	}

	w, h := e.automaton.Size()
	fmt.Printf("composing %d frame(s) of %v from a %dx%d grid with %d layers\n\n",
		frames, e.composer.FrameLength(), w, h, e.automaton.LayerCount())

	var last *frame.VideoSample
	for i := 0; i < frames; i++ {
		f, err := e.composer.ProduceFrame(e.automaton)
		if err != nil {
			return err
		}
		if e.reverb != nil {
			e.reverb.ProcessInterleaved(f.Audio.Samples)
		}
		printFrame(f, float64(cfg.Frame.SampleRate))
		if n := f.Video.Len(); n > 0 {
			last = &f.Video.Samples[n-1]
		}
		e.composer.Recycle(f.Audio)
	}

	if last != nil {
		fmt.Println("last snapshot:")
		fmt.Println(display.Render(last))
	}
	return nil
}

func printFrame(f *frame.Frame, sampleRate float64) {
	mono := analysis.Mono(f.Audio.Samples)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "frame\t%d\n", f.Index)
	fmt.Fprintf(tw, "notes\t%d\n", len(f.Notes))
	fmt.Fprintf(tw, "video samples\t%d\n", f.Video.Len())
	fmt.Fprintf(tw, "production\t%v\n", f.Elapsed)
	bands := analysis.Bands(mono, sampleRate)
	fmt.Fprintf(tw, "bands\tbass %.1f  mid %.1f  high %.1f\n", bands.Bass, bands.Mid, bands.High)
	tw.Flush()
	fmt.Println()

	if env := analysis.Envelope(mono, 80); len(env) > 0 {
		graph := asciigraph.Plot(env,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("envelope (frame %d)", f.Index)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if peaks <= 0 {
		return
	}
	fmt.Println("dominant frequencies:")
	for _, p := range analysis.DominantFrequencies(mono, sampleRate, peaks) {
		fmt.Printf("  %8.2f hz  note %+d  (%.2f hz)  magnitude %.2f\n",
			p.Frequency, p.Index, music.IndexToFrequency(p.Index), p.Magnitude)
	}
	fmt.Println()
}
