package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/nutshell/internal/audio"
	"github.com/san-kum/nutshell/internal/automaton"
	"github.com/san-kum/nutshell/internal/compose"
	"github.com/san-kum/nutshell/internal/config"
	"github.com/san-kum/nutshell/internal/display"
	"github.com/san-kum/nutshell/internal/logging"
	"github.com/san-kum/nutshell/internal/pipeline"
	"github.com/san-kum/nutshell/internal/reverb"
)

var (
	configFile string
	preset     string
	logLevel   string

	width      int
	height     int
	layers     int
	modulus    uint64
	seconds    float64
	sampleRate int
	lookahead  int
	noReverb   bool

	audioBackend   string
	displayBackend string
	scale          int

	frames int
	peaks  int
	output string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "nutshell",
		Short:        "cellular automaton that plays itself",
		SilenceUsage: true,
		RunE:         runPlay,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().IntVar(&width, "width", config.DefaultSize, "grid width")
	rootCmd.PersistentFlags().IntVar(&height, "height", config.DefaultSize, "grid height")
	rootCmd.PersistentFlags().IntVar(&layers, "layers", config.DefaultLayers, "number of layers")
	rootCmd.PersistentFlags().Uint64Var(&modulus, "modulus", config.DefaultModulus, "cell modulus")
	rootCmd.PersistentFlags().Float64Var(&seconds, "seconds", config.DefaultFrameSeconds, "frame length in seconds")
	rootCmd.PersistentFlags().IntVar(&sampleRate, "sample-rate", config.DefaultSampleRate, "audio sample rate")
	rootCmd.PersistentFlags().IntVar(&lookahead, "lookahead", config.DefaultLookahead, "frames produced ahead of playback")
	rootCmd.PersistentFlags().BoolVar(&noReverb, "no-reverb", false, "disable the reverb")

	playFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&audioBackend, "audio", audio.BackendPortAudio, fmt.Sprintf("audio backend %v", audio.Backends()))
		cmd.Flags().StringVar(&displayBackend, "display", display.BackendRaylib, fmt.Sprintf("display backend %v", display.Backends()))
		cmd.Flags().IntVar(&scale, "scale", 10, "pixels per cell")
	}
	playFlags(rootCmd)

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "play and show the automaton",
		RunE:  runPlay,
	}
	playFlags(playCmd)

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "compose frames offline and print what they contain",
		RunE:  runPreview,
	}
	previewCmd.Flags().IntVar(&frames, "frames", 1, "number of frames to compose")
	previewCmd.Flags().IntVar(&peaks, "peaks", 5, "dominant frequencies to list per frame")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE:  printConfig,
	}
	configCmd.Flags().StringVarP(&output, "output", "o", "", "write the configuration to a file")

	rootCmd.AddCommand(playCmd, previewCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, preset, config file and changed flags, in
// that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Grid.Width = width
	}
	if flags.Changed("height") {
		cfg.Grid.Height = height
	}
	if flags.Changed("layers") {
		cfg.Grid.Layers = layers
		cfg.Grid.Rules = nil
	}
	if flags.Changed("modulus") {
		cfg.Grid.Modulus = modulus
	}
	if flags.Changed("seconds") {
		cfg.Frame.Seconds = seconds
	}
	if flags.Changed("sample-rate") {
		cfg.Frame.SampleRate = sampleRate
	}
	if flags.Changed("lookahead") {
		cfg.Frame.Lookahead = lookahead
	}
	if flags.Changed("no-reverb") {
		cfg.Reverb.Enabled = !noReverb
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Lookup("audio") != nil && flags.Changed("audio") {
		cfg.Audio.Backend = audioBackend
	}
	if flags.Lookup("display") != nil && flags.Changed("display") {
		cfg.Display.Backend = displayBackend
	}
	if flags.Lookup("scale") != nil && flags.Changed("scale") {
		cfg.Display.Scale = scale
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type engine struct {
	automaton *automaton.Automaton
	composer  *compose.Composer
	reverb    *reverb.Engine
}

func build(cfg *config.Config) (*engine, error) {
	ac, err := cfg.Automaton()
	if err != nil {
		return nil, err
	}
	a, err := automaton.NewWithConfig(ac)
	if err != nil {
		return nil, err
	}
	cc, err := cfg.ComposerConfig()
	if err != nil {
		return nil, err
	}
	c, err := compose.New(cc)
	if err != nil {
		return nil, err
	}
	e := &engine{automaton: a, composer: c}
	if cfg.Reverb.Enabled {
		if e.reverb, err = reverb.New(cfg.ReverbConfig()); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, os.Stderr)
	if err != nil {
		return err
	}

	e, err := build(cfg)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if e.reverb != nil {
		opts = append(opts, pipeline.WithReverb(e.reverb))
	}
	if cfg.Log.Level == "debug" {
		opts = append(opts, pipeline.WithObserver(traceObserver{logger}))
	}
	p, err := pipeline.New(pipeline.NewAutomatonProducer(e.composer, e.automaton), cfg.PipelineConfig(), opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := p.Start(ctx); err != nil {
		return err
	}

	dev, err := audio.Open(cfg.AudioConfig(), p.Audio(), logger)
	if err != nil {
		p.Close()
		return err
	}
	if err := dev.Start(); err != nil {
		dev.Close()
		p.Close()
		return err
	}

	w, h := e.automaton.Size()
	win, err := display.Open(cfg.DisplayConfig(), w, h, p.Display(), statusLine(p), logger)
	if err != nil {
		dev.Close()
		p.Close()
		return err
	}

	logger.Info("playing", "grid", fmt.Sprintf("%dx%d", w, h), "layers", e.automaton.LayerCount(),
		"frame", e.composer.FrameLength(), "audio", cfg.Audio.Backend, "display", cfg.Display.Backend)

	// the window owns the calling goroutine until it is closed or the
	// pipeline stops on its own
	winCtx, winCancel := p.Bind(ctx)
	runErr := win.Run(winCtx)
	winCancel()
	cancel()

	if err := dev.Close(); err != nil {
		logger.Warn("closing audio device", "err", err)
	}
	closeErr := p.Close()

	s := p.Stats()
	logger.Info("stopped", "produced", s.FramesProduced, "played", s.FramesPlayed,
		"starved", s.Starved, "dropped_video", s.DroppedVideo, "faults", s.Faults)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return closeErr
}

func statusLine(p *pipeline.Pipeline) display.StatusFunc {
	return func() string {
		s := p.Stats()
		return fmt.Sprintf("frame %d  produced %d  starved %d  %v",
			s.FramesPlayed, s.FramesProduced, s.Starved, s.LastProduction.Round(time.Millisecond))
	}
}

type traceObserver struct {
	log *slog.Logger
}

func (t traceObserver) OnMessage(msg pipeline.Message, index uint64) {
	t.log.Debug("protocol", "message", msg, "frame", index)
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if output != "" {
		if err := config.Save(output, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", output)
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
