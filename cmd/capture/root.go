package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
	"github.com/chitosepg/cameracapture/internal/bootstrap"
	"github.com/chitosepg/cameracapture/internal/infrastructure/config"
	"github.com/chitosepg/cameracapture/internal/infrastructure/logger"
)

type options struct {
	configPath string
	logLevel   string
	timeout    time.Duration

	paperSize string
	dpi       float64
	ratio     float64
	swap      bool
	maxPixels int64
	scene     string
	outDir    string
	naming    string
	format    string
	locale    string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "capture",
		Short:         "Capture the render target at print resolution and save it as PNG",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (default: ./config.toml if present)")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	f.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "give up after this long")
	f.StringVarP(&opts.paperSize, "paper", "p", "", "paper size (A0-A5, B0-B5, CUSTOM)")
	f.Float64VarP(&opts.dpi, "dpi", "d", 0, "dots per inch")
	f.Float64Var(&opts.ratio, "dpi-to-ppi-ratio", 0, "DPI to PPI ratio")
	f.BoolVarP(&opts.swap, "swap", "s", false, "exchange width and height (landscape)")
	f.Int64Var(&opts.maxPixels, "max-pixels", 0, "pixel budget")
	f.StringVar(&opts.scene, "scene", "", "scene image for the image target")
	f.StringVarP(&opts.outDir, "out", "o", "", "output directory")
	f.StringVar(&opts.naming, "naming", "", "output naming (TIMESTAMP, FIXED)")
	f.StringVar(&opts.format, "pixel-format", "", "PNG pixel format (RGB24, RGBA32)")
	f.StringVar(&opts.locale, "locale", "", "status text language (en, ja)")

	return cmd
}

// applyFlags overrides configuration with the flags the user set
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	changed := cmd.Flags().Changed
	if changed("paper") {
		cfg.Capture.PaperSize = opts.paperSize
	}
	if changed("dpi") {
		cfg.Capture.DPI = opts.dpi
	}
	if changed("dpi-to-ppi-ratio") {
		cfg.Capture.DPIToPPIRatio = opts.ratio
	}
	if changed("swap") {
		cfg.Capture.Swap = opts.swap
	}
	if changed("max-pixels") {
		cfg.Capture.MaximumPixels = opts.maxPixels
	}
	if changed("naming") {
		cfg.Capture.Naming = opts.naming
	}
	if changed("pixel-format") {
		cfg.Capture.PixelFormat = opts.format
	}
	if changed("locale") {
		cfg.Capture.Locale = opts.locale
	}
	if changed("scene") {
		cfg.Target.Kind = "image"
		cfg.Target.ScenePath = opts.scene
	}
	if changed("out") {
		cfg.Storage.Kind = "filesystem"
		cfg.Storage.BasePath = opts.outDir
	}
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}
	applyFlags(cmd, cfg, opts)

	log, err := logger.New(&logger.Config{
		Level:  opts.logLevel,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}
	defer logger.Sync(log)

	target, err := bootstrap.NewTarget(cfg.Target, log)
	if err != nil {
		log.Error("Failed to create render target", zap.Error(err))
		return err
	}
	defer target.Close()

	output, err := bootstrap.NewStorage(ctx, cfg.Storage, log)
	if err != nil {
		log.Error("Failed to create output storage", zap.Error(err))
		return err
	}

	settings, err := captureapp.NewSettingsStore(bootstrap.CaptureSettings(cfg.Capture))
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}
	session, err := captureapp.NewSession(captureapp.SessionConfig{
		Target:   target,
		Storage:  output,
		Settings: settings,
		Options:  bootstrap.CaptureOptions(cfg.Capture),
		Logger:   log.Named("capture"),
	})
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	result, err := drive(ctx, session, cfg.Capture.TickInterval)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Status)
	if !result.Succeeded() {
		return fmt.Errorf("capture failed: %s", result.ErrorCode)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Location)
	return nil
}
