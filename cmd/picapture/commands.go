// cmd/picapture/commands.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tamzrod/picapture/internal/camera"
	"github.com/tamzrod/picapture/internal/watcher"
)

func newRootCmd() *cobra.Command {
	var cfgFlag string

	cmd := &cobra.Command{
		Use:           "picapture",
		Short:         "Unattended camera capture service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContinuous(cmd.Context(), cfgFlag)
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgFlag, "config", "c", "",
		"Path to config file (default $PICAM_CONFIG or config/default_config.yaml)")

	cmd.AddCommand(newRunCmd(&cfgFlag))
	cmd.AddCommand(newOnceCmd(&cfgFlag))
	cmd.AddCommand(newValidateCmd(&cfgFlag))
	cmd.AddCommand(newStatsCmd(&cfgFlag))
	cmd.AddCommand(newSweepCmd(&cfgFlag))
	cmd.AddCommand(newArchiveCmd(&cfgFlag))
	cmd.AddCommand(newDevicesCmd(&cfgFlag))

	return cmd
}

// ---- run ----

func newRunCmd(cfgFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Capture continuously until SIGINT/SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContinuous(cmd.Context(), *cfgFlag)
		},
	}
}

func runContinuous(parent context.Context, cfgFlag string) error {
	a, err := buildApp(cfgFlag)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println(a.cfg.Summary())

	if err := a.attachStatus(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if err := a.orch.ValidateSystem(ctx); err != nil {
		return fmt.Errorf("system validation failed: %w", err)
	}

	// ---- signals ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					a.reloadLogging()
					continue
				}
				a.logger.Info("shutdown requested", slog.String("signal", sig.String()))
				a.orch.Stop()
			}
		}
	}()

	// ---- hot-plug watcher ----
	if a.cfg.Health.WatchDeviceEnabled() {
		w, err := watcher.New(watcher.Config{Device: a.cfg.Camera.Device}, a.events,
			func(watcher.Change) { a.orch.RequestHealthCheck() })
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				a.logger.Warn("device watcher stopped", slog.Any("error", err))
			}
		}()
	}

	return a.orch.RunContinuous(ctx)
}

// ---- once ----

func newOnceCmd(cfgFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Perform a single health-gated capture",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgFlag)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.attachStatus(); err != nil {
				return err
			}
			return a.orch.RunSingle(cmd.Context())
		},
	}
}

// ---- validate ----

func newValidateCmd(cfgFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate config, device and a test capture",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgFlag)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Println(a.cfg.Summary())

			devices := camera.ListDevices("/dev")
			fmt.Printf("Available devices: %d\n", len(devices))
			for _, d := range devices {
				fmt.Printf("  %s\n", d)
			}

			if err := a.orch.ValidateSystem(cmd.Context()); err != nil {
				return fmt.Errorf("system validation failed: %w", err)
			}
			fmt.Println("System validation passed")
			return nil
		},
	}
}

// ---- stats ----

func newStatsCmd(cfgFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show capture directory statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgFlag)
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.store.Stats()
			if err != nil {
				return err
			}

			fmt.Printf("Directory:  %s\n", a.store.Dir())
			fmt.Printf("Captures:   %d\n", st.Count)
			fmt.Printf("Total size: %s\n", humanize.Bytes(uint64(st.TotalSizeBytes))) //nolint:gosec // sizes are non-negative
			if !st.Empty() {
				fmt.Printf("Oldest:     %s (%s)\n", st.Oldest.Format("2006-01-02 15:04:05"), humanize.Time(st.Oldest))
				fmt.Printf("Newest:     %s (%s)\n", st.Newest.Format("2006-01-02 15:04:05"), humanize.Time(st.Newest))
			}
			return nil
		},
	}
}

// ---- sweep ----

func newSweepCmd(cfgFlag *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete captures older than the retention age",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgFlag)
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("days") {
				days = a.cfg.Files.MaxCaptureAgeDays
			}
			if days <= 0 {
				return errors.New("retention disabled: pass --days N or set files.max_capture_age_days")
			}

			n := a.store.Sweep(days)
			fmt.Printf("Deleted %d captures older than %d days\n", n, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Maximum capture age in days (default from config)")
	return cmd
}

// ---- archive ----

func newArchiveCmd(cfgFlag *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Zip all captures into an archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgFlag)
			if err != nil {
				return err
			}
			defer a.close()

			path, err := a.store.Archive(out)
			if err != nil {
				return err
			}

			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			fmt.Printf("Archive created: %s (%s)\n", path, humanize.Bytes(uint64(info.Size()))) //nolint:gosec // sizes are non-negative
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Archive path (default captures_YYYYMMDD_HHMMSS.zip next to the capture dir)")
	return cmd
}

// ---- devices ----

func newDevicesCmd(cfgFlag *string) *cobra.Command {
	var info bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List video devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices := camera.ListDevices("/dev")
			if len(devices) == 0 {
				fmt.Println("No video devices found")
			}
			for _, d := range devices {
				fmt.Println(d)
			}

			if !info {
				return nil
			}

			a, err := buildApp(*cfgFlag)
			if err != nil {
				return err
			}
			defer a.close()

			out, err := a.cam.Info(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&info, "info", false, "Print v4l2-ctl details for the configured device")
	return cmd
}
