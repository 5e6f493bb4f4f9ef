// Package main provides the CLI entrypoint for mousepath.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bpaydar/mousepath/internal/app"
	"github.com/bpaydar/mousepath/internal/config"
	"github.com/bpaydar/mousepath/internal/statefile"
	"github.com/bpaydar/mousepath/internal/storage"
	"github.com/bpaydar/mousepath/internal/tracker"
	"github.com/bpaydar/mousepath/internal/tui"
)

// Version is set at build time via ldflags: -X main.Version=$(VERSION)
var Version = "dev"

var configPath string

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mousepath",
		Short:         "Track cumulative mouse travel distance",
		Long:          "mousepath measures how far the mouse cursor travels on screen,\nconverted to physical distance using per-monitor calibration.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTray,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default "+filepath.Join("$XDG_CONFIG_HOME", "mousepath", "config.toml")+")")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTuiCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	return rootCmd
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

// setupLogging redirects the log package to the state-dir log file. Kept
// best-effort: when the file cannot be opened, logs stay on stderr.
func setupLogging() *os.File {
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Printf("Warning: cannot create log directory: %v", err)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("Warning: cannot open log file: %v", err)
		return nil
	}
	log.SetOutput(f)
	return f
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the tray daemon (default command)",
		RunE:  runTray,
	}
}

func runTray(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if f := setupLogging(); f != nil {
		defer f.Close()
	}
	log.Printf("Starting mousepath %s", Version)

	engine, err := app.New(cfg)
	if err != nil {
		return err
	}
	if err := engine.Start(); err != nil {
		// Without pointer input the total silently stops growing
		// forever; refuse to run broken.
		return fmt.Errorf("cannot observe pointer movement: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down...")
		quitTray()
	}()

	runTrayLoop(engine)
	return nil
}

func newTuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the live terminal dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if f := setupLogging(); f != nil {
				defer f.Close()
			}

			engine, err := app.New(cfg)
			if err != nil {
				return err
			}
			if err := engine.Start(); err != nil {
				return fmt.Errorf("cannot observe pointer movement: %w", err)
			}
			defer engine.Close()

			p := tea.NewProgram(tui.New(engine))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("dashboard failed: %w", err)
			}
			return nil
		},
	}
}

var (
	statsHeaderStyle = lipgloss.NewStyle().Bold(true)
	statsMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the accumulated totals and recent history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			statePath, err := resolveStatePath(cfg)
			if err != nil {
				return err
			}
			rec := statefile.Load(statePath)
			totals := tracker.TotalsFromMM(rec.TotalMM)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, statsHeaderStyle.Render("Mouse Path Distance"))
			fmt.Fprintf(out, "  Meters:     %.4f m\n", totals.Meters)
			fmt.Fprintf(out, "  Kilometers: %.6f km\n", totals.Kilometers)
			fmt.Fprintf(out, "  Miles:      %.6f mi\n", totals.Miles)
			state := "paused"
			if rec.Running {
				state = "tracking"
			}
			fmt.Fprintf(out, "  State:      %s\n", state)

			store, err := storage.New(cfg.DatabasePath)
			if err != nil {
				fmt.Fprintln(out, statsMutedStyle.Render("  (no history database)"))
				return nil
			}
			defer store.Close()

			if lastSave, err := store.GetSetting(storage.KeyLastSave); err == nil && lastSave != "" {
				fmt.Fprintf(out, "  Last saved: %s\n", lastSave)
			}

			week, err := store.GetWeekDistances()
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, statsHeaderStyle.Render("Last 7 days"))
			for _, day := range week {
				fmt.Fprintf(out, "  %s  %10.4f m\n", day.Date, day.DistanceMM/1000.0)
			}

			busiest, err := store.GetBusiestDays(3)
			if err != nil {
				return err
			}
			if len(busiest) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, statsHeaderStyle.Render("Busiest days"))
				for i, day := range busiest {
					fmt.Fprintf(out, "  #%d %s  %10.4f m\n", i+1, day.Date, day.DistanceMM/1000.0)
				}
			}
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Zero the accumulated distance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			statePath, err := resolveStatePath(cfg)
			if err != nil {
				return err
			}

			rec := statefile.Load(statePath)
			rec.TotalMM = 0
			if err := statefile.Save(statePath, rec); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Distance counter reset.")
			return nil
		},
	}
}

func resolveStatePath(cfg config.Config) (string, error) {
	if cfg.StatePath != "" {
		return cfg.StatePath, nil
	}
	return statefile.DefaultPath()
}
