package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bryanchriswhite/screenfreeze/internal/capture"
	"github.com/bryanchriswhite/screenfreeze/internal/config"
	"github.com/bryanchriswhite/screenfreeze/internal/display"
	"github.com/bryanchriswhite/screenfreeze/internal/launcher"
	"github.com/bryanchriswhite/screenfreeze/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runFunc runs the freeze with the resolved configuration and command line
type runFunc func(ctx context.Context, cfg *config.Config, argv []string) error

func newRootCmd(run runFunc) *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "screenfreeze [flags] <executable> [args...]",
		Short: "Freeze the screen while a program starts",
		Long: `screenfreeze captures the current screen, shows it as a full-screen,
borderless window on top of everything else, and runs the given program in
the foreground. The frozen image hides flicker and redraws while a slow
application launches.

Everything after the executable is passed to it verbatim.`,
		Example: `  # Freeze the screen while a game starts
  screenfreeze steam -applaunch 12345

  # Include the mouse pointer in the frozen image
  screenfreeze --show-cursor firefox --new-window

  # Trace every stage
  screenfreeze --log-level debug --log-pretty -- slow-app`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			logger.Init(cfg.LogLevel, cfg.LogPretty)
			return run(cmd.Context(), cfg, args)
		},
	}

	flags := cmd.Flags()
	// Stop at the executable so its own flags reach it untouched
	flags.SetInterspersed(false)

	flags.StringVar(&cfgFile, "config", "", "YAML config file (never written)")
	flags.BoolP("show-cursor", "s", false, "Add the cursor to the frozen image")
	flags.String("display", "", "X display to freeze (default is $DISPLAY)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("log-pretty", false, "human-readable log output")
	flags.String("dump", "", "write the frozen frame to this BMP file (debugging)")

	// Bind flags to viper; SCREENFREEZE_* environment variables fill in
	// anything not given on the command line
	v.BindPFlag("show_cursor", flags.Lookup("show-cursor"))
	v.BindPFlag("display", flags.Lookup("display"))
	v.BindPFlag("log_level", flags.Lookup("log-level"))
	v.BindPFlag("log_pretty", flags.Lookup("log-pretty"))
	v.BindPFlag("dump_path", flags.Lookup("dump"))
	v.SetEnvPrefix("SCREENFREEZE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

// loadConfig layers flags and environment over the config file and defaults
func loadConfig(v *viper.Viper, cfgFile string) (*config.Config, error) {
	configMgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}

	if v.IsSet("show_cursor") {
		configMgr.SetShowCursor(v.GetBool("show_cursor"))
	}
	if v.IsSet("display") {
		configMgr.SetDisplay(v.GetString("display"))
	}
	if v.IsSet("log_level") {
		if logLevel := v.GetString("log_level"); logLevel != "" {
			configMgr.SetLogLevel(logLevel)
		}
	}
	if v.IsSet("log_pretty") {
		configMgr.SetLogPretty(v.GetBool("log_pretty"))
	}
	if v.IsSet("dump_path") {
		configMgr.SetDumpPath(v.GetString("dump_path"))
	}

	cfg := configMgr.Get()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runFreeze wires the X11 display and process launcher into a capture session
func runFreeze(ctx context.Context, cfg *config.Config, argv []string) error {
	session := capture.NewSession(display.Open(cfg.Display), launcher.New())

	return session.Run(ctx, capture.Options{
		ShowCursor:  cfg.ShowCursor,
		Command:     argv,
		WindowName:  cfg.WindowName,
		WindowClass: cfg.WindowClass,
		DumpPath:    cfg.DumpPath,
	})
}

// Execute runs the root command, printing the error chain and exiting with
// status 1 on failure
func Execute() {
	if err := newRootCmd(runFreeze).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
