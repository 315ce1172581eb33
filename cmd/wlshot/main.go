// Command wlshot writes a JPEG screenshot of one display output to stdout.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/wlshot/internal/config"
	"github.com/example/wlshot/internal/logging"
	"github.com/example/wlshot/internal/notify"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type root struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	display    string

	config   *config.Config
	log      *zap.Logger
	notifier *notify.Notifier
}

func newRoot(stdout, stderr io.Writer) *root {
	return &root{stdout: stdout, stderr: stderr, log: zap.NewNop()}
}

// loader reads the --config path when given, else the build-time override,
// else the default search path.
func (r *root) loader() *config.Loader {
	override := configPathOverride
	if r.configPath != "" {
		override = r.configPath
	}
	return config.NewLoader(version, override)
}

// setup loads the rc file, layers flags and environment over it and builds
// the logger and notifier.
func (r *root) setup(cmd *cobra.Command) error {
	file, err := r.loader().Load()
	if err != nil {
		fmt.Fprintf(r.stderr, "warning: failed to load config: %v\n", err)
		file = config.New()
	}
	cfg, err := config.Resolve(file, cmd.Flags())
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	r.config = cfg
	r.log = logging.Must(cfg.LogLevel, r.stderr)
	r.notifier = notify.New(notify.LoadPreferences(), r.log)
	r.notifier.Enable(notify.EventCapture, cfg.Notify.Capture)
	return nil
}

func newRootCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wlshot",
		Short: "Capture a display output as JPEG on stdout",
		Long: `wlshot captures one still frame of a display output through the
wlr-screencopy protocol and writes it to stdout as a JPEG image.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runSnapshot()
		},
	}
	cmd.SetOut(r.stdout)
	cmd.SetErr(r.stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&r.configPath, "config", "", "read settings from this rc file")
	flags.StringVar(&r.display, "display", "", "Wayland display socket (default $WAYLAND_DISPLAY)")
	config.AddFlags(flags)

	cmd.AddCommand(newOutputsCmd(r), newConfigCmd(r), newVersionCmd(r))
	return cmd
}

func main() {
	r := newRoot(os.Stdout, os.Stderr)
	err := newRootCmd(r).Execute()
	_ = r.log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wlshot: %v\n", err)
		os.Exit(1)
	}
}
