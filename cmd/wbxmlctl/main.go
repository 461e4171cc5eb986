package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/danmuck/wbxml/internal/config"
	"github.com/danmuck/wbxml/internal/logging"
	"github.com/danmuck/wbxml/internal/observability"
)

const skipConfig = "skip-config"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}
	root := &cobra.Command{
		Use:   "wbxmlctl",
		Short: "Pack, unpack and inspect WBXML file/folder documents",
		Long: "wbxmlctl encodes directory trees as WBXML documents of File and Folder\n" +
			"elements, restores them, and renders any WBXML document as XML.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initialize,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a wbxmlctl TOML config")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace|debug|info|warn|error|disabled)")

	root.AddCommand(a.packCmd(), a.unpackCmd(), a.dumpCmd(), a.configCmd())
	a.finishAll(root)
	return root
}

// finishAll wraps every runnable command so finish runs whether or not
// the command failed. Cobra skips post-run hooks after a RunE error.
func (a *app) finishAll(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			if ferr := a.finish(); ferr != nil {
				if err != nil {
					a.logger.Error().Err(ferr).Msg("finish failed")
					return err
				}
				return ferr
			}
			return err
		}
	}
	for _, sub := range cmd.Commands() {
		a.finishAll(sub)
	}
}

func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	if a.configPath != "" && cmd.Annotations[skipConfig] == "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	lc := a.cfg.Logging()
	if a.logLevel != "" {
		lvl, ok := logging.ParseLevel(a.logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", a.logLevel)
		}
		lc.Level = lvl
	}
	lc.Out = cmd.ErrOrStderr()
	a.logger = logging.New(lc).With().Str("cmd", cmd.Name()).Logger()
	return nil
}

func (a *app) finish() error {
	defer logging.Close()
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := observability.WriteTextfile(path); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		a.logger.Debug().Str("path", path).Msg("metrics written")
	}
	return nil
}

func (a *app) printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// createOutput opens path for writing, or stdout for "-".
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, func(), error) {
	if path == "-" {
		return nopCloser{cmd.OutOrStdout()}, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { os.Remove(path) }, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
