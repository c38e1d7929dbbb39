// Package cli implements the pluginmeta command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/toyz/pluginmeta/internal/config"
	"github.com/toyz/pluginmeta/internal/extractor"
	"github.com/toyz/pluginmeta/internal/rewriter"
	"github.com/toyz/pluginmeta/internal/utils"
)

// app carries the global flags and the state resolved before a command runs
type app struct {
	version string

	configFile string
	verbose    bool
	quiet      bool
	noColor    bool

	cfg  *config.Config
	diag *utils.DiagnosticSystem
}

// Execute runs the command line and returns the process exit code
func Execute(version string, args []string, stdout, stderr io.Writer) int {
	a := &app{version: version}
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		colors := !a.noColor && os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb"
		NewDiagnosticReporter(stderr, a.verbose, colors).ReportError(err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pluginmeta",
		Short: "Extract and strip Nuxt plugin metadata",
		Long: `pluginmeta reads scheduling metadata (name, order, enforce, dependsOn) from
Nuxt plugin modules and removes it from the shipped code.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to config file (default ./pluginmeta.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Only report errors")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(
		a.extractCommand(),
		a.registryCommand(),
		a.stripCommand(),
		a.serveCommand(),
		a.versionCommand(),
	)

	return root
}

// initialize loads configuration and sets up diagnostics
func (a *app) initialize(cmd *cobra.Command) error {
	loader := config.NewLoader()
	switch {
	case a.verbose:
		loader.Set("log.level", "verbose")
	case a.quiet:
		loader.Set("log.level", "quiet")
	}

	cfg, err := loader.LoadWithDefaults(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := utils.ParseDiagnosticLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.diag = utils.NewDiagnosticSystemWithWriters(level, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if a.noColor {
		a.diag.SetColors(false)
	}

	if used := loader.ConfigFileUsed(); used != "" {
		a.diag.Verbose("Using config %s", used)
	}
	return nil
}

func (a *app) newExtractor() *extractor.Extractor {
	return extractor.New(extractor.WithCacheSize(a.cfg.Cache.Size))
}

func (a *app) sourcemapOptions() rewriter.SourcemapOptions {
	return rewriter.SourcemapOptions{
		Client: a.cfg.Sourcemap.Client,
		Server: a.cfg.Sourcemap.Server,
	}
}

// registryPath picks the flag value over the configured registry
func (a *app) registryPath(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Registry
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "pluginmeta %s\n", a.version)
			return err
		},
	}
}
