package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/naclports/portlist/internal/config"
	"github.com/naclports/portlist/internal/logger"
	"github.com/naclports/portlist/internal/registry"
	"github.com/naclports/portlist/internal/report"
)

var (
	cfg        *config.Config
	configFile string
	fsys       afero.Fs = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "portlist",
	Short: "Generate the naclports wiki page listing available ports",
	Long: `portlist walks the ports/ directory of a naclports tree and prints a
wiki-markup table of every port: upstream ports with their archive and
patch, followed by local ports that have no upstream source.

Examples:
  portlist                          # Report for the enclosing git checkout
  portlist --root ~/naclports/src   # Report for an explicit tree
  portlist -v 2>debug.log           # Diagnostics on stderr`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: setup,
	RunE:              runReport,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/portlist/config.yaml)")
	flags.BoolP("verbose", "v", false, "output extra information on stderr")
	flags.String("root", "", "naclports tree root (default: enclosing git worktree)")
	flags.String("src-url", config.DefaultSourceURL, "source browsing URL prefix for links")
}

// Execute runs the command tree
func Execute() error {
	// Silence usage and errors to avoid cluttering output with Cobra defaults
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	v := config.NewViper()
	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		config.KeyVerbose:   "verbose",
		config.KeyRoot:      "root",
		config.KeySourceURL: "src-url",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}

	c, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	cfg = c
	logger.Init(cfg.Verbose)
	logger.Logger().Debugw("configuration resolved",
		"root", cfg.Root, "src_url", cfg.SourceURL, "generator", cfg.Generator)
	return nil
}

func loadRegistry() (*registry.Registry, error) {
	reg, err := registry.New(fsys, cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to load ports from %s: %w", cfg.Root, err)
	}
	return reg, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	g := report.New(fsys, reg, report.Options{
		BaseDir:   reg.Root(),
		SourceURL: cfg.SourceURL,
		Generator: cfg.Generator,
	})
	_, err = g.Generate(cmd.OutOrStdout())
	return err
}
